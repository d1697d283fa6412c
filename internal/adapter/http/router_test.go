package http

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"pawnshop-backend/internal/adapter/middleware"
	"pawnshop-backend/internal/adapter/repository/mysql"
	"pawnshop-backend/internal/domain/catalog"
	"pawnshop-backend/internal/domain/invoice"
	"pawnshop-backend/internal/domain/ratetable"
	domainTicket "pawnshop-backend/internal/domain/ticket"
	"pawnshop-backend/internal/infrastructure/metrics"
	ucCatalog "pawnshop-backend/internal/usecase/catalog"
	ucRate "pawnshop-backend/internal/usecase/ratetable"
	ucReport "pawnshop-backend/internal/usecase/report"
	ucTicket "pawnshop-backend/internal/usecase/ticket"
	"pawnshop-backend/pkg/id"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	clerk    = "c1e4c1e4c1e4c1e4c1e4c1e4c1e4c1e4"
	customer = "c0ffee00c0ffee00c0ffee00c0ffee00"
)

type api struct {
	e       *echo.Echo
	db      *gorm.DB
	manila  *catalog.Branch
	cebu    *catalog.Branch
	jewelry *catalog.Category
}

func newAPI(t *testing.T) *api {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := mysql.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	a := &api{db: db}
	a.manila = &catalog.Branch{Code: "MNL01", Name: "Manila", Active: true, SequencePrefix: "MNL01/", SequencePadding: 5, SequenceNext: 1}
	a.cebu = &catalog.Branch{Code: "CEB01", Name: "Cebu", Active: true, SequencePrefix: "CEB01/", SequencePadding: 5, SequenceNext: 1}
	a.jewelry = &catalog.Category{Code: "JEW", Name: "Jewelry", Active: true}
	for _, v := range []any{a.manila, a.cebu, a.jewelry} {
		if err := db.Create(v).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	table := &ratetable.RateTable{
		Code: "STD", Name: "Standard", Active: true, DateFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Lines: []ratetable.Line{
			{Sequence: 10, AmountFrom: decimal.Zero, RatePercent: decimal.NewFromInt(3), RatePeriod: ratetable.PeriodMonth},
		},
	}
	if err := mysql.NewRateTableRepository(db).Create(context.Background(), table); err != nil {
		t.Fatalf("seed rate table: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tickets := mysql.NewTicketRepository(db)
	branches := mysql.NewBranchRepository(db)
	categories := mysql.NewCategoryRepository(db)
	users := mysql.NewUserBranchRepository(db)
	m := metrics.New()
	terms := domainTicket.DefaultTerms()

	ticketUC := ucTicket.NewUsecase(tickets, mysql.NewInvoiceRepository(db), mysql.NewGormUoW(db), ucTicket.Options{
		Terms:                terms,
		Products:             invoice.Products{Interest: "INT", Penalty: "PEN", ServiceFee: "SVC"},
		DefaultRateTableCode: "STD",
	}, nil, m)

	a.e = echo.New()
	a.e.Validator = NewValidator()
	RegisterRoutes(a.e, Handlers{
		Health:     NewHandler(map[string]Check{"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() }}),
		Tickets:    NewTicketHandler(ticketUC),
		RateTables: NewRateTableHandler(ucRate.NewUsecase(mysql.NewRateTableRepository(db), branches, categories, nil)),
		Catalog:    NewCatalogHandler(ucCatalog.NewUsecase(branches, categories, users, nil)),
		Reports:    NewReportHandler(ucReport.NewUsecase(mysql.NewReportSource(db), tickets, terms, nil)),
	}, m.Handler(),
		middleware.BranchScope(users, nil),
		middleware.Idempotency(rdb, time.Minute, nil),
	)
	return a
}

// call sends a request as user with a fresh request id unless reqID is given.
func (a *api) call(t *testing.T, method, path string, body any, user string, reqID ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if user != "" {
		req.Header.Set(middleware.HeaderUserID, user)
	}
	rid := id.NewID32()
	if len(reqID) > 0 {
		rid = reqID[0]
	}
	req.Header.Set(middleware.HeaderRequestID, rid)
	req.Header.Set(middleware.HeaderRequestAt, time.Now().UTC().Format(time.RFC3339))
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

type ticketBody struct {
	TicketID       string             `json:"ticket_id"`
	TicketNo       string             `json:"ticket_no"`
	State          domainTicket.State `json:"state"`
	InterestRate   decimal.Decimal    `json:"interest_rate"`
	TotalDue       decimal.Decimal    `json:"total_due"`
	DisbursedBy    string             `json:"disbursed_by"`
	AllowedActions []string           `json:"allowed_actions"`
	Lines          []struct {
		LineID string `json:"line_id"`
	} `json:"lines"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad json: %v; raw=%s", err, rec.Body.String())
	}
	return out
}

func (a *api) newTicket() map[string]any {
	return map[string]any{
		"customer_id":    customer,
		"customer_name":  "Juan Dela Cruz",
		"branch_id":      a.manila.ID,
		"principal":      5000,
		"terms_accepted": true,
		"lines": []map[string]any{{
			"name": "Ring", "category_id": a.jewelry.ID, "brand": "Cartier",
			"weight": 4.5, "karat": "18K", "appraised_value": 8000,
		}},
	}
}

func TestAPI_TicketLifecycle(t *testing.T) {
	a := newAPI(t)

	reqID := id.NewID32()
	rec := a.call(t, stdhttp.MethodPost, "/tickets", a.newTicket(), clerk, reqID)
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("create status = %d body=%s", rec.Code, rec.Body.String())
	}
	tk := decode[ticketBody](t, rec)
	if tk.State != domainTicket.StateDraft || tk.TicketNo != "MNL01/00001" || !tk.InterestRate.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("unexpected ticket: %+v", tk)
	}

	replay := a.call(t, stdhttp.MethodPost, "/tickets", a.newTicket(), clerk, reqID)
	if replay.Code != stdhttp.StatusCreated || replay.Body.String() != rec.Body.String() {
		t.Fatalf("replay should return the stored response, got %d", replay.Code)
	}
	var n int64
	a.db.Model(&domainTicket.Ticket{}).Count(&n)
	if n != 1 {
		t.Fatalf("replay created another ticket: %d", n)
	}

	base := "/tickets/" + tk.TicketID
	rec = a.call(t, stdhttp.MethodPost, base+"/disburse", map[string]any{"method": "cash"}, clerk)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("disburse status = %d body=%s", rec.Code, rec.Body.String())
	}
	if got := decode[ticketBody](t, rec); got.State != domainTicket.StatePledged || got.DisbursedBy != clerk {
		t.Fatalf("unexpected after disburse: %+v", got)
	}

	rec = a.call(t, stdhttp.MethodGet, base+"/quote", nil, clerk)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("quote status = %d", rec.Code)
	}
	if q := decode[ucTicket.QuoteDTO](t, rec); !q.TotalDue.GreaterThan(q.Principal) {
		t.Fatalf("quote should include charges: %+v", q)
	}

	rec = a.call(t, stdhttp.MethodPost, base+"/renew", map[string]any{"payment_method": "gcash", "payment_ref": "GC-1"}, clerk)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("renew status = %d body=%s", rec.Code, rec.Body.String())
	}
	renewed := decode[struct {
		Ticket  ticketBody      `json:"ticket"`
		Invoice invoice.Invoice `json:"invoice"`
	}](t, rec)
	if renewed.Ticket.State != domainTicket.StateRenewed || renewed.Invoice.State != invoice.StatePaid || renewed.Invoice.PaymentMethod != "gcash" {
		t.Fatalf("unexpected renewal: %+v", renewed)
	}

	rec = a.call(t, stdhttp.MethodPost, base+"/redeem", map[string]any{}, clerk)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("redeem status = %d body=%s", rec.Code, rec.Body.String())
	}

	rec = a.call(t, stdhttp.MethodGet, base+"/invoices", nil, clerk)
	if items := decode[struct {
		Items []invoice.Invoice `json:"items"`
	}](t, rec).Items; len(items) != 2 {
		t.Fatalf("invoices = %d, want 2", len(items))
	}

	rec = a.call(t, stdhttp.MethodPost, base+"/cancel", nil, clerk)
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("cancel redeemed => want 409, got %d", rec.Code)
	}

	rec = a.call(t, stdhttp.MethodGet, "/metrics", nil, "")
	if !strings.Contains(rec.Body.String(), `pawnshop_ticket_transitions_total{action="renew",outcome="ok"} 1`) {
		t.Fatalf("metrics missing renew transition:\n%s", rec.Body.String())
	}
}

func TestAPI_ErrorMapping(t *testing.T) {
	a := newAPI(t)

	if rec := a.call(t, stdhttp.MethodGet, "/tickets/not-an-id", nil, clerk); rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("bad id => want 400, got %d", rec.Code)
	}
	rec := a.call(t, stdhttp.MethodGet, "/tickets/"+id.NewID32(), nil, clerk)
	if rec.Code != stdhttp.StatusNotFound || decode[ErrorResponse](t, rec).Error != "ticket not found" {
		t.Fatalf("unknown ticket => want 404, got %d %s", rec.Code, rec.Body.String())
	}

	body := a.newTicket()
	body["lines"] = []map[string]any{}
	body["customer_id"] = "NOTHEX"
	rec = a.call(t, stdhttp.MethodPost, "/tickets", body, clerk)
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("invalid body => want 422, got %d", rec.Code)
	}
	er := decode[ErrorResponse](t, rec)
	if !hasFieldDetail(er.Details, "CustomerID", "32-char") || !hasFieldDetail(er.Details, "Lines", "at least 1") {
		t.Fatalf("missing field errors: %+v", er.Details)
	}

	body = a.newTicket()
	body["principal"] = 7000 // LTV 87.5% > 80%
	if rec := a.call(t, stdhttp.MethodPost, "/tickets", body, clerk); rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("ltv => want 422, got %d body=%s", rec.Code, rec.Body.String())
	}

	body = a.newTicket()
	body["branch_id"] = a.cebu.ID
	body["rate_table_code"] = "NOPE"
	if rec := a.call(t, stdhttp.MethodPost, "/tickets", body, clerk); rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("unknown rate table => want 404, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec = a.call(t, stdhttp.MethodPost, "/tickets", a.newTicket(), clerk)
	tk := decode[ticketBody](t, rec)
	if rec := a.call(t, stdhttp.MethodPost, "/tickets/"+tk.TicketID+"/forfeit", nil, clerk); rec.Code != stdhttp.StatusConflict {
		t.Fatalf("forfeit draft => want 409, got %d", rec.Code)
	}
	if rec := a.call(t, stdhttp.MethodPost, "/tickets/"+tk.TicketID+"/disburse", map[string]any{"method": "cheque"}, clerk); rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("bad method => want 422, got %d", rec.Code)
	}
}

func TestAPI_BranchScope(t *testing.T) {
	a := newAPI(t)
	cebuClerk := strings.Repeat("e", 32)

	rec := a.call(t, stdhttp.MethodPut, "/users/"+cebuClerk+"/branches", map[string]any{"branch_ids": []uint64{a.cebu.ID}}, clerk)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("assign status = %d body=%s", rec.Code, rec.Body.String())
	}

	tk := decode[ticketBody](t, a.call(t, stdhttp.MethodPost, "/tickets", a.newTicket(), clerk))

	rec = a.call(t, stdhttp.MethodGet, "/tickets/"+tk.TicketID, nil, cebuClerk)
	if rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("other branch => want 403, got %d", rec.Code)
	}
	rec = a.call(t, stdhttp.MethodPost, "/tickets/"+tk.TicketID+"/cancel", nil, cebuClerk)
	if rec.Code != stdhttp.StatusForbidden {
		t.Fatalf("other branch action => want 403, got %d", rec.Code)
	}

	rec = a.call(t, stdhttp.MethodGet, "/tickets", nil, cebuClerk)
	if got := decode[ucTicket.SearchDTO](t, rec); got.Total != 0 {
		t.Fatalf("cebu clerk should see nothing, got %d", got.Total)
	}
	rec = a.call(t, stdhttp.MethodGet, "/tickets?state=draft", nil, clerk)
	if got := decode[ucTicket.SearchDTO](t, rec); got.Total != 1 {
		t.Fatalf("unrestricted clerk should see the ticket, got %d", got.Total)
	}
	if rec := a.call(t, stdhttp.MethodGet, "/tickets?state=lost", nil, clerk); rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("bad state filter => want 422, got %d", rec.Code)
	}

	rec = a.call(t, stdhttp.MethodGet, "/reports/dashboard", nil, cebuClerk)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("dashboard status = %d body=%s", rec.Code, rec.Body.String())
	}
	if rec := a.call(t, stdhttp.MethodGet, "/reports/aging?branch_id=x", nil, clerk); rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("bad branch_id => want 400, got %d", rec.Code)
	}
}

func TestAPI_CatalogAndRateTables(t *testing.T) {
	a := newAPI(t)

	rec := a.call(t, stdhttp.MethodPost, "/branches", map[string]any{"code": "DVO01", "name": "Davao", "sequence_prefix": "DVO/"}, clerk)
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("create branch = %d body=%s", rec.Code, rec.Body.String())
	}
	br := decode[catalog.Branch](t, rec)
	if !br.Active || br.SequencePadding != 5 {
		t.Fatalf("branch defaults not applied: %+v", br)
	}
	if rec := a.call(t, stdhttp.MethodPost, "/branches", map[string]any{"code": "DVO01", "name": "Again"}, clerk); rec.Code != stdhttp.StatusConflict {
		t.Fatalf("duplicate branch => want 409, got %d", rec.Code)
	}
	if rec := a.call(t, stdhttp.MethodPost, "/branches", map[string]any{"code": "D V O", "name": "Bad"}, clerk); rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("bad code => want 422, got %d", rec.Code)
	}
	if rec := a.call(t, stdhttp.MethodGet, "/branches/abc", nil, clerk); rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("bad id => want 400, got %d", rec.Code)
	}
	if rec := a.call(t, stdhttp.MethodGet, "/branches/999", nil, clerk); rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("missing branch => want 404, got %d", rec.Code)
	}

	rec = a.call(t, stdhttp.MethodPost, "/categories", map[string]any{"code": "RING", "name": "Rings", "parent_id": a.jewelry.ID}, clerk)
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("create category = %d body=%s", rec.Code, rec.Body.String())
	}
	rings := decode[catalog.Category](t, rec)
	rec = a.call(t, stdhttp.MethodPut, "/categories/"+strconv.FormatUint(a.jewelry.ID, 10), map[string]any{"code": "JEW", "name": "Jewelry", "parent_id": rings.ID}, clerk)
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("recursive category => want 422, got %d body=%s", rec.Code, rec.Body.String())
	}
	rec = a.call(t, stdhttp.MethodGet, "/categories", nil, clerk)
	cats := decode[struct {
		Items []ucCatalog.CategoryDTO `json:"items"`
	}](t, rec)
	found := false
	for _, c := range cats.Items {
		found = found || c.FullName == "Jewelry / Rings"
	}
	if !found {
		t.Fatalf("full name missing: %+v", cats.Items)
	}

	table := map[string]any{
		"code": "PROMO", "name": "Promo", "date_from": "2025-01-01",
		"lines": []map[string]any{
			{"amount_from": 0, "amount_to": 10000, "rate_percent": 2},
			{"amount_from": 5000, "rate_percent": 1},
		},
	}
	if rec := a.call(t, stdhttp.MethodPost, "/rate-tables", table, clerk); rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("overlap => want 422, got %d body=%s", rec.Code, rec.Body.String())
	}
	table["lines"] = []map[string]any{
		{"amount_from": 0, "amount_to": 10000, "rate_percent": 2},
		{"amount_from": 10000, "rate_percent": 24, "rate_period": "year"},
	}
	if rec := a.call(t, stdhttp.MethodPost, "/rate-tables", table, clerk); rec.Code != stdhttp.StatusCreated {
		t.Fatalf("create table = %d body=%s", rec.Code, rec.Body.String())
	}
	rec = a.call(t, stdhttp.MethodGet, "/rate-tables/PROMO/resolve?amount=20000", nil, clerk)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("resolve = %d body=%s", rec.Code, rec.Body.String())
	}
	if got := decode[ucRate.RateDTO](t, rec); !got.MonthlyPercent.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("monthly = %s, want 2", got.MonthlyPercent)
	}
	if rec := a.call(t, stdhttp.MethodGet, "/rate-tables/GONE", nil, clerk); rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("missing table => want 404, got %d", rec.Code)
	}
}

func hasFieldDetail(details []FieldError, field, contains string) bool {
	for _, d := range details {
		if d.Field == field && strings.Contains(d.Message, contains) {
			return true
		}
	}
	return false
}
