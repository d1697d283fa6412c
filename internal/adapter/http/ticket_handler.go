package http

import (
	"net/http"

	"pawnshop-backend/internal/domain/access"
	domainTicket "pawnshop-backend/internal/domain/ticket"
	"pawnshop-backend/internal/usecase/ticket"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type TicketHandler struct{ uc *ticket.Usecase }

func NewTicketHandler(uc *ticket.Usecase) *TicketHandler { return &TicketHandler{uc: uc} }

type lineReq struct {
	Name           string  `json:"name"            validate:"required,max=128"`
	CategoryID     uint64  `json:"category_id"     validate:"required"`
	Brand          string  `json:"brand"`
	Model          string  `json:"model"`
	SerialNumber   string  `json:"serial_number"`
	Color          string  `json:"color"`
	Condition      string  `json:"condition"       validate:"omitempty,oneof=excellent good fair poor"`
	Weight         float64 `json:"weight"          validate:"gte=0"`
	WeightUnit     string  `json:"weight_unit"     validate:"omitempty,oneof=g kg oz"`
	Karat          string  `json:"karat"`
	AppraisedValue float64 `json:"appraised_value" validate:"gt=0,dec2"`
	LoanAmount     float64 `json:"loan_amount"     validate:"gte=0,dec2"`
	Barcode        string  `json:"barcode"`
	AppraisedBy    string  `json:"appraised_by"    validate:"omitempty,hex32"`
	AppraisalNotes string  `json:"appraisal_notes"`
}

func (l lineReq) input() ticket.LineInput {
	return ticket.LineInput{
		Name:           l.Name,
		CategoryID:     l.CategoryID,
		Brand:          l.Brand,
		Model:          l.Model,
		SerialNumber:   l.SerialNumber,
		Color:          l.Color,
		Condition:      domainTicket.Condition(l.Condition),
		Weight:         decimal.NewFromFloat(l.Weight),
		WeightUnit:     domainTicket.WeightUnit(l.WeightUnit),
		Karat:          l.Karat,
		AppraisedValue: decimal.NewFromFloat(l.AppraisedValue),
		LoanAmount:     decimal.NewFromFloat(l.LoanAmount),
		Barcode:        l.Barcode,
		AppraisedBy:    l.AppraisedBy,
		AppraisalNotes: l.AppraisalNotes,
	}
}

func linesOf(in []lineReq) []ticket.LineInput {
	out := make([]ticket.LineInput, 0, len(in))
	for _, l := range in {
		out = append(out, l.input())
	}
	return out
}

type createTicketReq struct {
	CustomerID    string    `json:"customer_id"     validate:"required,hex32"`
	CustomerName  string    `json:"customer_name"   validate:"required,max=128"`
	BranchID      uint64    `json:"branch_id"       validate:"required"`
	Principal     float64   `json:"principal"       validate:"gt=0,dec2"`
	InterestRate  *float64  `json:"interest_rate"   validate:"omitempty,gte=0,lte=100,dec2"`
	RateTableCode string    `json:"rate_table_code" validate:"omitempty,code"`
	DateMaturity  string    `json:"date_maturity"   validate:"omitempty,datetime=2006-01-02"`
	KYCIDType     string    `json:"kyc_id_type"`
	KYCIDNumber   string    `json:"kyc_id_number"`
	KYCIDExpiry   string    `json:"kyc_id_expiry"   validate:"omitempty,datetime=2006-01-02"`
	Notes         string    `json:"notes"`
	TermsAccepted bool      `json:"terms_accepted"`
	Lines         []lineReq `json:"lines"           validate:"required,min=1,dive"`
}

func (h *TicketHandler) Create(c echo.Context) error {
	var req createTicketReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Create(c.Request().Context(), ticket.CreateInput{
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		BranchID:      req.BranchID,
		Principal:     decimal.NewFromFloat(req.Principal),
		InterestRate:  decPtr(req.InterestRate),
		RateTableCode: req.RateTableCode,
		DateMaturity:  parseDate(req.DateMaturity),
		KYCIDType:     req.KYCIDType,
		KYCIDNumber:   req.KYCIDNumber,
		KYCIDExpiry:   parseDate(req.KYCIDExpiry),
		Notes:         req.Notes,
		TermsAccepted: req.TermsAccepted,
		Lines:         linesOf(req.Lines),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *TicketHandler) Get(c echo.Context) error {
	tid := c.Param("ticket_id")
	if msg := ticketIDProblem(tid); msg != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
	}
	dto, err := h.uc.Get(c.Request().Context(), tid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *TicketHandler) Quote(c echo.Context) error {
	tid := c.Param("ticket_id")
	if msg := ticketIDProblem(tid); msg != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
	}
	dto, err := h.uc.Quote(c.Request().Context(), tid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *TicketHandler) Invoices(c echo.Context) error {
	tid := c.Param("ticket_id")
	if msg := ticketIDProblem(tid); msg != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
	}
	out, err := h.uc.Invoices(c.Request().Context(), tid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": out})
}

type searchReq struct {
	BranchID   uint64 `query:"branch_id"`
	State      string `query:"state"       validate:"omitempty,oneof=draft pledged renewed redeemed forfeited cancelled"`
	CustomerID string `query:"customer_id" validate:"omitempty,hex32"`
	DueToday   bool   `query:"due_today"`
	Overdue    bool   `query:"overdue"`
	InGrace    bool   `query:"in_grace"`
	Limit      int    `query:"limit"       validate:"gte=0,lte=200"`
	Offset     int    `query:"offset"      validate:"gte=0"`
}

func (h *TicketHandler) Search(c echo.Context) error {
	var req searchReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Search(c.Request().Context(), ticket.SearchInput{
		BranchID:   req.BranchID,
		State:      domainTicket.State(req.State),
		CustomerID: req.CustomerID,
		DueToday:   req.DueToday,
		Overdue:    req.Overdue,
		InGrace:    req.InGrace,
		Limit:      req.Limit,
		Offset:     req.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// amendTicketReq: absent fields keep their value; "lines" replaces all items when present.
type amendTicketReq struct {
	CustomerName *string   `json:"customer_name" validate:"omitempty,max=128"`
	Principal    *float64  `json:"principal"     validate:"omitempty,gt=0,dec2"`
	InterestRate *float64  `json:"interest_rate" validate:"omitempty,gte=0,lte=100,dec2"`
	DateMaturity string    `json:"date_maturity" validate:"omitempty,datetime=2006-01-02"`
	Notes        *string   `json:"notes"`
	Lines        []lineReq `json:"lines"         validate:"omitempty,min=1,dive"`
}

func (h *TicketHandler) Amend(c echo.Context) error {
	tid := c.Param("ticket_id")
	if msg := ticketIDProblem(tid); msg != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
	}
	var req amendTicketReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	in := ticket.AmendInput{
		CustomerName: req.CustomerName,
		Principal:    decPtr(req.Principal),
		InterestRate: decPtr(req.InterestRate),
		DateMaturity: parseDate(req.DateMaturity),
		Notes:        req.Notes,
	}
	if req.Lines != nil {
		in.Lines = linesOf(req.Lines)
	}
	dto, err := h.uc.Amend(c.Request().Context(), tid, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type disburseReq struct {
	Method      string `json:"method"       validate:"required,oneof=cash bank_transfer gcash maya other"`
	Reference   string `json:"reference"    validate:"max=64"`
	DisbursedBy string `json:"disbursed_by" validate:"omitempty,hex32"`
}

func (h *TicketHandler) Disburse(c echo.Context) error {
	tid := c.Param("ticket_id")
	if msg := ticketIDProblem(tid); msg != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
	}
	var req disburseReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx := c.Request().Context()
	if req.DisbursedBy == "" {
		req.DisbursedBy = access.FromContext(ctx).UserID
	}
	dto, err := h.uc.Disburse(ctx, tid, ticket.DisburseInput{
		Method:      domainTicket.DisbursementMethod(req.Method),
		Reference:   req.Reference,
		DisbursedBy: req.DisbursedBy,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type overridesReq struct {
	Interest   *float64 `json:"interest"    validate:"omitempty,gte=0,dec2"`
	Penalty    *float64 `json:"penalty"     validate:"omitempty,gte=0,dec2"`
	ServiceFee *float64 `json:"service_fee" validate:"omitempty,gte=0,dec2"`
}

func (o overridesReq) overrides() ticket.Overrides {
	return ticket.Overrides{
		Interest:   decPtr(o.Interest),
		Penalty:    decPtr(o.Penalty),
		ServiceFee: decPtr(o.ServiceFee),
	}
}

type renewReq struct {
	NewMaturity   string `json:"new_maturity"   validate:"omitempty,datetime=2006-01-02"`
	PaymentMethod string `json:"payment_method" validate:"omitempty,oneof=cash bank_transfer gcash maya other"`
	PaymentRef    string `json:"payment_ref"    validate:"max=64"`
	overridesReq
}

func (h *TicketHandler) Renew(c echo.Context) error {
	tid := c.Param("ticket_id")
	if msg := ticketIDProblem(tid); msg != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
	}
	var req renewReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Renew(c.Request().Context(), tid, ticket.RenewInput{
		NewMaturity:   parseDate(req.NewMaturity),
		PaymentMethod: req.PaymentMethod,
		PaymentRef:    req.PaymentRef,
		Overrides:     req.overrides(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type redeemReq struct {
	PaymentMethod string `json:"payment_method" validate:"omitempty,oneof=cash bank_transfer gcash maya other"`
	PaymentRef    string `json:"payment_ref"    validate:"max=64"`
	overridesReq
}

func (h *TicketHandler) Redeem(c echo.Context) error {
	tid := c.Param("ticket_id")
	if msg := ticketIDProblem(tid); msg != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
	}
	var req redeemReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Redeem(c.Request().Context(), tid, ticket.RedeemInput{
		PaymentMethod: req.PaymentMethod,
		PaymentRef:    req.PaymentRef,
		Overrides:     req.overrides(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *TicketHandler) Forfeit(c echo.Context) error {
	tid := c.Param("ticket_id")
	if msg := ticketIDProblem(tid); msg != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
	}
	dto, err := h.uc.Forfeit(c.Request().Context(), tid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *TicketHandler) Cancel(c echo.Context) error {
	tid := c.Param("ticket_id")
	if msg := ticketIDProblem(tid); msg != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
	}
	dto, err := h.uc.Cancel(c.Request().Context(), tid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type auctionReq struct {
	CustomerID    string   `json:"customer_id"     validate:"omitempty,hex32"`
	Price         *float64 `json:"price"           validate:"omitempty,gt=0,dec2"`
	AddServiceFee bool     `json:"add_service_fee"`
}

func (h *TicketHandler) Auction(c echo.Context) error {
	tid := c.Param("ticket_id")
	if msg := ticketIDProblem(tid); msg != "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
	}
	lineID := c.Param("line_id")
	if lineID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing line_id path param"})
	}
	var req auctionReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	inv, err := h.uc.AuctionInvoice(c.Request().Context(), tid, ticket.AuctionInput{
		LineID:        lineID,
		CustomerID:    req.CustomerID,
		Price:         decPtr(req.Price),
		AddServiceFee: req.AddServiceFee,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, inv)
}
