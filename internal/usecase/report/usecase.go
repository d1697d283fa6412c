package report

import (
	"context"
	"time"

	"pawnshop-backend/internal/domain/access"
	"pawnshop-backend/internal/domain/invoice"
	domainReport "pawnshop-backend/internal/domain/report"
	"pawnshop-backend/internal/domain/ticket"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	collectionDays = 90
	kpiMonths      = 12
)

var billed = []invoice.State{invoice.StatePosted, invoice.StatePaid}

type Usecase struct {
	src     domainReport.Source
	tickets ticket.Repository
	terms   ticket.Terms
	log     *zap.Logger
	now     func() time.Time
}

func NewUsecase(src domainReport.Source, tickets ticket.Repository, terms ticket.Terms, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{src: src, tickets: tickets, terms: terms, log: log, now: time.Now}
}

func (u *Usecase) today() time.Time { return ticket.DateOf(u.now()) }

// branches narrows an optional branch to the caller's scope; nil means every branch.
func branches(ctx context.Context, branchID uint64) []uint64 {
	var requested []uint64
	if branchID != 0 {
		requested = []uint64{branchID}
	}
	return access.FromContext(ctx).Filter(requested)
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func (u *Usecase) LoanBook(ctx context.Context, branchID uint64) ([]domainReport.LoanBookRow, error) {
	facts, err := u.src.Tickets(ctx, domainReport.TicketQuery{
		BranchIDs: branches(ctx, branchID),
		States:    ticket.ActiveStates,
	})
	if err != nil {
		return nil, err
	}
	return domainReport.LoanBook(facts, u.today(), u.terms.GraceDays), nil
}

func (u *Usecase) Aging(ctx context.Context, branchID uint64) (map[ticket.Bucket]domainReport.BucketSummary, error) {
	rows, err := u.LoanBook(ctx, branchID)
	if err != nil {
		return nil, err
	}
	return domainReport.AgingSummary(rows), nil
}

// Collections covers the last 90 days of renewal and redemption billing.
func (u *Usecase) Collections(ctx context.Context, branchID uint64) ([]domainReport.CollectionRow, error) {
	since := ticket.AddDays(u.today(), -collectionDays)
	charges, err := u.src.Charges(ctx, branches(ctx, branchID), since, billed)
	if err != nil {
		return nil, err
	}
	return domainReport.InterestPenaltySummary(charges), nil
}

func (u *Usecase) Inventory(ctx context.Context, branchID uint64) ([]domainReport.InventoryRow, error) {
	items, err := u.src.Items(ctx, branches(ctx, branchID),
		[]ticket.State{ticket.StatePledged, ticket.StateRenewed, ticket.StateForfeited, ticket.StateRedeemed})
	if err != nil {
		return nil, err
	}
	return domainReport.Inventory(items, u.today()), nil
}

// KPIs covers tickets created in the current month and the eleven before it.
func (u *Usecase) KPIs(ctx context.Context, branchID uint64) ([]domainReport.BranchKPI, error) {
	since := monthStart(u.today()).AddDate(0, -(kpiMonths - 1), 0)
	facts, err := u.src.Tickets(ctx, domainReport.TicketQuery{
		BranchIDs:    branches(ctx, branchID),
		CreatedSince: since,
	})
	if err != nil {
		return nil, err
	}
	return domainReport.BranchKPIs(facts), nil
}

// Dashboard reports current counts plus principal pledged and interest billed this month.
// Overdue counts tickets past their grace period only.
func (u *Usecase) Dashboard(ctx context.Context, branchID uint64) (*domainReport.Dashboard, error) {
	scope := branches(ctx, branchID)
	today := u.today()
	count := func(f ticket.Filter) (int64, error) {
		f.BranchIDs, f.Today, f.GraceDays = scope, today, u.terms.GraceDays
		return u.tickets.Count(ctx, f)
	}

	var (
		d   domainReport.Dashboard
		err error
	)
	if d.ActiveTickets, err = count(ticket.Filter{States: ticket.ActiveStates}); err != nil {
		return nil, err
	}
	if d.DueToday, err = count(ticket.Filter{DueToday: true}); err != nil {
		return nil, err
	}
	if d.InGrace, err = count(ticket.Filter{InGrace: true}); err != nil {
		return nil, err
	}
	overdue, err := count(ticket.Filter{Overdue: true})
	if err != nil {
		return nil, err
	}
	d.Overdue = overdue - d.InGrace
	if d.Forfeited, err = count(ticket.Filter{States: []ticket.State{ticket.StateForfeited}}); err != nil {
		return nil, err
	}

	month := monthStart(today)
	pledged, err := u.src.Tickets(ctx, domainReport.TicketQuery{BranchIDs: scope, PledgedSince: month})
	if err != nil {
		return nil, err
	}
	d.PrincipalMonth = decimal.Zero
	for _, f := range pledged {
		d.PrincipalMonth = d.PrincipalMonth.Add(f.Principal)
	}
	charges, err := u.src.Charges(ctx, scope, month, billed)
	if err != nil {
		return nil, err
	}
	d.InterestMonth = decimal.Zero
	for _, c := range charges {
		if c.Charge == invoice.ChargeInterest {
			d.InterestMonth = d.InterestMonth.Add(c.Amount)
		}
	}
	u.log.Debug("dashboard computed", zap.Int64("active", d.ActiveTickets), zap.Int("branches", len(scope)))
	return &d, nil
}
