package ticket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pawnshop-backend/internal/domain/access"
	"pawnshop-backend/internal/domain/catalog"
	"pawnshop-backend/internal/domain/event"
	"pawnshop-backend/internal/domain/inventory"
	"pawnshop-backend/internal/domain/invoice"
	"pawnshop-backend/internal/domain/ratetable"
	domainTicket "pawnshop-backend/internal/domain/ticket"
	"pawnshop-backend/internal/domain/uow"
	"pawnshop-backend/pkg/id"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Recorder receives transition outcomes and disbursed principal.
type Recorder interface {
	Transition(action string, err error)
	Disbursed(principal float64)
}

type nopRecorder struct{}

func (nopRecorder) Transition(string, error) {}
func (nopRecorder) Disbursed(float64)        {}

type Options struct {
	Terms                domainTicket.Terms
	Products             invoice.Products
	DefaultRateTableCode string
	AuctionCustomerID    string
}

type Usecase struct {
	ticketRepo  domainTicket.Repository
	invoiceRepo invoice.Repository
	uow         uow.UnitOfWork
	opts        Options
	log         *zap.Logger
	metrics     Recorder
	now         func() time.Time
}

// NewUsecase: reads go through the plain repos, every write through the UoW.
func NewUsecase(tickets domainTicket.Repository, invoices invoice.Repository, tx uow.UnitOfWork, opts Options, log *zap.Logger, rec Recorder) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Usecase{
		ticketRepo:  tickets,
		invoiceRepo: invoices,
		uow:         tx,
		opts:        opts,
		log:         log,
		metrics:     rec,
		now:         time.Now,
	}
}

func isNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

func notFound(err, sentinel error) error {
	if isNotFound(err) {
		return sentinel
	}
	return err
}

func (u *Usecase) today() time.Time { return domainTicket.DateOf(u.now()) }

func (u *Usecase) toDTO(t *domainTicket.Ticket) *TicketDTO {
	return &TicketDTO{
		Ticket:         t,
		Indicators:     domainTicket.IndicatorsOf(t, u.today()),
		AllowedActions: domainTicket.AllowedActions(t.State),
	}
}

func (u *Usecase) emit(ctx context.Context, r uow.Repos, eventType string, t *domainTicket.Ticket, invoiceNo, lineID string) error {
	e, err := event.NewEntry(eventType, event.AggregateTicket, t.TicketID, EventPayload{
		TicketID:     t.TicketID,
		TicketNo:     t.TicketNo,
		BranchID:     t.BranchID,
		CustomerID:   t.CustomerID,
		State:        t.State,
		Principal:    t.Principal,
		TotalDue:     t.TotalDue,
		DateMaturity: t.DateMaturity,
		InvoiceNo:    invoiceNo,
		LineID:       lineID,
	}, u.now())
	if err != nil {
		return err
	}
	return r.Outbox.Store(ctx, e)
}

// serialRule loads every category the lines reference and returns the requires-serial lookup.
func serialRule(ctx context.Context, r uow.Repos, lines []domainTicket.Line) (func(uint64) bool, error) {
	rules := map[uint64]bool{}
	for _, l := range lines {
		if _, seen := rules[l.CategoryID]; seen {
			continue
		}
		c, err := r.Categories.GetByID(ctx, l.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("%w: %d", notFound(err, catalog.ErrCategoryNotFound), l.CategoryID)
		}
		rules[l.CategoryID] = c.RequiresSerial
	}
	return func(categoryID uint64) bool { return rules[categoryID] }, nil
}

func (u *Usecase) buildLines(in []LineInput) []domainTicket.Line {
	today := u.today()
	out := make([]domainTicket.Line, 0, len(in))
	for i, l := range in {
		cond, unit := l.Condition, l.WeightUnit
		if cond == "" {
			cond = domainTicket.ConditionGood
		}
		if unit == "" {
			unit = domainTicket.WeightGram
		}
		appraisedOn := today
		out = append(out, domainTicket.Line{
			LineID:         id.NewID32(),
			Sequence:       (i + 1) * 10,
			Name:           l.Name,
			CategoryID:     l.CategoryID,
			Brand:          l.Brand,
			Model:          l.Model,
			SerialNumber:   l.SerialNumber,
			Color:          l.Color,
			Condition:      cond,
			Weight:         l.Weight,
			WeightUnit:     unit,
			Karat:          l.Karat,
			AppraisedValue: l.AppraisedValue,
			LoanAmount:     l.LoanAmount,
			Barcode:        l.Barcode,
			AppraisedBy:    l.AppraisedBy,
			AppraisalDate:  &appraisedOn,
			AppraisalNotes: l.AppraisalNotes,
		})
	}
	return out
}

// resolveRate looks up the monthly rate for a new ticket from the named or default table.
func (u *Usecase) resolveRate(ctx context.Context, r uow.Repos, code string, t *domainTicket.Ticket) error {
	if code == "" {
		code = u.opts.DefaultRateTableCode
	}
	if code == "" {
		return &domainTicket.ValidationError{Err: domainTicket.ErrInvalidInput, Details: "interest_rate is required when no rate table is configured"}
	}
	table, err := r.RateTables.GetByCode(ctx, code)
	if err != nil {
		return notFound(err, ratetable.ErrNotFound)
	}
	var categoryID uint64
	if len(t.Lines) > 0 {
		categoryID = t.Lines[0].CategoryID
	}
	rate, err := table.Resolve(ratetable.Query{
		Amount:     t.Principal,
		CategoryID: categoryID,
		BranchID:   t.BranchID,
		Date:       u.today(),
	})
	if err != nil {
		return err
	}
	t.InterestRate = rate.MonthlyPercent().Round(4)
	t.RateTableID = &table.ID
	return nil
}

func (u *Usecase) Create(ctx context.Context, in CreateInput) (*TicketDTO, error) {
	switch {
	case !id.IsID32(in.CustomerID):
		return nil, &domainTicket.ValidationError{Err: domainTicket.ErrInvalidInput, Details: "customer_id must be 32-char hex"}
	case in.BranchID == 0:
		return nil, &domainTicket.ValidationError{Err: domainTicket.ErrInvalidInput, Details: "branch_id is required"}
	case len(in.Lines) == 0:
		return nil, &domainTicket.ValidationError{Err: domainTicket.ErrNoItems}
	case in.InterestRate != nil && in.InterestRate.IsNegative():
		return nil, &domainTicket.ValidationError{Err: domainTicket.ErrInvalidInput, Details: "interest_rate cannot be negative"}
	}
	if err := access.FromContext(ctx).Check(in.BranchID); err != nil {
		return nil, err
	}

	now := u.now().UTC()
	today := domainTicket.DateOf(now)
	maturity := domainTicket.AddDays(today, u.opts.Terms.DefaultMaturityDays)
	if in.DateMaturity != nil {
		maturity = domainTicket.DateOf(*in.DateMaturity)
	}
	if !maturity.After(today) {
		return nil, domainTicket.ErrMaturityNotFuture
	}

	t := &domainTicket.Ticket{
		TicketID:       id.NewID32(),
		CustomerID:     in.CustomerID,
		CustomerName:   in.CustomerName,
		BranchID:       in.BranchID,
		Principal:      in.Principal,
		State:          domainTicket.StateDraft,
		StateUpdatedAt: now,
		DateCreated:    now,
		DateMaturity:   maturity,
		KYCIDType:      in.KYCIDType,
		KYCIDNumber:    in.KYCIDNumber,
		KYCIDExpiry:    in.KYCIDExpiry,
		Notes:          in.Notes,
		TermsAccepted:  in.TermsAccepted,
		Lines:          u.buildLines(in.Lines),
	}

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		branch, err := r.Branches.GetByID(ctx, in.BranchID)
		if err != nil {
			return notFound(err, catalog.ErrBranchNotFound)
		}
		if !branch.Active {
			return fmt.Errorf("%w: branch %s is archived", catalog.ErrBranchNotFound, branch.Code)
		}
		requiresSerial, err := serialRule(ctx, r, t.Lines)
		if err != nil {
			return err
		}
		if in.InterestRate != nil {
			t.InterestRate = *in.InterestRate
		} else if err := u.resolveRate(ctx, r, in.RateTableCode, t); err != nil {
			return err
		}
		if err := domainTicket.Validate(t, u.opts.Terms, requiresSerial); err != nil {
			return err
		}
		if t.TicketNo, err = r.Branches.NextTicketNo(ctx, t.BranchID); err != nil {
			return err
		}
		domainTicket.Recompute(t, u.opts.Terms, today)
		if err := r.Tickets.Create(ctx, t); err != nil {
			return err
		}
		return u.emit(ctx, r, event.TicketCreated, t, "", "")
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("ticket created",
		zap.String("ticket_id", t.TicketID),
		zap.String("ticket_no", t.TicketNo),
		zap.Uint64("branch_id", t.BranchID))
	return u.toDTO(t), nil
}

// load reads a ticket outside any transaction and checks the caller's branch scope.
func (u *Usecase) load(ctx context.Context, ticketID string) (*domainTicket.Ticket, error) {
	t, err := u.ticketRepo.GetByTicketID(ctx, ticketID)
	if err != nil {
		return nil, notFound(err, domainTicket.ErrNotFound)
	}
	if err := access.FromContext(ctx).Check(t.BranchID); err != nil {
		return nil, err
	}
	return t, nil
}

func (u *Usecase) Get(ctx context.Context, ticketID string) (*TicketDTO, error) {
	t, err := u.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return u.toDTO(t), nil
}

// Quote recomputes the amounts due as of today without persisting them.
func (u *Usecase) Quote(ctx context.Context, ticketID string) (*QuoteDTO, error) {
	t, err := u.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	today := u.today()
	domainTicket.Recompute(t, u.opts.Terms, today)
	return &QuoteDTO{
		TicketID:   t.TicketID,
		TicketNo:   t.TicketNo,
		AsOf:       today,
		Principal:  t.Principal,
		Interest:   t.InterestAmount,
		Penalty:    t.PenaltyAmount,
		ServiceFee: t.ServiceFee,
		TotalDue:   t.TotalDue,
		GraceEnd:   t.DateGraceEnd,
		Indicators: domainTicket.IndicatorsOf(t, today),
	}, nil
}

func (u *Usecase) Invoices(ctx context.Context, ticketID string) ([]invoice.Invoice, error) {
	t, err := u.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return u.invoiceRepo.ListByTicket(ctx, t.ID)
}

func (u *Usecase) Search(ctx context.Context, in SearchInput) (*SearchDTO, error) {
	var requested []uint64
	if in.BranchID != 0 {
		requested = []uint64{in.BranchID}
	}
	f := domainTicket.Filter{
		BranchIDs:  access.FromContext(ctx).Filter(requested),
		CustomerID: in.CustomerID,
		DueToday:   in.DueToday,
		Overdue:    in.Overdue,
		InGrace:    in.InGrace,
		Today:      u.today(),
		GraceDays:  u.opts.Terms.GraceDays,
		Limit:      in.Limit,
		Offset:     in.Offset,
	}
	if in.State != "" {
		if !in.State.Valid() {
			return nil, &domainTicket.ValidationError{Err: domainTicket.ErrInvalidInput, Details: fmt.Sprintf("unknown state %q", in.State)}
		}
		f.States = []domainTicket.State{in.State}
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}

	rows, err := u.ticketRepo.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := u.ticketRepo.Count(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &SearchDTO{Items: make([]TicketDTO, 0, len(rows)), Total: total}
	for i := range rows {
		out.Items = append(out.Items, *u.toDTO(&rows[i]))
	}
	return out, nil
}

// withTicket locks the ticket, checks scope and runs fn inside one transaction.
func (u *Usecase) withTicket(ctx context.Context, ticketID string, fn func(r uow.Repos, t *domainTicket.Ticket) error) (*domainTicket.Ticket, error) {
	var locked *domainTicket.Ticket
	err := u.uow.WithinTicketTx(ctx, ticketID, func(r uow.Repos, t *domainTicket.Ticket) error {
		if err := access.FromContext(ctx).Check(t.BranchID); err != nil {
			return err
		}
		locked = t
		return fn(r, t)
	})
	if err != nil {
		return nil, notFound(err, domainTicket.ErrNotFound)
	}
	return locked, nil
}

func (u *Usecase) Amend(ctx context.Context, ticketID string, in AmendInput) (*TicketDTO, error) {
	t, err := u.withTicket(ctx, ticketID, func(r uow.Repos, t *domainTicket.Ticket) error {
		if t.State != domainTicket.StateDraft {
			return domainTicket.ErrNotEditable
		}
		today := u.today()
		if in.CustomerName != nil {
			t.CustomerName = *in.CustomerName
		}
		if in.Principal != nil {
			t.Principal = *in.Principal
		}
		if in.InterestRate != nil {
			if in.InterestRate.IsNegative() {
				return &domainTicket.ValidationError{Err: domainTicket.ErrInvalidInput, Details: "interest_rate cannot be negative"}
			}
			t.InterestRate = *in.InterestRate
		}
		if in.DateMaturity != nil {
			m := domainTicket.DateOf(*in.DateMaturity)
			if !m.After(today) {
				return domainTicket.ErrMaturityNotFuture
			}
			t.DateMaturity = m
		}
		if in.Notes != nil {
			t.Notes = *in.Notes
		}
		if in.Lines != nil {
			if err := r.Tickets.ReplaceLines(ctx, t, u.buildLines(in.Lines)); err != nil {
				return err
			}
		}
		requiresSerial, err := serialRule(ctx, r, t.Lines)
		if err != nil {
			return err
		}
		if err := domainTicket.Validate(t, u.opts.Terms, requiresSerial); err != nil {
			return err
		}
		domainTicket.Recompute(t, u.opts.Terms, today)
		return r.Tickets.Save(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return u.toDTO(t), nil
}

func itemOf(t *domainTicket.Ticket, l domainTicket.Line) inventory.Item {
	return inventory.Item{
		LineID:     l.ID,
		TicketID:   t.ID,
		BranchID:   t.BranchID,
		TicketNo:   t.TicketNo,
		Name:       l.Name,
		Brand:      l.Brand,
		Serial:     l.SerialNumber,
		ProductRef: l.ProductRef,
	}
}

func validMethod(m domainTicket.DisbursementMethod) bool {
	switch m {
	case domainTicket.DisburseCash, domainTicket.DisburseBankTransfer, domainTicket.DisburseGCash,
		domainTicket.DisburseMaya, domainTicket.DisburseOther:
		return true
	}
	return false
}

func (u *Usecase) Disburse(ctx context.Context, ticketID string, in DisburseInput) (out *TicketDTO, err error) {
	defer func() { u.metrics.Transition(string(domainTicket.ActionDisburse), err) }()

	if in.Method == "" {
		in.Method = domainTicket.DisburseCash
	}
	if !validMethod(in.Method) {
		return nil, &domainTicket.ValidationError{Err: domainTicket.ErrInvalidInput, Details: fmt.Sprintf("unknown disbursement method %q", in.Method)}
	}
	t, err := u.withTicket(ctx, ticketID, func(r uow.Repos, t *domainTicket.Ticket) error {
		requiresSerial, err := serialRule(ctx, r, t.Lines)
		if err != nil {
			return err
		}
		if err := domainTicket.Validate(t, u.opts.Terms, requiresSerial); err != nil {
			return err
		}
		now := u.now()
		if err := domainTicket.Transition(t, domainTicket.ActionDisburse, now); err != nil {
			return err
		}
		t.DisbursementMethod = in.Method
		t.DisbursementReference = in.Reference
		t.DisbursedBy = in.DisbursedBy

		ledger := inventory.NewLedger(r.Moves, isNotFound)
		for i := range t.Lines {
			_, ref, err := ledger.Custody(ctx, itemOf(t, t.Lines[i]))
			if err != nil {
				return err
			}
			t.Lines[i].ProductRef = ref
		}
		domainTicket.Recompute(t, u.opts.Terms, domainTicket.DateOf(now))
		if err := r.Tickets.Save(ctx, t); err != nil {
			return err
		}
		return u.emit(ctx, r, event.TicketPledged, t, "", "")
	})
	if err != nil {
		return nil, err
	}
	principal, _ := t.Principal.Float64()
	u.metrics.Disbursed(principal)
	u.log.Info("ticket disbursed",
		zap.String("ticket_id", t.TicketID),
		zap.String("method", string(t.DisbursementMethod)),
		zap.String("principal", t.Principal.StringFixed(2)))
	return u.toDTO(t), nil
}

func pick(override *decimal.Decimal, computed decimal.Decimal) decimal.Decimal {
	if override != nil {
		return *override
	}
	return computed
}

// charges prefers the caller's overrides over the amounts recomputed for today.
func (u *Usecase) charges(t *domainTicket.Ticket, o Overrides, today time.Time) (invoice.Charges, error) {
	domainTicket.Recompute(t, u.opts.Terms, today)
	c := invoice.Charges{
		Interest:   pick(o.Interest, t.InterestAmount),
		Penalty:    pick(o.Penalty, t.PenaltyAmount),
		ServiceFee: pick(o.ServiceFee, t.ServiceFee),
	}
	if c.Interest.IsNegative() || c.Penalty.IsNegative() || c.ServiceFee.IsNegative() {
		return c, &domainTicket.ValidationError{Err: domainTicket.ErrInvalidInput, Details: "charges cannot be negative"}
	}
	return c, nil
}

// settle creates a posted and paid invoice for the given lines.
func (u *Usecase) settle(ctx context.Context, r uow.Repos, kind invoice.Kind, t *domainTicket.Ticket, lines []invoice.Line, method, ref string) (*invoice.Invoice, error) {
	now := u.now()
	inv, err := invoice.New(kind, t.ID, t.BranchID, t.CustomerID, t.TicketNo, lines, now)
	if err != nil {
		return nil, err
	}
	if method == "" {
		method = string(domainTicket.DisburseCash)
	}
	if err := inv.Post(now); err != nil {
		return nil, err
	}
	if err := inv.MarkPaid(method, ref, now); err != nil {
		return nil, err
	}
	if err := r.Invoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (u *Usecase) Renew(ctx context.Context, ticketID string, in RenewInput) (out *TransitionDTO, err error) {
	defer func() { u.metrics.Transition(string(domainTicket.ActionRenew), err) }()

	var inv *invoice.Invoice
	t, err := u.withTicket(ctx, ticketID, func(r uow.Repos, t *domainTicket.Ticket) error {
		now := u.now()
		today := domainTicket.DateOf(now)
		if _, err := domainTicket.Guard(t, domainTicket.ActionRenew, now); err != nil {
			return err
		}
		maturity := domainTicket.AddDays(t.DateMaturity, u.opts.Terms.DefaultMaturityDays)
		if in.NewMaturity != nil {
			maturity = domainTicket.DateOf(*in.NewMaturity)
		}
		if !maturity.After(today) || !maturity.After(t.DateMaturity) {
			return fmt.Errorf("%w: new maturity %s must be after %s and today",
				domainTicket.ErrMaturityNotFuture, maturity.Format(time.DateOnly), t.DateMaturity.Format(time.DateOnly))
		}

		c, err := u.charges(t, in.Overrides, today)
		if err != nil {
			return err
		}
		lines, err := invoice.RenewalLines(u.opts.Products, c, t.TicketNo)
		if err != nil {
			return err
		}
		if len(lines) > 0 {
			if inv, err = u.settle(ctx, r, invoice.KindRenewal, t, lines, in.PaymentMethod, in.PaymentRef); err != nil {
				return err
			}
		}

		if err := domainTicket.Transition(t, domainTicket.ActionRenew, now); err != nil {
			return err
		}
		t.DateMaturity = maturity
		domainTicket.Recompute(t, u.opts.Terms, today)
		if err := r.Tickets.Save(ctx, t); err != nil {
			return err
		}
		return u.emit(ctx, r, event.TicketRenewed, t, invoiceNo(inv), "")
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("ticket renewed",
		zap.String("ticket_id", t.TicketID),
		zap.Time("new_maturity", t.DateMaturity),
		zap.String("invoice_no", invoiceNo(inv)))
	return &TransitionDTO{Ticket: u.toDTO(t), Invoice: inv}, nil
}

func invoiceNo(inv *invoice.Invoice) string {
	if inv == nil {
		return ""
	}
	return inv.InvoiceNo
}

func (u *Usecase) Redeem(ctx context.Context, ticketID string, in RedeemInput) (out *TransitionDTO, err error) {
	defer func() { u.metrics.Transition(string(domainTicket.ActionRedeem), err) }()

	var inv *invoice.Invoice
	t, err := u.withTicket(ctx, ticketID, func(r uow.Repos, t *domainTicket.Ticket) error {
		now := u.now()
		today := domainTicket.DateOf(now)
		if _, err := domainTicket.Guard(t, domainTicket.ActionRedeem, now); err != nil {
			return err
		}
		c, err := u.charges(t, in.Overrides, today)
		if err != nil {
			return err
		}
		c.Principal = t.Principal
		lines, err := invoice.RedemptionLines(u.opts.Products, c, t.TicketNo)
		if err != nil {
			return err
		}
		if inv, err = u.settle(ctx, r, invoice.KindRedemption, t, lines, in.PaymentMethod, in.PaymentRef); err != nil {
			return err
		}

		if err := domainTicket.Transition(t, domainTicket.ActionRedeem, now); err != nil {
			return err
		}
		ledger := inventory.NewLedger(r.Moves, isNotFound)
		for _, l := range t.Lines {
			if _, err := ledger.Release(ctx, itemOf(t, l)); err != nil {
				return err
			}
		}
		domainTicket.Recompute(t, u.opts.Terms, today)
		if err := r.Tickets.Save(ctx, t); err != nil {
			return err
		}
		return u.emit(ctx, r, event.TicketRedeemed, t, inv.InvoiceNo, "")
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("ticket redeemed",
		zap.String("ticket_id", t.TicketID),
		zap.String("invoice_no", inv.InvoiceNo),
		zap.String("total", inv.Total.StringFixed(2)))
	return &TransitionDTO{Ticket: u.toDTO(t), Invoice: inv}, nil
}

func (u *Usecase) Forfeit(ctx context.Context, ticketID string) (out *TicketDTO, err error) {
	defer func() { u.metrics.Transition(string(domainTicket.ActionForfeit), err) }()

	t, err := u.withTicket(ctx, ticketID, func(r uow.Repos, t *domainTicket.Ticket) error {
		now := u.now()
		// grace end follows the current settings, not the value stored at the last save
		domainTicket.Recompute(t, u.opts.Terms, domainTicket.DateOf(now))
		if err := domainTicket.Transition(t, domainTicket.ActionForfeit, now); err != nil {
			return err
		}
		ledger := inventory.NewLedger(r.Moves, isNotFound)
		for _, l := range t.Lines {
			if _, err := ledger.Forfeit(ctx, itemOf(t, l)); err != nil {
				return err
			}
		}
		domainTicket.Recompute(t, u.opts.Terms, domainTicket.DateOf(now))
		if err := r.Tickets.Save(ctx, t); err != nil {
			return err
		}
		return u.emit(ctx, r, event.TicketForfeited, t, "", "")
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("ticket forfeited", zap.String("ticket_id", t.TicketID), zap.Int("items", len(t.Lines)))
	return u.toDTO(t), nil
}

func (u *Usecase) Cancel(ctx context.Context, ticketID string) (out *TicketDTO, err error) {
	defer func() { u.metrics.Transition(string(domainTicket.ActionCancel), err) }()

	t, err := u.withTicket(ctx, ticketID, func(r uow.Repos, t *domainTicket.Ticket) error {
		now := u.now()
		if err := domainTicket.Transition(t, domainTicket.ActionCancel, now); err != nil {
			return err
		}
		domainTicket.Recompute(t, u.opts.Terms, domainTicket.DateOf(now))
		if err := r.Tickets.Save(ctx, t); err != nil {
			return err
		}
		return u.emit(ctx, r, event.TicketCancelled, t, "", "")
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("ticket cancelled", zap.String("ticket_id", t.TicketID))
	return u.toDTO(t), nil
}

// AuctionInvoice drafts a sale invoice for one forfeited item.
func (u *Usecase) AuctionInvoice(ctx context.Context, ticketID string, in AuctionInput) (*invoice.Invoice, error) {
	buyer := in.CustomerID
	if buyer == "" {
		buyer = u.opts.AuctionCustomerID
	}
	if buyer == "" {
		return nil, &domainTicket.ValidationError{Err: domainTicket.ErrInvalidInput, Details: "auction customer is not configured"}
	}
	if in.Price != nil && !in.Price.IsPositive() {
		return nil, &domainTicket.ValidationError{Err: domainTicket.ErrInvalidInput, Details: "auction price must be positive"}
	}

	var inv *invoice.Invoice
	_, err := u.withTicket(ctx, ticketID, func(r uow.Repos, t *domainTicket.Ticket) error {
		if t.State != domainTicket.StateForfeited {
			return fmt.Errorf("%w: only forfeited items can be auctioned (ticket is %s)", domainTicket.ErrInvalidTransition, t.State)
		}
		var line *domainTicket.Line
		for i := range t.Lines {
			if t.Lines[i].LineID == in.LineID {
				line = &t.Lines[i]
				break
			}
		}
		if line == nil {
			return domainTicket.ErrLineNotFound
		}
		if line.ProductRef == "" {
			return inventory.ErrNoProduct
		}
		price := line.AppraisedValue
		if in.Price != nil {
			price = *in.Price
		}
		lines := invoice.AuctionLines(u.opts.Products, line.ProductRef, line.DisplayName(), t.TicketNo, price, in.AddServiceFee)
		var err error
		if inv, err = invoice.New(invoice.KindAuction, t.ID, t.BranchID, buyer, t.TicketNo, lines, u.now()); err != nil {
			return err
		}
		if err := r.Invoices.Create(ctx, inv); err != nil {
			return err
		}
		return u.emit(ctx, r, event.AuctionInvoiced, t, inv.InvoiceNo, line.LineID)
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("auction invoice drafted", zap.String("ticket_id", ticketID), zap.String("invoice_no", inv.InvoiceNo))
	return inv, nil
}
