package report

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"pawnshop-backend/internal/domain/invoice"
	"pawnshop-backend/internal/domain/ticket"
)

// TicketFacts is the flat projection of a ticket that every report reads.
type TicketFacts struct {
	ID             uint64
	TicketID       string
	TicketNo       string
	BranchID       uint64
	CustomerID     string
	CustomerName   string
	State          ticket.State
	Principal      decimal.Decimal
	InterestAmount decimal.Decimal
	PenaltyAmount  decimal.Decimal
	ServiceFee     decimal.Decimal
	TotalDue       decimal.Decimal
	DateCreated    time.Time
	DatePledged    *time.Time
	DateMaturity   time.Time
	DateRedeemed   *time.Time
	ItemCount      int
}

// ItemFacts is one collateral line joined with its ticket.
type ItemFacts struct {
	TicketID       uint64
	BranchID       uint64
	CategoryID     uint64
	State          ticket.State
	AppraisedValue decimal.Decimal
	Principal      decimal.Decimal
	DatePledged    *time.Time
}

// ChargeFacts is one billed invoice line.
type ChargeFacts struct {
	InvoiceID   uint64
	InvoiceDate time.Time
	BranchID    uint64
	Kind        invoice.Kind
	Charge      invoice.Charge
	Amount      decimal.Decimal
}

// TicketQuery narrows the ticket projection. A nil BranchIDs means every branch; zero
// times are not applied.
type TicketQuery struct {
	BranchIDs    []uint64
	States       []ticket.State
	CreatedSince time.Time
	PledgedSince time.Time
}

// Source loads the projections. A nil branchIDs slice means every branch.
type Source interface {
	Tickets(ctx context.Context, q TicketQuery) ([]TicketFacts, error)
	Items(ctx context.Context, branchIDs []uint64, states []ticket.State) ([]ItemFacts, error)
	Charges(ctx context.Context, branchIDs []uint64, since time.Time, states []invoice.State) ([]ChargeFacts, error)
}

type LoanBookRow struct {
	TicketID       string          `json:"ticket_id"`
	TicketNo       string          `json:"ticket_no"`
	BranchID       uint64          `json:"branch_id"`
	CustomerID     string          `json:"customer_id"`
	CustomerName   string          `json:"customer_name"`
	State          ticket.State    `json:"state"`
	DateCreated    time.Time       `json:"date_created"`
	DatePledged    *time.Time      `json:"date_pledged,omitempty"`
	DateMaturity   time.Time       `json:"date_maturity"`
	Principal      decimal.Decimal `json:"principal"`
	InterestAmount decimal.Decimal `json:"interest_amount"`
	TotalDue       decimal.Decimal `json:"total_due"`
	ItemCount      int             `json:"item_count"`
	DaysToMaturity int             `json:"days_to_maturity"`
	DaysOverdue    int             `json:"days_overdue"`
	Bucket         ticket.Bucket   `json:"aging_bucket"`
}

// LoanBook classifies active tickets into aging buckets, earliest maturity first.
func LoanBook(facts []TicketFacts, today time.Time, graceDays int) []LoanBookRow {
	rows := make([]LoanBookRow, 0, len(facts))
	for _, f := range facts {
		if !f.State.IsActive() {
			continue
		}
		toMaturity := ticket.DaysBetween(today, f.DateMaturity)
		if toMaturity < 0 {
			toMaturity = 0
		}
		rows = append(rows, LoanBookRow{
			TicketID:       f.TicketID,
			TicketNo:       f.TicketNo,
			BranchID:       f.BranchID,
			CustomerID:     f.CustomerID,
			CustomerName:   f.CustomerName,
			State:          f.State,
			DateCreated:    f.DateCreated,
			DatePledged:    f.DatePledged,
			DateMaturity:   f.DateMaturity,
			Principal:      f.Principal,
			InterestAmount: f.InterestAmount,
			TotalDue:       f.TotalDue,
			ItemCount:      f.ItemCount,
			DaysToMaturity: toMaturity,
			DaysOverdue:    ticket.DaysOverdue(f.DateMaturity, today),
			Bucket:         ticket.BucketFor(f.DateMaturity, today, graceDays),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].DateMaturity.Equal(rows[j].DateMaturity) {
			return rows[i].DateMaturity.Before(rows[j].DateMaturity)
		}
		return rows[i].TicketNo < rows[j].TicketNo
	})
	return rows
}

type BucketSummary struct {
	Count          int             `json:"count"`
	TotalPrincipal decimal.Decimal `json:"total_principal"`
	TotalDue       decimal.Decimal `json:"total_due"`
}

// AgingSummary totals the loan book per bucket; every bucket is present.
func AgingSummary(rows []LoanBookRow) map[ticket.Bucket]BucketSummary {
	out := make(map[ticket.Bucket]BucketSummary, len(ticket.Buckets))
	for _, b := range ticket.Buckets {
		out[b] = BucketSummary{TotalPrincipal: decimal.Zero, TotalDue: decimal.Zero}
	}
	for _, r := range rows {
		s := out[r.Bucket]
		s.Count++
		s.TotalPrincipal = s.TotalPrincipal.Add(r.Principal)
		s.TotalDue = s.TotalDue.Add(r.TotalDue)
		out[r.Bucket] = s
	}
	return out
}

type CollectionRow struct {
	Date            time.Time       `json:"date"`
	BranchID        uint64          `json:"branch_id"`
	RenewalCount    int             `json:"renewal_count"`
	RedemptionCount int             `json:"redemption_count"`
	Interest        decimal.Decimal `json:"interest_collected"`
	Penalty         decimal.Decimal `json:"penalty_collected"`
	ServiceFee      decimal.Decimal `json:"service_fee_collected"`
	Total           decimal.Decimal `json:"total_collected"`
}

type dayBranch struct {
	day    time.Time
	branch uint64
}

// InterestPenaltySummary totals interest, penalty and fees billed on renewals and
// redemptions per day and branch, latest day first.
func InterestPenaltySummary(charges []ChargeFacts) []CollectionRow {
	acc := map[dayBranch]*CollectionRow{}
	seen := map[uint64]bool{}
	for _, c := range charges {
		if c.Kind != invoice.KindRenewal && c.Kind != invoice.KindRedemption {
			continue
		}
		k := dayBranch{ticket.DateOf(c.InvoiceDate), c.BranchID}
		r, ok := acc[k]
		if !ok {
			r = &CollectionRow{Date: k.day, BranchID: k.branch, Interest: decimal.Zero, Penalty: decimal.Zero, ServiceFee: decimal.Zero, Total: decimal.Zero}
			acc[k] = r
		}
		if !seen[c.InvoiceID] {
			seen[c.InvoiceID] = true
			if c.Kind == invoice.KindRenewal {
				r.RenewalCount++
			} else {
				r.RedemptionCount++
			}
		}
		switch c.Charge {
		case invoice.ChargeInterest:
			r.Interest = r.Interest.Add(c.Amount)
		case invoice.ChargePenalty:
			r.Penalty = r.Penalty.Add(c.Amount)
		case invoice.ChargeServiceFee:
			r.ServiceFee = r.ServiceFee.Add(c.Amount)
		default:
			continue
		}
		r.Total = r.Total.Add(c.Amount)
	}
	out := make([]CollectionRow, 0, len(acc))
	for _, r := range acc {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].BranchID < out[j].BranchID
	})
	return out
}

type InventoryStatus string

const (
	InventoryCustody   InventoryStatus = "custody"
	InventoryForfeited InventoryStatus = "forfeited"
	InventoryReleased  InventoryStatus = "released"
)

func inventoryStatus(s ticket.State) (InventoryStatus, bool) {
	switch s {
	case ticket.StatePledged, ticket.StateRenewed:
		return InventoryCustody, true
	case ticket.StateForfeited:
		return InventoryForfeited, true
	case ticket.StateRedeemed:
		return InventoryReleased, true
	}
	return "", false
}

type InventoryRow struct {
	BranchID            uint64          `json:"branch_id"`
	CategoryID          uint64          `json:"category_id"`
	Status              InventoryStatus `json:"status"`
	ItemCount           int             `json:"item_count"`
	TotalAppraisedValue decimal.Decimal `json:"total_appraised_value"`
	TotalPrincipal      decimal.Decimal `json:"total_principal"`
	AvgDaysInCustody    float64         `json:"avg_days_in_custody"`
}

type invKey struct {
	branch, category uint64
	status           InventoryStatus
}

// Inventory groups items by branch, category and custody status. Principal is counted once
// per ticket within a group.
func Inventory(items []ItemFacts, today time.Time) []InventoryRow {
	type agg struct {
		row       InventoryRow
		tickets   map[uint64]bool
		days, cnt int
	}
	acc := map[invKey]*agg{}
	for _, it := range items {
		status, ok := inventoryStatus(it.State)
		if !ok {
			continue
		}
		k := invKey{it.BranchID, it.CategoryID, status}
		a, ok := acc[k]
		if !ok {
			a = &agg{
				row:     InventoryRow{BranchID: k.branch, CategoryID: k.category, Status: status, TotalAppraisedValue: decimal.Zero, TotalPrincipal: decimal.Zero},
				tickets: map[uint64]bool{},
			}
			acc[k] = a
		}
		a.row.ItemCount++
		a.row.TotalAppraisedValue = a.row.TotalAppraisedValue.Add(it.AppraisedValue)
		if !a.tickets[it.TicketID] {
			a.tickets[it.TicketID] = true
			a.row.TotalPrincipal = a.row.TotalPrincipal.Add(it.Principal)
		}
		if it.DatePledged != nil {
			a.days += ticket.DaysBetween(*it.DatePledged, today)
			a.cnt++
		}
	}
	out := make([]InventoryRow, 0, len(acc))
	for _, a := range acc {
		if a.cnt > 0 {
			a.row.AvgDaysInCustody = float64(a.days) / float64(a.cnt)
		}
		out = append(out, a.row)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.BranchID != b.BranchID {
			return a.BranchID < b.BranchID
		}
		if a.Status != b.Status {
			return a.Status < b.Status
		}
		return a.CategoryID < b.CategoryID
	})
	return out
}

type BranchKPI struct {
	BranchID            uint64          `json:"branch_id"`
	PeriodStart         time.Time       `json:"period_start"`
	PeriodEnd           time.Time       `json:"period_end"`
	NewTickets          int             `json:"new_tickets"`
	RenewedTickets      int             `json:"renewed_tickets"`
	RedeemedTickets     int             `json:"redeemed_tickets"`
	ForfeitedTickets    int             `json:"forfeited_tickets"`
	PrincipalDisbursed  decimal.Decimal `json:"total_principal_disbursed"`
	InterestCollected   decimal.Decimal `json:"total_interest_collected"`
	PenaltyCollected    decimal.Decimal `json:"total_penalty_collected"`
	RedemptionRate      float64         `json:"redemption_rate"`
	ForfeitureRate      float64         `json:"forfeiture_rate"`
	AvgTicketSize       decimal.Decimal `json:"avg_ticket_size"`
	AvgDaysToRedemption float64         `json:"avg_days_to_redemption"`
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// BranchKPIs groups tickets by branch and creation month. Drafts and cancelled tickets are
// never disbursed and are left out.
func BranchKPIs(facts []TicketFacts) []BranchKPI {
	type key struct {
		branch uint64
		month  time.Time
	}
	type agg struct {
		kpi                  BranchKPI
		redeemDays, redeemed int
	}
	acc := map[key]*agg{}
	for _, f := range facts {
		if f.State == ticket.StateDraft || f.State == ticket.StateCancelled {
			continue
		}
		k := key{f.BranchID, monthStart(f.DateCreated)}
		a, ok := acc[k]
		if !ok {
			a = &agg{kpi: BranchKPI{
				BranchID:           k.branch,
				PeriodStart:        k.month,
				PeriodEnd:          k.month.AddDate(0, 1, -1),
				PrincipalDisbursed: decimal.Zero,
				InterestCollected:  decimal.Zero,
				PenaltyCollected:   decimal.Zero,
				AvgTicketSize:      decimal.Zero,
			}}
			acc[k] = a
		}
		kp := &a.kpi
		kp.NewTickets++
		kp.PrincipalDisbursed = kp.PrincipalDisbursed.Add(f.Principal)
		switch f.State {
		case ticket.StateRenewed:
			kp.RenewedTickets++
			kp.InterestCollected = kp.InterestCollected.Add(f.InterestAmount)
		case ticket.StateRedeemed:
			kp.RedeemedTickets++
			kp.InterestCollected = kp.InterestCollected.Add(f.InterestAmount)
			kp.PenaltyCollected = kp.PenaltyCollected.Add(f.PenaltyAmount)
			if f.DatePledged != nil && f.DateRedeemed != nil {
				a.redeemDays += ticket.DaysBetween(*f.DatePledged, *f.DateRedeemed)
				a.redeemed++
			}
		case ticket.StateForfeited:
			kp.ForfeitedTickets++
		}
	}
	out := make([]BranchKPI, 0, len(acc))
	for _, a := range acc {
		kp := a.kpi
		if closed := kp.RedeemedTickets + kp.ForfeitedTickets; closed > 0 {
			kp.RedemptionRate = float64(kp.RedeemedTickets) / float64(closed) * 100
			kp.ForfeitureRate = float64(kp.ForfeitedTickets) / float64(closed) * 100
		}
		if kp.NewTickets > 0 {
			kp.AvgTicketSize = kp.PrincipalDisbursed.Div(decimal.NewFromInt(int64(kp.NewTickets))).Round(2)
		}
		if a.redeemed > 0 {
			kp.AvgDaysToRedemption = float64(a.redeemDays) / float64(a.redeemed)
		}
		out = append(out, kp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BranchID != out[j].BranchID {
			return out[i].BranchID < out[j].BranchID
		}
		return out[i].PeriodStart.After(out[j].PeriodStart)
	})
	return out
}

type Dashboard struct {
	ActiveTickets  int64           `json:"active_tickets"`
	DueToday       int64           `json:"due_today"`
	InGrace        int64           `json:"in_grace"`
	Overdue        int64           `json:"overdue"`
	Forfeited      int64           `json:"forfeited"`
	PrincipalMonth decimal.Decimal `json:"principal_month"`
	InterestMonth  decimal.Decimal `json:"interest_month"`
}
