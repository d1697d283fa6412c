package ticket

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type FeeMode string

const (
	FeeFixed   FeeMode = "fixed"
	FeePercent FeeMode = "percent"
	FeeBoth    FeeMode = "both"
)

// Terms carries the business tunables every computation reads.
type Terms struct {
	GraceDays           int
	DefaultMaturityDays int
	PenaltyRatePercent  decimal.Decimal
	ServiceFeeMode      FeeMode
	ServiceFeePercent   decimal.Decimal
	ServiceFeeAmount    decimal.Decimal
	MaxLTVRatio         decimal.Decimal
	MinLoanAmount       decimal.Decimal
	// MaxLoanAmount of zero disables the upper bound.
	MaxLoanAmount decimal.Decimal
}

func DefaultTerms() Terms {
	return Terms{
		GraceDays:           7,
		DefaultMaturityDays: 30,
		PenaltyRatePercent:  decimal.NewFromFloat(3.0),
		ServiceFeeMode:      FeePercent,
		ServiceFeePercent:   decimal.NewFromFloat(1.0),
		ServiceFeeAmount:    decimal.Zero,
		MaxLTVRatio:         decimal.NewFromFloat(80.0),
		MinLoanAmount:       decimal.NewFromFloat(100.0),
		MaxLoanAmount:       decimal.NewFromFloat(500000.0),
	}
}

var (
	hundred   = decimal.NewFromInt(100)
	monthDays = decimal.NewFromInt(30)
)

// DateOf truncates t to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole calendar days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	return int(math.Round(DateOf(b).Sub(DateOf(a)).Hours() / 24))
}

func AddDays(t time.Time, days int) time.Time { return DateOf(t).AddDate(0, 0, days) }

func AppraisedValue(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.AppraisedValue)
	}
	return total
}

// LTVRatio is principal / appraised * 100, or 0 without collateral value.
func LTVRatio(principal, appraised decimal.Decimal) decimal.Decimal {
	if appraised.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return principal.Div(appraised).Mul(hundred)
}

// Interest uses a flat 30-day month over the pledge → maturity span.
func Interest(state State, principal, monthlyRate decimal.Decimal, pledged *time.Time, maturity time.Time) decimal.Decimal {
	if state == StateDraft || state == StateCancelled {
		return decimal.Zero
	}
	if pledged == nil || maturity.IsZero() {
		return decimal.Zero
	}
	days := decimal.NewFromInt(int64(DaysBetween(*pledged, maturity)))
	return principal.Mul(monthlyRate).Div(hundred).Mul(days).Div(monthDays)
}

// Penalty accrues on principal for every day past maturity while the ticket is overdue.
func Penalty(principal decimal.Decimal, ind Indicators, terms Terms) decimal.Decimal {
	if !ind.IsOverdue {
		return decimal.Zero
	}
	days := decimal.NewFromInt(int64(-ind.DaysToMaturity))
	return principal.Mul(terms.PenaltyRatePercent).Div(hundred).Mul(days).Div(monthDays)
}

func ServiceFee(principal decimal.Decimal, terms Terms) decimal.Decimal {
	switch terms.ServiceFeeMode {
	case FeeFixed:
		return terms.ServiceFeeAmount
	case FeePercent:
		return principal.Mul(terms.ServiceFeePercent).Div(hundred)
	case FeeBoth:
		return principal.Mul(terms.ServiceFeePercent).Div(hundred).Add(terms.ServiceFeeAmount)
	default:
		return decimal.Zero
	}
}

func TotalDue(state State, principal, interest, penalty, fee decimal.Decimal) decimal.Decimal {
	if state.IsClosed() {
		return decimal.Zero
	}
	return principal.Add(interest).Add(penalty).Add(fee)
}

func GraceEnd(maturity time.Time, graceDays int) time.Time {
	if maturity.IsZero() {
		return time.Time{}
	}
	return AddDays(maturity, graceDays)
}

// Recompute refreshes every derived field of t as of today. Call it after any change to
// principal, rate, dates, state or lines.
func Recompute(t *Ticket, terms Terms, today time.Time) {
	t.AppraisedValue = AppraisedValue(t.Lines).Round(2)
	t.LTVRatio = LTVRatio(t.Principal, t.AppraisedValue).Round(2)
	t.DateGraceEnd = GraceEnd(t.DateMaturity, terms.GraceDays)

	ind := ComputeIndicators(t.State, t.DateMaturity, t.DateGraceEnd, today)
	t.InterestAmount = Interest(t.State, t.Principal, t.InterestRate, t.DatePledged, t.DateMaturity).Round(2)
	t.PenaltyAmount = Penalty(t.Principal, ind, terms).Round(2)
	t.ServiceFee = ServiceFee(t.Principal, terms).Round(2)
	t.TotalDue = TotalDue(t.State, t.Principal, t.InterestAmount, t.PenaltyAmount, t.ServiceFee)

	for i := range t.Lines {
		t.Lines[i].BranchID = t.BranchID
	}
}

// Validate runs the save-time constraints on a ticket: item presence and values, loan
// limits and the LTV ceiling. requiresSerial reports whether a category needs a serial number.
func Validate(t *Ticket, terms Terms, requiresSerial func(categoryID uint64) bool) error {
	if t.State != StateDraft && len(t.Lines) == 0 {
		return invalid(ErrNoItems, "ticket %s has no lines", t.Ref())
	}
	for _, l := range t.Lines {
		if l.AppraisedValue.LessThanOrEqual(decimal.Zero) {
			return invalid(ErrNonPositiveAppraisal, "item %q", l.Name)
		}
		if l.Weight.IsNegative() {
			return invalid(ErrNegativeWeight, "item %q", l.Name)
		}
		if requiresSerial != nil && requiresSerial(l.CategoryID) && l.SerialNumber == "" {
			return invalid(ErrSerialRequired, "item %q", l.Name)
		}
	}
	if t.Principal.LessThan(terms.MinLoanAmount) {
		return invalid(ErrAmountOutOfRange, "principal amount must be at least %s", terms.MinLoanAmount.StringFixed(2))
	}
	if terms.MaxLoanAmount.IsPositive() && t.Principal.GreaterThan(terms.MaxLoanAmount) {
		return invalid(ErrAmountOutOfRange, "principal amount cannot exceed %s", terms.MaxLoanAmount.StringFixed(2))
	}
	ltv := LTVRatio(t.Principal, AppraisedValue(t.Lines))
	if ltv.GreaterThan(terms.MaxLTVRatio) {
		return invalid(ErrLTVExceeded, "LTV ratio (%s%%) exceeds maximum allowed (%s%%)",
			ltv.StringFixed(2), terms.MaxLTVRatio.StringFixed(2))
	}
	return nil
}
