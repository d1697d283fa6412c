package ratetable

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Rate is the tier picked for a loan.
type Rate struct {
	Percent decimal.Decimal
	Period  Period
	LineID  uint64
}

var (
	thirty = decimal.NewFromInt(30)
	twelve = decimal.NewFromInt(12)
)

// MonthlyPercent normalises the rate to percent per 30-day month.
func (r Rate) MonthlyPercent() decimal.Decimal {
	switch r.Period {
	case PeriodDay:
		return r.Percent.Mul(thirty)
	case PeriodYear:
		return r.Percent.Div(twelve)
	default:
		return r.Percent
	}
}

// Query carries the loan attributes a rate is looked up by. Zero ids mean "unspecified".
type Query struct {
	Amount     decimal.Decimal
	CategoryID uint64
	BranchID   uint64
	Date       time.Time
}

// ValidOn reports whether the table is active and its validity window contains date.
func (t *RateTable) ValidOn(date time.Time) bool {
	if !t.Active {
		return false
	}
	day := dateOf(date)
	if day.Before(dateOf(t.DateFrom)) {
		return false
	}
	return t.DateTo == nil || !day.After(dateOf(*t.DateTo))
}

// AppliesToBranch is true for unrestricted tables and for branches in the table's set.
func (t *RateTable) AppliesToBranch(branchID uint64) bool {
	if len(t.Branches) == 0 || branchID == 0 {
		return true
	}
	for _, b := range t.Branches {
		if b.BranchID == branchID {
			return true
		}
	}
	return false
}

// Matches reports whether the line covers q: AmountFrom <= amount < AmountTo and each set
// filter equals the query.
func (l Line) Matches(q Query) bool {
	if q.Amount.LessThan(l.AmountFrom) {
		return false
	}
	if l.AmountTo.Valid && !q.Amount.LessThan(l.AmountTo.Decimal) {
		return false
	}
	if l.HasCategory() && *l.CategoryID != q.CategoryID {
		return false
	}
	if l.HasBranch() && *l.BranchID != q.BranchID {
		return false
	}
	return true
}

func specificity(l Line) int {
	s := 0
	if l.HasCategory() {
		s += 2
	}
	if l.HasBranch() {
		s++
	}
	return s
}

// Resolve picks the most specific line of t matching q. Category filters outrank branch
// filters, which outrank generic lines; equally specific lines keep table order.
func (t *RateTable) Resolve(q Query) (Rate, error) {
	if !t.ValidOn(q.Date) || !t.AppliesToBranch(q.BranchID) {
		return Rate{}, fmt.Errorf("%w: table %s not valid on %s", ErrRateNotFound, t.Code, q.Date.Format(time.DateOnly))
	}

	var candidates []Line
	for _, l := range SortedLines(t.Lines) {
		if l.Matches(q) {
			candidates = append(candidates, l)
		}
	}
	if len(candidates) == 0 {
		return Rate{}, fmt.Errorf("%w: table %s has no tier for %s", ErrRateNotFound, t.Code, q.Amount.StringFixed(2))
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return specificity(candidates[i]) > specificity(candidates[j])
	})
	best := candidates[0]
	period := best.RatePeriod
	if period == "" {
		period = PeriodMonth
	}
	return Rate{Percent: best.RatePercent, Period: period, LineID: best.ID}, nil
}

// SortedLines orders lines by sequence then amount_from without touching the input.
func SortedLines(lines []Line) []Line {
	out := append([]Line(nil), lines...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Sequence != out[j].Sequence {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].AmountFrom.LessThan(out[j].AmountFrom)
	})
	return out
}

// Describe renders a line as "0 - 10,000 @ 2% / month (Jewelry) [MNL01]". categoryName and
// branchCode may be nil when the names are not at hand.
func Describe(l Line, categoryName, branchCode func(uint64) string) string {
	var parts []string
	if l.AmountTo.Valid {
		parts = append(parts, groupThousands(l.AmountFrom)+" - "+groupThousands(l.AmountTo.Decimal))
	} else {
		parts = append(parts, groupThousands(l.AmountFrom)+"+")
	}
	parts = append(parts, fmt.Sprintf("@ %s%% / %s", l.RatePercent.String(), l.RatePeriod.Label()))
	if l.HasCategory() && categoryName != nil {
		if n := categoryName(*l.CategoryID); n != "" {
			parts = append(parts, "("+n+")")
		}
	}
	if l.HasBranch() && branchCode != nil {
		if c := branchCode(*l.BranchID); c != "" {
			parts = append(parts, "["+c+"]")
		}
	}
	return strings.Join(parts, " ")
}

func groupThousands(v decimal.Decimal) string {
	s := v.Round(0).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
