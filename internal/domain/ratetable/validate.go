package ratetable

import (
	"fmt"

	"github.com/shopspring/decimal"
)

func ptrEq(a, b *uint64) bool {
	av, bv := uint64(0), uint64(0)
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

// overlaps treats both ranges as half-open [from, to) with an open upper end when to is null.
func overlaps(a, b Line) bool {
	aBelowB := a.AmountTo.Valid && a.AmountTo.Decimal.LessThanOrEqual(b.AmountFrom)
	bBelowA := b.AmountTo.Valid && b.AmountTo.Decimal.LessThanOrEqual(a.AmountFrom)
	return !aBelowB && !bBelowA
}

// ValidateLine checks the per-line constraints.
func ValidateLine(l Line) error {
	if l.AmountFrom.IsNegative() {
		return ErrNegativeAmount
	}
	if l.AmountTo.Valid && l.AmountTo.Decimal.LessThanOrEqual(l.AmountFrom) {
		return fmt.Errorf("%w: %s - %s", ErrInvalidRange, l.AmountFrom.StringFixed(2), l.AmountTo.Decimal.StringFixed(2))
	}
	if l.RatePercent.LessThan(decimal.Zero) {
		return ErrNegativeRate
	}
	if l.RatePeriod != "" && !l.RatePeriod.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPeriod, l.RatePeriod)
	}
	return nil
}

// Validate checks the table window, every line, and that no two lines sharing a
// (category, branch) combination cover overlapping amounts.
func Validate(t *RateTable) error {
	if t.DateTo != nil && dateOf(*t.DateTo).Before(dateOf(t.DateFrom)) {
		return ErrInvalidDates
	}
	for i, l := range t.Lines {
		if err := ValidateLine(l); err != nil {
			return err
		}
		for _, o := range t.Lines[:i] {
			if ptrEq(l.CategoryID, o.CategoryID) && ptrEq(l.BranchID, o.BranchID) && overlaps(l, o) {
				return fmt.Errorf("%w: %s overlaps %s", ErrOverlappingRange, Describe(l, nil, nil), Describe(o, nil, nil))
			}
		}
	}
	return nil
}
