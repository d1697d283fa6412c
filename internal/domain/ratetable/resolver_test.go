package ratetable

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func upTo(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

func u64(v uint64) *uint64 { return &v }

var on = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

func tieredTable() *RateTable {
	return &RateTable{
		Code:     "STD",
		Name:     "Standard",
		Active:   true,
		DateFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Lines: []Line{
			{ID: 1, Sequence: 10, AmountFrom: dec("0"), AmountTo: upTo("10000"), RatePercent: dec("2"), RatePeriod: PeriodMonth},
			{ID: 2, Sequence: 20, AmountFrom: dec("10000"), RatePercent: dec("1.5"), RatePeriod: PeriodMonth},
		},
	}
}

func TestResolve_Tiers(t *testing.T) {
	tbl := tieredTable()

	r, err := tbl.Resolve(Query{Amount: dec("5000"), Date: on})
	require.NoError(t, err)
	assert.True(t, r.Percent.Equal(dec("2")))

	r, err = tbl.Resolve(Query{Amount: dec("15000"), Date: on})
	require.NoError(t, err)
	assert.True(t, r.Percent.Equal(dec("1.5")))

	// upper bound is exclusive
	r, err = tbl.Resolve(Query{Amount: dec("10000"), Date: on})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), r.LineID)
}

func TestResolve_PrefersCategoryThenBranch(t *testing.T) {
	tbl := tieredTable()
	tbl.Lines = append(tbl.Lines,
		Line{ID: 3, Sequence: 30, AmountFrom: dec("0"), AmountTo: upTo("10000"), BranchID: u64(9), RatePercent: dec("2.5")},
		Line{ID: 4, Sequence: 40, AmountFrom: dec("0"), AmountTo: upTo("10000"), CategoryID: u64(7), RatePercent: dec("1.75")},
	)

	r, err := tbl.Resolve(Query{Amount: dec("5000"), CategoryID: 7, Date: on})
	require.NoError(t, err)
	assert.True(t, r.Percent.Equal(dec("1.75")))

	r, err = tbl.Resolve(Query{Amount: dec("5000"), CategoryID: 7, BranchID: 9, Date: on})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), r.LineID, "category filter outranks branch filter")

	r, err = tbl.Resolve(Query{Amount: dec("5000"), BranchID: 9, Date: on})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), r.LineID)

	r, err = tbl.Resolve(Query{Amount: dec("5000"), CategoryID: 8, Date: on})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), r.LineID)
}

func TestResolve_NotFound(t *testing.T) {
	tbl := tieredTable()

	_, err := tbl.Resolve(Query{Amount: dec("5000"), Date: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)})
	require.ErrorIs(t, err, ErrRateNotFound)

	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	tbl.DateTo = &end
	_, err = tbl.Resolve(Query{Amount: dec("5000"), Date: on})
	require.ErrorIs(t, err, ErrRateNotFound)
	_, err = tbl.Resolve(Query{Amount: dec("5000"), Date: end})
	require.NoError(t, err)

	tbl = tieredTable()
	tbl.Active = false
	_, err = tbl.Resolve(Query{Amount: dec("5000"), Date: on})
	require.ErrorIs(t, err, ErrRateNotFound)

	tbl = tieredTable()
	tbl.Branches = []TableBranch{{BranchID: 3}}
	_, err = tbl.Resolve(Query{Amount: dec("5000"), BranchID: 4, Date: on})
	require.ErrorIs(t, err, ErrRateNotFound)
	_, err = tbl.Resolve(Query{Amount: dec("5000"), BranchID: 3, Date: on})
	require.NoError(t, err)

	tbl = tieredTable()
	tbl.Lines = tbl.Lines[:1]
	_, err = tbl.Resolve(Query{Amount: dec("20000"), Date: on})
	require.ErrorIs(t, err, ErrRateNotFound)
}

func TestMonthlyPercent(t *testing.T) {
	assert.True(t, Rate{Percent: dec("0.1"), Period: PeriodDay}.MonthlyPercent().Equal(dec("3")))
	assert.True(t, Rate{Percent: dec("36"), Period: PeriodYear}.MonthlyPercent().Equal(dec("3")))
	assert.True(t, Rate{Percent: dec("3"), Period: PeriodMonth}.MonthlyPercent().Equal(dec("3")))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(tieredTable()))

	tbl := tieredTable()
	tbl.Lines = append(tbl.Lines, Line{AmountFrom: dec("5000"), AmountTo: upTo("12000"), RatePercent: dec("1")})
	require.ErrorIs(t, Validate(tbl), ErrOverlappingRange)

	// same range on a different category is fine
	tbl = tieredTable()
	tbl.Lines = append(tbl.Lines, Line{AmountFrom: dec("5000"), AmountTo: upTo("12000"), CategoryID: u64(2), RatePercent: dec("1")})
	require.NoError(t, Validate(tbl))

	tbl = tieredTable()
	tbl.Lines[0].AmountTo = upTo("0")
	require.ErrorIs(t, Validate(tbl), ErrInvalidRange)

	tbl = tieredTable()
	tbl.Lines[1].RatePercent = dec("-1")
	require.ErrorIs(t, Validate(tbl), ErrNegativeRate)

	tbl = tieredTable()
	tbl.Lines[0].AmountFrom = dec("-5")
	require.ErrorIs(t, Validate(tbl), ErrNegativeAmount)

	tbl = tieredTable()
	before := tbl.DateFrom.AddDate(0, 0, -1)
	tbl.DateTo = &before
	require.ErrorIs(t, Validate(tbl), ErrInvalidDates)
}

func TestDescribe(t *testing.T) {
	l := Line{AmountFrom: dec("0"), AmountTo: upTo("10000"), RatePercent: dec("2"), RatePeriod: PeriodMonth, CategoryID: u64(1), BranchID: u64(2)}
	got := Describe(l,
		func(uint64) string { return "Jewelry" },
		func(uint64) string { return "MNL01" })
	assert.Equal(t, "0 - 10,000 @ 2% / month (Jewelry) [MNL01]", got)

	open := Line{AmountFrom: dec("1250000"), RatePercent: dec("1.5"), RatePeriod: PeriodYear}
	assert.Equal(t, "1,250,000+ @ 1.5% / year", Describe(open, nil, nil))
}
