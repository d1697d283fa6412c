package ticket

import "time"

type Bucket string

const (
	BucketCurrent Bucket = "current"
	BucketDueSoon Bucket = "due_soon"
	BucketMatured Bucket = "matured"
	BucketGrace   Bucket = "grace"
	BucketOverdue Bucket = "overdue"
)

// Buckets lists the aging buckets in report order.
var Buckets = []Bucket{BucketCurrent, BucketDueSoon, BucketMatured, BucketGrace, BucketOverdue}

// Display colors used by the ticket board.
const (
	ColorNone      = 0
	ColorPastGrace = 1
	ColorDueToday  = 2
	ColorDueSoon   = 3
	ColorInGrace   = 9
	ColorCurrent   = 10
	ColorClosed    = 10
)

// Attention priority, highest first: in grace, past grace, due today, due soon, current.
const (
	PriorityNone = iota
	PriorityCurrent
	PriorityDueSoon
	PriorityDueToday
	PriorityPastGrace
	PriorityInGrace
)

const dueSoonDays = 3

type Indicators struct {
	DaysToMaturity int  `json:"days_to_maturity"`
	IsDueToday     bool `json:"is_due_today"`
	IsOverdue      bool `json:"is_overdue"`
	IsInGrace      bool `json:"is_in_grace"`
	StatusColor    int  `json:"status_color"`
	Priority       int  `json:"priority"`
}

// ComputeIndicators derives the maturity flags of a ticket. Only pledged and renewed
// tickets can be due, overdue or in grace.
func ComputeIndicators(state State, maturity, graceEnd, today time.Time) Indicators {
	var ind Indicators
	if !maturity.IsZero() {
		ind.DaysToMaturity = DaysBetween(today, maturity)
	}

	switch {
	case state == StateDraft || state == StateCancelled:
		ind.StatusColor = ColorNone
		return ind
	case state == StateRedeemed || state == StateForfeited:
		ind.StatusColor = ColorClosed
		return ind
	}

	if maturity.IsZero() {
		ind.StatusColor, ind.Priority = ColorCurrent, PriorityCurrent
		return ind
	}
	ind.IsDueToday = ind.DaysToMaturity == 0
	ind.IsOverdue = ind.DaysToMaturity < 0
	ind.IsInGrace = ind.IsOverdue && !graceEnd.IsZero() && !DateOf(graceEnd).Before(DateOf(today))

	switch {
	case ind.IsInGrace:
		ind.StatusColor, ind.Priority = ColorInGrace, PriorityInGrace
	case ind.IsOverdue:
		ind.StatusColor, ind.Priority = ColorPastGrace, PriorityPastGrace
	case ind.IsDueToday:
		ind.StatusColor, ind.Priority = ColorDueToday, PriorityDueToday
	case ind.DaysToMaturity <= dueSoonDays:
		ind.StatusColor, ind.Priority = ColorDueSoon, PriorityDueSoon
	default:
		ind.StatusColor, ind.Priority = ColorCurrent, PriorityCurrent
	}
	return ind
}

// IndicatorsOf is ComputeIndicators over a stored ticket.
func IndicatorsOf(t *Ticket, today time.Time) Indicators {
	return ComputeIndicators(t.State, t.DateMaturity, t.DateGraceEnd, today)
}

// BucketFor classifies a maturity date for aging reports. A ticket in the grace bucket is
// exactly one whose indicators report IsInGrace when its grace end is maturity + graceDays.
func BucketFor(maturity, today time.Time, graceDays int) Bucket {
	days := DaysBetween(today, maturity)
	switch {
	case days > 7:
		return BucketCurrent
	case days > 0:
		return BucketDueSoon
	case days == 0:
		return BucketMatured
	case -days <= graceDays:
		return BucketGrace
	default:
		return BucketOverdue
	}
}

// DaysOverdue is zero until maturity has passed.
func DaysOverdue(maturity, today time.Time) int {
	if d := DaysBetween(maturity, today); d > 0 {
		return d
	}
	return 0
}
