package ratetable

import (
	"time"

	domain "pawnshop-backend/internal/domain/ratetable"

	"github.com/shopspring/decimal"
)

type LineInput struct {
	Sequence    int
	CategoryID  *uint64
	BranchID    *uint64
	AmountFrom  decimal.Decimal
	AmountTo    *decimal.Decimal // nil is unbounded
	RatePercent decimal.Decimal
	RatePeriod  domain.Period
}

type TableInput struct {
	Code      string
	Name      string
	Sequence  int
	Active    bool
	DateFrom  time.Time
	DateTo    *time.Time
	Notes     string
	BranchIDs []uint64
	Lines     []LineInput
}

type ResolveInput struct {
	Code       string
	Amount     decimal.Decimal
	CategoryID uint64
	BranchID   uint64
	Date       time.Time // zero means today
}

type RateDTO struct {
	TableCode      string          `json:"table_code"`
	LineID         uint64          `json:"line_id"`
	RatePercent    decimal.Decimal `json:"rate_percent"`
	RatePeriod     domain.Period   `json:"rate_period"`
	MonthlyPercent decimal.Decimal `json:"monthly_percent"`
	Description    string          `json:"description"`
}
