package ratetable

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("rate table not found")
	ErrRateNotFound     = errors.New("no applicable rate")
	ErrInvalidDates     = errors.New("end date must be after start date")
	ErrInvalidRange     = errors.New("amount to must be greater than amount from")
	ErrNegativeAmount   = errors.New("amount from must be positive or zero")
	ErrNegativeRate     = errors.New("interest rate must be positive or zero")
	ErrOverlappingRange = errors.New("amount ranges cannot overlap for the same category and branch combination")
	ErrInvalidPeriod    = errors.New("invalid rate period")
	ErrDuplicateCode    = errors.New("rate table code already exists")
)

type Period string

const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

func (p Period) Valid() bool { return p == PeriodDay || p == PeriodMonth || p == PeriodYear }

func (p Period) Label() string {
	switch p {
	case PeriodDay:
		return "day"
	case PeriodYear:
		return "year"
	default:
		return "month"
	}
}

type RateTable struct {
	ID       uint64     `gorm:"primaryKey;column:id" json:"-"`
	Code     string     `gorm:"size:10;not null;uniqueIndex:ux_rate_tables_code" json:"code"`
	Name     string     `gorm:"size:128;not null" json:"name"`
	Sequence int        `gorm:"default:10" json:"sequence"`
	Active   bool       `gorm:"not null" json:"active"`
	DateFrom time.Time  `gorm:"type:date;not null" json:"date_from"`
	DateTo   *time.Time `gorm:"type:date" json:"date_to,omitempty"`
	Notes    string     `gorm:"type:text" json:"notes,omitempty"`

	// Branches restricts the table; an empty set applies everywhere.
	Branches []TableBranch `gorm:"foreignKey:RateTableID" json:"branches,omitempty"`
	Lines    []Line        `gorm:"foreignKey:RateTableID" json:"lines"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (RateTable) TableName() string { return "rate_tables" }

type TableBranch struct {
	RateTableID uint64 `gorm:"primaryKey" json:"-"`
	BranchID    uint64 `gorm:"primaryKey" json:"branch_id"`
}

func (TableBranch) TableName() string { return "rate_table_branches" }

// Line is one rate tier. AmountTo is exclusive; a null AmountTo is unbounded.
type Line struct {
	ID          uint64              `gorm:"primaryKey;column:id" json:"id"`
	RateTableID uint64              `gorm:"not null;index" json:"-"`
	Sequence    int                 `gorm:"default:10" json:"sequence"`
	CategoryID  *uint64             `gorm:"index" json:"category_id,omitempty"`
	BranchID    *uint64             `gorm:"index" json:"branch_id,omitempty"`
	AmountFrom  decimal.Decimal     `gorm:"type:decimal(18,2);not null" json:"amount_from"`
	AmountTo    decimal.NullDecimal `gorm:"type:decimal(18,2)" json:"amount_to"`
	RatePercent decimal.Decimal     `gorm:"type:decimal(7,4);not null" json:"rate_percent"`
	RatePeriod  Period              `gorm:"size:8;not null;default:'month'" json:"rate_period"`
	Name        string              `gorm:"size:128" json:"name"`
}

func (Line) TableName() string { return "rate_table_lines" }

func (l Line) HasCategory() bool { return l.CategoryID != nil && *l.CategoryID != 0 }
func (l Line) HasBranch() bool   { return l.BranchID != nil && *l.BranchID != 0 }

func (t *RateTable) BranchIDs() []uint64 {
	out := make([]uint64, 0, len(t.Branches))
	for _, b := range t.Branches {
		out = append(out, b.BranchID)
	}
	return out
}
