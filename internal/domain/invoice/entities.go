package invoice

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindRenewal    Kind = "renewal"
	KindRedemption Kind = "redemption"
	KindAuction    Kind = "auction"
)

type State string

const (
	StateDraft  State = "draft"
	StatePosted State = "posted"
	StatePaid   State = "paid"
)

var (
	ErrNotFound             = errors.New("invoice not found")
	ErrProductNotConfigured = errors.New("product not configured in settings")
	ErrNoLines              = errors.New("invoice has no lines")
	ErrNotPostable          = errors.New("only draft invoices can be posted")
	ErrNotPayable           = errors.New("only posted invoices can be paid")
)

type Invoice struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"-"`
	InvoiceNo     string          `gorm:"size:36;uniqueIndex:ux_invoices_no" json:"invoice_no"`
	TicketID      uint64          `gorm:"not null;index" json:"-"`
	BranchID      uint64          `gorm:"index" json:"branch_id"`
	Kind          Kind            `gorm:"size:16;not null" json:"kind"`
	PartnerID     string          `gorm:"size:32" json:"partner_id"`
	InvoiceDate   time.Time       `gorm:"type:date;not null" json:"invoice_date"`
	Origin        string          `gorm:"size:64" json:"origin"`
	State         State           `gorm:"size:8;not null" json:"state"`
	PaymentMethod string          `gorm:"size:16" json:"payment_method,omitempty"`
	PaymentRef    string          `gorm:"size:64" json:"payment_ref,omitempty"`
	Total         decimal.Decimal `gorm:"type:decimal(18,2)" json:"total"`
	PostedAt      *time.Time      `json:"posted_at,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	Lines         []Line          `gorm:"foreignKey:InvoiceID" json:"lines"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Invoice) TableName() string { return "invoices" }

// Charge classifies what an invoice line bills, independent of the product it is booked on.
type Charge string

const (
	ChargePrincipal  Charge = "principal"
	ChargeInterest   Charge = "interest"
	ChargePenalty    Charge = "penalty"
	ChargeServiceFee Charge = "service_fee"
	ChargeItem       Charge = "item"
)

type Line struct {
	ID        uint64          `gorm:"primaryKey;column:id" json:"-"`
	InvoiceID uint64          `gorm:"not null;index" json:"-"`
	Charge    Charge          `gorm:"size:16;not null" json:"charge"`
	Product   string          `gorm:"size:64;not null" json:"product"`
	Name      string          `gorm:"size:256" json:"name"`
	Quantity  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"quantity"`
	PriceUnit decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price_unit"`
}

func (Line) TableName() string { return "invoice_lines" }

func (l Line) Subtotal() decimal.Decimal { return l.Quantity.Mul(l.PriceUnit) }

type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	Save(ctx context.Context, inv *Invoice) error
	ListByTicket(ctx context.Context, ticketID uint64) ([]Invoice, error)
	GetByNo(ctx context.Context, invoiceNo string) (*Invoice, error)
}
