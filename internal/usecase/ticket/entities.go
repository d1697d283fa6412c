package ticket

import (
	"time"

	"pawnshop-backend/internal/domain/invoice"
	domainTicket "pawnshop-backend/internal/domain/ticket"

	"github.com/shopspring/decimal"
)

type LineInput struct {
	Name           string
	CategoryID     uint64
	Brand          string
	Model          string
	SerialNumber   string
	Color          string
	Condition      domainTicket.Condition
	Weight         decimal.Decimal
	WeightUnit     domainTicket.WeightUnit
	Karat          string
	AppraisedValue decimal.Decimal
	LoanAmount     decimal.Decimal
	Barcode        string
	AppraisedBy    string
	AppraisalNotes string
}

type CreateInput struct {
	CustomerID   string
	CustomerName string
	BranchID     uint64
	Principal    decimal.Decimal
	// InterestRate is the monthly percent; nil resolves it from RateTableCode or the default table.
	InterestRate  *decimal.Decimal
	RateTableCode string
	DateMaturity  *time.Time // defaults to today + default maturity days

	KYCIDType     string
	KYCIDNumber   string
	KYCIDExpiry   *time.Time
	Notes         string
	TermsAccepted bool

	Lines []LineInput
}

// AmendInput changes a draft ticket; nil fields are left alone and a nil Lines keeps the items.
type AmendInput struct {
	CustomerName *string
	Principal    *decimal.Decimal
	InterestRate *decimal.Decimal
	DateMaturity *time.Time
	Notes        *string
	Lines        []LineInput
}

type DisburseInput struct {
	Method      domainTicket.DisbursementMethod
	Reference   string
	DisbursedBy string
}

// Overrides replace the computed charges, as a cashier may adjust them at the counter.
type Overrides struct {
	Interest   *decimal.Decimal
	Penalty    *decimal.Decimal
	ServiceFee *decimal.Decimal
}

type RenewInput struct {
	NewMaturity   *time.Time // defaults to current maturity + default maturity days
	PaymentMethod string
	PaymentRef    string
	Overrides
}

type RedeemInput struct {
	PaymentMethod string
	PaymentRef    string
	Overrides
}

type AuctionInput struct {
	LineID        string
	CustomerID    string           // buyer; defaults to the configured auction customer
	Price         *decimal.Decimal // defaults to the appraised value
	AddServiceFee bool
}

type SearchInput struct {
	BranchID   uint64
	State      domainTicket.State
	CustomerID string
	DueToday   bool
	Overdue    bool
	InGrace    bool
	Limit      int
	Offset     int
}

type TicketDTO struct {
	*domainTicket.Ticket
	Indicators     domainTicket.Indicators `json:"indicators"`
	AllowedActions []domainTicket.Action   `json:"allowed_actions"`
}

type QuoteDTO struct {
	TicketID   string                  `json:"ticket_id"`
	TicketNo   string                  `json:"ticket_no"`
	AsOf       time.Time               `json:"as_of"`
	Principal  decimal.Decimal         `json:"principal"`
	Interest   decimal.Decimal         `json:"interest"`
	Penalty    decimal.Decimal         `json:"penalty"`
	ServiceFee decimal.Decimal         `json:"service_fee"`
	TotalDue   decimal.Decimal         `json:"total_due"`
	GraceEnd   time.Time               `json:"grace_end"`
	Indicators domainTicket.Indicators `json:"indicators"`
}

// TransitionDTO is the ticket after an action plus the invoice it raised, if any.
type TransitionDTO struct {
	Ticket  *TicketDTO       `json:"ticket"`
	Invoice *invoice.Invoice `json:"invoice,omitempty"`
}

type SearchDTO struct {
	Items []TicketDTO `json:"items"`
	Total int64       `json:"total"`
}

// EventPayload is the body of every ticket lifecycle event.
type EventPayload struct {
	TicketID     string             `json:"ticket_id"`
	TicketNo     string             `json:"ticket_no"`
	BranchID     uint64             `json:"branch_id"`
	CustomerID   string             `json:"customer_id"`
	State        domainTicket.State `json:"state"`
	Principal    decimal.Decimal    `json:"principal"`
	TotalDue     decimal.Decimal    `json:"total_due"`
	DateMaturity time.Time          `json:"date_maturity"`
	InvoiceNo    string             `json:"invoice_no,omitempty"`
	LineID       string             `json:"line_id,omitempty"`
}
