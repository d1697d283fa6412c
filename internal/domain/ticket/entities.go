package ticket

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type State string

const (
	StateDraft     State = "draft"
	StatePledged   State = "pledged"
	StateRenewed   State = "renewed"
	StateRedeemed  State = "redeemed"
	StateForfeited State = "forfeited"
	StateCancelled State = "cancelled"
)

// ActiveStates are the states in which the loan is outstanding.
var ActiveStates = []State{StatePledged, StateRenewed}

func (s State) Valid() bool {
	switch s {
	case StateDraft, StatePledged, StateRenewed, StateRedeemed, StateForfeited, StateCancelled:
		return true
	}
	return false
}

func (s State) IsActive() bool { return s == StatePledged || s == StateRenewed }

// IsClosed reports whether nothing is owed on a ticket in this state.
func (s State) IsClosed() bool {
	return s == StateRedeemed || s == StateForfeited || s == StateCancelled
}

type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionPoor      Condition = "poor"
)

type WeightUnit string

const (
	WeightGram     WeightUnit = "g"
	WeightKilogram WeightUnit = "kg"
	WeightOunce    WeightUnit = "oz"
)

type DisbursementMethod string

const (
	DisburseCash         DisbursementMethod = "cash"
	DisburseBankTransfer DisbursementMethod = "bank_transfer"
	DisburseGCash        DisbursementMethod = "gcash"
	DisburseMaya         DisbursementMethod = "maya"
	DisburseOther        DisbursementMethod = "other"
)

type Ticket struct {
	ID           uint64  `gorm:"primaryKey;column:id" json:"-"`
	TicketID     string  `gorm:"size:32;uniqueIndex:ux_tickets_ticket_id" json:"ticket_id"`
	TicketNo     string  `gorm:"size:32;uniqueIndex:ux_tickets_ticket_no" json:"ticket_no"`
	CustomerID   string  `gorm:"size:32;index:idx_tickets_customer" json:"customer_id"`
	CustomerName string  `gorm:"size:128" json:"customer_name"`
	BranchID     uint64  `gorm:"not null;index:idx_tickets_branch_state" json:"branch_id"`
	RateTableID  *uint64 `json:"rate_table_id,omitempty"`

	Principal      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"principal"`
	InterestRate   decimal.Decimal `gorm:"type:decimal(7,4);not null" json:"interest_rate"`
	AppraisedValue decimal.Decimal `gorm:"type:decimal(18,2)" json:"appraised_value"`
	InterestAmount decimal.Decimal `gorm:"type:decimal(18,2)" json:"interest_amount"`
	PenaltyAmount  decimal.Decimal `gorm:"type:decimal(18,2)" json:"penalty_amount"`
	ServiceFee     decimal.Decimal `gorm:"type:decimal(18,2)" json:"service_fee"`
	TotalDue       decimal.Decimal `gorm:"type:decimal(18,2)" json:"total_due"`
	LTVRatio       decimal.Decimal `gorm:"column:ltv_ratio;type:decimal(7,2)" json:"ltv_ratio"`

	State          State     `gorm:"size:16;not null;default:'draft';index:idx_tickets_branch_state" json:"state"`
	StateUpdatedAt time.Time `json:"state_updated_at"`

	DateCreated   time.Time  `gorm:"not null" json:"date_created"`
	DatePledged   *time.Time `gorm:"type:date" json:"date_pledged,omitempty"`
	DateMaturity  time.Time  `gorm:"type:date;not null;index:idx_tickets_maturity" json:"date_maturity"`
	DateGraceEnd  time.Time  `gorm:"type:date" json:"date_grace_end"`
	DateRenewed   *time.Time `gorm:"type:date" json:"date_renewed,omitempty"`
	DateRedeemed  *time.Time `gorm:"type:date" json:"date_redeemed,omitempty"`
	DateForfeited *time.Time `gorm:"type:date" json:"date_forfeited,omitempty"`

	DisbursementMethod    DisbursementMethod `gorm:"size:16" json:"disbursement_method,omitempty"`
	DisbursementReference string             `gorm:"size:64" json:"disbursement_reference,omitempty"`
	DisbursementDate      *time.Time         `json:"disbursement_date,omitempty"`
	DisbursedBy           string             `gorm:"size:32" json:"disbursed_by,omitempty"`

	KYCIDType     string     `gorm:"column:kyc_id_type;size:32" json:"kyc_id_type,omitempty"`
	KYCIDNumber   string     `gorm:"column:kyc_id_number;size:64" json:"kyc_id_number,omitempty"`
	KYCIDExpiry   *time.Time `gorm:"column:kyc_id_expiry;type:date" json:"kyc_id_expiry,omitempty"`
	Notes         string     `gorm:"type:text" json:"notes,omitempty"`
	TermsAccepted bool       `json:"terms_accepted"`

	Lines []Line `gorm:"foreignKey:TicketID" json:"lines"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Ticket) TableName() string { return "tickets" }

// Line is one pawned item held as collateral.
type Line struct {
	ID       uint64 `gorm:"primaryKey;column:id" json:"-"`
	LineID   string `gorm:"size:32;uniqueIndex:ux_ticket_lines_line_id" json:"line_id"`
	TicketID uint64 `gorm:"not null;index" json:"-"`
	Sequence int    `gorm:"default:10" json:"sequence"`

	Name       string `gorm:"size:256;not null" json:"name"`
	CategoryID uint64 `gorm:"not null;index" json:"category_id"`
	// BranchID mirrors the ticket's branch; it is rewritten on every ticket save.
	BranchID uint64 `gorm:"index" json:"branch_id"`

	Brand        string          `gorm:"size:64" json:"brand,omitempty"`
	Model        string          `gorm:"size:64" json:"model,omitempty"`
	SerialNumber string          `gorm:"size:64" json:"serial_number,omitempty"`
	Color        string          `gorm:"size:32" json:"color,omitempty"`
	Condition    Condition       `gorm:"size:16;default:'good'" json:"condition"`
	Weight       decimal.Decimal `gorm:"type:decimal(10,3)" json:"weight"`
	WeightUnit   WeightUnit      `gorm:"size:4;default:'g'" json:"weight_unit"`
	Karat        string          `gorm:"size:8" json:"karat,omitempty"`

	AppraisedValue decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"appraised_value"`
	LoanAmount     decimal.Decimal `gorm:"type:decimal(18,2)" json:"loan_amount"`

	ProductRef     string     `gorm:"size:64" json:"product_ref,omitempty"`
	Barcode        string     `gorm:"size:64" json:"barcode,omitempty"`
	AppraisedBy    string     `gorm:"size:32" json:"appraised_by,omitempty"`
	AppraisalDate  *time.Time `gorm:"type:date" json:"appraisal_date,omitempty"`
	AppraisalNotes string     `gorm:"type:text" json:"appraisal_notes,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (Line) TableName() string { return "ticket_lines" }

// DisplayName renders "Ring (Cartier Love)" style labels.
func (l Line) DisplayName() string {
	name := l.Name
	switch {
	case l.Brand != "" && l.Model != "":
		name += " (" + l.Brand + " " + l.Model + ")"
	case l.Brand != "":
		name += " (" + l.Brand + ")"
	case l.Model != "":
		name += " (" + l.Model + ")"
	}
	return name
}

// Ref returns "<ticket_no> - <customer>" or "New Ticket" before numbering.
func (t *Ticket) Ref() string {
	if t.TicketNo == "" {
		return "New Ticket"
	}
	return t.TicketNo + " - " + t.CustomerName
}
