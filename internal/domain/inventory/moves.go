package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Location string

const (
	LocationCustomer  Location = "customer"
	LocationCustody   Location = "custody"
	LocationForfeited Location = "forfeited"
)

const StateDone = "done"

var ErrNoProduct = errors.New("no product associated with this item, cannot create stock move")

// Move is one completed movement of a pawned item between locations.
type Move struct {
	ID         uint64    `gorm:"primaryKey;column:id" json:"-"`
	MoveRef    string    `gorm:"size:36;uniqueIndex:ux_stock_moves_ref" json:"move_ref"`
	LineID     uint64    `gorm:"not null;index:idx_stock_moves_line_dest" json:"-"`
	TicketID   uint64    `gorm:"not null;index" json:"-"`
	BranchID   uint64    `gorm:"index" json:"branch_id"`
	ProductRef string    `gorm:"size:64;not null" json:"product_ref"`
	Name       string    `gorm:"size:256" json:"name"`
	Origin     string    `gorm:"size:64" json:"origin"`
	From       Location  `gorm:"column:location_from;size:16;not null" json:"from"`
	To         Location  `gorm:"column:location_to;size:16;not null;index:idx_stock_moves_line_dest" json:"to"`
	Quantity   int       `gorm:"not null;default:1" json:"quantity"`
	State      string    `gorm:"size:8;not null" json:"state"`
	DoneAt     time.Time `json:"done_at"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Move) TableName() string { return "stock_moves" }

type Repository interface {
	// FindDone returns the completed move of the line into dest, or gorm.ErrRecordNotFound.
	FindDone(ctx context.Context, lineID uint64, dest Location) (*Move, error)
	Create(ctx context.Context, m *Move) error
	ListByTicket(ctx context.Context, ticketID uint64) ([]Move, error)
}

// Item is the view of a ticket line the ledger needs.
type Item struct {
	LineID     uint64
	TicketID   uint64
	BranchID   uint64
	TicketNo   string
	Name       string
	Brand      string
	Serial     string
	ProductRef string
}

// ProductName labels the tracking product created for an item on first custody.
func (it Item) ProductName() string {
	n := it.Name
	if it.Brand != "" {
		n += " - " + it.Brand
	}
	if it.Serial != "" {
		n += " (SN: " + it.Serial + ")"
	}
	return n
}

// NewProductRef returns a fresh tracking product reference.
func NewProductRef() string { return "PWN-" + uuid.NewString() }

// Ledger issues idempotent item movements.
type Ledger struct {
	repo Repository
	now  func() time.Time
	// isNotFound reports whether an error from FindDone means "no such move".
	isNotFound func(error) bool
}

func NewLedger(repo Repository, isNotFound func(error) bool) *Ledger {
	return &Ledger{repo: repo, now: time.Now, isNotFound: isNotFound}
}

// Custody moves an item from the customer into shop custody. It assigns a product reference
// when the item has none; the caller must persist the returned ref on the line.
func (l *Ledger) Custody(ctx context.Context, it Item) (*Move, string, error) {
	ref := it.ProductRef
	if ref == "" {
		ref = NewProductRef()
	}
	it.ProductRef = ref
	m, err := l.move(ctx, it, LocationCustomer, LocationCustody, "Pawn Custody")
	return m, ref, err
}

// Forfeit moves an item from custody into forfeited stock.
func (l *Ledger) Forfeit(ctx context.Context, it Item) (*Move, error) {
	if it.ProductRef == "" {
		return nil, ErrNoProduct
	}
	return l.move(ctx, it, LocationCustody, LocationForfeited, "Pawn Forfeit")
}

// Release returns an item from custody to the customer.
func (l *Ledger) Release(ctx context.Context, it Item) (*Move, error) {
	if it.ProductRef == "" {
		return nil, ErrNoProduct
	}
	return l.move(ctx, it, LocationCustody, LocationCustomer, "Pawn Release")
}

func (l *Ledger) move(ctx context.Context, it Item, from, to Location, label string) (*Move, error) {
	existing, err := l.repo.FindDone(ctx, it.LineID, to)
	if err == nil {
		return existing, nil
	}
	if !l.isNotFound(err) {
		return nil, err
	}
	now := l.now().UTC()
	m := &Move{
		MoveRef:    uuid.NewString(),
		LineID:     it.LineID,
		TicketID:   it.TicketID,
		BranchID:   it.BranchID,
		ProductRef: it.ProductRef,
		Name:       fmt.Sprintf("%s: %s", label, it.TicketNo),
		Origin:     it.TicketNo,
		From:       from,
		To:         to,
		Quantity:   1,
		State:      StateDone,
		DoneAt:     now,
	}
	if err := l.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
