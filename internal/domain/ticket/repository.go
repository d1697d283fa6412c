package ticket

import (
	"context"
	"time"
)

// Filter selects tickets. DueToday, Overdue and InGrace are evaluated against Today and
// only ever match pledged or renewed tickets.
type Filter struct {
	BranchIDs  []uint64
	States     []State
	CustomerID string
	DueToday   bool
	Overdue    bool
	InGrace    bool
	Today      time.Time
	GraceDays  int
	Limit      int
	Offset     int
}

type Repository interface {
	// Create inserts the ticket together with its lines.
	Create(ctx context.Context, t *Ticket) error
	// Save updates the ticket row and every line it carries.
	Save(ctx context.Context, t *Ticket) error
	ReplaceLines(ctx context.Context, t *Ticket, lines []Line) error

	GetByTicketID(ctx context.Context, ticketID string) (*Ticket, error)
	GetByTicketIDForUpdate(ctx context.Context, ticketID string) (*Ticket, error)

	Search(ctx context.Context, f Filter) ([]Ticket, error)
	Count(ctx context.Context, f Filter) (int64, error)
}
