package uow

import (
	"context"

	"pawnshop-backend/internal/domain/catalog"
	"pawnshop-backend/internal/domain/event"
	"pawnshop-backend/internal/domain/inventory"
	"pawnshop-backend/internal/domain/invoice"
	"pawnshop-backend/internal/domain/ratetable"
	"pawnshop-backend/internal/domain/ticket"
)

// Repos are bound to one transaction.
type Repos struct {
	Tickets    ticket.Repository
	RateTables ratetable.Repository
	Branches   catalog.BranchRepository
	Categories catalog.CategoryRepository
	Moves      inventory.Repository
	Invoices   invoice.Repository
	Outbox     event.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the ticket row first, then pass it in with its lines loaded
	WithinTicketTx(ctx context.Context, ticketID string, fn func(r Repos, t *ticket.Ticket) error) error
}
