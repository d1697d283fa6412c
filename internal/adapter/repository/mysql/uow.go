package mysql

import (
	"context"

	"pawnshop-backend/internal/domain/ticket"
	"pawnshop-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Tickets:    &TicketRepository{db: tx},
		RateTables: &RateTableRepository{db: tx},
		Branches:   &BranchRepository{db: tx},
		Categories: &CategoryRepository{db: tx},
		Moves:      &MoveRepository{db: tx},
		Invoices:   &InvoiceRepository{db: tx},
		Outbox:     &OutboxRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinTicketTx(ctx context.Context, ticketID string, fn func(r uow.Repos, t *ticket.Ticket) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the ticket row up-front to prevent races
		t, err := r.Tickets.GetByTicketIDForUpdate(ctx, ticketID)
		if err != nil {
			return err
		}
		return fn(r, t)
	})
}
