package ticketmock

import (
	"context"

	domain "pawnshop-backend/internal/domain/ticket"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to a nil error, reads to context.Canceled.
type Repo struct {
	CreateFn                 func(ctx context.Context, t *domain.Ticket) error
	SaveFn                   func(ctx context.Context, t *domain.Ticket) error
	ReplaceLinesFn           func(ctx context.Context, t *domain.Ticket, lines []domain.Line) error
	GetByTicketIDFn          func(ctx context.Context, ticketID string) (*domain.Ticket, error)
	GetByTicketIDForUpdateFn func(ctx context.Context, ticketID string) (*domain.Ticket, error)
	SearchFn                 func(ctx context.Context, f domain.Filter) ([]domain.Ticket, error)
	CountFn                  func(ctx context.Context, f domain.Filter) (int64, error)
}

func (m *Repo) Create(ctx context.Context, t *domain.Ticket) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, t)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, t *domain.Ticket) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, t)
	}
	return nil
}

func (m *Repo) ReplaceLines(ctx context.Context, t *domain.Ticket, lines []domain.Line) error {
	if m.ReplaceLinesFn != nil {
		return m.ReplaceLinesFn(ctx, t, lines)
	}
	t.Lines = lines
	return nil
}

func (m *Repo) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	if m.GetByTicketIDFn != nil {
		return m.GetByTicketIDFn(ctx, ticketID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByTicketIDForUpdate(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	if m.GetByTicketIDForUpdateFn != nil {
		return m.GetByTicketIDForUpdateFn(ctx, ticketID)
	}
	return nil, context.Canceled
}

func (m *Repo) Search(ctx context.Context, f domain.Filter) ([]domain.Ticket, error) {
	if m.SearchFn != nil {
		return m.SearchFn(ctx, f)
	}
	return nil, context.Canceled
}

func (m *Repo) Count(ctx context.Context, f domain.Filter) (int64, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx, f)
	}
	return 0, context.Canceled
}
