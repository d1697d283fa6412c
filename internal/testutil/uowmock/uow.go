package uowmock

import (
	"context"
	"errors"

	"pawnshop-backend/internal/domain/ticket"
	"pawnshop-backend/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn       func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinTicketTxFn func(ctx context.Context, ticketID string, fn func(r uow.Repos, t *ticket.Ticket) error) error
}

// Passthrough runs every callback against repos, with tk as the locked ticket.
func Passthrough(repos uow.Repos, tk *ticket.Ticket) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error { return fn(repos) },
		WithinTicketTxFn: func(_ context.Context, _ string, fn func(uow.Repos, *ticket.Ticket) error) error {
			if tk == nil {
				return ticket.ErrNotFound
			}
			return fn(repos, tk)
		},
	}
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinTicketTx(fn func(context.Context, string, func(uow.Repos, *ticket.Ticket) error) error) *UoW {
	m.WithinTicketTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinTicketTx(ctx context.Context, ticketID string, fn func(r uow.Repos, t *ticket.Ticket) error) error {
	if m.WithinTicketTxFn != nil {
		return m.WithinTicketTxFn(ctx, ticketID, fn)
	}
	return errUnimplemented
}
