package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMissing = errors.New("missing")

type memRepo struct {
	moves   []Move
	creates int
}

func (r *memRepo) FindDone(_ context.Context, lineID uint64, dest Location) (*Move, error) {
	for i := range r.moves {
		if r.moves[i].LineID == lineID && r.moves[i].To == dest && r.moves[i].State == StateDone {
			return &r.moves[i], nil
		}
	}
	return nil, errMissing
}

func (r *memRepo) Create(_ context.Context, m *Move) error {
	r.creates++
	r.moves = append(r.moves, *m)
	return nil
}

func (r *memRepo) ListByTicket(_ context.Context, ticketID uint64) ([]Move, error) {
	var out []Move
	for _, m := range r.moves {
		if m.TicketID == ticketID {
			out = append(out, m)
		}
	}
	return out, nil
}

func newLedger(r *memRepo) *Ledger {
	return NewLedger(r, func(err error) bool { return errors.Is(err, errMissing) })
}

func TestCustody_Idempotent(t *testing.T) {
	repo := &memRepo{}
	l := newLedger(repo)
	ctx := context.Background()
	it := Item{LineID: 1, TicketID: 10, TicketNo: "MNL/00001", Name: "Ring"}

	m1, ref, err := l.Custody(ctx, it)
	require.NoError(t, err)
	assert.NotEmpty(t, ref)
	assert.Equal(t, LocationCustomer, m1.From)
	assert.Equal(t, LocationCustody, m1.To)
	assert.Equal(t, ref, m1.ProductRef)

	it.ProductRef = ref
	m2, ref2, err := l.Custody(ctx, it)
	require.NoError(t, err)
	assert.Equal(t, ref, ref2)
	assert.Equal(t, m1.MoveRef, m2.MoveRef)
	assert.Equal(t, 1, repo.creates)
}

func TestForfeitAndRelease_RequireProduct(t *testing.T) {
	l := newLedger(&memRepo{})
	_, err := l.Forfeit(context.Background(), Item{LineID: 1})
	require.ErrorIs(t, err, ErrNoProduct)
	_, err = l.Release(context.Background(), Item{LineID: 1})
	require.ErrorIs(t, err, ErrNoProduct)
}

func TestForfeit_Idempotent(t *testing.T) {
	repo := &memRepo{}
	l := newLedger(repo)
	it := Item{LineID: 2, TicketID: 10, ProductRef: "PWN-x"}

	m1, err := l.Forfeit(context.Background(), it)
	require.NoError(t, err)
	m2, err := l.Forfeit(context.Background(), it)
	require.NoError(t, err)
	assert.Equal(t, m1.MoveRef, m2.MoveRef)
	assert.Equal(t, LocationForfeited, m1.To)
	assert.Equal(t, 1, repo.creates)

	r1, err := l.Release(context.Background(), it)
	require.NoError(t, err)
	assert.Equal(t, LocationCustomer, r1.To)
	assert.Equal(t, 2, repo.creates)

	r2, err := l.Release(context.Background(), it)
	require.NoError(t, err)
	assert.Equal(t, r1.MoveRef, r2.MoveRef)
	assert.Equal(t, 2, repo.creates)
}

func TestFindDoneError_Propagates(t *testing.T) {
	boom := errors.New("db down")
	l := NewLedger(&failingRepo{err: boom}, func(error) bool { return false })
	_, err := l.Release(context.Background(), Item{LineID: 1, ProductRef: "p"})
	require.ErrorIs(t, err, boom)
}

type failingRepo struct {
	memRepo
	err error
}

func (r *failingRepo) FindDone(context.Context, uint64, Location) (*Move, error) { return nil, r.err }

func TestProductName(t *testing.T) {
	assert.Equal(t, "Watch - Rolex (SN: 123)", Item{Name: "Watch", Brand: "Rolex", Serial: "123"}.ProductName())
	assert.Equal(t, "Ring", Item{Name: "Ring"}.ProductName())
}
