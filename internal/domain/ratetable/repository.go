package ratetable

import "context"

type Repository interface {
	Create(ctx context.Context, t *RateTable) error
	// Save updates the table header and replaces its branch set and lines.
	Save(ctx context.Context, t *RateTable) error
	GetByCode(ctx context.Context, code string) (*RateTable, error)
	GetByID(ctx context.Context, id uint64) (*RateTable, error)
	List(ctx context.Context, activeOnly bool) ([]RateTable, error)
}
