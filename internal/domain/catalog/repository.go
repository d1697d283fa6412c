package catalog

import "context"

type BranchRepository interface {
	Create(ctx context.Context, b *Branch) error
	Save(ctx context.Context, b *Branch) error
	GetByID(ctx context.Context, id uint64) (*Branch, error)
	GetByCode(ctx context.Context, code string) (*Branch, error)
	List(ctx context.Context, activeOnly bool) ([]Branch, error)
	// NextTicketNo reserves the next number of the branch sequence and returns it formatted.
	// Call it inside a transaction so the reservation rolls back with the ticket.
	NextTicketNo(ctx context.Context, branchID uint64) (string, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, c *Category) error
	Save(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, id uint64) (*Category, error)
	List(ctx context.Context, activeOnly bool) ([]Category, error)
	ParentOf(ctx context.Context, id uint64) (*uint64, error)
}

type UserBranchRepository interface {
	BranchIDsForUser(ctx context.Context, userID string) ([]uint64, error)
	Assign(ctx context.Context, userID string, branchIDs []uint64) error
}
