package catalog

import (
	"context"
	"errors"
	"fmt"

	domain "pawnshop-backend/internal/domain/catalog"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Usecase struct {
	branches     domain.BranchRepository
	categories   domain.CategoryRepository
	userBranches domain.UserBranchRepository
	log          *zap.Logger
}

func NewUsecase(branches domain.BranchRepository, categories domain.CategoryRepository, users domain.UserBranchRepository, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{branches: branches, categories: categories, userBranches: users, log: log}
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func applyBranch(b *domain.Branch, in BranchInput) {
	b.Name = in.Name
	b.Sequence = in.Sequence
	b.Active = in.Active
	b.Street, b.Street2, b.City, b.Zip = in.Street, in.Street2, in.City, in.Zip
	b.Phone, b.Email = in.Phone, in.Email
	b.WarehouseCode = in.WarehouseCode
	b.ManagerID = in.ManagerID
	b.SequencePrefix = in.SequencePrefix
	b.SequencePadding = in.SequencePadding
	if b.SequencePadding <= 0 {
		b.SequencePadding = 5
	}
}

func (u *Usecase) CreateBranch(ctx context.Context, in BranchInput) (*domain.Branch, error) {
	b := &domain.Branch{Code: in.Code, SequenceNext: 1}
	applyBranch(b, in)
	if err := domain.ValidateBranch(b); err != nil {
		return nil, err
	}
	if _, err := u.branches.GetByCode(ctx, in.Code); err == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateCode, in.Code)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := u.branches.Create(ctx, b); err != nil {
		return nil, err
	}
	u.log.Info("branch created", zap.String("code", b.Code), zap.Uint64("id", b.ID))
	return b, nil
}

// UpdateBranch keeps the code and the next sequence number.
func (u *Usecase) UpdateBranch(ctx context.Context, id uint64, in BranchInput) (*domain.Branch, error) {
	b, err := u.branches.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrBranchNotFound)
	}
	applyBranch(b, in)
	if err := domain.ValidateBranch(b); err != nil {
		return nil, err
	}
	if err := u.branches.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (u *Usecase) GetBranch(ctx context.Context, id uint64) (*domain.Branch, error) {
	b, err := u.branches.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrBranchNotFound)
	}
	return b, nil
}

func (u *Usecase) ListBranches(ctx context.Context, activeOnly bool) ([]domain.Branch, error) {
	return u.branches.List(ctx, activeOnly)
}

// validateCategory checks c against the stored hierarchy.
func (u *Usecase) validateCategory(ctx context.Context, c *domain.Category) error {
	if c.ParentID != nil {
		if _, err := u.categories.GetByID(ctx, *c.ParentID); err != nil {
			return fmt.Errorf("parent: %w", notFound(err, domain.ErrCategoryNotFound))
		}
	}
	var lookupErr error
	parentOf := func(id uint64) *uint64 {
		p, err := u.categories.ParentOf(ctx, id)
		if err != nil && lookupErr == nil {
			lookupErr = err
		}
		return p
	}
	if err := domain.ValidateCategory(c, parentOf); err != nil {
		return err
	}
	return lookupErr
}

func applyCategory(c *domain.Category, in CategoryInput) {
	c.Name = in.Name
	c.Sequence = in.Sequence
	c.Active = in.Active
	c.ParentID = in.ParentID
	c.Description = in.Description
	c.Color = in.Color
	c.DefaultLTVRatio = in.DefaultLTVRatio
	c.RequiresSerial = in.RequiresSerial
	c.RequiresPhoto = in.RequiresPhoto
}

func (u *Usecase) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	c := &domain.Category{Code: in.Code}
	applyCategory(c, in)
	if err := u.validateCategory(ctx, c); err != nil {
		return nil, err
	}
	if err := u.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	u.log.Info("category created", zap.String("code", c.Code), zap.Uint64("id", c.ID))
	return c, nil
}

func (u *Usecase) UpdateCategory(ctx context.Context, id uint64, in CategoryInput) (*domain.Category, error) {
	c, err := u.categories.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrCategoryNotFound)
	}
	applyCategory(c, in)
	if err := u.validateCategory(ctx, c); err != nil {
		return nil, err
	}
	if err := u.categories.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCategories returns categories with their "Parent / Child" names.
func (u *Usecase) ListCategories(ctx context.Context, activeOnly bool) ([]CategoryDTO, error) {
	all, err := u.categories.List(ctx, false)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]*domain.Category, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}
	out := make([]CategoryDTO, 0, len(all))
	for i := range all {
		c := &all[i]
		if activeOnly && !c.Active {
			continue
		}
		out = append(out, CategoryDTO{Category: *c, FullName: domain.FullName(c, byID)})
	}
	return out, nil
}

func (u *Usecase) UserBranches(ctx context.Context, userID string) (*UserBranchesDTO, error) {
	ids, err := u.userBranches.BranchIDsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint64{}
	}
	return &UserBranchesDTO{UserID: userID, BranchIDs: ids, Unrestricted: len(ids) == 0}, nil
}

// AssignUserBranches replaces the user's branch set. An empty set gives access to every branch.
func (u *Usecase) AssignUserBranches(ctx context.Context, userID string, branchIDs []uint64) (*UserBranchesDTO, error) {
	for _, id := range branchIDs {
		if _, err := u.branches.GetByID(ctx, id); err != nil {
			return nil, fmt.Errorf("%w: %d", notFound(err, domain.ErrBranchNotFound), id)
		}
	}
	if err := u.userBranches.Assign(ctx, userID, branchIDs); err != nil {
		return nil, err
	}
	u.log.Info("user branches assigned", zap.String("user_id", userID), zap.Int("branches", len(branchIDs)))
	return u.UserBranches(ctx, userID)
}
