package mysql

import (
	"context"

	"pawnshop-backend/internal/domain/catalog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BranchRepository struct{ db *gorm.DB }

func NewBranchRepository(db *gorm.DB) *BranchRepository { return &BranchRepository{db: db} }

func (r *BranchRepository) Create(ctx context.Context, b *catalog.Branch) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BranchRepository) Save(ctx context.Context, b *catalog.Branch) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BranchRepository) GetByID(ctx context.Context, id uint64) (*catalog.Branch, error) {
	var out catalog.Branch
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *BranchRepository) GetByCode(ctx context.Context, code string) (*catalog.Branch, error) {
	var out catalog.Branch
	res := r.db.WithContext(ctx).Where("code = ?", code).First(&out)
	return &out, res.Error
}

func (r *BranchRepository) List(ctx context.Context, activeOnly bool) ([]catalog.Branch, error) {
	var out []catalog.Branch
	q := r.db.WithContext(ctx).Order("sequence ASC, name ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	err := q.Find(&out).Error
	return out, err
}

// NextTicketNo locks the branch row and bumps its counter.
func (r *BranchRepository) NextTicketNo(ctx context.Context, branchID uint64) (string, error) {
	db := r.db.WithContext(ctx)
	var b catalog.Branch
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", branchID).First(&b).Error; err != nil {
		return "", err
	}
	if !b.HasSequence() {
		return "", catalog.ErrSequenceNotConfigured
	}
	n := b.SequenceNext
	if n <= 0 {
		n = 1
	}
	err := db.Model(&catalog.Branch{}).
		Where("id = ?", b.ID).
		UpdateColumn("sequence_next", n+1).Error
	if err != nil {
		return "", err
	}
	return b.FormatTicketNo(n), nil
}

type CategoryRepository struct{ db *gorm.DB }

func NewCategoryRepository(db *gorm.DB) *CategoryRepository { return &CategoryRepository{db: db} }

func (r *CategoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CategoryRepository) Save(ctx context.Context, c *catalog.Category) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uint64) (*catalog.Category, error) {
	var out catalog.Category
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *CategoryRepository) List(ctx context.Context, activeOnly bool) ([]catalog.Category, error) {
	var out []catalog.Category
	q := r.db.WithContext(ctx).Order("sequence ASC, name ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	err := q.Find(&out).Error
	return out, err
}

// ParentOf returns nil for a root or unknown category.
func (r *CategoryRepository) ParentOf(ctx context.Context, id uint64) (*uint64, error) {
	var c catalog.Category
	res := r.db.WithContext(ctx).Select("id", "parent_id").Where("id = ?", id).Limit(1).Find(&c)
	if res.Error != nil || res.RowsAffected == 0 {
		return nil, res.Error
	}
	return c.ParentID, nil
}

type UserBranchRepository struct{ db *gorm.DB }

func NewUserBranchRepository(db *gorm.DB) *UserBranchRepository {
	return &UserBranchRepository{db: db}
}

func (r *UserBranchRepository) BranchIDsForUser(ctx context.Context, userID string) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&catalog.UserBranch{}).
		Where("user_id = ?", userID).
		Order("branch_id ASC").
		Pluck("branch_id", &ids).Error
	return ids, err
}

// Assign replaces the user's branch set; an empty set lifts the restriction.
func (r *UserBranchRepository) Assign(ctx context.Context, userID string, branchIDs []uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&catalog.UserBranch{}).Error; err != nil {
			return err
		}
		if len(branchIDs) == 0 {
			return nil
		}
		rows := make([]catalog.UserBranch, 0, len(branchIDs))
		seen := map[uint64]bool{}
		for _, id := range branchIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			rows = append(rows, catalog.UserBranch{UserID: userID, BranchID: id})
		}
		return tx.Create(&rows).Error
	})
}
