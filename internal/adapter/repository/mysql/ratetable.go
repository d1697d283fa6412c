package mysql

import (
	"context"

	"pawnshop-backend/internal/domain/ratetable"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RateTableRepository struct{ db *gorm.DB }

func NewRateTableRepository(db *gorm.DB) *RateTableRepository {
	return &RateTableRepository{db: db}
}

func (r *RateTableRepository) Create(ctx context.Context, t *ratetable.RateTable) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *RateTableRepository) Save(ctx context.Context, t *ratetable.RateTable) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Save(t).Error; err != nil {
		return err
	}
	if err := db.Where("rate_table_id = ?", t.ID).Delete(&ratetable.TableBranch{}).Error; err != nil {
		return err
	}
	if err := db.Where("rate_table_id = ?", t.ID).Delete(&ratetable.Line{}).Error; err != nil {
		return err
	}
	for i := range t.Branches {
		t.Branches[i].RateTableID = t.ID
	}
	for i := range t.Lines {
		t.Lines[i].ID = 0
		t.Lines[i].RateTableID = t.ID
	}
	if len(t.Branches) > 0 {
		if err := db.Create(&t.Branches).Error; err != nil {
			return err
		}
	}
	if len(t.Lines) > 0 {
		if err := db.Create(&t.Lines).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *RateTableRepository) load(db *gorm.DB) *gorm.DB {
	return db.Preload("Branches").Preload("Lines", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence ASC, amount_from ASC, id ASC")
	})
}

func (r *RateTableRepository) GetByCode(ctx context.Context, code string) (*ratetable.RateTable, error) {
	var out ratetable.RateTable
	res := r.load(r.db.WithContext(ctx)).Where("code = ?", code).First(&out)
	return &out, res.Error
}

func (r *RateTableRepository) GetByID(ctx context.Context, id uint64) (*ratetable.RateTable, error) {
	var out ratetable.RateTable
	res := r.load(r.db.WithContext(ctx)).Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *RateTableRepository) List(ctx context.Context, activeOnly bool) ([]ratetable.RateTable, error) {
	var out []ratetable.RateTable
	q := r.load(r.db.WithContext(ctx)).Order("sequence ASC, id ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	err := q.Find(&out).Error
	return out, err
}
