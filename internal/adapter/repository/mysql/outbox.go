package mysql

import (
	"context"
	"time"

	"pawnshop-backend/internal/domain/event"

	"gorm.io/gorm"
)

type OutboxRepository struct{ db *gorm.DB }

func NewOutboxRepository(db *gorm.DB) *OutboxRepository { return &OutboxRepository{db: db} }

func (r *OutboxRepository) Store(ctx context.Context, entries ...event.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

// FetchUnpublished returns the oldest pending entries first.
func (r *OutboxRepository) FetchUnpublished(ctx context.Context, batchSize int) ([]event.OutboxEntry, error) {
	var out []event.OutboxEntry
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("created_at ASC, id ASC").
		Limit(batchSize).
		Find(&out).Error
	return out, err
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&event.OutboxEntry{}).
		Where("id IN ? AND published_at IS NULL", ids).
		Update("published_at", at.UTC()).Error
}
