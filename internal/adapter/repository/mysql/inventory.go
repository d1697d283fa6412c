package mysql

import (
	"context"

	"pawnshop-backend/internal/domain/inventory"

	"gorm.io/gorm"
)

type MoveRepository struct{ db *gorm.DB }

func NewMoveRepository(db *gorm.DB) *MoveRepository { return &MoveRepository{db: db} }

func (r *MoveRepository) FindDone(ctx context.Context, lineID uint64, dest inventory.Location) (*inventory.Move, error) {
	var out inventory.Move
	res := r.db.WithContext(ctx).
		Where("line_id = ? AND location_to = ? AND state = ?", lineID, dest, inventory.StateDone).
		Order("id DESC").
		Limit(1).
		Find(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &out, nil
}

func (r *MoveRepository) Create(ctx context.Context, m *inventory.Move) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MoveRepository) ListByTicket(ctx context.Context, ticketID uint64) ([]inventory.Move, error) {
	var out []inventory.Move
	err := r.db.WithContext(ctx).Where("ticket_id = ?", ticketID).Order("id ASC").Find(&out).Error
	return out, err
}
