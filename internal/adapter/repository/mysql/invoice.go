package mysql

import (
	"context"

	"pawnshop-backend/internal/domain/invoice"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepository struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository { return &InvoiceRepository{db: db} }

func (r *InvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

// Save updates the header only; lines are immutable once created.
func (r *InvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(inv).Error
}

func (r *InvoiceRepository) ListByTicket(ctx context.Context, ticketID uint64) ([]invoice.Invoice, error) {
	var out []invoice.Invoice
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("ticket_id = ?", ticketID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *InvoiceRepository) GetByNo(ctx context.Context, invoiceNo string) (*invoice.Invoice, error) {
	var out invoice.Invoice
	res := r.db.WithContext(ctx).Preload("Lines").Where("invoice_no = ?", invoiceNo).First(&out)
	return &out, res.Error
}
