package mysql

import (
	"context"

	"pawnshop-backend/internal/domain/ticket"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TicketRepository struct{ db *gorm.DB }

func NewTicketRepository(db *gorm.DB) *TicketRepository { return &TicketRepository{db: db} }

func orderedLines(db *gorm.DB) *gorm.DB { return db.Order("sequence ASC, id ASC") }

func (r *TicketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	for i := range t.Lines {
		t.Lines[i].BranchID = t.BranchID
	}
	return r.db.WithContext(ctx).Create(t).Error
}

// Save writes the ticket row, then each line it carries with the branch mirrored.
func (r *TicketRepository) Save(ctx context.Context, t *ticket.Ticket) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Save(t).Error; err != nil {
		return err
	}
	for i := range t.Lines {
		t.Lines[i].TicketID = t.ID
		t.Lines[i].BranchID = t.BranchID
		if err := db.Save(&t.Lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *TicketRepository) ReplaceLines(ctx context.Context, t *ticket.Ticket, lines []ticket.Line) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("ticket_id = ?", t.ID).Delete(&ticket.Line{}).Error; err != nil {
		return err
	}
	for i := range lines {
		lines[i].ID = 0
		lines[i].TicketID = t.ID
		lines[i].BranchID = t.BranchID
	}
	if len(lines) > 0 {
		if err := db.Create(&lines).Error; err != nil {
			return err
		}
	}
	t.Lines = lines
	return nil
}

func (r *TicketRepository) GetByTicketID(ctx context.Context, ticketID string) (*ticket.Ticket, error) {
	var out ticket.Ticket
	res := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		Where("ticket_id = ?", ticketID).
		First(&out)
	return &out, res.Error
}

// GetByTicketIDForUpdate locks the ticket row. Dialects without row locks ignore the clause.
func (r *TicketRepository) GetByTicketIDForUpdate(ctx context.Context, ticketID string) (*ticket.Ticket, error) {
	var out ticket.Ticket
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("ticket_id = ?", ticketID).
		First(&out)
	if res.Error != nil {
		return &out, res.Error
	}
	err := r.db.WithContext(ctx).Scopes(orderedLines).Where("ticket_id = ?", out.ID).Find(&out.Lines).Error
	return &out, err
}

func (r *TicketRepository) Search(ctx context.Context, f ticket.Filter) ([]ticket.Ticket, error) {
	var out []ticket.Ticket
	q := r.db.WithContext(ctx).
		Model(&ticket.Ticket{}).
		Scopes(TicketFilter(f)).
		Preload("Lines", orderedLines).
		Order("date_maturity ASC, id ASC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	err := q.Find(&out).Error
	return out, err
}

func (r *TicketRepository) Count(ctx context.Context, f ticket.Filter) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ticket.Ticket{}).Scopes(TicketFilter(f)).Count(&n).Error
	return n, err
}

// TicketFilter translates a filter into SQL conditions. The maturity predicates compare
// date_maturity against Today and only ever match pledged or renewed tickets.
func TicketFilter(f ticket.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.BranchIDs != nil {
			if len(f.BranchIDs) == 0 {
				return db.Where("1 = 0")
			}
			db = db.Where("branch_id IN ?", f.BranchIDs)
		}
		if len(f.States) > 0 {
			db = db.Where("state IN ?", f.States)
		}
		if f.CustomerID != "" {
			db = db.Where("customer_id = ?", f.CustomerID)
		}
		if !f.DueToday && !f.Overdue && !f.InGrace {
			return db
		}

		today := ticket.DateOf(f.Today)
		db = db.Where("state IN ?", ticket.ActiveStates)
		if f.DueToday {
			db = db.Where("date_maturity >= ? AND date_maturity < ?", today, today.AddDate(0, 0, 1))
		}
		if f.Overdue {
			db = db.Where("date_maturity < ?", today)
		}
		if f.InGrace {
			// maturity + grace >= today, i.e. maturity >= today - grace
			db = db.Where("date_maturity < ? AND date_maturity >= ?", today, today.AddDate(0, 0, -f.GraceDays))
		}
		return db
	}
}
