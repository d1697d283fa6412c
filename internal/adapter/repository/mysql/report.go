package mysql

import (
	"context"
	"time"

	"pawnshop-backend/internal/domain/invoice"
	"pawnshop-backend/internal/domain/report"
	"pawnshop-backend/internal/domain/ticket"

	"gorm.io/gorm"
)

// ReportSource runs the read-only projections behind the reports. Aggregation happens in
// the report package so the queries stay portable across dialects.
type ReportSource struct{ db *gorm.DB }

func NewReportSource(db *gorm.DB) *ReportSource { return &ReportSource{db: db} }

func inBranches(column string, ids []uint64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if ids == nil {
			return db
		}
		if len(ids) == 0 {
			return db.Where("1 = 0")
		}
		return db.Where(column+" IN ?", ids)
	}
}

func (s *ReportSource) Tickets(ctx context.Context, q report.TicketQuery) ([]report.TicketFacts, error) {
	var out []report.TicketFacts
	db := s.db.WithContext(ctx).
		Model(&ticket.Ticket{}).
		Select(`tickets.id, tickets.ticket_id, tickets.ticket_no, tickets.branch_id,
			tickets.customer_id, tickets.customer_name, tickets.state, tickets.principal,
			tickets.interest_amount, tickets.penalty_amount, tickets.service_fee, tickets.total_due,
			tickets.date_created, tickets.date_pledged, tickets.date_maturity, tickets.date_redeemed,
			(SELECT COUNT(*) FROM ticket_lines WHERE ticket_lines.ticket_id = tickets.id) AS item_count`).
		Scopes(inBranches("tickets.branch_id", q.BranchIDs))
	if len(q.States) > 0 {
		db = db.Where("tickets.state IN ?", q.States)
	}
	if !q.CreatedSince.IsZero() {
		db = db.Where("tickets.date_created >= ?", q.CreatedSince.UTC())
	}
	if !q.PledgedSince.IsZero() {
		db = db.Where("tickets.date_pledged >= ?", ticket.DateOf(q.PledgedSince))
	}
	err := db.Order("tickets.id ASC").Scan(&out).Error
	return out, err
}

func (s *ReportSource) Items(ctx context.Context, branchIDs []uint64, states []ticket.State) ([]report.ItemFacts, error) {
	var out []report.ItemFacts
	db := s.db.WithContext(ctx).
		Table("ticket_lines").
		Select(`ticket_lines.ticket_id, tickets.branch_id, ticket_lines.category_id, tickets.state,
			ticket_lines.appraised_value, tickets.principal, tickets.date_pledged`).
		Joins("JOIN tickets ON tickets.id = ticket_lines.ticket_id AND tickets.deleted_at IS NULL").
		Scopes(inBranches("tickets.branch_id", branchIDs))
	if len(states) > 0 {
		db = db.Where("tickets.state IN ?", states)
	}
	err := db.Order("ticket_lines.id ASC").Scan(&out).Error
	return out, err
}

func (s *ReportSource) Charges(ctx context.Context, branchIDs []uint64, since time.Time, states []invoice.State) ([]report.ChargeFacts, error) {
	var out []report.ChargeFacts
	db := s.db.WithContext(ctx).
		Table("invoice_lines").
		Select(`invoices.id AS invoice_id, invoices.invoice_date, invoices.branch_id, invoices.kind,
			invoice_lines.charge, invoice_lines.quantity * invoice_lines.price_unit AS amount`).
		Joins("JOIN invoices ON invoices.id = invoice_lines.invoice_id").
		Where("invoices.invoice_date >= ?", ticket.DateOf(since)).
		Scopes(inBranches("invoices.branch_id", branchIDs))
	if len(states) > 0 {
		db = db.Where("invoices.state IN ?", states)
	}
	err := db.Order("invoices.invoice_date ASC, invoice_lines.id ASC").Scan(&out).Error
	return out, err
}
