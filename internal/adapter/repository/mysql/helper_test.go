package mysql

import (
	"context"
	"testing"
	"time"

	"pawnshop-backend/internal/domain/catalog"
	"pawnshop-backend/internal/domain/ticket"
	"pawnshop-backend/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with the full schema. A single connection keeps
// every statement on the same in-memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func amt(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func seedBranch(t *testing.T, db *gorm.DB, code, prefix string) *catalog.Branch {
	t.Helper()
	b := &catalog.Branch{Code: code, Name: "Branch " + code, Active: true, SequencePrefix: prefix, SequencePadding: 5, SequenceNext: 1}
	if err := db.Create(b).Error; err != nil {
		t.Fatalf("seed branch: %v", err)
	}
	return b
}

func makeTicket(branchID uint64, state ticket.State, maturity time.Time) *ticket.Ticket {
	return &ticket.Ticket{
		TicketID:       id.NewID32(),
		TicketNo:       id.NewID32()[:12],
		CustomerID:     "c0ffee00c0ffee00c0ffee00c0ffee00",
		CustomerName:   "Juan Dela Cruz",
		BranchID:       branchID,
		Principal:      amt(5000),
		InterestRate:   decimal.NewFromInt(3),
		State:          state,
		StateUpdatedAt: time.Now().UTC(),
		DateCreated:    time.Now().UTC(),
		DateMaturity:   maturity,
		DateGraceEnd:   ticket.GraceEnd(maturity, 7),
		Lines: []ticket.Line{
			{LineID: id.NewID32(), Sequence: 20, Name: "Watch", CategoryID: 2, AppraisedValue: amt(3000)},
			{LineID: id.NewID32(), Sequence: 10, Name: "Ring", CategoryID: 1, AppraisedValue: amt(5000)},
		},
	}
}

func seedTicket(t *testing.T, db *gorm.DB, tk *ticket.Ticket) *ticket.Ticket {
	t.Helper()
	if err := NewTicketRepository(db).Create(context.Background(), tk); err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
	return tk
}
