package mysql

import (
	"pawnshop-backend/internal/domain/catalog"
	"pawnshop-backend/internal/domain/event"
	"pawnshop-backend/internal/domain/inventory"
	"pawnshop-backend/internal/domain/invoice"
	"pawnshop-backend/internal/domain/ratetable"
	"pawnshop-backend/internal/domain/ticket"

	"gorm.io/gorm"
)

// Models lists every persisted entity in dependency order.
func Models() []any {
	return []any{
		&catalog.Branch{},
		&catalog.Category{},
		&catalog.UserBranch{},
		&ratetable.RateTable{},
		&ratetable.TableBranch{},
		&ratetable.Line{},
		&ticket.Ticket{},
		&ticket.Line{},
		&inventory.Move{},
		&invoice.Invoice{},
		&invoice.Line{},
		&event.OutboxEntry{},
	}
}

func Migrate(db *gorm.DB) error { return db.AutoMigrate(Models()...) }
