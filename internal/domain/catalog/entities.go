package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Branch struct {
	ID       uint64 `gorm:"primaryKey;column:id" json:"id"`
	Code     string `gorm:"size:16;not null;uniqueIndex:ux_branches_code" json:"code"`
	Name     string `gorm:"size:128;not null" json:"name"`
	Sequence int    `gorm:"default:10" json:"sequence"`
	Active   bool   `gorm:"not null" json:"active"`

	Street  string `gorm:"size:128" json:"street,omitempty"`
	Street2 string `gorm:"size:128" json:"street2,omitempty"`
	City    string `gorm:"size:64" json:"city,omitempty"`
	Zip     string `gorm:"size:16" json:"zip,omitempty"`
	Phone   string `gorm:"size:32" json:"phone,omitempty"`
	Email   string `gorm:"size:128" json:"email,omitempty"`

	WarehouseCode string `gorm:"size:16" json:"warehouse_code,omitempty"`
	ManagerID     string `gorm:"size:32" json:"manager_id,omitempty"`

	// Ticket numbering. An empty prefix means the branch has no sequence of its own.
	SequencePrefix  string `gorm:"size:16" json:"sequence_prefix,omitempty"`
	SequencePadding int    `gorm:"default:5" json:"sequence_padding"`
	SequenceNext    int64  `gorm:"not null;default:1" json:"sequence_next"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Branch) TableName() string { return "branches" }

func (b *Branch) HasSequence() bool { return b.SequencePrefix != "" }

// FormatTicketNo renders n with the branch prefix, e.g. "MNL01/00042".
func (b *Branch) FormatTicketNo(n int64) string {
	pad := b.SequencePadding
	if pad <= 0 {
		pad = 5
	}
	return fmt.Sprintf("%s%0*d", b.SequencePrefix, pad, n)
}

// DisplayName is "[CODE] Name".
func (b *Branch) DisplayName() string { return "[" + b.Code + "] " + b.Name }

type Category struct {
	ID          uint64  `gorm:"primaryKey;column:id" json:"id"`
	Code        string  `gorm:"size:16;not null;uniqueIndex:ux_categories_code" json:"code"`
	Name        string  `gorm:"size:128;not null" json:"name"`
	Sequence    int     `gorm:"default:10" json:"sequence"`
	Active      bool    `gorm:"not null" json:"active"`
	ParentID    *uint64 `gorm:"index" json:"parent_id,omitempty"`
	Description string  `gorm:"type:text" json:"description,omitempty"`
	Color       int     `json:"color"`

	// DefaultLTVRatio is a percentage, 70 meaning 70% of appraised value.
	DefaultLTVRatio decimal.Decimal `gorm:"type:decimal(5,2)" json:"default_ltv_ratio"`
	RequiresSerial  bool            `json:"requires_serial"`
	RequiresPhoto   bool            `json:"requires_photo"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Category) TableName() string { return "categories" }

// UserBranch restricts a user to a branch. Users with no rows see every branch.
type UserBranch struct {
	UserID   string `gorm:"primaryKey;size:32" json:"user_id"`
	BranchID uint64 `gorm:"primaryKey" json:"branch_id"`
}

func (UserBranch) TableName() string { return "user_branches" }

// FullName joins the category's ancestry, "Jewelry / Rings".
func FullName(c *Category, byID map[uint64]*Category) string {
	names := []string{c.Name}
	seen := map[uint64]bool{c.ID: true}
	for p := c.ParentID; p != nil; {
		parent, ok := byID[*p]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		names = append([]string{parent.Name}, names...)
		p = parent.ParentID
	}
	return strings.Join(names, " / ")
}
