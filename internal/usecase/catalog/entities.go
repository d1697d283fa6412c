package catalog

import (
	domain "pawnshop-backend/internal/domain/catalog"

	"github.com/shopspring/decimal"
)

type BranchInput struct {
	Code            string
	Name            string
	Sequence        int
	Active          bool
	Street          string
	Street2         string
	City            string
	Zip             string
	Phone           string
	Email           string
	WarehouseCode   string
	ManagerID       string
	SequencePrefix  string
	SequencePadding int
}

type CategoryInput struct {
	Code            string
	Name            string
	Sequence        int
	Active          bool
	ParentID        *uint64
	Description     string
	Color           int
	DefaultLTVRatio decimal.Decimal
	RequiresSerial  bool
	RequiresPhoto   bool
}

type CategoryDTO struct {
	domain.Category
	FullName string `json:"full_name"`
}

type UserBranchesDTO struct {
	UserID       string   `json:"user_id"`
	BranchIDs    []uint64 `json:"branch_ids"`
	Unrestricted bool     `json:"unrestricted"`
}
