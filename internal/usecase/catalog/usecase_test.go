package catalog

import (
	"context"
	"errors"
	"testing"

	"pawnshop-backend/internal/adapter/repository/mysql"
	domain "pawnshop-backend/internal/domain/catalog"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setup(t *testing.T) *Usecase {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := mysql.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewUsecase(mysql.NewBranchRepository(db), mysql.NewCategoryRepository(db), mysql.NewUserBranchRepository(db), nil)
}

func TestBranch_CreateUpdate(t *testing.T) {
	uc := setup(t)
	ctx := context.Background()

	b, err := uc.CreateBranch(ctx, BranchInput{Code: "MNL01", Name: "Manila", Active: true, SequencePrefix: "MNL01/"})
	if err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if b.SequencePadding != 5 || b.SequenceNext != 1 {
		t.Fatalf("sequence defaults not applied: %+v", b)
	}

	if _, err := uc.CreateBranch(ctx, BranchInput{Code: "MNL01", Name: "Again"}); !errors.Is(err, domain.ErrDuplicateCode) {
		t.Fatalf("want ErrDuplicateCode, got %v", err)
	}
	if _, err := uc.CreateBranch(ctx, BranchInput{Code: "MNL 02", Name: "Space"}); !errors.Is(err, domain.ErrInvalidCode) {
		t.Fatalf("want ErrInvalidCode, got %v", err)
	}
	if _, err := uc.CreateBranch(ctx, BranchInput{Code: "X"}); !errors.Is(err, domain.ErrNameRequired) {
		t.Fatalf("want ErrNameRequired, got %v", err)
	}

	up, err := uc.UpdateBranch(ctx, b.ID, BranchInput{Code: "IGNORED", Name: "Manila Main", Active: true, City: "Manila", SequencePrefix: "MNL/", SequencePadding: 6})
	if err != nil {
		t.Fatalf("UpdateBranch: %v", err)
	}
	if up.Code != "MNL01" || up.Name != "Manila Main" || up.FormatTicketNo(7) != "MNL/000007" {
		t.Fatalf("unexpected branch after update: %+v", up)
	}

	if _, err := uc.GetBranch(ctx, 999); !errors.Is(err, domain.ErrBranchNotFound) {
		t.Fatalf("want ErrBranchNotFound, got %v", err)
	}
	if _, err := uc.UpdateBranch(ctx, 999, BranchInput{Name: "x"}); !errors.Is(err, domain.ErrBranchNotFound) {
		t.Fatalf("want ErrBranchNotFound, got %v", err)
	}

	if _, err := uc.CreateBranch(ctx, BranchInput{Code: "CEB01", Name: "Cebu"}); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	all, err := uc.ListBranches(ctx, false)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListBranches all: %v %d", err, len(all))
	}
	active, err := uc.ListBranches(ctx, true)
	if err != nil || len(active) != 1 || active[0].Code != "MNL01" {
		t.Fatalf("ListBranches active: %v %+v", err, active)
	}
}

func TestCategory_HierarchyAndRecursion(t *testing.T) {
	uc := setup(t)
	ctx := context.Background()

	root, err := uc.CreateCategory(ctx, CategoryInput{Code: "JEW", Name: "Jewelry", Active: true, DefaultLTVRatio: decimal.NewFromInt(70)})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	rings, err := uc.CreateCategory(ctx, CategoryInput{Code: "RING", Name: "Rings", Active: true, ParentID: &root.ID})
	if err != nil {
		t.Fatalf("CreateCategory child: %v", err)
	}
	gold, err := uc.CreateCategory(ctx, CategoryInput{Code: "GOLD", Name: "Gold", ParentID: &rings.ID})
	if err != nil {
		t.Fatalf("CreateCategory grandchild: %v", err)
	}

	// root -> gold would close the loop gold -> rings -> root -> gold
	_, err = uc.UpdateCategory(ctx, root.ID, CategoryInput{Name: "Jewelry", Active: true, ParentID: &gold.ID})
	if !errors.Is(err, domain.ErrRecursiveCategory) {
		t.Fatalf("want ErrRecursiveCategory, got %v", err)
	}
	_, err = uc.UpdateCategory(ctx, rings.ID, CategoryInput{Name: "Rings", ParentID: &rings.ID})
	if !errors.Is(err, domain.ErrRecursiveCategory) {
		t.Fatalf("self parent: want ErrRecursiveCategory, got %v", err)
	}

	missing := uint64(404)
	if _, err := uc.CreateCategory(ctx, CategoryInput{Code: "ORPH", Name: "Orphan", ParentID: &missing}); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("want ErrCategoryNotFound, got %v", err)
	}
	if _, err := uc.CreateCategory(ctx, CategoryInput{Code: "LTV", Name: "Too much", DefaultLTVRatio: decimal.NewFromInt(120)}); !errors.Is(err, domain.ErrInvalidLTV) {
		t.Fatalf("want ErrInvalidLTV, got %v", err)
	}

	list, err := uc.ListCategories(ctx, false)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	names := map[string]string{}
	for _, c := range list {
		names[c.Code] = c.FullName
	}
	if names["GOLD"] != "Jewelry / Rings / Gold" || names["JEW"] != "Jewelry" {
		t.Fatalf("unexpected full names: %v", names)
	}

	active, err := uc.ListCategories(ctx, true)
	if err != nil || len(active) != 2 {
		t.Fatalf("active categories: %v %d", err, len(active))
	}
}

func TestUserBranches(t *testing.T) {
	uc := setup(t)
	ctx := context.Background()

	b1, _ := uc.CreateBranch(ctx, BranchInput{Code: "MNL01", Name: "Manila", Active: true})
	b2, _ := uc.CreateBranch(ctx, BranchInput{Code: "CEB01", Name: "Cebu", Active: true})

	got, err := uc.UserBranches(ctx, "u1")
	if err != nil || !got.Unrestricted || len(got.BranchIDs) != 0 {
		t.Fatalf("fresh user should be unrestricted: %v %+v", err, got)
	}

	got, err = uc.AssignUserBranches(ctx, "u1", []uint64{b2.ID, b1.ID, b2.ID})
	if err != nil {
		t.Fatalf("AssignUserBranches: %v", err)
	}
	if got.Unrestricted || len(got.BranchIDs) != 2 || got.BranchIDs[0] != b1.ID {
		t.Fatalf("unexpected assignment: %+v", got)
	}

	if _, err := uc.AssignUserBranches(ctx, "u1", []uint64{b1.ID, 999}); !errors.Is(err, domain.ErrBranchNotFound) {
		t.Fatalf("want ErrBranchNotFound, got %v", err)
	}
	got, _ = uc.UserBranches(ctx, "u1")
	if len(got.BranchIDs) != 2 {
		t.Fatalf("failed assignment must not change the set: %+v", got)
	}

	got, err = uc.AssignUserBranches(ctx, "u1", nil)
	if err != nil || !got.Unrestricted {
		t.Fatalf("clearing should lift restriction: %v %+v", err, got)
	}
}
