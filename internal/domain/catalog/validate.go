package catalog

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

var (
	ErrBranchNotFound        = errors.New("branch not found")
	ErrCategoryNotFound      = errors.New("category not found")
	ErrInvalidCode           = errors.New("code must contain only letters, numbers, hyphens, or underscores")
	ErrDuplicateCode         = errors.New("code already exists")
	ErrRecursiveCategory     = errors.New("you cannot create recursive categories")
	ErrSequenceNotConfigured = errors.New("no ticket sequence configured for branch")
	ErrInvalidLTV            = errors.New("default ltv ratio must be between 0 and 100")
	ErrNameRequired          = errors.New("name is required")
)

var (
	reCode  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	hundred = decimal.NewFromInt(100)
)

func ValidateCode(code string) error {
	if !reCode.MatchString(code) {
		return fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	return nil
}

func ValidateBranch(b *Branch) error {
	if b.Name == "" {
		return ErrNameRequired
	}
	return ValidateCode(b.Code)
}

// ValidateCategory checks the code, the LTV bound and that following parents from c never
// comes back to c. parentOf returns the parent id of a category, or nil at a root.
func ValidateCategory(c *Category, parentOf func(id uint64) *uint64) error {
	if c.Name == "" {
		return ErrNameRequired
	}
	if err := ValidateCode(c.Code); err != nil {
		return err
	}
	if c.DefaultLTVRatio.IsNegative() || c.DefaultLTVRatio.GreaterThan(hundred) {
		return ErrInvalidLTV
	}
	seen := map[uint64]bool{}
	for p := c.ParentID; p != nil; p = parentOf(*p) {
		if (c.ID != 0 && *p == c.ID) || seen[*p] {
			return ErrRecursiveCategory
		}
		seen[*p] = true
	}
	return nil
}
