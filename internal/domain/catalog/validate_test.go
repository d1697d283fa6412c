package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCode(t *testing.T) {
	for _, ok := range []string{"MNL01", "cebu-2", "HQ_MAIN", "x"} {
		assert.NoError(t, ValidateCode(ok), ok)
	}
	for _, bad := range []string{"", "MNL 01", "MNL/01", "café"} {
		assert.ErrorIs(t, ValidateCode(bad), ErrInvalidCode, bad)
	}
}

func TestFormatTicketNo(t *testing.T) {
	b := &Branch{Code: "MNL01", SequencePrefix: "MNL01/", SequencePadding: 5}
	assert.True(t, b.HasSequence())
	assert.Equal(t, "MNL01/00042", b.FormatTicketNo(42))

	b.SequencePadding = 0
	assert.Equal(t, "MNL01/00007", b.FormatTicketNo(7))

	assert.False(t, (&Branch{Code: "X"}).HasSequence())
}

func TestValidateCategory_Recursion(t *testing.T) {
	parents := map[uint64]*uint64{}
	parentOf := func(id uint64) *uint64 { return parents[id] }
	ptr := func(v uint64) *uint64 { return &v }

	// 1 <- 2 <- 3
	parents[2] = ptr(1)
	parents[3] = ptr(2)

	c := &Category{ID: 1, Code: "JEW", Name: "Jewelry", ParentID: ptr(3)}
	require.ErrorIs(t, ValidateCategory(c, parentOf), ErrRecursiveCategory)

	c = &Category{ID: 4, Code: "RING", Name: "Rings", ParentID: ptr(3)}
	require.NoError(t, ValidateCategory(c, parentOf))

	c = &Category{ID: 5, Code: "SELF", Name: "Self", ParentID: ptr(5)}
	require.ErrorIs(t, ValidateCategory(c, parentOf), ErrRecursiveCategory)
}

func TestValidateCategory_Fields(t *testing.T) {
	none := func(uint64) *uint64 { return nil }
	require.ErrorIs(t, ValidateCategory(&Category{Code: "A"}, none), ErrNameRequired)
	require.ErrorIs(t, ValidateCategory(&Category{Code: "A B", Name: "A"}, none), ErrInvalidCode)
	require.ErrorIs(t, ValidateCategory(&Category{Code: "A", Name: "A", DefaultLTVRatio: decimal.NewFromInt(120)}, none), ErrInvalidLTV)
}

func TestFullName(t *testing.T) {
	root := &Category{ID: 1, Name: "Jewelry"}
	pid := uint64(1)
	child := &Category{ID: 2, Name: "Rings", ParentID: &pid}
	byID := map[uint64]*Category{1: root, 2: child}
	assert.Equal(t, "Jewelry / Rings", FullName(child, byID))
	assert.Equal(t, "Jewelry", FullName(root, byID))
}
