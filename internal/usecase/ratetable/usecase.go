package ratetable

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pawnshop-backend/internal/domain/catalog"
	domain "pawnshop-backend/internal/domain/ratetable"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Usecase struct {
	repo       domain.Repository
	branches   catalog.BranchRepository
	categories catalog.CategoryRepository
	log        *zap.Logger
	now        func() time.Time
}

func NewUsecase(repo domain.Repository, branches catalog.BranchRepository, categories catalog.CategoryRepository, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{repo: repo, branches: branches, categories: categories, log: log, now: time.Now}
}

func (u *Usecase) get(ctx context.Context, code string) (*domain.RateTable, error) {
	t, err := u.repo.GetByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, code)
	}
	return t, err
}

// describer resolves category names and branch codes for line descriptions; lookups that
// fail leave the label out.
func (u *Usecase) describer(ctx context.Context) func(domain.Line) string {
	categoryName := func(id uint64) string {
		if c, err := u.categories.GetByID(ctx, id); err == nil {
			return c.Name
		}
		return ""
	}
	branchCode := func(id uint64) string {
		if b, err := u.branches.GetByID(ctx, id); err == nil {
			return b.Code
		}
		return ""
	}
	return func(l domain.Line) string { return domain.Describe(l, categoryName, branchCode) }
}

func (u *Usecase) apply(ctx context.Context, t *domain.RateTable, in TableInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return catalog.ErrNameRequired
	}
	t.Name = in.Name
	t.Sequence = in.Sequence
	t.Active = in.Active
	t.DateFrom = in.DateFrom.UTC()
	if t.DateFrom.IsZero() {
		t.DateFrom = u.now().UTC()
	}
	t.DateTo = in.DateTo
	t.Notes = in.Notes

	t.Branches = t.Branches[:0]
	for _, id := range in.BranchIDs {
		t.Branches = append(t.Branches, domain.TableBranch{BranchID: id})
	}
	describe := u.describer(ctx)
	t.Lines = make([]domain.Line, 0, len(in.Lines))
	for i, l := range in.Lines {
		line := domain.Line{
			Sequence:    l.Sequence,
			CategoryID:  l.CategoryID,
			BranchID:    l.BranchID,
			AmountFrom:  l.AmountFrom,
			RatePercent: l.RatePercent,
			RatePeriod:  l.RatePeriod,
		}
		if line.Sequence == 0 {
			line.Sequence = (i + 1) * 10
		}
		if line.RatePeriod == "" {
			line.RatePeriod = domain.PeriodMonth
		}
		if l.AmountTo != nil {
			line.AmountTo = decimal.NewNullDecimal(*l.AmountTo)
		}
		line.Name = describe(line)
		t.Lines = append(t.Lines, line)
	}
	return domain.Validate(t)
}

func (u *Usecase) Create(ctx context.Context, in TableInput) (*domain.RateTable, error) {
	if err := catalog.ValidateCode(in.Code); err != nil {
		return nil, err
	}
	if _, err := u.repo.GetByCode(ctx, in.Code); err == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateCode, in.Code)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	t := &domain.RateTable{Code: in.Code}
	if err := u.apply(ctx, t, in); err != nil {
		return nil, err
	}
	if err := u.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	u.log.Info("rate table created", zap.String("code", t.Code), zap.Int("lines", len(t.Lines)))
	return t, nil
}

// Update replaces everything but the code.
func (u *Usecase) Update(ctx context.Context, code string, in TableInput) (*domain.RateTable, error) {
	t, err := u.get(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := u.apply(ctx, t, in); err != nil {
		return nil, err
	}
	if err := u.repo.Save(ctx, t); err != nil {
		return nil, err
	}
	u.log.Info("rate table updated", zap.String("code", t.Code))
	return t, nil
}

func (u *Usecase) Get(ctx context.Context, code string) (*domain.RateTable, error) {
	return u.get(ctx, code)
}

func (u *Usecase) List(ctx context.Context, activeOnly bool) ([]domain.RateTable, error) {
	return u.repo.List(ctx, activeOnly)
}

func (u *Usecase) Resolve(ctx context.Context, in ResolveInput) (*RateDTO, error) {
	t, err := u.get(ctx, in.Code)
	if err != nil {
		return nil, err
	}
	date := in.Date
	if date.IsZero() {
		date = u.now()
	}
	rate, err := t.Resolve(domain.Query{Amount: in.Amount, CategoryID: in.CategoryID, BranchID: in.BranchID, Date: date})
	if err != nil {
		return nil, err
	}
	dto := &RateDTO{
		TableCode:      t.Code,
		LineID:         rate.LineID,
		RatePercent:    rate.Percent,
		RatePeriod:     rate.Period,
		MonthlyPercent: rate.MonthlyPercent().Round(4),
	}
	for _, l := range t.Lines {
		if l.ID == rate.LineID {
			dto.Description = l.Name
		}
	}
	return dto, nil
}
