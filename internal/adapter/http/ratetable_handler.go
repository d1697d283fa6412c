package http

import (
	"net/http"
	"time"

	domain "pawnshop-backend/internal/domain/ratetable"
	"pawnshop-backend/internal/usecase/ratetable"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type RateTableHandler struct{ uc *ratetable.Usecase }

func NewRateTableHandler(uc *ratetable.Usecase) *RateTableHandler {
	return &RateTableHandler{uc: uc}
}

type rateLineReq struct {
	Sequence    int      `json:"sequence"`
	CategoryID  *uint64  `json:"category_id"`
	BranchID    *uint64  `json:"branch_id"`
	AmountFrom  float64  `json:"amount_from"  validate:"gte=0,dec2"`
	AmountTo    *float64 `json:"amount_to"    validate:"omitempty,dec2"`
	RatePercent float64  `json:"rate_percent" validate:"gte=0"`
	RatePeriod  string   `json:"rate_period"  validate:"omitempty,oneof=day month year"`
}

type rateTableReq struct {
	Code      string        `json:"code"       validate:"required,max=16,code"`
	Name      string        `json:"name"       validate:"required,max=128"`
	Sequence  int           `json:"sequence"`
	Active    *bool         `json:"active"`
	DateFrom  string        `json:"date_from"  validate:"required,datetime=2006-01-02"`
	DateTo    string        `json:"date_to"    validate:"omitempty,datetime=2006-01-02"`
	Notes     string        `json:"notes"`
	BranchIDs []uint64      `json:"branch_ids"`
	Lines     []rateLineReq `json:"lines"      validate:"dive"`
}

func (r rateTableReq) input() ratetable.TableInput {
	in := ratetable.TableInput{
		Code:      r.Code,
		Name:      r.Name,
		Sequence:  r.Sequence,
		Active:    r.Active == nil || *r.Active,
		DateTo:    parseDate(r.DateTo),
		Notes:     r.Notes,
		BranchIDs: r.BranchIDs,
		Lines:     make([]ratetable.LineInput, 0, len(r.Lines)),
	}
	if d := parseDate(r.DateFrom); d != nil {
		in.DateFrom = *d
	}
	for _, l := range r.Lines {
		in.Lines = append(in.Lines, ratetable.LineInput{
			Sequence:    l.Sequence,
			CategoryID:  l.CategoryID,
			BranchID:    l.BranchID,
			AmountFrom:  decimal.NewFromFloat(l.AmountFrom),
			AmountTo:    decPtr(l.AmountTo),
			RatePercent: decimal.NewFromFloat(l.RatePercent),
			RatePeriod:  domain.Period(l.RatePeriod),
		})
	}
	return in
}

func (h *RateTableHandler) Create(c echo.Context) error {
	var req rateTableReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	t, err := h.uc.Create(c.Request().Context(), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// Update replaces everything but the code, which comes from the path.
func (h *RateTableHandler) Update(c echo.Context) error {
	code := c.Param("code")
	var req rateTableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	req.Code = code
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	t, err := h.uc.Update(c.Request().Context(), code, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *RateTableHandler) Get(c echo.Context) error {
	t, err := h.uc.Get(c.Request().Context(), c.Param("code"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *RateTableHandler) List(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), c.QueryParam("active") == "true")
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": out})
}

type resolveReq struct {
	Amount     float64 `query:"amount"      validate:"gte=0"`
	CategoryID uint64  `query:"category_id"`
	BranchID   uint64  `query:"branch_id"`
	Date       string  `query:"date"        validate:"omitempty,datetime=2006-01-02"`
}

// Resolve returns the rate a loan of the given amount would get under the table.
func (h *RateTableHandler) Resolve(c echo.Context) error {
	var req resolveReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	var date time.Time
	if d := parseDate(req.Date); d != nil {
		date = *d
	}
	dto, err := h.uc.Resolve(c.Request().Context(), ratetable.ResolveInput{
		Code:       c.Param("code"),
		Amount:     decimal.NewFromFloat(req.Amount),
		CategoryID: req.CategoryID,
		BranchID:   req.BranchID,
		Date:       date,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
