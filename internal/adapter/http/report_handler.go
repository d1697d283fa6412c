package http

import (
	"net/http"
	"strconv"

	"pawnshop-backend/internal/usecase/report"

	"github.com/labstack/echo/v4"
)

type ReportHandler struct{ uc *report.Usecase }

func NewReportHandler(uc *report.Usecase) *ReportHandler { return &ReportHandler{uc: uc} }

// branchQuery reads ?branch_id=; absent means every branch in the caller's scope.
func branchQuery(c echo.Context) (uint64, bool) {
	raw := c.QueryParam("branch_id")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	return n, err == nil
}

func (h *ReportHandler) serve(c echo.Context, run func(branchID uint64) (any, error)) error {
	branchID, ok := branchQuery(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid branch_id query param"})
	}
	out, err := run(branchID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ReportHandler) LoanBook(c echo.Context) error {
	return h.serve(c, func(b uint64) (any, error) {
		rows, err := h.uc.LoanBook(c.Request().Context(), b)
		return map[string]any{"items": rows}, err
	})
}

func (h *ReportHandler) Aging(c echo.Context) error {
	return h.serve(c, func(b uint64) (any, error) {
		return h.uc.Aging(c.Request().Context(), b)
	})
}

func (h *ReportHandler) Collections(c echo.Context) error {
	return h.serve(c, func(b uint64) (any, error) {
		rows, err := h.uc.Collections(c.Request().Context(), b)
		return map[string]any{"items": rows}, err
	})
}

func (h *ReportHandler) Inventory(c echo.Context) error {
	return h.serve(c, func(b uint64) (any, error) {
		rows, err := h.uc.Inventory(c.Request().Context(), b)
		return map[string]any{"items": rows}, err
	})
}

func (h *ReportHandler) KPIs(c echo.Context) error {
	return h.serve(c, func(b uint64) (any, error) {
		rows, err := h.uc.KPIs(c.Request().Context(), b)
		return map[string]any{"items": rows}, err
	})
}

func (h *ReportHandler) Dashboard(c echo.Context) error {
	return h.serve(c, func(b uint64) (any, error) {
		return h.uc.Dashboard(c.Request().Context(), b)
	})
}
