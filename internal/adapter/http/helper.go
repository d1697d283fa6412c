package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"pawnshop-backend/pkg/id"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var errBadParam = errors.New("bad path param")

// bindValid binds and validates req, writing the 400/422 response itself. ok is false when a
// response was written.
func bindValid(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

// ticketIDProblem returns the 400 message for a bad ticket_id, or "".
func ticketIDProblem(tid string) string {
	switch {
	case tid == "":
		return "missing ticket_id path param"
	case !id.IsID32(tid):
		return "invalid ticket_id path param"
	}
	return ""
}

func uintParam(c echo.Context, name string) (uint64, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, errBadParam
	}
	return n, nil
}

// parseDate reads a validated YYYY-MM-DD value; empty gives nil.
func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}

func decPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}
