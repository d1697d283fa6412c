package http

import (
	"errors"
	"net/http"

	"pawnshop-backend/internal/domain/access"
	"pawnshop-backend/internal/domain/catalog"
	"pawnshop-backend/internal/domain/inventory"
	"pawnshop-backend/internal/domain/invoice"
	"pawnshop-backend/internal/domain/ratetable"
	"pawnshop-backend/internal/domain/ticket"

	"github.com/labstack/echo/v4"
)

var (
	notFoundErrs = []error{
		ticket.ErrNotFound, ticket.ErrLineNotFound,
		catalog.ErrBranchNotFound, catalog.ErrCategoryNotFound,
		ratetable.ErrNotFound, ratetable.ErrRateNotFound,
		invoice.ErrNotFound,
	}
	unprocessableErrs = []error{
		ticket.ErrInvalidInput, ticket.ErrMaturityNotFuture, ticket.ErrLTVExceeded,
		ticket.ErrAmountOutOfRange, ticket.ErrNoItems, ticket.ErrNonPositiveAppraisal,
		ticket.ErrNegativeWeight, ticket.ErrSerialRequired,
		ratetable.ErrInvalidDates, ratetable.ErrInvalidRange, ratetable.ErrNegativeAmount,
		ratetable.ErrNegativeRate, ratetable.ErrOverlappingRange, ratetable.ErrInvalidPeriod,
		catalog.ErrInvalidCode, catalog.ErrRecursiveCategory, catalog.ErrInvalidLTV,
		catalog.ErrNameRequired,
	}
	conflictErrs = []error{
		ticket.ErrInvalidTransition, ticket.ErrNotEditable,
		catalog.ErrDuplicateCode, ratetable.ErrDuplicateCode, catalog.ErrSequenceNotConfigured,
		invoice.ErrProductNotConfigured, invoice.ErrNoLines, invoice.ErrNotPostable,
		invoice.ErrNotPayable, inventory.ErrNoProduct,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// StatusOf maps domain errors to HTTP codes.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, access.ErrBranchForbidden):
		return http.StatusForbidden
	case isAny(err, notFoundErrs):
		return http.StatusNotFound
	case ticket.IsValidation(err), isAny(err, unprocessableErrs):
		return http.StatusUnprocessableEntity
	case isAny(err, conflictErrs):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes the mapped status. Unexpected errors are logged and hidden from the caller.
func respondError(c echo.Context, err error) error {
	code := StatusOf(err)
	if code == http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(code, ErrorResponse{Error: "internal server error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}
