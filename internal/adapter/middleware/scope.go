package middleware

import (
	"net/http"
	"strings"

	"pawnshop-backend/internal/domain/access"
	"pawnshop-backend/internal/domain/catalog"
	"pawnshop-backend/pkg/id"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// BranchScope loads the branches assigned to Ax-User-Id and stores the resulting scope on the
// request context. Requests without the header run unrestricted.
func BranchScope(users catalog.UserBranchRepository, log *zap.Logger) echo.MiddlewareFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := strings.TrimSpace(c.Request().Header.Get(HeaderUserID))
			if userID == "" {
				return next(c)
			}
			if !id.IsID32(userID) {
				return badRequest(c, "invalid "+HeaderUserID)
			}
			ids, err := users.BranchIDsForUser(c.Request().Context(), userID)
			if err != nil {
				log.Error("load user branches", zap.String("user_id", userID), zap.Error(err))
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "branch access unavailable"})
			}
			ctx := access.WithScope(c.Request().Context(), access.ForUser(userID, ids))
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
