package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Health     *Handler
	Tickets    *TicketHandler
	RateTables *RateTableHandler
	Catalog    *CatalogHandler
	Reports    *ReportHandler
}

// RegisterRoutes mounts health and metrics bare and every business route behind mw.
func RegisterRoutes(e *echo.Echo, h Handlers, metrics http.Handler, mw ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics))
	}

	t := e.Group("/tickets", mw...)
	t.POST("", h.Tickets.Create)
	t.GET("", h.Tickets.Search)
	t.GET("/:ticket_id", h.Tickets.Get)
	t.PATCH("/:ticket_id", h.Tickets.Amend)
	t.GET("/:ticket_id/quote", h.Tickets.Quote)
	t.GET("/:ticket_id/invoices", h.Tickets.Invoices)
	t.POST("/:ticket_id/disburse", h.Tickets.Disburse)
	t.POST("/:ticket_id/renew", h.Tickets.Renew)
	t.POST("/:ticket_id/redeem", h.Tickets.Redeem)
	t.POST("/:ticket_id/forfeit", h.Tickets.Forfeit)
	t.POST("/:ticket_id/cancel", h.Tickets.Cancel)
	t.POST("/:ticket_id/lines/:line_id/auction", h.Tickets.Auction)

	rt := e.Group("/rate-tables", mw...)
	rt.POST("", h.RateTables.Create)
	rt.GET("", h.RateTables.List)
	rt.GET("/:code", h.RateTables.Get)
	rt.PUT("/:code", h.RateTables.Update)
	rt.GET("/:code/resolve", h.RateTables.Resolve)

	b := e.Group("/branches", mw...)
	b.POST("", h.Catalog.CreateBranch)
	b.GET("", h.Catalog.ListBranches)
	b.GET("/:id", h.Catalog.GetBranch)
	b.PUT("/:id", h.Catalog.UpdateBranch)

	cat := e.Group("/categories", mw...)
	cat.POST("", h.Catalog.CreateCategory)
	cat.GET("", h.Catalog.ListCategories)
	cat.PUT("/:id", h.Catalog.UpdateCategory)

	u := e.Group("/users", mw...)
	u.GET("/:user_id/branches", h.Catalog.UserBranches)
	u.PUT("/:user_id/branches", h.Catalog.AssignUserBranches)

	r := e.Group("/reports", mw...)
	r.GET("/loan-book", h.Reports.LoanBook)
	r.GET("/aging", h.Reports.Aging)
	r.GET("/collections", h.Reports.Collections)
	r.GET("/inventory", h.Reports.Inventory)
	r.GET("/kpis", h.Reports.KPIs)
	r.GET("/dashboard", h.Reports.Dashboard)
}
