package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/octobees/vendor-outreach/internal/auth"
	"github.com/octobees/vendor-outreach/internal/entity"
	"github.com/octobees/vendor-outreach/internal/handler"
	middlewarepkg "github.com/octobees/vendor-outreach/internal/middleware"
	"github.com/octobees/vendor-outreach/internal/ratelimit"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth     *handler.AuthHandler
	Users    *handler.UserAdminHandler
	Vendors  *handler.VendorsHandler
	Weddings *handler.WeddingsHandler
	Matches  *handler.MatchesHandler
	Outreach *handler.OutreachHandler
}

// Register wires all HTTP routes for the API. outreachLimit throttles draft generation and
// delivery per user; a nil store disables throttling.
func Register(e *echo.Echo, jwtManager *auth.JWTManager, handlers Handlers, outreachLimit ratelimit.Store, logger *zap.Logger) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/auth/register", handlers.Auth.Register)
	e.POST("/auth/login", handlers.Auth.Login)
	e.GET("/vendors", handlers.Vendors.List)
	e.GET("/vendors/:id", handlers.Vendors.Get)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	admin := secured.Group("/admin", middlewarepkg.RequireRole(entity.RoleAdmin))
	admin.POST("/vendors/import", handlers.Vendors.Import)
	admin.GET("/users", handlers.Users.List)
	admin.POST("/users", handlers.Users.Create)
	admin.PATCH("/users/:id", handlers.Users.Update)
	admin.DELETE("/users/:id", handlers.Users.Delete)

	secured.POST("/matches", handlers.Matches.Match)

	secured.POST("/weddings", handlers.Weddings.Create)
	secured.GET("/weddings", handlers.Weddings.List)
	secured.GET("/weddings/:id", handlers.Weddings.Get)
	secured.PATCH("/weddings/:id", handlers.Weddings.Update)
	secured.DELETE("/weddings/:id", handlers.Weddings.Delete)
	secured.GET("/weddings/:id/matches", handlers.Matches.MatchWedding)

	limited := middlewarepkg.RateLimit(outreachLimit, "outreach", logger)
	secured.POST("/weddings/:id/outreach", handlers.Outreach.Generate, limited)
	secured.POST("/weddings/:id/outreach/send", handlers.Outreach.Send, limited)
	secured.GET("/weddings/:id/outreach", handlers.Outreach.List)
	secured.GET("/weddings/:id/dashboard", handlers.Outreach.Dashboard)
	secured.PATCH("/outreach/:id", handlers.Outreach.Update)
}
