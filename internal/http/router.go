// README: HTTP router registration.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"codrive/internal/http/handlers"
	"codrive/internal/http/middleware"
	"codrive/internal/infra"
)

type RouterDeps struct {
	Rides    handlers.RideService
	Views    handlers.RideViewer
	Requests handlers.RequestService
	Points   handlers.PointsService
	Bonuses  handlers.BonusService
	Verifier infra.TokenVerifier
	Logger   *slog.Logger
	// Health reports readiness of backing stores; nil means always healthy.
	Health func(ctx context.Context) error
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(d.Logger), middleware.Metrics(), middleware.Logging(d.Logger))

	r.GET("/health", func(c *gin.Context) {
		if d.Health != nil {
			if err := d.Health(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", middleware.Auth(d.Verifier))

	rides := handlers.NewRideHandler(d.Rides, d.Views)
	api.POST("/rides", rides.Create)
	api.GET("/rides/:id", rides.Get)
	api.DELETE("/rides/:id", rides.Delete)
	api.POST("/rides/:id/complete", rides.Complete)
	api.GET("/me/rides", rides.ListMine)

	requests := handlers.NewRequestHandler(d.Requests)
	api.POST("/rides/:id/requests/preview", requests.Preview)
	api.POST("/rides/:id/requests", requests.Create)
	api.GET("/requests/:id", requests.Get)
	api.POST("/requests/:id/accept", requests.Accept())
	api.POST("/requests/:id/refuse", requests.Refuse())
	api.POST("/requests/:id/withdraw", requests.Withdraw())
	api.POST("/requests/:id/leave", requests.Leave())
	api.POST("/requests/:id/refresh", requests.Refresh())
	api.POST("/requests/:id/pay", requests.Pay)
	api.GET("/me/requests", requests.ListMine)

	accounts := handlers.NewAccountHandler(d.Points)
	api.GET("/me/points", accounts.Points)

	bonuses := handlers.NewBonusHandler(d.Bonuses)
	api.GET("/bonuses", bonuses.List)
	api.POST("/bonuses", bonuses.Create)
	api.DELETE("/bonuses/:id", bonuses.Delete)
	api.POST("/bonuses/:id/redeem", bonuses.Redeem)
	api.GET("/me/bonuses", bonuses.ListMine)

	return r
}
