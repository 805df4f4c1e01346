package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/avassel/stagebook/internal/config"
	"github.com/avassel/stagebook/internal/handler"
	"github.com/avassel/stagebook/internal/middleware"
)

// Handlers groups everything the route table needs.  Keeping it in one
// struct lets main wire dependencies once and keeps Register's
// signature stable as endpoints are added.
type Handlers struct {
	Sessions  *handler.SessionHandler
	Bookings  *handler.BookingHandler
	Invoices  *handler.InvoiceHandler
	Documents *handler.DocumentHandler
	Mail      *handler.MailHandler
}

// Register maps every route onto the Echo instance.  The session
// listing sits behind the response cache; booking and payment
// endpoints sit behind the token bucket so a misbehaving client
// cannot burn through seats.
func Register(e *echo.Echo, h Handlers, rdb *redis.Client, cacheCfg config.CacheConfig, rlCfg config.RateLimitConfig) {
	e.GET("/healthz", handler.Health)

	cache := middleware.NewRedisCache(cacheCfg, rdb)
	limit := middleware.NewTokenBucket(rlCfg, rdb)

	v1 := e.Group("/v1")

	// Session administration.  Create is an operator action; List is
	// the public catalogue and the hottest read path, hence the cache.
	v1.POST("/sessions", h.Sessions.Create)
	v1.GET("/sessions", h.Sessions.List, cache)

	// Booking lifecycle.
	v1.POST("/bookings", h.Bookings.CreateBooking, limit)
	v1.POST("/payments/callback", h.Bookings.PaymentCallback, limit)

	res := v1.Group("/reservations/:id")
	res.POST("/cancel", h.Bookings.Cancel)
	res.POST("/transfer", h.Bookings.Transfer)
	res.POST("/invoice", h.Invoices.Issue)
	res.POST("/invoice/void", h.Invoices.Void)
	res.POST("/email", h.Mail.Send)
	res.GET("/documents/:kind", h.Documents.Download)
}
