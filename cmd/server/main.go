package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/avassel/stagebook/internal/config"
	"github.com/avassel/stagebook/internal/database"
	"github.com/avassel/stagebook/internal/document"
	"github.com/avassel/stagebook/internal/handler"
	"github.com/avassel/stagebook/internal/queue"
	"github.com/avassel/stagebook/internal/repository"
	"github.com/avassel/stagebook/internal/router"
	"github.com/avassel/stagebook/internal/service"
	"github.com/avassel/stagebook/internal/service/ports"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly

	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := database.Open(database.Params{
		User: cfg.DBUser,
		Pass: cfg.DBPass,
		Host: cfg.DBHost,
		Port: cfg.DBPort,
		Name: cfg.DBName,
	})
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	store := repository.NewStore(db)

	// Assign the publisher only when configured: a typed nil inside the
	// interface would slip past the workflow's nil check.
	var notifier ports.Notifier
	if cfg.AMQPURL != "" {
		notifier = queue.NewPublisher(cfg.AMQPURL, logger)
	} else {
		logger.Warn("AMQP_URL not set, mail events will not be published")
	}

	workflow := service.NewReservationWorkflow(store, notifier, logger)
	issuer := service.NewInvoiceIssuer(store, cfg.InvoicePrefix, cfg.VATRatePermille, logger)
	composer := document.NewComposer(logger)
	company := document.CompanyInfo{
		Name:  cfg.CompanyName,
		SIRET: cfg.CompanySIRET,
		APE:   cfg.CompanyAPE,
	}

	h := router.Handlers{
		Sessions:  handler.NewSessionHandler(store.Sessions()),
		Bookings:  handler.NewBookingHandler(workflow),
		Invoices:  handler.NewInvoiceHandler(issuer),
		Documents: handler.NewDocumentHandler(store, composer, company, cfg.AssetBaseURL, cfg.VATRatePermille, logger),
		Mail:      handler.NewMailHandler(workflow),
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, response cache and rate limiting disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	router.Register(e, h, rdb, config.LoadCacheConfig(), config.LoadRateLimitConfig())

	// The consumer only logs deliveries here; an SMTP relay hangs off
	// this hook in deployments that send real mail.
	if cfg.AMQPURL != "" {
		go queue.StartMailConsumer(cfg.AMQPURL, logger, func(ev queue.MailEvent) error {
			logger.Info("mail event received",
				zap.String("kind", string(ev.Kind)),
				zap.Uint64("reservation_id", ev.ReservationID),
				zap.String("recipient", ev.CustomerEmail))
			return nil
		})
	}

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// newLogger picks the zap preset for the environment: structured JSON
// in prod, human-readable console output everywhere else.
func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
