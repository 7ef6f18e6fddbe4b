package main

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"boothsale/config"
	authadapter "boothsale/internal/adapters/auth"
	emailadapter "boothsale/internal/adapters/email"
	httpdelivery "boothsale/internal/delivery/http"
	"boothsale/internal/delivery/http/controllers"
	"boothsale/internal/delivery/http/middleware"
	"boothsale/internal/repository/postgres"
	"boothsale/internal/services"
)

const serviceTimeout = 10 * time.Second

// @title Booth Sale API
// @version 1.0
// @description Pop-up sales backend: events, per-event product stock, and concurrent-safe ordering.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}
	if err := postgres.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	eventRepo := postgres.NewEventRepository(db)
	productRepo := postgres.NewMasterProductRepository(db)
	eventProductRepo := postgres.NewEventProductRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	statsRepo := postgres.NewStatsRepository(db)

	hasher := authadapter.NewBcryptComparer(0)
	issuer := authadapter.NewJWTIssuer(cfg.JWTSecret)
	verifier := authadapter.NewJWTVerifier(cfg.JWTSecret)

	mailer, err := emailadapter.NewMailer(emailadapter.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFrom,
		FromName:    cfg.EmailFromName,
		SES: emailadapter.SESConfig{
			Region:             cfg.SES.Region,
			AccessKeyID:        cfg.SES.AccessKeyID,
			SecretAccessKey:    cfg.SES.SecretAccessKey,
			InsecureSkipVerify: cfg.SES.InsecureSkipVerify,
		},
	})
	if err != nil {
		log.Fatalf("mailer: %v", err)
	}
	emailService := services.NewEmailService(mailer, emailadapter.NewTemplateRenderer())

	eventService := services.NewEventService(eventRepo, statsRepo, emailService, hasher, cfg.OrganizerEmail, logger, serviceTimeout)
	catalogService := services.NewCatalogService(productRepo, serviceTimeout)
	bindingService := services.NewBindingService(eventProductRepo, productRepo, eventRepo, serviceTimeout)
	orderService := services.NewOrderService(orderRepo, eventRepo, logger, serviceTimeout)
	statsService := services.NewStatsService(statsRepo, eventRepo, serviceTimeout)
	authService := services.NewAuthService(eventRepo, issuer, hasher, cfg.AdminPasswordHash, cfg.VendorPasswordHash, serviceTimeout)

	mux := httpdelivery.NewRouter(
		verifier,
		controllers.NewAuthController(logger, authService),
		controllers.NewEventController(logger, eventService),
		controllers.NewCatalogController(logger, catalogService),
		controllers.NewBindingController(logger, bindingService),
		controllers.NewOrderController(logger, orderService),
		controllers.NewStatsController(logger, statsService),
	)

	handler := middleware.LoggingMiddleware(logger,
		middleware.CORS(cfg.CORSAllowedOrigins, mux))

	addr := ":" + cfg.Port
	logger.Info("server starting", "addr", addr, "env", cfg.Environment)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
