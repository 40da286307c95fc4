// Command api runs the eventhub HTTP server.
//
// @title Eventhub API
// @version 1.0
// @description Event publication and participation requests.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventhub/config"
	_ "eventhub/docs"
	"eventhub/internal/adapters/auth"
	"eventhub/internal/adapters/email"
	"eventhub/internal/adapters/stats"
	"eventhub/internal/adapters/viewcache"
	delivery "eventhub/internal/delivery/http"
	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/repository/postgres"
	"eventhub/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := config.NewLogger()
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DBUrl, postgres.DefaultConnectOptions, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	logger.Info("connected to postgres")

	eventRepo := postgres.NewEventRepository(db)
	requestRepo := postgres.NewParticipationRequestRepository(db)
	userRepo := postgres.NewUserRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	txRunner := postgres.NewEventTxRunner(db)

	statsClient := stats.NewHTTPClient(cfg.StatsURL, &http.Client{Timeout: cfg.StatsTimeout})
	views := services.NewViewsAggregator(statsClient, viewcache.New(), cfg.AppName, cfg.StatsTimeout, logger)
	defer views.Close()

	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.AWSRegion,
			AccessKeyID:     cfg.Email.AWSAccessKeyID,
			SecretAccessKey: cfg.Email.AWSSecretAccessKey,
		},
	}, logger)
	notifier := services.NewModerationNotifier(userRepo, email.NewTemplateRenderer(), mailer, logger, cfg.ContextTimeout)
	defer notifier.Close()

	eventSvc := services.NewEventService(eventRepo, txRunner, userRepo, categoryRepo, views, logger, cfg.ContextTimeout)
	participationSvc := services.NewParticipationService(txRunner, requestRepo, eventRepo, userRepo, notifier, logger, cfg.ContextTimeout)

	router := delivery.NewRouter(delivery.RouterDeps{
		Logger:         logger,
		Verifier:       auth.NewJWTVerifier(cfg.JWTSecret),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Organizer:      controllers.NewOrganizerEventController(logger, eventSvc, participationSvc),
		Admin:          controllers.NewAdminEventController(logger, eventSvc),
		Public:         controllers.NewPublicEventController(logger, eventSvc),
		Requests:       controllers.NewRequestController(logger, participationSvc),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
