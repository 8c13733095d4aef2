package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/marketbridge/marketbridge/internal/commercetools"
	"github.com/marketbridge/marketbridge/internal/currency"
	"github.com/marketbridge/marketbridge/internal/dlq"
	"github.com/marketbridge/marketbridge/internal/eventsync"
	"github.com/marketbridge/marketbridge/internal/handlers"
	"github.com/marketbridge/marketbridge/internal/klaviyo"
	"github.com/marketbridge/marketbridge/internal/logging"
	"github.com/marketbridge/marketbridge/internal/mapper"
	"github.com/marketbridge/marketbridge/internal/processor"
	"github.com/marketbridge/marketbridge/internal/ratelimit"
	"github.com/marketbridge/marketbridge/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the push subscription endpoint",
	Long:  `Starts the HTTP server that receives change notifications and forwards them to the marketing platform.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("marketbridge"))
	logging.SetDefault(logger)

	slog.Info("Starting marketbridge",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("log_format", cfg.Logging.Format),
	)

	// Rate limiter
	var limiter ratelimit.RateLimiter
	if cfg.Redis.Enabled && cfg.Ingestion.RateLimitEnabled {
		redisLimiter, err := ratelimit.NewRedisRateLimiter(
			cfg.Redis.URL,
			cfg.Ingestion.RateLimitRequests,
			cfg.Ingestion.RateLimitWindow,
		)
		if err != nil {
			slog.Warn("Rate limiter unavailable, continuing without", logging.Error(err))
			limiter = &ratelimit.NoOpRateLimiter{}
		} else {
			limiter = redisLimiter
			slog.Info("Rate limiting enabled",
				slog.Int("requests", cfg.Ingestion.RateLimitRequests),
				slog.String("window", cfg.Ingestion.RateLimitWindow.String()),
			)
		}
	} else {
		limiter = &ratelimit.NoOpRateLimiter{}
	}
	defer limiter.Close()

	// Dead letter queue
	var dlqWriter eventsync.DeadLetterer
	if cfg.DLQ.Enabled {
		nc, err := nats.Connect(cfg.DLQ.NatsURL)
		if err != nil {
			return fmt.Errorf("connect to nats for dlq: %w", err)
		}
		defer nc.Close()

		queue, err := dlq.NewJetStreamQueue(cmd.Context(), nc, logger)
		if err != nil {
			return fmt.Errorf("initialize dlq: %w", err)
		}
		dlqWriter = queue
		slog.Info("Dead letter queue enabled", slog.String("nats_url", cfg.DLQ.NatsURL))
	}

	commerce := commercetools.New(commercetools.Config{
		APIURL:       cfg.Commercetools.APIURL,
		AuthURL:      cfg.Commercetools.AuthURL,
		ProjectKey:   cfg.Commercetools.ProjectKey,
		ClientID:     cfg.Commercetools.ClientID,
		ClientSecret: cfg.Commercetools.ClientSecret,
		Scopes:       cfg.Commercetools.Scopes,
		Timeout:      cfg.Commercetools.Timeout,
	})

	delivery := klaviyo.New(klaviyo.Config{
		BaseURL:  cfg.Klaviyo.APIURL,
		APIKey:   cfg.Klaviyo.APIKey,
		Revision: cfg.Klaviyo.Revision,
		Timeout:  cfg.Klaviyo.Timeout,
	})

	deps := processor.Deps{
		Commerce:  commerce,
		Orders:    mapper.NewOrderMapper(currency.Identity{}, cfg.Events.AllowedProperties()),
		Customers: mapper.NewCustomerMapper(),
		Events:    cfg.Events,
		Log:       logger,
	}

	dispatcher := eventsync.New(processor.Default(), delivery, deps, dlqWriter, logger)
	handler := handlers.NewPushHandler(dispatcher, limiter, logger)
	router := server.NewRouter(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", logging.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("Server stopped")
	return nil
}
