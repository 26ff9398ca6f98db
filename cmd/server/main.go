package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/welldanyogia/estate-intake-backend/internal/api"
	"github.com/welldanyogia/estate-intake-backend/internal/api/handlers"
	"github.com/welldanyogia/estate-intake-backend/internal/config"
	"github.com/welldanyogia/estate-intake-backend/internal/form"
	"github.com/welldanyogia/estate-intake-backend/internal/listing"
	"github.com/welldanyogia/estate-intake-backend/internal/logger"
	"github.com/welldanyogia/estate-intake-backend/internal/notify"
	"github.com/welldanyogia/estate-intake-backend/internal/repository"
	"github.com/welldanyogia/estate-intake-backend/internal/services"
	"github.com/welldanyogia/estate-intake-backend/internal/sheets"
	"github.com/welldanyogia/estate-intake-backend/internal/storage"
)

// staleUploadAge is how old a leftover upload must be before the startup sweep removes it
const staleUploadAge = time.Hour

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.LoadWithValidation()
	if err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	slog.Info("Starting property intake server...")
	cfg.LogConfig(log)

	if err := run(cfg, log); err != nil {
		slog.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	// Spreadsheet client
	sheetsClient, err := sheets.NewFromCredentialsFile(ctx, cfg.CredentialsFile)
	if err != nil {
		return err
	}

	policy, err := listing.PolicyFromConfig(cfg.NaikenPolicy, cfg.NaikenMarker)
	if err != nil {
		return err
	}
	listings := listing.NewSheetListingStore(sheetsClient, cfg.ListingSpreadsheetID,
		listing.SaleLayout(cfg.SaleRange),
		listing.BrokerLayout(cfg.BrokerRange),
	)
	submissions := repository.NewSubmissionRepository(sheetsClient, cfg.FormSpreadsheetID, repository.LedgerRanges{
		Offer:   cfg.OfferRange,
		Viewing: cfg.ViewingRange,
		NDA:     cfg.NDARange,
	}, log)

	// Upload storage
	fileStorage, err := storage.NewLocalStorage(cfg.UploadDir, cfg.UploadMaxBytes)
	if err != nil {
		return err
	}
	removed, err := storage.RemoveStale(cfg.UploadDir, staleUploadAge, time.Now())
	if err != nil {
		log.Warn("failed to sweep upload directory", slog.Any("error", err))
	} else if removed > 0 {
		log.Info("removed stale uploads", slog.Int("count", removed))
	}

	// Mail
	var notifier notify.Notifier
	if cfg.MailEnabled() {
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			FromName: cfg.MailFromName,
			TLSMode:  cfg.SMTPTLS,
		}, log)
	} else {
		notifier = notify.NewNoopNotifier(log)
	}

	svc := services.NewIntakeService(services.IntakeConfig{
		Listings:    listings,
		Policy:      policy,
		Normalizer:  form.NewNormalizer(nil),
		Submissions: submissions,
		Notifier:    notifier,
		Composer:    notify.NewComposer(notify.Staff{To: cfg.NotifyTo, CC: cfg.NotifyCC}),
		Storage:     fileStorage,
		Logger:      log,
	})

	e := api.NewRouter(&api.RouterConfig{
		Service:        svc,
		Logger:         log,
		AllowedOrigins: cfg.Origins(),
		AppEnv:         cfg.AppEnv,
		RateLimit:      cfg.RateLimitRequests,
		RateBurst:      cfg.RateLimitBurst,
		UploadMaxBytes: cfg.UploadMaxBytes,
		HealthChecks: map[string]handlers.CheckFunc{
			"upload_storage": uploadDirCheck(cfg.UploadDir),
		},
	})

	// Start HTTP server
	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.APIPort)
		slog.Info("HTTP server listening", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errCh:
		return err
	}
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func uploadDirCheck(dir string) handlers.CheckFunc {
	return func(context.Context) error {
		info, err := os.Stat(dir)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
		return nil
	}
}
