package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"tempatku/internal/api"
	"tempatku/internal/config"
	"tempatku/internal/database"
	"tempatku/internal/domain"
	"tempatku/internal/events"
	"tempatku/internal/export"
	"tempatku/internal/google"
	"tempatku/internal/logging"
	"tempatku/internal/metrics"
	"tempatku/internal/notify"
	"tempatku/internal/repository"
	"tempatku/internal/service"
	"tempatku/internal/timesource"
	"tempatku/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func(c io.Closer) { _ = c.Close() })(closer)
	}

	if err := prepareDirectories(cfg, &logger); err != nil {
		return err
	}

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Error().Err(err).Msg("database init failed")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, cache := initCache(ctx, cfg, &logger)
	defer func() { _ = repository.Close(redisClient) }()

	resolver := timesource.NewResolver([]timesource.Provider{
		timesource.NewTimeAPIClient(cfg.TimeSources.TimeAPIURL),
		timesource.NewWorldTimeAPIClient(cfg.TimeSources.WorldTimeAPIURL),
	}, &logger)

	sheetsWorker := initSheetsWorker(ctx, cfg, db, redisClient, &logger)

	eventBus := events.NewEventBus()
	if err := initNotifier(cfg, db, eventBus, &logger); err != nil {
		return err
	}

	bookingService := service.NewBookingService(db, resolver, eventBus, syncWorkerOrNil(sheetsWorker), &logger)
	placeService := service.NewPlaceService(db, cache, eventBus, &logger)
	userService := service.NewUserService(db, &logger)
	exporter := export.NewExporter(db, cfg.Exports.Path, &logger)

	metrics.Register()
	if cfg.Monitoring.PrometheusEnabled {
		startMetricsServer(cfg.Monitoring.PrometheusPort, &logger)
	}

	if !cfg.API.Enabled {
		logger.Info().Msg("api disabled, nothing to serve")
		return nil
	}

	apiServer := api.NewHTTPServer(
		cfg.API, cfg.Booking,
		bookingService, placeService, userService,
		resolver, cache, exporter, &logger,
	)
	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error().Err(err).Msg("api server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api shutdown error")
	}

	logger.Info().Msg("shutdown complete")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, err
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config, logger *zerolog.Logger) error {
	if cfg == nil {
		return os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error().Err(err).Msg("cannot create database directory")
		return err
	}
	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("cannot create exports directory")
		return err
	}
	return nil
}

// initCache builds the place cache and rate limiter: redis primary with an
// in-memory fallback when redis is configured, memory only otherwise.
func initCache(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, repository.Cache) {
	ttl := time.Duration(cfg.Booking.PlaceCacheTTL) * time.Second
	fallback := repository.NewMemoryRepository(ttl)

	if cfg.Redis.Address == "" {
		return nil, fallback
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable")
	}

	primary := repository.NewRedisRepository(redisClient, ttl)
	return redisClient, repository.NewFailoverRepository(primary, fallback, logger)
}

func initSheetsWorker(ctx context.Context, cfg *config.Config, db *database.DB, redisClient *redis.Client, logger *zerolog.Logger) *worker.SheetsWorker {
	if cfg.Google.CredentialsFile == "" || cfg.Google.BookingSpreadSheetID == "" {
		logger.Info().Msg("google sheets sync disabled")
		return nil
	}

	sheetsSvc, err := google.NewSheetsService(ctx, cfg.Google.CredentialsFile, cfg.Google.BookingSpreadSheetID, cfg.Google.BookingSheetName)
	if err != nil {
		logger.Warn().Err(err).Msg("sheets service init failed, sync disabled")
		return nil
	}
	if err := sheetsSvc.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("sheets connection test failed, sync disabled")
		return nil
	}
	if err := sheetsSvc.WarmUpCache(ctx); err != nil {
		logger.Warn().Err(err).Msg("sheets cache warm-up failed")
	}

	sheetsWorker := worker.NewSheetsWorker(db, sheetsSvc, redisClient, worker.DefaultRetryPolicy(), logger)
	go sheetsWorker.Start(ctx)

	logger.Info().Msg("google sheets sync started")
	return sheetsWorker
}

// syncWorkerOrNil keeps a nil worker pointer from becoming a non-nil
// interface value inside the booking service.
func syncWorkerOrNil(w *worker.SheetsWorker) domain.SyncWorker {
	if w == nil {
		return nil
	}
	return w
}

func initNotifier(cfg *config.Config, db *database.DB, bus *events.EventBus, logger *zerolog.Logger) error {
	if cfg.Telegram.BotToken == "" {
		logger.Info().Msg("telegram notifications disabled")
		return nil
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("telegram bot init failed")
		return err
	}
	botAPI.Debug = cfg.Telegram.Debug

	notify.NewNotifier(botAPI, db, logger).Register(bus)
	logger.Info().Str("bot", botAPI.Self.UserName).Msg("telegram notifications enabled")
	return nil
}

func startMetricsServer(port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("metrics listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
}
