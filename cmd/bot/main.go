package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fotobook/internal/booking"
	"fotobook/internal/bot"
	"fotobook/internal/cache"
	"fotobook/internal/catalog"
	"fotobook/internal/config"
	"fotobook/internal/db"
	"fotobook/internal/events"
	"fotobook/internal/export"
	"fotobook/internal/gallery"
	"fotobook/internal/metrics"
	"fotobook/internal/models"
	"fotobook/internal/notify"
	"fotobook/internal/remind"
	"fotobook/internal/reviews"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	// .env first so ${VAR} placeholders in the YAML config resolve.
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("FOTOBOOK_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if cfg.Telegram.BotToken == "" || cfg.Telegram.BotToken == "YOUR_BOT_TOKEN_HERE" {
		logger.Fatal().Msg("set telegram.bot_token in config")
	}

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	}
	ratings := cache.New(rdb, cfg.RatingTTL())

	photographers := make([]catalog.Photographer, 0, len(cfg.Photographers))
	for _, p := range cfg.Photographers {
		photographers = append(photographers, catalog.Photographer{
			ID: p.ID, Name: p.Name, Price: p.Price, Styles: p.Styles,
		})
	}
	cat := catalog.New(photographers)

	bus := events.NewBus()
	sessions := booking.NewSessionStore(cfg.SessionTimeout())
	machine := booking.NewMachine(sessions, database, cat, bus)
	reviewSvc := reviews.NewService(database, ratings, bus)
	portfolio := gallery.NewStore(cfg.Media.Dir)

	var sheets *export.SheetsExporter
	if cfg.Sheets.Enabled {
		sheets, err = export.NewSheetsExporter(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID)
		if err != nil {
			logger.Fatal().Err(err).Msg("sheets exporter error")
		}
	}

	b, err := bot.New(cfg.Telegram.BotToken, bot.Deps{
		Machine: machine,
		DB:      database,
		Catalog: cat,
		Admins:  cfg.Admins,
		Gallery: portfolio,
		Reviews: reviewSvc,
		Sheets:  sheets,
		Events:  bus,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("create bot error")
	}

	notifier := notify.New(b.Sender(), &logger)
	bus.Subscribe(events.BookingCreated, func(e events.Event) {
		if appt, ok := e.Payload.(*models.Appointment); ok {
			notifier.BookingCreated(ctx, cfg.Admins, appt)
		}
	})
	bus.Subscribe(events.BookingStatusChanged, func(e events.Event) {
		if appt, ok := e.Payload.(*models.Appointment); ok {
			notifier.StatusChanged(ctx, appt)
		}
	})

	if cfg.Reminders.Enabled {
		scheduler := remind.NewScheduler(database, b.Sender(), cfg.Reminders.Hour, &logger)
		go scheduler.Start(ctx)
	}

	if cfg.Backup.Enabled {
		backups := db.NewBackupService(cfg.Database.Path, cfg.Backup.Dir, cfg.BackupInterval(), cfg.Backup.Keep, &logger)
		go backups.Start(ctx)
	}

	go sessions.Sweep(ctx, cfg.SessionSweepInterval(), func(removed int) {
		metrics.AddSessionsExpired(removed)
		logger.Info().Int("removed", removed).Msg("expired sessions dropped")
	})

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8090
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, database, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	logger.Info().Msg("booking bot started")
	b.Start(ctx)
}

func startHealthServer(ctx context.Context, port int, database *db.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := database.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
