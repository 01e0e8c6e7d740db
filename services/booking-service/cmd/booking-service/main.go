package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/careloop/medbook/libs/config"
	"github.com/careloop/medbook/libs/db"
	"github.com/careloop/medbook/libs/httpx"
	"github.com/careloop/medbook/libs/kafkax"
	otelx "github.com/careloop/medbook/libs/otel"
	"github.com/careloop/medbook/libs/runtime"
	"github.com/careloop/medbook/services/booking-service/internal/calendar"
	"github.com/careloop/medbook/services/booking-service/internal/handlers"
	"github.com/careloop/medbook/services/booking-service/internal/notify"
	"github.com/careloop/medbook/services/booking-service/internal/outbox"
	"github.com/careloop/medbook/services/booking-service/internal/storage"
)

func buildCalendarGateway(ctx context.Context, logger *slog.Logger) calendar.Gateway {
	credsFile := config.String("GOOGLE_CREDENTIALS_FILE", "")
	if credsFile == "" {
		logger.Info("calendar integration disabled (no credentials configured)")
		return calendar.Disabled{}
	}
	gw, err := calendar.NewGoogleGateway(ctx, credsFile, config.String("GOOGLE_CALENDAR_ID", "primary"))
	if err != nil {
		// A broken calendar setup must not prevent startup.
		logger.Error("calendar gateway init failed; continuing without calendar", "err", err)
		return calendar.Disabled{}
	}
	logger.Info("google calendar gateway enabled")
	return gw
}

func main() {
	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8083")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL, int32(config.Int("DB_MAX_CONNS", 10)))
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	outboxRepo := outbox.NewRepository(pool)
	repo := storage.NewRepository(pool, outboxRepo)
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	cal := buildCalendarGateway(ctx, logger)
	reporter := notify.NewReporter(config.String("SLACK_WEBHOOK_URL", ""), logger)
	handler := handlers.New(repo, cal, reporter, logger)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("/api/v1/doctors", handler.Doctors)
	mux.HandleFunc("/api/v1/doctors/stats", handler.Stats)
	mux.HandleFunc("/api/v1/availability", handler.Availability)
	mux.HandleFunc("/api/v1/appointments/book", handler.Book)
	mux.HandleFunc("/api/v1/appointments/mine", handler.MyAppointments)
	mux.HandleFunc("/api/v1/reports/send", handler.SendReport)

	rateLimit := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	var limiter httpx.Middleware
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		limiter = httpx.NewRedisRateLimiter(rdb, rateLimit, time.Minute, service).Middleware(logger)
	} else {
		limiter = httpx.NewRateLimiter(rateLimit, time.Minute).Middleware()
	}

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(strings.Split(config.String("FRONTEND_ORIGINS", "*"), ",")),
		limiter,
		httpx.WithBodyLimit(1<<20),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
