package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/careloop/medbook/libs/config"
	"github.com/careloop/medbook/libs/db"
	"github.com/careloop/medbook/libs/httpx"
	"github.com/careloop/medbook/libs/kafkax"
	otelx "github.com/careloop/medbook/libs/otel"
	"github.com/careloop/medbook/libs/runtime"
	"github.com/careloop/medbook/services/notification-service/internal/consumer"
	"github.com/careloop/medbook/services/notification-service/internal/email"
	"github.com/careloop/medbook/services/notification-service/internal/inbox"
	"github.com/careloop/medbook/services/notification-service/internal/storage"
)

type bookedPayload struct {
	BookingID    string `json:"booking_id"`
	DoctorName   string `json:"doctor_name"`
	DoctorEmail  string `json:"doctor_email"`
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
	ScheduledAt  string `json:"scheduled_at"`
	Notes        string `json:"notes"`
	Condition    string `json:"condition"`
}

func main() {
	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "8085")
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

	pool, err := db.Open(ctx, dbURL, int32(config.Int("DB_MAX_CONNS", 5)))
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	inboxRepo := inbox.NewRepository(pool)
	notificationsRepo := storage.NewRepository(pool)

	smtpHost := config.String("SMTP_HOST", "mailpit")
	smtpPort := config.String("SMTP_PORT", "1025")
	smtpFrom := config.String("SMTP_FROM", "no-reply@medbook.local")
	emailSender := email.NewSMTPSender(smtpHost, smtpPort, smtpFrom)

	consumerCfg := consumer.Config{
		Brokers: config.String("KAFKA_BROKERS", ""),
		GroupID: config.String("KAFKA_GROUP_ID", "notification-service"),
		Topic:   config.String("KAFKA_CONSUME_TOPIC", "booking.appointment.booked.v1"),
	}
	eventConsumer := consumer.New(logger, inboxRepo, consumerCfg, func(ctx context.Context, msg kafka.Message) error {
		var payload bookedPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid booking payload", "err", err)
			return nil
		}
		if payload.BookingID == "" || payload.DoctorName == "" || payload.PatientEmail == "" || payload.ScheduledAt == "" {
			logger.Error("missing booking fields", "booking_id", payload.BookingID)
			return nil
		}
		if _, err := time.Parse(time.RFC3339, payload.ScheduledAt); err != nil {
			logger.Error("invalid scheduled_at", "err", err, "booking_id", payload.BookingID)
			return nil
		}

		subject := fmt.Sprintf("Appointment confirmed with %s", payload.DoctorName)
		body := fmt.Sprintf("Your appointment with %s is confirmed for %s.", payload.DoctorName, payload.ScheduledAt)
		if payload.Notes != "" {
			body += "\n\nNotes: " + payload.Notes
		}

		status := "sent"
		if err := emailSender.Send(payload.PatientEmail, subject, body); err != nil {
			status = "failed"
			logger.Error("confirmation email failed", "err", err, "recipient", payload.PatientEmail)
		}

		if err := notificationsRepo.Insert(ctx, storage.Notification{
			BookingID: payload.BookingID,
			Channel:   "email",
			Recipient: payload.PatientEmail,
			Subject:   subject,
			Status:    status,
		}); err != nil {
			logger.Error("failed to persist notification", "err", err)
			return err
		}

		logger.Info("booking confirmation processed", "booking_id", payload.BookingID, "status", status)
		return nil
	})
	go eventConsumer.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "notification")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
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
