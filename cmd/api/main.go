package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/medvoice-ai/hospital-scheduler/cmd/mainconfig"
	"github.com/medvoice-ai/hospital-scheduler/internal/api/router"
	"github.com/medvoice-ai/hospital-scheduler/internal/availability"
	"github.com/medvoice-ai/hospital-scheduler/internal/booking"
	"github.com/medvoice-ai/hospital-scheduler/internal/calls"
	appconfig "github.com/medvoice-ai/hospital-scheduler/internal/config"
	"github.com/medvoice-ai/hospital-scheduler/internal/export"
	"github.com/medvoice-ai/hospital-scheduler/internal/http/handlers"
	"github.com/medvoice-ai/hospital-scheduler/internal/ledger"
	"github.com/medvoice-ai/hospital-scheduler/internal/notify"
	"github.com/medvoice-ai/hospital-scheduler/internal/observability/metrics"
	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting hospital scheduler API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)

	dynamoClient := dynamodb.NewFromConfig(awsCfg)
	store := availability.NewStore(dynamoClient, cfg.SpecialtiesTable, logger)
	appointments := ledger.New(dynamoClient, cfg.AppointmentsTable, logger)

	var sink export.Sink = export.Discard{}
	if s3Sink := export.NewS3Sink(export.S3SinkConfig{
		S3:     s3.NewFromConfig(awsCfg),
		Bucket: cfg.ExportBucket,
		Key:    cfg.ExportKey,
		Logger: logger,
	}); s3Sink != nil {
		sink = s3Sink
	}

	notifier := buildNotifier(awsCfg, cfg, logger)

	engineOpts := []booking.Option{booking.WithMetrics(bookingMetrics)}
	if notifier != nil {
		engineOpts = append(engineOpts, booking.WithNotifier(notifier))
	}
	engine := booking.NewEngine(store, appointments, sink, logger, engineOpts...)

	routerCfg := &router.Config{
		Logger:              logger,
		BookingHandler:      handlers.NewBookingHandler(engine, logger),
		SpecialtiesHandler:  handlers.NewSpecialtiesHandler(store, logger),
		AppointmentsHandler: handlers.NewAppointmentsHandler(appointments, logger),
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminAuthSecret:     cfg.AdminJWTSecret,
	}

	if cfg.VoiceAPIToken != "" {
		voice, err := calls.NewVoiceClient(calls.VoiceClientConfig{
			AuthToken:     cfg.VoiceAPIToken,
			PhoneNumberID: cfg.VoicePhoneNumber,
			BaseURL:       cfg.VoiceAPIBaseURL,
			Timeout:       cfg.VoiceCallTimeout,
			Logger:        logger,
		})
		if err != nil {
			logger.Error("failed to build voice client", "error", err)
			os.Exit(1)
		}

		var publisher *calls.Publisher
		if cfg.UseMemoryQueue {
			publisher = calls.NewPublisher(calls.NewMemoryQueue(128), logger)
		} else {
			publisher = calls.NewPublisher(calls.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.CallQueueURL), logger)
		}

		sessions := calls.NewSessionStore(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}))

		routerCfg.CallsHandler = handlers.NewCallsHandler(handlers.CallsHandlerConfig{
			Voice:        voice,
			Sessions:     sessions,
			Publisher:    publisher,
			Specialties:  store,
			Metrics:      bookingMetrics,
			Logger:       logger,
			HospitalName: cfg.HospitalName,
			OpenHour:     cfg.ReceptionHoursMin,
			CloseHour:    cfg.ReceptionHoursMax,
		})
	} else {
		logger.Warn("voice API token not set, call endpoints disabled")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func buildNotifier(awsCfg aws.Config, cfg *appconfig.Config, logger *logging.Logger) *notify.ConfirmationNotifier {
	var sender notify.EmailSender
	switch cfg.EmailProvider {
	case "sendgrid":
		if sg := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.NotifyFromEmail,
			FromName:  cfg.NotifyFromName,
		}, logger); sg != nil {
			sender = sg
		}
	default:
		if ses := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.NotifyFromEmail,
			FromName:  cfg.NotifyFromName,
		}, logger); ses != nil {
			sender = ses
		}
	}
	return notify.NewConfirmationNotifier(sender, cfg.FrontDeskEmail, cfg.HospitalName, logger)
}
