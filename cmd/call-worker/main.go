package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/medvoice-ai/hospital-scheduler/cmd/mainconfig"
	"github.com/medvoice-ai/hospital-scheduler/internal/availability"
	"github.com/medvoice-ai/hospital-scheduler/internal/booking"
	"github.com/medvoice-ai/hospital-scheduler/internal/calls"
	appconfig "github.com/medvoice-ai/hospital-scheduler/internal/config"
	"github.com/medvoice-ai/hospital-scheduler/internal/export"
	"github.com/medvoice-ai/hospital-scheduler/internal/extract"
	"github.com/medvoice-ai/hospital-scheduler/internal/ledger"
	"github.com/medvoice-ai/hospital-scheduler/internal/llm"
	"github.com/medvoice-ai/hospital-scheduler/internal/observability/metrics"
	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting hospital scheduler call worker", "env", cfg.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
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

	engine := booking.NewEngine(store, appointments, sink, logger,
		booking.WithMetrics(bookingMetrics))

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

	llmClient, closeLLM, err := buildLLMClient(ctx, awsCfg, cfg, logger)
	if err != nil {
		logger.Error("failed to build LLM client", "error", err)
		os.Exit(1)
	}
	defer closeLLM()

	extractor := extract.New(llmClient, cfg.BedrockModelID, int32(cfg.ExtractMaxToken), logger)

	if cfg.CallQueueURL == "" {
		logger.Error("CALL_QUEUE_URL is required for the call worker")
		os.Exit(1)
	}
	queue := calls.NewSQSQueue(sqs.NewFromConfig(awsCfg), cfg.CallQueueURL)

	sessions := calls.NewSessionStore(redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}))

	worker := calls.NewWorker(queue, voice, extractor, engine, sessions, logger,
		calls.WithWorkerCount(cfg.WorkerCount),
		calls.WithWorkerMetrics(bookingMetrics),
	)
	worker.Start(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down call worker...")
	cancel()

	doneCtx, doneCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer doneCancel()

	waitCh := make(chan struct{})
	go func() {
		worker.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		logger.Info("call worker stopped")
	case <-doneCtx.Done():
		logger.Error("call worker shutdown timed out", "error", doneCtx.Err())
	}
}

// buildLLMClient picks the extraction model per LLM_PROVIDER, falling back
// from Bedrock to Gemini when both are configured.
func buildLLMClient(ctx context.Context, awsCfg aws.Config, cfg *appconfig.Config, logger *logging.Logger) (llm.Client, func(), error) {
	noop := func() {}

	var bedrock llm.Client
	if cfg.LLMProvider == "bedrock" || cfg.LLMProvider == "" {
		if cfg.BedrockModelID != "" {
			bedrock = llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg))
		} else {
			logger.Warn("BEDROCK_MODEL_ID not set, bedrock extraction disabled")
		}
	}

	var gemini *llm.GeminiClient
	if cfg.GeminiAPIKey != "" {
		var err error
		gemini, err = llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			if bedrock == nil {
				return nil, noop, err
			}
			logger.Warn("gemini client unavailable, using bedrock only", "error", err)
			gemini = nil
		}
	}

	switch {
	case bedrock != nil && gemini != nil:
		return llm.NewFallbackClient(bedrock, gemini, logger), func() { _ = gemini.Close() }, nil
	case bedrock != nil:
		return bedrock, noop, nil
	case gemini != nil:
		return gemini, func() { _ = gemini.Close() }, nil
	default:
		return nil, noop, errNoLLM
	}
}

var errNoLLM = errors.New("no LLM provider configured: set BEDROCK_MODEL_ID or GEMINI_API_KEY")
