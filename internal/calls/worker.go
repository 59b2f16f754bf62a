package calls

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/medvoice-ai/hospital-scheduler/internal/booking"
	"github.com/medvoice-ai/hospital-scheduler/internal/extract"
	"github.com/medvoice-ai/hospital-scheduler/internal/ledger"
	"github.com/medvoice-ai/hospital-scheduler/internal/observability/metrics"
	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

const (
	defaultWorkerCount   = 2
	defaultWaitSeconds   = 2
	defaultBatchSize     = 5
	maxWaitSeconds       = 20
	maxReceiveBatchSize  = 10
	deleteTimeoutSeconds = 5
)

// TranscriptFetcher is the subset of VoiceClient the worker needs.
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, callID string) (string, error)
}

// DetailExtractor turns a transcript into structured booking fields.
type DetailExtractor interface {
	Extract(ctx context.Context, transcript string) (extract.Details, error)
}

// Booker commits an appointment from extracted details. All bookings go
// through the same engine, transcript-sourced ones included.
type Booker interface {
	Book(ctx context.Context, req booking.Request) (*booking.Result, error)
}

// SessionUpdater records the processing outcome on the call session.
type SessionUpdater interface {
	MarkProcessing(ctx context.Context, callID string) error
	MarkProcessed(ctx context.Context, callID, outcome, appointmentID string) error
	MarkFailed(ctx context.Context, callID, outcome, reason string) error
}

// Worker consumes call processing jobs from the queue: it fetches the
// finished call's transcript, extracts the booking details, and books the
// appointment.
type Worker struct {
	queue      queueClient
	transcript TranscriptFetcher
	extractor  DetailExtractor
	booker     Booker
	sessions   SessionUpdater
	metrics    *metrics.BookingMetrics
	logger     *logging.Logger

	cfg workerConfig
	wg  sync.WaitGroup
}

type workerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
	metrics          *metrics.BookingMetrics
}

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

// WithWorkerCount sets the number of concurrent consumer goroutines.
func WithWorkerCount(count int) WorkerOption {
	return func(cfg *workerConfig) {
		if count > 0 {
			cfg.workers = count
		}
	}
}

// WithReceiveWaitSeconds sets the SQS long-poll wait duration.
func WithReceiveWaitSeconds(seconds int) WorkerOption {
	return func(cfg *workerConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxWaitSeconds {
			seconds = maxWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize sets how many jobs each receive fetches.
func WithReceiveBatchSize(size int) WorkerOption {
	return func(cfg *workerConfig) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchSize {
			size = maxReceiveBatchSize
		}
		cfg.receiveBatchSize = size
	}
}

// WithWorkerMetrics attaches booking metrics to the worker.
func WithWorkerMetrics(m *metrics.BookingMetrics) WorkerOption {
	return func(cfg *workerConfig) {
		cfg.metrics = m
	}
}

// NewWorker constructs a call processing worker.
func NewWorker(queue queueClient, transcript TranscriptFetcher, extractor DetailExtractor, booker Booker, sessions SessionUpdater, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if queue == nil {
		panic("calls: queue cannot be nil")
	}
	if transcript == nil {
		panic("calls: transcript fetcher cannot be nil")
	}
	if extractor == nil {
		panic("calls: extractor cannot be nil")
	}
	if booker == nil {
		panic("calls: booker cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := workerConfig{
		workers:          defaultWorkerCount,
		receiveWaitSecs:  defaultWaitSeconds,
		receiveBatchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Worker{
		queue:      queue,
		transcript: transcript,
		extractor:  extractor,
		booker:     booker,
		sessions:   sessions,
		metrics:    cfg.metrics,
		logger:     logger,
		cfg:        cfg,
	}
}

// Start launches the consumer goroutines. They stop when ctx is done.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}
}

// Wait blocks until all consumer goroutines have exited.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()
	w.logger.Debug("call worker started", "worker_id", workerID)

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("call worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Error("failed to receive call jobs", "error", err, "worker_id", workerID)
			time.Sleep(backoff)
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg queueMessage) {
	var payload queuePayload
	if err := json.Unmarshal([]byte(msg.Body), &payload); err != nil {
		w.logger.Error("discarding malformed call job", "error", err, "message_id", msg.ID)
		w.deleteMessage(ctx, msg.ReceiptHandle)
		return
	}
	if payload.Call.CallID == "" {
		w.logger.Error("discarding call job without call_id", "job_id", payload.ID)
		w.deleteMessage(ctx, msg.ReceiptHandle)
		return
	}

	// Transient failures leave the message in the queue for redelivery.
	if retryable := w.ProcessCall(ctx, payload.Call); retryable {
		return
	}
	w.deleteMessage(ctx, msg.ReceiptHandle)
}

// ProcessCall runs the transcript-to-appointment pipeline for one call. It
// reports whether the failure is worth redelivering the job for.
func (w *Worker) ProcessCall(ctx context.Context, job ProcessCallJob) (retryable bool) {
	logger := w.logger.With("call_id", job.CallID)

	w.markProcessing(ctx, job.CallID)

	transcript, err := w.transcript.FetchTranscript(ctx, job.CallID)
	if err != nil {
		logger.Error("transcript fetch failed", "error", err)
		return true
	}
	if strings.TrimSpace(transcript) == "" {
		logger.Warn("call has no transcript, skipping")
		w.markFailed(ctx, job.CallID, OutcomeNoTranscript, "no transcript available")
		return false
	}

	details, err := w.extractor.Extract(ctx, transcript)
	if err != nil {
		w.metrics.ObserveExtractionFailure()
		if errors.Is(err, extract.ErrMissingFields) {
			logger.Warn("transcript missing booking details", "error", err)
			w.markFailed(ctx, job.CallID, OutcomeExtractionFailed, err.Error())
			return false
		}
		logger.Error("transcript extraction failed", "error", err)
		return true
	}

	mobile := details.MobileNumber
	if mobile == "" {
		mobile = job.PhoneNumber
	}
	appointmentType := details.AppointmentType
	if appointmentType == "" {
		appointmentType = ledger.TypeInPerson
	}

	res, err := w.booker.Book(ctx, booking.Request{
		Specialty:       details.Specialty,
		DoctorName:      details.DoctorName,
		AppointmentType: appointmentType,
		TimeSlotInput:   details.AppointmentDate,
		PatientName:     details.PatientName,
		MobileNumber:    mobile,
	})
	if err != nil {
		logger.Warn("booking from transcript failed", "error", err,
			"specialty", details.Specialty, "doctor", details.DoctorName)
		w.markFailed(ctx, job.CallID, OutcomeBookingFailed, booking.UserFacingError(err))
		return false
	}

	logger.Info("appointment booked from transcript",
		"appointment_id", res.Appointment.ID,
		"doctor", res.Appointment.DoctorName,
		"slot", res.Appointment.AppointmentDate)
	w.markProcessed(ctx, job.CallID, OutcomeBooked, res.Appointment.ID)
	return false
}

func (w *Worker) markProcessing(ctx context.Context, callID string) {
	if w.sessions == nil {
		return
	}
	if err := w.sessions.MarkProcessing(ctx, callID); err != nil {
		w.logger.Warn("failed to mark call processing", "error", err, "call_id", callID)
	}
}

func (w *Worker) markProcessed(ctx context.Context, callID, outcome, appointmentID string) {
	if w.sessions == nil {
		return
	}
	if err := w.sessions.MarkProcessed(ctx, callID, outcome, appointmentID); err != nil {
		w.logger.Warn("failed to mark call processed", "error", err, "call_id", callID)
	}
}

func (w *Worker) markFailed(ctx context.Context, callID, outcome, reason string) {
	if w.sessions == nil {
		return
	}
	if err := w.sessions.MarkFailed(ctx, callID, outcome, reason); err != nil {
		w.logger.Warn("failed to mark call failed", "error", err, "call_id", callID)
	}
}

func (w *Worker) deleteMessage(ctx context.Context, receiptHandle string) {
	if receiptHandle == "" {
		return
	}

	deleteCtx, cancel := context.WithTimeout(ctx, deleteTimeoutSeconds*time.Second)
	defer cancel()

	if err := w.queue.Delete(deleteCtx, receiptHandle); err != nil {
		w.logger.Error("failed to delete call job", "error", err)
	}
}
