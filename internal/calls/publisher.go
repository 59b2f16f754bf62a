package calls

import (
	"context"
	"fmt"

	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

// Publisher enqueues call processing jobs for asynchronous handling.
type Publisher struct {
	queue  queueClient
	logger *logging.Logger
}

// NewPublisher creates a queue-backed publisher.
func NewPublisher(queue queueClient, logger *logging.Logger) *Publisher {
	if queue == nil {
		panic("calls: queue cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Publisher{
		queue:  queue,
		logger: logger,
	}
}

// EnqueueProcessCall publishes a job to process a finished call's transcript.
func (p *Publisher) EnqueueProcessCall(ctx context.Context, job ProcessCallJob) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if job.CallID == "" {
		return fmt.Errorf("calls: job call_id required")
	}

	payload, body, err := encodePayload(job)
	if err != nil {
		return err
	}

	if err := p.queue.Send(ctx, body); err != nil {
		return fmt.Errorf("calls: enqueue job: %w", err)
	}

	p.logger.Debug("call job enqueued", "job_id", payload.ID, "call_id", job.CallID)
	return nil
}
