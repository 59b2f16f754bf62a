package calls

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type queueClient interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// ProcessCallJob asks the worker to fetch and process a finished call's
// transcript.
type ProcessCallJob struct {
	CallID      string `json:"call_id"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

type queuePayload struct {
	ID   string         `json:"id"`
	Call ProcessCallJob `json:"call"`
}

func encodePayload(job ProcessCallJob) (queuePayload, string, error) {
	payload := queuePayload{ID: uuid.NewString(), Call: job}
	body, err := json.Marshal(payload)
	if err != nil {
		return queuePayload{}, "", fmt.Errorf("calls: encode job: %w", err)
	}
	return payload, string(body), nil
}
