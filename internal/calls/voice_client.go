package calls

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

const (
	defaultVoiceBaseURL = "https://api.vapi.ai"
	voiceCallTimeout    = 15 * time.Second
)

// ErrUpstream wraps failures reported by the voice API itself, as opposed to
// transport errors reaching it.
var ErrUpstream = errors.New("calls: voice API error")

// VoiceClient places outbound calls and fetches transcripts through a
// Vapi-style voice assistant API.
type VoiceClient struct {
	authToken     string
	phoneNumberID string
	baseURL       string
	httpClient    *http.Client
	logger        *logging.Logger
}

// VoiceClientConfig configures the outbound voice client.
type VoiceClientConfig struct {
	// AuthToken is the voice API key (Bearer token).
	AuthToken string
	// PhoneNumberID identifies the hospital's outbound caller number.
	PhoneNumberID string
	// BaseURL overrides the voice API base URL (for testing).
	BaseURL string
	// Timeout bounds each voice API request. Zero means the default.
	Timeout time.Duration
	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// NewVoiceClient creates a client for placing receptionist calls.
func NewVoiceClient(cfg VoiceClientConfig) (*VoiceClient, error) {
	if strings.TrimSpace(cfg.AuthToken) == "" {
		return nil, fmt.Errorf("calls: voice API token required")
	}
	if strings.TrimSpace(cfg.PhoneNumberID) == "" {
		return nil, fmt.Errorf("calls: voice phone number ID required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultVoiceBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = voiceCallTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &VoiceClient{
		authToken:     cfg.AuthToken,
		phoneNumberID: cfg.PhoneNumberID,
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    httpClient,
		logger:        logger,
	}, nil
}

type assistantModel struct {
	Provider string             `json:"provider"`
	Model    string             `json:"model"`
	Messages []assistantMessage `json:"messages"`
}

type assistantMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type assistantSpec struct {
	FirstMessage string         `json:"firstMessage"`
	Model        assistantModel `json:"model"`
	Voice        string         `json:"voice"`
}

type placeCallRequest struct {
	Assistant     assistantSpec `json:"assistant"`
	PhoneNumberID string        `json:"phoneNumberId"`
	Customer      struct {
		Number string `json:"number"`
	} `json:"customer"`
}

// Call is the voice API's record of a placed call.
type Call struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	CreatedAt  string `json:"createdAt,omitempty"`
	EndedAt    string `json:"endedAt,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

// PlaceCall starts an outbound receptionist call to the patient's number with
// the given system prompt.
func (c *VoiceClient) PlaceCall(ctx context.Context, phoneNumber, systemPrompt string) (*Call, error) {
	if strings.TrimSpace(phoneNumber) == "" {
		return nil, fmt.Errorf("calls: phone number required")
	}

	req := placeCallRequest{
		Assistant: assistantSpec{
			FirstMessage: "Hello",
			Model: assistantModel{
				Provider: "openai",
				Model:    "gpt-3.5-turbo",
				Messages: []assistantMessage{{Role: "system", Content: systemPrompt}},
			},
			Voice: "jennifer-playht",
		},
		PhoneNumberID: c.phoneNumberID,
	}
	req.Customer.Number = phoneNumber

	c.logger.Info("placing outbound call", "to", maskPhone(phoneNumber))

	var call Call
	if err := c.do(ctx, http.MethodPost, "/call/phone", req, &call); err != nil {
		return nil, err
	}

	c.logger.Info("outbound call placed", "call_id", call.ID, "to", maskPhone(phoneNumber))
	return &call, nil
}

// ListCalls fetches the voice API's call log.
func (c *VoiceClient) ListCalls(ctx context.Context) ([]Call, error) {
	var calls []Call
	if err := c.do(ctx, http.MethodGet, "/call", nil, &calls); err != nil {
		return nil, err
	}
	return calls, nil
}

// FetchTranscript fetches the transcript of a finished call. An empty string
// means the call has no transcript yet.
func (c *VoiceClient) FetchTranscript(ctx context.Context, callID string) (string, error) {
	if strings.TrimSpace(callID) == "" {
		return "", fmt.Errorf("calls: call ID required")
	}
	var call Call
	if err := c.do(ctx, http.MethodGet, "/call/"+callID, nil, &call); err != nil {
		return "", err
	}
	return call.Transcript, nil
}

func (c *VoiceClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("calls: marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("calls: create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.authToken)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("calls: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("calls: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("voice API error", "method", method, "path", path,
			"status", resp.StatusCode, "body", string(respBody))
		return fmt.Errorf("%w: %s %s returned %d", ErrUpstream, method, path, resp.StatusCode)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("calls: decode response: %w", err)
		}
	}
	return nil
}

// maskPhone redacts a phone number for logs, keeping the last four digits.
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
