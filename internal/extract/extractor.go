package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/medvoice-ai/hospital-scheduler/internal/llm"
	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

// ErrMissingFields indicates the model's answer lacked required fields.
var ErrMissingFields = errors.New("extract: transcript missing required fields")

// Details are the structured booking fields pulled out of a call transcript.
// AppointmentDate stays raw text; the booking engine normalizes it.
type Details struct {
	MobileNumber    string `json:"mobile_number"`
	PatientName     string `json:"patient_name"`
	Specialty       string `json:"specialty"`
	DoctorName      string `json:"doctor_name"`
	AppointmentType string `json:"appointment_type"`
	AppointmentDate string `json:"appointment_date"`
}

const extractionPrompt = `Extract the following details from the call transcript:
- mobile_number
- patient_name
- specialty
- doctor_name
- appointment_type
- appointment_date

Format the response as key: value pairs, one per line, with exactly those keys.
If a detail was never mentioned, leave its value empty.`

// Extractor turns free-text call transcripts into structured booking fields
// with one LLM completion per transcript.
type Extractor struct {
	client    llm.Client
	modelID   string
	maxTokens int32
	logger    *logging.Logger
}

// New builds an extractor over the given LLM client.
func New(client llm.Client, modelID string, maxTokens int32, logger *logging.Logger) *Extractor {
	if client == nil {
		panic("extract: llm client cannot be nil")
	}
	if maxTokens <= 0 {
		maxTokens = 256
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Extractor{client: client, modelID: modelID, maxTokens: maxTokens, logger: logger}
}

// Extract asks the model for key: value lines and parses them. The patient
// name, specialty, doctor and date are required; the mobile number defaults
// to the caller's number downstream, so it may be empty.
func (e *Extractor) Extract(ctx context.Context, transcript string) (Details, error) {
	if strings.TrimSpace(transcript) == "" {
		return Details{}, errors.New("extract: transcript is empty")
	}

	resp, err := e.client.Complete(ctx, llm.Request{
		Model:       e.modelID,
		System:      []string{extractionPrompt},
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "Transcript:\n" + transcript}},
		MaxTokens:   e.maxTokens,
		Temperature: 0,
	})
	if err != nil {
		return Details{}, fmt.Errorf("extract: completion: %w", err)
	}

	details := parseDetails(resp.Text)
	if details.PatientName == "" || details.Specialty == "" ||
		details.DoctorName == "" || details.AppointmentDate == "" {
		e.logger.Warn("extraction incomplete", "response", resp.Text)
		return details, ErrMissingFields
	}
	return details, nil
}

// parseDetails reads "key: value" lines, tolerating casing, surrounding
// whitespace and list markers the model sometimes adds.
func parseDetails(text string) Details {
	var d Details
	for _, line := range strings.Split(text, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.Trim(key, " -*\t"))
		value = strings.TrimSpace(value)
		switch key {
		case "mobile_number", "phone_number":
			d.MobileNumber = value
		case "patient_name", "user_name", "name":
			d.PatientName = value
		case "specialty":
			d.Specialty = value
		case "doctor_name", "doctor":
			d.DoctorName = value
		case "appointment_type":
			d.AppointmentType = value
		case "appointment_date":
			d.AppointmentDate = value
		}
	}
	return d
}
