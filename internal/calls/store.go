package calls

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Session tracks the lifecycle of a placed call until its transcript has been
// processed. Call state lives here instead of in per-user UI session globals
// so that any worker can pick up processing.
type Session struct {
	CallID      string    `json:"call_id"`
	PhoneNumber string    `json:"phone_number"`
	Status      string    `json:"status"`
	PlacedAt    time.Time `json:"placed_at"`
	ProcessedAt time.Time `json:"processed_at,omitempty"`
	// Outcome records how transcript processing ended: booked, no_transcript,
	// extraction_failed, booking_failed.
	Outcome       string `json:"outcome,omitempty"`
	AppointmentID string `json:"appointment_id,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
}

const (
	sessionKeyPrefix = "call:session:"
	lastCallKey      = "call:last"
	sessionTTL       = 24 * time.Hour

	StatusPlaced     = "placed"
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
	StatusFailed     = "failed"

	OutcomeBooked           = "booked"
	OutcomeNoTranscript     = "no_transcript"
	OutcomeExtractionFailed = "extraction_failed"
	OutcomeBookingFailed    = "booking_failed"
)

// SessionStore manages call sessions in Redis.
type SessionStore struct {
	rdb *redis.Client
}

// NewSessionStore creates a call session store backed by Redis.
func NewSessionStore(rdb *redis.Client) *SessionStore {
	if rdb == nil {
		panic("calls: redis client required")
	}
	return &SessionStore{rdb: rdb}
}

func sessionKey(callID string) string {
	return sessionKeyPrefix + callID
}

// Save persists or updates a call session.
func (s *SessionStore) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.CallID == "" {
		return fmt.Errorf("calls: session call_id required")
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("calls: marshal session: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(sess.CallID), data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("calls: save session: %w", err)
	}
	return nil
}

// RecordPlaced saves a freshly placed call's session and remembers it as the
// most recent call.
func (s *SessionStore) RecordPlaced(ctx context.Context, sess *Session) error {
	if err := s.Save(ctx, sess); err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, lastCallKey, sess.CallID, sessionTTL).Err(); err != nil {
		return fmt.Errorf("calls: record last call: %w", err)
	}
	return nil
}

// Get retrieves a call session. A nil session with nil error means the call
// is unknown or expired.
func (s *SessionStore) Get(ctx context.Context, callID string) (*Session, error) {
	data, err := s.rdb.Get(ctx, sessionKey(callID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("calls: get session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("calls: unmarshal session: %w", err)
	}
	return &sess, nil
}

// LastCallID returns the most recently placed call's ID, or empty when none
// is recorded.
func (s *SessionStore) LastCallID(ctx context.Context) (string, error) {
	id, err := s.rdb.Get(ctx, lastCallKey).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("calls: last call id: %w", err)
	}
	return id, nil
}

// MarkProcessing flags a session as being worked on.
func (s *SessionStore) MarkProcessing(ctx context.Context, callID string) error {
	return s.update(ctx, callID, func(sess *Session) {
		sess.Status = StatusProcessing
	})
}

// MarkProcessed records the outcome of transcript processing.
func (s *SessionStore) MarkProcessed(ctx context.Context, callID, outcome, appointmentID string) error {
	return s.update(ctx, callID, func(sess *Session) {
		sess.Status = StatusProcessed
		sess.Outcome = outcome
		sess.AppointmentID = appointmentID
		sess.ProcessedAt = time.Now().UTC()
	})
}

// MarkFailed records a processing failure with a reason.
func (s *SessionStore) MarkFailed(ctx context.Context, callID, outcome, reason string) error {
	return s.update(ctx, callID, func(sess *Session) {
		sess.Status = StatusFailed
		sess.Outcome = outcome
		sess.FailureReason = reason
		sess.ProcessedAt = time.Now().UTC()
	})
}

func (s *SessionStore) update(ctx context.Context, callID string, mutate func(*Session)) error {
	sess, err := s.Get(ctx, callID)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("calls: session %s not found", callID)
	}
	mutate(sess)
	return s.Save(ctx, sess)
}
