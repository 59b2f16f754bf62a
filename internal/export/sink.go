package export

import (
	"context"

	"github.com/medvoice-ai/hospital-scheduler/internal/ledger"
)

// Sink receives one row per committed appointment. Implementations are audit
// sinks only; a sink failure never rolls back a booking.
type Sink interface {
	Append(ctx context.Context, appt ledger.Appointment) error
}

// Discard is a Sink that drops rows. Used when no export bucket is configured.
type Discard struct{}

func (Discard) Append(context.Context, ledger.Appointment) error { return nil }
