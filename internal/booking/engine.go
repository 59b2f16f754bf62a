package booking

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/medvoice-ai/hospital-scheduler/internal/availability"
	"github.com/medvoice-ai/hospital-scheduler/internal/export"
	"github.com/medvoice-ai/hospital-scheduler/internal/ledger"
	"github.com/medvoice-ai/hospital-scheduler/internal/observability/metrics"
	"github.com/medvoice-ai/hospital-scheduler/internal/schedule"
	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

var bookingTracer = otel.Tracer("hospital.internal.booking")

var (
	// ErrPastTimeSlot indicates the requested slot is before the current time.
	ErrPastTimeSlot = errors.New("booking: time slot is in the past")
	// ErrSlotConflict indicates the doctor already has a booking within the
	// one-hour conflict window of the requested slot.
	ErrSlotConflict = errors.New("booking: doctor has a conflicting appointment")
)

// commitRetries bounds the reread-and-retry loop when a concurrent booking
// changes the doctor's slot state mid-commit.
const commitRetries = 3

// Request carries the details needed to book an appointment, regardless of
// whether they came from a form or an extracted call transcript.
type Request struct {
	Specialty       string
	DoctorName      string
	AppointmentType string
	TimeSlotInput   string
	PatientName     string
	MobileNumber    string
}

// Result is the outcome of a successful booking.
type Result struct {
	Appointment ledger.Appointment
	Slot        schedule.Slot
}

type availabilityStore interface {
	GetSpecialty(ctx context.Context, name string) (*availability.Specialty, error)
	CommitSlot(ctx context.Context, specialty, doctor string, slot schedule.Slot, expectedBooked []string) error
}

type appointmentLedger interface {
	Append(ctx context.Context, appt *ledger.Appointment) error
}

type confirmationNotifier interface {
	BookingConfirmed(ctx context.Context, appt ledger.Appointment) error
}

// Engine validates, commits, and records appointments. The slot mutation in
// the Availability Store is the transaction boundary; the ledger write, CSV
// export, and confirmation email are best-effort side effects.
type Engine struct {
	store    availabilityStore
	ledger   appointmentLedger
	sink     export.Sink
	notifier confirmationNotifier
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMetrics attaches booking metrics.
func WithMetrics(m *metrics.BookingMetrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithNotifier attaches a confirmation notifier.
func WithNotifier(n confirmationNotifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// NewEngine constructs a booking engine.
func NewEngine(store availabilityStore, appts appointmentLedger, sink export.Sink, logger *logging.Logger, opts ...Option) *Engine {
	if store == nil {
		panic("booking: availability store required")
	}
	if appts == nil {
		panic("booking: appointment ledger required")
	}
	if sink == nil {
		sink = export.Discard{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	e := &Engine{
		store:  store,
		ledger: appts,
		sink:   sink,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Book books an appointment for the requested doctor and time slot.
//
// The slot input is normalized against the current time, rejected if it is in
// the past, checked against the doctor's existing bookings for the one-hour
// conflict window, and then committed with a conditional update. When a
// concurrent booking invalidates the commit condition the engine rereads the
// doctor's state, reruns the conflict check, and retries.
func (e *Engine) Book(ctx context.Context, req Request) (*Result, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("hospital.specialty", req.Specialty),
		attribute.String("hospital.doctor", req.DoctorName),
	)

	start := e.now()
	res, err := e.book(ctx, req, start)
	if err != nil {
		span.RecordError(err)
		e.metrics.ObserveBooking("error", e.now().Sub(start).Seconds())
		return nil, err
	}
	e.metrics.ObserveBooking("booked", e.now().Sub(start).Seconds())
	return res, nil
}

func (e *Engine) book(ctx context.Context, req Request, now time.Time) (*Result, error) {
	spec, err := e.store.GetSpecialty(ctx, req.Specialty)
	if err != nil {
		return nil, err
	}

	slot, err := schedule.Normalize(req.TimeSlotInput, now)
	if err != nil {
		return nil, err
	}
	if slot.Time().Before(now) {
		return nil, ErrPastTimeSlot
	}

	doc := spec.Doctor(req.DoctorName)
	if doc == nil {
		return nil, availability.ErrDoctorNotFound
	}

	for attempt := 0; ; attempt++ {
		if err := checkConflicts(doc, slot, now); err != nil {
			return nil, err
		}
		err = e.store.CommitSlot(ctx, spec.Name, doc.Name, slot, doc.BookedSlots)
		if err == nil {
			break
		}
		if !errors.Is(err, availability.ErrVersionConflict) || attempt >= commitRetries {
			return nil, err
		}
		e.logger.Warn("slot commit conflicted, retrying",
			"specialty", spec.Name, "doctor", doc.Name, "slot", slot.String(), "attempt", attempt+1)
		spec, err = e.store.GetSpecialty(ctx, req.Specialty)
		if err != nil {
			return nil, err
		}
		doc = spec.Doctor(req.DoctorName)
		if doc == nil {
			return nil, availability.ErrDoctorNotFound
		}
	}

	appt := ledger.Appointment{
		MobileNumber:    req.MobileNumber,
		PatientName:     req.PatientName,
		Specialty:       spec.Name,
		DoctorName:      doc.Name,
		AppointmentType: req.AppointmentType,
		AppointmentDate: slot.String(),
	}
	e.recordSideEffects(ctx, &appt)

	e.logger.Info("appointment booked",
		"specialty", spec.Name, "doctor", doc.Name, "slot", slot.String(), "patient", req.PatientName)
	return &Result{Appointment: appt, Slot: slot}, nil
}

// recordSideEffects runs the post-commit writes. Failures are logged and
// counted but never unwind the committed slot.
func (e *Engine) recordSideEffects(ctx context.Context, appt *ledger.Appointment) {
	if err := e.ledger.Append(ctx, appt); err != nil {
		e.logger.Error("ledger append failed after commit", "error", err, "patient", appt.PatientName)
		e.metrics.ObserveSideEffectFailure("ledger")
	}
	if err := e.sink.Append(ctx, *appt); err != nil {
		e.logger.Error("export append failed after commit", "error", err, "patient", appt.PatientName)
		e.metrics.ObserveSideEffectFailure("export")
	}
	if e.notifier != nil {
		if err := e.notifier.BookingConfirmed(ctx, *appt); err != nil {
			e.logger.Error("confirmation email failed after commit", "error", err, "patient", appt.PatientName)
			e.metrics.ObserveSideEffectFailure("email")
		}
	}
}

func checkConflicts(doc *availability.Doctor, slot schedule.Slot, ref time.Time) error {
	for _, booked := range doc.BookedAt(ref) {
		if slot.ConflictsWith(booked) {
			return ErrSlotConflict
		}
	}
	return nil
}

// SuggestSlots returns the doctor's open and already-booked slots in their
// canonical text form, for offering alternatives to a caller.
func (e *Engine) SuggestSlots(ctx context.Context, specialty, doctor string) (available, booked []string, err error) {
	ctx, span := bookingTracer.Start(ctx, "booking.suggest_slots")
	defer span.End()

	spec, err := e.store.GetSpecialty(ctx, specialty)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	doc := spec.Doctor(doctor)
	if doc == nil {
		span.RecordError(availability.ErrDoctorNotFound)
		return nil, nil, availability.ErrDoctorNotFound
	}
	return doc.AvailableSlots, doc.BookedSlots, nil
}

// UserFacingError maps booking failures to a short message suitable for a
// caller-facing channel. Unknown errors get a generic message.
func UserFacingError(err error) string {
	switch {
	case errors.Is(err, availability.ErrSpecialtyNotFound):
		return "We could not find that specialty."
	case errors.Is(err, availability.ErrDoctorNotFound):
		return "We could not find that doctor."
	case errors.Is(err, schedule.ErrInvalidDateFormat):
		return "We could not understand that date. Try a form like '11 July at 9 AM'."
	case errors.Is(err, ErrPastTimeSlot):
		return "That time has already passed. Please pick a future slot."
	case errors.Is(err, ErrSlotConflict):
		return "The doctor already has an appointment within an hour of that time."
	case errors.Is(err, availability.ErrSlotUnavailable):
		return "That slot is not open for this doctor."
	default:
		return "We could not book the appointment. Please try again."
	}
}
