package notify

import (
	"context"
	"fmt"

	"github.com/medvoice-ai/hospital-scheduler/internal/ledger"
	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

// ConfirmationNotifier emails the front desk when an appointment is booked.
type ConfirmationNotifier struct {
	sender   EmailSender
	frontTo  string
	hospital string
	logger   *logging.Logger
}

// NewConfirmationNotifier returns nil when no sender or recipient is
// configured, so callers can treat notification as optional.
func NewConfirmationNotifier(sender EmailSender, frontDeskEmail, hospitalName string, logger *logging.Logger) *ConfirmationNotifier {
	if sender == nil || frontDeskEmail == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if hospitalName == "" {
		hospitalName = "Manipal Hospital"
	}
	return &ConfirmationNotifier{
		sender:   sender,
		frontTo:  frontDeskEmail,
		hospital: hospitalName,
		logger:   logger,
	}
}

// BookingConfirmed sends a confirmation for a booked appointment. A nil
// receiver is a no-op.
func (n *ConfirmationNotifier) BookingConfirmed(ctx context.Context, appt ledger.Appointment) error {
	if n == nil {
		return nil
	}
	msg := EmailMessage{
		To:      n.frontTo,
		Subject: fmt.Sprintf("New appointment: %s with %s", appt.PatientName, appt.DoctorName),
		Body:    confirmationBody(n.hospital, appt),
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: booking confirmation: %w", err)
	}
	n.logger.Info("booking confirmation sent", "patient", appt.PatientName, "doctor", appt.DoctorName)
	return nil
}

func confirmationBody(hospital string, appt ledger.Appointment) string {
	return fmt.Sprintf(
		"A new appointment has been booked at %s.\n\n"+
			"Patient: %s\n"+
			"Mobile: %s\n"+
			"Specialty: %s\n"+
			"Doctor: %s\n"+
			"Type: %s\n"+
			"Date: %s\n",
		hospital,
		appt.PatientName,
		appt.MobileNumber,
		appt.Specialty,
		appt.DoctorName,
		appt.AppointmentType,
		appt.AppointmentDate,
	)
}
