package main

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"

	"github.com/medvoice-ai/hospital-scheduler/cmd/mainconfig"
	"github.com/medvoice-ai/hospital-scheduler/internal/availability"
	appconfig "github.com/medvoice-ai/hospital-scheduler/internal/config"
	"github.com/medvoice-ai/hospital-scheduler/internal/ledger"
	"github.com/medvoice-ai/hospital-scheduler/internal/schedule"
	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

// seedYear anchors the fixture slots; the canonical slot text drops the year.
const seedYear = 2024

func slotText(month time.Month, day, hour int) string {
	return schedule.At(time.Date(seedYear, month, day, hour, 0, 0, 0, time.UTC)).String()
}

func specialtyFixtures() []availability.Specialty {
	return []availability.Specialty{
		{
			Name:     "Cardiology",
			Position: 1,
			Doctors: []availability.Doctor{
				{
					Name: "Dr Sambaji",
					AvailableSlots: []string{
						slotText(time.July, 11, 9),
						slotText(time.July, 11, 11),
						slotText(time.July, 12, 14),
					},
					BookedSlots: []string{
						slotText(time.July, 10, 13),
					},
				},
				{
					Name: "Dr Kiran",
					AvailableSlots: []string{
						slotText(time.July, 11, 10),
						slotText(time.July, 11, 12),
						slotText(time.July, 12, 15),
					},
					BookedSlots: []string{
						slotText(time.July, 10, 14),
					},
				},
			},
		},
		{
			Name:     "General Surgery",
			Position: 2,
			Doctors: []availability.Doctor{
				{
					Name: "Dr Aritra Ghosh",
					AvailableSlots: []string{
						slotText(time.July, 11, 9),
						slotText(time.July, 11, 11),
						slotText(time.July, 12, 14),
					},
					BookedSlots: []string{
						slotText(time.July, 10, 15),
					},
				},
			},
		},
	}
}

func appointmentFixtures() []ledger.Appointment {
	return []ledger.Appointment{
		{
			MobileNumber:    "+1234567890",
			PatientName:     "John Doe",
			Specialty:       "Cardiology",
			DoctorName:      "Dr Kiran",
			AppointmentType: ledger.TypeInPerson,
			AppointmentDate: slotText(time.July, 12, 14),
		},
		{
			MobileNumber:    "+0987654321",
			PatientName:     "Jane Smith",
			Specialty:       "General Surgery",
			DoctorName:      "Dr Aritra Ghosh",
			AppointmentType: ledger.TypeTeleconsultation,
			AppointmentDate: slotText(time.July, 11, 11),
		},
	}
}

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	dynamoClient := dynamodb.NewFromConfig(awsCfg)
	store := availability.NewStore(dynamoClient, cfg.SpecialtiesTable, logger)
	appointments := ledger.New(dynamoClient, cfg.AppointmentsTable, logger)

	for _, spec := range specialtyFixtures() {
		spec := spec
		if err := store.PutSpecialty(ctx, &spec); err != nil {
			logger.Error("seeding specialty failed", "error", err, "specialty", spec.Name)
			os.Exit(1)
		}
		logger.Info("seeded specialty", "specialty", spec.Name, "doctors", len(spec.Doctors))
	}

	for _, appt := range appointmentFixtures() {
		appt := appt
		if err := appointments.Append(ctx, &appt); err != nil {
			logger.Error("seeding appointment failed", "error", err, "patient", appt.PatientName)
			os.Exit(1)
		}
		logger.Info("seeded appointment", "patient", appt.PatientName, "slot", appt.AppointmentDate)
	}

	logger.Info("seed complete")
}
