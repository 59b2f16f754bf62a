package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

// Appointment types offered by the call center.
const (
	TypeInPerson         = "In-person"
	TypeTeleconsultation = "Teleconsultation"
)

// Appointment is the durable record of a committed booking. Immutable once
// written; the ledger has no update or delete path.
type Appointment struct {
	ID              string `dynamodbav:"appointment_id" json:"appointment_id"`
	MobileNumber    string `dynamodbav:"mobile_number" json:"mobile_number"`
	PatientName     string `dynamodbav:"patient_name" json:"patient_name"`
	Specialty       string `dynamodbav:"specialty" json:"specialty"`
	DoctorName      string `dynamodbav:"doctor_name" json:"doctor_name"`
	AppointmentType string `dynamodbav:"appointment_type" json:"appointment_type"`
	// AppointmentDate is the canonical slot text, for parity with slot storage.
	AppointmentDate string `dynamodbav:"appointment_date" json:"appointment_date"`
	// BookedAt is the full RFC3339 commit timestamp; it also orders ListAll.
	BookedAt string `dynamodbav:"booked_at" json:"booked_at"`
}

// Ledger is the append-only appointment log, one DynamoDB document per
// appointment, independent of doctor slot state.
type Ledger struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// New builds a ledger over the provided DynamoDB client.
func New(client dynamoAPI, tableName string, logger *logging.Logger) *Ledger {
	if client == nil {
		panic("ledger: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("ledger: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Ledger{client: client, tableName: tableName, logger: logger}
}

// Append writes one appointment record. The record is assigned an ID and a
// commit timestamp if the caller left them empty; the conditional put refuses
// to overwrite an existing record.
func (l *Ledger) Append(ctx context.Context, appt *Appointment) error {
	if appt == nil {
		return errors.New("ledger: appointment cannot be nil")
	}
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	if appt.BookedAt == "" {
		appt.BookedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}

	item, err := attributevalue.MarshalMap(appt)
	if err != nil {
		return fmt.Errorf("ledger: marshal appointment: %w", err)
	}

	_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(l.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(appointment_id)"),
	})
	if err != nil {
		return fmt.Errorf("ledger: persist appointment: %w", err)
	}

	l.logger.Info("appointment recorded",
		"appointment_id", appt.ID,
		"specialty", appt.Specialty,
		"doctor", appt.DoctorName,
		"slot", appt.AppointmentDate,
	)
	return nil
}

// ListAll returns every appointment in insertion order.
func (l *Ledger) ListAll(ctx context.Context) ([]Appointment, error) {
	var appts []Appointment
	var startKey map[string]types.AttributeValue
	for {
		out, err := l.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(l.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("ledger: list appointments: %w", err)
		}
		var page []Appointment
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("ledger: decode appointments: %w", err)
		}
		appts = append(appts, page...)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	sort.Slice(appts, func(i, j int) bool {
		if appts[i].BookedAt != appts[j].BookedAt {
			return appts[i].BookedAt < appts[j].BookedAt
		}
		return appts[i].ID < appts[j].ID
	})
	return appts, nil
}
