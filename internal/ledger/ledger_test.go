package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

type mockDynamo struct {
	putInput  *dynamodb.PutItemInput
	putErr    error
	scanItems []map[string]types.AttributeValue
}

func (m *mockDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putInput = in
	if m.putErr != nil {
		return nil, m.putErr
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamo) Scan(_ context.Context, _ *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return &dynamodb.ScanOutput{Items: m.scanItems}, nil
}

func TestAppendAssignsDefaults(t *testing.T) {
	mock := &mockDynamo{}
	l := New(mock, "user_appointments", logging.Default())

	appt := &Appointment{
		MobileNumber:    "+1234567890",
		PatientName:     "John Doe",
		Specialty:       "Cardiology",
		DoctorName:      "Dr Kiran",
		AppointmentType: TypeInPerson,
		AppointmentDate: "12 July at 02 PM",
	}
	if err := l.Append(context.Background(), appt); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	if appt.ID == "" {
		t.Fatal("expected appointment ID to be assigned")
	}
	if appt.BookedAt == "" {
		t.Fatal("expected commit timestamp to be assigned")
	}

	if mock.putInput == nil {
		t.Fatal("expected PutItem to be called")
	}
	if expr := mock.putInput.ConditionExpression; expr == nil || *expr != "attribute_not_exists(appointment_id)" {
		t.Fatalf("expected overwrite guard, got %v", expr)
	}

	var stored Appointment
	if err := attributevalue.UnmarshalMap(mock.putInput.Item, &stored); err != nil {
		t.Fatalf("failed to unmarshal stored appointment: %v", err)
	}
	if stored.AppointmentDate != "12 July at 02 PM" {
		t.Fatalf("unexpected stored slot text: %s", stored.AppointmentDate)
	}
}

func TestAppendNil(t *testing.T) {
	l := New(&mockDynamo{}, "user_appointments", logging.Default())
	if err := l.Append(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil appointment")
	}
}

func TestAppendPersistenceFailure(t *testing.T) {
	mock := &mockDynamo{putErr: errors.New("throttled")}
	l := New(mock, "user_appointments", logging.Default())
	err := l.Append(context.Background(), &Appointment{PatientName: "Jane"})
	if err == nil {
		t.Fatal("expected persistence error")
	}
}

func TestListAllInsertionOrder(t *testing.T) {
	first, _ := attributevalue.MarshalMap(&Appointment{ID: "b", PatientName: "Jane Smith", BookedAt: "2024-07-01T09:00:00Z"})
	second, _ := attributevalue.MarshalMap(&Appointment{ID: "a", PatientName: "John Doe", BookedAt: "2024-07-02T09:00:00Z"})
	mock := &mockDynamo{scanItems: []map[string]types.AttributeValue{second, first}}
	l := New(mock, "user_appointments", logging.Default())

	appts, err := l.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll returned error: %v", err)
	}
	if len(appts) != 2 {
		t.Fatalf("expected 2 appointments, got %d", len(appts))
	}
	if appts[0].PatientName != "Jane Smith" || appts[1].PatientName != "John Doe" {
		t.Fatalf("expected insertion order, got %s then %s", appts[0].PatientName, appts[1].PatientName)
	}
}
