package availability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/medvoice-ai/hospital-scheduler/internal/schedule"
	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

type mockDynamo struct {
	item         map[string]types.AttributeValue
	scanItems    []map[string]types.AttributeValue
	getErr       error
	updateErr    error
	updateInputs []*dynamodb.UpdateItemInput
	putInputs    []*dynamodb.PutItemInput
}

func (m *mockDynamo) GetItem(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &dynamodb.GetItemOutput{Item: m.item}, nil
}

func (m *mockDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putInputs = append(m.putInputs, in)
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	m.updateInputs = append(m.updateInputs, in)
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (m *mockDynamo) Scan(_ context.Context, _ *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	return &dynamodb.ScanOutput{Items: m.scanItems}, nil
}

func cardiology(t *testing.T) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(&Specialty{
		Name:     "Cardiology",
		Position: 0,
		Doctors: []Doctor{
			{
				Name:           "Dr Sambaji",
				AvailableSlots: []string{"11 July at 09 AM", "11 July at 11 AM"},
				BookedSlots:    []string{"10 July at 01 PM"},
			},
			{
				Name:           "Dr Kiran",
				AvailableSlots: []string{"11 July at 10 AM"},
				BookedSlots:    []string{},
			},
		},
	})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return item
}

func mustSlot(t *testing.T, text string) schedule.Slot {
	t.Helper()
	slot, err := schedule.Parse(text, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("parse slot %q: %v", text, err)
	}
	return slot
}

func TestGetSpecialtyNotFound(t *testing.T) {
	store := NewStore(&mockDynamo{}, "specialties", logging.Default())
	_, err := store.GetSpecialty(context.Background(), "Dermatology")
	if !errors.Is(err, ErrSpecialtyNotFound) {
		t.Fatalf("expected ErrSpecialtyNotFound, got %v", err)
	}
}

func TestGetDoctorNotFound(t *testing.T) {
	store := NewStore(&mockDynamo{item: cardiology(t)}, "specialties", logging.Default())
	_, err := store.GetDoctor(context.Background(), "Cardiology", "Dr Nobody")
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("expected ErrDoctorNotFound, got %v", err)
	}
}

func TestCommitSlotBuildsConditionalUpdate(t *testing.T) {
	mock := &mockDynamo{item: cardiology(t)}
	store := NewStore(mock, "specialties", logging.Default())

	err := store.CommitSlot(context.Background(), "Cardiology", "Dr Sambaji",
		mustSlot(t, "11 July at 11 AM"), []string{"10 July at 01 PM"})
	if err != nil {
		t.Fatalf("CommitSlot returned error: %v", err)
	}

	if len(mock.updateInputs) != 1 {
		t.Fatalf("expected 1 update call, got %d", len(mock.updateInputs))
	}
	update := mock.updateInputs[0]

	expr := *update.UpdateExpression
	if !strings.Contains(expr, "doctors[0].booked_slots = list_append(doctors[0].booked_slots, :slot)") {
		t.Fatalf("unexpected update expression: %s", expr)
	}
	if !strings.Contains(expr, "REMOVE doctors[0].available_slots[1]") {
		t.Fatalf("expected removal of the slot's read index, got: %s", expr)
	}

	cond := *update.ConditionExpression
	if !strings.Contains(cond, "doctors[0].available_slots[1] = :slot_text") {
		t.Fatalf("expected index guard in condition, got: %s", cond)
	}
	if !strings.Contains(cond, "doctors[0].booked_slots = :expected") {
		t.Fatalf("expected booked snapshot guard in condition, got: %s", cond)
	}

	if got := update.ExpressionAttributeValues[":slot_text"].(*types.AttributeValueMemberS).Value; got != "11 July at 11 AM" {
		t.Fatalf("unexpected slot text: %s", got)
	}
}

func TestCommitSlotUnavailable(t *testing.T) {
	store := NewStore(&mockDynamo{item: cardiology(t)}, "specialties", logging.Default())
	err := store.CommitSlot(context.Background(), "Cardiology", "Dr Sambaji",
		mustSlot(t, "15 July at 09 AM"), nil)
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}
}

func TestCommitSlotConditionFailureIsVersionConflict(t *testing.T) {
	mock := &mockDynamo{
		item:      cardiology(t),
		updateErr: &types.ConditionalCheckFailedException{},
	}
	store := NewStore(mock, "specialties", logging.Default())
	err := store.CommitSlot(context.Background(), "Cardiology", "Dr Kiran",
		mustSlot(t, "11 July at 10 AM"), []string{})
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestListSpecialtiesKeepsSeedOrder(t *testing.T) {
	surgery, err := attributevalue.MarshalMap(&Specialty{Name: "General Surgery", Position: 1})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	mock := &mockDynamo{scanItems: []map[string]types.AttributeValue{surgery, cardiology(t)}}
	store := NewStore(mock, "specialties", logging.Default())

	specs, err := store.ListSpecialties(context.Background())
	if err != nil {
		t.Fatalf("ListSpecialties returned error: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("expected 2 specialties, got %d", len(specs))
	}
	if specs[0].Name != "Cardiology" || specs[1].Name != "General Surgery" {
		t.Fatalf("expected seed order, got %s then %s", specs[0].Name, specs[1].Name)
	}
}
