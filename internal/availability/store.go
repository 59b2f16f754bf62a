package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/medvoice-ai/hospital-scheduler/internal/schedule"
	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

var (
	// ErrSpecialtyNotFound indicates the specialty document does not exist.
	ErrSpecialtyNotFound = errors.New("availability: specialty not found")
	// ErrDoctorNotFound indicates the doctor is absent from the specialty.
	ErrDoctorNotFound = errors.New("availability: doctor not found")
	// ErrSlotUnavailable indicates the slot is not in the doctor's available set.
	ErrSlotUnavailable = errors.New("availability: slot not available")
	// ErrVersionConflict indicates the doctor's slot state changed between the
	// caller's read and the conditional write. Callers re-check and retry.
	ErrVersionConflict = errors.New("availability: slot state changed, retry")
)

type dynamoAPI interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store is the authoritative record of doctors' available and booked slots,
// backed by one DynamoDB document per specialty.
type Store struct {
	client    dynamoAPI
	tableName string
	logger    *logging.Logger
}

// NewStore builds a store over the provided DynamoDB client.
func NewStore(client dynamoAPI, tableName string, logger *logging.Logger) *Store {
	if client == nil {
		panic("availability: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("availability: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{client: client, tableName: tableName, logger: logger}
}

// GetSpecialty fetches one specialty document by name.
func (s *Store) GetSpecialty(ctx context.Context, name string) (*Specialty, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"name": &types.AttributeValueMemberS{Value: name},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("availability: fetch specialty %q: %w", name, err)
	}
	if out.Item == nil {
		return nil, ErrSpecialtyNotFound
	}

	var spec Specialty
	if err := attributevalue.UnmarshalMap(out.Item, &spec); err != nil {
		return nil, fmt.Errorf("availability: decode specialty %q: %w", name, err)
	}
	return &spec, nil
}

// GetDoctor fetches one doctor's slot state.
func (s *Store) GetDoctor(ctx context.Context, specialty, doctor string) (*Doctor, error) {
	spec, err := s.GetSpecialty(ctx, specialty)
	if err != nil {
		return nil, err
	}
	d := spec.Doctor(doctor)
	if d == nil {
		return nil, ErrDoctorNotFound
	}
	return d, nil
}

// ListSpecialties returns every specialty in seed insertion order.
func (s *Store) ListSpecialties(ctx context.Context) ([]Specialty, error) {
	var specs []Specialty
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("availability: list specialties: %w", err)
		}
		var page []Specialty
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("availability: decode specialties: %w", err)
		}
		specs = append(specs, page...)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Position < specs[j].Position })
	return specs, nil
}

// PutSpecialty writes a full specialty document. Seed/admin path only;
// normal operation mutates slots exclusively through CommitSlot.
func (s *Store) PutSpecialty(ctx context.Context, spec *Specialty) error {
	if spec == nil || spec.Name == "" {
		return errors.New("availability: specialty name required")
	}
	item, err := attributevalue.MarshalMap(spec)
	if err != nil {
		return fmt.Errorf("availability: marshal specialty %q: %w", spec.Name, err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("availability: persist specialty %q: %w", spec.Name, err)
	}
	return nil
}

// CommitSlot atomically moves a slot from a doctor's available set to the
// booked set. The single conditional update requires that the slot still sit
// where it was read in available_slots and that booked_slots equal
// expectedBooked, the snapshot the caller's conflict check ran against. Any
// interleaved booking fails the condition and surfaces ErrVersionConflict so
// the caller can re-check and retry.
func (s *Store) CommitSlot(ctx context.Context, specialty, doctor string, slot schedule.Slot, expectedBooked []string) error {
	spec, err := s.GetSpecialty(ctx, specialty)
	if err != nil {
		return err
	}

	doctorIdx := -1
	for i := range spec.Doctors {
		if spec.Doctors[i].Name == doctor {
			doctorIdx = i
			break
		}
	}
	if doctorIdx == -1 {
		return ErrDoctorNotFound
	}

	slotText := slot.String()
	slotIdx := -1
	for j, text := range spec.Doctors[doctorIdx].AvailableSlots {
		if text == slotText {
			slotIdx = j
			break
		}
	}
	if slotIdx == -1 {
		return ErrSlotUnavailable
	}

	if expectedBooked == nil {
		expectedBooked = []string{}
	}
	expectedAttr, err := attributevalue.Marshal(expectedBooked)
	if err != nil {
		return fmt.Errorf("availability: marshal booked snapshot: %w", err)
	}

	update := fmt.Sprintf(
		"SET doctors[%d].booked_slots = list_append(doctors[%d].booked_slots, :slot) REMOVE doctors[%d].available_slots[%d]",
		doctorIdx, doctorIdx, doctorIdx, slotIdx,
	)
	condition := fmt.Sprintf(
		"doctors[%d].#dn = :doctor AND doctors[%d].available_slots[%d] = :slot_text AND doctors[%d].booked_slots = :expected",
		doctorIdx, doctorIdx, slotIdx, doctorIdx,
	)

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"name": &types.AttributeValueMemberS{Value: specialty},
		},
		UpdateExpression:    aws.String(update),
		ConditionExpression: aws.String(condition),
		ExpressionAttributeNames: map[string]string{
			"#dn": "name",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":slot": &types.AttributeValueMemberL{
				Value: []types.AttributeValue{&types.AttributeValueMemberS{Value: slotText}},
			},
			":slot_text": &types.AttributeValueMemberS{Value: slotText},
			":doctor":    &types.AttributeValueMemberS{Value: doctor},
			":expected":  expectedAttr,
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			s.logger.Warn("slot commit lost the race",
				"specialty", specialty,
				"doctor", doctor,
				"slot", slotText,
			)
			return ErrVersionConflict
		}
		return fmt.Errorf("availability: commit slot %q for %s/%s: %w", slotText, specialty, doctor, err)
	}

	s.logger.Info("slot moved to booked",
		"specialty", specialty,
		"doctor", doctor,
		"slot", slotText,
	)
	return nil
}
