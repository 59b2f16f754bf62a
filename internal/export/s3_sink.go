package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/medvoice-ai/hospital-scheduler/internal/ledger"
	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

var csvHeader = []string{"Patient Name", "Mobile Number", "Specialty", "Doctor Name", "Appointment Type", "Date"}

// S3Client is the subset of the S3 API the sink needs (mockable in tests).
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink appends appointment rows to a CSV audit file in S3. The object is
// read, extended by one row and written back; the file is created with a
// header row on first append.
type S3Sink struct {
	s3     S3Client
	bucket string
	key    string
	logger *logging.Logger
}

// S3SinkConfig configures the CSV export sink.
type S3SinkConfig struct {
	S3     S3Client
	Bucket string
	Key    string
	Logger *logging.Logger
}

// NewS3Sink builds the sink. Returns nil when no bucket is configured so
// callers can fall back to Discard.
func NewS3Sink(cfg S3SinkConfig) *S3Sink {
	if cfg.S3 == nil || cfg.Bucket == "" {
		return nil
	}
	if cfg.Key == "" {
		cfg.Key = "appointments.csv"
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &S3Sink{s3: cfg.S3, bucket: cfg.Bucket, key: cfg.Key, logger: cfg.Logger}
}

// Append adds one row to the audit file.
func (s *S3Sink) Append(ctx context.Context, appt ledger.Appointment) error {
	records, err := s.read(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		records = append(records, csvHeader)
	}
	records = append(records, []string{
		appt.PatientName,
		appt.MobileNumber,
		appt.Specialty,
		appt.DoctorName,
		appt.AppointmentType,
		appt.AppointmentDate,
	})

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("export: encode csv: %w", err)
	}

	_, err = s.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return fmt.Errorf("export: write %s/%s: %w", s.bucket, s.key, err)
	}

	s.logger.Info("appointment exported",
		"bucket", s.bucket,
		"key", s.key,
		"patient", appt.PatientName,
	)
	return nil
}

func (s *S3Sink) read(ctx context.Context) ([][]string, error) {
	out, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, nil
		}
		return nil, fmt.Errorf("export: read %s/%s: %w", s.bucket, s.key, err)
	}
	defer out.Body.Close()

	records, err := csv.NewReader(io.LimitReader(out.Body, 16<<20)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("export: decode existing csv: %w", err)
	}
	return records, nil
}
