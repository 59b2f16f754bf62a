package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

type stubClient struct {
	resp  Response
	err   error
	calls int
}

func (s *stubClient) Complete(_ context.Context, _ Request) (Response, error) {
	s.calls++
	return s.resp, s.err
}

func TestFallbackNotUsedOnSuccess(t *testing.T) {
	primary := &stubClient{resp: Response{Text: "ok"}}
	fallback := &stubClient{resp: Response{Text: "backup"}}
	client := NewFallbackClient(primary, fallback, logging.Default())

	resp, err := client.Complete(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if resp.Text != "ok" {
		t.Fatalf("expected primary response, got %q", resp.Text)
	}
	if fallback.calls != 0 {
		t.Fatal("fallback should not have been called")
	}
}

func TestFallbackUsedOnPrimaryFailure(t *testing.T) {
	primary := &stubClient{err: errors.New("rate limited")}
	fallback := &stubClient{resp: Response{Text: "backup"}}
	client := NewFallbackClient(primary, fallback, logging.Default())

	resp, err := client.Complete(context.Background(), Request{})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if resp.Text != "backup" {
		t.Fatalf("expected fallback response, got %q", resp.Text)
	}
}

func TestNoFallbackReturnsPrimaryError(t *testing.T) {
	primaryErr := errors.New("rate limited")
	client := NewFallbackClient(&stubClient{err: primaryErr}, nil, logging.Default())

	_, err := client.Complete(context.Background(), Request{})
	if !errors.Is(err, primaryErr) {
		t.Fatalf("expected primary error, got %v", err)
	}
}
