package llm

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type mockConverse struct {
	input *bedrockruntime.ConverseInput
	text  string
}

func (m *mockConverse) Converse(_ context.Context, in *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	m.input = in
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{
			Value: brtypes.Message{
				Role:    brtypes.ConversationRoleAssistant,
				Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: m.text}},
			},
		},
		StopReason: brtypes.StopReasonEndTurn,
	}, nil
}

func TestBedrockCompleteMapsRolesAndText(t *testing.T) {
	mock := &mockConverse{text: "mobile_number: +1234567890"}
	client := NewBedrockClient(mock)

	resp, err := client.Complete(context.Background(), Request{
		Model:       "anthropic.claude-3-haiku",
		System:      []string{"extract fields"},
		Messages:    []Message{{Role: RoleUser, Content: "transcript text"}},
		MaxTokens:   256,
		Temperature: 0,
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if resp.Text != "mobile_number: +1234567890" {
		t.Fatalf("unexpected text: %q", resp.Text)
	}

	if mock.input == nil {
		t.Fatal("expected Converse to be called")
	}
	if len(mock.input.System) != 1 {
		t.Fatalf("expected 1 system block, got %d", len(mock.input.System))
	}
	if len(mock.input.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(mock.input.Messages))
	}
	if mock.input.Messages[0].Role != brtypes.ConversationRoleUser {
		t.Fatalf("unexpected role: %s", mock.input.Messages[0].Role)
	}
}

func TestBedrockCompleteRequiresModel(t *testing.T) {
	client := NewBedrockClient(&mockConverse{})
	if _, err := client.Complete(context.Background(), Request{}); err == nil {
		t.Fatal("expected error without model id")
	}
}
