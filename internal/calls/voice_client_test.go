package calls

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVoiceClient(t *testing.T, handler http.Handler) *VoiceClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewVoiceClient(VoiceClientConfig{
		AuthToken:     "test-token",
		PhoneNumberID: "pn-1",
		BaseURL:       srv.URL,
	})
	require.NoError(t, err)
	return client
}

func TestNewVoiceClientValidation(t *testing.T) {
	_, err := NewVoiceClient(VoiceClientConfig{PhoneNumberID: "pn-1"})
	assert.Error(t, err)

	_, err = NewVoiceClient(VoiceClientConfig{AuthToken: "tok"})
	assert.Error(t, err)
}

func TestPlaceCall(t *testing.T) {
	var gotBody map[string]any
	var gotAuth string
	client := newTestVoiceClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/call/phone", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Call{ID: "call-42", Status: "queued"})
	}))

	call, err := client.PlaceCall(context.Background(), "+919876543210", "You are a receptionist.")
	require.NoError(t, err)
	assert.Equal(t, "call-42", call.ID)
	assert.Equal(t, "Bearer test-token", gotAuth)

	assert.Equal(t, "pn-1", gotBody["phoneNumberId"])
	customer := gotBody["customer"].(map[string]any)
	assert.Equal(t, "+919876543210", customer["number"])
	assistant := gotBody["assistant"].(map[string]any)
	assert.Equal(t, "Hello", assistant["firstMessage"])
	model := assistant["model"].(map[string]any)
	assert.Equal(t, "openai", model["provider"])
}

func TestPlaceCallRequiresPhone(t *testing.T) {
	client := newTestVoiceClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	_, err := client.PlaceCall(context.Background(), "  ", "prompt")
	assert.Error(t, err)
}

func TestPlaceCallUpstreamError(t *testing.T) {
	client := newTestVoiceClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
	}))
	_, err := client.PlaceCall(context.Background(), "+919876543210", "prompt")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestListCalls(t *testing.T) {
	client := newTestVoiceClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/call", r.URL.Path)
		json.NewEncoder(w).Encode([]Call{
			{ID: "c1", Status: "ended"},
			{ID: "c2", Status: "in-progress"},
		})
	}))

	calls, err := client.ListCalls(context.Background())
	require.NoError(t, err)
	require.Len(t, calls, 2)
	assert.Equal(t, "c1", calls[0].ID)
}

func TestFetchTranscript(t *testing.T) {
	client := newTestVoiceClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/call/c1", r.URL.Path)
		json.NewEncoder(w).Encode(Call{ID: "c1", Status: "ended", Transcript: "AI: Hello\nUser: Hi"})
	}))

	transcript, err := client.FetchTranscript(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "AI: Hello\nUser: Hi", transcript)
}

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "*********3210", maskPhone("+919876543210"))
	assert.Equal(t, "****", maskPhone("123"))
}
