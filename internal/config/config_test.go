package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("VOICE_API_BASE_URL", "")
	t.Setenv("SPECIALTIES_TABLE", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.VoiceAPIBaseURL != "https://api.vapi.ai" {
		t.Fatalf("expected default voice base URL, got %s", cfg.VoiceAPIBaseURL)
	}
	if cfg.SpecialtiesTable != "specialties" {
		t.Fatalf("expected default specialties table, got %s", cfg.SpecialtiesTable)
	}
	if cfg.AppointmentsTable != "user_appointments" {
		t.Fatalf("expected default appointments table, got %s", cfg.AppointmentsTable)
	}
	if cfg.VoiceCallTimeout != 15*time.Second {
		t.Fatalf("expected default call timeout, got %s", cfg.VoiceCallTimeout)
	}
	if cfg.ReceptionHoursMin != 9 || cfg.ReceptionHoursMax != 18 {
		t.Fatalf("expected default reception hours, got %d-%d", cfg.ReceptionHoursMin, cfg.ReceptionHoursMax)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("VOICE_API_BASE_URL", "http://localhost:4010")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("WORKER_COUNT", "4")
	t.Setenv("USE_MEMORY_QUEUE", "true")
	t.Setenv("VOICE_CALL_TIMEOUT", "30s")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.VoiceAPIBaseURL != "http://localhost:4010" {
		t.Fatalf("expected voice base URL override, got %s", cfg.VoiceAPIBaseURL)
	}
	if cfg.LLMProvider != "gemini" {
		t.Fatalf("expected llm provider override, got %s", cfg.LLMProvider)
	}
	if cfg.WorkerCount != 4 {
		t.Fatalf("expected worker count override, got %d", cfg.WorkerCount)
	}
	if !cfg.UseMemoryQueue {
		t.Fatal("expected memory queue override")
	}
	if cfg.VoiceCallTimeout != 30*time.Second {
		t.Fatalf("expected call timeout override, got %s", cfg.VoiceCallTimeout)
	}
}
