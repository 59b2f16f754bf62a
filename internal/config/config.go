package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Voice call provider (Vapi-compatible API)
	VoiceAPIToken     string
	VoiceAPIBaseURL   string
	VoicePhoneNumber  string
	VoiceCallTimeout  time.Duration
	HospitalName      string
	ReceptionHoursMin int
	ReceptionHoursMax int

	// LLM transcript extraction
	LLMProvider     string
	BedrockModelID  string
	GeminiAPIKey    string
	GeminiModelID   string
	ExtractMaxToken int

	// Storage
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	SpecialtiesTable    string
	AppointmentsTable   string
	CallQueueURL        string
	UseMemoryQueue      bool
	WorkerCount         int

	// Export sink
	ExportBucket string
	ExportKey    string

	// Redis call session state
	RedisAddr     string
	RedisPassword string

	// Notifications
	EmailProvider   string
	SendGridAPIKey  string
	NotifyFromEmail string
	NotifyFromName  string
	FrontDeskEmail  string
	AdminJWTSecret  string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		VoiceAPIToken:     getEnv("VOICE_API_TOKEN", ""),
		VoiceAPIBaseURL:   getEnv("VOICE_API_BASE_URL", "https://api.vapi.ai"),
		VoicePhoneNumber:  getEnv("VOICE_PHONE_NUMBER_ID", ""),
		VoiceCallTimeout:  getEnvAsDuration("VOICE_CALL_TIMEOUT", 15*time.Second),
		HospitalName:      getEnv("HOSPITAL_NAME", "Manipal Hospital"),
		ReceptionHoursMin: getEnvAsInt("RECEPTION_HOURS_MIN", 9),
		ReceptionHoursMax: getEnvAsInt("RECEPTION_HOURS_MAX", 18),

		LLMProvider:     getEnv("LLM_PROVIDER", "bedrock"),
		BedrockModelID:  getEnv("BEDROCK_MODEL_ID", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:   getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		ExtractMaxToken: getEnvAsInt("EXTRACT_MAX_TOKENS", 256),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		SpecialtiesTable:    getEnv("SPECIALTIES_TABLE", "specialties"),
		AppointmentsTable:   getEnv("APPOINTMENTS_TABLE", "user_appointments"),
		CallQueueURL:        getEnv("CALL_QUEUE_URL", ""),
		UseMemoryQueue:      getEnvAsBool("USE_MEMORY_QUEUE", false),
		WorkerCount:         getEnvAsInt("WORKER_COUNT", 2),

		ExportBucket: getEnv("EXPORT_BUCKET", ""),
		ExportKey:    getEnv("EXPORT_KEY", "appointments.csv"),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		EmailProvider:   getEnv("EMAIL_PROVIDER", "ses"),
		SendGridAPIKey:  getEnv("SENDGRID_API_KEY", ""),
		NotifyFromEmail: getEnv("NOTIFY_FROM_EMAIL", ""),
		NotifyFromName:  getEnv("NOTIFY_FROM_NAME", "Manipal Hospital"),
		FrontDeskEmail:  getEnv("FRONT_DESK_EMAIL", ""),
		AdminJWTSecret:  getEnv("ADMIN_JWT_SECRET", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
