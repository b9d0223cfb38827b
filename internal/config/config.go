package config

import (
	"errors"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	Environment string `envconfig:"ENV" default:"development"`
	Port        string `envconfig:"PORT" default:"8080"`
	LogLevel    string `envconfig:"LOG_LEVEL"`

	// Database settings
	DBConnectionString string `envconfig:"DB_CONNECTION_STRING"`
	DBMaxOpenConns     int    `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	DBMaxIdleConns     int    `envconfig:"DB_MAX_IDLE_CONNS" default:"25"`
	DBConnMaxIdleSec   int    `envconfig:"DB_CONN_MAX_IDLE_SEC" default:"300"`
	AllowMemoryStore   bool   `envconfig:"ALLOW_MEMORY_STORE" default:"false"`

	// Identity provider settings
	SupabaseURL       string `envconfig:"SUPABASE_URL"`
	SupabaseJWTSecret string `envconfig:"SUPABASE_JWT_SECRET"`
	SupabaseJWKSURL   string `envconfig:"SUPABASE_JWKS_URL"`
	JWTIssuer         string `envconfig:"JWT_ISSUER"`
	JWTAudience       string `envconfig:"JWT_AUDIENCE" default:"authenticated"`
	DevAuthBypass     bool   `envconfig:"DEV_AUTH_BYPASS" default:"false"`

	// Language model settings
	LLMProvider       string  `envconfig:"LLM_PROVIDER" default:"openrouter"`
	OpenRouterAPIKey  string  `envconfig:"OPENROUTER_API_KEY"`
	OpenRouterModel   string  `envconfig:"OPENROUTER_MODEL" default:"mistralai/mistral-small-3.2-24b-instruct:free"`
	OpenRouterBaseURL string  `envconfig:"OPENROUTER_BASE_URL" default:"https://openrouter.ai/api/v1"`
	OpenRouterReferer string  `envconfig:"OPENROUTER_REFERER" default:"http://localhost:3000"`
	GeminiAPIKey      string  `envconfig:"GEMINI_API_KEY"`
	GeminiModel       string  `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
	LLMMaxTokens      int     `envconfig:"LLM_MAX_TOKENS" default:"800"`
	LLMTemperature    float32 `envconfig:"LLM_TEMPERATURE" default:"0.7"`
	LLMTimeoutSec     int     `envconfig:"LLM_TIMEOUT_SEC" default:"60"`

	// Speech synthesis settings
	ElevenLabsAPIKey  string `envconfig:"ELEVENLABS_API_KEY"`
	ElevenLabsBaseURL string `envconfig:"ELEVENLABS_BASE_URL" default:"https://api.elevenlabs.io/v1"`
	ElevenLabsVoiceID string `envconfig:"ELEVENLABS_VOICE_ID" default:"pNInz6obpgDQGcFmaJgB"`
	ElevenLabsModelID string `envconfig:"ELEVENLABS_MODEL_ID" default:"eleven_monolingual_v1"`
	CartesiaAPIKey    string `envconfig:"CARTESIA_API_KEY"`
	CartesiaBaseURL   string `envconfig:"CARTESIA_BASE_URL" default:"https://api.cartesia.ai"`
	CartesiaVoiceID   string `envconfig:"CARTESIA_VOICE_ID" default:"694f9389-aac1-45b6-b726-9d9369183238"`
	CartesiaModelID   string `envconfig:"CARTESIA_MODEL_ID" default:"sonic-2"`
	CartesiaVersion   string `envconfig:"CARTESIA_VERSION" default:"2024-06-10"`
	TTSTimeoutSec     int    `envconfig:"TTS_TIMEOUT_SEC" default:"60"`

	// Payment webhook settings
	PaddleWebhookSecret string `envconfig:"PADDLE_WEBHOOK_SECRET"`

	// Object storage settings
	StorageBackend  string `envconfig:"STORAGE_BACKEND" default:"s3"`
	S3URL           string `envconfig:"S3_URL"`
	S3Region        string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey     string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey     string `envconfig:"S3_SECRET_KEY"`
	S3PublicURL     string `envconfig:"S3_PUBLIC_URL"`
	MinioEndpoint   string `envconfig:"MINIO_ENDPOINT"`
	MinioAccessKey  string `envconfig:"MINIO_ACCESS_KEY"`
	MinioSecretKey  string `envconfig:"MINIO_SECRET_KEY"`
	MinioUseSSL     bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	DocumentsBucket string `envconfig:"STORAGE_DOCUMENTS_BUCKET" default:"documents"`
	AudioBucket     string `envconfig:"STORAGE_AUDIO_BUCKET" default:"audios"`

	// Document worker settings
	QueueBackend                 string `envconfig:"QUEUE_BACKEND"`
	EmbeddedWorker               bool   `envconfig:"EMBEDDED_WORKER" default:"true"`
	DocumentQueueName            string `envconfig:"DOCUMENT_QUEUE_NAME" default:"document_queue"`
	DocumentDeadLetterQueueName  string `envconfig:"DOCUMENT_DEAD_LETTER_QUEUE_NAME" default:"document_queue_dlq"`
	DocumentPollTimeoutSec       int    `envconfig:"DOCUMENT_POLL_TIMEOUT_SEC" default:"5"`
	DocumentPollMaxMsg           int    `envconfig:"DOCUMENT_POLL_MAX_MSG" default:"1"`
	DocumentVisibilityTimeoutSec int    `envconfig:"DOCUMENT_VISIBILITY_TIMEOUT_SEC" default:"300"`
	DocumentMaxDeliveries        int    `envconfig:"DOCUMENT_MAX_DELIVERIES" default:"5"`
	DocumentBackoffInitialSec    int    `envconfig:"DOCUMENT_BACKOFF_INITIAL_SEC" default:"1"`
	DocumentBackoffMaxSec        int    `envconfig:"DOCUMENT_BACKOFF_MAX_SEC" default:"30"`
	DocumentWorkerConcurrency    int    `envconfig:"DOCUMENT_WORKER_CONCURRENCY" default:"2"`

	// Google Cloud settings
	GCPProjectID               string `envconfig:"GCP_PROJECT_ID"`
	PubSubDocumentTopic        string `envconfig:"PUBSUB_DOCUMENT_TOPIC" default:"document-jobs"`
	PubSubDocumentSubscription string `envconfig:"PUBSUB_DOCUMENT_SUBSCRIPTION" default:"document-jobs-worker"`
	PubSubEmulatorHost         string `envconfig:"PUBSUB_EMULATOR_HOST"`
	SecretsFromSecretManager   bool   `envconfig:"SECRETS_FROM_SECRET_MANAGER" default:"false"`

	// Rate limiting
	RedisAddr          string `envconfig:"REDIS_ADDR"`
	RedisPassword      string `envconfig:"REDIS_PASSWORD"`
	StoryRateLimit     int    `envconfig:"STORY_RATE_LIMIT" default:"20"`
	StoryRateWindowSec int    `envconfig:"STORY_RATE_WINDOW_SEC" default:"60"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// Plan limits
	FreeStoryLimit     int `envconfig:"FREE_STORY_LIMIT" default:"10"`
	FreeInputLimit     int `envconfig:"FREE_INPUT_LIMIT" default:"600"`
	PremiumInputLimit  int `envconfig:"PREMIUM_INPUT_LIMIT" default:"20000"`
	FreeUploadMaxMB    int `envconfig:"FREE_UPLOAD_MAX_MB" default:"10"`
	PremiumUploadMaxMB int `envconfig:"PREMIUM_UPLOAD_MAX_MB" default:"50"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether the process runs with production guarantees.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

// DevBypassEnabled reports whether the development identity headers are honoured.
// It is always false in production.
func (c *Config) DevBypassEnabled() bool {
	return c.DevAuthBypass && !c.IsProduction()
}

// HasIdentityProvider reports whether bearer tokens can be verified.
func (c *Config) HasIdentityProvider() bool {
	return c.SupabaseJWTSecret != "" || c.SupabaseJWKSURL != ""
}

// QueueKind resolves the document job transport.
func (c *Config) QueueKind() string {
	if c.QueueBackend != "" {
		return strings.ToLower(c.QueueBackend)
	}
	if c.DBConnectionString == "" {
		return "memory"
	}
	return "pgmq"
}

// Validate enforces the startup policy: database and identity settings are
// fatal in production, everything else degrades a single capability.
func (c *Config) Validate() error {
	var errs []error
	if c.IsProduction() {
		if c.DBConnectionString == "" {
			errs = append(errs, errors.New("DB_CONNECTION_STRING is required in production"))
		}
		if !c.HasIdentityProvider() {
			errs = append(errs, errors.New("SUPABASE_JWT_SECRET or SUPABASE_JWKS_URL is required in production"))
		}
		if c.AllowMemoryStore {
			errs = append(errs, errors.New("ALLOW_MEMORY_STORE cannot be enabled in production"))
		}
		if c.QueueKind() == "memory" {
			errs = append(errs, errors.New("QUEUE_BACKEND=memory cannot be used in production"))
		}
	}
	switch c.QueueKind() {
	case "pgmq", "pubsub", "memory":
	default:
		errs = append(errs, errors.New("QUEUE_BACKEND must be one of pgmq, pubsub, memory"))
	}
	if c.QueueKind() == "pubsub" && c.GCPProjectID == "" {
		errs = append(errs, errors.New("GCP_PROJECT_ID is required when QUEUE_BACKEND=pubsub"))
	}
	switch strings.ToLower(c.StorageBackend) {
	case "s3", "minio", "memory":
	default:
		errs = append(errs, errors.New("STORAGE_BACKEND must be one of s3, minio, memory"))
	}
	switch strings.ToLower(c.LLMProvider) {
	case "openrouter", "gemini":
	default:
		errs = append(errs, errors.New("LLM_PROVIDER must be openrouter or gemini"))
	}
	if c.DocumentWorkerConcurrency < 1 {
		errs = append(errs, errors.New("DOCUMENT_WORKER_CONCURRENCY must be at least 1"))
	}
	return errors.Join(errs...)
}
