// Package bootstrap assembles the process graph shared by the API server and
// the standalone document worker.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"studyflow/internal/auth"
	"studyflow/internal/config"
	"studyflow/internal/extract"
	"studyflow/internal/llm"
	"studyflow/internal/orchestrator/document"
	"studyflow/internal/pgmq"
	"studyflow/internal/pubsub"
	"studyflow/internal/queue"
	"studyflow/internal/ratelimit"
	"studyflow/internal/repository"
	"studyflow/internal/repository/memory"
	"studyflow/internal/service"
	"studyflow/internal/storage"
	"studyflow/internal/tts"
	"studyflow/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const documentJobTimeout = 5 * time.Minute

// jobTimeout bounds one ingestion attempt so it finishes before a pgmq lease
// of visibilitySec expires and the message becomes visible to another worker.
func jobTimeout(visibilitySec int) time.Duration {
	if visibilitySec <= 0 {
		return documentJobTimeout
	}
	lease := time.Duration(visibilitySec) * time.Second
	return min(documentJobTimeout, lease-lease/5)
}

// JobQueue publishes and consumes document jobs.
type JobQueue interface {
	queue.Publisher
	queue.Consumer
}

// Container holds every long-lived dependency. Nil interface fields mark an
// unconfigured optional capability.
type Container struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Validate *validator.Validate

	DB       *sql.DB
	Store    *repository.Store
	Objects  storage.ObjectStore
	Jobs     JobQueue
	Verifier auth.Verifier
	Limiter  ratelimit.Limiter

	Users         service.UserService
	Subscriptions service.SubscriptionService
	Documents     service.DocumentService
	Ingestion     service.IngestionService
	Flashcards    service.FlashcardService
	StudySessions service.StudySessionService
	Stories       service.StoryService
	Audio         service.AudioService
	Paddle        service.PaddleService
	Health        service.HealthService
	DLQ           service.DLQService

	closers []func() error
}

// New builds the container. Errors are fatal startup conditions; optional
// vendors that are missing are logged and left nil.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Container, error) {
	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	ok := false
	defer func() {
		if !ok {
			c.Close()
		}
	}()

	if cfg.SecretsFromSecretManager {
		if err := c.resolveSecrets(ctx); err != nil {
			return nil, err
		}
	}
	if err := c.initStore(ctx); err != nil {
		return nil, err
	}
	if err := c.initQueue(ctx); err != nil {
		return nil, err
	}
	if err := c.initObjects(ctx); err != nil {
		return nil, err
	}
	if err := c.initVerifier(ctx); err != nil {
		return nil, err
	}
	c.initLimiter()

	client, err := c.newLLM(ctx)
	if err != nil {
		return nil, err
	}
	c.initServices(client)

	ok = true
	return c, nil
}

func (c *Container) resolveSecrets(ctx context.Context) error {
	sm, err := service.NewSecretManagerService(ctx, c.Config.GCPProjectID)
	if err != nil {
		return err
	}
	defer sm.Close()

	resolved, err := c.Config.ResolveSecrets(ctx, sm)
	if err != nil {
		return err
	}
	c.Logger.Info().Strs("secrets", resolved).Msg("Resolved credentials from Secret Manager")
	return nil
}

func (c *Container) initStore(ctx context.Context) error {
	cfg := c.Config
	if cfg.DBConnectionString != "" {
		c.Logger.Info().Str("db_port", portFromDSN(cfg.DBConnectionString)).Msg("Connecting to database")
		db, err := openDB(ctx, cfg)
		if err == nil {
			c.DB = db
			c.closers = append(c.closers, db.Close)
			c.Store = repository.NewPostgresStore(db)
			c.Logger.Info().Msg("Database connection successful")
			return nil
		}
		if cfg.IsProduction() || !cfg.AllowMemoryStore {
			return err
		}
		c.Logger.Error().Err(err).Msg("Database unreachable; falling back to in-memory store")
	} else if !cfg.AllowMemoryStore {
		return errors.New("DB_CONNECTION_STRING is not set; set ALLOW_MEMORY_STORE=true to run without a database")
	}

	c.Logger.Warn().Msg("Using in-memory store; data is lost on restart")
	c.Store = memory.NewStore()
	return nil
}

func (c *Container) initQueue(ctx context.Context) error {
	cfg := c.Config
	kind := cfg.QueueKind()
	if kind == "pgmq" && c.DB == nil {
		if cfg.QueueBackend != "" {
			return errors.New("QUEUE_BACKEND=pgmq requires a reachable database")
		}
		kind = "memory"
	}

	switch kind {
	case "pgmq":
		c.Jobs = pgmq.NewJobQueue(pgmq.New(c.DB), pgmq.JobQueueConfig{
			Queue:         cfg.DocumentQueueName,
			DeadLetter:    cfg.DocumentDeadLetterQueueName,
			VisibilitySec: cfg.DocumentVisibilityTimeoutSec,
			PollSec:       cfg.DocumentPollTimeoutSec,
			MaxMessages:   cfg.DocumentPollMaxMsg,
			BackoffMax:    time.Duration(cfg.DocumentBackoffMaxSec) * time.Second,
		}, c.Logger)
	case "pubsub":
		q, err := pubsub.NewJobQueue(ctx, cfg.GCPProjectID, cfg.PubSubDocumentTopic, cfg.PubSubDocumentSubscription, cfg.DocumentWorkerConcurrency, c.Logger)
		if err != nil {
			return err
		}
		c.closers = append(c.closers, q.Close)
		c.Jobs = q
	default:
		c.Jobs = queue.NewMemory(256, time.Duration(cfg.DocumentBackoffInitialSec)*time.Second)
	}
	c.Logger.Info().Str("backend", kind).Str("queue", c.Jobs.Name()).Msg("Document queue initialized")
	return nil
}

func (c *Container) initObjects(ctx context.Context) error {
	cfg := c.Config
	switch strings.ToLower(cfg.StorageBackend) {
	case "minio":
		store, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL, cfg.S3PublicURL, cfg.DocumentsBucket, cfg.AudioBucket)
		if err != nil {
			return c.objectsFallback(err)
		}
		c.Objects = store
	case "memory":
		return c.objectsFallback(nil)
	default:
		store, err := storage.NewS3Store(ctx, storage.S3Options{
			Endpoint:  cfg.S3URL,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return c.objectsFallback(err)
		}
		c.Objects = store
	}
	return nil
}

func (c *Container) objectsFallback(cause error) error {
	if c.Config.IsProduction() {
		if cause == nil {
			cause = errors.New("STORAGE_BACKEND=memory cannot be used in production")
		}
		return fmt.Errorf("object storage: %w", cause)
	}
	c.Logger.Warn().AnErr("cause", cause).Msg("Using in-memory object storage")
	c.Objects = storage.NewMemoryStore()
	return nil
}

func (c *Container) initVerifier(ctx context.Context) error {
	cfg := c.Config
	opts := util.ValidateOptions{Issuer: cfg.JWTIssuer, Audience: cfg.JWTAudience, Leeway: 30 * time.Second}

	var chain auth.Chain
	if cfg.SupabaseJWTSecret != "" {
		chain = append(chain, auth.NewSecretVerifier(cfg.SupabaseJWTSecret, opts))
	}
	jwksURL := cfg.SupabaseJWKSURL
	if jwksURL == "" && cfg.SupabaseURL != "" {
		jwksURL = auth.SupabaseJWKSURL(cfg.SupabaseURL)
	}
	if jwksURL != "" {
		v, err := auth.NewJWKSVerifier(ctx, jwksURL, opts)
		switch {
		case err == nil:
			chain = append(chain, v)
		case cfg.IsProduction() && len(chain) == 0:
			return err
		default:
			c.Logger.Warn().Err(err).Str("jwks_url", jwksURL).Msg("JWKS verifier unavailable")
		}
	}

	if len(chain) == 0 {
		c.Logger.Warn().Msg("No identity provider configured; bearer tokens will be rejected")
		return nil
	}
	c.Verifier = chain
	return nil
}

func (c *Container) initLimiter() {
	cfg := c.Config
	if cfg.RedisAddr == "" {
		return
	}
	limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "studyflow:ratelimit", cfg.StoryRateLimit, time.Duration(cfg.StoryRateWindowSec)*time.Second)
	if err != nil {
		c.Logger.Warn().Err(err).Msg("Rate limiter disabled")
		return
	}
	c.closers = append(c.closers, limiter.Close)
	c.Limiter = limiter
}

// newLLM returns nil when the selected provider has no key.
func (c *Container) newLLM(ctx context.Context) (llm.Client, error) {
	cfg := c.Config
	opts := llm.Options{MaxTokens: cfg.LLMMaxTokens, Temperature: cfg.LLMTemperature}
	timeout := time.Duration(cfg.LLMTimeoutSec) * time.Second

	switch strings.ToLower(cfg.LLMProvider) {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			break
		}
		opts.Model = cfg.GeminiModel
		g, err := llm.NewGemini(ctx, cfg.GeminiAPIKey, opts)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, g.Close)
		return g, nil
	default:
		if cfg.OpenRouterAPIKey == "" {
			break
		}
		opts.Model = cfg.OpenRouterModel
		return llm.NewOpenRouter(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, cfg.OpenRouterReferer, opts, timeout), nil
	}
	c.Logger.Warn().Str("provider", cfg.LLMProvider).Msg("Language model not configured; narration disabled and documents use stand-in authoring")
	return nil, nil
}

func (c *Container) initServices(client llm.Client) {
	cfg := c.Config
	store := c.Store
	logger := c.Logger

	var author service.Author = service.StandInAuthor{}
	if client != nil {
		author = service.NewLLMAuthor(client)
	}

	ttsTimeout := time.Duration(cfg.TTSTimeoutSec) * time.Second
	var primary, secondary tts.Synthesizer
	if cfg.ElevenLabsAPIKey != "" {
		primary = tts.NewElevenLabs(cfg.ElevenLabsBaseURL, cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID, cfg.ElevenLabsModelID, ttsTimeout)
	}
	if cfg.CartesiaAPIKey != "" {
		secondary = tts.NewCartesia(cfg.CartesiaBaseURL, cfg.CartesiaAPIKey, cfg.CartesiaVoiceID, cfg.CartesiaModelID, cfg.CartesiaVersion, ttsTimeout)
	}

	var cache service.Pinger
	if l, ok := c.Limiter.(*ratelimit.FixedWindowLimiter); ok {
		cache = l
	}

	c.Users = service.NewUserService(store.Users, logger)
	c.Subscriptions = service.NewSubscriptionService(c.Users, store.Subscriptions, logger)
	c.Documents = service.NewDocumentService(store.Documents, c.Users, c.Objects, cfg.DocumentsBucket, c.Jobs, service.UploadLimits{
		FreeMaxBytes:    int64(cfg.FreeUploadMaxMB) << 20,
		PremiumMaxBytes: int64(cfg.PremiumUploadMaxMB) << 20,
	}, logger)
	c.Ingestion = service.NewIngestionService(store.Documents, store.Flashcards, store.Users, c.Objects, cfg.DocumentsBucket, extract.NewRouter(), author, logger)
	c.Flashcards = service.NewFlashcardService(store.Flashcards, c.Documents, logger)
	c.StudySessions = service.NewStudySessionService(store.StudySessions, c.Documents, logger)
	c.Stories = service.NewStoryService(c.Users, store.Usage, store.Stories, client, service.StoryLimits{
		FreeStories:       cfg.FreeStoryLimit,
		FreeInputChars:    cfg.FreeInputLimit,
		PremiumInputChars: cfg.PremiumInputLimit,
	}, logger)
	c.Audio = service.NewAudioService(c.Stories, store.Stories, primary, secondary, c.Objects, cfg.AudioBucket, logger)
	c.Paddle = service.NewPaddleService(cfg.PaddleWebhookSecret, store.Users, store.Subscriptions, store.WebhookEvents, logger)
	c.Health = service.NewHealthService(store, cache, logger)
	c.DLQ = service.NewDLQService(store.DeadLetters)
}

// MaxUploadBytes is the largest body the upload route accepts.
func (c *Container) MaxUploadBytes() int64 {
	return int64(c.Config.PremiumUploadMaxMB) << 20
}

// DocumentWorker returns the worker wiring for the document queue.
func (c *Container) DocumentWorker() document.Deps {
	loops := c.Config.DocumentWorkerConcurrency
	if c.Config.QueueKind() == "pubsub" {
		// Receive fans out internally up to MaxOutstandingMessages.
		loops = 1
	}
	return document.Deps{
		Consumer:      c.Jobs,
		Ingestion:     c.Ingestion,
		DLQ:           c.DLQ,
		MaxDeliveries: c.Config.DocumentMaxDeliveries,
		Loops:         loops,
		JobTimeout:    jobTimeout(c.Config.DocumentVisibilityTimeoutSec),
	}
}

// Close releases clients in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.Warn().Err(err).Msg("Error during shutdown")
		}
	}
	c.closers = nil
}
