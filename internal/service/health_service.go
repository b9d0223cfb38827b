package service

import (
	"context"
	"time"

	"studyflow/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Health status values.
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
	HealthError    = "error"
)

type DatabaseHealth struct {
	Configured bool    `json:"configured"`
	Connected  bool    `json:"connected"`
	Error      *string `json:"error"`
}

type CacheHealth struct {
	Configured bool    `json:"configured"`
	Connected  bool    `json:"connected"`
	Error      *string `json:"error,omitempty"`
}

type HealthReport struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Database  DatabaseHealth `json:"database"`
	Store     string         `json:"store"`
	Cache     *CacheHealth   `json:"cache,omitempty"`
}

// Pinger is satisfied by optional dependencies that can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthService interface {
	Check(ctx context.Context) *HealthReport
}

type healthService struct {
	kind    string
	checker repository.HealthChecker
	cache   Pinger
	timeout time.Duration
	logger  zerolog.Logger
}

// NewHealthService creates a HealthService. cache may be nil.
func NewHealthService(store *repository.Store, cache Pinger, logger zerolog.Logger) HealthService {
	return &healthService{
		kind:    store.Kind,
		checker: store.Health,
		cache:   cache,
		timeout: 5 * time.Second,
		logger:  logger.With().Str("service", "HealthService").Logger(),
	}
}

func (s *healthService) Check(ctx context.Context) *HealthReport {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report := &HealthReport{
		Status:    HealthOK,
		Timestamp: time.Now().UTC(),
		Store:     s.kind,
		Database:  DatabaseHealth{Configured: s.kind == repository.KindPostgres},
	}
	if s.cache != nil {
		report.Cache = &CacheHealth{Configured: true}
	}

	var dbErr, tableErr, cacheErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if dbErr = s.checker.Ping(gctx); dbErr != nil {
			return nil
		}
		tableErr = s.checker.ProbeTables(gctx)
		return nil
	})
	if s.cache != nil {
		g.Go(func() error {
			cacheErr = s.cache.Ping(gctx)
			return nil
		})
	}
	_ = g.Wait()

	switch {
	case dbErr != nil:
		report.Status = HealthError
		msg := dbErr.Error()
		report.Database.Error = &msg
		s.logger.Error().Err(dbErr).Msg("Database ping failed")
	case tableErr != nil:
		report.Status = HealthDegraded
		report.Database.Connected = true
		msg := "Tables missing or inaccessible"
		report.Database.Error = &msg
		s.logger.Warn().Err(tableErr).Msg("Database table probe failed")
	default:
		report.Database.Connected = true
	}
	if s.kind == repository.KindMemory {
		report.Database.Connected = false
		if report.Status == HealthOK {
			report.Status = HealthDegraded
		}
	}
	if cacheErr != nil {
		msg := cacheErr.Error()
		report.Cache.Error = &msg
		s.logger.Warn().Err(cacheErr).Msg("Redis ping failed")
	} else if report.Cache != nil {
		report.Cache.Connected = true
	}
	return report
}

// StatusCode maps a report status to its HTTP status.
func (r *HealthReport) StatusCode() int {
	switch r.Status {
	case HealthOK:
		return 200
	case HealthDegraded:
		return 503
	}
	return 500
}
