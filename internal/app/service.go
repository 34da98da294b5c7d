// Package service provides the core business service that implements
// the dependencies required by the HTTP handlers: the estimation
// pipeline, the per-session result ledger, and the dual result sinks.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nandira/taksir/internal/adapters/session"
	"github.com/nandira/taksir/internal/adapters/sink"
	"github.com/nandira/taksir/internal/domain/encoder"
	"github.com/nandira/taksir/internal/domain/estimate"
	"github.com/nandira/taksir/internal/domain/model"
	"github.com/nandira/taksir/internal/domain/regression"
	"github.com/nandira/taksir/pkg/logger"
	"github.com/nandira/taksir/pkg/metrics"
)

// estimator runs a raw form submission through the pipeline.
type estimator interface {
	Estimate(ctx context.Context, raw model.RawLineItem) (model.PredictionResult, error)
}

// resultStore fans finalized results out to the persistent sinks.
type resultStore interface {
	Append(ctx context.Context, rec model.PredictionResult)
	ReadAll(ctx context.Context) ([]model.PredictionResult, error)
	Clear(ctx context.Context)
}

// sessionLedger keeps the per-token working set of results.
type sessionLedger interface {
	Results(ctx context.Context, token string) ([]model.PredictionResult, error)
	Replace(ctx context.Context, token string, results []model.PredictionResult) error
	Append(ctx context.Context, token string, rec model.PredictionResult) error
	DeleteAt(ctx context.Context, token string, i int) error
	Clear(ctx context.Context, token string) error
	ProjectInfo(ctx context.Context, token string) (model.ProjectInfo, error)
	SaveProjectInfo(ctx context.Context, token string, info model.ProjectInfo) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// Service implements the handler dependencies for the estimator app.
type Service struct {
	mu sync.RWMutex

	// Core components
	est      estimator
	store    resultStore
	sessions sessionLedger

	// Configuration
	modelPath       string
	encodersPath    string
	csvPath         string
	sessionDBPath   string
	spreadsheetID   string
	worksheet       string
	credentialsPath string
	sheetRateLimit  int
	bounds          estimate.Bounds

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithArtifacts sets the model and encoder artifact paths.
func WithArtifacts(modelPath, encodersPath string) Option {
	return func(s *Service) {
		if modelPath != "" {
			s.modelPath = modelPath
		}
		if encodersPath != "" {
			s.encodersPath = encodersPath
		}
	}
}

// WithCSVPath sets the local result file path.
func WithCSVPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.csvPath = path
		}
	}
}

// WithSessionDBPath sets the SQLite file backing the session ledger.
func WithSessionDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.sessionDBPath = path
		}
	}
}

// WithSpreadsheet points the remote sink at a spreadsheet and worksheet.
// An empty worksheet selects the first one.
func WithSpreadsheet(id, worksheet string) Option {
	return func(s *Service) {
		s.spreadsheetID = id
		s.worksheet = worksheet
	}
}

// WithCredentialsPath sets the service-account key for the remote sink.
func WithCredentialsPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.credentialsPath = path
		}
	}
}

// WithSheetRateLimit caps remote sheet calls per second.
func WithSheetRateLimit(perSec int) Option {
	return func(s *Service) {
		if perSec > 0 {
			s.sheetRateLimit = perSec
		}
	}
}

// WithBounds overrides the plausibility-correction thresholds.
func WithBounds(b estimate.Bounds) Option {
	return func(s *Service) {
		s.bounds = b
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithEstimator injects a pre-built estimator, replacing artifact loading.
func WithEstimator(e estimator) Option {
	return func(s *Service) {
		s.est = e
	}
}

// WithResultStore injects a pre-built result store, replacing sink setup.
func WithResultStore(store resultStore) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithSessionLedger injects a pre-built session ledger.
func WithSessionLedger(ledger sessionLedger) Option {
	return func(s *Service) {
		s.sessions = ledger
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		modelPath:      "artifacts/model.json",
		encodersPath:   "artifacts/encoders.json",
		csvPath:        "hasil_prediksi.csv",
		sessionDBPath:  "sessions.db",
		sheetRateLimit: 2,
		bounds:         estimate.DefaultBounds(),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads the artifacts and wires the stores. Components injected via
// options are kept as-is; everything else is built here.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting estimator service...")

	if s.est == nil {
		bank, err := encoder.Load(s.encodersPath)
		if err != nil {
			return err
		}
		mdl, err := regression.Load(s.modelPath)
		if err != nil {
			return err
		}
		s.est = estimate.New(bank, mdl, estimate.WithBounds(s.bounds))
		s.logger.Info(ctx, "artifacts loaded",
			logger.String("model", s.modelPath),
			logger.String("encoders", s.encodersPath),
			logger.Int("features", mdl.FeatureCount()),
		)
	}

	if s.sessions == nil {
		ledger, err := session.Open(s.sessionDBPath)
		if err != nil {
			return err
		}
		s.sessions = ledger
	}

	if s.store == nil {
		remote, err := sink.NewSheetSink(ctx, s.spreadsheetID, s.credentialsPath,
			sink.WithWorksheet(s.worksheet),
			sink.WithRateLimit(s.sheetRateLimit),
		)
		if err != nil {
			return err
		}
		s.store = sink.NewStore(sink.NewCSVSink(s.csvPath), remote,
			sink.WithLogger(s.logger),
		)
	}

	s.started = true
	s.logger.Info(ctx, "estimator service started",
		logger.String("csvPath", s.csvPath),
		logger.String("spreadsheetID", s.spreadsheetID),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping estimator service...")

	if s.sessions != nil {
		if err := s.sessions.Close(); err != nil {
			s.logger.Error(context.Background(), "session ledger close failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "estimator service stopped")
}

// Results returns the session's ledger. An empty ledger is seeded once
// from the remote sink so a fresh session starts from the shared
// history; a failed seed degrades to an empty ledger instead of failing
// the page, and the returned warning carries the user-visible message.
func (s *Service) Results(ctx context.Context, token string) ([]model.PredictionResult, string, error) {
	results, err := s.sessions.Results(ctx, token)
	if err != nil {
		return nil, "", err
	}
	if len(results) > 0 {
		metrics.RecordLedgerSize(len(results))
		return results, "", nil
	}

	seeded, err := s.store.ReadAll(ctx)
	if err != nil {
		metrics.RecordSeedError()
		s.logger.Warn(ctx, "seeding ledger from remote failed, starting empty",
			logger.Error(err),
		)
		return nil, "Gagal memuat dari Google Sheets: " + err.Error(), nil
	}
	if len(seeded) == 0 {
		return nil, "", nil
	}
	if err := s.sessions.Replace(ctx, token, seeded); err != nil {
		return nil, "", err
	}
	metrics.RecordSeed()
	metrics.RecordLedgerSize(len(seeded))
	s.logger.Info(ctx, "ledger seeded from remote",
		logger.Int("rows", len(seeded)),
	)
	return seeded, "", nil
}

// Estimate runs the pipeline and, on success, records the result in the
// session ledger and both sinks. On any pipeline error nothing is stored.
func (s *Service) Estimate(ctx context.Context, token string, raw model.RawLineItem) (model.PredictionResult, error) {
	start := time.Now()
	rec, err := s.est.Estimate(ctx, raw)
	if err != nil {
		switch {
		case errors.Is(err, estimate.ErrValidation):
			metrics.RecordValidationError()
		case errors.Is(err, estimate.ErrModel):
			metrics.RecordModelError()
		}
		return model.PredictionResult{}, err
	}
	metrics.RecordEstimate()
	metrics.RecordPredictionLatency(float64(time.Since(start).Milliseconds()))

	if err := s.sessions.Append(ctx, token, rec); err != nil {
		return model.PredictionResult{}, err
	}
	s.store.Append(ctx, rec)
	return rec, nil
}

// DeleteAt removes one row from the session ledger. The sinks keep their
// copy; only Clear propagates removal to them.
func (s *Service) DeleteAt(ctx context.Context, token string, i int) error {
	return s.sessions.DeleteAt(ctx, token, i)
}

// ClearAll empties the session ledger and both sinks.
func (s *Service) ClearAll(ctx context.Context, token string) error {
	if err := s.sessions.Clear(ctx, token); err != nil {
		return err
	}
	s.store.Clear(ctx)
	return nil
}

// ProjectInfo returns the session's project metadata.
func (s *Service) ProjectInfo(ctx context.Context, token string) (model.ProjectInfo, error) {
	return s.sessions.ProjectInfo(ctx, token)
}

// SaveProjectInfo stores the session's project metadata.
func (s *Service) SaveProjectInfo(ctx context.Context, token string, info model.ProjectInfo) error {
	return s.sessions.SaveProjectInfo(ctx, token, info)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":       s.started,
		"csvPath":       s.csvPath,
		"spreadsheetID": s.spreadsheetID,
	}

	if s.started {
		if n, err := s.sessions.Count(context.Background()); err == nil {
			stats["sessions"] = n
			metrics.UpdateSessionCount(n)
		}
	}

	return stats
}
