// Package sink provides the persistent write targets for finalized
// results: a local CSV file and a remote Google Sheets worksheet. The two
// backends are independent at-least-once sinks; nothing reconciles them.
package sink

import (
	"context"

	"github.com/nandira/taksir/internal/domain/model"
	"github.com/nandira/taksir/pkg/logger"
	"github.com/nandira/taksir/pkg/metrics"
)

// Appender appends one finalized result row.
type Appender interface {
	Append(ctx context.Context, rec model.PredictionResult) error
}

// Reader reads back every stored result row, header excluded, in stored
// order. Only the remote backend implements a useful read; it exists
// solely to seed an empty session ledger.
type Reader interface {
	ReadAll(ctx context.Context) ([]model.PredictionResult, error)
}

// Clearer removes all stored result rows.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Store fans writes out to the local and remote sinks. Writes and clears
// are best-effort per backend: a failure on one side is logged and
// counted, never blocks the other side, and never fails the request.
// There is no atomicity across the two sinks and no single-row delete on
// either; both gaps are accepted.
type Store struct {
	local  localSink
	remote remoteSink
	log    logger.Logger
}

type localSink interface {
	Appender
	Clearer
}

type remoteSink interface {
	Appender
	Reader
	Clearer
}

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithLogger sets a custom logger for the store.
func WithLogger(log logger.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// NewStore builds the dual-backend store.
func NewStore(local localSink, remote remoteSink, opts ...Option) *Store {
	s := &Store{local: local, remote: remote}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	return s
}

// Append mirrors the result to both backends.
func (s *Store) Append(ctx context.Context, rec model.PredictionResult) {
	if err := s.local.Append(ctx, rec); err != nil {
		metrics.RecordSinkError("local", "append")
		s.log.Error(ctx, "local sink append failed", logger.Error(err))
	} else {
		metrics.RecordSinkAppend("local")
	}
	if err := s.remote.Append(ctx, rec); err != nil {
		metrics.RecordSinkError("remote", "append")
		s.log.Error(ctx, "remote sink append failed", logger.Error(err))
	} else {
		metrics.RecordSinkAppend("remote")
	}
}

// ReadAll reads the remote backend; the local file is a write target only.
func (s *Store) ReadAll(ctx context.Context) ([]model.PredictionResult, error) {
	results, err := s.remote.ReadAll(ctx)
	if err != nil {
		metrics.RecordSinkError("remote", "read")
		return nil, err
	}
	return results, nil
}

// Clear empties both backends, best-effort.
func (s *Store) Clear(ctx context.Context) {
	if err := s.local.Clear(ctx); err != nil {
		metrics.RecordSinkError("local", "clear")
		s.log.Error(ctx, "local sink clear failed", logger.Error(err))
	}
	if err := s.remote.Clear(ctx); err != nil {
		metrics.RecordSinkError("remote", "clear")
		s.log.Error(ctx, "remote sink clear failed", logger.Error(err))
	}
}
