package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nandira/taksir/internal/domain/model"
)

// CSVSink appends result rows to a local delimited file. The header row
// is written exactly once, on the first append to a missing or empty
// file. Clear truncates to zero bytes; the header reappears on the next
// append, not before.
type CSVSink struct {
	mu   sync.Mutex // serializes writes within this process only
	path string
}

// NewCSVSink creates a sink writing to path. The directory is created on
// first append.
func NewCSVSink(path string) *CSVSink {
	return &CSVSink{path: path}
}

// Path returns the sink's file path.
func (s *CSVSink) Path() string {
	return s.path
}

// Append writes one result row, prefixed by the header when the file is
// new or empty.
func (s *CSVSink) Append(ctx context.Context, rec model.PredictionResult) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrLocal, ctx.Err())
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create dir: %w", ErrLocal, err)
		}
	}

	needHeader, err := s.needsHeader()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("%w: open: %w", ErrLocal, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if needHeader {
		if err := w.Write(model.Columns); err != nil {
			return fmt.Errorf("%w: write header: %w", ErrLocal, err)
		}
	}
	if err := w.Write(rec.Row()); err != nil {
		return fmt.Errorf("%w: write row: %w", ErrLocal, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%w: flush: %w", ErrLocal, err)
	}
	return nil
}

// Clear truncates the file to empty. A missing file counts as cleared.
func (s *CSVSink) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Truncate(s.path, 0); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: truncate: %w", ErrLocal, err)
	}
	return nil
}

func (s *CSVSink) needsHeader() (bool, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("%w: stat: %w", ErrLocal, err)
	}
	return info.Size() == 0, nil
}
