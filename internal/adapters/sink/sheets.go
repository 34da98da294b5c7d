package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/nandira/taksir/internal/domain/model"
)

// Default remote client tuning.
const (
	defaultRequestsPerSec  = 2
	defaultMaxElapsedRetry = 30 * time.Second
)

// SheetSink mirrors result rows to one worksheet of a Google Sheets
// spreadsheet. All calls are rate limited and retried with exponential
// backoff; the worksheet keeps a header row that Clear never removes.
type SheetSink struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
	sheetID       int64
	limiter       *rate.Limiter
	maxElapsed    time.Duration
}

// SheetOption applies a configuration option to the SheetSink.
type SheetOption func(*SheetSink)

// WithWorksheet pins the sink to a named worksheet instead of the first.
func WithWorksheet(name string) SheetOption {
	return func(s *SheetSink) {
		if name != "" {
			s.worksheet = name
		}
	}
}

// WithRateLimit caps remote calls per second.
func WithRateLimit(perSec int) SheetOption {
	return func(s *SheetSink) {
		if perSec > 0 {
			s.limiter = rate.NewLimiter(rate.Limit(perSec), perSec)
		}
	}
}

// WithMaxRetryElapsed bounds the total retry time per call.
func WithMaxRetryElapsed(d time.Duration) SheetOption {
	return func(s *SheetSink) {
		if d > 0 {
			s.maxElapsed = d
		}
	}
}

// NewSheetSink connects to the spreadsheet using a service-account
// credentials file and resolves the target worksheet, failing fast when
// the spreadsheet is unreachable.
func NewSheetSink(ctx context.Context, spreadsheetID, credentialsPath string, opts ...SheetOption) (*SheetSink, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: create client: %w", ErrRemote, err)
	}
	return newSheetSink(ctx, svc, spreadsheetID, opts...)
}

// newSheetSink wires an already-built service; split out so tests can
// inject a service backed by a fake HTTP transport.
func newSheetSink(ctx context.Context, svc *sheets.Service, spreadsheetID string, opts ...SheetOption) (*SheetSink, error) {
	s := &SheetSink{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		limiter:       rate.NewLimiter(rate.Limit(defaultRequestsPerSec), defaultRequestsPerSec),
		maxElapsed:    defaultMaxElapsedRetry,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.resolveWorksheet(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// resolveWorksheet looks up the worksheet's numeric id (required by the
// row-delete call) and falls back to the first worksheet when none was
// configured.
func (s *SheetSink) resolveWorksheet(ctx context.Context) error {
	var meta *sheets.Spreadsheet
	err := s.call(ctx, func() error {
		var err error
		meta, err = s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: fetch spreadsheet: %w", ErrRemote, err)
	}
	if len(meta.Sheets) == 0 {
		return fmt.Errorf("%w: spreadsheet %s has no worksheets", ErrRemote, s.spreadsheetID)
	}
	for _, sh := range meta.Sheets {
		if s.worksheet == "" || sh.Properties.Title == s.worksheet {
			s.worksheet = sh.Properties.Title
			s.sheetID = sh.Properties.SheetId
			return nil
		}
	}
	return fmt.Errorf("%w: worksheet %q not found", ErrRemote, s.worksheet)
}

// Append appends one row after the current data. The worksheet keeps a
// permanent header row (Clear never deletes it), so rows go straight in.
func (s *SheetSink) Append(ctx context.Context, rec model.PredictionResult) error {
	values := [][]interface{}{toCells(rec.Row())}
	err := s.call(ctx, func() error {
		_, err := s.svc.Spreadsheets.Values.
			Append(s.spreadsheetID, s.worksheet, &sheets.ValueRange{Values: values}).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: append row: %w", ErrRemote, err)
	}
	return nil
}

// ReadAll returns every data row in sheet order, header excluded.
func (s *SheetSink) ReadAll(ctx context.Context) ([]model.PredictionResult, error) {
	rows, err := s.readRaw(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	results := make([]model.PredictionResult, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if rec, ok := model.ResultFromRow(toStrings(row)); ok {
			results = append(results, rec)
		}
	}
	return results, nil
}

// Clear deletes every data row, keeping the header.
func (s *SheetSink) Clear(ctx context.Context) error {
	rows, err := s.readRaw(ctx)
	if err != nil {
		return err
	}
	if len(rows) <= 1 {
		return nil
	}
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    s.sheetID,
					Dimension:  "ROWS",
					StartIndex: 1, // keep the header row
					EndIndex:   int64(len(rows)),
				},
			},
		}},
	}
	err = s.call(ctx, func() error {
		_, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: delete rows: %w", ErrRemote, err)
	}
	return nil
}

func (s *SheetSink) readRaw(ctx context.Context) ([][]interface{}, error) {
	var resp *sheets.ValueRange
	err := s.call(ctx, func() error {
		var err error
		resp, err = s.svc.Spreadsheets.Values.
			Get(s.spreadsheetID, s.worksheet).
			Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: read rows: %w", ErrRemote, err)
	}
	return resp.Values, nil
}

// call runs one remote operation behind the rate limiter with
// exponential-backoff retries.
func (s *SheetSink) call(ctx context.Context, op func() error) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	strategy := backoff.NewExponentialBackOff()
	strategy.MaxElapsedTime = s.maxElapsed
	return backoff.Retry(op, backoff.WithContext(strategy, ctx))
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprint(v)
	}
	return out
}
