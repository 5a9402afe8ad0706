// Package ingest turns raw tabular rows into a ledger.
//
// Rows are parsed one at a time; rows that cannot be parsed are counted and
// skipped, never reported as errors. Valid transactions accumulate into a
// pending batch that is appended to the ledger whenever it reaches the batch
// size, and once more at the end for any remainder.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gabapcia/amlchain/internal/ledger"
	"github.com/gabapcia/amlchain/internal/pkg/logger"
	"github.com/gabapcia/amlchain/internal/pkg/x/chflow"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/gabapcia/amlchain/internal/ingest"

const (
	// DefaultBatchSize is the number of transactions sealed into each block
	// when no other size is configured.
	DefaultBatchSize = 100

	// DefaultSkippedRowsLimit is how many skip reasons a Report keeps.
	DefaultSkippedRowsLimit = 20
)

// ErrInvalidBatchSize is returned by New when the batch size is not positive.
var ErrInvalidBatchSize = errors.New("batch size must be a positive integer")

// Pipeline builds ledgers from rows. A Pipeline holds no per-run state and
// may be used by several goroutines at once.
type Pipeline struct {
	batchSize    int
	maxRows      int
	columns      Columns
	skippedLimit int
	clock        func() time.Time

	tracer        trace.Tracer
	rowsCounter   metric.Int64Counter
	blocksCounter metric.Int64Counter
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMaxRows caps how many input rows are considered. Zero or a negative
// value means no cap.
func WithMaxRows(n int) Option {
	return func(p *Pipeline) {
		p.maxRows = max(n, 0)
	}
}

// WithColumns overrides DefaultColumns.
func WithColumns(c Columns) Option {
	return func(p *Pipeline) {
		p.columns = c
	}
}

// WithSkippedRowsLimit sets how many skip reasons a Report retains.
// Default: DefaultSkippedRowsLimit.
func WithSkippedRowsLimit(n int) Option {
	return func(p *Pipeline) {
		p.skippedLimit = max(n, 0)
	}
}

// WithClock sets the time source for reports and block timestamps.
func WithClock(clock func() time.Time) Option {
	return func(p *Pipeline) {
		p.clock = clock
	}
}

// New creates a Pipeline that seals batchSize transactions per block.
func New(batchSize int, opts ...Option) (*Pipeline, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}

	p := &Pipeline{
		batchSize:    batchSize,
		columns:      DefaultColumns,
		skippedLimit: DefaultSkippedRowsLimit,
		clock:        time.Now,
		tracer:       otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(p)
	}

	meter := otel.Meter(instrumentationName)

	var err error
	p.rowsCounter, err = meter.Int64Counter("amlchain.ingest.rows",
		metric.WithDescription("Input rows processed by outcome."),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, err
	}

	p.blocksCounter, err = meter.Int64Counter("amlchain.ledger.blocks",
		metric.WithDescription("Blocks appended to ledgers."),
		metric.WithUnit("{block}"),
	)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// BatchSize returns the configured batch size.
func (p *Pipeline) BatchSize() int {
	return p.batchSize
}

// MaxRows returns the configured row cap, zero meaning none.
func (p *Pipeline) MaxRows() int {
	return p.maxRows
}

// Ingest builds a ledger from rows.
func (p *Pipeline) Ingest(ctx context.Context, rows []Row) (*ledger.Ledger, Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	return p.IngestStream(ctx, chflow.Emit(ctx, rows))
}

// IngestStream builds a ledger from rows received on a channel until it is
// closed or the row cap is reached. It returns ctx.Err() if ctx is canceled
// first; the partial ledger is discarded.
func (p *Pipeline) IngestStream(ctx context.Context, rows <-chan Row) (*ledger.Ledger, Report, error) {
	ctx, span := p.tracer.Start(ctx, "ingest.Ingest", trace.WithAttributes(
		attribute.Int("ingest.batch_size", p.batchSize),
		attribute.Int("ingest.max_rows", p.maxRows),
	))
	defer span.End()

	var (
		l       = ledger.New(ledger.WithClock(p.clock))
		report  = newReport(p.clock())
		pending = make([]ledger.Transaction, 0, p.batchSize)
	)

	flush := func() {
		if _, ok := l.Append(pending); ok {
			report.Blocks++
			p.blocksCounter.Add(ctx, 1)
		}
		pending = pending[:0]
	}

	for p.maxRows == 0 || report.RowsRead < p.maxRows {
		row, ok := chflow.Receive(ctx, rows)
		if !ok {
			if err := ctx.Err(); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "ingestion canceled")
				return nil, report, err
			}
			break
		}

		result := ParseRow(report.RowsRead+1, row, p.columns)
		report.record(result, p.skippedLimit)

		if !result.OK() {
			p.rowsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "skipped")))
			logger.Debug(ctx, "row skipped", "run_id", report.RunID, "line", result.Line, "error", result.Err)
			continue
		}

		p.rowsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "accepted")))

		pending = append(pending, result.Transaction)
		if len(pending) == p.batchSize {
			flush()
		}
	}
	flush()

	report.finish(p.clock())

	span.SetAttributes(
		attribute.String("ingest.run_id", report.RunID),
		attribute.Int("ingest.rows_accepted", report.RowsAccepted),
		attribute.Int("ingest.rows_skipped", report.RowsSkipped),
		attribute.Int("ingest.blocks", report.Blocks),
	)

	logger.Info(ctx, "ledger built",
		"run_id", report.RunID,
		"rows_read", report.RowsRead,
		"rows_accepted", report.RowsAccepted,
		"rows_skipped", report.RowsSkipped,
		"blocks", report.Blocks,
	)

	return l, report, nil
}
