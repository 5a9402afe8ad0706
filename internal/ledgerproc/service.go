// Package ledgerproc builds ledgers from dataset locations, combining the
// dataset source, the ingestion pipeline and the build cache.
package ledgerproc

import (
	"context"
	"fmt"

	"github.com/gabapcia/amlchain/internal/ingest"
	"github.com/gabapcia/amlchain/internal/ledger"
	"github.com/gabapcia/amlchain/internal/ledgercache"
	"github.com/gabapcia/amlchain/internal/pkg/logger"
)

// Table is a dataset loaded from a location.
type Table struct {
	Fingerprint string // identifies the raw content
	Rows        []ingest.Row
	Malformed   int // lines the reader could not split into a row
}

// Source loads datasets.
type Source interface {
	Load(ctx context.Context, location string) (Table, error)
}

// Cache memoizes built ledgers by key.
type Cache interface {
	GetOrBuild(ctx context.Context, key string, build ledgercache.BuildFunc) (*ledger.Ledger, bool, error)
}

// Request describes a build.
type Request struct {
	Location  string
	BatchSize int
	MaxRows   int // zero means every row
}

// Result is a built ledger and how it was obtained.
type Result struct {
	Ledger      *ledger.Ledger
	Report      *ingest.Report // non-nil exactly when Cached is false
	Fingerprint string
	Rows        int
	Malformed   int
	Cached      bool // false only for the call that ran the ingestion
}

// Service builds ledgers.
type Service interface {
	// Build loads the dataset at req.Location and returns its ledger, reusing
	// a previous build of identical content and parameters when available.
	//
	// Rows that fail to parse are skipped and counted in the report. Errors
	// are returned only when the dataset cannot be loaded or the parameters
	// are invalid (ingest.ErrInvalidBatchSize).
	Build(ctx context.Context, req Request) (Result, error)
}

type service struct {
	source  Source
	cache   Cache
	options []ingest.Option
}

var _ Service = (*service)(nil)

// New creates a Service. options are applied to every ingestion pipeline
// after the row cap of the request.
func New(source Source, cache Cache, options ...ingest.Option) *service {
	return &service{
		source:  source,
		cache:   cache,
		options: options,
	}
}

func (s *service) Build(ctx context.Context, req Request) (Result, error) {
	pipeline, err := ingest.New(req.BatchSize, append([]ingest.Option{ingest.WithMaxRows(req.MaxRows)}, s.options...)...)
	if err != nil {
		return Result{}, err
	}

	table, err := s.source.Load(ctx, req.Location)
	if err != nil {
		return Result{}, fmt.Errorf("load %q: %w", req.Location, err)
	}

	key := ledgercache.Key(table.Fingerprint, pipeline.BatchSize(), pipeline.MaxRows())

	var report *ingest.Report
	l, cached, err := s.cache.GetOrBuild(ctx, key, func(ctx context.Context) (*ledger.Ledger, error) {
		l, r, err := pipeline.Ingest(ctx, table.Rows)
		if err != nil {
			return nil, err
		}

		report = &r
		return l, nil
	})
	if err != nil {
		return Result{}, err
	}

	logger.Info(ctx, "ledger ready",
		"location", req.Location,
		"fingerprint", table.Fingerprint,
		"blocks", l.Len(),
		"cached", cached,
	)

	return Result{
		Ledger:      l,
		Report:      report,
		Fingerprint: table.Fingerprint,
		Rows:        len(table.Rows),
		Malformed:   table.Malformed,
		Cached:      cached,
	}, nil
}
