// Package csv reads transaction datasets from delimited text files, either
// on the local filesystem or behind an HTTP(S) URL.
package csv

import (
	"context"
	"crypto/sha256"
	stdcsv "encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabapcia/amlchain/internal/ingest"
	"github.com/gabapcia/amlchain/internal/ledgerproc"
	transport "github.com/gabapcia/amlchain/internal/pkg/transport/http"
	"github.com/gabapcia/amlchain/internal/pkg/types"

	"github.com/hashicorp/go-retryablehttp"
)

var (
	// ErrMissingHeader is returned when the input has no header row.
	ErrMissingHeader = errors.New("input has no header row")

	// ErrDuplicateColumn is returned when the header names a column twice.
	ErrDuplicateColumn = errors.New("duplicate column in header")
)

// Table is a parsed dataset.
type Table struct {
	Fingerprint string       // hex SHA-256 of the raw input
	Header      []string
	Rows        []ingest.Row
	Malformed   int // lines dropped for a wrong field count or bad quoting
}

type source struct {
	client *retryablehttp.Client
}

var _ ledgerproc.Source = new(source)

// New returns a source that fetches remote locations with client.
func New(client *retryablehttp.Client) *source {
	return &source{
		client: client,
	}
}

// Open returns a reader for location, which is either a filesystem path or
// an http(s) URL.
func (s *source) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if isRemote(location) {
		return transport.Fetch(ctx, s.client, location)
	}

	return os.Open(location)
}

// Load implements ledgerproc.Source.
func (s *source) Load(ctx context.Context, location string) (ledgerproc.Table, error) {
	rc, err := s.Open(ctx, location)
	if err != nil {
		return ledgerproc.Table{}, err
	}
	defer rc.Close()

	table, err := Read(rc)
	if err != nil {
		return ledgerproc.Table{}, err
	}

	return ledgerproc.Table{
		Fingerprint: table.Fingerprint,
		Rows:        table.Rows,
		Malformed:   table.Malformed,
	}, nil
}

func isRemote(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// Read consumes r entirely and parses it as CSV with a header row.
//
// Lines whose field count differs from the header or that are badly quoted
// are counted in Table.Malformed and skipped. Read fails only on I/O errors
// or when the header is missing or names a column twice.
func Read(r io.Reader) (Table, error) {
	h := sha256.New()

	reader := stdcsv.NewReader(io.TeeReader(r, h))
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Table{}, ErrMissingHeader
	}
	if err != nil {
		return Table{}, fmt.Errorf("read header: %w", err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	seen := types.NewSet[string]()
	for _, column := range header {
		if seen.Has(column) {
			return Table{}, fmt.Errorf("%w: %q", ErrDuplicateColumn, column)
		}
		seen.Add(column)
	}

	table := Table{Header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var parseErr *stdcsv.ParseError
		if errors.As(err, &parseErr) {
			table.Malformed++
			continue
		}
		if err != nil {
			return Table{}, err
		}

		row := make(ingest.Row, len(header))
		for i, column := range header {
			row[column] = record[i]
		}
		table.Rows = append(table.Rows, row)
	}

	table.Fingerprint = hex.EncodeToString(h.Sum(nil))
	return table, nil
}
