package csv

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	transport "github.com/gabapcia/amlchain/internal/pkg/transport/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dataset = "Sender_account,Receiver_account,Amount,Payment_currency,Is_laundering,Payment_type\n" +
	"A,B,10,UK pounds,0,Cash\n" +
	"B,C,5,UK pounds,1,Cheque\n"

func TestRead(t *testing.T) {
	t.Run("parses the header and rows", func(t *testing.T) {
		table, err := Read(strings.NewReader(dataset))
		require.NoError(t, err)

		assert.Len(t, table.Header, 6)
		require.Len(t, table.Rows, 2)
		assert.Equal(t, "A", table.Rows[0]["Sender_account"])
		assert.Equal(t, "1", table.Rows[1]["Is_laundering"])
		assert.Zero(t, table.Malformed)
	})

	t.Run("fingerprints the raw input", func(t *testing.T) {
		table, err := Read(strings.NewReader(dataset))
		require.NoError(t, err)

		sum := sha256.Sum256([]byte(dataset))
		assert.Equal(t, hex.EncodeToString(sum[:]), table.Fingerprint)
	})

	t.Run("skips lines with a wrong field count", func(t *testing.T) {
		table, err := Read(strings.NewReader("a,b\n1,2\n3\n4,5,6\n7,8\n"))
		require.NoError(t, err)

		require.Len(t, table.Rows, 2)
		assert.Equal(t, "7", table.Rows[1]["a"])
		assert.Equal(t, 2, table.Malformed)
	})

	t.Run("skips badly quoted lines", func(t *testing.T) {
		table, err := Read(strings.NewReader("a,b\nx\"y,2\n3,4\n"))
		require.NoError(t, err)

		require.Len(t, table.Rows, 1)
		assert.Equal(t, "3", table.Rows[0]["a"])
		assert.Equal(t, 1, table.Malformed)
	})

	t.Run("strips a byte order mark and header whitespace", func(t *testing.T) {
		table, err := Read(strings.NewReader("\ufeffa , b\n1,2\n"))
		require.NoError(t, err)

		assert.Equal(t, []string{"a", "b"}, table.Header)
		assert.Equal(t, "2", table.Rows[0]["b"])
	})

	t.Run("rejects a header that names a column twice", func(t *testing.T) {
		_, err := Read(strings.NewReader("Amount,Sender_account, Amount\n1,A,2\n"))

		require.ErrorIs(t, err, ErrDuplicateColumn)
		assert.Contains(t, err.Error(), `"Amount"`)
	})

	t.Run("returns ErrMissingHeader for empty input", func(t *testing.T) {
		_, err := Read(strings.NewReader(""))

		assert.ErrorIs(t, err, ErrMissingHeader)
	})

	t.Run("returns I/O errors", func(t *testing.T) {
		boom := errors.New("boom")

		_, err := Read(io.MultiReader(strings.NewReader("a,b\n1,2\n"), errReader{boom}))

		assert.ErrorIs(t, err, boom)
	})
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func TestOpen(t *testing.T) {
	client := transport.NewClient(transport.WithRetryMax(0), transport.WithTimeout(time.Second))

	t.Run("opens a local file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.csv")
		require.NoError(t, os.WriteFile(path, []byte(dataset), 0o600))

		rc, err := New(client).Open(t.Context(), path)
		require.NoError(t, err)
		defer rc.Close()

		table, err := Read(rc)
		require.NoError(t, err)
		assert.Len(t, table.Rows, 2)
	})

	t.Run("fetches a remote file", func(t *testing.T) {
		srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			_, _ = io.WriteString(w, dataset)
		}))
		defer srv.Close()

		rc, err := New(client).Open(t.Context(), srv.URL+"/data.csv")
		require.NoError(t, err)
		defer rc.Close()

		table, err := Read(rc)
		require.NoError(t, err)
		assert.Len(t, table.Rows, 2)
	})

	t.Run("returns an error for a missing file", func(t *testing.T) {
		_, err := New(client).Open(t.Context(), filepath.Join(t.TempDir(), "missing.csv"))

		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLoad(t *testing.T) {
	client := transport.NewClient(transport.WithRetryMax(0))

	t.Run("loads a local dataset", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.csv")
		require.NoError(t, os.WriteFile(path, []byte(dataset+"broken\n"), 0o600))

		table, err := New(client).Load(t.Context(), path)
		require.NoError(t, err)

		assert.Len(t, table.Rows, 2)
		assert.Equal(t, 1, table.Malformed)
		assert.Len(t, table.Fingerprint, 64)
	})

	t.Run("returns ErrMissingHeader for an empty file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "empty.csv")
		require.NoError(t, os.WriteFile(path, nil, 0o600))

		_, err := New(client).Load(t.Context(), path)

		assert.ErrorIs(t, err, ErrMissingHeader)
	})
}
