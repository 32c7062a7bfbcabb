package objectstore

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSim-25-26J-441/research-doc-backend/config"
)

type recorded struct {
	method      string
	path        string
	contentType string
	body        []byte
}

func fakeS3(t *testing.T, status int) (*httptest.Server, func() []recorded) {
	var (
		mu   sync.Mutex
		reqs []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recorded{r.Method, r.URL.Path, r.Header.Get("Content-Type"), body})
		mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), reqs...)
	}
}

func newArchive(t *testing.T, endpoint string) *S3Archive {
	a, err := NewS3Archive(context.Background(), config.ExportConfig{
		ArchiveBucket:   "exports-bucket",
		Region:          "us-east-1",
		Endpoint:        endpoint,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	})
	require.NoError(t, err)
	a.now = func() time.Time { return time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC) }
	return a
}

func TestS3Archive_Put(t *testing.T) {
	srv, requests := fakeS3(t, http.StatusOK)
	a := newArchive(t, srv.URL)

	key, err := a.Put(context.Background(), "owner-1", "rsch-1", "Study.pdf", "application/pdf", []byte("%PDF-1.3 data"))
	require.NoError(t, err)
	assert.Equal(t, "exports/owner-1/rsch-1/20250301T123000Z-Study.pdf", key)

	reqs := requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].method)
	assert.Equal(t, "/exports-bucket/"+key, reqs[0].path)
	assert.Equal(t, "application/pdf", reqs[0].contentType)
	assert.Equal(t, "%PDF-1.3 data", string(reqs[0].body))
}

func TestS3Archive_PutError(t *testing.T) {
	srv, _ := fakeS3(t, http.StatusForbidden)
	a := newArchive(t, srv.URL)

	_, err := a.Put(context.Background(), "owner-1", "rsch-1", "Study.pdf", "application/pdf", []byte("x"))
	assert.Error(t, err)
}

func TestNewS3Archive_RequiresBucket(t *testing.T) {
	_, err := NewS3Archive(context.Background(), config.ExportConfig{Region: "us-east-1"})
	assert.Error(t, err)
}
