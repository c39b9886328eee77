package artifact

import (
	"os"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/burfisher/internal/trafficstore"
)

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	writer, err := NewWriter(t.TempDir(), hclog.New(&hclog.LoggerOptions{Level: hclog.Off}))
	require.NoError(t, err)
	return writer
}

func TestWriteArtifactPayload(t *testing.T) {
	writer := newTestWriter(t)

	rec := &trafficstore.Record{
		ID:       "req-1",
		Request:  []byte("GET /secret HTTP/1.1\nHost: example.com"),
		Response: []byte("HTTP/1.1 200 OK\n\ntoken=abc"),
	}
	path, err := writer.Write(rec)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "GET /secret HTTP/1.1\nHost: example.com\n\nHTTP/1.1 200 OK\n\ntoken=abc", string(data))
}

func TestWriteArtifactWithoutResponse(t *testing.T) {
	writer := newTestWriter(t)

	path, err := writer.Write(&trafficstore.Record{ID: "req-1", Request: []byte("GET / HTTP/1.1")})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "GET / HTTP/1.1\n\n", string(data))
}

func TestWriteArtifactKeysNeverCollide(t *testing.T) {
	writer := newTestWriter(t)
	rec := &trafficstore.Record{ID: "same-id", Request: []byte("GET / HTTP/1.1")}

	const workers = 32
	paths := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path, err := writer.Write(rec)
			assert.NoError(t, err)
			paths[i] = path
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, workers)
	for _, path := range paths {
		_, dup := seen[path]
		assert.False(t, dup, "duplicate artifact path %q", path)
		seen[path] = struct{}{}
	}
}

func TestCleanupRemovesArtifacts(t *testing.T) {
	writer := newTestWriter(t)

	var paths []string
	for _, id := range []string{"a", "b", "c"} {
		path, err := writer.Write(&trafficstore.Record{ID: id, Request: []byte("GET / HTTP/1.1")})
		require.NoError(t, err)
		paths = append(paths, path)
	}

	// A path that is already gone must not disturb the rest.
	require.NoError(t, os.Remove(paths[1]))
	writer.Cleanup(paths)

	entries, err := os.ReadDir(writer.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSanitizeID(t *testing.T) {
	assert.Equal(t, "req-1", sanitizeID("req-1"))
	assert.Equal(t, "a_b_c", sanitizeID("a/b:c"))
}
