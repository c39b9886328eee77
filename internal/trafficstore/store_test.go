package trafficstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGet(t *testing.T) {
	store := NewMemoryStore()
	store.Put(&Record{ID: "req-1", URL: "https://example.com", Method: "GET"})
	store.Put(&Record{ID: "req-2"})
	store.Put(&Record{ID: "req-1", Method: "POST"}) // replace keeps order

	rec, ok := store.Get("req-1")
	require.True(t, ok)
	assert.Equal(t, "POST", rec.Method)

	_, ok = store.Get("req-404")
	assert.False(t, ok)

	assert.Equal(t, []string{"req-1", "req-2"}, store.IDs())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traffic.json")
	content := `[
		{"id": "req-1", "url": "https://example.com/login", "method": "POST", "request": "POST /login HTTP/1.1", "response": "HTTP/1.1 200 OK"},
		{"id": "req-2", "url": "https://example.com/img", "method": "GET", "request": "R0VUIC9pbWcgSFRUUC8xLjE=", "base64": true}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"req-1", "req-2"}, store.IDs())

	rec, ok := store.Get("req-1")
	require.True(t, ok)
	assert.Equal(t, "POST /login HTTP/1.1", string(rec.Request))
	assert.Equal(t, "HTTP/1.1 200 OK", string(rec.Response))

	rec, ok = store.Get("req-2")
	require.True(t, ok)
	assert.Equal(t, "GET /img HTTP/1.1", string(rec.Request))
	assert.Nil(t, rec.Response)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	badJSON := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badJSON, []byte("{not json"), 0o644))
	_, err = LoadFile(badJSON)
	assert.Error(t, err)

	noID := filepath.Join(dir, "noid.json")
	require.NoError(t, os.WriteFile(noID, []byte(`[{"url": "https://example.com"}]`), 0o644))
	_, err = LoadFile(noID)
	assert.ErrorContains(t, err, "has no id")
}
