package trafficstore

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Record is one captured HTTP transaction: the raw request bytes, the raw
// response bytes if a response was captured, and display metadata.
type Record struct {
	ID       string
	URL      string
	Method   string
	Request  []byte
	Response []byte
}

// Store provides read access to captured transactions.
type Store interface {
	// Get returns the record with the given id, or false when it is unknown.
	Get(id string) (*Record, bool)
	// IDs returns every known record id in capture order.
	IDs() []string
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	order   []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

// Put adds or replaces a record.
func (s *MemoryStore) Put(rec *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.ID]; !exists {
		s.order = append(s.order, rec.ID)
	}
	s.records[rec.ID] = rec
}

func (s *MemoryStore) Get(id string) (*Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	return rec, ok
}

func (s *MemoryStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

// recordEntry is the on-disk JSON shape of a captured transaction. Request and
// response bodies are plain text, or base64 when the base64 flag is set.
type recordEntry struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Method   string `json:"method"`
	Request  string `json:"request"`
	Response string `json:"response,omitempty"`
	Base64   bool   `json:"base64,omitempty"`
}

// LoadFile reads a JSON array of captured transactions into a MemoryStore.
func LoadFile(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read traffic file %q: %w", path, err)
	}

	var entries []recordEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse traffic file %q: %w", path, err)
	}

	store := NewMemoryStore()
	for i, entry := range entries {
		if entry.ID == "" {
			return nil, fmt.Errorf("traffic file %q: entry %d has no id", path, i)
		}
		rec := &Record{
			ID:     entry.ID,
			URL:    entry.URL,
			Method: entry.Method,
		}
		if rec.Request, err = decodeBody(entry.Request, entry.Base64); err != nil {
			return nil, fmt.Errorf("traffic file %q: entry %q: bad request body: %w", path, entry.ID, err)
		}
		if rec.Response, err = decodeBody(entry.Response, entry.Base64); err != nil {
			return nil, fmt.Errorf("traffic file %q: entry %q: bad response body: %w", path, entry.ID, err)
		}
		store.Put(rec)
	}
	return store, nil
}

func decodeBody(body string, isBase64 bool) ([]byte, error) {
	if body == "" {
		return nil, nil
	}
	if isBase64 {
		return base64.StdEncoding.DecodeString(body)
	}
	return []byte(body), nil
}
