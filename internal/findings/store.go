package findings

import (
	"sort"
	"sync"
	"time"
)

// Store is the in-memory, process-lifetime collection of findings plus the
// running scan counters. All mutations happen under one lock so a reader can
// never observe a half-inserted batch.
type Store struct {
	mu             sync.RWMutex
	findings       map[string]Finding
	totalScanned   int
	lastScanAt     time.Time
	scannerVersion string
}

func NewStore() *Store {
	return &Store{findings: make(map[string]Finding)}
}

// Insert adds a single finding.
func (s *Store) Insert(f Finding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findings[f.ID] = f
	s.lastScanAt = time.Now().UTC()
}

// InsertMany adds a batch of findings atomically.
func (s *Store) InsertMany(fs []Finding) {
	if len(fs) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range fs {
		s.findings[f.ID] = f
	}
	s.lastScanAt = time.Now().UTC()
}

// All returns every stored finding sorted by discovery time, newest first.
func (s *Store) All() []Finding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]Finding, 0, len(s.findings))
	for _, f := range s.findings {
		all = append(all, f)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].DetectedAt.Equal(all[j].DetectedAt) {
			return all[i].DetectedAt.After(all[j].DetectedAt)
		}
		return all[i].ID < all[j].ID
	})
	return all
}

// ForRequest returns the findings recorded for one request id.
func (s *Store) ForRequest(requestID string) []Finding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []Finding
	for _, f := range s.findings {
		if f.RequestID == requestID {
			matched = append(matched, f)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].DetectedAt.Equal(matched[j].DetectedAt) {
			return matched[i].DetectedAt.After(matched[j].DetectedAt)
		}
		return matched[i].ID < matched[j].ID
	})
	return matched
}

// Remove deletes one finding by id and reports whether it existed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.findings[id]; !ok {
		return false
	}
	delete(s.findings, id)
	return true
}

// Clear drops all findings and resets the counters.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findings = make(map[string]Finding)
	s.totalScanned = 0
	s.lastScanAt = time.Now().UTC()
}

// RecordScan increments the scanned-request counter by the number of requests
// passed through one scan call.
func (s *Store) RecordScan(requests int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalScanned += requests
	s.lastScanAt = time.Now().UTC()
}

// SetScannerVersion records the version string reported by the scanner binary.
func (s *Store) SetScannerVersion(version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scannerVersion = version
}

// Stats returns a snapshot of the running counters.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		TotalScanned:   s.totalScanned,
		TotalFindings:  len(s.findings),
		LastScanAt:     s.lastScanAt,
		ScannerVersion: s.scannerVersion,
	}
}
