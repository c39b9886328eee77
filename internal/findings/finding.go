package findings

import "time"

// Confidence is the normalized confidence level of a finding.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Rule identifies the detector that produced a finding.
type Rule struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Confidence Confidence `json:"confidence"`
}

// Secret carries the matched value. The unmasked form is kept for on-demand
// reveal only and is never serialized.
type Secret struct {
	Masked       string `json:"masked"`
	Unmasked     string `json:"-"`
	ArtifactPath string `json:"artifact_path,omitempty"`
	Fingerprint  string `json:"fingerprint,omitempty"`
}

// Validation is the scanner's optional live-check result for a secret.
type Validation struct {
	Status   string `json:"status"`
	Response string `json:"response,omitempty"`
}

// Finding is a normalized secret detection result tied to one captured request.
type Finding struct {
	ID         string      `json:"id"`
	RequestID  string      `json:"request_id"`
	URL        string      `json:"url,omitempty"`
	Method     string      `json:"method,omitempty"`
	DetectedAt time.Time   `json:"detected_at"`
	Rule       Rule        `json:"rule"`
	Secret     Secret      `json:"secret"`
	Validation *Validation `json:"validation,omitempty"`
}

// ScanResult is the per-request outcome of a scan call. A request that could
// not be scanned carries a non-empty Error; callers must check it rather than
// treat empty findings as a clean result.
type ScanResult struct {
	RequestID string        `json:"request_id"`
	Findings  []Finding     `json:"findings"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"duration"`
	RawOutput string        `json:"raw_output,omitempty"`
}

// Stats holds running counters over all scans in this process.
type Stats struct {
	TotalScanned   int       `json:"total_scanned"`
	TotalFindings  int       `json:"total_findings"`
	LastScanAt     time.Time `json:"last_scan_at"`
	ScannerVersion string    `json:"scanner_version,omitempty"`
}
