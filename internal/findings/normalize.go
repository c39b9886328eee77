package findings

import (
	"strings"

	"github.com/google/uuid"
)

const maskRune = '█'

// NormalizeConfidence maps a raw confidence label of unknown case and
// vocabulary onto the three-level scale. Unrecognized or empty values become
// medium, so the result is always one of the enumerated constants.
func NormalizeConfidence(raw string) Confidence {
	switch strings.ToLower(raw) {
	case "high":
		return ConfidenceHigh
	case "low":
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

// MaskSecret hides the middle of a secret, keeping at most four characters
// visible on each side. Secrets of eight characters or fewer are returned
// unchanged since masking them would leave nothing meaningful.
func MaskSecret(secret string) string {
	runes := []rune(secret)
	n := len(runes)
	if n <= 8 {
		return secret
	}

	visible := n / 4
	if visible > 4 {
		visible = 4
	}

	masked := make([]rune, 0, n)
	masked = append(masked, runes[:visible]...)
	for i := 0; i < n-2*visible; i++ {
		masked = append(masked, maskRune)
	}
	masked = append(masked, runes[n-visible:]...)
	return string(masked)
}

// NewID returns a unique finding identifier. A random UUID keeps the
// collision probability negligible for the process lifetime, including under
// concurrent batches.
func NewID() string {
	return uuid.NewString()
}
