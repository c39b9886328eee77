package findings

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeConfidence(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Confidence
	}{
		{"lowercase high", "high", ConfidenceHigh},
		{"capitalized high", "High", ConfidenceHigh},
		{"uppercase high", "HIGH", ConfidenceHigh},
		{"lowercase low", "low", ConfidenceLow},
		{"uppercase low", "LOW", ConfidenceLow},
		{"medium", "medium", ConfidenceMedium},
		{"empty", "", ConfidenceMedium},
		{"garbage", "weird", ConfidenceMedium},
		{"near miss", "highest", ConfidenceMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeConfidence(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, []Confidence{ConfidenceLow, ConfidenceMedium, ConfidenceHigh}, got)
		})
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   string
	}{
		{"empty", "", ""},
		{"short unchanged", "abc", "abc"},
		{"boundary unchanged", "12345678", "12345678"},
		{"ten characters", "abcdefghij", "ab" + strings.Repeat("█", 6) + "ij"},
		{"twelve characters", "abcdefghijkl", "abc" + strings.Repeat("█", 6) + "jkl"},
		{"long secret caps visible at four", strings.Repeat("x", 40), "xxxx" + strings.Repeat("█", 32) + "xxxx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskSecret(tt.secret))
		})
	}
}

func TestMaskSecretKeepsLength(t *testing.T) {
	secret := "sk-live-0123456789abcdef"
	masked := MaskSecret(secret)
	assert.Equal(t, len([]rune(secret)), len([]rune(masked)))
	assert.NotEqual(t, secret, masked)
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewID()
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %q", id)
		seen[id] = struct{}{}
	}
}
