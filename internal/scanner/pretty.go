package scanner

import (
	"bufio"
	"regexp"
	"strings"
)

// prettyMarkers are the iconographic bullets the scanner prefixes result
// blocks with in its human-readable report.
var prettyMarkers = []string{"🐷", "🔑"}

var (
	// `🐷🔑 AWS Access Key => [aws-access-key]`
	ruleHeaderRe = regexp.MustCompile(`^\W*(?:🐷|🔑|❓|✅)+\s*(.+?)\s*=>\s*\[(.+?)\]`)
	// `|Finding.......: AKIA...`
	fieldRe = regexp.MustCompile(`^\|([A-Za-z][A-Za-z ]*?)\.{2,}:\s?(.*)$`)
	// `|__Response....: HTTP/1.1 200 OK`
	nestedFieldRe = regexp.MustCompile(`^\|__([A-Za-z][A-Za-z ]*?)\.{2,}:\s?(.*)$`)
	// Detects the pretty format even when no iconographic marker survived.
	findingLineRe = regexp.MustCompile(`(?m)^\|Finding\.+:`)
)

// hasPrettyMarkers reports whether the raw output looks like the scanner's
// human-readable report rather than structured documents.
func hasPrettyMarkers(raw string) bool {
	for _, marker := range prettyMarkers {
		if strings.Contains(raw, marker) {
			return true
		}
	}
	return findingLineRe.MatchString(raw)
}

// ParsePretty extracts findings from the scanner's human-readable report with
// a line-oriented state machine. A rule header opens a finding; `|key....:`
// lines fill its fields; `|__key....:` lines attach to the current validation
// sub-result. A finding is committed only once it has both a snippet and an
// artifact path, so a truncated trailing block is silently discarded.
func ParsePretty(raw string) []RawFinding {
	var out []RawFinding
	var current *RawFinding

	flush := func() {
		if current != nil && current.Secret != "" && current.Path != "" {
			out = append(out, *current)
		}
		current = nil
	}

	sc := bufio.NewScanner(strings.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())

		if m := ruleHeaderRe.FindStringSubmatch(line); m != nil {
			flush()
			current = &RawFinding{RuleName: m[1], RuleID: m[2]}
			continue
		}
		if current == nil {
			continue
		}
		if m := nestedFieldRe.FindStringSubmatch(line); m != nil {
			setNestedField(current, m[1], m[2])
			continue
		}
		if m := fieldRe.FindStringSubmatch(line); m != nil {
			setField(current, m[1], m[2])
			continue
		}
	}
	flush()
	return out
}

func setField(rf *RawFinding, key, value string) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "finding":
		rf.Secret = value
	case "path":
		rf.Path = value
	case "confidence":
		rf.Confidence = value
	case "fingerprint":
		rf.Fingerprint = value
	case "validation":
		rf.Validation = &RawValidation{Status: inferValidationStatus(value)}
	}
}

func setNestedField(rf *RawFinding, key, value string) {
	if rf.Validation == nil {
		return
	}
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "response":
		rf.Validation.Response = value
	}
}

// inferValidationStatus collapses the scanner's free-form validation text to
// a binary status.
func inferValidationStatus(value string) string {
	lowered := strings.ToLower(value)
	if strings.Contains(lowered, "active") || strings.Contains(lowered, "valid") {
		return "valid"
	}
	return "invalid"
}
