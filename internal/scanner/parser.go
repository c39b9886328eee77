package scanner

import "encoding/json"

// RawFinding is a single unnormalized result as reported by the scanner. It
// lives only between parsing and normalization.
type RawFinding struct {
	RuleID      string
	RuleName    string
	Secret      string
	Path        string
	Confidence  string
	Fingerprint string
	Validation  *RawValidation
}

// RawValidation is the scanner's optional live-check sub-result.
type RawValidation struct {
	Status   string
	Response string
}

// Parse interprets the raw scanner output. Structured documents are preferred;
// the pretty-report fallback only kicks in when structured parsing produced
// nothing and the text carries recognizable report markers.
func Parse(raw string) []RawFinding {
	found := ParseStructured(raw)
	if len(found) == 0 && hasPrettyMarkers(raw) {
		found = ParsePretty(raw)
	}
	return found
}

// ParseStructured extracts findings from a stream of zero or more JSON
// documents concatenated with arbitrary text between them. Each balanced
// candidate is decoded independently; an invalid candidate is skipped by
// advancing a single byte, so truncated fragments or interleaved diagnostics
// never abort the rest of the stream.
func ParseStructured(raw string) []RawFinding {
	var out []RawFinding
	i := 0
	for i < len(raw) {
		c := raw[i]
		if c != '{' && c != '[' {
			i++
			continue
		}
		end, ok := scanBalanced(raw, i)
		if !ok {
			i++
			continue
		}
		candidate := raw[i:end]
		if !json.Valid([]byte(candidate)) {
			i++
			continue
		}
		out = append(out, decodeDocument(candidate)...)
		i = end
	}
	return out
}

// scanBalanced returns the offset one past the end of the JSON document
// starting at start, found by tracking brace/bracket depth outside of quoted
// strings. Quote state is escape aware: an escaped quote does not close a
// string.
func scanBalanced(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1, true
			}
			if depth < 0 {
				return 0, false
			}
		}
	}
	return 0, false
}

// wireFinding accepts the shapes the scanner is known to emit: flat keys, a
// nested rule object, or a mixture of both.
type wireFinding struct {
	Rule        *wireRule       `json:"rule"`
	RuleID      string          `json:"rule_id"`
	RuleName    string          `json:"rule_name"`
	Finding     string          `json:"finding"`
	Secret      string          `json:"secret"`
	Path        string          `json:"path"`
	Confidence  string          `json:"confidence"`
	Fingerprint string          `json:"fingerprint"`
	Validation  *wireValidation `json:"validation"`
}

type wireRule struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Message    string `json:"message"`
	Confidence string `json:"confidence"`
	Severity   string `json:"severity"`
}

type wireValidation struct {
	Status   string `json:"status"`
	Response string `json:"response"`
}

// decodeDocument turns one valid JSON document into findings. A document
// contributes when it is an array of finding-like objects, has a findings
// array field, or is itself a single finding-like object; anything else
// (scanner diagnostics, progress blobs) yields nothing.
func decodeDocument(doc string) []RawFinding {
	data := []byte(doc)

	var arr []wireFinding
	if err := json.Unmarshal(data, &arr); err == nil {
		return coerceAll(arr)
	}

	var wrapper struct {
		Findings []wireFinding `json:"findings"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && len(wrapper.Findings) > 0 {
		return coerceAll(wrapper.Findings)
	}

	var single wireFinding
	if err := json.Unmarshal(data, &single); err == nil {
		if rf, ok := coerce(single); ok {
			return []RawFinding{rf}
		}
	}
	return nil
}

func coerceAll(ws []wireFinding) []RawFinding {
	var out []RawFinding
	for _, w := range ws {
		if rf, ok := coerce(w); ok {
			out = append(out, rf)
		}
	}
	return out
}

// coerce validates a loosely-typed wire object against the RawFinding schema.
// An object without a matched snippet is not finding-like and is dropped.
func coerce(w wireFinding) (RawFinding, bool) {
	rf := RawFinding{
		RuleID:      w.RuleID,
		RuleName:    w.RuleName,
		Secret:      firstNonEmpty(w.Finding, w.Secret),
		Path:        w.Path,
		Confidence:  w.Confidence,
		Fingerprint: w.Fingerprint,
	}
	if w.Rule != nil {
		rf.RuleID = firstNonEmpty(rf.RuleID, w.Rule.ID)
		rf.RuleName = firstNonEmpty(rf.RuleName, w.Rule.Name, w.Rule.Message)
		rf.Confidence = firstNonEmpty(rf.Confidence, w.Rule.Confidence, w.Rule.Severity)
	}
	if w.Validation != nil {
		rf.Validation = &RawValidation{
			Status:   w.Validation.Status,
			Response: w.Validation.Response,
		}
	}
	if rf.Secret == "" {
		return RawFinding{}, false
	}
	return rf, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
