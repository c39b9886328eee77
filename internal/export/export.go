package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/aleister1102/burfisher/internal/findings"
)

// Supported export formats.
const (
	FormatJSON  = "json"
	FormatSARIF = "sarif"
)

// JSON serializes findings as indented JSON. Unmasked secrets never leave the
// process through this path; the Finding schema excludes them from
// serialization.
func JSON(fs []findings.Finding) ([]byte, error) {
	if fs == nil {
		fs = []findings.Finding{}
	}
	data, err := json.MarshalIndent(fs, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize findings: %w", err)
	}
	return data, nil
}

// SARIF serializes findings as a SARIF 2.1.0 report. Each finding becomes a
// result whose rule is the detector that matched and whose location is the
// artifact the secret was found in.
func SARIF(fs []findings.Finding) ([]byte, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("burfisher", "https://github.com/aleister1102/burfisher")
	for _, f := range fs {
		ruleID := f.Rule.ID
		if ruleID == "" {
			ruleID = "unknown-rule"
		}
		rule := run.AddRule(ruleID).
			WithDescription(f.Rule.Name).
			WithDefaultConfiguration(&sarif.ReportingConfiguration{
				Level: toSarifLevel(f.Rule.Confidence),
			})

		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.Secret.ArtifactPath)),
		)

		message := fmt.Sprintf("%s secret detected in request %s: %s", f.Rule.Name, f.RequestID, f.Secret.Masked)
		result := sarif.NewRuleResult(rule.ID).
			WithMessage(sarif.NewTextMessage(message)).
			WithLevel(toSarifLevel(f.Rule.Confidence)).
			WithLocations([]*sarif.Location{location})
		run.AddResult(result)
	}
	report.AddRun(run)

	var buf bytes.Buffer
	if err := report.PrettyWrite(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize SARIF report: %w", err)
	}
	return buf.Bytes(), nil
}

func toSarifLevel(confidence findings.Confidence) string {
	switch confidence {
	case findings.ConfidenceHigh:
		return "error"
	case findings.ConfidenceLow:
		return "note"
	default:
		return "warning"
	}
}
