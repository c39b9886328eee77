package scanner

import (
	"context"
	"strings"
	"time"
)

// probeTimeout bounds the help/version calls used for capability detection.
const probeTimeout = 15 * time.Second

// Capabilities describes what the installed scanner binary supports. Not all
// builds accept the structured-format or report-file flags, so they are
// probed once against the tool's help text and cached on the service.
type Capabilities struct {
	FormatFlag bool   // --format json is accepted
	OutputFlag bool   // --output <file> is accepted
	Version    string // first line of the version output, if any
}

// probeBinary inspects the scanner's help and version output. Probe failures
// degrade to "no flags supported": the scan still runs, parsing falls back to
// whatever arrives on stdout.
func probeBinary(ctx context.Context, runner Runner, binary string) Capabilities {
	var caps Capabilities

	if help, err := runner.Run(ctx, binary, []string{"scan", "--help"}, probeTimeout); err == nil {
		text := help.Stdout + help.Stderr
		caps.FormatFlag = strings.Contains(text, "--format")
		caps.OutputFlag = strings.Contains(text, "--output")
	}

	if ver, err := runner.Run(ctx, binary, []string{"--version"}, probeTimeout); err == nil {
		caps.Version = firstLine(ver.Stdout + ver.Stderr)
	}
	return caps
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
