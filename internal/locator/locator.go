package locator

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/aleister1102/burfisher/pkg/shared/files"
)

// Locator resolves the external scanner binary to an executable path. The
// scan pipeline treats the result as opaque; how the binary got onto the
// machine is not its concern.
type Locator interface {
	// Locate returns the path of an installed scanner binary.
	Locate() (string, error)
	// Ensure returns the path of a scanner binary, installing one first when
	// the implementation knows how to.
	Ensure() (string, error)
}

// PathLocator resolves the scanner from an explicit path or from $PATH. It
// does not install anything: Ensure is Locate with an actionable error.
type PathLocator struct {
	binary string
	logger hclog.Logger
}

func NewPathLocator(binary string, logger hclog.Logger) *PathLocator {
	return &PathLocator{binary: binary, logger: logger}
}

func (l *PathLocator) Locate() (string, error) {
	if strings.ContainsRune(l.binary, os.PathSeparator) {
		expanded, err := files.ExpandPath(l.binary)
		if err != nil {
			return "", err
		}
		if err := files.ValidatePath(expanded); err != nil {
			return "", fmt.Errorf("scanner binary %q is not usable: %w", l.binary, err)
		}
		return filepath.Abs(expanded)
	}

	path, err := exec.LookPath(l.binary)
	if err != nil {
		return "", fmt.Errorf("scanner binary %q not found in PATH: %w", l.binary, err)
	}
	l.logger.Debug("resolved scanner binary", "binary", l.binary, "path", path)
	return path, nil
}

func (l *PathLocator) Ensure() (string, error) {
	path, err := l.Locate()
	if err != nil {
		return "", fmt.Errorf("%w; install it or point scanner.binary at an existing executable", err)
	}
	return path, nil
}
