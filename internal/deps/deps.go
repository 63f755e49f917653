// Package deps locates the external programs the pipeline shells out to and
// reports whether they can run.
package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const probeTimeout = 10 * time.Second

// Requirement defines an external program ytqa relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	// VersionArgs, when set, are run to capture a version string.
	VersionArgs []string
	// Probe, when set, must exit zero for the requirement to be available.
	Probe []string
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Version     string
	Detail      string
}

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func defaultRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput() //nolint:gosec
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	return checkWith(ctx, requirements, defaultRunner)
}

func checkWith(ctx context.Context, requirements []Requirement, run Runner) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		if len(req.Probe) > 0 {
			if output, err := runProbe(ctx, run, resolved, req.Probe); err != nil {
				status.Detail = probeDetail(output, err)
				results = append(results, status)
				continue
			}
		}
		status.Available = true
		if len(req.VersionArgs) > 0 {
			if output, err := runProbe(ctx, run, resolved, req.VersionArgs); err == nil {
				status.Version = firstLine(output)
			}
		}
		results = append(results, status)
	}
	return results
}

func runProbe(ctx context.Context, run Runner, name string, args []string) ([]byte, error) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	return run(probeCtx, name, args...)
}

func probeDetail(output []byte, err error) string {
	if line := lastLine(output); line != "" {
		return line
	}
	return err.Error()
}

func firstLine(output []byte) string {
	text := strings.TrimSpace(string(output))
	line, _, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(line)
}

func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
