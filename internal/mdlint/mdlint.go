// Package mdlint drives a system-installed markdownlint binary. The
// binary is an opaque collaborator: we pass files, it returns an exit
// status plus diagnostic text.
package mdlint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/starford/rulekit/internal/apperr"
)

// Candidate binaries in preference order.
var commands = []string{"markdownlint", "markdownlint-cli2"}

// MarkdownExtensions are the extensions the runner accepts.
var MarkdownExtensions = []string{".md", ".mdc"}

const (
	// DefaultConfigFile is the lint config consulted when present.
	DefaultConfigFile = ".markdownlint.json"

	probeTimeout = 5 * time.Second
	runTimeout   = 60 * time.Second
)

// Outcome is the result of one linter invocation.
type Outcome struct {
	Command  string
	ExitCode int
	Output   string
}

// Clean reports whether the linter found nothing to complain about.
func (o Outcome) Clean() bool {
	return o.ExitCode == 0
}

// Runner locates and invokes the external linter.
type Runner struct {
	configPath string
	command    string // resolved lazily, cached after first probe
}

// NewRunner builds a runner. configPath may be empty, in which case
// DefaultConfigFile is consulted relative to the working directory.
func NewRunner(configPath string) *Runner {
	if configPath == "" {
		configPath = DefaultConfigFile
	}
	return &Runner{configPath: configPath}
}

// FindCommand probes the candidate binaries with --version and returns
// the first that responds. The result is cached for the runner's life.
func (r *Runner) FindCommand(ctx context.Context) (string, error) {
	if r.command != "" {
		return r.command, nil
	}
	for _, cmd := range commands {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		err := exec.CommandContext(probeCtx, cmd, "--version").Run()
		cancel()
		if err == nil {
			r.command = cmd
			return cmd, nil
		}
	}
	return "", fmt.Errorf("mdlint: no markdownlint binary on PATH (tried %v): %w",
		commands, apperr.ErrToolNotFound)
}

// buildArgs assembles the argument list after the command itself.
func (r *Runner) buildArgs(files []string, fix bool) []string {
	var args []string
	if fix {
		args = append(args, "--fix")
	}
	if _, err := os.Stat(r.configPath); err == nil {
		args = append(args, "--config", r.configPath)
	}
	return append(args, files...)
}

// Check lints files without touching them.
func (r *Runner) Check(ctx context.Context, files []string) (Outcome, error) {
	return r.run(ctx, files, false)
}

// Fix lints files and applies automatic fixes in place.
func (r *Runner) Fix(ctx context.Context, files []string) (Outcome, error) {
	return r.run(ctx, files, true)
}

func (r *Runner) run(ctx context.Context, files []string, fix bool) (Outcome, error) {
	cmd, err := r.FindCommand(ctx)
	if err != nil {
		return Outcome{}, err
	}

	runCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	proc := exec.CommandContext(runCtx, cmd, r.buildArgs(files, fix)...)
	var buf bytes.Buffer
	proc.Stdout = &buf
	proc.Stderr = &buf

	err = proc.Run()
	out := Outcome{Command: cmd, Output: buf.String()}

	if runCtx.Err() == context.DeadlineExceeded {
		return out, fmt.Errorf("mdlint: %s timed out after %s: %w", cmd, runTimeout, apperr.ErrToolFailure)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Nonzero exit means lint findings, not a broken run.
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("mdlint: run %s: %v: %w", cmd, err, apperr.ErrToolFailure)
	}
	return out, nil
}

// FilterMarkdownFiles drops paths that do not exist or do not carry a
// Markdown extension.
func FilterMarkdownFiles(paths []string) []string {
	var out []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		ext := filepath.Ext(p)
		for _, e := range MarkdownExtensions {
			if ext == e {
				out = append(out, p)
				break
			}
		}
	}
	return out
}
