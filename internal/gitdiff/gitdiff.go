// Package gitdiff answers "what changed between two commits" via the git
// binary. Git is an opaque collaborator; only the name-status output
// format is depended on.
package gitdiff

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/starford/rulekit/internal/apperr"
)

// Changes groups changed paths by what happened to them.
type Changes struct {
	Added    []string `json:"added"`
	Modified []string `json:"modified"`
	Deleted  []string `json:"deleted"`
}

// All returns the added and modified paths, the set most checks care
// about. Deleted files have no content to validate.
func (c Changes) All() []string {
	out := make([]string, 0, len(c.Added)+len(c.Modified))
	out = append(out, c.Added...)
	return append(out, c.Modified...)
}

// Diff lists files changed between base and head.
func Diff(ctx context.Context, base, head string) (Changes, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", "--name-status",
		"--diff-filter=ACMRTUXB", base+".."+head)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Changes{}, fmt.Errorf("gitdiff: git diff %s..%s: %v: %s: %w",
			base, head, err, strings.TrimSpace(stderr.String()), apperr.ErrToolFailure)
	}
	return parseNameStatus(stdout.String()), nil
}

// parseNameStatus reads git's name-status lines. Statuses other than A,
// M, and D (renames, copies) are ignored, matching the report's scope.
func parseNameStatus(output string) Changes {
	c := Changes{Added: []string{}, Modified: []string{}, Deleted: []string{}}
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		if line == "" {
			continue
		}
		status := line[0]
		path := strings.TrimSpace(line[1:])
		switch status {
		case 'A':
			c.Added = append(c.Added, path)
		case 'M':
			c.Modified = append(c.Modified, path)
		case 'D':
			c.Deleted = append(c.Deleted, path)
		}
	}
	return c
}
