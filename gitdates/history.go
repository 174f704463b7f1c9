// Package gitdates derives a post's publish and update times from git history,
// falling back to author-declared frontmatter dates and finally the clock.
package gitdates

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Lookup is the outcome of a history query: either a commit time or absent.
type Lookup struct {
	Time  time.Time
	Found bool
}

// Absent is a Lookup with no timestamp.
func Absent() Lookup { return Lookup{} }

// Found wraps t as a present Lookup.
func Found(t time.Time) Lookup { return Lookup{Time: t, Found: true} }

// History answers commit-time questions about a file path.
// Implementations report any failure as an absent Lookup.
type History interface {
	// Earliest returns the commit time that first added path, following renames.
	Earliest(ctx context.Context, path string) Lookup
	// Latest returns the time of the most recent commit touching path.
	Latest(ctx context.Context, path string) Lookup
}

// Compile-time interface conformance check.
var _ History = (*GitHistory)(nil)

// runGit is injectable in tests.
var runGit = func(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var stderr string
		if ee, ok := err.(*exec.ExitError); ok {
			stderr = strings.TrimSpace(string(ee.Stderr))
		}
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, stderr)
	}
	return string(out), nil
}

// GitHistory queries the git repository containing Dir.
type GitHistory struct {
	Dir string
	log zerolog.Logger
}

// NewGitHistory returns a GitHistory that runs git inside dir.
func NewGitHistory(dir string, log zerolog.Logger) *GitHistory {
	return &GitHistory{Dir: dir, log: log}
}

func (h *GitHistory) Earliest(ctx context.Context, path string) Lookup {
	out, err := runGit(ctx, h.Dir, "log", "--follow", "--format=%cI", "--diff-filter=A", "--", path)
	if err != nil {
		h.log.Debug().Err(err).Str("path", path).Msg("earliest commit lookup failed")
		return Absent()
	}
	// One line per add event, newest first; a file removed and re-added has several.
	lines := nonEmptyLines(out)
	if len(lines) == 0 {
		return Absent()
	}
	return h.parse(path, lines[len(lines)-1])
}

func (h *GitHistory) Latest(ctx context.Context, path string) Lookup {
	out, err := runGit(ctx, h.Dir, "log", "-1", "--format=%cI", "--", path)
	if err != nil {
		h.log.Debug().Err(err).Str("path", path).Msg("latest commit lookup failed")
		return Absent()
	}
	lines := nonEmptyLines(out)
	if len(lines) == 0 {
		return Absent()
	}
	return h.parse(path, lines[0])
}

func (h *GitHistory) parse(path, value string) Lookup {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		h.log.Debug().Err(err).Str("path", path).Str("value", value).Msg("unparsable commit time")
		return Absent()
	}
	return Found(t)
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
