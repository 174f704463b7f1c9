package gitdates

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// MinUpdateGap is the smallest distance between publish and update times
// that still counts as an update.
const MinUpdateGap = time.Minute

const (
	DefaultContentDir = "src/content/blog"
	DefaultIndexFile  = "index.md"
)

// Declared carries the author's frontmatter dates. Zero values mean unset.
type Declared struct {
	Date    time.Time
	Updated time.Time
}

// Dates is the resolved publish/update pair. Updated is zero when the post
// has not been meaningfully updated.
type Dates struct {
	Published time.Time
	Updated   time.Time
}

// HasUpdate reports whether an update time is present.
func (d Dates) HasUpdate() bool { return !d.Updated.IsZero() }

// LastModified returns Updated when present and Published otherwise.
func (d Dates) LastModified() time.Time {
	if d.HasUpdate() {
		return d.Updated
	}
	return d.Published
}

// Resolver maps a slug to its source file and resolves the file's dates.
type Resolver struct {
	Root       string // repository working directory
	ContentDir string // relative to Root (default "src/content/blog")
	IndexFile  string // file name inside each post directory (default "index.md")

	history History
	now     func() time.Time
	log     zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHistory replaces the git-backed history provider.
func WithHistory(h History) Option {
	return func(r *Resolver) { r.history = h }
}

// WithClock sets the clock used for the last-resort publish time.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithLogger sets the logger passed to the default git history provider.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// NewResolver creates a Resolver rooted at root.
func NewResolver(root string, opts ...Option) *Resolver {
	r := &Resolver{
		Root:       root,
		ContentDir: DefaultContentDir,
		IndexFile:  DefaultIndexFile,
		now:        time.Now,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.history == nil {
		r.history = NewGitHistory(root, r.log)
	}
	return r
}

// Path returns the source file for slug. Slugs come from the local content
// tree and are joined as-is.
func (r *Resolver) Path(slug string) string {
	return filepath.Join(r.Root, r.ContentDir, slug, r.IndexFile)
}

// Resolve returns the publish/update pair for slug. It never fails: missing
// history falls back to the declared dates and then to the current time.
func (r *Resolver) Resolve(ctx context.Context, slug string, declared Declared) Dates {
	path := r.Path(slug)

	// Declared dates beat history so authors can reorder listings by hand.
	var published time.Time
	if !declared.Date.IsZero() {
		published = declared.Date
	} else if first := r.history.Earliest(ctx, path); first.Found {
		published = first.Time
	} else {
		// Uncommitted draft.
		published = r.now()
	}

	// History is authoritative for the last touch.
	var updated time.Time
	if last := r.history.Latest(ctx, path); last.Found {
		updated = last.Time
	} else if !declared.Updated.IsZero() {
		updated = declared.Updated
	}

	if !updated.IsZero() && absDuration(updated.Sub(published)) < MinUpdateGap {
		updated = time.Time{}
	}

	r.log.Debug().
		Str("slug", slug).
		Time("published", published).
		Time("updated", updated).
		Msg("resolved dates")
	return Dates{Published: published, Updated: updated}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
