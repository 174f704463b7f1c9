// Package blogmeta indexes the posts of a static blog and derives the
// metadata its pages need: publish and update times from git history and
// frontmatter, reading time, cover dimensions, plus sitemap, RSS and
// JSON-LD exports.
//
// A Site reads post sources from ContentDir, resolves their dates with
// gitdates, estimates reading time with readtime, and keeps the result in a
// SQLite index fronted by a PostCache.
package blogmeta

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/fine405/blogmeta/content"
	"github.com/fine405/blogmeta/gitdates"
	"github.com/fine405/blogmeta/readtime"
)

// Site is the central blogmeta application. It wires together the store,
// cache, date resolver and logger.
type Site struct {
	Config SiteConfig
	Store  *Store
	Cache  *PostCache
	Dates  *gitdates.Resolver

	log     zerolog.Logger
	history gitdates.History
	now     func() time.Time
}

// SyncReport summarises one Sync run.
type SyncReport struct {
	Indexed int      // posts written to the index
	Removed []string // slugs dropped because their source is gone
	Invalid []error  // sources that failed to parse or validate
}

// New creates a Site with the given configuration. Call Open before use.
func New(cfg SiteConfig, opts ...Option) *Site {
	cfg.setDefaults()

	s := &Site{
		Config: cfg,
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	resolverOpts := []gitdates.Option{
		gitdates.WithLogger(s.log),
		gitdates.WithClock(s.now),
	}
	if s.history != nil {
		resolverOpts = append(resolverOpts, gitdates.WithHistory(s.history))
	}
	s.Dates = gitdates.NewResolver(cfg.RootDir, resolverOpts...)
	s.Dates.ContentDir = cfg.ContentDir
	s.Dates.IndexFile = cfg.IndexFile
	return s
}

// Open initializes the index database and cache.
func (s *Site) Open() error {
	store, err := NewStore(s.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("blogmeta: init store: %w", err)
	}
	store.ShowDrafts = s.Config.IncludeDrafts
	s.Store = store
	s.Cache = NewPostCache(s.Store)
	return nil
}

// Close cleans up resources.
func (s *Site) Close() error {
	if s.Store != nil {
		return s.Store.Close()
	}
	return nil
}

// ContentPath returns the directory posts are read from.
func (s *Site) ContentPath() string {
	return filepath.Join(s.Config.RootDir, s.Config.ContentDir)
}

// Build derives the indexed form of a parsed document.
func (s *Site) Build(ctx context.Context, doc content.Document) BlogPost {
	fm := doc.Frontmatter
	dates := s.Dates.Resolve(ctx, doc.Slug, gitdates.Declared{
		Date:    fm.Date.Time,
		Updated: fm.UpdatedDate.Time,
	})
	if fm.DisableUpdateDate {
		dates.Updated = time.Time{}
	}

	cover, err := probeCover(filepath.Dir(doc.Path), fm.Cover)
	if err != nil {
		s.log.Warn().Err(err).Str("slug", doc.Slug).Msg("cover dimensions unavailable")
	}

	return BlogPost{
		Slug:        doc.Slug,
		Title:       fm.Title,
		Description: fm.Description,
		Tags:        fm.Tags,
		Published:   dates.Published,
		Updated:     dates.Updated,
		ReadingTime: readtime.Estimate(doc.Body),
		Pinned:      fm.PinWeight(),
		Draft:       fm.Draft,
		Cover:       cover,
		SourcePath:  doc.Path,
		Link:        "/blog/" + doc.Slug + "/",
	}
}

// Sync rebuilds the index from the content directory. Invalid sources are
// reported and skipped, leaving any row indexed for them earlier in place.
// Rows whose source disappeared are removed.
func (s *Site) Sync(ctx context.Context) (SyncReport, error) {
	if s.Store == nil {
		return SyncReport{}, errors.New("blogmeta: site not open")
	}
	var report SyncReport

	docs, problems, err := content.LoadDir(s.ContentPath(), s.Config.IndexFile)
	if err != nil {
		return report, fmt.Errorf("blogmeta: load content: %w", err)
	}
	seen := make(map[string]struct{}, len(docs)+len(problems))
	for _, p := range problems {
		s.log.Warn().Err(p).Msg("skipping invalid post")
		var ferr *content.FileError
		if errors.As(p, &ferr) && ferr.Slug != "" {
			seen[ferr.Slug] = struct{}{}
		}
	}
	report.Invalid = problems

	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		post := s.Build(ctx, doc)
		if err := s.Store.SavePost(post); err != nil {
			return report, fmt.Errorf("blogmeta: save %s: %w", doc.Slug, err)
		}
		seen[doc.Slug] = struct{}{}
		report.Indexed++
		s.log.Debug().
			Str("slug", post.Slug).
			Time("published", post.Published).
			Bool("updated", post.HasUpdate()).
			Int("minutes", post.ReadingTime).
			Msg("indexed post")
	}

	slugs, err := s.Store.ListSlugs()
	if err != nil {
		return report, fmt.Errorf("blogmeta: list index: %w", err)
	}
	for _, slug := range slugs {
		if _, ok := seen[slug]; ok {
			continue
		}
		if err := s.Store.DeletePost(slug); err != nil {
			return report, fmt.Errorf("blogmeta: delete %s: %w", slug, err)
		}
		report.Removed = append(report.Removed, slug)
	}

	s.log.Info().
		Int("indexed", report.Indexed).
		Int("removed", len(report.Removed)).
		Int("invalid", len(report.Invalid)).
		Msg("sync complete")
	return report, nil
}

// Posts returns visible posts, optionally filtered by tag.
func (s *Site) Posts(tag string) ([]BlogPost, error) {
	return s.Cache.ListPosts(tag)
}

// Tags returns all tags of visible posts.
func (s *Site) Tags() ([]string, error) {
	return s.Cache.ListTags()
}

// Post returns a visible post by slug.
func (s *Site) Post(slug string) (BlogPost, error) {
	return s.Cache.GetPost(slug)
}

// Related returns visible posts sharing a tag with post.
func (s *Site) Related(post BlogPost) ([]BlogPost, error) {
	return s.Cache.Related(post)
}
