package blogmeta

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/fine405/blogmeta/gitdates"
)

// SiteConfig holds all configuration for a blogmeta site.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:4321")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD

	RootDir    string // Repository working directory (default ".")
	ContentDir string // Post directory relative to RootDir (default "src/content/blog")
	IndexFile  string // Post file name inside each post directory (default "index.md")

	DatabasePath  string // SQLite index path (default "data/blog.db")
	IncludeDrafts bool   // Index drafts as visible posts

	LogLevel  string // trace, debug, info, warn, error (default "info")
	LogFormat string // console or json (default "console")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:4321"
	}
	if c.RootDir == "" {
		c.RootDir = "."
	}
	if c.ContentDir == "" {
		c.ContentDir = gitdates.DefaultContentDir
	}
	if c.IndexFile == "" {
		c.IndexFile = gitdates.DefaultIndexFile
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}
}

// LoadConfig reads configuration from the environment, loading a .env file
// from the working directory first when one exists. Variables already set in
// the environment take precedence over .env entries.
func LoadConfig() SiteConfig {
	_ = godotenv.Load()

	cfg := SiteConfig{
		Name:          EnvOr("SITE_NAME", ""),
		URL:           EnvOr("SITE_URL", ""),
		Description:   EnvOr("SITE_DESCRIPTION", ""),
		Author:        EnvOr("SITE_AUTHOR", ""),
		RootDir:       EnvOr("BLOG_ROOT", ""),
		ContentDir:    EnvOr("BLOG_CONTENT_DIR", ""),
		IndexFile:     EnvOr("BLOG_INDEX_FILE", ""),
		DatabasePath:  EnvOr("BLOG_DB", ""),
		IncludeDrafts: envBool("BLOG_INCLUDE_DRAFTS"),
		LogLevel:      EnvOr("LOG_LEVEL", ""),
		LogFormat:     EnvOr("LOG_FORMAT", ""),
	}
	cfg.setDefaults()
	return cfg
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(EnvOr(key, "false"))
	return b
}

// Option configures additional Site behavior.
type Option func(*Site)

// WithLogger sets the logger used by the site and its date resolver.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Site) {
		s.log = log
	}
}

// WithHistory replaces the git history provider, mainly for tests.
func WithHistory(h gitdates.History) Option {
	return func(s *Site) {
		s.history = h
	}
}

// WithClock sets the clock used when a post has no publish date at all.
func WithClock(now func() time.Time) Option {
	return func(s *Site) {
		s.now = now
	}
}
