package blogmeta

import (
	"database/sql"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database holding the post index.
type Store struct {
	db *sql.DB

	// ShowDrafts makes drafts visible to GetPost, ListPosts and ListTags.
	ShowDrafts bool

	gen atomic.Uint64
}

// Generation counts the writes made through this Store. It changes after
// every successful SavePost or DeletePost.
func (s *Store) Generation() uint64 {
	return s.gen.Load()
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed during a sync; busy_timeout makes writers
	// wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    tags TEXT NOT NULL,
    published_ms INTEGER NOT NULL,
    updated_ms INTEGER,
    reading_minutes INTEGER NOT NULL DEFAULT 1,
    pinned INTEGER NOT NULL DEFAULT 0,
    draft INTEGER NOT NULL DEFAULT 0,
    cover_url TEXT NOT NULL DEFAULT '',
    cover_alt TEXT NOT NULL DEFAULT '',
    cover_width INTEGER NOT NULL DEFAULT 0,
    cover_height INTEGER NOT NULL DEFAULT 0,
    source_path TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS posts_order ON posts (pinned DESC, published_ms DESC);
`)
	return err
}

const postColumns = `slug, title, description, tags, published_ms, updated_ms, reading_minutes, pinned, draft, cover_url, cover_alt, cover_width, cover_height, source_path`

const postOrder = ` ORDER BY pinned DESC, published_ms DESC, slug`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (BlogPost, error) {
	var (
		p         BlogPost
		tags      string
		published int64
		updated   sql.NullInt64
		draft     int
	)
	err := row.Scan(&p.Slug, &p.Title, &p.Description, &tags, &published, &updated,
		&p.ReadingTime, &p.Pinned, &draft,
		&p.Cover.URL, &p.Cover.Alt, &p.Cover.Width, &p.Cover.Height, &p.SourcePath)
	if err != nil {
		return BlogPost{}, err
	}
	p.Tags = ParseTags(tags)
	p.Published = time.UnixMilli(published)
	if updated.Valid {
		p.Updated = time.UnixMilli(updated.Int64)
	}
	p.Draft = draft == 1
	p.Link = "/blog/" + p.Slug + "/"
	return p, nil
}

func (s *Store) queryPosts(query string, args ...any) ([]BlogPost, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []BlogPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *Store) showDrafts() int {
	if s.ShowDrafts {
		return 1
	}
	return 0
}

// ListPosts returns visible posts, pinned first, then newest first.
// If tag is non-empty, results are filtered to posts containing that tag.
func (s *Store) ListPosts(tag string) ([]BlogPost, error) {
	if tag == "" {
		return s.queryPosts(`SELECT `+postColumns+` FROM posts WHERE (draft = 0 OR ?)`+postOrder, s.showDrafts())
	}
	normalizedTag := normalizeTag(tag)
	return s.queryPosts(`SELECT `+postColumns+` FROM posts WHERE (draft = 0 OR ?) AND instr(lower(tags), ',' || ? || ',') > 0`+postOrder,
		s.showDrafts(), normalizedTag)
}

// ListAllPosts returns every post including drafts.
func (s *Store) ListAllPosts() ([]BlogPost, error) {
	return s.queryPosts(`SELECT ` + postColumns + ` FROM posts` + postOrder)
}

// ListTags returns a sorted, deduplicated slice of all tags from visible posts.
func (s *Store) ListTags() ([]string, error) {
	rows, err := s.db.Query(`SELECT tags FROM posts WHERE (draft = 0 OR ?)`, s.showDrafts())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			set[strings.ToLower(t)] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var result []string
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// ListSlugs returns the slug of every indexed post.
func (s *Store) ListSlugs() ([]string, error) {
	rows, err := s.db.Query(`SELECT slug FROM posts ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

// GetPost returns a single visible post by slug.
func (s *Store) GetPost(slug string) (BlogPost, error) {
	return scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ? AND (draft = 0 OR ?)`, slug, s.showDrafts()))
}

// GetPostAny returns a post by slug regardless of draft status.
func (s *Store) GetPostAny(slug string) (BlogPost, error) {
	return scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug))
}

// SavePost upserts a post. Tags are normalized to lowercase.
func (s *Store) SavePost(p BlogPost) error {
	normalizedTags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		if t = normalizeTag(t); t != "" {
			normalizedTags = append(normalizedTags, t)
		}
	}
	tagString := "," + strings.Join(normalizedTags, ",") + ","
	var updated sql.NullInt64
	if p.HasUpdate() {
		updated = sql.NullInt64{Int64: p.Updated.UnixMilli(), Valid: true}
	}
	draft := 0
	if p.Draft {
		draft = 1
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Slug, p.Title, p.Description, tagString, p.Published.UnixMilli(), updated,
		p.ReadingTime, p.Pinned, draft,
		p.Cover.URL, p.Cover.Alt, p.Cover.Width, p.Cover.Height, p.SourcePath)
	if err != nil {
		return err
	}
	s.gen.Add(1)
	return nil
}

// DeletePost removes a post by slug.
func (s *Store) DeletePost(slug string) error {
	if _, err := s.db.Exec(`DELETE FROM posts WHERE slug = ?`, slug); err != nil {
		return err
	}
	s.gen.Add(1)
	return nil
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
