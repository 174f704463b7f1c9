package blogmeta

import (
	"database/sql"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = sql.ErrNoRows

// postIndex is one snapshot of the visible posts, in listing order, with the
// lookups the read paths need.
type postIndex struct {
	gen    uint64
	posts  []BlogPost
	bySlug map[string]int
	byTag  map[string][]int // ascending positions in posts
	tags   []string
}

func buildIndex(gen uint64, posts []BlogPost) *postIndex {
	idx := &postIndex{
		gen:    gen,
		posts:  posts,
		bySlug: make(map[string]int, len(posts)),
		byTag:  make(map[string][]int),
	}
	for i, p := range posts {
		idx.bySlug[p.Slug] = i
		for _, t := range p.Tags {
			tag := normalizeTag(t)
			if tag == "" {
				continue
			}
			at := idx.byTag[tag]
			if len(at) > 0 && at[len(at)-1] == i {
				continue
			}
			idx.byTag[tag] = append(at, i)
		}
	}
	idx.tags = make([]string, 0, len(idx.byTag))
	for tag := range idx.byTag {
		idx.tags = append(idx.tags, tag)
	}
	sort.Strings(idx.tags)
	return idx
}

func (idx *postIndex) pick(positions []int) []BlogPost {
	if len(positions) == 0 {
		return nil
	}
	out := make([]BlogPost, len(positions))
	for i, at := range positions {
		out[i] = idx.posts[at]
	}
	return out
}

// PostCache keeps a snapshot of the visible posts of a Store. A snapshot
// stays valid until the Store's write generation moves on, so a Sync that
// changes nothing leaves it in place.
type PostCache struct {
	store *Store

	mu  sync.RWMutex
	idx *postIndex
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store) *PostCache {
	return &PostCache{store: s}
}

// snapshot returns the current index, rebuilding it after store writes.
func (c *PostCache) snapshot() (*postIndex, error) {
	gen := c.store.Generation()

	c.mu.RLock()
	idx := c.idx
	c.mu.RUnlock()
	if idx != nil && idx.gen == gen {
		return idx, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idx != nil && c.idx.gen == gen {
		return c.idx, nil
	}
	// A write racing this load leaves the snapshot tagged with the older
	// generation, so the next read rebuilds it.
	posts, err := c.store.ListPosts("")
	if err != nil {
		return nil, err
	}
	c.idx = buildIndex(gen, posts)
	return c.idx, nil
}

// ListPosts returns visible posts, optionally filtered by tag.
func (c *PostCache) ListPosts(tag string) ([]BlogPost, error) {
	idx, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return idx.posts, nil
	}
	return idx.pick(idx.byTag[normalizeTag(tag)]), nil
}

// ListTags returns all unique tags from visible posts.
func (c *PostCache) ListTags() ([]string, error) {
	idx, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	return idx.tags, nil
}

// GetPost returns a single visible post by slug.
func (c *PostCache) GetPost(slug string) (BlogPost, error) {
	idx, err := c.snapshot()
	if err != nil {
		return BlogPost{}, err
	}
	at, ok := idx.bySlug[slug]
	if !ok {
		return BlogPost{}, ErrNotFound
	}
	return idx.posts[at], nil
}

// Related returns the visible posts sharing a tag with post, in listing
// order, excluding post itself.
func (c *PostCache) Related(post BlogPost) ([]BlogPost, error) {
	idx, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	self, indexed := idx.bySlug[post.Slug]
	hit := make(map[int]struct{})
	for _, t := range post.Tags {
		for _, at := range idx.byTag[normalizeTag(t)] {
			if indexed && at == self {
				continue
			}
			hit[at] = struct{}{}
		}
	}
	positions := make([]int, 0, len(hit))
	for at := range hit {
		positions = append(positions, at)
	}
	sort.Ints(positions)
	return idx.pick(positions), nil
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
