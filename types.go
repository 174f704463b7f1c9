package blogmeta

import "time"

// BlogPost is one indexed post: its frontmatter plus the derived metadata
// (resolved dates, reading time, cover dimensions).
type BlogPost struct {
	Slug        string
	Title       string
	Description string
	Tags        []string
	Published   time.Time
	Updated     time.Time // zero when never meaningfully updated
	ReadingTime int       // minutes
	Pinned      int       // higher sorts first, 0 when not pinned
	Draft       bool
	Cover       CoverImage
	SourcePath  string
	Link        string
}

// HasUpdate reports whether the post carries an update time.
func (p BlogPost) HasUpdate() bool { return !p.Updated.IsZero() }

// LastModified returns the update time, or the publish time if there is none.
func (p BlogPost) LastModified() time.Time {
	if p.HasUpdate() {
		return p.Updated
	}
	return p.Published
}

// CoverImage describes a post's cover. Width and Height are zero when the
// image is remote or could not be decoded.
type CoverImage struct {
	URL    string
	Alt    string
	Width  int
	Height int
}
