// Package content parses blog post sources: a YAML frontmatter block
// followed by a markdown body.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the author-supplied metadata of a post.
type Frontmatter struct {
	Title             string   `yaml:"title" validate:"required"`
	Description       string   `yaml:"description" validate:"required"`
	Date              Date     `yaml:"date,omitempty"`
	UpdatedDate       Date     `yaml:"updatedDate,omitempty"`
	DisableUpdateDate bool     `yaml:"disableUpdateDate,omitempty"`
	Tags              []string `yaml:"tags,omitempty"`
	Draft             bool     `yaml:"draft,omitempty"`
	Pinned            *int     `yaml:"pinned,omitempty"`
	Cover             *Cover   `yaml:"cover,omitempty"`
}

// Cover points at a post's cover image.
type Cover struct {
	URL string `yaml:"url" validate:"required"`
	Alt string `yaml:"alt,omitempty"`
}

// PinWeight returns the pin weight, 0 when the post is not pinned.
func (f Frontmatter) PinWeight() int {
	if f.Pinned == nil {
		return 0
	}
	return *f.Pinned
}

// Date is a frontmatter timestamp. It accepts RFC 3339, date-times with
// minute or second precision, plain dates and epoch milliseconds.
// The zero value means the field was not set.
type Date struct {
	time.Time
}

// Layouts tried in order. Plain dates and date-times with seconds are YAML
// timestamps and read as UTC; minute-precision date-times are local time.
var dateLayouts = []struct {
	layout string
	utc    bool
}{
	{time.RFC3339Nano, false},
	{"2006-01-02T15:04:05", true},
	{"2006-01-02T15:04", false},
	{"2006-01-02 15:04:05", true},
	{"2006-01-02 15:04", false},
	{"2006-01-02", true},
}

// ParseDate parses s with the layouts frontmatter dates may use.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		loc := time.Local
		if l.utc {
			loc = time.UTC
		}
		if t, err := time.ParseInLocation(l.layout, s, loc); err == nil {
			return t, nil
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: date must be a scalar", node.Line)
	}
	if node.Tag == "!!null" || node.Value == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := ParseDate(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalYAML() (interface{}, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Format(time.RFC3339), nil
}

// IsZero lets yaml omitempty skip unset dates.
func (d Date) IsZero() bool { return d.Time.IsZero() }

var delimiter = []byte("---")

// ErrNoFrontmatter is returned when a source does not start with a "---" block.
var ErrNoFrontmatter = errors.New("content: missing frontmatter")

// Split separates the leading frontmatter block from the body.
func Split(data []byte) (front, body []byte, err error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	first, rest, _ := cutLine(data)
	if !bytes.Equal(bytes.TrimSpace(first), delimiter) {
		return nil, data, ErrNoFrontmatter
	}
	var fm bytes.Buffer
	for len(rest) > 0 {
		var line []byte
		line, rest, _ = cutLine(rest)
		if bytes.Equal(bytes.TrimSpace(line), delimiter) {
			return fm.Bytes(), rest, nil
		}
		fm.Write(line)
		fm.WriteByte('\n')
	}
	return nil, data, fmt.Errorf("%w: unterminated block", ErrNoFrontmatter)
}

func cutLine(b []byte) (line, rest []byte, found bool) {
	line, rest, found = bytes.Cut(b, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r")), rest, found
}

// Document is a parsed post source.
type Document struct {
	Slug        string // slash-separated path of the post directory
	Path        string // source file on disk
	Frontmatter Frontmatter
	Body        string
}

// Parse decodes and validates a post source.
func Parse(data []byte) (Document, error) {
	front, body, err := Split(data)
	if err != nil {
		return Document{}, err
	}
	var fm Frontmatter
	if err := yaml.Unmarshal(front, &fm); err != nil {
		return Document{}, fmt.Errorf("content: decode frontmatter: %w", err)
	}
	if err := Validate(fm); err != nil {
		return Document{}, err
	}
	return Document{Frontmatter: fm, Body: string(body)}, nil
}

// Write serialises fm and body as a post source.
func Write(w io.Writer, fm Frontmatter, body string) error {
	out, err := yaml.Marshal(fm)
	if err != nil {
		return fmt.Errorf("content: encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(out)
	buf.WriteString("---\n")
	buf.WriteString(body)
	_, err = w.Write(buf.Bytes())
	return err
}
