package blogmeta

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hello World", "hello-world"},
		{"  Go 1.24: what's new?  ", "go-1-24-what-s-new"},
		{"博客 Guide", "guide"},
		{"中文", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugifyPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"OpenSpec Guide/Part 1 Intro", "openspec-guide/part-1-intro"},
		{"/a//b/", "a/b"},
		{"中文/post", "post"},
	}
	for _, tt := range tests {
		if got := SlugifyPath(tt.in); got != tt.want {
			t.Errorf("SlugifyPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://fine405.github.io", nil, "https://fine405.github.io"},
		{"https://fine405.github.io", []string{"blog", "a"}, "https://fine405.github.io/blog/a/"},
		{"https://example.com/sub", []string{"blog", "series/part1"}, "https://example.com/sub/blog/series/part1/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func TestFormatReadingTime(t *testing.T) {
	if got := FormatReadingTime(3); got != "3 min read" {
		t.Errorf("FormatReadingTime(3) = %q", got)
	}
}

func TestBlogPostingJsonLD(t *testing.T) {
	cfg := SiteConfig{Name: "Blog", URL: "https://fine405.github.io", Author: "fine"}
	post := BlogPost{
		Slug:        "hello",
		Title:       "Hello",
		Description: "Desc",
		Tags:        []string{"go", "web"},
		Published:   time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		ReadingTime: 3,
		Cover:       CoverImage{URL: "./cover.png"},
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(BlogPostingJsonLD(post, cfg)), &data); err != nil {
		t.Fatalf("invalid JSON-LD: %v", err)
	}
	if data["datePublished"] != "2024-01-02T03:04:05Z" {
		t.Errorf("datePublished = %v", data["datePublished"])
	}
	if _, ok := data["dateModified"]; ok {
		t.Error("dateModified should be omitted without an update")
	}
	if data["timeRequired"] != "PT3M" {
		t.Errorf("timeRequired = %v", data["timeRequired"])
	}
	if data["image"] != "https://fine405.github.io/blog/hello/cover.png" {
		t.Errorf("image = %v", data["image"])
	}
	if data["keywords"] != "go, web" {
		t.Errorf("keywords = %v", data["keywords"])
	}

	post.Updated = post.Published.Add(48 * time.Hour)
	data = nil
	if err := json.Unmarshal([]byte(BlogPostingJsonLD(post, cfg)), &data); err != nil {
		t.Fatalf("invalid JSON-LD: %v", err)
	}
	if data["dateModified"] != "2024-01-04T03:04:05Z" {
		t.Errorf("dateModified = %v", data["dateModified"])
	}
}

func TestWebsiteJsonLD(t *testing.T) {
	var data map[string]interface{}
	cfg := SiteConfig{Name: "Blog", URL: "https://fine405.github.io", Description: "notes"}
	if err := json.Unmarshal([]byte(WebsiteJsonLD(cfg)), &data); err != nil {
		t.Fatalf("invalid JSON-LD: %v", err)
	}
	if data["name"] != "Blog" || data["description"] != "notes" {
		t.Errorf("WebsiteJsonLD = %v", data)
	}
	if _, ok := data["author"]; ok {
		t.Error("author should be omitted when unset")
	}
}
