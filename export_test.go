package blogmeta

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"
	"time"
)

func exportPosts() []BlogPost {
	return []BlogPost{
		{
			Slug:      "updated-post",
			Title:     "Updated",
			Published: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC),
			Updated:   time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
			Tags:      []string{"go"},
		},
		{
			Slug:      "fresh-post",
			Title:     "Fresh",
			Published: time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC),
		},
	}
}

func TestWriteSitemap(t *testing.T) {
	var buf bytes.Buffer
	cfg := SiteConfig{URL: "https://fine405.github.io"}
	if err := WriteSitemap(&buf, cfg, exportPosts()); err != nil {
		t.Fatalf("WriteSitemap failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), xml.Header) {
		t.Error("sitemap should start with the XML header")
	}

	var got sitemapURLSet
	if err := xml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid sitemap: %v", err)
	}
	if len(got.URLs) != 3 {
		t.Fatalf("URL count = %d, want 3", len(got.URLs))
	}
	if got.URLs[0].Loc != "https://fine405.github.io" || got.URLs[0].LastMod != "" {
		t.Errorf("home entry = %+v", got.URLs[0])
	}
	if got.URLs[1].LastMod != "2024-02-01T08:00:00Z" {
		t.Errorf("updated post lastmod = %q, want update time", got.URLs[1].LastMod)
	}
	if got.URLs[2].LastMod != "2024-01-15T08:00:00Z" {
		t.Errorf("fresh post lastmod = %q, want publish time", got.URLs[2].LastMod)
	}
}

func TestWriteRSS(t *testing.T) {
	var buf bytes.Buffer
	cfg := SiteConfig{Name: "Blog", URL: "https://fine405.github.io", Description: "notes"}
	if err := WriteRSS(&buf, cfg, exportPosts()); err != nil {
		t.Fatalf("WriteRSS failed: %v", err)
	}

	var got rssXML
	if err := xml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid feed: %v", err)
	}
	if got.Version != "2.0" {
		t.Errorf("Version = %q", got.Version)
	}
	if got.Channel.Title != "Blog" || got.Channel.Description != "notes" {
		t.Errorf("Channel = %+v", got.Channel)
	}
	if got.Channel.LastBuildDate != "Thu, 01 Feb 2024 08:00:00 +0000" {
		t.Errorf("LastBuildDate = %q", got.Channel.LastBuildDate)
	}
	if len(got.Channel.Items) != 2 {
		t.Fatalf("item count = %d, want 2", len(got.Channel.Items))
	}
	item := got.Channel.Items[0]
	if item.Link != "https://fine405.github.io/blog/updated-post/" || item.GUID != item.Link {
		t.Errorf("item link = %q guid = %q", item.Link, item.GUID)
	}
	if item.PubDate != "Mon, 01 Jan 2024 08:00:00 +0000" {
		t.Errorf("PubDate = %q", item.PubDate)
	}
	if len(item.Categories) != 1 || item.Categories[0] != "go" {
		t.Errorf("Categories = %v", item.Categories)
	}
}

func TestWriteRSSEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRSS(&buf, SiteConfig{Name: "Blog", URL: "http://localhost:4321"}, nil); err != nil {
		t.Fatalf("WriteRSS failed: %v", err)
	}
	if strings.Contains(buf.String(), "lastBuildDate") {
		t.Error("empty feed should not carry lastBuildDate")
	}
}
