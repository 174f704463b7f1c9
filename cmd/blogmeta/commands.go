package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/fine405/blogmeta"
	"github.com/fine405/blogmeta/content"
	"github.com/fine405/blogmeta/gitdates"
	"github.com/fine405/blogmeta/readtime"
)

const dateLayout = "2006-01-02 15:04"

type cli struct {
	cfg blogmeta.SiteConfig
	log zerolog.Logger
	out io.Writer
}

func (c *cli) openSite() (*blogmeta.Site, error) {
	site := blogmeta.New(c.cfg, blogmeta.WithLogger(c.log))
	if err := site.Open(); err != nil {
		return nil, err
	}
	return site, nil
}

func (c *cli) runSync() error {
	site, err := c.openSite()
	if err != nil {
		return err
	}
	defer site.Close()

	report, err := site.Sync(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "indexed %d posts, removed %d\n", report.Indexed, len(report.Removed))
	for _, slug := range report.Removed {
		fmt.Fprintf(c.out, "  removed %s\n", slug)
	}
	if len(report.Invalid) > 0 {
		for _, e := range report.Invalid {
			fmt.Fprintf(c.out, "  invalid %v\n", e)
		}
		return fmt.Errorf("%d invalid posts", len(report.Invalid))
	}
	return nil
}

func (c *cli) runList(args []string) error {
	site, err := c.openSite()
	if err != nil {
		return err
	}
	defer site.Close()

	tag := ""
	if len(args) > 0 {
		tag = args[0]
	}
	posts, err := site.Posts(tag)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tPUBLISHED\tUPDATED\tREAD\tTAGS")
	for _, p := range posts {
		updated := "-"
		if p.HasUpdate() {
			updated = p.Updated.Format(dateLayout)
		}
		slug := p.Slug
		if p.Pinned > 0 {
			slug += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", slug, p.Published.Format(dateLayout), updated,
			blogmeta.FormatReadingTime(p.ReadingTime), blogmeta.JoinTags(p.Tags))
	}
	return tw.Flush()
}

func (c *cli) runShow(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: blogmeta show <slug>")
	}
	site, err := c.openSite()
	if err != nil {
		return err
	}
	defer site.Close()

	post, err := site.Post(args[0])
	if errors.Is(err, blogmeta.ErrNotFound) {
		return fmt.Errorf("post %q not found (run sync first?)", args[0])
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s\n%s\n\n", post.Title, post.Description)
	fmt.Fprintf(c.out, "published  %s\n", post.Published.Format(time.RFC3339))
	if post.HasUpdate() {
		fmt.Fprintf(c.out, "updated    %s\n", post.Updated.Format(time.RFC3339))
	}
	fmt.Fprintf(c.out, "reading    %s\n", blogmeta.FormatReadingTime(post.ReadingTime))
	if len(post.Tags) > 0 {
		fmt.Fprintf(c.out, "tags       %s\n", blogmeta.JoinTags(post.Tags))
	}
	if post.Cover.URL != "" {
		fmt.Fprintf(c.out, "cover      %s (%dx%d)\n", post.Cover.URL, post.Cover.Width, post.Cover.Height)
	}
	related, err := site.Related(post)
	if err != nil {
		return err
	}
	for i, r := range related {
		if i == 0 {
			fmt.Fprintln(c.out, "\nrelated:")
		}
		fmt.Fprintf(c.out, "  %s  %s\n", r.Slug, r.Title)
	}
	return nil
}

// runDates resolves dates straight from git and the source file, without
// touching the index.
func (c *cli) runDates(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: blogmeta dates <slug>")
	}
	slug := args[0]
	r := gitdates.NewResolver(c.cfg.RootDir, gitdates.WithLogger(c.log))
	r.ContentDir = c.cfg.ContentDir
	r.IndexFile = c.cfg.IndexFile

	var declared gitdates.Declared
	disableUpdate := false
	doc, err := content.ReadFile(r.Path(slug))
	switch {
	case err == nil:
		declared.Date = doc.Frontmatter.Date.Time
		declared.Updated = doc.Frontmatter.UpdatedDate.Time
		disableUpdate = doc.Frontmatter.DisableUpdateDate
	case errors.Is(err, os.ErrNotExist):
		c.log.Debug().Str("path", r.Path(slug)).Msg("no source file, using history only")
	default:
		return err
	}

	dates := r.Resolve(context.Background(), slug, declared)
	if disableUpdate {
		dates.Updated = time.Time{}
	}
	fmt.Fprintf(c.out, "published  %s\n", dates.Published.Format(time.RFC3339))
	if dates.HasUpdate() {
		fmt.Fprintf(c.out, "updated    %s\n", dates.Updated.Format(time.RFC3339))
	} else {
		fmt.Fprintln(c.out, "updated    -")
	}
	return nil
}

func (c *cli) runReadTime(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: blogmeta readtime <file>...")
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tMINUTES\tCJK\tWORDS\tCODE")
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		// Frontmatter is metadata, not reading material.
		if _, body, err := content.Split(data); err == nil {
			data = body
		}
		s := readtime.Analyze(string(data))
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", path, s.Minutes, s.CJKChars, s.EnglishWords, s.CodeLines)
	}
	return tw.Flush()
}

func (c *cli) runSitemap() error {
	site, err := c.openSite()
	if err != nil {
		return err
	}
	defer site.Close()

	posts, err := site.Posts("")
	if err != nil {
		return err
	}
	return blogmeta.WriteSitemap(c.out, c.cfg, posts)
}

func (c *cli) runFeed() error {
	site, err := c.openSite()
	if err != nil {
		return err
	}
	defer site.Close()

	posts, err := site.Posts("")
	if err != nil {
		return err
	}
	return blogmeta.WriteRSS(c.out, c.cfg, posts)
}

func (c *cli) runJSONLD(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: blogmeta jsonld <slug>")
	}
	site, err := c.openSite()
	if err != nil {
		return err
	}
	defer site.Close()

	post, err := site.Post(args[0])
	if err != nil {
		return fmt.Errorf("post %q: %w", args[0], err)
	}
	fmt.Fprintln(c.out, blogmeta.BlogPostingJsonLD(post, c.cfg))
	return nil
}

func (c *cli) runNew(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: blogmeta new <slug> <title>")
	}
	slug := blogmeta.SlugifyPath(args[0])
	if slug == "" {
		return fmt.Errorf("slug %q has no usable characters", args[0])
	}
	title := strings.Join(args[1:], " ")

	path := filepath.Join(c.cfg.RootDir, c.cfg.ContentDir, filepath.FromSlash(slug), c.cfg.IndexFile)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	// No date: the first commit of the file will supply it.
	fm := content.Frontmatter{
		Title:       title,
		Description: title,
		Draft:       true,
	}
	if err := content.Write(f, fm, "\n"); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "created %s\n", path)
	return nil
}
