package main

import (
	"fmt"
	"os"

	"github.com/fine405/blogmeta"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := blogmeta.LoadConfig()
	log := blogmeta.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	c := &cli{cfg: cfg, log: log, out: os.Stdout}

	var err error
	args := os.Args[2:]
	switch os.Args[1] {
	case "sync":
		err = c.runSync()
	case "list":
		err = c.runList(args)
	case "show":
		err = c.runShow(args)
	case "dates":
		err = c.runDates(args)
	case "readtime":
		err = c.runReadTime(args)
	case "sitemap":
		err = c.runSitemap()
	case "feed":
		err = c.runFeed()
	case "jsonld":
		err = c.runJSONLD(args)
	case "new":
		err = c.runNew(args)
	case "version":
		fmt.Printf("blogmeta %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`blogmeta - publish dates and reading time for a static blog

Usage:
  blogmeta <command> [arguments]

Commands:
  sync                 Rebuild the post index from the content directory
  list [tag]           List indexed posts, optionally filtered by tag
  show <slug>          Show one post and its related posts
  dates <slug>         Resolve publish/update dates from git and frontmatter
  readtime <file>...   Estimate reading time of markdown files
  sitemap              Write sitemap.xml to stdout
  feed                 Write an RSS feed to stdout
  jsonld <slug>        Write BlogPosting JSON-LD for a post
  new <slug> <title>   Create a draft post
  version              Print the blogmeta version
  help                 Show this help message

Configuration is read from the environment and an optional .env file
(SITE_URL, BLOG_ROOT, BLOG_CONTENT_DIR, BLOG_DB, LOG_LEVEL, ...).`)
}
