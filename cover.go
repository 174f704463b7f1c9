package blogmeta

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/fine405/blogmeta/content"
)

// probeCover fills in the dimensions of a cover stored next to the post.
// Remote URLs and site-absolute paths are returned without dimensions.
func probeCover(postDir string, c *content.Cover) (CoverImage, error) {
	if c == nil {
		return CoverImage{}, nil
	}
	img := CoverImage{URL: c.URL, Alt: c.Alt}
	path, ok := localCoverPath(postDir, c.URL)
	if !ok {
		return img, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return img, fmt.Errorf("open cover: %w", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return img, fmt.Errorf("decode cover %s: %w", filepath.Base(path), err)
	}
	img.Width = cfg.Width
	img.Height = cfg.Height
	return img, nil
}

func localCoverPath(postDir, ref string) (string, bool) {
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "" || u.Host != "" || strings.HasPrefix(ref, "/") {
		return "", false
	}
	return filepath.Join(postDir, filepath.FromSlash(u.Path)), true
}
