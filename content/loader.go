package content

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// FileError ties a load failure to its source file. Slug is set when the
// file was found by LoadDir.
type FileError struct {
	Path string
	Slug string
	Err  error
}

func (e *FileError) Error() string { return e.Path + ": " + e.Err.Error() }

func (e *FileError) Unwrap() error { return e.Err }

// ReadFile parses the post source at path. The returned Document has no Slug.
func ReadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	doc, err := Parse(data)
	if err != nil {
		return Document{}, &FileError{Path: path, Err: err}
	}
	doc.Path = path
	return doc, nil
}

// LoadDir reads every post under dir. A post lives at <slug>/<indexFile>,
// where slug may span several directories. Files that fail to parse are
// returned as FileErrors and do not stop the walk. Documents are sorted by
// slug.
func LoadDir(dir, indexFile string) ([]Document, []error, error) {
	var docs []Document
	var problems []error
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != indexFile {
			return nil
		}
		rel, err := filepath.Rel(dir, filepath.Dir(path))
		if err != nil {
			return err
		}
		if rel == "." {
			// index file at the content root has no slug
			return nil
		}
		slug := filepath.ToSlash(rel)
		doc, err := ReadFile(path)
		if err != nil {
			ferr, ok := err.(*FileError)
			if !ok {
				ferr = &FileError{Path: path, Err: err}
			}
			ferr.Slug = slug
			problems = append(problems, ferr)
			return nil
		}
		doc.Slug = slug
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("content: walk %s: %w", dir, err)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Slug < docs[j].Slug })
	return docs, problems, nil
}
