// Package scanner discovers governed documents for import.
package scanner

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
)

// Ensure Scanner implements the interface.
var _ driven.DocumentScanner = (*Scanner)(nil)

const frontMatterDelimiter = "---"

// Scanner walks a directory tree with doublestar patterns.
type Scanner struct{}

// New creates a new scanner.
func New() *Scanner {
	return &Scanner{}
}

// Scan yields every regular file under root matching any pattern, in
// path order. A file matched by several patterns is yielded once.
func (s *Scanner) Scan(ctx context.Context, root string, patterns []string) iter.Seq2[domain.SourceDocument, error] {
	return func(yield func(domain.SourceDocument, error) bool) {
		fsys := os.DirFS(root)

		paths, err := match(fsys, patterns)
		if err != nil {
			yield(domain.SourceDocument{}, err)
			return
		}

		for _, p := range paths {
			if err := ctx.Err(); err != nil {
				yield(domain.SourceDocument{}, err)
				return
			}
			doc, err := read(fsys, p)
			if !yield(doc, err) {
				return
			}
		}
	}
}

func match(fsys fs.FS, patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(path.Clean(pattern), "./")
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: bad pattern %q", domain.ErrInvalidInput, pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, domain.NewIOError("glob "+pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	slices.Sort(paths)
	return paths, nil
}

func read(fsys fs.FS, name string) (domain.SourceDocument, error) {
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		return domain.SourceDocument{}, domain.NewIOError("read "+name, err)
	}

	fm, err := ParseFrontMatter(content)
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("%s: %w", name, err)
	}

	base := path.Base(name)
	return domain.SourceDocument{
		Path:        name,
		Stem:        strings.TrimSuffix(base, path.Ext(base)),
		FrontMatter: fm,
		Content:     content,
	}, nil
}

// ParseFrontMatter decodes the YAML block between a leading "---" line
// and the next "---" line. Documents without front matter yield an empty map.
func ParseFrontMatter(content []byte) (map[string]any, error) {
	fm := map[string]any{}

	body := bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	first, rest, ok := cutLine(body)
	if !ok || strings.TrimSpace(string(first)) != frontMatterDelimiter {
		return fm, nil
	}

	var block []byte
	closed := false
	for len(rest) > 0 {
		var line []byte
		line, rest, _ = cutLine(rest)
		if strings.TrimSpace(string(line)) == frontMatterDelimiter {
			closed = true
			break
		}
		block = append(block, line...)
		block = append(block, '\n')
	}
	if !closed {
		return fm, nil
	}

	if err := yaml.Unmarshal(block, &fm); err != nil {
		return nil, fmt.Errorf("%w: front matter: %v", domain.ErrInvalidInput, err)
	}
	if fm == nil {
		fm = map[string]any{}
	}
	return fm, nil
}

// cutLine splits b at the first newline, dropping a trailing carriage return.
func cutLine(b []byte) (line, rest []byte, found bool) {
	line, rest, found = bytes.Cut(b, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r")), rest, found
}
