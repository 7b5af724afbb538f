package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func scanAll(t *testing.T, root string, patterns ...string) []domain.SourceDocument {
	t.Helper()
	var docs []domain.SourceDocument
	for doc, err := range New().Scan(context.Background(), root, patterns) {
		require.NoError(t, err)
		docs = append(docs, doc)
	}
	return docs
}

func TestScan_MatchesRecursivelyInPathOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "policies/security/access.md", "# Access\n")
	writeFile(t, root, "policies/retention.md", "# Retention\n")
	writeFile(t, root, "README.txt", "ignored\n")

	docs := scanAll(t, root, "**/*.md")

	require.Len(t, docs, 2)
	assert.Equal(t, "policies/retention.md", docs[0].Path)
	assert.Equal(t, "retention", docs[0].Stem)
	assert.Equal(t, "policies/security/access.md", docs[1].Path)
	assert.Equal(t, []byte("# Access\n"), docs[1].Content)
	assert.Empty(t, docs[1].FrontMatter)
}

func TestScan_DeduplicatesAcrossPatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "a")
	writeFile(t, root, "b.markdown", "b")

	docs := scanAll(t, root, "*.md", "**/*.md", "*.markdown")

	require.Len(t, docs, 2)
	assert.Equal(t, "a.md", docs[0].Path)
	assert.Equal(t, "b.markdown", docs[1].Path)
}

func TestScan_ParsesFrontMatter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "sec.md", "---\ndoc_key: SEC-ACCESS\nsemver: 2.1.0\neffective_date: 2024-03-01\n---\n# Body\n")

	docs := scanAll(t, root, "*.md")

	require.Len(t, docs, 1)
	fm := docs[0].FrontMatter
	assert.Equal(t, "SEC-ACCESS", fm["doc_key"])
	assert.Equal(t, "2.1.0", fm["semver"])
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), fm["effective_date"])
}

func TestScan_BadPattern(t *testing.T) {
	var gotErr error
	for _, err := range New().Scan(context.Background(), t.TempDir(), []string{"[unclosed"}) {
		gotErr = err
	}
	assert.ErrorIs(t, gotErr, domain.ErrInvalidInput)
}

func TestScan_StopsOnCancel(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "a")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var gotErr error
	for _, err := range New().Scan(ctx, root, []string{"*.md"}) {
		gotErr = err
	}
	assert.ErrorIs(t, gotErr, context.Canceled)
}

func TestParseFrontMatter(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[string]any
		wantErr bool
	}{
		{"none", "# Title\n", map[string]any{}, false},
		{"empty", "", map[string]any{}, false},
		{"block", "---\nowner: Risk\n---\nbody", map[string]any{"owner": "Risk"}, false},
		{"crlf", "---\r\nowner: Risk\r\n---\r\nbody", map[string]any{"owner": "Risk"}, false},
		{"unclosed", "---\nowner: Risk\nbody", map[string]any{}, false},
		{"empty block", "---\n---\nbody", map[string]any{}, false},
		{"malformed", "---\nowner: [\n---\n", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFrontMatter([]byte(tt.content))
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
