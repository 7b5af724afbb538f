package driven

import (
	"context"
	"iter"

	"github.com/custodia-labs/idledger/internal/core/domain"
)

// DocumentScanner discovers documents to import.
type DocumentScanner interface {
	// Scan yields every file under root matching any pattern, in path order.
	Scan(ctx context.Context, root string, patterns []string) iter.Seq2[domain.SourceDocument, error]
}
