package domain

// SourceDocument is a governed document discovered on disk.
type SourceDocument struct {
	// Path is relative to the scanned root.
	Path string

	// Stem is the file name without extension.
	Stem string

	// FrontMatter holds the parsed YAML front matter, empty when absent.
	FrontMatter map[string]any

	// Content is the whole file, front matter included.
	Content []byte
}

// FrontMatterString returns a front matter value as a string, or "".
func (d SourceDocument) FrontMatterString(key string) string {
	if v, ok := d.FrontMatter[key].(string); ok {
		return v
	}
	return ""
}

// ImportRequest configures an import run.
type ImportRequest struct {
	Root     string
	Patterns []string
	Defaults ImportSettings
	DryRun   bool
}

// ImportOutcome is the result for one document.
type ImportOutcome string

// Import outcomes.
const (
	ImportMinted    ImportOutcome = "minted"
	ImportSkipped   ImportOutcome = "skipped"
	ImportDuplicate ImportOutcome = "duplicate"
	ImportFailed    ImportOutcome = "failed"
	ImportPlanned   ImportOutcome = "planned"
)

// ImportItem records what happened to one document.
type ImportItem struct {
	Path        string
	DocKey      string
	ID          string
	Fingerprint string
	Outcome     ImportOutcome
	Err         error
}

// ImportReport lists the outcome of every scanned document.
type ImportReport struct {
	Items []ImportItem
}

// Count returns the number of items with the given outcome.
func (r *ImportReport) Count(outcome ImportOutcome) int {
	n := 0
	for _, item := range r.Items {
		if item.Outcome == outcome {
			n++
		}
	}
	return n
}
