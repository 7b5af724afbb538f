package export

import (
	"encoding/json"
	"io"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
)

var _ driven.RegistryExporter = JSON{}

// JSON writes an object keyed by identifier.
type JSON struct{}

type jsonEntry struct {
	DocKey  string   `json:"doc_key"`
	Aliases []string `json:"aliases"`
}

// Format returns "json".
func (JSON) Format() string { return "json" }

// Export writes the registry as indented JSON. Object keys are sorted.
func (JSON) Export(reg *domain.Registry, w io.Writer) error {
	out := make(map[string]jsonEntry, reg.Len())
	for _, e := range reg.Entries() {
		out[e.ID] = jsonEntry{DocKey: e.DocKey, Aliases: e.Aliases}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
