package export

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/custodia-labs/idledger/internal/core/domain"
	"github.com/custodia-labs/idledger/internal/core/ports/driven"
)

var _ driven.RegistryExporter = CSV{}

// CSV writes id,doc_key,aliases rows.
type CSV struct{}

// Format returns "csv".
func (CSV) Format() string { return "csv" }

// Export writes a header and one row per identity.
func (CSV) Export(reg *domain.Registry, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "doc_key", "aliases"}); err != nil {
		return err
	}
	for _, e := range reg.Entries() {
		if err := cw.Write([]string{e.ID, e.DocKey, strings.Join(e.Aliases, ",")}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
