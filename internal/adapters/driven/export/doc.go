// Package export projects the registry to interchange formats.
//
// Every exporter writes one entry per identity, sorted by identifier:
//
//	csv       header id,doc_key,aliases; aliases comma-joined in one field
//	json      object mapping id to {doc_key, aliases}
//	markdown  pipe table
//	table     bordered terminal table
package export

import "github.com/custodia-labs/idledger/internal/core/ports/driven"

// All returns every exporter.
func All() []driven.RegistryExporter {
	return []driven.RegistryExporter{CSV{}, JSON{}, Markdown{}, Table{}}
}
