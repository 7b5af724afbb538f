// Package file stores cards and ledger events as plain files.
//
// Layout under the ledger home (paths are configurable):
//
//	cards/<id>.yaml      one card per identifier, replaced atomically
//	ledger/ids.jsonl     one JSON event per line, append only
//	registry.yaml        derived index written by registry builds
//
// Card writes go through a temporary file and a rename. Ledger appends
// open the file with O_APPEND and hold an exclusive flock for the single
// write, so concurrent processes interleave whole lines.
package file
