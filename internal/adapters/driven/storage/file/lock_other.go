//go:build !unix

package file

import "os"

// lockFile is a no-op where flock is unavailable. Appends still use
// O_APPEND with a single write per event.
func lockFile(*os.File) error { return nil }

func unlockFile(*os.File) error { return nil }
