// Package embedded provides the static frontend assets compiled into the
// binary, so the demo runs as a single self-contained executable.
package embedded

import (
	"embed"
	"io/fs"
)

//go:embed web
var files embed.FS

// Frontend returns the static asset tree rooted at the web directory.
func Frontend() (fs.FS, error) {
	return fs.Sub(files, "web")
}
