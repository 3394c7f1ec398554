//go:build !statsview

package statsview

import "io"

// Launch does nothing without the statsview build tag.
func Launch(cfg Config, output io.Writer) {}

// Available reports whether the binary was built with the statsview tag.
func Available() bool {
	return false
}
