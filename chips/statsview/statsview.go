//go:build statsview

package statsview

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// Launch serves the charts in the background and prints their URL to output.
func Launch(cfg Config, output io.Writer) {
	cfg = cfg.withDefaults()
	viewer.SetConfiguration(
		viewer.WithAddr(cfg.Addr),
		viewer.WithInterval(int(cfg.Interval.Milliseconds())),
	)
	mgr := statsview.New()
	go mgr.Start()

	fmt.Fprintf(output, "runtime stats at %s\n", cfg.URL())
}

// Available reports whether the binary was built with the statsview tag.
func Available() bool {
	return true
}
