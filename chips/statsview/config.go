package statsview

import "time"

const (
	DefaultAddress  = "localhost:12600"
	DefaultInterval = time.Second

	// Path is where the charts are served, pprof lives under /debug/pprof/.
	Path = "/debug/statsview"
)

// Config selects where the stats server listens and how often the charts
// sample the runtime. Zero fields take the defaults.
type Config struct {
	Addr     string
	Interval time.Duration
}

func (c Config) withDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddress
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	return c
}

// URL returns the address of the chart page.
func (c Config) URL() string {
	return "http://" + c.withDefaults().Addr + Path
}
