package tables

import "time"

// Config holds configuration for the table directory.
type Config struct {
	// Dir is the directory holding the six table files.
	Dir string `mapstructure:"dir" default:"config/enchlib"`
	// Watch reloads the tables when a file changes on disk.
	Watch bool `mapstructure:"watch" default:"true"`
	// DebounceMS collapses bursts of file events into one reload.
	DebounceMS int `mapstructure:"debounce_ms" default:"500"`
}

// Debounce returns DebounceMS as a duration.
func (c Config) Debounce() time.Duration {
	if c.DebounceMS <= 0 {
		return 0
	}
	return time.Duration(c.DebounceMS) * time.Millisecond
}
