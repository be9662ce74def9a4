package registry

// Config selects and tunes the enchantment registry.
type Config struct {
	// Source is where known enchantments come from (file, database).
	Source string `mapstructure:"source" default:"file"`
	// File is the YAML catalogue used by the file source, relative to the working directory.
	File string `mapstructure:"file" default:"registry.yaml"`
	// Table is the catalogue table used by the database source.
	Table string `mapstructure:"table" default:"enchantments"`
	// CacheTTLSeconds keeps a loaded catalogue this long. Zero disables caching.
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" default:"60"`
}

const (
	SourceFile     = "file"
	SourceDatabase = "database"
)

// IsValidSource checks if the configured source is supported.
func (c Config) IsValidSource() bool {
	switch c.Source {
	case SourceFile, SourceDatabase:
		return true
	default:
		return false
	}
}
