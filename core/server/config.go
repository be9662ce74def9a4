package server

import "regexp"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables auth.
	ApiKey string `mapstructure:"api_key" default:""`
	// DefaultNamespace is prefixed to enchantment ids given without one.
	DefaultNamespace string `mapstructure:"default_namespace" default:"minecraft"`
}

var namespacePattern = regexp.MustCompile(`^[a-z0-9_.-]+$`)

// IsValidNamespace checks if the default namespace is a usable id prefix.
func (c Config) IsValidNamespace() bool {
	return namespacePattern.MatchString(c.DefaultNamespace)
}
