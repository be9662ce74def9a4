// Package server holds the HTTP server configuration.
//
// # Configuration
//
// The Config struct defines the HTTP port, the API key, and the namespace
// assumed for enchantment ids typed without one (`sharpness` becomes
// `minecraft:sharpness`).
//
// # Usage
//
// This package is used by core/config to embed server settings and by the
// commands and features that normalize operator input.
package server
