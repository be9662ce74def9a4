// Package config provides configuration management for enchlib.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file. Defaults come from the `default` struct tags of
// each section, so every key can be overridden as SECTION_KEY.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP port, API key and default id namespace
//   - Tables: table directory, file watching and debounce
//   - Registry: enchantment registry source and cache TTL
//   - Database: registry database connection (mysql or sqlite)
//   - Storage: S3/MinIO credentials, bucket and backup prefix
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Tables.Dir)
package config
