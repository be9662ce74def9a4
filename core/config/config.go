package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"enchlib/core/database"
	"enchlib/core/logger"
	"enchlib/core/registry"
	"enchlib/core/server"
	"enchlib/core/storage"
	"enchlib/core/tables"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Each section belongs to the package that consumes it.
type Config struct {
	// Server holds the HTTP listener, API key and default namespace.
	Server server.Config `mapstructure:"server"`
	// Tables holds configuration for the enchantment table directory.
	Tables tables.Config `mapstructure:"tables"`
	// Registry selects where known enchantments come from.
	Registry registry.Config `mapstructure:"registry"`
	// Storage holds configuration for the backup object storage.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the registry database connection.
	Database database.Config `mapstructure:"database"`
}

// LoadConfig reads <path>/.env, then the environment, on top of the
// defaults declared in the struct tags.
func LoadConfig(path string) (*Config, error) {
	// A missing .env is normal outside development; values set there win
	// over the process environment.
	_ = godotenv.Overload(filepath.Join(path, ".env"))

	v := viper.New()

	// Register every key with its tag default before AutomaticEnv, otherwise
	// Unmarshal never looks the variable up.
	bindValues(v, Config{}, "")

	// TABLES_DIR -> tables.dir, SERVER_DEFAULT_NAMESPACE -> server.default_namespace
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects settings every command depends on: the namespace used to
// normalise bare ids and the registry source.
func (c *Config) Validate() error {
	if !c.Server.IsValidNamespace() {
		return fmt.Errorf("invalid default namespace %q", c.Server.DefaultNamespace)
	}
	if !c.Registry.IsValidSource() {
		return fmt.Errorf("%w: %q", registry.ErrUnknownSource, c.Registry.Source)
	}
	return nil
}

// bindValues walks the struct and registers each mapstructure key in Viper
// with the value of its 'default' tag.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// Accept *Config as well as Config
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Untagged fields are not configuration
		if tag == "" {
			continue
		}

		// Nested sections join with '.', e.g. registry.cache_ttl_seconds
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// Sections recurse with their own key as prefix
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// An empty default still has to be set so AutomaticEnv sees the key
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
