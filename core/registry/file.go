package registry

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// fileCatalog is the on-disk YAML layout:
//
//	enchantments:
//	  - id: minecraft:sharpness
//	    max_level: 5
type fileCatalog struct {
	Enchantments []fileEntry `yaml:"enchantments"`
}

type fileEntry struct {
	ID       string `yaml:"id"`
	MaxLevel int    `yaml:"max_level"`
}

// FileRegistry reads the catalogue from a YAML file.
type FileRegistry struct {
	fs               afero.Fs
	path             string
	defaultNamespace string
}

// NewFileRegistry creates a registry over the YAML file at path.
func NewFileRegistry(fsys afero.Fs, path, defaultNamespace string) *FileRegistry {
	return &FileRegistry{fs: fsys, path: path, defaultNamespace: defaultNamespace}
}

// Name implements Source.
func (r *FileRegistry) Name() string {
	return "file:" + r.path
}

// Load implements Source.
func (r *FileRegistry) Load(ctx context.Context) (Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(r.fs, r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var raw fileCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse registry file %s: %w", r.path, err)
	}

	cat := make(Catalog, len(raw.Enchantments))
	for _, e := range raw.Enchantments {
		cat.add(e.ID, e.MaxLevel, r.defaultNamespace)
	}
	return cat, nil
}

// WriteFile stores cat as a YAML catalogue at path, sorted by id.
func WriteFile(fsys afero.Fs, path string, cat Catalog) error {
	var out fileCatalog
	for _, id := range cat.IDs().Sorted() {
		out.Enchantments = append(out.Enchantments, fileEntry{ID: string(id), MaxLevel: cat[id]})
	}
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}
