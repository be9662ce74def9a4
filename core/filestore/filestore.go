package filestore

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Entry is one key=value line of a configuration file.
type Entry struct {
	// Key is the trimmed text before the first '='.
	Key string
	// Value is the trimmed raw text after the first '='.
	Value string
	// Line is the 1-based line number the entry was read from. Zero for
	// entries that have not been written yet.
	Line int
}

// Store provides line-level access to the plain-text files of one
// configuration directory.
type Store struct {
	fs      afero.Fs
	dir     string
	logger  *zap.Logger
	headers map[string]string
}

// New creates a file store rooted at dir on the given filesystem.
func New(fsys afero.Fs, dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		fs:      fsys,
		dir:     dir,
		logger:  logger,
		headers: make(map[string]string),
	}
}

// NewOS creates a file store on the real filesystem.
func NewOS(dir string, logger *zap.Logger) *Store {
	return New(afero.NewOsFs(), dir, logger)
}

// Dir returns the configuration directory.
func (s *Store) Dir() string {
	return s.dir
}

// Fs returns the underlying filesystem.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// Path returns the full path of a file in the store.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// RegisterHeader sets the comment block written at the top of name when the
// store creates it. Each line of text is prefixed with "# ".
func (s *Store) RegisterHeader(name, text string) {
	s.headers[name] = text
}

// EnsureDir creates the configuration directory if it does not exist.
func (s *Store) EnsureDir() error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config dir %s: %w", s.dir, err)
	}
	return nil
}

// Exists reports whether name exists in the store.
func (s *Store) Exists(name string) (bool, error) {
	ok, err := afero.Exists(s.fs, s.Path(name))
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	return ok, nil
}

// ReadEntries returns the key=value lines of name in file order. Blank lines
// and comments are skipped; lines without '=' are logged and skipped.
// A missing file returns an error matching fs.ErrNotExist.
func (s *Store) ReadEntries(name string) ([]Entry, error) {
	lines, err := s.readLines(name)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(lines))
	for i, raw := range lines {
		key, value, kind := parseLine(raw)
		switch kind {
		case lineSkip:
			continue
		case lineMalformed:
			s.logger.Warn("Skipping line without '='",
				zap.String("file", name),
				zap.Int("line", i+1),
				zap.String("text", strings.TrimSpace(raw)))
			continue
		}
		entries = append(entries, Entry{Key: key, Value: value, Line: i + 1})
	}
	return entries, nil
}

// ContainsKey reports whether name has a line for key. A missing file
// contains nothing.
func (s *Store) ContainsKey(name, key string) (bool, error) {
	entries, err := s.ReadEntries(name)
	if err != nil {
		if isNotExist(err) {
			return false, nil
		}
		return false, err
	}
	for _, e := range entries {
		if e.Key == key {
			return true, nil
		}
	}
	return false, nil
}

// AppendEntry appends key=value to name, creating the file with its header
// when absent. Existing lines are never touched.
func (s *Store) AppendEntry(name, key, value string) error {
	return s.AppendEntries(name, []Entry{{Key: key, Value: value}})
}

// AppendEntries appends several lines to name in a single write.
func (s *Store) AppendEntries(name string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := checkEntries(entries); err != nil {
		return err
	}

	var buf bytes.Buffer
	for _, e := range entries {
		buf.WriteString(formatLine(e.Key, e.Value))
	}

	exists, err := s.Exists(name)
	if err != nil {
		return err
	}
	if !exists {
		if err := s.EnsureDir(); err != nil {
			return err
		}
		return s.writeAtomic(name, append([]byte(s.header(name)), buf.Bytes()...))
	}

	current, err := afero.ReadFile(s.fs, s.Path(name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	var out []byte
	if len(current) > 0 && current[len(current)-1] != '\n' {
		out = append(out, '\n')
	}
	out = append(out, buf.Bytes()...)

	f, err := s.fs.OpenFile(s.Path(name), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s for append: %w", name, err)
	}
	if _, err := f.Write(out); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append to %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	return nil
}

// UpsertEntry replaces the line for key in place, or appends it when absent.
// Later duplicate lines for the same key are dropped so the file keeps one
// value per key.
func (s *Store) UpsertEntry(name, key, value string) error {
	if err := checkEntry(key, value); err != nil {
		return err
	}
	lines, err := s.readLines(name)
	if err != nil {
		if isNotExist(err) {
			return s.AppendEntry(name, key, value)
		}
		return err
	}

	replaced := false
	out := make([]string, 0, len(lines)+1)
	for _, raw := range lines {
		k, _, kind := parseLine(raw)
		if kind == lineEntry && k == key {
			if replaced {
				continue
			}
			out = append(out, strings.TrimSuffix(formatLine(key, value), "\n"))
			replaced = true
			continue
		}
		out = append(out, raw)
	}
	if !replaced {
		out = append(out, strings.TrimSuffix(formatLine(key, value), "\n"))
	}
	return s.writeAtomic(name, joinLines(out))
}

// RemoveEntry deletes every line for key. Missing files and keys are a no-op.
func (s *Store) RemoveEntry(name, key string) error {
	return s.RemoveEntries(name, []string{key})
}

// RemoveEntries deletes every line whose key is in keys.
func (s *Store) RemoveEntries(name string, keys []string) error {
	lines, err := s.readLines(name)
	if err != nil {
		if isNotExist(err) {
			return nil
		}
		return err
	}

	drop := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}

	removed := false
	out := make([]string, 0, len(lines))
	for _, raw := range lines {
		k, _, kind := parseLine(raw)
		if kind == lineEntry {
			if _, ok := drop[k]; ok {
				removed = true
				continue
			}
		}
		out = append(out, raw)
	}
	if !removed {
		return nil
	}
	return s.writeAtomic(name, joinLines(out))
}

// WriteEntries replaces name with its header followed by entries.
func (s *Store) WriteEntries(name string, entries []Entry) error {
	if err := checkEntries(entries); err != nil {
		return err
	}
	var buf bytes.Buffer
	buf.WriteString(s.header(name))
	for _, e := range entries {
		buf.WriteString(formatLine(e.Key, e.Value))
	}
	if err := s.EnsureDir(); err != nil {
		return err
	}
	return s.writeAtomic(name, buf.Bytes())
}

// ReadRaw returns the raw bytes of name.
func (s *Store) ReadRaw(name string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// WriteRaw atomically replaces name with data.
func (s *Store) WriteRaw(name string, data []byte) error {
	if err := s.EnsureDir(); err != nil {
		return err
	}
	return s.writeAtomic(name, data)
}

func (s *Store) header(name string) string {
	text, ok := s.headers[name]
	if !ok {
		text = name
	}
	var b strings.Builder
	for _, l := range strings.Split(text, "\n") {
		b.WriteString("# ")
		b.WriteString(l)
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Store) readLines(name string) ([]string, error) {
	data, err := afero.ReadFile(s.fs, s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	text := strings.TrimSuffix(string(data), "\n")
	return strings.Split(text, "\n"), nil
}

// writeAtomic buffers the full content into a sibling temp file and renames
// it over the target.
func (s *Store) writeAtomic(name string, data []byte) error {
	target := s.Path(name)
	tmp := target + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := s.fs.Rename(tmp, target); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

func isNotExist(err error) bool {
	return err != nil && errors.Is(err, fs.ErrNotExist)
}
