package filestore

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEntry is returned when a key or value would not survive a
// write and read back as the same single line.
var ErrInvalidEntry = errors.New("invalid entry")

type lineKind int

const (
	lineSkip lineKind = iota
	lineEntry
	lineMalformed
)

// parseLine classifies one raw line and splits entries on the first '='.
func parseLine(raw string) (key, value string, kind lineKind) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", "", lineSkip
	}
	idx := strings.IndexByte(line, '=')
	if idx < 0 {
		return "", "", lineMalformed
	}
	key = strings.TrimSpace(line[:idx])
	if key == "" {
		return "", "", lineMalformed
	}
	return key, strings.TrimSpace(line[idx+1:]), lineEntry
}

// checkEntry reports whether key=value reads back as exactly that entry.
func checkEntry(key, value string) error {
	switch {
	case key == "" || strings.TrimSpace(key) != key:
		return fmt.Errorf("%w: key %q is empty or padded", ErrInvalidEntry, key)
	case strings.HasPrefix(key, "#"):
		return fmt.Errorf("%w: key %q starts with '#'", ErrInvalidEntry, key)
	case strings.ContainsAny(key, "=\r\n"):
		return fmt.Errorf("%w: key %q contains '=' or a line break", ErrInvalidEntry, key)
	case strings.ContainsAny(value, "\r\n"):
		return fmt.Errorf("%w: value for %q contains a line break", ErrInvalidEntry, key)
	}
	return nil
}

func checkEntries(entries []Entry) error {
	for _, e := range entries {
		if err := checkEntry(e.Key, e.Value); err != nil {
			return err
		}
	}
	return nil
}

func formatLine(key, value string) string {
	return key + "=" + value + "\n"
}

func joinLines(lines []string) []byte {
	if len(lines) == 0 {
		return nil
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

// IsNotExist reports whether err was caused by a missing file.
func IsNotExist(err error) bool {
	return isNotExist(err)
}
