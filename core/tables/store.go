package tables

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"enchlib/core/filestore"
	"enchlib/core/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Observer receives load and parse events, typically to export metrics.
type Observer interface {
	// ObserveLoad is called after every load attempt.
	ObserveLoad(snap *Snapshot, err error)
	// ObserveParseWarning is called for every skipped line.
	ObserveParseWarning(w ParseWarning)
}

// Store owns the six tables of one configuration directory. Reads go through
// Snapshot and never block; every mutation is serialized, written to disk
// and followed by a reload so the cache always mirrors the files.
type Store struct {
	files    *filestore.Store
	logger   *zap.Logger
	observer Observer

	mu      sync.Mutex
	loadMu  sync.Mutex
	current atomic.Pointer[Snapshot]
	sf      singleflight.Group
}

// Option configures a Store.
type Option func(*Store)

// WithObserver attaches an observer to the store.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		s.observer = o
	}
}

// NewStore creates a store over files. The cache starts empty; call Load.
func NewStore(files *filestore.Store, logger *zap.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		files:  files,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, d := range Definitions {
		files.RegisterHeader(d.File, d.Header)
	}
	s.current.Store(NewSnapshot())
	return s
}

// Files returns the underlying file store.
func (s *Store) Files() *filestore.Store {
	return s.files
}

// Snapshot returns the current snapshot. It is never nil.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Load reads all six files into a new snapshot and swaps it in. Missing
// files load as empty tables. On an I/O failure the previous snapshot stays
// in place and the error is returned.
func (s *Store) Load() (*Snapshot, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	snap := NewSnapshot()
	for _, def := range Definitions {
		entries, err := s.files.ReadEntries(def.File)
		if err != nil {
			if filestore.IsNotExist(err) {
				continue
			}
			err = fmt.Errorf("failed to load %s table: %w", def.Kind, err)
			s.observeLoad(nil, err)
			return nil, err
		}
		parseInto(snap, def, entries, s.warn)
	}
	snap.LoadedAt = time.Now()
	s.current.Store(snap)
	s.observeLoad(snap, nil)

	s.logger.Debug("Configuration tables loaded",
		zap.String("dir", s.files.Dir()),
		zap.Int("ids", snap.Len(KindAvailability)))
	return snap, nil
}

// Reload is Load with concurrent callers coalesced into a single read.
func (s *Store) Reload() (*Snapshot, error) {
	v, err, _ := s.sf.Do("reload", func() (any, error) {
		return s.Load()
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Mutate runs fn under the store's write lock and reloads afterwards, even
// when fn fails, so the cache reflects whatever reached the disk.
func (s *Store) Mutate(fn func(files *filestore.Store, snap *Snapshot) error) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fnErr := fn(s.files, s.Snapshot())
	snap, loadErr := s.Load()
	if fnErr != nil {
		return s.Snapshot(), fnErr
	}
	if loadErr != nil {
		return nil, loadErr
	}
	return snap, nil
}

// SetEnabled upserts the availability row for id.
func (s *Store) SetEnabled(id ID, enabled bool) error {
	return s.upsert(KindAvailability, id, utils.FormatBool(enabled))
}

// SetMaxLevel upserts a max level override. Levels below 1 are rejected.
func (s *Store) SetMaxLevel(id ID, level int) error {
	if level < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidLevel, level)
	}
	return s.upsert(KindMaxLevel, id, strconv.Itoa(level))
}

// ClearMaxLevel keeps the max level row for id but removes its value, so the
// registry max level applies again.
func (s *Store) ClearMaxLevel(id ID) error {
	return s.upsert(KindMaxLevel, id, "")
}

// SetRarity upserts the rarity row for id.
func (s *Store) SetRarity(id ID, rarity string) error {
	if rarity == "" {
		return ErrEmptyRarity
	}
	return s.upsert(KindRarity, id, rarity)
}

// SetList upserts a list table row (compatibility, categories or
// incompatibility).
func (s *Store) SetList(kind Kind, id ID, values []string) error {
	if !IsListKind(kind) {
		return fmt.Errorf("%w: %s is not a list table", ErrUnknownTable, kind)
	}
	if err := checkListValues(values); err != nil {
		return err
	}
	return s.upsert(kind, id, utils.JoinCSV(utils.SplitCSV(utils.JoinCSV(values))))
}

// Remove deletes every row for the given ids from all six tables.
func (s *Store) Remove(ids ...ID) error {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = string(id)
	}
	_, err := s.Mutate(func(files *filestore.Store, _ *Snapshot) error {
		for _, def := range Definitions {
			if err := files.RemoveEntries(def.File, keys); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

// Rewrite regenerates every table file from the current snapshot in sorted
// order. Comments and malformed lines are dropped.
func (s *Store) Rewrite() error {
	_, err := s.Mutate(func(files *filestore.Store, snap *Snapshot) error {
		for _, def := range Definitions {
			ids := snap.Keys(def.Kind).Sorted()
			entries := make([]filestore.Entry, 0, len(ids))
			for _, id := range ids {
				entries = append(entries, filestore.Entry{Key: string(id), Value: encodeValue(snap, def.Kind, id)})
			}
			if err := files.WriteEntries(def.File, entries); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

func (s *Store) upsert(kind Kind, id ID, value string) error {
	if err := checkID(id); err != nil {
		return err
	}
	def, err := Lookup(kind)
	if err != nil {
		return err
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("%w: %s value %q contains a line break", ErrInvalidValue, kind, value)
	}
	if reason := validateValue(kind, value); reason != "" {
		return fmt.Errorf("%w: %s value %q: %s", ErrInvalidValue, kind, value, reason)
	}
	_, err = s.Mutate(func(files *filestore.Store, _ *Snapshot) error {
		return files.UpsertEntry(def.File, string(id), value)
	})
	if err == nil {
		s.logger.Info("Config entry updated",
			zap.String("table", string(kind)),
			zap.String("id", string(id)),
			zap.String("value", value))
	}
	return err
}

func (s *Store) warn(w ParseWarning) {
	logWarning(s.logger, w)
	if s.observer != nil {
		s.observer.ObserveParseWarning(w)
	}
}

func (s *Store) observeLoad(snap *Snapshot, err error) {
	if s.observer != nil {
		s.observer.ObserveLoad(snap, err)
	}
}
