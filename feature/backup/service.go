package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"enchlib/core/filestore"
	"enchlib/core/storage"
	"enchlib/core/tables"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrNoBackup is returned when a pull finds no matching snapshot.
var ErrNoBackup = errors.New("no backup found")

// nameLayout sorts lexicographically in time order.
const nameLayout = "20060102T150405.000Z"

// Snapshot is one backup of the table files.
type Snapshot struct {
	Name      string    `json:"name"`
	Files     []string  `json:"files"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Service copies the table files to and from object storage.
type Service struct {
	client storage.Client
	bucket string
	region string
	prefix string
	store  *tables.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new backup service.
func NewService(client storage.Client, cfg storage.Config, store *tables.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		prefix: strings.Trim(cfg.Prefix, "/"),
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) objectKey(snapshot, file string) string {
	return fmt.Sprintf("%s/%s/%s", s.prefix, snapshot, file)
}

// Push uploads every table file present on disk as a new snapshot.
func (s *Service) Push(ctx context.Context) (*Snapshot, error) {
	if err := storage.EnsureBucket(ctx, s.client, s.bucket, s.region); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	snap := &Snapshot{Name: now.Format(nameLayout), CreatedAt: now}
	files := s.store.Files()

	for _, name := range tables.Files() {
		data, err := files.ReadRaw(name)
		if filestore.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}

		key := s.objectKey(snap.Name, name)
		_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
			minio.PutObjectOptions{ContentType: "text/plain"})
		if err != nil {
			return nil, fmt.Errorf("failed to upload %s: %w", key, err)
		}
		snap.Files = append(snap.Files, name)
		snap.Size += int64(len(data))
	}

	s.logger.Info("Backup pushed",
		zap.String("snapshot", snap.Name),
		zap.Int("files", len(snap.Files)),
		zap.Int64("bytes", snap.Size))
	return snap, nil
}

// List returns the snapshots in storage, newest first.
func (s *Service) List(ctx context.Context) ([]Snapshot, error) {
	byName := make(map[string]*Snapshot)
	opts := minio.ListObjectsOptions{Prefix: s.prefix + "/", Recursive: true}

	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list backups: %w", obj.Err)
		}
		rel := strings.TrimPrefix(obj.Key, s.prefix+"/")
		name, file, ok := strings.Cut(rel, "/")
		if !ok || name == "" || file == "" {
			continue
		}
		snap, exists := byName[name]
		if !exists {
			snap = &Snapshot{Name: name}
			byName[name] = snap
		}
		snap.Files = append(snap.Files, file)
		snap.Size += obj.Size
		if obj.LastModified.After(snap.CreatedAt) {
			snap.CreatedAt = obj.LastModified
		}
	}

	out := make([]Snapshot, 0, len(byName))
	for _, snap := range byName {
		sort.Strings(snap.Files)
		out = append(out, *snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

// find returns the named snapshot, or the newest one when name is empty.
func (s *Service) find(ctx context.Context, name string) (*Snapshot, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNoBackup
	}
	if name == "" {
		return &list[0], nil
	}
	for i := range list {
		if list[i].Name == name {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoBackup, name)
}

// Pull restores a snapshot into the configuration directory and reloads
// the tables. All files are downloaded before any is written. Files that
// are not part of the table set are ignored.
func (s *Service) Pull(ctx context.Context, name string) (*Snapshot, error) {
	snap, err := s.find(ctx, name)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool)
	for _, f := range tables.Files() {
		known[f] = true
	}

	contents := make(map[string][]byte, len(snap.Files))
	for _, file := range snap.Files {
		if !known[file] {
			s.logger.Warn("Skipping unknown file in backup", zap.String("snapshot", snap.Name), zap.String("file", file))
			continue
		}
		data, err := s.download(ctx, s.objectKey(snap.Name, file))
		if err != nil {
			return nil, err
		}
		contents[file] = data
	}

	_, err = s.store.Mutate(func(files *filestore.Store, _ *tables.Snapshot) error {
		for _, file := range tables.Files() {
			data, ok := contents[file]
			if !ok {
				continue
			}
			if err := files.WriteRaw(file, data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Backup restored", zap.String("snapshot", snap.Name), zap.Int("files", len(contents)))
	return snap, nil
}

func (s *Service) download(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Delete removes one snapshot.
func (s *Service) Delete(ctx context.Context, name string) error {
	snap, err := s.find(ctx, name)
	if err != nil {
		return err
	}
	return s.remove(ctx, []Snapshot{*snap})
}

// Prune keeps the newest keep snapshots and removes the rest. It returns
// the names of the removed snapshots.
func (s *Service) Prune(ctx context.Context, keep int) ([]string, error) {
	if keep < 0 {
		return nil, fmt.Errorf("keep must not be negative, got %d", keep)
	}
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) <= keep {
		return []string{}, nil
	}

	stale := list[keep:]
	if err := s.remove(ctx, stale); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(stale))
	for _, snap := range stale {
		names = append(names, snap.Name)
	}
	s.logger.Info("Backups pruned", zap.Strings("removed", names), zap.Int("kept", keep))
	return names, nil
}

func (s *Service) remove(ctx context.Context, snaps []Snapshot) error {
	count := 0
	for _, snap := range snaps {
		count += len(snap.Files)
	}

	objectsCh := make(chan minio.ObjectInfo, count)
	for _, snap := range snaps {
		for _, file := range snap.Files {
			objectsCh <- minio.ObjectInfo{Key: s.objectKey(snap.Name, file)}
		}
	}
	close(objectsCh)

	var errs []string
	for rmErr := range s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		if rmErr.Err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", rmErr.ObjectName, rmErr.Err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("batch delete had %d errors: %v", len(errs), errs)
	}
	return nil
}
