// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind a small interface used for table
// backups. Both AWS S3 and self-hosted MinIO work.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists / MakeBucket: bucket bootstrap, wrapped by EnsureBucket.
//   - PutObject: uploads a table file.
//   - GetObject: retrieves a table file as a stream.
//   - ListObjects: lists backups under a prefix.
//   - RemoveObjects: deletes old backups in one batch.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
