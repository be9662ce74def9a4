// Package backup copies the six table files to object storage and back.
//
// Each push writes one snapshot under <prefix>/<timestamp>/<file>. Snapshot
// names are UTC timestamps, so lexical order is time order. A pull
// downloads every file of a snapshot before writing any of them, replaces
// the local files atomically and reloads the tables.
//
// # HTTP Endpoints
//
//   - GET /backups : Lists snapshots, newest first.
//   - POST /backups : Pushes a new snapshot.
//   - POST /backups/restore?name= : Restores a snapshot (newest when name is empty).
//   - DELETE /backups?keep=N : Removes all but the newest N snapshots.
//   - DELETE /backups/:name : Removes one snapshot.
package backup
