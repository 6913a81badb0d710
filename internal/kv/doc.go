// Package kv provides the key-value persistence boundary used by the
// gallery: a SQLite implementation for running servers and an in-memory
// one for tests.
//
// Two keys are used by the rest of the module: SnapshotKey holds the full
// JSON-serialized collection and PermissionKey holds the consent flag.
// The SQLite store runs in WAL mode so an external writer (galleryctl)
// can update the snapshot while the server is reading it.
package kv
