// Package store holds the authoritative ordered collection of media
// records and keeps it mirrored to a kv.Store snapshot.
//
// Every Ingest, Delete or Clear writes the complete collection under
// kv.SnapshotKey before the in-memory state changes, so a successful call
// always leaves the persisted snapshot equal to Current. Restore, Reconcile
// and Replace adopt records without persisting. Reconcile is what the poller
// uses to pick up a snapshot written by someone else; it reads and swaps
// under the same lock the mutations hold.
package store
