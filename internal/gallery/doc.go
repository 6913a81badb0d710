// Package gallery defines the records shared by the media pipeline:
// MediaRecord, the canonical form of one photo or video after intake, and
// AlbumSummary, the derived per-album grouping.
//
// The JSON encoding of MediaRecord is the persisted snapshot format, so
// field names are part of the storage contract.
package gallery
