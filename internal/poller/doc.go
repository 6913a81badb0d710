// Package poller reconciles the in-memory collection with the persisted
// snapshot on a fixed interval, picking up changes written by another
// process such as galleryctl.
//
// Whether a change happened is decided by a ChangeDetector. The default,
// CountDetector, only compares record counts: it is a deliberate
// approximation that misses same-length edits. ContentDetector compares the
// records themselves and can be selected with POLL_DIFF=content.
//
// Consistency is eventual within one poll interval.
package poller
