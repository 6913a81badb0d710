// Package session is the presentation boundary of the gallery. A Session
// ties together the permission flag, the collection store, the normalizer
// and the change poller, and keeps the derived state a client renders:
// album summaries, the active search text and the selected item.
//
// Media is only loaded once permission is granted. Granting restores the
// persisted snapshot after a simulated scan delay and starts the poller;
// denying stops the poller. A Session must be closed to release the blobs
// behind its records.
package session
