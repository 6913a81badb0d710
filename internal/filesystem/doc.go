/*
Package filesystem wraps the stat and open calls made during directory intake
with retry logic for stale NFS file handles.

Media folders are often NFS mounts. A scan that races with server-side
changes can see ESTALE (errno 116) on a file that is readable a moment
later, so StatWithRetry and OpenWithRetry retry those errors with capped
exponential backoff and return every other error immediately:

	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())

Retry activity is reported through an Observer set once at startup. The
metrics package provides the Prometheus implementation; with no observer
set, recording is skipped.
*/
package filesystem
