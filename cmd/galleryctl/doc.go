// Command galleryctl edits the gallery's persisted state from outside the
// server.
//
// It writes the same SQLite database the server uses, so a running server's
// poller picks the changes up on its next check.
//
// Usage:
//
//	galleryctl [-y] <command> [args]
//
// Commands:
//
//	show         List the persisted snapshot and permission status.
//	delete <id>  Remove one record from the snapshot.
//	clear        Remove every record from the snapshot.
//	grant        Persist the permission status as granted.
//	deny         Persist the permission status as denied.
//	reset        Forget the permission status (undetermined).
//
// delete and clear ask for confirmation when stdin is a terminal. Without a
// terminal they refuse to run unless -y is given.
//
// Environment:
//
//	DATABASE_DIR - Path to database directory (default: /database)
//
// Notes:
//
// The server detects external edits by comparing record counts unless it
// runs with POLL_DIFF=content, so a delete followed by an unrelated add
// between two checks can go unnoticed.
package main
