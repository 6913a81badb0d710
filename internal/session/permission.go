package session

import "strings"

// Status is the media-library permission state.
type Status string

const (
	StatusUndetermined Status = "undetermined"
	StatusGranted      Status = "granted"
	StatusDenied       Status = "denied"
)

// ParseStatus maps a persisted value to a Status. Unknown values are
// treated as undetermined.
func ParseStatus(value string) Status {
	switch Status(strings.TrimSpace(value)) {
	case StatusGranted:
		return StatusGranted
	case StatusDenied:
		return StatusDenied
	default:
		return StatusUndetermined
	}
}
