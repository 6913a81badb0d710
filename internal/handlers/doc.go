// Package handlers provides the HTTP presentation boundary of the gallery.
//
// It includes handlers for:
//   - Permission consent (grant, deny, retry)
//   - Listing, uploading and deleting media
//   - Albums, search text and selection
//   - Serving blob content addressed by locators
//   - Scanning a configured media directory
//   - Health checks
package handlers
