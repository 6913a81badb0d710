// Package intake turns file sources into normalizer inputs.
//
// ScanDir walks a directory the way a browser folder picker does: every
// visible regular file becomes an input whose relative path starts with
// the scanned folder's own name, so files directly inside it land in an
// album named after that folder. FromMultipart does the same for uploaded
// form files.
//
// Content types come from the file extension first and from content
// sniffing (github.com/gabriel-vasile/mimetype) when the extension is not
// recognized.
package intake
