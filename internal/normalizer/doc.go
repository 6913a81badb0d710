// Package normalizer turns raw intake inputs into gallery records.
//
// For each input the normalizer classifies the declared content type
// (image/* or video/*, anything else is dropped), acquires a locator for the
// bytes, derives the album from the relative path, probes image dimensions
// and assigns a fresh id. Probes run concurrently on a bounded pool; the
// batch is sorted newest-first by capture time before it is returned, so
// completion order never shows in the output.
//
// Nothing about a single input fails the batch. Unsupported types are
// skipped, unreadable inputs are skipped with a warning, and images that
// cannot be decoded keep 0x0 dimensions.
package normalizer
