// Package startup loads the gallery server configuration and prints the
// structured startup and shutdown log sections.
//
// Configuration comes from built-in defaults, then an optional TOML file
// named by GALLERY_CONFIG, then environment variables, each layer
// overriding the previous one.
package startup
