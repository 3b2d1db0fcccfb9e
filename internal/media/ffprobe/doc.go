// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// This package has no mosaic-specific dependencies and could be extracted
// as a standalone library. Inspect executes the binary with a -show_entries
// selection limited to the fields Result decodes; helper methods pull out
// what the catalog cares about: container duration and the first video
// stream's dimensions and codec.
package ffprobe
