// Package catalog caches ffprobe results in SQLite so playlist responses
// never probe a video twice.
//
// Rows are keyed by item id and carry the file size and mtime observed at
// probe time; a row whose recorded size or mtime no longer matches the file
// is stale and gets re-probed by the media layer. The database lives under
// the log directory and is safe to delete at any time: it is a cache, not
// a source of truth.
package catalog
