// Package library discovers videos on disk and keeps the label store in sync
// with them.
//
// The media root contains one directory per orientation (square, landscape,
// portrait); an item id is "<orientation>/<filename>.mp4". Scan builds a
// fresh store from the directories and their sidecar records; Watcher
// registers videos that appear while the daemon runs.
package library
