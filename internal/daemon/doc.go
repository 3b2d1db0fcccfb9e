// Package daemon coordinates the long-running mosaic process.
//
// It wires configuration, the library scan, the media catalog, the mutation
// pipeline, the filesystem watcher, and the HTTP server into a single
// lifecycle with flock-based locking to prevent multiple instances over the
// same library. Startup is ordered so every service sees a fully loaded
// store; shutdown runs in reverse so the pipeline's final flush happens
// after the last request is drained.
//
// Keep orchestration logic here: the services themselves live in their
// respective packages while the daemon focuses on startup, shutdown, and
// high level coordination.
package daemon
