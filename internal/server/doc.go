// Package server exposes the mosaic HTTP API: session endpoints, label
// reads and mutations, playlist and count queries, the public UI config,
// Prometheus metrics, and static serving for media and the frontend.
//
// Handlers stay thin: they translate requests into store, pipeline, and
// media calls and let respond.go map errors onto status codes. Every route
// is wrapped with request logging and metrics; login endpoints share one
// rate limiter.
package server
