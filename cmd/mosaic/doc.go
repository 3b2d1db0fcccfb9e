// Command mosaic runs the tri-state video tagging service and its
// supporting tools: the HTTP daemon, offline query evaluation, library
// summaries, and configuration helpers.
package main
