// Package media enriches library items with information derived from the
// video files themselves: cached ffprobe metadata through the Prober and
// first-frame poster thumbnails through the Thumbnailer.
//
// Both features degrade rather than fail when their external binary is
// missing; construction logs a single warning and the zero results flow
// through playlist responses as absent fields.
package media
