package api

import "time"

// Request limits.
const (
	// DefaultMaxUploadBytes bounds a whole multipart upload request.
	DefaultMaxUploadBytes = 100 << 20
	// DefaultMaxUploadFiles is the number of photos accepted per request.
	DefaultMaxUploadFiles = 100
	// uploadMemory is the part of a multipart form held in memory before
	// spilling to temp files.
	uploadMemory = 32 << 20
	// uploadReadTimeout replaces the server read timeout on /upload.
	uploadReadTimeout = 5 * time.Minute
	// uploadWriteTimeout replaces the server write timeout on /upload.
	uploadWriteTimeout = 5 * time.Minute
)

// Cache-Control header values.
const (
	CacheOneWeek = "public, max-age=604800"
	CacheNoStore = "no-cache"
)
