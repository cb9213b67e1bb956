// Package catalog builds the photo metadata catalog consumed by the gallery.
//
// For every recognized image in the source directory the Extractor collects
// file size, pixel dimensions, camera and exposure EXIF fields, capture time,
// GPS position, three dominant colours and a location derived from the GPS
// position by a LocationResolver. Entries are sorted newest first (photos
// without a capture time last) and written as one pretty-printed JSON array,
// replacing the previous catalog atomically.
//
// Failures are tolerated per file: unreadable EXIF leaves the EXIF fields
// empty, a colour extraction failure yields no colours, and a file whose
// header cannot be decoded is dropped from the catalog and logged.
//
// By default every file is processed in its own goroutine. Setting
// Config.Concurrency bounds the fan-out with a pool.Pool instead, which is
// advisable for very large directories.
package catalog
