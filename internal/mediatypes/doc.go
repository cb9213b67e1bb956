// Package mediatypes holds the dependency-free definitions shared by the
// derivative pipeline and the catalog extractor: which source extensions are
// recognized, what format each one carries, and how derivative file names
// are derived from source names.
//
// Extension matching is case-insensitive:
//
//	mediatypes.IsSourceImage("IMG_0001.JPG")   // true
//	mediatypes.IsSourceImage("notes.txt")      // false
//	mediatypes.DerivativeName("IMG_0001.JPG")  // "IMG_0001.webp"
package mediatypes
