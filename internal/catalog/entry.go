package catalog

import (
	"sort"
	"time"
)

// Entry is one photo in the catalog. The JSON shape is consumed by the
// gallery front-end and must stay stable.
type Entry struct {
	FileName   string     `json:"fileName"`
	FileExt    string     `json:"fileExt"`
	FullName   string     `json:"fullName"`
	Dimensions Dimensions `json:"dimensions"`
	FileSize   int64      `json:"fileSize"`
	Camera     Camera     `json:"camera"`
	Exposure   Exposure   `json:"exposure"`
	DateTime   *time.Time `json:"dateTime,omitempty"`
	GPS        *GPS       `json:"gps"`
	Location   Location   `json:"location"`
	Colors     []string   `json:"colors"`
	Metadata   Metadata   `json:"metadata"`
}

// Dimensions is the stored pixel size, before EXIF rotation.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Camera identifies the capturing device. Unknown fields are empty strings.
type Camera struct {
	Make  string `json:"make"`
	Model string `json:"model"`
	Lens  string `json:"lens"`
}

// Exposure holds shooting parameters; absent values are omitted.
type Exposure struct {
	ExposureTime *float64 `json:"exposureTime,omitempty"`
	FNumber      *float64 `json:"fNumber,omitempty"`
	ISO          *int     `json:"iso,omitempty"`
	FocalLength  *float64 `json:"focalLength,omitempty"`
}

// GPS is a decimal-degree position.
type GPS struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Coordinates repeats the GPS position inside Location.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is a resolved address. It marshals to {} for photos without GPS.
type Location struct {
	Coordinates      *Coordinates `json:"coordinates,omitempty"`
	Country          string       `json:"country,omitempty"`
	Province         string       `json:"province,omitempty"`
	City             string       `json:"city,omitempty"`
	District         string       `json:"district,omitempty"`
	Street           string       `json:"street,omitempty"`
	FormattedAddress string       `json:"formattedAddress,omitempty"`
}

// Metadata describes the encoded file.
type Metadata struct {
	Orientation *int   `json:"orientation,omitempty"`
	Format      string `json:"format"`
}

// sortTime is the capture time, or the Unix epoch when unknown.
func (e *Entry) sortTime() time.Time {
	if e.DateTime == nil {
		return time.Unix(0, 0)
	}
	return *e.DateTime
}

// SortEntries orders entries newest first. Entries without a capture time
// use the Unix epoch and therefore sort after every dated photo. Ties keep
// their input order.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].sortTime().After(entries[j].sortTime())
	})
}
