package catalog

import (
	"io"
	"math"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	"github.com/rwcarlsen/goexif/tiff"
)

func init() {
	// Maker notes carry the lens name on several Canon and Nikon bodies.
	exif.RegisterParsers(mknote.All...)
}

// exifFields is the subset of EXIF the catalog records.
type exifFields struct {
	Camera      Camera
	Exposure    Exposure
	DateTime    *time.Time
	GPS         *GPS
	Orientation *int
}

// readEXIF decodes EXIF from r. A file without EXIF yields an empty result
// and the decoder's error.
func readEXIF(r io.Reader) (exifFields, error) {
	var out exifFields

	x, err := exif.Decode(r)
	if err != nil {
		// Decode may still return partial data alongside a non-critical error.
		if x == nil || exif.IsCriticalError(err) {
			return out, err
		}
	}

	out.Camera = Camera{
		Make:  exifString(x, exif.Make),
		Model: exifString(x, exif.Model),
		Lens:  exifString(x, exif.LensModel),
	}

	out.Exposure = Exposure{
		ExposureTime: exifRat(x, exif.ExposureTime),
		FNumber:      exifRat(x, exif.FNumber),
		ISO:          exifInt(x, exif.ISOSpeedRatings),
		FocalLength:  exifRat(x, exif.FocalLength),
	}

	if t, err := x.DateTime(); err == nil && !t.IsZero() {
		out.DateTime = &t
	}

	if lat, long, err := x.LatLong(); err == nil && validCoordinate(lat, long) {
		out.GPS = &GPS{Latitude: lat, Longitude: long}
	}

	out.Orientation = exifInt(x, exif.Orientation)
	return out, nil
}

func exifString(x *exif.Exif, field exif.FieldName) string {
	tag, err := x.Get(field)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

func exifRat(x *exif.Exif, field exif.FieldName) *float64 {
	tag, err := x.Get(field)
	if err != nil || tag.Format() != tiff.RatVal {
		return nil
	}
	// Rat panics on a zero denominator, which manual lenses write as 0/0.
	n, d, err := tag.Rat2(0)
	if err != nil || d == 0 {
		return nil
	}
	f := float64(n) / float64(d)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func exifInt(x *exif.Exif, field exif.FieldName) *int {
	tag, err := x.Get(field)
	if err != nil || tag.Format() != tiff.IntVal {
		return nil
	}
	v, err := tag.Int(0)
	if err != nil {
		return nil
	}
	return &v
}

func validCoordinate(lat, long float64) bool {
	return !math.IsNaN(lat) && !math.IsNaN(long) &&
		lat >= -90 && lat <= 90 && long >= -180 && long <= 180
}
