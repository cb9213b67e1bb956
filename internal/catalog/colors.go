package catalog

import (
	"fmt"
	"image"
	"image/color"
	"sort"
)

const (
	// DefaultColorCount is the number of dominant colours per photo.
	DefaultColorCount = 3
	// DefaultColorSampleWidth is the preview width colours are sampled from.
	DefaultColorSampleWidth = 200

	// quantBits is the per-channel precision of the colour histogram.
	quantBits = 4
)

type colorBucket struct {
	key     int
	count   int
	r, g, b uint64
}

// DominantColors returns up to n colours formatted as "rgb(r, g, b)", most
// frequent first. Pixels are grouped into a 4-bit-per-channel histogram and
// each bucket is reported as the mean of its pixels. Fully transparent
// pixels are ignored.
func DominantColors(img image.Image, n int) []string {
	if n <= 0 {
		return []string{}
	}

	buckets := make(map[int]*colorBucket)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			key := int(c.R>>(8-quantBits))<<(2*quantBits) |
				int(c.G>>(8-quantBits))<<quantBits |
				int(c.B>>(8-quantBits))

			bk, ok := buckets[key]
			if !ok {
				bk = &colorBucket{key: key}
				buckets[key] = bk
			}
			bk.count++
			bk.r += uint64(c.R)
			bk.g += uint64(c.G)
			bk.b += uint64(c.B)
		}
	}

	ranked := make([]*colorBucket, 0, len(buckets))
	for _, bk := range buckets {
		ranked = append(ranked, bk)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].key < ranked[j].key
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]string, 0, len(ranked))
	for _, bk := range ranked {
		cnt := uint64(bk.count)
		out = append(out, fmt.Sprintf("rgb(%d, %d, %d)", bk.r/cnt, bk.g/cnt, bk.b/cnt))
	}
	return out
}
