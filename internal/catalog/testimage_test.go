package catalog

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"testing"
)

// ifdEntry is one TIFF directory entry used to build EXIF fixtures.
type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	data  []byte
}

func asciiEntry(tag uint16, s string) ifdEntry {
	b := append([]byte(s), 0)
	return ifdEntry{tag: tag, typ: 2, count: uint32(len(b)), data: b}
}

func shortEntry(tag uint16, v uint16) ifdEntry {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return ifdEntry{tag: tag, typ: 3, count: 1, data: b}
}

func longEntry(tag uint16, v uint32) ifdEntry {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return ifdEntry{tag: tag, typ: 4, count: 1, data: b}
}

func rationalEntry(tag uint16, pairs ...uint32) ifdEntry {
	b := make([]byte, 4*len(pairs))
	for i, v := range pairs {
		binary.LittleEndian.PutUint32(b[4*i:], v)
	}
	return ifdEntry{tag: tag, typ: 5, count: uint32(len(pairs) / 2), data: b}
}

func ifdSize(entries []ifdEntry) uint32 {
	size := uint32(2 + 12*len(entries) + 4)
	for _, e := range entries {
		if len(e.data) > 4 {
			size += uint32(len(e.data) + len(e.data)%2)
		}
	}
	return size
}

// encodeIFD lays out entries at offset start, with out-of-line values
// following the directory.
func encodeIFD(start uint32, entries []ifdEntry) []byte {
	var head, data bytes.Buffer
	le := binary.LittleEndian
	dataOff := start + uint32(2+12*len(entries)+4)

	_ = binary.Write(&head, le, uint16(len(entries)))
	for _, e := range entries {
		_ = binary.Write(&head, le, e.tag)
		_ = binary.Write(&head, le, e.typ)
		_ = binary.Write(&head, le, e.count)
		if len(e.data) <= 4 {
			v := make([]byte, 4)
			copy(v, e.data)
			head.Write(v)
			continue
		}
		_ = binary.Write(&head, le, dataOff+uint32(data.Len()))
		data.Write(e.data)
		if data.Len()%2 == 1 {
			data.WriteByte(0)
		}
	}
	_ = binary.Write(&head, le, uint32(0))
	return append(head.Bytes(), data.Bytes()...)
}

type exifFixture struct {
	make, model string
	dateTime    string // "2006:01:02 15:04:05"
	orientation uint16
	gps         bool
	// manualLens writes FNumber and FocalLength as 0/0.
	manualLens  bool
}

// buildEXIF returns a little-endian TIFF block with IFD0, the Exif
// sub-IFD and optionally a GPS IFD (39.9N, 116.4E).
func buildEXIF(f exifFixture) []byte {
	fNumber, focal := []uint32{28, 10}, []uint32{35, 1}
	if f.manualLens {
		fNumber, focal = []uint32{0, 0}, []uint32{0, 0}
	}

	exifIFD := []ifdEntry{
		rationalEntry(0x829A, 1, 250),     // ExposureTime
		rationalEntry(0x829D, fNumber...), // FNumber
		shortEntry(0x8827, 200),           // ISOSpeedRatings
	}
	if f.dateTime != "" {
		exifIFD = append(exifIFD, asciiEntry(0x9003, f.dateTime)) // DateTimeOriginal
	}
	exifIFD = append(exifIFD, rationalEntry(0x920A, focal...)) // FocalLength

	gpsIFD := []ifdEntry{
		asciiEntry(0x0001, "N"),
		rationalEntry(0x0002, 39, 1, 54, 1, 0, 1),
		asciiEntry(0x0003, "E"),
		rationalEntry(0x0004, 116, 1, 24, 1, 0, 1),
	}

	ifd0 := []ifdEntry{
		asciiEntry(0x010F, f.make),
		asciiEntry(0x0110, f.model),
		shortEntry(0x0112, f.orientation),
		longEntry(0x8769, 0), // Exif IFD pointer, patched below
	}
	if f.gps {
		ifd0 = append(ifd0, longEntry(0x8825, 0))
	}

	off0 := uint32(8)
	offExif := off0 + ifdSize(ifd0)
	offGPS := offExif + ifdSize(exifIFD)
	binary.LittleEndian.PutUint32(ifd0[3].data, offExif)
	if f.gps {
		binary.LittleEndian.PutUint32(ifd0[4].data, offGPS)
	}

	var out bytes.Buffer
	out.WriteString("II")
	_ = binary.Write(&out, binary.LittleEndian, uint16(42))
	_ = binary.Write(&out, binary.LittleEndian, off0)
	out.Write(encodeIFD(off0, ifd0))
	out.Write(encodeIFD(offExif, exifIFD))
	if f.gps {
		out.Write(encodeIFD(offGPS, gpsIFD))
	}
	return out.Bytes()
}

func solidImage(w, h int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// writeJPEG encodes img and, when f is non-nil, splices an APP1 EXIF
// segment in right after the SOI marker.
func writeJPEG(t *testing.T, path string, img image.Image, f *exifFixture) {
	t.Helper()

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()

	if f != nil {
		payload := append([]byte("Exif\x00\x00"), buildEXIF(*f)...)
		seg := []byte{0xFF, 0xE1, 0, 0}
		binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
		seg = append(seg, payload...)

		out := append([]byte{}, data[:2]...)
		out = append(out, seg...)
		data = append(out, data[2:]...)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}
