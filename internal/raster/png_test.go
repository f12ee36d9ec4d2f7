package raster

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomImage(w, h int, seed int64) *image.NRGBA {
	rng := rand.New(rand.NewSource(seed))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	rng.Read(img.Pix)
	return img
}

func encodeBytes(t *testing.T, img *image.NRGBA) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, img))
	return buf.Bytes()
}

// buildPNG assembles a stream from raw IHDR fields and pre-filtered scanlines.
func buildPNG(t *testing.T, width, height int, bitDepth, colorType, interlace byte, scanlines []byte) []byte {
	t.Helper()
	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(height))
	ihdr[8] = bitDepth
	ihdr[9] = colorType
	ihdr[12] = interlace

	var idat bytes.Buffer
	zw := zlib.NewWriter(&idat)
	_, err := zw.Write(scanlines)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	var out bytes.Buffer
	out.Write(signature)
	for _, c := range []chunk{{"IHDR", ihdr[:]}, {"IDAT", idat.Bytes()}, {"IEND", nil}} {
		require.NoError(t, writeChunk(&out, c))
	}
	return out.Bytes()
}

// filterRows applies one filter type to every row of raw RGBA data.
func filterRows(img *image.NRGBA, kind byte) []byte {
	const bpp = 4
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	stride := w * bpp
	out := make([]byte, 0, h*(stride+1))
	prev := make([]byte, stride)
	for y := 0; y < h; y++ {
		cur := img.Pix[y*img.Stride : y*img.Stride+stride]
		out = append(out, kind)
		for i := range cur {
			var a, c int
			if i >= bpp {
				a = int(cur[i-bpp])
				c = int(prev[i-bpp])
			}
			b := int(prev[i])
			var pred int
			switch kind {
			case filterSub:
				pred = a
			case filterUp:
				pred = b
			case filterAverage:
				pred = (a + b) / 2
			case filterPaeth:
				pred = paeth(a, b, c)
			}
			out = append(out, cur[i]-byte(pred))
		}
		prev = cur
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {3, 7}, {64, 48}} {
		img := randomImage(size[0], size[1], int64(size[0]*size[1]))

		got, err := Decode(bytes.NewReader(encodeBytes(t, img)))
		require.NoError(t, err)
		assert.Equal(t, img.Rect, got.Rect)
		assert.Equal(t, img.Pix, got.Pix)
	}
}

func TestRoundTrip_SubImage(t *testing.T) {
	full := randomImage(20, 20, 7)
	sub := full.SubImage(image.Rect(5, 5, 12, 15)).(*image.NRGBA)

	got, err := Decode(bytes.NewReader(encodeBytes(t, sub)))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 7, 10), got.Rect)
	for y := 0; y < 10; y++ {
		for x := 0; x < 7; x++ {
			assert.Equal(t, sub.NRGBAAt(5+x, 5+y), got.NRGBAAt(x, y))
		}
	}
}

func TestEncode_ReadableByImagePNG(t *testing.T) {
	img := randomImage(17, 9, 3)
	decoded, err := png.Decode(bytes.NewReader(encodeBytes(t, img)))
	require.NoError(t, err)

	nrgba, ok := decoded.(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, img.Pix, nrgba.Pix)
}

func TestDecode_AllFilters(t *testing.T) {
	img := randomImage(9, 6, 11)
	for _, kind := range []byte{filterNone, filterSub, filterUp, filterAverage, filterPaeth} {
		data := buildPNG(t, 9, 6, 8, colorTypeRGBA, 0, filterRows(img, kind))
		got, err := Decode(bytes.NewReader(data))
		require.NoError(t, err, "filter %d", kind)
		assert.Equal(t, img.Pix, got.Pix, "filter %d", kind)
	}
}

func TestDecode_RGBFromImagePNG(t *testing.T) {
	// opaque images are written as RGB with adaptive per-row filters
	img := image.NewNRGBA(image.Rect(0, 0, 31, 13))
	for y := 0; y < 13; y++ {
		for x := 0; x < 31; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 8), G: uint8(y * 19), B: uint8(x ^ y), A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, img.Pix, got.Pix)
}

func TestDecode_Unsupported(t *testing.T) {
	encode := func(img image.Image) []byte {
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, img))
		return buf.Bytes()
	}
	cases := map[string][]byte{
		"gray":      encode(image.NewGray(image.Rect(0, 0, 2, 2))),
		"16-bit":    encode(image.NewNRGBA64(image.Rect(0, 0, 2, 2))),
		"paletted":  encode(image.NewPaletted(image.Rect(0, 0, 2, 2), color.Palette{color.Black, color.White})),
		"interlace": buildPNG(t, 1, 1, 8, colorTypeRGBA, 1, []byte{0, 1, 2, 3, 4}),
	}
	for name, data := range cases {
		_, err := Decode(bytes.NewReader(data))
		assert.ErrorIs(t, err, ErrUnsupported, name)
	}
}

func TestDecode_Malformed(t *testing.T) {
	good := encodeBytes(t, randomImage(4, 4, 1))

	_, err := Decode(bytes.NewReader([]byte("not a png")))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Decode(bytes.NewReader(good[:len(good)-20]))
	assert.ErrorIs(t, err, ErrMalformed)

	corrupt := append([]byte(nil), good...)
	corrupt[20] ^= 0xff // inside IHDR data
	_, err = Decode(bytes.NewReader(corrupt))
	assert.ErrorIs(t, err, ErrMalformed)

	bad := buildPNG(t, 1, 1, 8, colorTypeRGBA, 0, []byte{9, 1, 2, 3, 4})
	_, err = Decode(bytes.NewReader(bad))
	assert.ErrorIs(t, err, ErrMalformed)

	short := buildPNG(t, 2, 2, 8, colorTypeRGBA, 0, []byte{0, 1, 2, 3, 4})
	_, err = Decode(bytes.NewReader(short))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecode_OversizedChunkLength(t *testing.T) {
	data := append([]byte(nil), signature...)
	data = binary.BigEndian.AppendUint32(data, 1<<31-1)
	data = append(data, "IHDR"...)
	data = append(data, 0, 0, 0, 4, 0, 0, 0, 4, 8, 6, 0, 0, 0)

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := Decode(bytes.NewReader(data))
	runtime.ReadMemStats(&after)

	assert.ErrorIs(t, err, ErrMalformed)
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(1<<20))
}

func TestPaeth_Ties(t *testing.T) {
	assert.Equal(t, 10, paeth(10, 10, 10))
	// a=b: pa=pb, and a wins
	assert.Equal(t, 3, paeth(3, 3, 9))
	// a=2 b=8 c=5: p=5, pa=3, pb=3, pc=0 -> c
	assert.Equal(t, 5, paeth(2, 8, 5))
	// a=4 b=6 c=2: p=8, pa=4, pb=2, pc=6 -> b
	assert.Equal(t, 6, paeth(4, 6, 2))
	// a=6 b=4 c=5: p=5, pa=1, pb=1, pc=0 -> c
	assert.Equal(t, 5, paeth(6, 4, 5))
	// a=3 b=7 c=1: p=9, pa=6, pb=2, pc=8 -> b
	assert.Equal(t, 7, paeth(3, 7, 1))
	// a=7 b=3 c=9: p=1, pa=6, pb=2, pc=8 -> b
	assert.Equal(t, 3, paeth(7, 3, 9))
	// a=5 b=1 c=1: p=5, pa=0 -> a
	assert.Equal(t, 5, paeth(5, 1, 1))
}

func TestWriteChunk_CRC(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeChunk(&buf, chunk{kind: "IEND"}))
	b := buf.Bytes()
	require.Len(t, b, 12)
	assert.Equal(t, uint32(0), binary.BigEndian.Uint32(b[:4]))
	assert.Equal(t, crc32.ChecksumIEEE([]byte("IEND")), binary.BigEndian.Uint32(b[8:]))
	assert.Equal(t, uint32(0xAE426082), binary.BigEndian.Uint32(b[8:]))
}
