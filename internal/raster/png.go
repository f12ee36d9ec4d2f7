// Package raster reads and writes the 8-bit, non-interlaced RGB/RGBA subset
// of PNG used for biome textures and planet previews.
package raster

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"io"
)

var (
	ErrUnsupported = errors.New("unsupported raster")
	ErrMalformed   = errors.New("malformed raster")
)

var signature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

const (
	colorTypeRGB  = 2
	colorTypeRGBA = 6

	filterNone    = 0
	filterSub     = 1
	filterUp      = 2
	filterAverage = 3
	filterPaeth   = 4

	// maxDimension caps either side of a decoded image.
	maxDimension = 1 << 14
)

type header struct {
	width, height int
	bitDepth      byte
	colorType     byte
	compression   byte
	filter        byte
	interlace     byte
}

func (h header) bytesPerPixel() int {
	if h.colorType == colorTypeRGB {
		return 3
	}
	return 4
}

func parseHeader(data []byte) (header, error) {
	if len(data) != 13 {
		return header{}, fmt.Errorf("%w: IHDR length %d", ErrMalformed, len(data))
	}
	h := header{
		width:       int(binary.BigEndian.Uint32(data[0:4])),
		height:      int(binary.BigEndian.Uint32(data[4:8])),
		bitDepth:    data[8],
		colorType:   data[9],
		compression: data[10],
		filter:      data[11],
		interlace:   data[12],
	}
	switch {
	case h.width <= 0 || h.height <= 0:
		return header{}, fmt.Errorf("%w: empty image %dx%d", ErrMalformed, h.width, h.height)
	case h.width > maxDimension || h.height > maxDimension:
		return header{}, fmt.Errorf("%w: image %dx%d too large", ErrUnsupported, h.width, h.height)
	case h.bitDepth != 8:
		return header{}, fmt.Errorf("%w: bit depth %d", ErrUnsupported, h.bitDepth)
	case h.colorType != colorTypeRGB && h.colorType != colorTypeRGBA:
		return header{}, fmt.Errorf("%w: color type %d", ErrUnsupported, h.colorType)
	case h.compression != 0 || h.filter != 0:
		return header{}, fmt.Errorf("%w: compression %d, filter method %d", ErrUnsupported, h.compression, h.filter)
	case h.interlace != 0:
		return header{}, fmt.Errorf("%w: interlaced", ErrUnsupported)
	}
	return h, nil
}

type chunk struct {
	kind string
	data []byte
}

func readChunk(r io.Reader) (chunk, error) {
	var head [8]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return chunk{}, fmt.Errorf("%w: chunk header: %v", ErrMalformed, err)
	}
	length := binary.BigEndian.Uint32(head[:4])
	if length > 1<<31-1 {
		return chunk{}, fmt.Errorf("%w: chunk length %d", ErrMalformed, length)
	}

	// The declared length is untrusted; buffer only what the stream holds.
	data, err := io.ReadAll(io.LimitReader(r, int64(length)))
	if err != nil {
		return chunk{}, fmt.Errorf("%w: chunk %q data: %v", ErrMalformed, head[4:], err)
	}
	if uint32(len(data)) != length {
		return chunk{}, fmt.Errorf("%w: chunk %q data: %d of %d bytes", ErrMalformed, head[4:], len(data), length)
	}
	var trailer [4]byte
	if _, err := io.ReadFull(r, trailer[:]); err != nil {
		return chunk{}, fmt.Errorf("%w: chunk %q crc: %v", ErrMalformed, head[4:], err)
	}

	crc := crc32.NewIEEE()
	crc.Write(head[4:])
	crc.Write(data)
	if crc.Sum32() != binary.BigEndian.Uint32(trailer[:]) {
		return chunk{}, fmt.Errorf("%w: chunk %q crc mismatch", ErrMalformed, head[4:])
	}
	return chunk{kind: string(head[4:]), data: data}, nil
}

// Decode reads an 8-bit, non-interlaced RGB or RGBA PNG. RGB pixels get
// alpha 255.
func Decode(r io.Reader) (*image.NRGBA, error) {
	var sig [8]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil || !bytes.Equal(sig[:], signature) {
		return nil, fmt.Errorf("%w: bad signature", ErrMalformed)
	}

	first, err := readChunk(r)
	if err != nil {
		return nil, err
	}
	if first.kind != "IHDR" {
		return nil, fmt.Errorf("%w: first chunk is %q", ErrMalformed, first.kind)
	}
	h, err := parseHeader(first.data)
	if err != nil {
		return nil, err
	}

	var idat bytes.Buffer
	for {
		c, err := readChunk(r)
		if err != nil {
			return nil, err
		}
		if c.kind == "IEND" {
			break
		}
		switch {
		case c.kind == "IDAT":
			idat.Write(c.data)
		case c.kind == "PLTE":
			// suggested palette for truecolour images
		case c.kind[0]&0x20 == 0:
			return nil, fmt.Errorf("%w: critical chunk %q", ErrUnsupported, c.kind)
		}
	}

	zr, err := zlib.NewReader(&idat)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	defer zr.Close()

	bpp := h.bytesPerPixel()
	stride := h.width * bpp
	raw := make([]byte, h.height*(stride+1))
	if _, err := io.ReadFull(zr, raw); err != nil {
		return nil, fmt.Errorf("%w: image data: %v", ErrMalformed, err)
	}

	img := image.NewNRGBA(image.Rect(0, 0, h.width, h.height))
	prev := make([]byte, stride)
	for y := 0; y < h.height; y++ {
		line := raw[y*(stride+1) : (y+1)*(stride+1)]
		cur := line[1:]
		if err := unfilter(line[0], cur, prev, bpp); err != nil {
			return nil, fmt.Errorf("row %d: %w", y, err)
		}

		dst := img.Pix[y*img.Stride : y*img.Stride+h.width*4]
		if bpp == 4 {
			copy(dst, cur)
		} else {
			for x := 0; x < h.width; x++ {
				dst[4*x+0] = cur[3*x+0]
				dst[4*x+1] = cur[3*x+1]
				dst[4*x+2] = cur[3*x+2]
				dst[4*x+3] = 0xff
			}
		}
		prev = cur
	}
	return img, nil
}

// unfilter reverses the row filter in place. prev is the reconstructed
// previous row, all zero for the first row.
func unfilter(kind byte, cur, prev []byte, bpp int) error {
	switch kind {
	case filterNone:
	case filterSub:
		for i := bpp; i < len(cur); i++ {
			cur[i] += cur[i-bpp]
		}
	case filterUp:
		for i := range cur {
			cur[i] += prev[i]
		}
	case filterAverage:
		for i := range cur {
			var a int
			if i >= bpp {
				a = int(cur[i-bpp])
			}
			cur[i] += byte((a + int(prev[i])) / 2)
		}
	case filterPaeth:
		for i := range cur {
			var a, c int
			if i >= bpp {
				a = int(cur[i-bpp])
				c = int(prev[i-bpp])
			}
			cur[i] += byte(paeth(a, int(prev[i]), c))
		}
	default:
		return fmt.Errorf("%w: filter type %d", ErrMalformed, kind)
	}
	return nil
}

// paeth picks whichever of left, up and upper-left is nearest to
// left+up-upperLeft. Ties go to left, then up.
func paeth(a, b, c int) int {
	p := a + b - c
	pa, pb, pc := abs(p-a), abs(p-b), abs(p-c)
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Encode writes img as an 8-bit RGBA PNG with every row unfiltered.
func Encode(w io.Writer, img *image.NRGBA) error {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("cannot encode empty image %dx%d", width, height)
	}

	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(height))
	ihdr[8] = 8
	ihdr[9] = colorTypeRGBA

	var idat bytes.Buffer
	zw := zlib.NewWriter(&idat)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		if _, err := zw.Write([]byte{filterNone}); err != nil {
			return fmt.Errorf("failed to deflate row %d: %w", y, err)
		}
		if _, err := zw.Write(img.Pix[off : off+width*4]); err != nil {
			return fmt.Errorf("failed to deflate row %d: %w", y, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish deflate stream: %w", err)
	}

	if _, err := w.Write(signature); err != nil {
		return fmt.Errorf("failed to write signature: %w", err)
	}
	for _, c := range []chunk{
		{kind: "IHDR", data: ihdr[:]},
		{kind: "IDAT", data: idat.Bytes()},
		{kind: "IEND"},
	} {
		if err := writeChunk(w, c); err != nil {
			return err
		}
	}
	return nil
}

func writeChunk(w io.Writer, c chunk) error {
	buf := make([]byte, 0, 12+len(c.data))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(c.data)))
	buf = append(buf, c.kind...)
	buf = append(buf, c.data...)
	buf = binary.BigEndian.AppendUint32(buf, crc32.ChecksumIEEE(buf[4:]))
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("failed to write %s chunk: %w", c.kind, err)
	}
	return nil
}
