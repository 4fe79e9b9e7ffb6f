package convert

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mauserzjeh/dxt"
	"github.com/pierrec/lz4/v4"

	"linux-lavalamp/internal/utils"
)

// Magic opens every texture container.
const Magic = "LLTX0001"

type Format uint32

const (
	FormatRGBA8 Format = iota
	FormatDXT1
	FormatDXT5
)

func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatDXT1:
		return "DXT1"
	case FormatDXT5:
		return "DXT5"
	}
	return fmt.Sprintf("Format(%d)", uint32(f))
}

var ErrBadTexture = errors.New("bad texture")

// MaxSide bounds either texture dimension.
const MaxSide = 16384

const flagLZ4 = 1

// Header precedes the payload. RawSize is the payload size after lz4
// decompression; DataSize is what is stored.
type Header struct {
	Format   Format
	Width    uint32
	Height   uint32
	Flags    uint32
	RawSize  uint32
	DataSize uint32
}

func (h Header) Compressed() bool { return h.Flags&flagLZ4 != 0 }

// PayloadSize is the decoded payload length a format needs.
func PayloadSize(f Format, w, h int) int {
	bw, bh := (w+3)/4, (h+3)/4
	switch f {
	case FormatDXT1:
		return bw * bh * 8
	case FormatDXT5:
		return bw * bh * 16
	}
	return w * h * 4
}

func compress(payload []byte) ([]byte, bool) {
	buf := make([]byte, lz4.CompressBlockBound(len(payload)))
	n, err := lz4.CompressBlock(payload, buf, nil)
	if err != nil || n == 0 || n >= len(payload) {
		return payload, false
	}
	return buf[:n], true
}

// WriteTexture writes a header and payload. With lz4 set the payload is
// block-compressed unless that would not shrink it.
func WriteTexture(w io.Writer, f Format, width, height int, payload []byte, useLZ4 bool) error {
	if width <= 0 || height <= 0 || width > MaxSide || height > MaxSide {
		return fmt.Errorf("%w: size %dx%d", ErrBadTexture, width, height)
	}
	if want := PayloadSize(f, width, height); len(payload) != want {
		return fmt.Errorf("%w: %s %dx%d needs %d bytes, got %d", ErrBadTexture, f, width, height, want, len(payload))
	}

	h := Header{Format: f, Width: uint32(width), Height: uint32(height), RawSize: uint32(len(payload))}
	data := payload
	if useLZ4 {
		var ok bool
		if data, ok = compress(payload); ok {
			h.Flags |= flagLZ4
		}
	}
	h.DataSize = uint32(len(data))

	if _, err := io.WriteString(w, Magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, h); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// ReadHeader consumes the magic and header.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return h, err
	}
	if string(magic) != Magic {
		return h, fmt.Errorf("%w: invalid magic %q", ErrBadTexture, bytes.Trim(magic, "\x00"))
	}
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return h, err
	}
	if err := h.check(); err != nil {
		return h, err
	}
	return h, nil
}

// check bounds every size in h before anything is allocated from it.
func (h Header) check() error {
	if h.Width == 0 || h.Height == 0 || h.Width > MaxSide || h.Height > MaxSide {
		return fmt.Errorf("%w: size %dx%d", ErrBadTexture, h.Width, h.Height)
	}
	if h.Format > FormatDXT5 {
		return fmt.Errorf("%w: unsupported format %s", ErrBadTexture, h.Format)
	}
	want := PayloadSize(h.Format, int(h.Width), int(h.Height))
	if int(h.RawSize) != want {
		return fmt.Errorf("%w: %s %dx%d needs %d bytes, header says %d",
			ErrBadTexture, h.Format, h.Width, h.Height, want, h.RawSize)
	}
	if !h.Compressed() {
		if h.DataSize != h.RawSize {
			return fmt.Errorf("%w: stored %d bytes, raw %d", ErrBadTexture, h.DataSize, h.RawSize)
		}
		return nil
	}
	if h.DataSize == 0 || int(h.DataSize) > lz4.CompressBlockBound(want) {
		return fmt.Errorf("%w: lz4 block of %d bytes for %d raw", ErrBadTexture, h.DataSize, want)
	}
	return nil
}

// ReadPayload reads the stored bytes after h and undoes lz4.
func ReadPayload(r io.Reader, h Header) ([]byte, error) {
	data := make([]byte, h.DataSize)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	if !h.Compressed() {
		return data, nil
	}
	utils.Debug("Texture: decompressing LZ4 %d -> %d", h.DataSize, h.RawSize)
	raw := make([]byte, h.RawSize)
	n, err := lz4.UncompressBlock(data, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: lz4: %v", ErrBadTexture, err)
	}
	if n != len(raw) {
		return nil, fmt.Errorf("%w: lz4 produced %d of %d bytes", ErrBadTexture, n, len(raw))
	}
	return raw, nil
}

// ReadTexture decodes one texture into straight-alpha pixels.
func ReadTexture(r io.Reader) (*image.NRGBA, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	payload, err := ReadPayload(r, h)
	if err != nil {
		return nil, err
	}
	return decodePayload(h, payload)
}

func decodePayload(h Header, payload []byte) (*image.NRGBA, error) {
	w, ht := int(h.Width), int(h.Height)
	if want := PayloadSize(h.Format, w, ht); len(payload) != want {
		return nil, fmt.Errorf("%w: %s %dx%d needs %d bytes, got %d", ErrBadTexture, h.Format, w, ht, want, len(payload))
	}

	var pix []byte
	var err error
	switch h.Format {
	case FormatRGBA8:
		pix = payload
	case FormatDXT1:
		pix, err = dxt.DecodeDXT1(payload, uint(w), uint(ht))
	case FormatDXT5:
		pix, err = dxt.DecodeDXT5(payload, uint(w), uint(ht))
	default:
		return nil, fmt.Errorf("%w: unsupported format %s", ErrBadTexture, h.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadTexture, h.Format, err)
	}
	utils.Debug("Texture: decoded %s %dx%d", h.Format, w, ht)

	return &image.NRGBA{
		Pix:    pix,
		Stride: w * 4,
		Rect:   image.Rect(0, 0, w, ht),
	}, nil
}

// ToNRGBA copies img into a zero-origin NRGBA unless it already is one.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) && n.Stride == n.Rect.Dx()*4 {
		return n
	}
	b := img.Bounds()
	n := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(n, n.Bounds(), img, b.Min, draw.Src)
	return n
}

// EncodeImage stores img as RGBA8.
func EncodeImage(w io.Writer, img image.Image, useLZ4 bool) error {
	n := ToNRGBA(img)
	return WriteTexture(w, FormatRGBA8, n.Rect.Dx(), n.Rect.Dy(), n.Pix, useLZ4)
}

// LoadImage reads a .tex container, or anything image.Decode knows.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".tex") {
		return ReadTexture(bufio.NewReader(f))
	}
	img, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// SaveImage writes img to path as an lz4 RGBA8 texture.
func SaveImage(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := EncodeImage(w, img, true); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
