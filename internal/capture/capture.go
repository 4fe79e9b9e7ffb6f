// Package capture records composed frames as a sequence of lz4 textures.
package capture

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	"linux-lavalamp/internal/convert"
	"linux-lavalamp/internal/utils"
)

const magic = "LLCP0001"

var ErrEmptyFrame = errors.New("empty frame")

// Recorder appends frames to a capture file. Each frame carries its own
// size, so a capture may span container resizes.
type Recorder struct {
	f      *os.File
	w      *bufio.Writer
	fps    uint32
	frames int
}

func Create(path string, fps int) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriter(f)
	if _, err := io.WriteString(w, magic); err == nil {
		err = binary.Write(w, binary.LittleEndian, uint32(fps))
	}
	if err != nil {
		f.Close()
		return nil, err
	}
	utils.Debug("Capture: recording to %s at %d fps", path, fps)
	return &Recorder{f: f, w: w, fps: uint32(fps)}, nil
}

func (r *Recorder) Add(img image.Image) error {
	if img.Bounds().Empty() {
		return fmt.Errorf("%w at index %d", ErrEmptyFrame, r.frames)
	}
	if err := convert.EncodeImage(r.w, img, true); err != nil {
		return err
	}
	r.frames++
	return nil
}

func (r *Recorder) Frames() int { return r.frames }

func (r *Recorder) Close() error {
	if err := r.w.Flush(); err != nil {
		r.f.Close()
		return err
	}
	utils.Info("Capture: wrote %d frames", r.frames)
	return r.f.Close()
}

// Reader iterates the frames of a capture file.
type Reader struct {
	f   *os.File
	r   *bufio.Reader
	FPS int
}

func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := bufio.NewReader(f)
	head := make([]byte, len(magic))
	if _, err := io.ReadFull(r, head); err != nil {
		f.Close()
		return nil, err
	}
	if string(head) != magic {
		f.Close()
		return nil, fmt.Errorf("%s: not a capture file", path)
	}
	var fps uint32
	if err := binary.Read(r, binary.LittleEndian, &fps); err != nil {
		f.Close()
		return nil, err
	}
	return &Reader{f: f, r: r, FPS: int(fps)}, nil
}

// Next returns the next frame, or io.EOF after the last one.
func (r *Reader) Next() (*image.NRGBA, error) {
	if _, err := r.r.Peek(1); err != nil {
		return nil, err
	}
	return convert.ReadTexture(r.r)
}

func (r *Reader) Close() error { return r.f.Close() }
