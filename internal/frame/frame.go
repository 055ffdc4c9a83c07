// Package frame provides the RGBA pixel buffer the pipeline consumes and
// its conversions to and from OpenCV matrices.
package frame

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"gocv.io/x/gocv"

	_ "golang.org/x/image/tiff"
)

// Frame is a width×height RGBA pixel buffer. It is owned by the caller,
// produced per tick or per capture, and never retained by the pipeline.
type Frame struct {
	Width  int
	Height int
	// Pix holds 4 bytes per pixel in RGBA order, row-major, no padding.
	Pix []byte
}

// Empty reports whether the frame has no usable pixel data: zero
// dimensions or a buffer that does not match them.
func (f Frame) Empty() bool {
	return f.Width <= 0 || f.Height <= 0 || len(f.Pix) != f.Width*f.Height*4
}

// ToMat converts the frame into an 8UC4 Mat. The caller owns the Mat and
// must Close it.
func (f Frame) ToMat() (gocv.Mat, error) {
	if f.Empty() {
		return gocv.NewMat(), fmt.Errorf("frame has no pixel data (%dx%d, %d bytes)", f.Width, f.Height, len(f.Pix))
	}
	mat, err := gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC4, f.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to wrap frame pixels: %w", err)
	}
	return mat, nil
}

// FromImage converts any decoded image into a Frame.
func FromImage(img image.Image) Frame {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return Frame{}
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	// image.RGBA guarantees Stride == 4*w for a zero-origin rect.
	return Frame{Width: w, Height: h, Pix: rgba.Pix}
}

// Load reads and decodes an image file (PNG, JPEG, or TIFF) into a Frame.
func Load(path string) (Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to decode image: %w", err)
	}
	return FromImage(img), nil
}

// RGBA returns the pixel at (x, y). Out-of-bounds reads return zeros.
func (f Frame) RGBA(x, y int) (r, g, b, a uint8) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height || f.Empty() {
		return 0, 0, 0, 0
	}
	i := (y*f.Width + x) * 4
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]
}
