package frame

import (
	"image"

	"golang.org/x/image/draw"
)

// ShrinkPreview scales a cutout down so its longest side is at most
// maxSide, preserving aspect ratio. Images already within the limit are
// returned unchanged. The cutout's alpha channel survives scaling, so
// the transparent background stays transparent.
func ShrinkPreview(cutout *image.NRGBA, maxSide int) *image.NRGBA {
	if cutout == nil || maxSide <= 0 {
		return cutout
	}
	b := cutout.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxSide {
		return cutout
	}

	scale := float64(maxSide) / float64(longest)
	nw := int(float64(w)*scale + 0.5)
	nh := int(float64(h)*scale + 0.5)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), cutout, b, draw.Src, nil)
	return dst
}
