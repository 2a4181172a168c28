// Package imaging converts images to and from the tensor layout of the
// 320x320 segmentation model served under /models/.
package imaging

import (
	"bytes"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	"image/png"
	"math"

	_ "golang.org/x/image/bmp" // register decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

// Size is the width and height of the model input and mask.
const Size = 320

const plane = Size * Size

var (
	means = [3]float32{0.485, 0.456, 0.406}
	stds  = [3]float32{0.229, 0.224, 0.225}
)

// Encode resizes a PNG to Size x Size and returns its normalized RGB values
// in channel-first order, shape [1, 3, Size, Size].
//
// It returns nil if data is not a PNG.
func Encode(data []byte) []float32 {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, Size, Size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	out := make([]float32, 3*plane)
	for y := range Size {
		for x := range Size {
			px := dst.Pix[dst.PixOffset(x, y):]
			for c := range 3 {
				v := float32(px[c]) / 255
				out[c*plane+y*Size+x] = (v - means[c]) / stds[c]
			}
		}
	}
	return out
}

// Decode applies mask as the alpha channel of the image in data.
//
// mask holds Size x Size model outputs; it is min-max scaled to 0-255
// and resized to the image. The result is the raw non-premultiplied
// RGBA buffer of the image, 4 bytes per pixel, row by row.
//
// It returns nil on undecodable images and on malformed masks.
func Decode(data []byte, mask []float32) []byte {
	if len(mask) != plane {
		return nil
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	gray, ok := scaleMask(mask)
	if !ok {
		return nil
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	alpha := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(alpha, alpha.Bounds(), gray, gray.Bounds(), draw.Src, nil)

	res := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(res, res.Bounds(), src, b.Min, draw.Src)
	for y := range h {
		for x := range w {
			res.Pix[res.PixOffset(x, y)+3] = alpha.Pix[alpha.PixOffset(x, y)]
		}
	}
	return res.Pix
}

// scaleMask maps mask values linearly onto 0-255.
// A constant mask maps to 0.
func scaleMask(mask []float32) (*image.Gray, bool) {
	lo, hi := float32(math.Inf(1)), float32(math.Inf(-1))
	for _, v := range mask {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, false
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}

	gray := image.NewGray(image.Rect(0, 0, Size, Size))
	if hi == lo {
		return gray, true
	}
	for i, v := range mask {
		gray.Pix[i] = uint8(math.Round(float64((v - lo) / (hi - lo) * 255)))
	}
	return gray, true
}
