package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"testing"

	. "github.com/maskserve/maskserve/internal/utils/testing"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	ExpectNoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func near(t *testing.T, got, want, tolerance float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Errorf("got %v, want %v ± %v", got, want, tolerance)
	}
}

func TestEncodeNormalizesSolidColor(t *testing.T) {
	out := Encode(encodePNG(t, solid(40, 20, color.NRGBA{255, 0, 0, 255})))
	ExpectEqual(t, len(out), 3*Size*Size)

	for _, i := range []int{0, Size*Size/2 + 7, Size*Size - 1} {
		near(t, float64(out[i]), (1-0.485)/0.229, 0.02)
		near(t, float64(out[plane+i]), (0-0.456)/0.224, 0.02)
		near(t, float64(out[2*plane+i]), (0-0.406)/0.225, 0.02)
	}
}

func TestEncodeChannelFirstLayout(t *testing.T) {
	// white left half, black right half
	img := solid(64, 64, color.NRGBA{0, 0, 0, 255})
	for y := range 64 {
		for x := range 32 {
			img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}
	out := Encode(encodePNG(t, img))
	ExpectEqual(t, len(out), 3*Size*Size)

	row := 100 * Size
	for c := range 3 {
		left := float64(out[c*plane+row])
		right := float64(out[c*plane+row+Size-1])
		near(t, left, float64((1-means[c])/stds[c]), 0.02)
		near(t, right, float64(-means[c]/stds[c]), 0.02)
	}
}

func TestEncodeRejectsNonPNG(t *testing.T) {
	var buf bytes.Buffer
	ExpectNoError(t, jpeg.Encode(&buf, solid(8, 8, color.NRGBA{1, 2, 3, 255}), nil))
	ExpectEqual(t, len(Encode(buf.Bytes())), 0)
	ExpectEqual(t, len(Encode([]byte("not an image"))), 0)
	ExpectEqual(t, len(Encode(nil)), 0)
}

func halfMask() []float32 {
	mask := make([]float32, plane)
	for y := range Size {
		for x := Size / 2; x < Size; x++ {
			mask[y*Size+x] = 3.5
		}
	}
	return mask
}

func TestDecodeWritesAlpha(t *testing.T) {
	const w, h = 10, 6
	img := solid(w, h, color.NRGBA{10, 20, 30, 255})
	res := Decode(encodePNG(t, img), halfMask())
	ExpectEqual(t, len(res), w*h*4)

	for y := range h {
		left := res[(y*w)*4:]
		right := res[(y*w+w-1)*4:]
		ExpectBytesEqual(t, left[:3], []byte{10, 20, 30})
		ExpectBytesEqual(t, right[:3], []byte{10, 20, 30})
		ExpectTrue(t, left[3] < 10)
		ExpectTrue(t, right[3] > 245)
	}
}

func TestDecodeAnyFormat(t *testing.T) {
	var buf bytes.Buffer
	ExpectNoError(t, jpeg.Encode(&buf, solid(16, 8, color.NRGBA{200, 200, 200, 255}), nil))
	res := Decode(buf.Bytes(), halfMask())
	ExpectEqual(t, len(res), 16*8*4)
}

func TestDecodeConstantMask(t *testing.T) {
	mask := make([]float32, plane)
	for i := range mask {
		mask[i] = 0.7
	}
	res := Decode(encodePNG(t, solid(4, 4, color.NRGBA{1, 2, 3, 255})), mask)
	ExpectEqual(t, len(res), 4*4*4)
	for i := 3; i < len(res); i += 4 {
		ExpectEqual(t, res[i], byte(0))
	}
}

func TestDecodeMalformedInput(t *testing.T) {
	pngData := encodePNG(t, solid(4, 4, color.NRGBA{1, 2, 3, 255}))

	ExpectEqual(t, len(Decode([]byte("garbage"), halfMask())), 0)
	ExpectEqual(t, len(Decode(pngData, make([]float32, 10))), 0)
	ExpectEqual(t, len(Decode(pngData, nil)), 0)

	mask := halfMask()
	mask[42] = float32(math.NaN())
	ExpectEqual(t, len(Decode(pngData, mask)), 0)
}
