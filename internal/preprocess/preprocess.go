package preprocess

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// TensorLen returns the number of float32 values Prepare emits for a square
// RGB image of the given side length.
func TensorLen(targetSize int) int {
	return targetSize * targetSize * 3
}

// Prepare decodes raw image bytes, resizes to targetSize x targetSize and
// returns the pixels as a channels-last float32 slice (H, W, C ordering, the
// layout both detection models expect). Values stay in the raw 0-255 range
// unless scale is set, in which case every value is divided by 255.
//
// Prepare is a pure function of its inputs; Lanczos3 resampling keeps the
// output deterministic for identical bytes.
func Prepare(data []byte, targetSize int, scale bool) ([]float32, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image buffer")
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	resized := resize.Resize(uint(targetSize), uint(targetSize), img, resize.Lanczos3)
	bounds := resized.Bounds()

	pixels := make([]float32, TensorLen(targetSize))
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()

			// RGBA returns 16-bit channels; the models want the 8-bit range.
			pixels[i] = float32(r >> 8)
			pixels[i+1] = float32(g >> 8)
			pixels[i+2] = float32(b >> 8)
			i += 3
		}
	}

	if scale {
		for j := range pixels {
			pixels[j] /= 255.0
		}
	}

	return pixels, nil
}
