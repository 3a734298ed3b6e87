//go:build cgo

package capture

import (
	"image"
	"os"

	"github.com/chai2010/webp"
)

func saveWebP(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return webp.Encode(f, img, &webp.Options{Lossless: quality >= 100, Quality: float32(quality)})
}
