//go:build !cgo

package capture

import (
	"errors"
	"image"
)

func saveWebP(string, image.Image, int) error {
	return errors.New("webp output requires a cgo build")
}
