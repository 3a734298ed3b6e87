package clipboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	"golang.design/x/clipboard"

	"screen-region/src/capture"
)

var (
	writeMu sync.Mutex
	ready   bool
)

// Init prepares the system clipboard. Writes fail until it succeeds.
func Init() error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := clipboard.Init(); err != nil {
		return err
	}
	ready = true
	return nil
}

// WriteImage places img on the clipboard as PNG. Writes are serialised.
func WriteImage(img image.Image) error {
	data, err := encodePNG(img)
	if err != nil {
		return err
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	if !ready {
		return errors.New("clipboard not initialised")
	}
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}

func encodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, errors.New("no image to copy")
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode clipboard image: %w", err)
	}
	return buf.Bytes(), nil
}

// Sink copies every capture to the clipboard.
type Sink struct{}

func (Sink) Name() string { return "clipboard" }

func (Sink) Consume(_ context.Context, h capture.Handle) error {
	if h.Image == nil {
		return errors.New("capture has no image")
	}
	return WriteImage(h.Image)
}
