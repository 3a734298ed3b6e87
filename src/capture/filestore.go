package capture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatWebP = "webp"
)

// FileStore writes captures to a directory.
type FileStore struct {
	dir     string
	format  string
	quality int
	now     func() time.Time
}

// NewFileStore validates the format (png, jpeg/jpg, webp) and quality (1-100).
func NewFileStore(dir, format string, quality int) (*FileStore, error) {
	f, err := normalizeFormat(format)
	if err != nil {
		return nil, err
	}
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("capture quality %d out of range 1-100", quality)
	}
	if strings.TrimSpace(dir) == "" {
		dir = os.TempDir()
	}
	return &FileStore{dir: dir, format: f, quality: quality, now: time.Now}, nil
}

func normalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatPNG:
		return FormatPNG, nil
	case FormatJPEG, "jpg":
		return FormatJPEG, nil
	case FormatWebP:
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("unsupported capture format %q", format)
	}
}

// Store implements Store.
func (s *FileStore) Store(ctx context.Context, h *Handle) error {
	if h.Image == nil {
		return errors.New("capture has no image")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create capture dir: %w", err)
	}

	name := fmt.Sprintf("capture_%s.%s", s.now().Format("20060102-150405.000"), s.format)
	path := filepath.Join(s.dir, name)

	var err error
	switch s.format {
	case FormatWebP:
		err = saveWebP(path, h.Image, s.quality)
	case FormatJPEG:
		err = imaging.Save(h.Image, path, imaging.JPEGQuality(s.quality))
	default:
		err = imaging.Save(h.Image, path)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	h.Path = path
	return nil
}
