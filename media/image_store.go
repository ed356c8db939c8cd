package media

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrUnsupportedImage = errors.New("unsupported image format")
	ErrImageTooLarge    = errors.New("image too large")
)

// ImageStore keeps event pictures in a local directory.
type ImageStore struct {
	dir      string
	maxBytes int64
	log      *slog.Logger
}

func NewImageStore(dir string, maxBytes int64, log *slog.Logger) (*ImageStore, error) {
	if maxBytes <= 0 {
		return nil, fmt.Errorf("image size limit must be positive, got %d", maxBytes)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("image directory: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &ImageStore{dir: abs, maxBytes: maxBytes, log: log}, nil
}

// Save sniffs src, copies it under a fresh name and returns a file URL to the copy.
func (s *ImageStore) Save(src string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", err
	}
	if info.Size() > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes, limit is %d", ErrImageTooLarge, info.Size(), s.maxBytes)
	}

	detected, err := mimetype.DetectFile(src)
	if err != nil {
		return "", err
	}
	if _, ok := MatchesAny(detected.String(), EventImages); !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, detected.String())
	}

	dst := filepath.Join(s.dir, uuid.NewString()+detected.Extension())
	if err := copyFile(src, dst); err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	s.log.Debug("Image stored", "path", dst, "mime", detected.String(), "size", info.Size())
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(dst)}).String(), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
