// Package media uploads event flyers to an external object host.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUploadFailed     = errors.New("flyer upload failed")
	ErrUnsupportedMedia = errors.New("flyer must be an image")
	ErrFlyerTooLarge    = errors.New("flyer is too large")
	ErrEmptyFlyer       = errors.New("flyer is empty")
)

// Flyer is an uploaded image waiting to be stored.
type Flyer struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader stores flyers and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, flyer Flyer) (string, error)
	// Remove deletes a flyer previously returned by Upload.
	Remove(ctx context.Context, url string) error
}

// Validate checks size and content type before anything is sent upstream.
func (f Flyer) Validate(maxSize int64) error {
	if f.Body == nil || f.Size <= 0 {
		return ErrEmptyFlyer
	}
	if maxSize > 0 && f.Size > maxSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrFlyerTooLarge, f.Size, maxSize)
	}
	if !strings.HasPrefix(strings.ToLower(f.ContentType), "image/") {
		return fmt.Errorf("%w: got %q", ErrUnsupportedMedia, f.ContentType)
	}
	return nil
}

// ObjectKey returns a fresh key for filename, keeping its extension.
func ObjectKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\ ") {
		ext = ""
	}
	return "flyers/" + uuid.NewString() + ext
}
