// Package media stores event posters and profile pictures in an image host
// and hands back their public URLs.
package media

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var ErrNotManaged = errors.New("url is not managed by this store")

type Store interface {
	// Upload stores the image and returns its public URL.
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
	// Delete removes the image behind a URL previously returned by Upload.
	Delete(ctx context.Context, url string) error
}

// objectName builds a collision free name that keeps the original extension.
func objectName(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return uuid.New().String() + ext
}

func contentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	default:
		return "image/jpeg"
	}
}
