// Package storage persists uploaded payloads and their thumbnails
// independently of the metadata that points at them.
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var ErrNotExist = errors.New("content does not exist")

// Sizes are the thumbnail widths generated for every image, largest first.
var Sizes = []int{500, 250, 100}

type Store interface {
	// Store writes a new original and returns the path it lives at.
	Store(ctx context.Context, data []byte, originalName string) (string, error)
	// Put writes data at an exact path, replacing what was there.
	Put(ctx context.Context, path string, data []byte) error
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// ValidSize reports whether size is one of the generated thumbnail widths.
func ValidSize(size int) bool {
	for _, s := range Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// DerivativePath names the thumbnail of an original:
// /root/abc.png at width 250 becomes /root/abc_250.jpg.
func DerivativePath(original string, size int) string {
	base := strings.TrimSuffix(original, filepath.Ext(original))
	return base + "_" + strconv.Itoa(size) + ".jpg"
}

// uniqueName keeps the extension of the uploaded name.
func uniqueName(originalName string) string {
	return uuid.NewString() + filepath.Ext(originalName)
}
