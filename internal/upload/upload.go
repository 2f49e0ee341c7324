// Package upload owns the binary-attachment store: accepted images are
// written under a content root with generated names, records point at
// them by filename only, and cleanup is driven from record mutation.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// MaxFileSize is the upload size ceiling.
const MaxFileSize = 5 << 20 // 5 MiB

// Errors reported for rejected uploads.
var (
	ErrTooLarge        = errors.New("file exceeds the size limit")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// allowedTypes maps accepted sniffed content types to a canonical
// extension, used when the original filename carries none.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// knownExtensions are the extensions kept from original filenames.
// Anything else falls back to the canonical extension of the sniffed
// type, so a hostile filename never reaches the disk.
var knownExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true,
}

// Store is a disk-backed upload store rooted at a single directory.
type Store struct {
	dir string
}

// NewStore creates the content root if needed and returns a store for it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the content root.
func (s *Store) Dir() string {
	return s.dir
}

// Save reads an uploaded image, validates its type by sniffing bytes
// (not trusting client headers) and decoding the header, and writes it
// under a generated collision-free name. The returned name is the only
// reference to the file; callers store it on the owning record.
func (s *Store) Save(r io.Reader, originalName string) (string, error) {
	// Read one byte past the limit so oversized uploads are detectable
	// without buffering them whole.
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if len(data) > MaxFileSize {
		return "", ErrTooLarge
	}

	detected := http.DetectContentType(data)
	canonicalExt, ok := allowedTypes[detected]
	if !ok {
		return "", ErrUnsupportedType
	}

	// The bytes must actually decode as the image they claim to be.
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", ErrUnsupportedType
	}

	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if !knownExtensions[ext] {
		ext = canonicalExt
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0644); err != nil {
		return "", fmt.Errorf("writing upload: %w", err)
	}

	return name, nil
}

// Remove deletes a stored file by name. Removal is best-effort: a
// missing file is not an error, and other failures are logged rather
// than surfaced, because the owning record's deletion must not be
// blocked by filesystem state.
func (s *Store) Remove(name string) {
	if name == "" {
		return
	}
	// Names are generated here, so anything with a path separator is
	// not ours.
	if name != filepath.Base(name) {
		slog.Warn("refusing to remove upload with path separators", "name", name)
		return
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to remove upload", "name", name, "error", err)
	}
}
