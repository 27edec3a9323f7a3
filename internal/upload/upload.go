// Package upload accepts sample photos submitted as data URLs and stores
// them on disk for analysis.
package upload

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DataURLPrefix is the only accepted data URL header.
	DataURLPrefix = "data:image/jpeg;base64,"
	// MaxImageBytes bounds the decoded image size.
	MaxImageBytes = 50 * 1024

	fileTimeLayout = "20060102_150405"
)

var (
	// ErrInvalidInput marks client errors: the request should be rejected with 400.
	ErrInvalidInput = errors.New("invalid image input")
	ErrMissingImage = fmt.Errorf("%w: no image provided", ErrInvalidInput)
	ErrFormat       = fmt.Errorf("%w: expected %s data URL", ErrInvalidInput, strings.TrimSuffix(DataURLPrefix, ","))
	ErrEncoding     = fmt.Errorf("%w: invalid base64 payload", ErrInvalidInput)
	ErrTooLarge     = fmt.Errorf("%w: image exceeds %d KB", ErrInvalidInput, MaxImageBytes/1024)
)

// DecodeDataURL validates a JPEG data URL and returns the image bytes.
func DecodeDataURL(dataURL string) ([]byte, error) {
	if dataURL == "" {
		return nil, ErrMissingImage
	}
	if !strings.HasPrefix(dataURL, DataURLPrefix) {
		return nil, ErrFormat
	}

	payload := strings.TrimPrefix(dataURL, DataURLPrefix)
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+2 {
		return nil, ErrTooLarge
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	if len(raw) == 0 {
		return nil, ErrMissingImage
	}
	if len(raw) > MaxImageBytes {
		return nil, ErrTooLarge
	}
	return raw, nil
}

// Store writes uploads into a directory.
type Store struct {
	dir   string
	now   func() time.Time
	newID func() string
}

// NewStore creates dir if needed and returns a Store writing into it.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Store{
		dir:   dir,
		now:   time.Now,
		newID: uuid.NewString,
	}, nil
}

// Save writes data as <UTC yyyymmdd_HHMMSS>_<uuid>.jpg and returns its path.
func (s *Store) Save(data []byte) (string, error) {
	name := fmt.Sprintf("%s_%s.jpg", s.now().UTC().Format(fileTimeLayout), s.newID())
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("write upload %s: %w", name, err)
	}
	return path, nil
}

// Remove deletes a saved upload. Missing files are ignored.
func (s *Store) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}
