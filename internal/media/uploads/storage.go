// Package uploads stores user-uploaded place photos on the local filesystem
// under random names and derives BlurHash placeholders for them.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/staybook/staybook-server/internal/id"
)

// maxExtensionLength bounds extensions taken from client file names.
const maxExtensionLength = 16

// ErrInvalidName is returned for names that do not refer to a stored file.
var ErrInvalidName = errors.New("invalid upload name")

// File describes a stored upload.
type File struct {
	// Name is the stored file name, e.g. "V1StGXR8_Z5jdHi6B-myT.jpg".
	Name string
	// Path is the public path returned to clients, e.g. "/V1StGXR8_Z5jdHi6B-myT.jpg".
	Path        string
	Size        int64
	ContentType string
}

// Storage manages the upload directory.
// Safe for concurrent use.
type Storage struct {
	dir    string
	logger *slog.Logger

	mu           sync.RWMutex
	placeholders map[string]string // stored name -> blurhash, "" when not an image
}

// NewStorage creates dir if needed.
func NewStorage(dir string, logger *slog.Logger) (*Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Storage{dir: dir, logger: logger, placeholders: make(map[string]string)}, nil
}

// Dir returns the directory files are stored in.
func (s *Storage) Dir() string {
	return s.dir
}

// Save streams r into a new file named by a fresh token plus the extension
// of originalName. When originalName has no usable extension the content is
// sniffed for one.
func (s *Storage) Save(originalName string, r io.Reader) (*File, error) {
	token, err := id.Token()
	if err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	keep := false
	defer func() {
		if !keep {
			_ = os.Remove(tmpPath)
		}
	}()

	size, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	mime, err := mimetype.DetectFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("detect content type: %w", err)
	}

	ext := ExtensionFromName(originalName)
	if ext == "" {
		ext = sanitizeExtension(strings.TrimPrefix(mime.Extension(), "."))
	}

	name := token
	if ext != "" {
		name += "." + ext
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Rename(tmpPath, filepath.Join(s.dir, name)); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	keep = true

	return &File{
		Name:        name,
		Path:        "/" + name,
		Size:        size,
		ContentType: mime.String(),
	}, nil
}

// Remove deletes a stored file. Missing files are not an error.
func (s *Storage) Remove(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.placeholders, filepath.Base(path))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// Exists reports whether name (with or without a leading slash) is stored.
func (s *Storage) Exists(name string) bool {
	path, err := s.resolve(name)
	if err != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Path returns the filesystem path for a stored name.
func (s *Storage) Path(name string) (string, error) {
	return s.resolve(name)
}

// resolve maps a public path or bare name to a file inside dir.
func (s *Storage) resolve(name string) (string, error) {
	name = strings.TrimPrefix(name, "/")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}

// ExtensionFromName returns the lower-cased last dot-separated segment of
// name when it is a plain [a-z0-9] token, else "".
func ExtensionFromName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return sanitizeExtension(name[i+1:])
}

func sanitizeExtension(ext string) string {
	ext = strings.ToLower(ext)
	if ext == "" || len(ext) > maxExtensionLength {
		return ""
	}
	for _, c := range ext {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return ext
}
