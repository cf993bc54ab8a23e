package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage persists uploaded images under Dir with random names.
type Storage struct {
	dir       string
	urlPrefix string
	allowed   map[string]bool
}

// New returns a Storage writing to dir and serving files under urlPrefix.
// Extensions are compared case-insensitively and without the leading dot.
func New(dir, urlPrefix string, extensions []string) *Storage {
	allowed := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		allowed[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}
	return &Storage{
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		allowed:   allowed,
	}
}

// Dir returns the directory files are written to.
func (s *Storage) Dir() string {
	return s.dir
}

// URLPrefix returns the path files are served under, without a trailing slash.
func (s *Storage) URLPrefix() string {
	return s.urlPrefix
}

// EnsureDir creates the upload directory if it does not exist.
func (s *Storage) EnsureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating upload directory: %w", err)
	}
	return nil
}

// Extension returns the lowercased final dot-segment of filename and whether
// it is allowed.
func (s *Storage) Extension(filename string) (string, bool) {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return "", false
	}
	ext := strings.ToLower(filename[i+1:])
	return ext, s.allowed[ext]
}

// Allowed reports whether filename has an allowed extension.
func (s *Storage) Allowed(filename string) bool {
	_, ok := s.Extension(filename)
	return ok
}

// Save writes the uploaded file and returns its stored name. A nil header or
// a file with a disallowed extension is ignored and yields "".
func (s *Storage) Save(fh *multipart.FileHeader) (string, error) {
	if fh == nil || fh.Filename == "" {
		return "", nil
	}
	ext, ok := s.Extension(filepath.Base(fh.Filename))
	if !ok {
		return "", nil
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("opening uploaded file: %w", err)
	}
	defer src.Close()

	return s.write(src, ext)
}

func (s *Storage) write(src io.Reader, ext string) (string, error) {
	name := NewName(ext)

	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating upload %s: %w", name, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("writing upload %s: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("closing upload %s: %w", name, err)
	}
	return name, nil
}

// NewName returns a random 32-character hex name with the given extension.
func NewName(ext string) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + "." + ext
}

// URL returns the absolute URL of a stored file. base is scheme://host
// without a trailing slash.
func (s *Storage) URL(base, name string) string {
	return strings.TrimRight(base, "/") + path.Join(s.urlPrefix, name)
}

// Path returns the filesystem path of a stored file. It rejects names that
// would escape the upload directory.
func (s *Storage) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", errors.New("invalid upload name")
	}
	return filepath.Join(s.dir, name), nil
}
