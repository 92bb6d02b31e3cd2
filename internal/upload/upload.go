// Package upload stores submitted images on local disk.
package upload

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/oklog/ulid/v2"
)

const maxNameLength = 100

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Error is returned when an upload could not be written.
type Error struct {
	Name string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store upload %q: %v", e.Name, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Stored describes a file written by Store.
type Stored struct {
	// Name is the unique file name on disk.
	Name string
	// Path is the full path on disk.
	Path string
	// URL is the public path the file is served under.
	URL string
}

// Store writes uploads into a single directory.
type Store struct {
	dir       string
	urlPrefix string
}

// NewStore creates a Store writing into dir and serving files under urlPrefix
// (e.g. "/public/uploads").
func NewStore(dir, urlPrefix string) *Store {
	return &Store{
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}
}

// Dir returns the upload directory.
func (s *Store) Dir() string { return s.dir }

// Save writes r under a new unique name derived from originalName. The
// directory is created if missing.
func (s *Store) Save(originalName string, r io.Reader) (Stored, error) {
	name := UniqueName(originalName)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Stored{}, &Error{Name: originalName, Err: err}
	}

	full := filepath.Join(s.dir, name)
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Stored{}, &Error{Name: originalName, Err: err}
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return Stored{}, &Error{Name: originalName, Err: err}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return Stored{}, &Error{Name: originalName, Err: err}
	}

	return Stored{
		Name: name,
		Path: full,
		URL:  path.Join(s.urlPrefix, name),
	}, nil
}

// UniqueName prefixes the sanitized original name with a ULID: a
// millisecond timestamp followed by random bits.
func UniqueName(originalName string) string {
	return ulid.Make().String() + "_" + SanitizeName(originalName)
}

// SanitizeName reduces a client-supplied file name to a safe base name.
func SanitizeName(name string) string {
	// Clients on Windows send backslash separated paths.
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".")

	if len(name) > maxNameLength {
		ext := filepath.Ext(name)
		if len(ext) > 10 {
			ext = ""
		}
		name = name[:maxNameLength-len(ext)] + ext
	}

	if name == "" || name == "_" {
		return "upload"
	}
	return name
}
