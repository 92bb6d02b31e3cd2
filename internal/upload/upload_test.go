package upload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStore_SaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public", "uploads")
	s := NewStore(dir, "/public/uploads")

	stored, err := s.Save("photo.jpg", strings.NewReader("jpeg bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(stored.Path)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "jpeg bytes" {
		t.Errorf("content = %q", data)
	}
	if filepath.Dir(stored.Path) != dir {
		t.Errorf("stored in %q, want %q", filepath.Dir(stored.Path), dir)
	}
	if !strings.HasSuffix(stored.Name, "_photo.jpg") {
		t.Errorf("name = %q, want suffix _photo.jpg", stored.Name)
	}
	if stored.URL != "/public/uploads/"+stored.Name {
		t.Errorf("url = %q", stored.URL)
	}
}

func TestStore_SameNameTwiceGivesDistinctFiles(t *testing.T) {
	s := NewStore(t.TempDir(), "public/uploads")

	a, err := s.Save("photo.jpg", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("first Save: %v", err)
	}
	b, err := s.Save("photo.jpg", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}

	if a.Name == b.Name || a.Path == b.Path {
		t.Fatalf("expected distinct names, got %q twice", a.Name)
	}

	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 files, found %d", len(entries))
	}
}

func TestStore_SaveFailureIsUploadError(t *testing.T) {
	// A regular file where the directory should be makes MkdirAll fail.
	base := t.TempDir()
	blocker := filepath.Join(base, "uploads")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, err := NewStore(blocker, "/public/uploads").Save("a.png", strings.NewReader("x"))

	var upErr *Error
	if !errors.As(err, &upErr) {
		t.Fatalf("expected *upload.Error, got %T: %v", err, err)
	}
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\cat pic.png`, "cat_pic.png"},
		{".htaccess", "htaccess"},
		{"", "upload"},
		{"..", "upload"},
		{"ünïcode name!.gif", "_n_code_name_.gif"},
	}

	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := strings.Repeat("a", 300) + ".png"
	got := SanitizeName(long)
	if len(got) != maxNameLength || !strings.HasSuffix(got, ".png") {
		t.Errorf("long name sanitized to %q (len %d)", got, len(got))
	}
}
