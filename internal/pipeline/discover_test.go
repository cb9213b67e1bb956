package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"photo-pipeline/internal/filesystem"
	"photo-pipeline/internal/logging"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDiscover(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		dirs  []string
		want  []string
	}{
		{
			name:  "extension filter",
			files: []string{"a.jpg", "b.txt", "c.PNG", "d.bmp"},
			want:  []string{"a.jpg", "c.PNG"},
		},
		{
			name:  "all recognized extensions",
			files: []string{"f.tiff", "e.gif", "d.webp", "c.png", "b.jpeg", "a.jpg"},
			want:  []string{"a.jpg", "b.jpeg", "c.png", "d.webp", "e.gif", "f.tiff"},
		},
		{
			name:  "mixed case",
			files: []string{"X.JPG", "y.JpEg", "z.Tiff"},
			want:  []string{"X.JPG", "y.JpEg", "z.Tiff"},
		},
		{
			name:  "directories are skipped",
			files: []string{"keep.jpg"},
			dirs:  []string{"album.jpg", "nested"},
			want:  []string{"keep.jpg"},
		},
		{
			name:  "empty",
			files: nil,
			want:  []string{},
		},
		{
			name:  "no extension",
			files: []string{"jpg", "README"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files...)
			for _, d := range tt.dirs {
				if err := os.Mkdir(filepath.Join(dir, d), 0o755); err != nil {
					t.Fatal(err)
				}
			}

			got, err := Discover(dir, filesystem.DefaultRetryConfig())
			if err != nil {
				t.Fatalf("Discover() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Discover() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiscoverFollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	writeFiles(t, other, "real.jpg")

	if err := os.Symlink(filepath.Join(other, "real.jpg"), filepath.Join(dir, "link.jpg")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	if err := os.Symlink(filepath.Join(other, "missing.jpg"), filepath.Join(dir, "dangling.jpg")); err != nil {
		t.Fatal(err)
	}

	got, err := Discover(dir, filesystem.DefaultRetryConfig())
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"link.jpg"}) {
		t.Errorf("Discover() = %v, want [link.jpg]", got)
	}
}

func TestDiscoverMissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"), filesystem.DefaultRetryConfig())
	if err == nil {
		t.Error("Discover() on a missing directory returned nil error")
	}
}

func TestDerivativeCollisions(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  map[string][]string
	}{
		{"distinct", []string{"a.jpg", "b.png"}, map[string][]string{}},
		{"same stem", []string{"a.jpg", "a.png", "b.gif"}, map[string][]string{"a.webp": {"a.jpg", "a.png"}}},
		{"webp source", []string{"c.webp", "c.tiff"}, map[string][]string{"c.webp": {"c.webp", "c.tiff"}}},
		{"case differs", []string{"D.jpg", "d.jpg"}, map[string][]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := derivativeCollisions(tt.names); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("derivativeCollisions(%v) = %v, want %v", tt.names, got, tt.want)
			}
		})
	}
}

func TestDiscoverWarnsOnDerivativeCollision(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	defer logging.SetOutput(nil)

	dir := t.TempDir()
	writeFiles(t, dir, "a.jpg", "a.png", "b.jpg")

	got, err := Discover(dir, filesystem.DefaultRetryConfig())
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"a.jpg", "a.png", "b.jpg"}) {
		t.Errorf("Discover() = %v, colliding sources must still be returned", got)
	}

	out := buf.String()
	if !strings.Contains(out, "a.jpg, a.png all derive to a.webp") {
		t.Errorf("missing collision warning:\n%s", out)
	}
	if strings.Contains(out, "b.webp") {
		t.Errorf("unexpected warning for b.jpg:\n%s", out)
	}
}
