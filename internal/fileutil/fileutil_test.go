package fileutil_test

// Notes:
// - The Write and Close error branches in WriteFileAtomic are not tested
//   because triggering disk write failures is platform-specific.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/derwolz/rebelreads-linkify/internal/fileutil"
)

// ---------------------------------------------------------------------------
// TestReadInput - File and stdin reading with a size cap
// ---------------------------------------------------------------------------

func TestReadInput(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	msgFile := filepath.Join(tempDir, "comment.txt")
	if err := os.WriteFile(msgFile, []byte("check /books/42 now"), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		stdin   string
		limit   int64
		want    string
		wantErr error
	}{
		{
			name: "reads file",
			path: msgFile,
			want: "check /books/42 now",
		},
		{
			name:  "dash reads stdin",
			path:  fileutil.StdinPath,
			stdin: "from stdin",
			want:  "from stdin",
		},
		{
			name:  "limit at size is accepted",
			path:  fileutil.StdinPath,
			stdin: "12345",
			limit: 5,
			want:  "12345",
		},
		{
			name:    "limit exceeded",
			path:    fileutil.StdinPath,
			stdin:   "123456",
			limit:   5,
			wantErr: fileutil.ErrInputTooLarge,
		},
		{
			name:    "empty path",
			path:    "",
			wantErr: fileutil.ErrEmptyPath,
		},
		{
			name:    "directory",
			path:    tempDir,
			wantErr: fileutil.ErrIsDirectory,
		},
		{
			name:    "missing file",
			path:    filepath.Join(tempDir, "missing.txt"),
			wantErr: fs.ErrNotExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := fileutil.ReadInput(tt.path, strings.NewReader(tt.stdin), tt.limit)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReadInput() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadInput() unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ReadInput() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestWriteFileAtomic - Temp file then rename
// ---------------------------------------------------------------------------

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	target := filepath.Join(tempDir, "out.json")

	if err := fileutil.WriteFileAtomic(target, []byte("first")); err != nil {
		t.Fatalf("WriteFileAtomic() unexpected error: %v", err)
	}
	if err := fileutil.WriteFileAtomic(target, []byte("second")); err != nil {
		t.Fatalf("WriteFileAtomic() overwrite unexpected error: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", data, "second")
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("failed to list dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1 (temp file leaked)", len(entries))
	}
}

func TestWriteFileAtomic_Errors(t *testing.T) {
	t.Parallel()

	if err := fileutil.WriteFileAtomic("", nil); !errors.Is(err, fileutil.ErrEmptyPath) {
		t.Errorf("empty path error = %v, want ErrEmptyPath", err)
	}

	missingDir := filepath.Join(t.TempDir(), "nope", "out.txt")
	if err := fileutil.WriteFileAtomic(missingDir, []byte("x")); err == nil {
		t.Error("expected error for missing parent directory, got nil")
	}
}

// ---------------------------------------------------------------------------
// TestFileExists - File existence check
// ---------------------------------------------------------------------------

func TestFileExists(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()

	testFile := filepath.Join(tempDir, "linkify.yaml")
	if err := os.WriteFile(testFile, []byte("site: {}"), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	testDir := filepath.Join(tempDir, "testdir")
	if err := os.Mkdir(testDir, 0o755); err != nil {
		t.Fatalf("failed to create test dir: %v", err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{
			name: "existing file returns true",
			path: testFile,
			want: true,
		},
		{
			name: "directory returns false",
			path: testDir,
			want: false,
		},
		{
			name: "nonexistent path returns false",
			path: filepath.Join(tempDir, "nonexistent"),
			want: false,
		},
		{
			name: "empty path returns false",
			path: "",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := fileutil.FileExists(tt.path)
			if got != tt.want {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestIsFilePath - Config name vs path detection
// ---------------------------------------------------------------------------

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{
			name:  "simple name returns false",
			input: "linkify",
			want:  false,
		},
		{
			name:  "relative path with dot-slash returns true",
			input: "./linkify.yaml",
			want:  true,
		},
		{
			name:  "absolute Unix path returns true",
			input: "/etc/linkify/prod.yaml",
			want:  true,
		},
		{
			name:  "Windows path with backslash returns true",
			input: "C:\\linkify\\prod.yaml",
			want:  true,
		},
		{
			name:  "name with dots but no slash returns false",
			input: "prod.v2",
			want:  false,
		},
		{
			name:  "empty string returns false",
			input: "",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := fileutil.IsFilePath(tt.input)
			if got != tt.want {
				t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
