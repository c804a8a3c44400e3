package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		fullPath := filepath.Join(root, path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create file: %v", err)
		}
	}
}

func paths(files []FileInfo) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}

func TestScannerScan(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"main.py":                  "print('main')",
		"utils/helper.py":          "def helper(): pass",
		"stubs/types.pyi":          "x: int",
		"README.md":                "# Test",
		"app.go":                   "package main",
		".hidden/secret.py":        "x = 1",
		"venv/lib/site.py":         "x = 1",
		"pkg/__pycache__/mod.py":   "x = 1",
		".dtree/cache/state.py":    "x = 1",
		"node_modules/pkg/main.py": "x = 1",
	})

	results, err := New(DefaultOptions()).Scan(context.Background(), tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	got := strings.Join(paths(results), ",")
	want := "main.py,stubs/types.pyi,utils/helper.py"
	if got != want {
		t.Errorf("Scan() = %s, want %s", got, want)
	}

	for _, f := range results {
		if !filepath.IsAbs(f.FullPath) {
			t.Errorf("FullPath %q is not absolute", f.FullPath)
		}
		if f.Size == 0 {
			t.Errorf("Size of %s should be non-zero", f.Path)
		}
	}
}

func TestScannerWithIgnoreFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		".dtreeignore":              "# generated code\ngenerated/\n*_test.py\n!keep_test.py\n",
		"app.py":                    "x = 1",
		"app_test.py":               "x = 1",
		"keep_test.py":              "x = 1",
		"generated/models.py":       "x = 1",
		"src/core.py":               "x = 1",
		"src/.dtreeignore":          "legacy.py\n",
		"src/legacy.py":             "x = 1",
		"legacy.py":                 "x = 1",
		"src/nested/generated/a.py": "x = 1",
	})

	results, err := Scan(context.Background(), tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	got := strings.Join(paths(results), ",")
	want := "app.py,keep_test.py,legacy.py,src/core.py"
	if got != want {
		t.Errorf("Scan() = %s, want %s", got, want)
	}
}

func TestScannerSkipHidden(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"visible.py":        "x = 1",
		".config/setup.py":  "x = 1",
		".hidden_script.py": "x = 1",
	})

	opts := DefaultOptions()
	opts.SkipHidden = false
	results, err := New(opts).Scan(context.Background(), tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	got := strings.Join(paths(results), ",")
	want := ".config/setup.py,.hidden_script.py,visible.py"
	if got != want {
		t.Errorf("Scan() = %s, want %s", got, want)
	}
}

func TestScannerCustomInclude(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"a.py":  "x = 1",
		"b.txt": "text",
	})

	opts := DefaultOptions()
	opts.Include = func(path string) bool { return strings.HasSuffix(path, ".txt") }
	results, err := New(opts).Scan(context.Background(), tmpDir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(results) != 1 || results[0].Path != "b.txt" {
		t.Errorf("Scan() = %v, want only b.txt", paths(results))
	}
}

func TestScannerErrors(t *testing.T) {
	tmpDir := t.TempDir()
	file := filepath.Join(tmpDir, "f.py")
	writeTree(t, tmpDir, map[string]string{"f.py": "x = 1"})

	if _, err := Scan(context.Background(), filepath.Join(tmpDir, "missing")); err == nil {
		t.Error("scanning a missing directory should fail")
	}
	if _, err := Scan(context.Background(), file); err == nil {
		t.Error("scanning a file should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Scan(ctx, tmpDir); err == nil {
		t.Error("scanning with a cancelled context should fail")
	}
}

func TestIgnorePattern(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		isDir   bool
		match   bool
	}{
		// Simple patterns
		{"*.py", "file.py", false, true},
		{"*.py", "dir/file.py", false, true},
		{"*.py", "file.txt", false, false},
		{"build/", "build/file.py", false, true},
		{"build/", "other/build/file.py", false, true},
		{"build/", "builder.py", false, false},
		{"build/", "build", true, true},
		{"build/", "build", false, false},

		// Anchored patterns
		{"/build/", "build/file.py", false, true},
		{"/build/", "src/build/file.py", false, false},

		// Glob patterns
		{"*_test.py", "app_test.py", false, true},
		{"*_test.py", "deep/app_test.py", false, true},
		{"src/*.py", "src/app.py", false, true},
		{"src/*.py", "src/deep/app.py", false, false},
		{"src/*.py", "lib/src/app.py", false, false},

		// Double asterisk
		{"**/test/**", "test/file.py", false, true},
		{"**/test/**", "src/test/file.py", false, true},
		{"**/test/**", "src/deep/test/file.py", false, true},
		{"**/test/**", "testing/file.py", false, false},

		// Question mark and classes
		{"file?.py", "file1.py", false, true},
		{"file?.py", "file12.py", false, false},
		{"v[0-9].py", "v2.py", false, true},

		// Negation patterns still match; the caller flips the result
		{"!*.py", "file.py", false, true},
	}

	for _, tt := range tests {
		pattern := ParseIgnorePattern(tt.pattern)
		result := pattern.Match(tt.path, tt.isDir)
		if result != tt.match {
			t.Errorf("Pattern %q matching %q: got %v, want %v", tt.pattern, tt.path, result, tt.match)
		}
	}
}
