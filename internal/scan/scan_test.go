package scan

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.go", "go"},
		{"src/app.ts", "typescript"},
		{"script.py", "python"},
		{"README.md", "markdown"},
		{"Makefile", ""},
		{"noext", ""},
	}

	for _, tt := range tests {
		if got := DetectLanguage(tt.path); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCountEffectiveLines(t *testing.T) {
	goSrc := "package main\n\n// comment\nfunc main() {\n\tprintln(\"hi\")\n}\n"
	if got := CountEffectiveLines(goSrc, "go"); got != 4 {
		t.Errorf("go effective lines = %d, want 4", got)
	}

	pySrc := "# header\nimport os\n\nprint('hi')\n"
	if got := CountEffectiveLines(pySrc, "python"); got != 2 {
		t.Errorf("python effective lines = %d, want 2", got)
	}

	// Unknown language counts every non-blank line.
	if got := CountEffectiveLines("a\n\nb\n", ""); got != 2 {
		t.Errorf("unknown language effective lines = %d, want 2", got)
	}
}

func TestScanFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.go")
	content := "package sample\n\n// doc\nvar X = 1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	fi := ScanFile(path)
	if fi.Language != "go" {
		t.Errorf("Language = %q, want go", fi.Language)
	}
	if fi.EffectiveLines != 2 {
		t.Errorf("EffectiveLines = %d, want 2", fi.EffectiveLines)
	}
	if fi.SizeBytes != int64(len(content)) {
		t.Errorf("SizeBytes = %d, want %d", fi.SizeBytes, len(content))
	}
}

func TestScanFile_Missing(t *testing.T) {
	fi := ScanFile("/nonexistent/thing.rs")
	if fi.Language != "rust" {
		t.Errorf("Language = %q, want rust from extension alone", fi.Language)
	}
	if fi.EffectiveLines != 0 || fi.SizeBytes != 0 {
		t.Error("missing file should scan to zero size and lines")
	}
}

func TestDetectProjectType(t *testing.T) {
	dir := t.TempDir()
	if got := DetectProjectType(dir); got != ProjectUnknown {
		t.Errorf("empty dir = %s, want unknown", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := DetectProjectType(dir); got != ProjectNode {
		t.Errorf("package.json dir = %s, want node", got)
	}

	// go.mod takes priority over package.json.
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module x"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := DetectProjectType(dir); got != ProjectGo {
		t.Errorf("go.mod dir = %s, want go", got)
	}

	if got := DetectProjectType(""); got != ProjectUnknown {
		t.Errorf("empty root = %s, want unknown", got)
	}
}

func TestDominantLanguage(t *testing.T) {
	infos := []FileInfo{
		{Path: "a.go", Language: "go", EffectiveLines: 100},
		{Path: "b.go", Language: "go", EffectiveLines: 50},
		{Path: "c.py", Language: "python", EffectiveLines: 120},
		{Path: "d.txt"},
	}
	if got := DominantLanguage(infos); got != "go" {
		t.Errorf("DominantLanguage = %q, want go", got)
	}
	if got := DominantLanguage(nil); got != "" {
		t.Errorf("DominantLanguage(nil) = %q, want empty", got)
	}
}
