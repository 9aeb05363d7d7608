package muxer

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestLocator_FindsFirstMatch(t *testing.T) {
	files := map[string]bool{
		filepath.Join("/opt/b", "ffmpeg"): true,
		filepath.Join("/opt/c", "ffmpeg"): true,
	}
	l := &Locator{
		Getenv: func(string) string { return "/opt/a::/opt/b:/opt/c" },
		IsFile: func(p string) bool { return files[p] },
		GOOS:   "linux",
	}
	got, err := l.Find()
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got != filepath.Join("/opt/b", "ffmpeg") {
		t.Fatalf("Find()=%q", got)
	}
}

func TestLocator_WindowsBinaryAndSeparator(t *testing.T) {
	var tried []string
	l := &Locator{
		Getenv: func(string) string { return `C:\bin;D:\tools` },
		IsFile: func(p string) bool {
			tried = append(tried, p)
			return false
		},
		GOOS: "windows",
	}
	if _, err := l.Find(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Find() error = %v, want ErrNotFound", err)
	}
	if len(tried) != 2 {
		t.Fatalf("tried %d entries, want 2: %v", len(tried), tried)
	}
	for _, p := range tried {
		if !strings.HasSuffix(p, "ffmpeg.exe") {
			t.Fatalf("tried %q, want ffmpeg.exe", p)
		}
	}
}

func TestLocator_ReadsPathOnce(t *testing.T) {
	calls := 0
	l := &Locator{
		Getenv: func(string) string {
			calls++
			return ""
		},
		GOOS: "linux",
	}
	for i := 0; i < 3; i++ {
		if _, err := l.Find(); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Find() error = %v, want ErrNotFound", err)
		}
	}
	if calls != 1 {
		t.Fatalf("Getenv called %d times, want 1", calls)
	}
}

func TestLocator_RealFilesystem(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fixture is a unix executable")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, BinaryName("linux"))
	if err := os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	l := &Locator{
		Getenv: func(string) string { return dir },
		GOOS:   "linux",
	}
	got, err := l.Find()
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got != bin {
		t.Fatalf("Find()=%q, want %q", got, bin)
	}
}

func TestLocator_SkipsNonExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("execute bits are not used on windows")
	}
	tests := []struct {
		name    string
		setup   func(t *testing.T, dir string)
		wantErr bool
	}{
		{
			name: "executable",
			setup: func(t *testing.T, dir string) {
				writeFixture(t, filepath.Join(dir, "ffmpeg"), 0o755)
			},
		},
		{
			name: "missing exec bit",
			setup: func(t *testing.T, dir string) {
				writeFixture(t, filepath.Join(dir, "ffmpeg"), 0o644)
			},
			wantErr: true,
		},
		{
			name: "directory named ffmpeg",
			setup: func(t *testing.T, dir string) {
				if err := os.Mkdir(filepath.Join(dir, "ffmpeg"), 0o755); err != nil {
					t.Fatalf("mkdir: %v", err)
				}
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(t, dir)
			l := &Locator{Getenv: func(string) string { return dir }, GOOS: "linux"}
			got, err := l.Find()
			if tt.wantErr {
				if !errors.Is(err, ErrNotFound) {
					t.Fatalf("Find()=%q,%v want ErrNotFound", got, err)
				}
				return
			}
			if err != nil || got != filepath.Join(dir, "ffmpeg") {
				t.Fatalf("Find()=%q,%v", got, err)
			}
		})
	}
}

func TestLocator_LaterExecutableWins(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("execute bits are not used on windows")
	}
	plain, exe := t.TempDir(), t.TempDir()
	writeFixture(t, filepath.Join(plain, "ffmpeg"), 0o644)
	writeFixture(t, filepath.Join(exe, "ffmpeg"), 0o755)
	l := &Locator{
		Getenv: func(string) string { return plain + ":" + exe },
		GOOS:   "linux",
	}
	got, err := l.Find()
	if err != nil || got != filepath.Join(exe, "ffmpeg") {
		t.Fatalf("Find()=%q,%v want %q", got, err, filepath.Join(exe, "ffmpeg"))
	}
}

func writeFixture(t *testing.T, path string, mode os.FileMode) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), mode); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if err := os.Chmod(path, mode); err != nil {
		t.Fatalf("chmod fixture: %v", err)
	}
}
