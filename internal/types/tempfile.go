package types

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const fallbackStem = "video"

var unsafeNameChars = strings.NewReplacer(
	"<", "-",
	">", "-",
	":", "-",
	`"`, "-",
	"/", "-",
	`\`, "-",
	"|", "-",
	"?", "-",
)

// TempFileName derives the working file name from a raw input reference.
// Playlists become .ts (keeping an existing .ts of a .ts.m3u8), manifests
// become .m4s and anything else is sanitized and given .mp4.
func TempFileName(raw string) string {
	name := stripQuery(raw)
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}

	switch {
	case hasPlaylistSuffix(name):
		if strings.HasSuffix(name, ".ts.m3u8") {
			return strings.TrimSuffix(name, ".m3u8")
		}
		return setExtension(name, "ts")
	case hasManifestSuffix(name):
		return setExtension(name, "m4s")
	default:
		return setExtension(unsafeNameChars.Replace(name), "mp4")
	}
}

// TempFilePath places TempFileName inside dir (when set) and, unless a prior
// session is being resumed, tries "<stem> (<n>).<ext>" until exists reports
// a free name. A nil exists checks the local filesystem.
func TempFilePath(raw, dir string, resume bool, exists func(string) bool) string {
	if exists == nil {
		exists = FileExists
	}
	name := TempFileName(raw)
	path := joinDir(dir, name)
	if resume || !exists(path) {
		return path
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		candidate := joinDir(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if !exists(candidate) {
			return candidate
		}
	}
}

// FileExists reports whether path can be stat'ed. Any stat error counts as
// free, so the collision search always ends; creating the file surfaces it.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func joinDir(dir, name string) string {
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// setExtension replaces the text after the last dot of name with ext.
// A leading dot alone (".hidden") is part of the stem.
func setExtension(name, ext string) string {
	stem := name
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		stem = name[:i]
	}
	if stem == "" {
		stem = fallbackStem
	}
	return stem + "." + ext
}
