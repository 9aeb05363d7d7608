package types

import "strings"

// InputType is the kind of reference a user handed to the save command.
type InputType int

const (
	// HLSURL is a remote .m3u/.m3u8 playlist.
	HLSURL InputType = iota
	// DASHURL is a remote .mpd/.xml manifest.
	DASHURL
	// Website is any other remote page, scraped for manifest links.
	Website
	// HLSLocalFile is a playlist on disk.
	HLSLocalFile
	// DASHLocalFile is a manifest on disk.
	DASHLocalFile
	// LocalFile is any other local path.
	LocalFile
)

func (t InputType) String() string {
	switch t {
	case HLSURL:
		return "hls_url"
	case DASHURL:
		return "dash_url"
	case Website:
		return "website"
	case HLSLocalFile:
		return "hls_local_file"
	case DASHLocalFile:
		return "dash_local_file"
	case LocalFile:
		return "local_file"
	default:
		return "unknown"
	}
}

// IsHLS reports whether the input is an HLS playlist, remote or local.
func (t InputType) IsHLS() bool {
	return t == HLSURL || t == HLSLocalFile
}

// IsDASH reports whether the input is a DASH manifest, remote or local.
func (t InputType) IsDASH() bool {
	return t == DASHURL || t == DASHLocalFile
}

// IsWebsite reports whether the input must be scraped for links first.
func (t InputType) IsWebsite() bool {
	return t == Website
}

// IsURL reports whether the input lives behind an http(s) address.
func (t InputType) IsURL() bool {
	return t == HLSURL || t == DASHURL || t == Website
}

// Classify maps a raw input reference to its InputType.
// Playlist suffixes win over manifest suffixes; everything else is a generic
// page (for http inputs) or file.
func Classify(raw string) InputType {
	ref := stripQuery(raw)
	remote := strings.HasPrefix(ref, "http")

	switch {
	case hasPlaylistSuffix(ref):
		if remote {
			return HLSURL
		}
		return HLSLocalFile
	case hasManifestSuffix(ref):
		if remote {
			return DASHURL
		}
		return DASHLocalFile
	case remote:
		return Website
	default:
		return LocalFile
	}
}

func stripQuery(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}

// Also matches the compound .ts.m3u8 suffix.
func hasPlaylistSuffix(s string) bool {
	return strings.HasSuffix(s, ".m3u") || strings.HasSuffix(s, ".m3u8")
}

func hasManifestSuffix(s string) bool {
	return strings.HasSuffix(s, ".mpd") || strings.HasSuffix(s, ".xml")
}
