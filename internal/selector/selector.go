package selector

import (
	"fmt"
	"strings"
)

// nominal frame sizes of the named presets.
var presetSizes = map[Kind][2]uint16{
	P144:  {256, 144},
	P240:  {426, 240},
	P360:  {640, 360},
	P480:  {854, 480},
	P720:  {1280, 720},
	P1080: {1920, 1080},
	P2K:   {2048, 1080},
	P1440: {2560, 1440},
	P4K:   {3840, 2160},
	P8K:   {7680, 4320},
}

var presetLabels = map[Kind]string{
	P144:  "144p",
	P240:  "240p",
	P360:  "360p",
	P480:  "480p",
	P720:  "720p",
	P1080: "1080p",
	P2K:   "2k",
	P1440: "1440p",
	P4K:   "4k",
	P8K:   "8k",
}

// Target returns the frame size a variant stream should be matched against.
// ok is false for Highest and Lowest, which are decided by bandwidth alone.
func (q Quality) Target() (width, height uint16, ok bool) {
	switch q.Kind {
	case Highest, Lowest:
		return 0, 0, false
	case Resolution:
		return q.Width, q.Height, true
	default:
		size, found := presetSizes[q.Kind]
		return size[0], size[1], found
	}
}

// Matches reports whether a variant of the given size satisfies a sized
// quality. Presets match on height so letterboxed encodes still count.
func (q Quality) Matches(width, height int) bool {
	w, h, ok := q.Target()
	if !ok {
		return false
	}
	if q.Kind == Resolution {
		return int(w) == width && int(h) == height
	}
	return int(h) == height
}

// String renders the quality back in the grammar accepted by Parse.
func (q Quality) String() string {
	switch q.Kind {
	case Highest:
		return "highest"
	case Lowest:
		return "lowest"
	case Resolution:
		return fmt.Sprintf("%dx%d", q.Width, q.Height)
	default:
		if label, ok := presetLabels[q.Kind]; ok {
			return label
		}
		return "unknown"
	}
}

// MarshalText lets the quality appear as its token in JSON reports.
func (q Quality) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText parses a token produced by MarshalText or typed by a user.
func (q *Quality) UnmarshalText(text []byte) error {
	parsed, err := Parse(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
