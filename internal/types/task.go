package types

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/famomatic/vsd/internal/keys"
	"github.com/famomatic/vsd/internal/selector"
)

// ErrMissingBaseURL is returned by Task.SegmentURL when a relative URI has
// nothing to resolve against.
var ErrMissingBaseURL = errors.New("non http input requires --baseurl")

// Task is the fully resolved description of one save run.
// It is built once by the orchestrator and then owned by the download engine.
type Task struct {
	ID        string
	Input     string
	InputType InputType
	BaseURL   string
	Directory string
	Output    string
	TempFile  string

	Client *http.Client `json:"-"`

	Quality selector.Quality
	Keys    []keys.Entry

	Threads     int
	RetryCount  int
	OneStream   bool
	Alternative bool
	Skip        bool
	Resume      bool
	RawPrompts  bool

	PreferAudioLang string
	PreferSubsLang  string

	// Dash is left false here and set by the manifest parser once it knows
	// which dialect Input actually is.
	Dash bool
}

// SegmentURL resolves uri the way segment and playlist references are
// resolved by the engine: absolute http URIs pass through, otherwise BaseURL
// wins over Input, and a non-http Input without BaseURL is an error.
func (t *Task) SegmentURL(uri string) (string, error) {
	if strings.HasPrefix(uri, "http") {
		return uri, nil
	}
	base := t.BaseURL
	if base == "" {
		if !strings.HasPrefix(t.Input, "http") {
			return "", fmt.Errorf("resolve %q: %w", uri, ErrMissingBaseURL)
		}
		base = t.Input
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url %q: %w", base, err)
	}
	ref, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse segment uri %q: %w", uri, err)
	}
	return b.ResolveReference(ref).String(), nil
}
