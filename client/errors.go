package client

import (
	"errors"
	"fmt"

	"github.com/famomatic/vsd/internal/keys"
	"github.com/famomatic/vsd/internal/muxer"
	"github.com/famomatic/vsd/internal/prompt"
	"github.com/famomatic/vsd/internal/selector"
	"github.com/famomatic/vsd/internal/types"
)

var (
	// ErrInvalidOption indicates a malformed or inconsistent option value.
	ErrInvalidOption = errors.New("invalid option")
	// ErrUnsupportedInput indicates an input the tool refuses to handle.
	ErrUnsupportedInput = errors.New("unsupported input")
	// ErrMuxerNotFound indicates --output was given but ffmpeg is not on PATH.
	ErrMuxerNotFound = muxer.ErrNotFound
	// ErrNoPlaylistFound indicates a scraped page held no manifest link.
	ErrNoPlaylistFound = errors.New("no playlist found")
	// ErrMissingBaseURL indicates a relative reference that cannot be resolved.
	ErrMissingBaseURL = types.ErrMissingBaseURL
	// ErrPageFetch indicates the website input could not be fetched.
	ErrPageFetch = errors.New("page fetch failed")
	// ErrClientConstruction indicates the HTTP client could not be built.
	ErrClientConstruction = errors.New("http client construction failed")
)

// OptionError names the option that failed validation.
type OptionError struct {
	Option string
	Value  string
	Err    error
}

func (e *OptionError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid --%s: %v", e.Option, e.Err)
	}
	return fmt.Sprintf("invalid --%s %q: %v", e.Option, e.Value, e.Err)
}

func (e *OptionError) Unwrap() error { return e.Err }

func (e *OptionError) Is(target error) bool { return target == ErrInvalidOption }

// ConstructionError names the client setting that could not be applied.
type ConstructionError struct {
	Option string
	Value  string
	Err    error
}

func (e *ConstructionError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("build http client: %s: %v", e.Option, e.Err)
	}
	return fmt.Sprintf("build http client: %s %q: %v", e.Option, e.Value, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

func (e *ConstructionError) Is(target error) bool { return target == ErrClientConstruction }

// NoPlaylistError is returned when scraping PageURL found no candidates.
type NoPlaylistError struct {
	PageURL string
}

func (e *NoPlaylistError) Error() string {
	return fmt.Sprintf("couldn't find any playlists on %s, consider using a browser extension to find the playlist URL", e.PageURL)
}

func (e *NoPlaylistError) Is(target error) bool { return target == ErrNoPlaylistFound }

// PageFetchError records a failed website fetch. StatusCode is zero when the
// request never produced a response.
type PageFetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *PageFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: http status=%d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *PageFetchError) Unwrap() error { return e.Err }

func (e *PageFetchError) Is(target error) bool { return target == ErrPageFetch }

// ErrorCategory groups errors by the stage that produced them.
type ErrorCategory string

const (
	ErrorCategoryValidation   ErrorCategory = "validation"
	ErrorCategoryResolution   ErrorCategory = "resolution"
	ErrorCategoryConstruction ErrorCategory = "construction"
	ErrorCategoryUnknown      ErrorCategory = "unknown"
)

// ClassifyError maps err onto an ErrorCategory.
func ClassifyError(err error) ErrorCategory {
	var (
		qualityErr *selector.ParseError
		keyErr     *keys.ParseError
	)
	switch {
	case err == nil:
		return ErrorCategoryUnknown
	case errors.Is(err, ErrInvalidOption),
		errors.Is(err, ErrUnsupportedInput),
		errors.Is(err, ErrMuxerNotFound),
		errors.As(err, &qualityErr),
		errors.As(err, &keyErr):
		return ErrorCategoryValidation
	case errors.Is(err, ErrClientConstruction):
		return ErrorCategoryConstruction
	case errors.Is(err, ErrNoPlaylistFound),
		errors.Is(err, ErrPageFetch),
		errors.Is(err, ErrMissingBaseURL),
		errors.Is(err, prompt.ErrNoChoice),
		errors.Is(err, prompt.ErrInterrupted):
		return ErrorCategoryResolution
	default:
		return ErrorCategoryUnknown
	}
}
