package client

import (
	"errors"
	"net/url"
	"strings"
)

var unsupportedHosts = map[string]struct{}{
	"youtube.com":     {},
	"www.youtube.com": {},
	"m.youtube.com":   {},
	"youtu.be":        {},
}

// CheckInput rejects inputs the tool refuses to handle. Local paths and
// ordinary URLs pass.
func CheckInput(input string) error {
	s := strings.TrimSpace(input)
	if s == "" {
		return &OptionError{Option: "input", Err: errors.New("missing input")}
	}
	if !strings.HasPrefix(strings.ToLower(s), "http") {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil
	}
	if _, ok := unsupportedHosts[strings.ToLower(u.Hostname())]; ok {
		return &OptionError{Option: "input", Value: s, Err: &unsupportedInputError{reason: "youtube links aren't supported yet"}}
	}
	return nil
}

type unsupportedInputError struct {
	reason string
}

func (e *unsupportedInputError) Error() string { return e.reason }

func (e *unsupportedInputError) Is(target error) bool { return target == ErrUnsupportedInput }
