package selector

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies which quality variant is active.
type Kind int

const (
	Highest Kind = iota
	Lowest
	Resolution
	P144
	P240
	P360
	P480
	P720
	P1080
	P2K
	P1440
	P4K
	P8K
)

// Quality is a parsed --quality value. Width and Height are only set for
// the Resolution kind.
type Quality struct {
	Kind   Kind
	Width  uint16
	Height uint16
}

// ValidTokens lists the literal tokens accepted by Parse, in help order.
var ValidTokens = []string{
	"lowest", "min",
	"144p", "240p", "360p", "480p",
	"720p", "hd",
	"1080p", "fhd",
	"2k",
	"1440p", "qhd",
	"4k", "8k",
	"highest", "max",
}

var literalKinds = map[string]Kind{
	"lowest":  Lowest,
	"min":     Lowest,
	"144p":    P144,
	"240p":    P240,
	"360p":    P360,
	"480p":    P480,
	"720p":    P720,
	"hd":      P720,
	"1080p":   P1080,
	"fhd":     P1080,
	"2k":      P2K,
	"1440p":   P1440,
	"qhd":     P1440,
	"4k":      P4K,
	"8k":      P8K,
	"highest": Highest,
	"max":     Highest,
}

// ParseError describes a rejected quality token.
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid quality %q: %s", e.Token, e.Reason)
}

// Parse parses a quality selector, case-insensitively.
// Syntax: one of ValidTokens, or WIDTHxHEIGHT.
func Parse(s string) (Quality, error) {
	token := strings.ToLower(strings.TrimSpace(s))

	if kind, ok := literalKinds[token]; ok {
		return Quality{Kind: kind}, nil
	}

	if w, h, found := strings.Cut(token, "x"); found {
		width, err := strconv.ParseUint(w, 10, 16)
		if err != nil || width == 0 {
			return Quality{}, &ParseError{Token: s, Reason: fmt.Sprintf("invalid width %q", w)}
		}
		height, err := strconv.ParseUint(h, 10, 16)
		if err != nil || height == 0 {
			return Quality{}, &ParseError{Token: s, Reason: fmt.Sprintf("invalid height %q", h)}
		}
		return Quality{Kind: Resolution, Width: uint16(width), Height: uint16(height)}, nil
	}

	return Quality{}, &ParseError{
		Token:  s,
		Reason: fmt.Sprintf("possible values: [%s]; for a custom resolution use WIDTHxHEIGHT", strings.Join(ValidTokens, ", ")),
	}
}

// MustParse is Parse for package-level defaults.
func MustParse(s string) Quality {
	q, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return q
}
