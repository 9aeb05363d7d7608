package keys

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

const base64Prefix = "base64:"

// Entry is one normalized decryption key. KID is empty when the key applies
// to any key id.
type Entry struct {
	KID string `json:"kid,omitempty"`
	Key string `json:"key"`
}

// HasKID reports whether the entry is bound to a specific key id.
func (e Entry) HasKID() bool {
	return e.KID != ""
}

func (e Entry) String() string {
	if e.HasKID() {
		return e.KID + ":" + e.Key
	}
	return e.Key
}

// ParseError describes a rejected --key token.
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid key %q: %s", e.Token, e.Reason)
}

// Parse normalizes one key token.
// Syntax: [KID:]KEY or [KID:]base64:KEY. The KID loses its hyphens and is
// lowercased; base64 material is re-encoded as lowercase hex.
func Parse(s string) (Entry, error) {
	var entry Entry
	material := s

	if strings.Contains(s, ":") && !strings.HasPrefix(s, "base64") {
		kid, rest, _ := strings.Cut(s, ":")
		kid = strings.ToLower(strings.ReplaceAll(kid, "-", ""))
		if kid == "" {
			return Entry{}, &ParseError{Token: s, Reason: "empty key id before ':'"}
		}
		if !isHex(kid) {
			return Entry{}, &ParseError{Token: s, Reason: fmt.Sprintf("key id %q is not hex", kid)}
		}
		entry.KID = kid
		material = rest
	}

	if encoded, ok := strings.CutPrefix(material, base64Prefix); ok {
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return Entry{}, &ParseError{Token: s, Reason: fmt.Sprintf("invalid base64 key: %v", err)}
		}
		if len(raw) == 0 {
			return Entry{}, &ParseError{Token: s, Reason: "empty key"}
		}
		entry.Key = hex.EncodeToString(raw)
		return entry, nil
	}

	if material == "" {
		return Entry{}, &ParseError{Token: s, Reason: "empty key"}
	}
	if !isHex(material) {
		return Entry{}, &ParseError{Token: s, Reason: fmt.Sprintf("key %q is not hex; use the base64: prefix for base64 keys", material)}
	}
	entry.Key = strings.ToLower(material)
	return entry, nil
}

// ParseAll parses every token in order and stops at the first failure.
func ParseAll(tokens []string) ([]Entry, error) {
	entries := make([]Entry, 0, len(tokens))
	for _, token := range tokens {
		entry, err := Parse(token)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ForKID returns the key for kid, falling back to an entry without a key id.
func ForKID(entries []Entry, kid string) (Entry, bool) {
	kid = strings.ToLower(strings.ReplaceAll(kid, "-", ""))
	var fallback *Entry
	for i := range entries {
		if entries[i].KID == kid {
			return entries[i], true
		}
		if !entries[i].HasKID() && fallback == nil {
			fallback = &entries[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return Entry{}, false
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
