package keys

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Entry
	}{
		{in: "abc123", want: Entry{Key: "abc123"}},
		{in: "ab-cd:deadbeef", want: Entry{KID: "abcd", Key: "deadbeef"}},
		{in: "AB-CD:DEADBEEF", want: Entry{KID: "abcd", Key: "deadbeef"}},
		{in: "base64:AAAA", want: Entry{Key: "000000"}},
		{in: "base64:MhbcGzyxPfkOsp3FS8qPyA==", want: Entry{Key: "3216dc1b3cb13df90eb29dc54bca8fc8"}},
		{
			in:   "eb676abb-cb34-5e96-bbcf-616630f1a3da:100b6c20940f779a4589152b57d2dacb",
			want: Entry{KID: "eb676abbcb345e96bbcf616630f1a3da", Key: "100b6c20940f779a4589152b57d2dacb"},
		},
		{in: "eb676abbcb345e96bbcf616630f1a3da:base64:AAAA", want: Entry{KID: "eb676abbcb345e96bbcf616630f1a3da", Key: "000000"}},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParse_NoKIDWithoutColon(t *testing.T) {
	got, err := Parse("abc123")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got.HasKID() {
		t.Fatalf("expected no kid, got %q", got.KID)
	}
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		in     string
		reason string
	}{
		{in: "base64:!!!!", reason: "invalid base64"},
		{in: "base64:", reason: "empty key"},
		{in: "kid:base64:@@", reason: "not hex"},
		{in: ":deadbeef", reason: "empty key id"},
		{in: "abcd:", reason: "empty key"},
		{in: "xyz", reason: "not hex"},
		{in: "abcd:zz", reason: "not hex"},
	}
	for _, tt := range tests {
		_, err := Parse(tt.in)
		if err == nil {
			t.Fatalf("Parse(%q) expected error", tt.in)
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("Parse(%q) error type = %T, want *ParseError", tt.in, err)
		}
		if perr.Token != tt.in {
			t.Fatalf("ParseError.Token = %q, want %q", perr.Token, tt.in)
		}
		if !strings.Contains(err.Error(), tt.reason) {
			t.Fatalf("Parse(%q) error = %q, want reason %q", tt.in, err, tt.reason)
		}
	}
}

func TestParseAll_StopsAtFirstBadKey(t *testing.T) {
	entries, err := ParseAll([]string{"abcd", "base64:***"})
	if err == nil {
		t.Fatalf("expected error, got entries %+v", entries)
	}
	entries, err = ParseAll([]string{"11:aa", "bb"})
	if err != nil {
		t.Fatalf("ParseAll() error = %v", err)
	}
	if len(entries) != 2 || entries[0].KID != "11" || entries[1].Key != "bb" {
		t.Fatalf("ParseAll() = %+v", entries)
	}
}

func TestForKID(t *testing.T) {
	entries := []Entry{{Key: "ff"}, {KID: "abcd", Key: "aa"}}
	got, ok := ForKID(entries, "AB-CD")
	if !ok || got.Key != "aa" {
		t.Fatalf("ForKID(AB-CD) = %+v,%v", got, ok)
	}
	got, ok = ForKID(entries, "0000")
	if !ok || got.Key != "ff" {
		t.Fatalf("ForKID(0000) = %+v,%v want fallback", got, ok)
	}
	if _, ok := ForKID([]Entry{{KID: "01", Key: "aa"}}, "02"); ok {
		t.Fatalf("ForKID should miss without fallback")
	}
}
