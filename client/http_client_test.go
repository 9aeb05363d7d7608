package client

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newEchoServer(t *testing.T) (*httptest.Server, *http.Request) {
	t.Helper()
	var seen http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = *r.Clone(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func doGet(t *testing.T, hc *http.Client, url string, header http.Header) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	resp, err := hc.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	resp.Body.Close()
}

func TestNewHTTPClient_DefaultUserAgent(t *testing.T) {
	srv, seen := newEchoServer(t)
	hc, err := NewHTTPClient(Config{})
	if err != nil {
		t.Fatalf("NewHTTPClient() error = %v", err)
	}
	doGet(t, hc, srv.URL, nil)
	if got := seen.Header.Get("User-Agent"); got != DefaultUserAgent {
		t.Fatalf("User-Agent = %q, want default", got)
	}
	if hc.Jar != nil {
		t.Fatalf("expected no cookie store without cookie options")
	}
}

func TestNewHTTPClient_HeadersAndUserAgent(t *testing.T) {
	srv, seen := newEchoServer(t)
	hc, err := NewHTTPClient(Config{
		UserAgent: "vsd-test/1.0",
		Headers:   []string{"Referer", "https://example.com/", "X-Token", "abc"},
	})
	if err != nil {
		t.Fatalf("NewHTTPClient() error = %v", err)
	}
	doGet(t, hc, srv.URL, http.Header{"X-Token": {"override"}})
	if got := seen.Header.Get("User-Agent"); got != "vsd-test/1.0" {
		t.Fatalf("User-Agent = %q", got)
	}
	if got := seen.Header.Get("Referer"); got != "https://example.com/" {
		t.Fatalf("Referer = %q", got)
	}
	if got := seen.Header.Values("X-Token"); len(got) != 1 || got[0] != "override" {
		t.Fatalf("X-Token = %v, want request header to win", got)
	}
}

func TestNewHTTPClient_HeaderErrors(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		value   string
	}{
		{name: "odd pair count", headers: []string{"Referer"}},
		{name: "invalid name", headers: []string{"bad name", "x"}, value: "bad name"},
		{name: "invalid value", headers: []string{"X-Ok", "line\nbreak"}, value: "X-Ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHTTPClient(Config{Headers: tt.headers})
			if !errors.Is(err, ErrClientConstruction) {
				t.Fatalf("error = %v, want ErrClientConstruction", err)
			}
			var detail *ConstructionError
			if !errors.As(err, &detail) {
				t.Fatalf("expected *ConstructionError, got %T", err)
			}
			if detail.Option != "header" || detail.Value != tt.value {
				t.Fatalf("detail = %+v", detail)
			}
		})
	}
}

func TestNewHTTPClient_Proxy(t *testing.T) {
	hc, err := NewHTTPClient(Config{ProxyURL: "http://127.0.0.1:3128"})
	if err != nil {
		t.Fatalf("NewHTTPClient() error = %v", err)
	}
	ht, ok := hc.Transport.(*headerTransport)
	if !ok {
		t.Fatalf("transport type = %T, want *headerTransport", hc.Transport)
	}
	transport, ok := ht.base.(*http.Transport)
	if !ok {
		t.Fatalf("base transport type = %T, want *http.Transport", ht.base)
	}
	for _, target := range []string{"https://cdn.example.com/a.m3u8", "http://cdn.example.com/a.ts"} {
		req, _ := http.NewRequest(http.MethodGet, target, nil)
		proxyURL, err := transport.Proxy(req)
		if err != nil {
			t.Fatalf("proxy function error: %v", err)
		}
		if proxyURL == nil || proxyURL.String() != "http://127.0.0.1:3128" {
			t.Fatalf("proxy for %s = %v", target, proxyURL)
		}
	}
}

func TestNewHTTPClient_ProxyErrors(t *testing.T) {
	for _, raw := range []string{"socks5://127.0.0.1:1080", "127.0.0.1:3128", "http://"} {
		_, err := NewHTTPClient(Config{ProxyURL: raw})
		var detail *ConstructionError
		if !errors.As(err, &detail) || detail.Option != "proxy-address" {
			t.Fatalf("proxy %q: error = %v, want proxy-address ConstructionError", raw, err)
		}
	}
}

func TestNewHTTPClient_Cookies(t *testing.T) {
	srv, seen := newEchoServer(t)
	hc, err := NewHTTPClient(Config{
		Cookie:     "seed=1; other=2",
		SetCookies: []string{"sid=xyz; Path=/", srv.URL},
	})
	if err != nil {
		t.Fatalf("NewHTTPClient() error = %v", err)
	}
	if hc.Jar == nil {
		t.Fatalf("expected cookie store")
	}
	doGet(t, hc, srv.URL+"/page", nil)
	for name, want := range map[string]string{"seed": "1", "other": "2", "sid": "xyz"} {
		c, err := seen.Cookie(name)
		if err != nil {
			t.Fatalf("cookie %s missing: %v", name, err)
		}
		if c.Value != want {
			t.Fatalf("cookie %s = %q, want %q", name, c.Value, want)
		}
	}
}

func TestNewHTTPClient_EnableCookiesOnly(t *testing.T) {
	hc, err := NewHTTPClient(Config{EnableCookies: true})
	if err != nil {
		t.Fatalf("NewHTTPClient() error = %v", err)
	}
	if hc.Jar == nil {
		t.Fatalf("expected cookie store")
	}
}

func TestNewHTTPClient_CookieErrors(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		option string
	}{
		{name: "invalid origin", cfg: Config{SetCookies: []string{"a=1", "ftp://example.com"}}, option: "set-cookie"},
		{name: "odd pairs", cfg: Config{SetCookies: []string{"a=1"}}, option: "set-cookie"},
		{name: "bad seed", cfg: Config{Cookie: "novalue"}, option: "cookie"},
		{name: "missing file", cfg: Config{CookiesFile: "/nonexistent/cookies.txt"}, option: "cookies-file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHTTPClient(tt.cfg)
			var detail *ConstructionError
			if !errors.As(err, &detail) || detail.Option != tt.option {
				t.Fatalf("error = %v, want %s ConstructionError", err, tt.option)
			}
			if ClassifyError(err) != ErrorCategoryConstruction {
				t.Fatalf("ClassifyError() = %q", ClassifyError(err))
			}
		})
	}
}

func TestNewHTTPClient_Timeout(t *testing.T) {
	hc, err := NewHTTPClient(Config{Timeout: 3 * time.Second})
	if err != nil {
		t.Fatalf("NewHTTPClient() error = %v", err)
	}
	if hc.Timeout != 3*time.Second {
		t.Fatalf("Timeout = %v", hc.Timeout)
	}
}
