package client

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/famomatic/vsd/internal/cookies"
)

// DefaultUserAgent is sent when Config.UserAgent is empty.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/101.0.4951.64 Safari/537.36"

// NewHTTPClient builds the client shared by the page fetch and the download
// engine. It performs no network I/O.
func NewHTTPClient(cfg Config) (*http.Client, error) {
	defaults, err := defaultHeaders(cfg.UserAgent, cfg.Headers)
	if err != nil {
		return nil, err
	}

	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return nil, &ConstructionError{Option: "transport", Err: errors.New("default transport is not *http.Transport")}
	}
	transport := baseTransport.Clone()
	if strings.TrimSpace(cfg.ProxyURL) != "" {
		proxy, err := parseProxyURL(cfg.ProxyURL)
		if err != nil {
			return nil, err
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	httpClient := &http.Client{
		Transport: &headerTransport{base: transport, header: defaults},
		Timeout:   cfg.Timeout,
	}
	if cfg.CookiesEnabled() {
		jar, err := buildJar(cfg)
		if err != nil {
			return nil, err
		}
		httpClient.Jar = jar
	}
	return httpClient, nil
}

// headerTransport adds default headers to requests that do not set them.
type headerTransport struct {
	base   http.RoundTripper
	header http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	for name, vals := range t.header {
		if len(out.Header.Values(name)) > 0 {
			continue
		}
		for _, v := range vals {
			out.Header.Add(name, v)
		}
	}
	return t.base.RoundTrip(out)
}

func defaultHeaders(userAgent string, pairs []string) (http.Header, error) {
	if len(pairs)%2 != 0 {
		return nil, &ConstructionError{
			Option: "header",
			Err:    fmt.Errorf("expected KEY VALUE pairs, got %d value(s)", len(pairs)),
		}
	}
	ua := strings.TrimSpace(userAgent)
	if ua == "" {
		ua = DefaultUserAgent
	}
	if !httpguts.ValidHeaderFieldValue(ua) {
		return nil, &ConstructionError{Option: "user-agent", Value: ua, Err: errors.New("invalid header value")}
	}

	header := make(http.Header)
	header.Set("User-Agent", ua)
	for i := 0; i < len(pairs); i += 2 {
		name, value := pairs[i], pairs[i+1]
		if !httpguts.ValidHeaderFieldName(name) {
			return nil, &ConstructionError{Option: "header", Value: name, Err: errors.New("invalid header name")}
		}
		if !httpguts.ValidHeaderFieldValue(value) {
			return nil, &ConstructionError{Option: "header", Value: name, Err: fmt.Errorf("invalid header value %q", value)}
		}
		header.Set(name, value)
	}
	return header, nil
}

func parseProxyURL(raw string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, &ConstructionError{Option: "proxy-address", Value: raw, Err: err}
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		return nil, &ConstructionError{
			Option: "proxy-address",
			Value:  raw,
			Err:    errors.New("only http:// and https:// proxies are supported"),
		}
	}
	if parsed.Host == "" {
		return nil, &ConstructionError{Option: "proxy-address", Value: raw, Err: errors.New("missing host")}
	}
	return parsed, nil
}

func buildJar(cfg Config) (*cookies.Jar, error) {
	jar, err := cookies.NewJar(cfg.Cookie)
	if err != nil {
		return nil, &ConstructionError{Option: "cookie", Err: err}
	}
	if len(cfg.SetCookies)%2 != 0 {
		return nil, &ConstructionError{
			Option: "set-cookie",
			Err:    fmt.Errorf("expected SET_COOKIE URL pairs, got %d value(s)", len(cfg.SetCookies)),
		}
	}
	for i := 0; i < len(cfg.SetCookies); i += 2 {
		if err := jar.AddSetCookie(cfg.SetCookies[i], cfg.SetCookies[i+1]); err != nil {
			return nil, &ConstructionError{Option: "set-cookie", Value: cfg.SetCookies[i+1], Err: err}
		}
	}
	if cfg.CookiesFile != "" {
		list, err := cookies.LoadNetscapeFile(cfg.CookiesFile)
		if err != nil {
			return nil, &ConstructionError{Option: "cookies-file", Value: cfg.CookiesFile, Err: err}
		}
		jar.AddAll(list)
		LoggerOrNop(cfg.Logger).Debugf("loaded %d cookie(s) from %s", len(list), cfg.CookiesFile)
	}
	return jar, nil
}
