package cookies

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Store is the cookie capability the HTTP client needs: supply cookies for
// an outgoing request and observe cookies set by a response.
// It is satisfied by net/http.CookieJar implementations.
type Store interface {
	Cookies(u *url.URL) []*http.Cookie
	SetCookies(u *url.URL, cookies []*http.Cookie)
}

// Jar is a publicsuffix-aware cookie store with an optional seed: cookies
// copied from a browser's document.cookie that go out with every request
// unless the jar already holds a cookie of the same name for that URL.
type Jar struct {
	jar  *cookiejar.Jar
	seed []*http.Cookie
}

var _ Store = (*Jar)(nil)

// NewJar builds an empty jar seeded with a document.cookie style value
// ("a=1; b=2"). An empty seed is allowed.
func NewJar(seed string) (*Jar, error) {
	inner, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	j := &Jar{jar: inner}
	if strings.TrimSpace(seed) != "" {
		parsed, err := http.ParseCookie(strings.TrimSpace(seed))
		if err != nil {
			return nil, fmt.Errorf("parse cookie %q: %w", seed, err)
		}
		j.seed = parsed
	}
	return j, nil
}

// Cookies returns the jar's cookies for u followed by any seed cookie whose
// name is not already present.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	out := j.jar.Cookies(u)
	if len(j.seed) == 0 {
		return out
	}
	have := make(map[string]struct{}, len(out))
	for _, c := range out {
		have[c.Name] = struct{}{}
	}
	for _, c := range j.seed {
		if _, ok := have[c.Name]; ok {
			continue
		}
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}

// SetCookies stores cookies received from u.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.jar.SetCookies(u, cookies)
}

// AddSetCookie installs one Set-Cookie header value as if origin had sent it.
// Example: AddSetCookie("foo=bar; Domain=yolo.local", "https://yolo.local").
func (j *Jar) AddSetCookie(setCookie, origin string) error {
	u, err := parseOrigin(origin)
	if err != nil {
		return err
	}
	c, err := http.ParseSetCookie(setCookie)
	if err != nil {
		return fmt.Errorf("parse set-cookie %q: %w", setCookie, err)
	}
	j.jar.SetCookies(u, []*http.Cookie{c})
	return nil
}

// AddAll installs cookies loaded from a cookies file, grouped by domain.
func (j *Jar) AddAll(list []*http.Cookie) {
	byDomain := make(map[string][]*http.Cookie)
	for _, c := range list {
		byDomain[c.Domain] = append(byDomain[c.Domain], c)
	}
	for domain, cs := range byDomain {
		scheme := "http"
		for _, c := range cs {
			if c.Secure {
				scheme = "https"
				break
			}
		}
		u := &url.URL{Scheme: scheme, Host: strings.TrimPrefix(domain, "."), Path: "/"}
		j.jar.SetCookies(u, cs)
	}
}

func parseOrigin(origin string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return nil, fmt.Errorf("parse cookie url %q: %w", origin, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("cookie url %q must be an absolute http(s) url", origin)
	}
	return u, nil
}
