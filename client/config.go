package client

import "time"

// Config holds everything needed to build the shared HTTP client.
type Config struct {
	// UserAgent is sent with every request. Empty means DefaultUserAgent.
	UserAgent string

	// Headers is a flat list of name/value pairs: [name1, value1, name2, value2, ...].
	Headers []string

	// ProxyURL routes every request through an http:// or https:// proxy.
	ProxyURL string

	// EnableCookies attaches a cookie store even when no cookies are seeded.
	EnableCookies bool

	// Cookie is a document.cookie style "a=1; b=2" value sent with every request.
	Cookie string

	// SetCookies is a flat list of pairs: [set-cookie header, origin url, ...].
	SetCookies []string

	// CookiesFile is a Netscape cookies.txt file loaded into the store.
	CookiesFile string

	// Timeout bounds each request, including reading the body. Zero means none.
	Timeout time.Duration

	// Logger receives notices. If nil, they are discarded.
	Logger Logger
}

// CookiesEnabled reports whether a cookie store must be attached.
func (c Config) CookiesEnabled() bool {
	return c.EnableCookies || c.Cookie != "" || len(c.SetCookies) > 0 || c.CookiesFile != ""
}
