package proxy

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var supportedSchemes = map[string]bool{
	"http":    true,
	"https":   true,
	"socks5":  true,
	"socks5h": true,
}

// Endpoint is an immutable proxy connection string.
type Endpoint struct {
	url *url.URL
}

// ParseEndpoint accepts "scheme://[user:pass@]host:port", "scheme://host:port,user:pass"
// and bare "host:port" (treated as http).
func ParseEndpoint(raw string) (Endpoint, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Endpoint{}, fmt.Errorf("empty proxy endpoint")
	}

	// Trailing ",user:pass" starts at the first comma after the host. Commas
	// before that belong to inline userinfo.
	var creds string
	hostStart := 0
	if i := strings.Index(s, "://"); i >= 0 {
		hostStart = i + len("://")
	}
	if i := strings.LastIndex(s, "@"); i >= hostStart {
		hostStart = i + 1
	}
	if i := strings.Index(s[hostStart:], ","); i >= 0 {
		creds = strings.TrimSpace(s[hostStart+i+1:])
		s = strings.TrimSpace(s[:hostStart+i])
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}

	u, err := url.Parse(s)
	if err != nil {
		// url.Error echoes the raw string, credentials included
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return Endpoint{}, fmt.Errorf("invalid proxy endpoint: %w", err)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if !supportedSchemes[u.Scheme] {
		return Endpoint{}, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	if u.Hostname() == "" || u.Port() == "" {
		return Endpoint{}, fmt.Errorf("proxy endpoint must have host and port")
	}
	if creds != "" {
		if user, pass, ok := strings.Cut(creds, ":"); ok {
			u.User = url.UserPassword(user, pass)
		} else {
			u.User = url.User(creds)
		}
	}
	u.Path, u.RawQuery, u.Fragment = "", "", ""

	return Endpoint{url: u}, nil
}

func MustParseEndpoint(raw string) Endpoint {
	ep, err := ParseEndpoint(raw)
	if err != nil {
		panic(err)
	}
	return ep
}

func (e Endpoint) Scheme() string {
	if e.url == nil {
		return ""
	}
	return e.url.Scheme
}

// URL returns a copy; callers may not mutate the endpoint through it.
func (e Endpoint) URL() *url.URL {
	if e.url == nil {
		return nil
	}
	cp := *e.url
	return &cp
}

// String hides the password so endpoints can be logged.
func (e Endpoint) String() string {
	if e.url == nil {
		return ""
	}
	return e.url.Redacted()
}
