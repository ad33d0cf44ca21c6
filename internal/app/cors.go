package app

import (
	"net/url"
	"strings"
)

// originHost strips the scheme from an origin URL, leaving "host[:port]".
// Values that do not parse as a URL are matched as-is.
func originHost(origin string) string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return origin
	}
	return u.Host
}

// originAllowed checks host against the configured patterns. A pattern
// is either a literal host, "*.suffix" for subdomains, or "host:*" for
// any port.
func originAllowed(host string, patterns []string) bool {
	for _, p := range patterns {
		switch {
		case p == host:
			return true
		case strings.HasPrefix(p, "*.") && strings.HasSuffix(host, p[1:]):
			return true
		case strings.HasSuffix(p, ":*") && strings.HasPrefix(host, p[:len(p)-1]):
			return true
		}
	}
	return false
}
