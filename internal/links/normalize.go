package links

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalize turns href into an absolute URL.
//
// Hrefs that already carry a scheme are returned unchanged. Scheme-relative
// hrefs ("//host/x") take the scheme of origin. Anything else is prefixed
// with origin, adding a slash when href does not start with one.
//
// Example:
//
//	Normalize("/media/x.pdf", "https://www.gov.br")          // "https://www.gov.br/media/x.pdf"
//	Normalize("https://other.org/x.pdf", "https://www.gov.br") // unchanged
func Normalize(href, origin string) string {
	href = strings.TrimSpace(href)
	if hasScheme(href) {
		return href
	}

	origin = strings.TrimSuffix(origin, "/")
	if strings.HasPrefix(href, "//") {
		scheme := "https"
		if u, err := url.Parse(origin); err == nil && u.Scheme != "" {
			scheme = u.Scheme
		}
		return scheme + ":" + href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return origin + href
}

// OriginOf returns "scheme://host" of rawURL.
func OriginOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q has no scheme or host", rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}

// hasScheme reports whether s starts with an RFC 3986 scheme followed by ':'.
func hasScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' || c == '+' || c == '-' || c == '.':
			if i == 0 {
				return false
			}
		case c == ':':
			return i > 0
		default:
			return false
		}
	}
	return false
}
