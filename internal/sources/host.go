package sources

import (
	"fmt"
	"net/url"
	"strings"
)

// wikipediaFamily lists the banned registrable domains. Subdomains match too.
var wikipediaFamily = []string{"wikipedia.org", "wikimedia.org"}

// Hostname returns the lowercase hostname of an absolute http(s) URL, without port
func Hostname(rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", fmt.Errorf("missing host in %q", rawURL)
	}
	return host, nil
}

// SourceHost is the host a URL is credited to in diversity counts: the
// hostname without a leading "www.", matching how registry entries are written.
func SourceHost(rawURL string) (string, error) {
	host, err := Hostname(rawURL)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(host, "www."), nil
}

// MatchesDomain reports whether host equals domain or is one of its subdomains
func MatchesDomain(host, domain string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	domain = strings.TrimSuffix(strings.ToLower(domain), ".")
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// IsWikipediaHost reports whether a hostname belongs to the Wikipedia family
func IsWikipediaHost(host string) bool {
	for _, domain := range wikipediaFamily {
		if MatchesDomain(host, domain) {
			return true
		}
	}
	return false
}

// IsWikipediaURL reports whether a URL points at the Wikipedia family.
// Unparseable URLs are checked by substring so a malformed link cannot slip through.
func IsWikipediaURL(rawURL string) bool {
	host, err := Hostname(rawURL)
	if err != nil {
		lower := strings.ToLower(rawURL)
		for _, domain := range wikipediaFamily {
			if strings.Contains(lower, domain) {
				return true
			}
		}
		return false
	}
	return IsWikipediaHost(host)
}
