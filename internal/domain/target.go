package domain

import (
	"errors"
	"net/url"
	"strings"
)

// ErrEmptyDomain is returned for blank domain input.
var ErrEmptyDomain = errors.New("domain is empty")

// Target is a normalized crawl target.
type Target struct {
	// Domain is the record key: lower case, no scheme, no path, no leading www.
	Domain string
	// Origin is the scheme and host the crawl fetches from.
	Origin string
}

// ParseTarget normalizes user input such as "WWW.Example.com/",
// "https://example.com/about" or "example.com". defaultScheme is used when
// the input carries none.
func ParseTarget(raw, defaultScheme string) (Target, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Target{}, ErrEmptyDomain
	}
	if defaultScheme == "" {
		defaultScheme = "https"
	}
	if !strings.Contains(raw, "://") {
		raw = defaultScheme + "://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, err
	}
	host := strings.TrimSuffix(strings.ToLower(u.Host), ".")
	if host == "" {
		return Target{}, ErrEmptyDomain
	}

	return Target{
		Domain: StripWWW(host),
		Origin: strings.ToLower(u.Scheme) + "://" + host,
	}, nil
}

// NormalizeDomain returns the record key for raw.
func NormalizeDomain(raw string) (string, error) {
	t, err := ParseTarget(raw, "")
	if err != nil {
		return "", err
	}
	return t.Domain, nil
}

// StripWWW removes a leading "www." label.
func StripWWW(host string) string {
	return strings.TrimPrefix(host, "www.")
}

// SameHost compares two hosts ignoring case and a leading "www.".
func SameHost(a, b string) bool {
	return StripWWW(strings.ToLower(a)) == StripWWW(strings.ToLower(b))
}
