package feed

import (
	"net/url"
	"strings"

	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
)

// Dedupe strips trailing slashes and removes repeats, keeping first-seen
// order.
func Dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimRight(u, "/")
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// FilterHost keeps URLs whose host equals domainName, ignoring case and a
// leading "www.".
func FilterHost(urls []string, domainName string) []string {
	out := make([]string, 0, len(urls))
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		if domain.SameHost(u.Host, domainName) {
			out = append(out, raw)
		}
	}
	return out
}

// resolveAgainst turns a possibly relative reference into an absolute URL.
func resolveAgainst(origin, ref string) string {
	base, err := url.Parse(strings.TrimSuffix(origin, "/") + "/")
	if err != nil {
		return ref
	}
	r, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return base.ResolveReference(r).String()
}
