package fetcher

import (
	"bufio"
	"context"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	robotsTxtPath     = "/robots.txt"
	defaultSitemap    = "/sitemap.xml"
	sitemapDirective  = "Sitemap:"
	disallowDirective = "Disallow:"
)

// RobotsPolicy is what a crawl takes from robots.txt: a sitemap hint and the
// disallowed path prefixes. Group and Allow semantics are not modeled.
type RobotsPolicy struct {
	// SitemapURL is the first declared sitemap, or {origin}/sitemap.xml.
	SitemapURL string
	// Disallow holds the path values of every Disallow line.
	Disallow []string
	// Found is true when robots.txt was retrieved with a 2xx status.
	Found bool
}

// DefaultRobotsPolicy is the policy used when robots.txt is missing.
func DefaultRobotsPolicy(origin string) RobotsPolicy {
	return RobotsPolicy{SitemapURL: strings.TrimSuffix(origin, "/") + defaultSitemap}
}

// ParseRobots reads robots.txt line by line. Directive keywords are matched
// case-sensitively at the start of a line; anything unrecognized is ignored.
func ParseRobots(origin, text string) RobotsPolicy {
	policy := DefaultRobotsPolicy(origin)
	sitemapSeen := false

	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, sitemapDirective):
			if sitemapSeen {
				continue
			}
			if v := strings.TrimSpace(strings.TrimPrefix(line, sitemapDirective)); v != "" {
				policy.SitemapURL = v
				sitemapSeen = true
			}
		case strings.HasPrefix(line, disallowDirective):
			if v := strings.TrimSpace(strings.TrimPrefix(line, disallowDirective)); v != "" {
				policy.Disallow = append(policy.Disallow, v)
			}
		}
	}

	return policy
}

// Allowed reports whether rawURL's path starts with none of the disallowed
// prefixes.
func (p RobotsPolicy) Allowed(rawURL string) bool {
	if len(p.Disallow) == 0 {
		return true
	}

	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.EscapedPath()
		if u.RawQuery != "" {
			path += "?" + u.RawQuery
		}
	}
	if path == "" {
		path = "/"
	}

	for _, prefix := range p.Disallow {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// DocumentFetcher is the subset of Client the robots layer needs.
type DocumentFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Response, error)
}

// RobotsFetcher retrieves and caches robots policies per origin.
type RobotsFetcher struct {
	fetcher  DocumentFetcher
	cache    map[string]robotsCacheEntry
	mu       sync.RWMutex
	cacheTTL time.Duration
	now      func() time.Time
}

type robotsCacheEntry struct {
	policy    RobotsPolicy
	fetchedAt time.Time
}

// NewRobotsFetcher creates a RobotsFetcher. A zero cacheTTL disables caching.
func NewRobotsFetcher(fetcher DocumentFetcher, cacheTTL time.Duration) *RobotsFetcher {
	return &RobotsFetcher{
		fetcher:  fetcher,
		cache:    make(map[string]robotsCacheEntry),
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// Policy returns the robots policy for origin. Fetch failures and non-2xx
// answers degrade to the default policy.
func (r *RobotsFetcher) Policy(ctx context.Context, origin string) RobotsPolicy {
	origin = strings.TrimSuffix(origin, "/")

	if policy, ok := r.cached(origin); ok {
		return policy
	}

	policy := DefaultRobotsPolicy(origin)
	resp, err := r.fetcher.Fetch(ctx, origin+robotsTxtPath)
	if err == nil && resp.OK() {
		policy = ParseRobots(origin, resp.Body)
		policy.Found = true
	}

	if r.cacheTTL > 0 {
		r.mu.Lock()
		r.cache[origin] = robotsCacheEntry{policy: policy, fetchedAt: r.now()}
		r.mu.Unlock()
	}

	return policy
}

func (r *RobotsFetcher) cached(origin string) (RobotsPolicy, bool) {
	if r.cacheTTL <= 0 {
		return RobotsPolicy{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.cache[origin]
	if !ok || r.now().Sub(entry.fetchedAt) > r.cacheTTL {
		return RobotsPolicy{}, false
	}
	return entry.policy, true
}
