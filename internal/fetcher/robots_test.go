package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/leadscan/internal/fetcher"
)

const testCacheTTL = time.Hour

func newTestRobotsFetcher(t *testing.T, ttl time.Duration) *fetcher.RobotsFetcher {
	t.Helper()

	client := fetcher.NewClient(&http.Client{}, fetcher.Config{RequestTimeout: time.Second})
	return fetcher.NewRobotsFetcher(client, ttl)
}

func TestParseRobots_SitemapAndDisallow(t *testing.T) {
	t.Parallel()

	text := "User-agent: *\n" +
		"Disallow: /private/\n" +
		"Disallow:\n" +
		"Sitemap: https://example.com/sitemap_index.xml\n" +
		"Sitemap: https://example.com/other.xml\n" +
		"Disallow: /tmp\n"

	policy := fetcher.ParseRobots("https://example.com", text)

	if policy.SitemapURL != "https://example.com/sitemap_index.xml" {
		t.Errorf("expected first sitemap line, got %q", policy.SitemapURL)
	}
	if len(policy.Disallow) != 2 || policy.Disallow[0] != "/private/" || policy.Disallow[1] != "/tmp" {
		t.Errorf("unexpected disallow list %v", policy.Disallow)
	}
}

func TestParseRobots_DefaultSitemap(t *testing.T) {
	t.Parallel()

	policy := fetcher.ParseRobots("https://example.com/", "User-agent: *\n")

	if policy.SitemapURL != "https://example.com/sitemap.xml" {
		t.Errorf("expected default sitemap, got %q", policy.SitemapURL)
	}
	if len(policy.Disallow) != 0 {
		t.Errorf("expected no exclusions, got %v", policy.Disallow)
	}
}

func TestParseRobots_DirectivesAreCaseSensitive(t *testing.T) {
	t.Parallel()

	policy := fetcher.ParseRobots("https://example.com", "sitemap: https://x/y.xml\ndisallow: /a\n")

	if policy.SitemapURL != "https://example.com/sitemap.xml" {
		t.Errorf("lowercase directive must be ignored, got %q", policy.SitemapURL)
	}
	if len(policy.Disallow) != 0 {
		t.Errorf("lowercase directive must be ignored, got %v", policy.Disallow)
	}
}

func TestParseRobots_Garbage(t *testing.T) {
	t.Parallel()

	policy := fetcher.ParseRobots("https://example.com", "<html><body>not robots</body></html>")

	if policy.SitemapURL != "https://example.com/sitemap.xml" || len(policy.Disallow) != 0 {
		t.Errorf("garbage must degrade to the default policy, got %+v", policy)
	}
}

func TestRobotsPolicy_Allowed(t *testing.T) {
	t.Parallel()

	policy := fetcher.RobotsPolicy{Disallow: []string{"/private/", "/cart"}}

	cases := map[string]bool{
		"https://example.com/":               true,
		"https://example.com/public/page":    true,
		"https://example.com/private/secret": false,
		"https://example.com/cart?id=1":      false,
		"https://example.com/carts":          false,
	}

	for rawURL, want := range cases {
		if got := policy.Allowed(rawURL); got != want {
			t.Errorf("Allowed(%q) = %v, want %v", rawURL, got, want)
		}
	}
}

func TestRobotsFetcher_Policy(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\nSitemap: /custom.xml\n"))
	}))
	defer server.Close()

	policy := newTestRobotsFetcher(t, testCacheTTL).Policy(context.Background(), server.URL)

	if !policy.Found {
		t.Error("expected robots.txt to be found")
	}
	if policy.SitemapURL != "/custom.xml" {
		t.Errorf("unexpected sitemap %q", policy.SitemapURL)
	}
	if policy.Allowed(server.URL + "/private/x") {
		t.Error("expected /private/x to be disallowed")
	}
}

func TestRobotsFetcher_Missing404(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("Disallow: /\n"))
	}))
	defer server.Close()

	policy := newTestRobotsFetcher(t, testCacheTTL).Policy(context.Background(), server.URL)

	if policy.Found {
		t.Error("404 must not count as found")
	}
	if !policy.Allowed(server.URL + "/any/path") {
		t.Error("expected allow-all on 404")
	}
	if policy.SitemapURL != server.URL+"/sitemap.xml" {
		t.Errorf("unexpected sitemap %q", policy.SitemapURL)
	}
}

func TestRobotsFetcher_UnreachableHostAllowsAll(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	origin := server.URL
	server.Close()

	policy := newTestRobotsFetcher(t, testCacheTTL).Policy(context.Background(), origin)

	if policy.Found || !policy.Allowed(origin+"/x") {
		t.Errorf("expected default policy, got %+v", policy)
	}
}

func TestRobotsFetcher_CachesPerOrigin(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("User-agent: *\n"))
	}))
	defer server.Close()

	rf := newTestRobotsFetcher(t, testCacheTTL)
	rf.Policy(context.Background(), server.URL)
	rf.Policy(context.Background(), server.URL+"/")

	if got := hits.Load(); got != 1 {
		t.Errorf("expected a single fetch, got %d", got)
	}
}
