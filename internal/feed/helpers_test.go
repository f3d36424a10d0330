package feed_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
	"github.com/jonesrussell/north-cloud/leadscan/internal/fetcher"
	"github.com/jonesrussell/north-cloud/leadscan/internal/feed"
	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
)

// site is a tiny static web site whose bodies may reference {{base}}.
type site struct {
	server *httptest.Server
	mu     sync.Mutex
	hits   map[string]int
}

func newSite(t *testing.T, pages map[string]string) *site {
	t.Helper()

	s := &site{hits: make(map[string]int)}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()

		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(strings.ReplaceAll(body, "{{base}}", s.server.URL)))
	}))
	t.Cleanup(s.server.Close)

	return s
}

func (s *site) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *site) target(t *testing.T) domain.Target {
	t.Helper()
	target, err := domain.ParseTarget(s.server.URL, "http")
	require.NoError(t, err)
	return target
}

func newResolver(maxURLs int) *feed.Resolver {
	client := fetcher.NewClient(nil, fetcher.Config{RequestTimeout: time.Second})
	robots := fetcher.NewRobotsFetcher(client, 0)
	return feed.NewResolver(client, robots, maxURLs, logger.NewNop())
}

func urlset(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, l := range locs {
		b.WriteString("<url><loc>" + l + "</loc></url>")
	}
	b.WriteString("</urlset>")
	return b.String()
}

func sitemapIndex(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, l := range locs {
		b.WriteString("<sitemap><loc>" + l + "</loc></sitemap>")
	}
	b.WriteString("</sitemapindex>")
	return b.String()
}
