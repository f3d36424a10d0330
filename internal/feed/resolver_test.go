package feed_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_NestedSitemapIndex(t *testing.T) {
	t.Parallel()

	s := newSite(t, map[string]string{
		"/robots.txt":  "User-agent: *\nSitemap: {{base}}/index.xml\n",
		"/index.xml":   sitemapIndex("{{base}}/pages.xml", "{{base}}/posts.xml"),
		"/pages.xml":   urlset("{{base}}/", "{{base}}/about/", "{{base}}/contact"),
		"/posts.xml":   urlset("{{base}}/blog/one", "{{base}}/about"),
		"/about":       "about",
		"/contact":     "contact",
		"/blog/one":    "post",
		"/sitemap.xml": "unused",
	})

	res, err := newResolver(20).Resolve(context.Background(), s.target(t))
	require.NoError(t, err)

	base := s.server.URL
	assert.False(t, res.UsedFallback)
	assert.True(t, res.Robots.Found)
	assert.Equal(t, []string{base, base + "/about", base + "/contact", base + "/blog/one"}, res.URLs)
	assert.Equal(t, 0, s.hitCount("/sitemap.xml"))
}

func TestResolve_CyclicSitemapsTerminate(t *testing.T) {
	t.Parallel()

	s := newSite(t, map[string]string{
		"/sitemap.xml": sitemapIndex("{{base}}/a.xml"),
		"/a.xml":       sitemapIndex("{{base}}/b.xml", "{{base}}/sitemap.xml"),
		"/b.xml":       sitemapIndex("{{base}}/a.xml", "{{base}}/c.xml"),
		"/c.xml":       urlset("{{base}}/page"),
	})

	res, err := newResolver(20).Resolve(context.Background(), s.target(t))
	require.NoError(t, err)

	for _, path := range []string{"/sitemap.xml", "/a.xml", "/b.xml", "/c.xml"} {
		assert.Equal(t, 1, s.hitCount(path), "sitemap %s fetched more than once", path)
	}
	assert.Len(t, res.VisitedSitemaps, 4)
	assert.Equal(t, []string{s.server.URL + "/page"}, res.URLs)
}

func TestResolve_FallsBackToHomepageLinksWhenSitemapMissing(t *testing.T) {
	t.Parallel()

	s := newSite(t, map[string]string{
		"/": `<a href="/about">a</a><a href="/team/">t</a><a href="https://elsewhere.example/x">x</a>`,
	})

	res, err := newResolver(20).Resolve(context.Background(), s.target(t))
	require.NoError(t, err)

	base := s.server.URL
	assert.True(t, res.UsedFallback)
	assert.False(t, res.Robots.Found)
	assert.Equal(t, []string{base + "/about", base + "/team"}, res.URLs)
}

func TestResolve_FallsBackWhenSitemapExceedsCap(t *testing.T) {
	t.Parallel()

	locs := make([]string, 0, 6)
	for i := range 6 {
		locs = append(locs, fmt.Sprintf("{{base}}/p%d", i))
	}
	s := newSite(t, map[string]string{
		"/sitemap.xml": urlset(locs...),
		"/":            `<a href="/home-link">h</a>`,
	})

	res, err := newResolver(5).Resolve(context.Background(), s.target(t))
	require.NoError(t, err)

	assert.True(t, res.UsedFallback)
	assert.Len(t, res.SitemapURLs, 6)
	assert.Equal(t, []string{s.server.URL + "/home-link"}, res.URLs)
}

func TestResolve_AppliesRobotsAndHostFilters(t *testing.T) {
	t.Parallel()

	s := newSite(t, map[string]string{
		"/robots.txt":  "User-agent: *\nDisallow: /private\n",
		"/sitemap.xml": urlset("{{base}}/public", "{{base}}/private/doc", "https://other.example/page", "{{base}}/public/"),
	})

	res, err := newResolver(20).Resolve(context.Background(), s.target(t))
	require.NoError(t, err)

	assert.Equal(t, []string{s.server.URL + "/public"}, res.URLs)
}

func TestResolve_SwallowsBrokenSitemaps(t *testing.T) {
	t.Parallel()

	s := newSite(t, map[string]string{
		"/sitemap.xml": sitemapIndex("{{base}}/broken.xml", "{{base}}/missing.xml", "{{base}}/good.xml"),
		"/broken.xml":  "<urlset><url><loc>",
		"/good.xml":    urlset("{{base}}/kept"),
	})

	res, err := newResolver(20).Resolve(context.Background(), s.target(t))
	require.NoError(t, err)

	assert.Equal(t, []string{s.server.URL + "/kept"}, res.URLs)
}

func TestResolve_CancelledContext(t *testing.T) {
	t.Parallel()

	s := newSite(t, map[string]string{"/sitemap.xml": urlset("{{base}}/a")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newResolver(20).Resolve(ctx, s.target(t))
	assert.ErrorIs(t, err, context.Canceled)
}
