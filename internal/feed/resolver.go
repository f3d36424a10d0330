package feed

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
	"github.com/jonesrussell/north-cloud/leadscan/internal/fetcher"
	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
)

// DefaultMaxSitemapURLs bounds how many sitemap pages a crawl will visit
// before falling back to homepage links.
const DefaultMaxSitemapURLs = 20

// Fetcher retrieves a document body.
type Fetcher interface {
	Get(ctx context.Context, rawURL string) (string, error)
}

// RobotsSource provides the robots policy for an origin.
type RobotsSource interface {
	Policy(ctx context.Context, origin string) fetcher.RobotsPolicy
}

// Resolution is the outcome of resolving a domain's pages.
type Resolution struct {
	// URLs is the filtered, deduplicated set of pages to fetch.
	URLs []string
	// SitemapURLs holds every content URL the sitemaps declared, before
	// fallback and filtering.
	SitemapURLs []string
	// VisitedSitemaps lists the sitemap documents requested, in order.
	VisitedSitemaps []string
	// UsedFallback is true when URLs came from the homepage links.
	UsedFallback bool
	// Robots is the policy applied.
	Robots fetcher.RobotsPolicy
}

// Resolver resolves the seed URL set for a domain.
type Resolver struct {
	fetcher        Fetcher
	robots         RobotsSource
	maxSitemapURLs int
	logger         logger.Logger
}

// NewResolver creates a Resolver. maxSitemapURLs <= 0 uses DefaultMaxSitemapURLs.
func NewResolver(f Fetcher, robots RobotsSource, maxSitemapURLs int, log logger.Logger) *Resolver {
	if maxSitemapURLs <= 0 {
		maxSitemapURLs = DefaultMaxSitemapURLs
	}
	return &Resolver{
		fetcher:        f,
		robots:         robots,
		maxSitemapURLs: maxSitemapURLs,
		logger:         log,
	}
}

// Resolve walks the domain's sitemaps, falls back to homepage links when the
// sitemaps yield nothing or too much, then applies the host filter, the
// robots exclusions and trailing-slash dedup. Only context cancellation is
// returned as an error; every other failure degrades to fewer URLs.
func (r *Resolver) Resolve(ctx context.Context, target domain.Target) (*Resolution, error) {
	policy := r.robots.Policy(ctx, target.Origin)

	res := &Resolution{Robots: policy}
	res.SitemapURLs, res.VisitedSitemaps = r.walkSitemaps(ctx, target.Origin, policy.SitemapURL)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates := res.SitemapURLs
	if len(candidates) == 0 || len(candidates) > r.maxSitemapURLs {
		res.UsedFallback = true
		candidates = r.homepageLinks(ctx, target.Origin)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	candidates = FilterHost(candidates, target.Domain)

	allowed := candidates[:0]
	for _, u := range candidates {
		if policy.Allowed(u) {
			allowed = append(allowed, u)
		}
	}

	res.URLs = Dedupe(allowed)

	r.logger.Debug("urls resolved",
		logger.String("domain", target.Domain),
		logger.Int("sitemap_urls", len(res.SitemapURLs)),
		logger.Int("sitemaps_visited", len(res.VisitedSitemaps)),
		logger.Bool("fallback", res.UsedFallback),
		logger.Int("urls", len(res.URLs)),
	)

	return res, nil
}

// walkSitemaps runs a breadth-first traversal from seed. The visited set
// makes cyclic sitemap indexes terminate.
func (r *Resolver) walkSitemaps(ctx context.Context, origin, seed string) (content, visitedOrder []string) {
	visited := mapset.NewThreadUnsafeSet[string]()
	queue := []string{resolveAgainst(origin, seed)}

	for len(queue) > 0 {
		if ctx.Err() != nil {
			return content, visitedOrder
		}

		current := queue[0]
		queue = queue[1:]
		if !visited.Add(current) {
			continue
		}
		visitedOrder = append(visitedOrder, current)

		body, err := r.fetcher.Get(ctx, current)
		if err != nil {
			r.logger.Debug("sitemap fetch failed", logger.String("url", current), logger.Error(err))
			continue
		}

		locs, err := ParseLocations(body)
		if err != nil {
			r.logger.Debug("sitemap parse failed", logger.String("url", current), logger.Error(err))
			continue
		}

		for _, loc := range locs {
			loc = resolveAgainst(origin, loc)
			if IsSitemapLocation(loc) {
				queue = append(queue, loc)
				continue
			}
			content = append(content, loc)
		}
	}

	return content, visitedOrder
}

func (r *Resolver) homepageLinks(ctx context.Context, origin string) []string {
	html, err := r.fetcher.Get(ctx, origin)
	if err != nil {
		r.logger.Debug("homepage fetch failed", logger.String("url", origin), logger.Error(err))
		return nil
	}

	links, err := ExtractLinks(origin, html)
	if err != nil {
		r.logger.Debug("homepage parse failed", logger.String("url", origin), logger.Error(err))
		return nil
	}
	return links
}
