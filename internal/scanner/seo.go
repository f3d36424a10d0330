package scanner

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
)

// Length bounds of the page checks, in characters.
const (
	titleMinLen       = 10
	titleMaxLen       = 70
	descriptionMinLen = 50
	descriptionMaxLen = 160
	h1MaxLen          = 70
	altMaxLen         = 100
)

// PageSource returns the fetched pages of a domain.
type PageSource interface {
	Pages(ctx context.Context, domainName string) ([]domain.Page, error)
}

// SeoScanner scores on-page SEO of a domain's pages plus a few domain-wide checks.
type SeoScanner struct {
	pages            PageSource
	prober           LinkProber
	probeConcurrency int
	logger           logger.Logger
}

// NewSeoScanner creates an SEO scanner.
func NewSeoScanner(pages PageSource, prober LinkProber, cfg SeoConfig, log logger.Logger) *SeoScanner {
	if cfg.ProbeConcurrency <= 0 {
		cfg.ProbeConcurrency = DefaultProbeConcurrency
	}
	return &SeoScanner{
		pages:            pages,
		prober:           prober,
		probeConcurrency: cfg.ProbeConcurrency,
		logger:           log,
	}
}

func (s *SeoScanner) Kind() Kind { return KindSeo }

// Scan checks every page of the asset. When the pages cannot be obtained the
// report carries the error and is flagged.
func (s *SeoScanner) Scan(ctx context.Context, asset *domain.Asset) (*domain.ScanReport, error) {
	report := &domain.ScanReport{Domain: asset.Domain, Scanner: string(KindSeo)}

	pages, err := s.pages.Pages(ctx, asset.Domain)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		s.logger.Warn("no pages for seo scan", logger.String("domain", asset.Domain), logger.Error(err))
		report.Report = "Error crawling asset: " + err.Error()
		report.Flagged = true
		return report, nil
	}

	analyses := make([]*pageAnalysis, 0, len(pages))
	probeTargets := append([]string(nil), asset.URLs...)
	for _, page := range pages {
		a, err := analyzePage(page)
		if err != nil {
			s.logger.Debug("skipping unparsable page", logger.String("url", page.URL), logger.Error(err))
			continue
		}
		analyses = append(analyses, a)
		probeTargets = append(probeTargets, a.links...)
	}

	start := time.Now()
	links := newLinkChecker(s.prober)
	links.checkAll(ctx, probeTargets, s.probeConcurrency)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.logger.Debug("links probed",
		logger.String("domain", asset.Domain),
		logger.Int("targets", len(probeTargets)),
		logger.Duration("duration", time.Since(start)),
	)

	t := newTally()

	// A broken sitemap URL counts as a failed check with no matching pass.
	for _, u := range asset.URLs {
		if links.isBroken(ctx, u) {
			t.fail(u, "Broken link in sitemap")
		}
	}

	for _, a := range analyses {
		a.apply(t)
		for _, link := range a.links {
			if links.isBroken(ctx, link) {
				t.fail(a.url, "Broken link: "+link)
			} else {
				t.pass()
			}
		}
	}

	// Both domain-level checks rest on the resolved URL set.
	if len(asset.URLs) > 0 {
		t.pass()
		t.pass()
	} else {
		t.fail(asset.Domain, "Missing sitemap.xml")
		t.fail(asset.Domain, "Missing robots.txt")
	}

	report.Report = t.render(asset.Domain)
	report.Flagged = t.score() < FlagThreshold
	return report, nil
}

type checkResult struct {
	passed bool
	issue  string
}

// pageAnalysis holds the static check results of one page and the absolute
// links still to be probed.
type pageAnalysis struct {
	url    string
	checks []checkResult
	links  []string
}

func (a *pageAnalysis) apply(t *tally) {
	for _, c := range a.checks {
		if c.passed {
			t.pass()
		} else {
			t.fail(a.url, c.issue)
		}
	}
}

func analyzePage(page domain.Page) (*pageAnalysis, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, err
	}

	a := &pageAnalysis{url: page.URL}
	a.checks = append(a.checks,
		checkTitle(doc),
		checkMetaDescription(doc),
		checkH1(doc),
	)
	a.checks = append(a.checks, checkImages(doc)...)
	a.checks = append(a.checks,
		present(strings.Contains(strings.ToLower(page.HTML), "schema.org"), "Missing schema.org markup"),
		present(doc.Find(`meta[property^="og:"]`).Length() > 0, "Missing Open Graph markup"),
		present(doc.Find(`meta[name^="twitter:"]`).Length() > 0, "Missing Twitter Card markup"),
	)
	a.links = absoluteLinks(doc)
	return a, nil
}

func present(ok bool, issue string) checkResult {
	if ok {
		return checkResult{passed: true}
	}
	return checkResult{issue: issue}
}

func checkTitle(doc *goquery.Document) checkResult {
	title := doc.Find("title").First()
	if title.Length() == 0 {
		return checkResult{issue: "Missing title tag"}
	}
	switch n := utf8.RuneCountInString(strings.TrimSpace(title.Text())); {
	case n < titleMinLen:
		return checkResult{issue: "Title tag too short (less than 10 characters)"}
	case n > titleMaxLen:
		return checkResult{issue: "Title tag too long (more than 70 characters)"}
	default:
		return checkResult{passed: true}
	}
}

func checkMetaDescription(doc *goquery.Document) checkResult {
	var content string
	found := false
	doc.Find("meta[name]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.EqualFold(strings.TrimSpace(sel.AttrOr("name", "")), "description") {
			content = sel.AttrOr("content", "")
			found = true
			return false
		}
		return true
	})
	if !found {
		return checkResult{issue: "Missing meta description"}
	}
	switch n := utf8.RuneCountInString(strings.TrimSpace(content)); {
	case n < descriptionMinLen:
		return checkResult{issue: "Meta description too short (less than 50 characters)"}
	case n > descriptionMaxLen:
		return checkResult{issue: "Meta description too long (more than 160 characters)"}
	default:
		return checkResult{passed: true}
	}
}

// checkH1 treats an empty first h1 like a missing one.
func checkH1(doc *goquery.Document) checkResult {
	h1 := doc.Find("h1").First()
	text := strings.TrimSpace(h1.Text())
	if h1.Length() == 0 || text == "" {
		return checkResult{issue: "Missing H1 tag"}
	}
	if utf8.RuneCountInString(text) > h1MaxLen {
		return checkResult{issue: "H1 tag too long (more than 70 characters)"}
	}
	return checkResult{passed: true}
}

// checkImages yields one check per img element.
func checkImages(doc *goquery.Document) []checkResult {
	var results []checkResult
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		alt, ok := img.Attr("alt")
		if !ok {
			tag, _ := goquery.OuterHtml(img)
			results = append(results, checkResult{issue: "Missing alt attribute in img tag: " + tag})
			return
		}
		alt = strings.TrimSpace(alt)
		if utf8.RuneCountInString(alt) > altMaxLen {
			results = append(results, checkResult{issue: "Alt attribute too long (more than 100 characters): " + alt})
			return
		}
		results = append(results, checkResult{passed: true})
	})
	return results
}

// absoluteLinks returns every http(s) anchor target, one entry per anchor.
func absoluteLinks(doc *goquery.Document) []string {
	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		lower := strings.ToLower(href)
		if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
			links = append(links, href)
		}
	})
	return links
}
