// Package feed resolves the set of pages a crawl visits for a domain from
// its sitemaps, falling back to the homepage's links.
package feed

import (
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
)

// locQuery matches <loc> elements whatever their namespace or parent, so
// url sets, sitemap indexes and loosely formed sitemaps parse alike.
const locQuery = "//*[local-name()='loc']"

const sitemapSuffix = ".xml"

// ParseLocations returns the trimmed text of every <loc> element in body,
// in document order.
func ParseLocations(body string) ([]string, error) {
	doc, err := xmlquery.Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse sitemap: %w", err)
	}

	nodes, err := xmlquery.QueryAll(doc, locQuery)
	if err != nil {
		return nil, fmt.Errorf("query sitemap: %w", err)
	}

	locs := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if loc := strings.TrimSpace(n.InnerText()); loc != "" {
			locs = append(locs, loc)
		}
	}
	return locs, nil
}

// IsSitemapLocation reports whether loc points at another sitemap rather
// than a content page.
func IsSitemapLocation(loc string) bool {
	return strings.HasSuffix(strings.ToLower(loc), sitemapSuffix)
}
