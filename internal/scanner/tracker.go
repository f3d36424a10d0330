package scanner

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/jonesrussell/north-cloud/leadscan/internal/domain"
	"github.com/jonesrussell/north-cloud/leadscan/internal/logger"
)

// trackerMarkers are matched as substrings of request URLs, in report order.
var trackerMarkers = []string{
	"googletagmanager",
	"analytics",
	"facebook.net",
	"doubleclick",
	"taboola",
	"criteo",
	"hotjar",
	"clarity",
	"track",
	"pixel",
	"session_id",
	"uid",
}

var gaCollectPattern = regexp.MustCompile(`https://[a-zA-Z0-9.-]*google-analytics\.com/g/collect.*`)

const (
	trackerReportPrefix = "Tracker strings matched on network inspection after page load without interaction: "
	strictReportPrefix  = "Google Analytics g/collect requests detected: "
)

// TrackerConsentScanner loads the first page of an asset in a browser and
// reports tracking requests made before any user interaction.
type TrackerConsentScanner struct {
	browser        Browser
	settle         time.Duration
	strict         bool
	browserTimeout time.Duration
	defaultScheme  string
	logger         logger.Logger

	// session holds one token while a browser session runs, so sessions
	// never overlap and a waiting scan can give up on its context.
	session chan struct{}
}

// NewTrackerConsentScanner creates a tracker scanner.
func NewTrackerConsentScanner(browser Browser, cfg TrackerConfig, defaultScheme string, log logger.Logger) *TrackerConsentScanner {
	if cfg.SettlePeriod <= 0 {
		cfg.SettlePeriod = DefaultSettlePeriod
	}
	if cfg.BrowserTimeout <= 0 {
		cfg.BrowserTimeout = DefaultBrowserTimeout
	}
	if defaultScheme == "" {
		defaultScheme = "https"
	}
	return &TrackerConsentScanner{
		browser:        browser,
		settle:         cfg.SettlePeriod,
		strict:         cfg.Strict,
		browserTimeout: cfg.BrowserTimeout,
		defaultScheme:  defaultScheme,
		logger:         log,
		session:        make(chan struct{}, 1),
	}
}

func (s *TrackerConsentScanner) Kind() Kind { return KindTrackerConsent }

func (s *TrackerConsentScanner) Scan(ctx context.Context, asset *domain.Asset) (*domain.ScanReport, error) {
	pageURL := s.entryURL(asset)
	if pageURL == "" {
		return nil, &ExecutionError{Kind: KindTrackerConsent, Err: errors.New("asset has no page to load")}
	}

	requests, err := s.capture(ctx, pageURL)
	if err != nil {
		return nil, &ExecutionError{Kind: KindTrackerConsent, Err: err}
	}

	var findings []string
	prefix := trackerReportPrefix
	if s.strict {
		findings = MatchCollectRequests(requests)
		prefix = strictReportPrefix
	} else {
		findings = MatchTrackers(requests)
	}

	s.logger.Debug("tracker scan finished",
		logger.String("domain", asset.Domain),
		logger.String("url", pageURL),
		logger.Int("requests", len(requests)),
		logger.Int("findings", len(findings)),
	)

	return &domain.ScanReport{
		Domain:  asset.Domain,
		Scanner: string(KindTrackerConsent),
		Report:  prefix + "[" + strings.Join(findings, ", ") + "]",
		Flagged: len(findings) > 0,
	}, nil
}

func (s *TrackerConsentScanner) capture(ctx context.Context, pageURL string) ([]string, error) {
	select {
	case s.session <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.session }()

	ctx, cancel := context.WithTimeout(ctx, s.browserTimeout)
	defer cancel()
	return s.browser.Capture(ctx, pageURL, s.settle)
}

// entryURL is the first resolved URL, or the domain origin for a record
// without URLs.
func (s *TrackerConsentScanner) entryURL(asset *domain.Asset) string {
	if len(asset.URLs) > 0 {
		return asset.URLs[0]
	}
	target, err := domain.ParseTarget(asset.Domain, s.defaultScheme)
	if err != nil {
		return ""
	}
	return target.Origin
}

// MatchTrackers returns the distinct tracker markers found in any request URL.
func MatchTrackers(requests []string) []string {
	findings := []string{}
	for _, marker := range trackerMarkers {
		for _, req := range requests {
			if strings.Contains(req, marker) {
				findings = append(findings, marker)
				break
			}
		}
	}
	return findings
}

// MatchCollectRequests returns the Google Analytics collect requests.
func MatchCollectRequests(requests []string) []string {
	findings := []string{}
	for _, req := range requests {
		if gaCollectPattern.MatchString(req) {
			findings = append(findings, req)
		}
	}
	return findings
}
