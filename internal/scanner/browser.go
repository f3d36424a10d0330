package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// Browser loads a page and reports the URLs of every request it issued.
type Browser interface {
	Capture(ctx context.Context, pageURL string, settle time.Duration) ([]string, error)
}

// ChromeBrowser drives a fresh headless Chrome per capture.
type ChromeBrowser struct {
	proxyServer string
	execPath    string
}

// NewChromeBrowser creates a browser from the tracker config.
func NewChromeBrowser(cfg TrackerConfig) *ChromeBrowser {
	return &ChromeBrowser{proxyServer: cfg.ProxyServer, execPath: cfg.ChromePath}
}

func (b *ChromeBrowser) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("ignore-certificate-errors", true),
	)
	if b.proxyServer != "" {
		opts = append(opts, chromedp.ProxyServer(b.proxyServer))
	}
	if b.execPath != "" {
		opts = append(opts, chromedp.ExecPath(b.execPath))
	}
	return opts
}

// Capture navigates to pageURL, lets it run for settle and returns the
// request URLs in the order they were sent. The browser is torn down on
// every return path.
func (b *ChromeBrowser) Capture(ctx context.Context, pageURL string, settle time.Duration) ([]string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, b.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var (
		mu       sync.Mutex
		requests []string
	)
	chromedp.ListenTarget(browserCtx, func(ev any) {
		if e, ok := ev.(*network.EventRequestWillBeSent); ok && e.Request != nil {
			mu.Lock()
			requests = append(requests, e.Request.URL)
			mu.Unlock()
		}
	})

	err := chromedp.Run(browserCtx,
		network.Enable(),
		chromedp.Navigate(pageURL),
		chromedp.Sleep(settle),
	)
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	return append([]string(nil), requests...), nil
}
