package render

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"webgrab/pkg/config"
	"webgrab/pkg/logger"
)

// ChromeRenderer drives a single headless Chrome instance. Each rendered
// page runs in its own tab context, cancelled when the render returns.
type ChromeRenderer struct {
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	pageTimeout time.Duration
	settleDelay time.Duration
	logger      logger.Logger
}

// NewChromeRenderer starts the browser allocator. The browser itself
// launches lazily on the first render.
func NewChromeRenderer(cfg *config.RenderConfig, userAgent string, log logger.Logger) *ChromeRenderer {
	if log == nil {
		log = logger.GetLogger()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(userAgent),
		chromedp.Flag("disable-gpu", true),
	)
	if cfg.DisableHeadless {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	return &ChromeRenderer{
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		pageTimeout:   cfg.PageTimeout,
		settleDelay:   cfg.SettleDelay,
		logger:        log,
	}
}

// RenderPage opens a tab, navigates, waits for the document plus a settle
// delay for late network activity, and returns the final serialized DOM.
// The tab is closed on all exit paths; the caller's context cancels an
// in-flight render.
func (r *ChromeRenderer) RenderPage(ctx context.Context, pageURL string) (string, error) {
	tabCtx, closeTab := chromedp.NewContext(r.browserCtx)
	defer closeTab()

	runCtx, cancel := context.WithTimeout(tabCtx, r.pageTimeout)
	defer cancel()

	// Propagate caller cancellation into the tab.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	start := time.Now()
	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(r.settleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", err
	}

	r.logger.DebugWithFields("page rendered", map[string]interface{}{
		"url":      pageURL,
		"duration": time.Since(start),
		"bytes":    len(html),
	})

	return html, nil
}

// Close shuts down the browser and its allocator
func (r *ChromeRenderer) Close() error {
	r.browserCancel()
	r.allocCancel()
	return nil
}
