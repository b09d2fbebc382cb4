// Package collector sequences rendering, discovery, selection, and per-page
// processing for a collection run.
package collector

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"webgrab/internal/downloader"
	"webgrab/pkg/article"
	"webgrab/pkg/config"
	"webgrab/pkg/discover"
	werrors "webgrab/pkg/errors"
	"webgrab/pkg/logger"
	"webgrab/pkg/ratelimit"
	"webgrab/pkg/render"
	"webgrab/pkg/storage"
	"webgrab/pkg/ui"
)

// Summary tallies every per-item outcome of a run. Nothing is dropped
// silently: each count corresponds to logged items.
type Summary struct {
	PagesProcessed int
	PagesFailed    int
	ImagesSaved    int
	Duplicates     int
	TooSmall       int
	ImagesFailed   int
	ArticlesSaved  int
}

// Collector owns the rendering session and drives the whole run
type Collector struct {
	cfg      *config.Config
	renderer render.Renderer
	store    *storage.Manager
	dl       *downloader.Downloader
	limiter  ratelimit.Limiter
	selector ui.Selector
	logger   logger.Logger

	now func() time.Time
}

// New wires a collector from configuration. The renderer is owned by the
// collector from here on; Close releases it.
func New(cfg *config.Config, renderer render.Renderer, selector ui.Selector, log logger.Logger) (*Collector, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	store, err := storage.NewManager(cfg.Output.RootDirectory)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, time.Minute)

	if selector == nil {
		selector = ui.AutoSelector{Cap: cfg.Discovery.CandidateCap}
	}

	return &Collector{
		cfg:      cfg,
		renderer: renderer,
		store:    store,
		dl:       downloader.New(&cfg.Download, store, limiter, log),
		limiter:  limiter,
		selector: selector,
		logger:   log,
		now:      time.Now,
	}, nil
}

// Close releases the rendering session
func (c *Collector) Close() error {
	return c.renderer.Close()
}

// Run executes one collection run from a seed URL. A seed render failure is
// fatal and returned; failures on selected sub-pages or individual images
// are logged, tallied, and skipped.
func (c *Collector) Run(ctx context.Context, seedURL string) (*Summary, error) {
	summary := &Summary{}

	c.logger.InfoWithFields("rendering seed page", map[string]interface{}{
		"url": seedURL,
	})

	seedHTML, err := c.renderer.RenderPage(ctx, seedURL)
	if err != nil {
		return summary, werrors.Wrap(werrors.ErrorTypeDiscovery, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(seedHTML))
	if err != nil {
		return summary, werrors.Wrap(werrors.ErrorTypeDiscovery, err)
	}

	candidates := discover.Candidates(doc, discover.Options{
		DailyMode: c.cfg.Discovery.DailyMode,
	})

	c.logger.InfoWithFields("discovery complete", map[string]interface{}{
		"url":        seedURL,
		"candidates": len(candidates),
	})

	// No candidates: the seed page itself is the sole target.
	if len(candidates) == 0 {
		c.logger.Info("no candidates found, processing seed page directly")
		c.processPage(ctx, seedURL, seedHTML, summary)
		return summary, nil
	}

	selected := c.selector.Select(candidates)
	seedBase, err := url.Parse(seedURL)
	if err != nil {
		return summary, werrors.Wrap(werrors.ErrorTypeDiscovery, err)
	}

	for _, candidate := range selected {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		pageURL, ok := discover.ResolveHref(seedBase, candidate.Href)
		if !ok {
			c.logger.WarnWithFields("skipping unresolvable candidate", map[string]interface{}{
				"href": candidate.Href,
			})
			summary.PagesFailed++
			continue
		}

		pageLog := c.logger.WithField("url", pageURL)
		pageLog.InfoWithFields("rendering selected page", map[string]interface{}{
			"title": candidate.Title,
		})

		html, err := c.renderer.RenderPage(ctx, pageURL)
		if err != nil {
			pageLog.WithError(err).Warn("sub-page render failed, skipping")
			summary.PagesFailed++
			continue
		}

		c.processPage(ctx, pageURL, html, summary)
	}

	return summary, nil
}

// processPage downloads a page's images and, when enabled, writes its
// article document. Failures here never propagate past the page.
func (c *Collector) processPage(ctx context.Context, pageURL, html string, summary *Summary) {
	pageLog := c.logger.WithField("url", pageURL)

	destDir, err := c.store.DestinationFor(pageURL, c.now())
	if err != nil {
		pageLog.WithError(err).Error("failed to resolve destination folder")
		summary.PagesFailed++
		return
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		pageLog.WithError(err).Error("failed to parse page")
		summary.PagesFailed++
		return
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		pageLog.WithError(err).Error("failed to parse page URL")
		summary.PagesFailed++
		return
	}

	imageURLs := discover.ImageURLs(doc, base)
	pageLog.InfoWithFields("processing page", map[string]interface{}{
		"images":      len(imageURLs),
		"destination": destDir,
	})

	if len(imageURLs) > 0 {
		c.downloadImages(ctx, pageURL, destDir, imageURLs, summary)
	}

	if c.cfg.Article.Enabled {
		c.saveArticle(pageURL, destDir, html, summary)
	}

	summary.PagesProcessed++
}

// downloadImages drives a page's image URLs through the bounded worker pool
// and tallies each individual outcome.
func (c *Collector) downloadImages(ctx context.Context, pageURL, destDir string, imageURLs []string, summary *Summary) {
	pool := downloader.NewWorkerPool(ctx, c.cfg.Download.ConcurrentDownloads, c.dl, c.limiter, c.logger)
	pool.Start()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for res := range pool.Results() {
			c.recordResult(res.Result, summary)
		}
	}()

	for _, imageURL := range imageURLs {
		job := downloader.Job{URL: imageURL, DestDir: destDir, PageURL: pageURL}
		if err := pool.Submit(job); err != nil {
			c.logger.WithError(err).WithField("url", imageURL).Warn("failed to queue download")
			summary.ImagesFailed++
		}
	}

	pool.Stop()
	wg.Wait()
}

// recordResult logs one download outcome and adds it to the summary
func (c *Collector) recordResult(res downloader.Result, summary *Summary) {
	fields := map[string]interface{}{
		"url":      res.URL,
		"size":     res.Size,
		"duration": res.Duration,
	}

	switch res.Status {
	case downloader.StatusSaved:
		fields["path"] = res.SavedPath
		c.logger.InfoWithFields("image saved", fields)
		summary.ImagesSaved++
	case downloader.StatusDuplicate:
		c.logger.InfoWithFields("skipped duplicate content", fields)
		summary.Duplicates++
	case downloader.StatusTooSmall:
		c.logger.InfoWithFields("skipped below size threshold", fields)
		summary.TooSmall++
	case downloader.StatusFailed:
		fields["error"] = res.Err.Error()
		c.logger.WarnWithFields("image download failed", fields)
		summary.ImagesFailed++
	}
}

// saveArticle extracts the page's reader view. When extraction cannot
// identify article content, the raw markup is persisted unmodified under
// the fallback filename.
func (c *Collector) saveArticle(pageURL, destDir, html string, summary *Summary) {
	pageLog := c.logger.WithField("url", pageURL)

	doc, err := article.Extract(pageURL, html)
	if err != nil {
		pageLog.WithError(err).Info("article extraction failed, saving raw page")
		path, werr := c.store.SaveDocument(destDir, article.FallbackFilename, html)
		if werr != nil {
			pageLog.WithError(werr).Error("failed to save raw page")
			return
		}
		pageLog.WithField("path", path).Info("raw page saved")
		summary.ArticlesSaved++
		return
	}

	path, err := c.store.SaveDocument(destDir, doc.Filename(), doc.Render())
	if err != nil {
		pageLog.WithError(err).Error("failed to save article")
		return
	}
	pageLog.InfoWithFields("article saved", map[string]interface{}{
		"path":  path,
		"title": doc.Title,
	})
	summary.ArticlesSaved++
}
