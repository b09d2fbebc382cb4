// Package render owns the headless-browser session used to obtain a page's
// final HTML. The orchestrator only sees the Renderer interface; pages are
// scoped sub-resources released on every exit path.
package render

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"webgrab/pkg/config"
	"webgrab/pkg/logger"
)

// Renderer navigates to a URL, waits until activity settles, and returns
// the final HTML.
type Renderer interface {
	RenderPage(ctx context.Context, pageURL string) (string, error)
	Close() error
}

// New creates the renderer selected by configuration
func New(cfg *config.Config, log logger.Logger) (Renderer, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	switch cfg.Render.Engine {
	case config.RenderEngineChrome:
		return NewChromeRenderer(&cfg.Render, cfg.Download.UserAgent, log), nil
	case config.RenderEngineHTTP:
		return NewHTTPRenderer(&cfg.Render, cfg.Download.UserAgent, log), nil
	default:
		return nil, fmt.Errorf("unsupported render engine %q", cfg.Render.Engine)
	}
}

// HTTPRenderer fetches raw HTML without executing JavaScript. It serves
// environments without Chrome and keeps tests hermetic.
type HTTPRenderer struct {
	client    *http.Client
	userAgent string
	logger    logger.Logger
}

// NewHTTPRenderer creates a plain HTTP renderer
func NewHTTPRenderer(cfg *config.RenderConfig, userAgent string, log logger.Logger) *HTTPRenderer {
	if log == nil {
		log = logger.GetLogger()
	}

	return &HTTPRenderer{
		client: &http.Client{
			Timeout: cfg.PageTimeout,
		},
		userAgent: userAgent,
		logger:    log,
	}
}

// RenderPage fetches the page body as-is
func (r *HTTPRenderer) RenderPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read page body: %w", err)
	}

	return string(body), nil
}

// Close releases nothing; plain HTTP holds no session state
func (r *HTTPRenderer) Close() error {
	return nil
}
