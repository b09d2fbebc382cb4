// Package discover scans a rendered page's DOM for links that look like
// articles or galleries, and enumerates a page's downloadable images.
package discover

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"webgrab/pkg/srcset"
)

// Candidate is a discovered link heuristically judged likely to lead to
// further downloadable content. Lives only for one run's selection phase.
type Candidate struct {
	Title    string
	Href     string
	HasImage bool
}

// Substrings an href must contain to qualify without a contained image.
// The heuristic trades precision for recall: false positives are expected
// and filtered by the selection step.
var contentHints = []string{"article", "post", "blog"}

// Extra hints applied in daily/recommended-updates mode.
var dailyHints = []string{"daily", "recommend", "today"}

// Options tunes the discovery heuristic
type Options struct {
	// DailyMode widens the href substring set with daily/recommended hints
	DailyMode bool
}

// Candidates walks every anchor in document order and returns the ones that
// look like content links: href present and either matching a content hint
// substring or wrapping an image. Duplicated hrefs keep the first occurrence
// only; later ones are dropped silently.
func Candidates(doc *goquery.Document, opts Options) []Candidate {
	hints := contentHints
	if opts.DailyMode {
		hints = append(append([]string{}, contentHints...), dailyHints...)
	}

	seen := make(map[string]struct{})
	var candidates []Candidate

	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}

		img := s.Find("img")
		hasImage := img.Length() > 0

		if !matchesHint(href, hints) && !hasImage {
			return
		}

		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}

		title := strings.TrimSpace(s.Text())
		if title == "" && hasImage {
			alt, _ := img.First().Attr("alt")
			title = strings.TrimSpace(alt)
		}
		if title == "" {
			title = "Untitled"
		}

		candidates = append(candidates, Candidate{
			Title:    title,
			Href:     href,
			HasImage: hasImage,
		})
	})

	return candidates
}

func matchesHint(href string, hints []string) bool {
	lower := strings.ToLower(href)
	for _, hint := range hints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// ImageURLs enumerates a page's img elements, resolves each to its
// highest-resolution variant, and returns absolute URLs in document order.
// Inline data: URLs and unresolvable references are discarded; duplicates
// keep the first occurrence.
func ImageURLs(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]struct{})
	var urls []string

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		set, _ := s.Attr("srcset")

		best := srcset.BestURL(strings.TrimSpace(src), strings.TrimSpace(set))
		if best == "" {
			return
		}
		if strings.HasPrefix(strings.ToLower(best), "data:") {
			return
		}

		resolved := best
		if base != nil {
			target, err := base.Parse(best)
			if err != nil {
				return
			}
			target.Fragment = ""
			resolved = target.String()
		}

		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}
		urls = append(urls, resolved)
	})

	return urls
}

// ResolveHref resolves a candidate's possibly relative href against the
// originating page's URL.
func ResolveHref(base *url.URL, href string) (string, bool) {
	if base == nil {
		return href, href != ""
	}
	target, err := base.Parse(href)
	if err != nil {
		return "", false
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return "", false
	}
	return target.String(), true
}
