package ingestion

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/resume-matcher/internal/fetch"
)

var (
	// ErrInvalidURL is returned when URL is malformed
	ErrInvalidURL = fmt.Errorf("invalid URL")
	// ErrHTTPRequestFailed is returned when HTTP request fails
	ErrHTTPRequestFailed = fmt.Errorf("HTTP request failed")
	// ErrContentExtractionFailed is returned when content extraction fails
	ErrContentExtractionFailed = fmt.Errorf("content extraction failed")
)

// maxExtractedLinks caps how many links are recorded in metadata.
const maxExtractedLinks = 20

// IngestFromURL fetches a job posting URL, extracts text, cleans it, and
// returns cleaned text with metadata. Platform detection selects job-board
// specific content selectors. A non-nil fetcher serves repeat ingests from
// its page cache. If useBrowser is true, falls back to headless browser
// rendering for SPA sites with insufficient content. If verbose is true,
// logs detailed information about the extraction process.
func IngestFromURL(ctx context.Context, urlStr string, fetcher *fetch.CachedFetcher, useBrowser bool, verbose bool) (string, *Metadata, error) {
	// Detect platform for platform-specific selectors
	platform := fetch.DetectPlatform(urlStr)
	if verbose {
		log.Printf("[VERBOSE] URL: %s", urlStr)
		log.Printf("[VERBOSE] Detected platform: %s", platform)
	}

	var html string
	if fetcher != nil {
		result, err := fetcher.Fetch(ctx, urlStr)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
		}
		html = result.HTML
		if verbose {
			log.Printf("[VERBOSE] Fetched HTML: %d bytes (cached=%v)", len(html), result.FromCache)
		}
	} else {
		result, err := fetch.URL(ctx, urlStr, nil)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
		}
		html = result.HTML
		if verbose {
			log.Printf("[VERBOSE] Fetched HTML: %d bytes", len(html))
		}
	}

	// Get platform-specific selectors
	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)
	if verbose {
		log.Printf("[VERBOSE] Content selectors: %v", contentSelectors)
		log.Printf("[VERBOSE] Noise selectors count: %d", len(noiseSelectors))
	}

	// Extract text from HTML using platform-specific selectors and noise removal
	textContent, err := fetch.ExtractMainText(html, contentSelectors, noiseSelectors...)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}
	if verbose {
		log.Printf("[VERBOSE] Extracted text: %d chars", len(textContent))
	}

	// Check if we should use browser fallback for SPA sites
	if useBrowser && fetch.ShouldUseBrowser(textContent) {
		if verbose {
			log.Printf("[VERBOSE] Content too short (%d chars < %d), falling back to browser rendering...",
				len(textContent), fetch.MinContentLength)
		}

		browserHTML, browserErr := fetch.BrowserSimple(ctx, urlStr, verbose)
		if browserErr != nil {
			if verbose {
				log.Printf("[VERBOSE] Browser rendering failed: %v, using HTTP content", browserErr)
			}
			// Continue with HTTP content if browser fails
		} else {
			html = browserHTML
			textContent, err = fetch.ExtractMainText(browserHTML, contentSelectors, noiseSelectors...)
			if err != nil {
				if verbose {
					log.Printf("[VERBOSE] Browser content extraction failed: %v", err)
				}
			} else if verbose {
				log.Printf("[VERBOSE] Browser extracted text: %d chars", len(textContent))
			}
		}
	}

	// Clean text
	cleanedText := CleanText(textContent)
	if verbose {
		log.Printf("[VERBOSE] Cleaned text: %d chars", len(cleanedText))
	}

	// Generate metadata
	metadata := NewMetadata(cleanedText, urlStr)
	metadata.Platform = string(platform)
	metadata.ExtractedLinks = extractLinks(html, urlStr)

	return cleanedText, metadata, nil
}

// extractLinks collects absolute http(s) links from the page, deduplicated
// in document order.
func extractLinks(html, baseURL string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	seen := make(map[string]bool)
	var links []string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok || href == "" || strings.HasPrefix(href, "#") {
			return true
		}

		parsed, err := url.Parse(href)
		if err != nil {
			return true
		}
		if base != nil {
			parsed = base.ResolveReference(parsed)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return true
		}

		link := parsed.String()
		if !seen[link] {
			seen[link] = true
			links = append(links, link)
		}
		return len(links) < maxExtractedLinks
	})

	return links
}
