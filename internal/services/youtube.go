// YouTube search implementation of [Searcher]
//
// Results are read from the ytInitialData document embedded in the search results page.
package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/sptdl/internal/models"
	"github.com/desertthunder/sptdl/internal/shared"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	initialDataMarker = "ytInitialData"
	sectionsPath      = "contents.twoColumnSearchResultsRenderer.primaryContents.sectionListRenderer.contents"
	userAgent         = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// YouTubeService searches YouTube by scraping the results page.
type YouTubeService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewYouTubeService creates a search client for baseURL allowing rps requests per second.
//
// A nil client gets a default one with a 30 second timeout.
func NewYouTubeService(baseURL string, rps float64, client *http.Client) *YouTubeService {
	if baseURL == "" {
		baseURL = models.YouTubeURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}

	return &YouTubeService{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: client,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube"
}

// Search returns at most limit video results for query, in page order.
//
// An empty slice means the page had no video results.
func (y *YouTubeService) Search(ctx context.Context, query string, limit int) ([]models.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 1
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	page, err := y.fetchResultsPage(ctx, query)
	if err != nil {
		return nil, err
	}

	data, err := extractInitialData(page)
	if err != nil {
		return nil, err
	}

	return parseSearchResults(data, limit), nil
}

func (y *YouTubeService) fetchResultsPage(ctx context.Context, query string) (string, error) {
	endpoint := y.baseURL + "/results?" + url.Values{"search_query": {query}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: request failed: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", fmt.Errorf("%w: youtube search status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: youtube search status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}
	return string(body), nil
}

// extractInitialData cuts the ytInitialData JSON object out of a results page.
func extractInitialData(page string) (string, error) {
	i := strings.Index(page, initialDataMarker)
	if i < 0 {
		return "", fmt.Errorf("%w: ytInitialData not found in results page", shared.ErrAPIRequest)
	}
	page = page[i:]

	start := strings.Index(page, "{")
	if start < 0 {
		return "", fmt.Errorf("%w: malformed ytInitialData", shared.ErrAPIRequest)
	}
	page = page[start:]

	end := strings.Index(page, ";</script>")
	if end < 0 {
		end = strings.Index(page, "};")
		if end >= 0 {
			end++
		}
	}
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated ytInitialData", shared.ErrAPIRequest)
	}

	data := page[:end]
	if !gjson.Valid(data) {
		return "", fmt.Errorf("%w: ytInitialData is not valid JSON", shared.ErrAPIRequest)
	}
	return data, nil
}

// parseSearchResults walks the section list and collects videoRenderer entries. Shelves, ads and channels are skipped.
func parseSearchResults(data string, limit int) []models.SearchResult {
	results := make([]models.SearchResult, 0, limit)

	gjson.Get(data, sectionsPath).ForEach(func(_, section gjson.Result) bool {
		section.Get("itemSectionRenderer.contents").ForEach(func(_, item gjson.Result) bool {
			video := item.Get("videoRenderer")
			if !video.Exists() || video.Get("videoId").String() == "" {
				return true
			}

			results = append(results, newSearchResult(video))
			return len(results) < limit
		})
		return len(results) < limit
	})

	return results
}

func newSearchResult(video gjson.Result) models.SearchResult {
	id := video.Get("videoId").String()
	suffix := video.Get("navigationEndpoint.commandMetadata.webCommandMetadata.url").String()
	if suffix == "" {
		suffix = "/watch?v=" + id
	}

	return models.SearchResult{
		VideoID:   id,
		Title:     video.Get("title.runs.0.text").String(),
		Channel:   video.Get("longBylineText.runs.0.text").String(),
		Duration:  video.Get("lengthText.simpleText").String(),
		URLSuffix: suffix,
	}
}
