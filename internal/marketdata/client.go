package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/irfndi/vix-alert-go/internal/config"
	"github.com/irfndi/vix-alert-go/internal/models"
	"github.com/irfndi/vix-alert-go/internal/utils"
)

// DefaultBaseURL is the public chart API endpoint.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client represents the chart API HTTP client
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	timeout    time.Duration
}

// NewClient creates a new chart API client instance
func NewClient(cfg *config.MarketDataConfig) *Client {
	timeout := cfg.GetRequestTimeout()
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: timeout,
	}
}

// GetDailyCloses fetches the daily close series for symbol from start through
// today. Rows without a close value are dropped; the rest come back sorted by
// date with at most one row per calendar day.
func (c *Client) GetDailyCloses(ctx context.Context, symbol string, start models.Date) (models.TimeSeries, error) {
	params := url.Values{}
	params.Set("period1", strconv.FormatInt(start.UTC().Unix(), 10))
	params.Set("period2", strconv.FormatInt(time.Now().Unix(), 10))
	params.Set("interval", "1d")
	params.Set("events", "history")
	path := fmt.Sprintf("/v8/finance/chart/%s?%s", url.PathEscape(symbol), params.Encode())

	var response chartResponse
	if err := c.makeRequest(ctx, http.MethodGet, path, &response); err != nil {
		return nil, err
	}

	return seriesFromChart(&response)
}

// makeRequest is a helper method to make HTTP requests to the chart API
func (c *Client) makeRequest(ctx context.Context, method, path string, result interface{}) error {
	url := c.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "vix-alert-go/1.0")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Printf("Error closing response body: %v", err)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errorResp chartResponse
		if err := json.Unmarshal(respBody, &errorResp); err == nil && errorResp.Chart.Error != nil {
			return fmt.Errorf("chart API error (%d): %s: %s",
				resp.StatusCode, errorResp.Chart.Error.Code, errorResp.Chart.Error.Description)
		}
		return fmt.Errorf("chart API error (%d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

// seriesFromChart validates the decoded payload and converts it to a series.
func seriesFromChart(response *chartResponse) (models.TimeSeries, error) {
	if response.Chart.Error != nil {
		return nil, utils.NewValidationErrorf("chart API returned error: %s: %s",
			response.Chart.Error.Code, response.Chart.Error.Description)
	}
	if len(response.Chart.Result) == 0 {
		return nil, utils.NewValidationError("chart response contains no result")
	}

	result := response.Chart.Result[0]
	if len(result.Timestamp) == 0 {
		return nil, utils.NewValidationError("chart response contains no timestamps")
	}
	if len(result.Indicators.Quote) == 0 {
		return nil, utils.NewValidationError("chart response contains no close quotes")
	}

	closes := result.Indicators.Quote[0].Close
	if len(closes) != len(result.Timestamp) {
		return nil, utils.NewValidationErrorf("chart response misaligned: %d timestamps, %d closes",
			len(result.Timestamp), len(closes))
	}

	// Session timestamps are instants; the session's calendar date depends on
	// the exchange timezone.
	loc := time.UTC
	if result.Meta.ExchangeTimezoneName != "" {
		if parsed, err := time.LoadLocation(result.Meta.ExchangeTimezoneName); err == nil {
			loc = parsed
		}
	}

	points := make([]models.SeriesPoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if closes[i] == nil {
			continue
		}
		points = append(points, models.SeriesPoint{
			Date:  models.DateOf(time.Unix(ts, 0).In(loc)),
			Value: *closes[i],
		})
	}
	if len(points) == 0 {
		return nil, utils.NewValidationError("chart response contains no usable rows")
	}

	models.SortPointsByDate(points)
	series := collapseDuplicateDates(points)
	if err := series.Validate(); err != nil {
		return nil, err
	}

	return series, nil
}

// collapseDuplicateDates keeps the last row for each date. The live session
// row can duplicate the final daily bar during trading hours.
func collapseDuplicateDates(points []models.SeriesPoint) models.TimeSeries {
	series := make(models.TimeSeries, 0, len(points))
	for _, p := range points {
		if n := len(series); n > 0 && series[n-1].Date == p.Date {
			series[n-1] = p
			continue
		}
		series = append(series, p)
	}
	return series
}

// Close closes the HTTP client (if needed for cleanup)
func (c *Client) Close() error {
	// HTTP client doesn't need explicit closing, but this method
	// is provided for interface compatibility
	return nil
}
