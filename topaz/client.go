// Package topaz is a thin client for the Topaz greyhound racing API.
package topaz

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/padraicbc/dogapi/models"
)

// Client calls the Topaz API. All requests share a fixed timeout and carry
// the API key header; there are no retries, callers isolate failures per
// fan-out branch instead.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New returns a Client for the given base URL and API key.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Meetings lists meetings in the from/to date range (yyyy-mm-dd). A
// jurisdiction code narrows the result to one owning authority.
func (c *Client) Meetings(ctx context.Context, fromDate, toDate, jurisdiction string) ([]Meeting, error) {
	params := url.Values{"from": {fromDate}}
	if toDate != "" {
		params.Set("to", toDate)
	}
	if jurisdiction != "" {
		params.Set("owningauthoritycode", jurisdiction)
	}

	var meetings []Meeting
	if err := c.get(ctx, "/meeting?"+params.Encode(), &meetings); err != nil {
		return nil, fmt.Errorf("fetching meetings: %w", err)
	}
	return meetings, nil
}

// RacesForMeeting lists a meeting's races with their nested runners.
func (c *Client) RacesForMeeting(ctx context.Context, meetingID int64) ([]Race, error) {
	var races []Race
	if err := c.get(ctx, fmt.Sprintf("/meeting/%d/races", meetingID), &races); err != nil {
		return nil, fmt.Errorf("fetching races for meeting %d: %w", meetingID, err)
	}
	return races, nil
}

// BulkRuns fetches a full month of historical runs for a jurisdiction.
func (c *Client) BulkRuns(ctx context.Context, jurisdiction string, year, month int) ([]models.Run, error) {
	var runs []models.Run
	path := fmt.Sprintf("/bulk/runs/%s/%d/%d", jurisdiction, year, month)
	if err := c.get(ctx, path, &runs); err != nil {
		return nil, fmt.Errorf("fetching bulk runs: %w", err)
	}
	return runs, nil
}

// BulkRunsByDay fetches one day of historical runs for a jurisdiction.
func (c *Client) BulkRunsByDay(ctx context.Context, jurisdiction string, year, month, day int) ([]models.Run, error) {
	var runs []models.Run
	path := fmt.Sprintf("/bulk/runs/%s/%d/%d/%d", jurisdiction, year, month, day)
	if err := c.get(ctx, path, &runs); err != nil {
		return nil, fmt.Errorf("fetching bulk runs by day: %w", err)
	}
	return runs, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little of the body for context without trusting its size.
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("topaz returned %d: %s", resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
