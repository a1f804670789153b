// Package client calls the timeline HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/TNTKien/repo-timeline/internal/models"
)

// ErrorResponse is the body returned with a non-success status.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// Client fetches timeline pages from a running server. It implements
// timeline.Fetcher, so a timeline.Session can browse through it.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchPage requests one timeline page. Missing owner or repo is rejected
// before any request is sent.
func (c *Client) FetchPage(ctx context.Context, req models.PageRequest) (*models.Snapshot, error) {
	req = req.WithDefaults()
	if err := req.Repository.Validate(); err != nil {
		return nil, err
	}

	query := url.Values{
		"owner":   {req.Repository.Owner},
		"repo":    {req.Repository.Name},
		"page":    {strconv.Itoa(req.Page)},
		"perPage": {strconv.Itoa(req.PerPage)},
		"filter":  {string(req.Filter)},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/github/timeline?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var snapshot models.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if snapshot.Items == nil {
		snapshot.Items = []models.TimelineItem{}
	}
	return &snapshot, nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	detail := strings.TrimSpace(string(body))
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		switch {
		case errResp.Details != "":
			detail = errResp.Details
		case errResp.Error != "":
			detail = errResp.Error
		}
	}
	if detail == "" {
		detail = "Failed to fetch repository timeline"
	}

	if resp.StatusCode == http.StatusBadRequest {
		return fmt.Errorf("%w: %s", models.ErrInvalidRequest, detail)
	}
	return &models.UpstreamError{Status: resp.StatusCode, Detail: detail}
}
