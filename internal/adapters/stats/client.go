package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"eventhub/internal/domain"
)

type hitPayload struct {
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

type statsHTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient returns a StatsClient that talks to the stats service at baseURL.
// Every failure is reported wrapped in domain.ErrUnavailable.
func NewHTTPClient(baseURL string, client *http.Client) domain.StatsClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &statsHTTPClient{baseURL: strings.TrimSuffix(baseURL, "/"), client: client}
}

func (c *statsHTTPClient) RecordHit(ctx context.Context, hit domain.EndpointHit) error {
	body, err := json.Marshal(hitPayload{
		App:       hit.App,
		URI:       hit.URI,
		IP:        hit.IP,
		Timestamp: hit.Timestamp.Format(domain.StatsTimeLayout),
	})
	if err != nil {
		return fmt.Errorf("failed to encode hit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: record hit: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: stats service returned status %d", domain.ErrUnavailable, resp.StatusCode)
	}
	return nil
}

func (c *statsHTTPClient) QueryViews(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]domain.ViewStats, error) {
	q := url.Values{}
	q.Set("start", start.Format(domain.StatsTimeLayout))
	q.Set("end", end.Format(domain.StatsTimeLayout))
	if len(uris) > 0 {
		q.Set("uris", strings.Join(uris, ","))
	}
	q.Set("unique", strconv.FormatBool(unique))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: query views: %v", domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: stats service returned status %d", domain.ErrUnavailable, resp.StatusCode)
	}

	var stats []domain.ViewStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("%w: decode stats response: %v", domain.ErrUnavailable, err)
	}
	return stats, nil
}
