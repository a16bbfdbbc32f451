// Package tle adapts the public two-line-element feed. The TLE lines
// themselves are opaque strings; this adapter only reshapes the envelope.
package tle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/solarsentinel/sentinel-api/internal/domain"
)

const provider = "tle-api"

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://tle.ivanstanojevic.me"
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// memberResponse is the raw paged collection shape; only the member page is
// consumed.
type memberResponse struct {
	Member []tleMember `json:"member"`
}

type tleMember struct {
	Name  string `json:"name"`
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
	Date  string `json:"date"`
}

func (c *Client) fetchLatest(ctx context.Context, limit int) (memberResponse, error) {
	u := fmt.Sprintf("%s/api/tle?limit=%d", c.baseURL, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return memberResponse{}, &domain.TransportError{Provider: provider, Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return memberResponse{}, &domain.TransportError{Provider: provider, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return memberResponse{}, &domain.TransportError{
			Provider: provider,
			Cause:    fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var raw memberResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return memberResponse{}, &domain.DecodeError{Provider: provider, Cause: err}
	}
	return raw, nil
}

// normalizeMembers keeps source order and fails on an unparseable timestamp
// rather than emitting a partial record.
func normalizeMembers(raw memberResponse) ([]domain.SatelliteRecord, error) {
	records := make([]domain.SatelliteRecord, 0, len(raw.Member))
	for _, m := range raw.Member {
		observed, err := time.Parse(time.RFC3339, m.Date)
		if err != nil {
			return nil, &domain.DecodeError{
				Provider: provider,
				Cause:    fmt.Errorf("bad date %q: %w", m.Date, err),
			}
		}
		records = append(records, domain.SatelliteRecord{
			Name:         m.Name,
			OrbitalLine1: m.Line1,
			OrbitalLine2: m.Line2,
			ObservedAt:   observed,
		})
	}
	return records, nil
}

// LatestSatellites implements domain.SatelliteProvider.
func (c *Client) LatestSatellites(ctx context.Context, limit int) ([]domain.SatelliteRecord, error) {
	if limit <= 0 {
		return nil, &domain.DecodeError{
			Provider: provider,
			Cause:    fmt.Errorf("limit must be positive, got %d", limit),
		}
	}

	raw, err := c.fetchLatest(ctx, limit)
	if err != nil {
		return nil, err
	}
	return normalizeMembers(raw)
}
