// Package nasa holds the adapters for the NASA public APIs: the Astronomy
// Picture of the Day, the image-and-video library search, and the DONKI
// space-weather simulation feed. Each adapter is split into a fetch stage
// (network + decode) and a pure normalize stage so normalization is testable
// without a server.
package nasa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/solarsentinel/sentinel-api/internal/domain"
)

// Config carries the provisioned key and base URLs. Values come from the
// process configuration; the adapter never reads the environment itself.
type Config struct {
	APIKey        string
	APODBaseURL   string
	ImagesBaseURL string
	DonkiBaseURL  string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.APODBaseURL == "" {
		cfg.APODBaseURL = "https://api.nasa.gov"
	}
	if cfg.ImagesBaseURL == "" {
		cfg.ImagesBaseURL = "https://images-api.nasa.gov"
	}
	if cfg.DonkiBaseURL == "" {
		cfg.DonkiBaseURL = "https://api.nasa.gov"
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// getJSON performs one GET and decodes the body into out. A failed request or
// non-2xx status becomes a TransportError, an undecodable body a DecodeError.
func (c *Client) getJSON(ctx context.Context, provider, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &domain.TransportError{Provider: provider, Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.TransportError{Provider: provider, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.TransportError{
			Provider: provider,
			Cause:    fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.DecodeError{Provider: provider, Cause: err}
	}
	return nil
}

// parseDate accepts the timestamp formats the NASA feeds actually emit:
// RFC 3339, minute-precision Zulu (DONKI), and bare calendar dates.
func parseDate(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04Z",
		"2006-01-02",
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
