package nasa

import (
	"context"
	"fmt"
	"net/url"

	"github.com/solarsentinel/sentinel-api/internal/domain"
)

const apodProvider = "nasa-apod"

// apodResponse is the raw wire shape of the APOD endpoint.
type apodResponse struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
	URL         string `json:"url"`
	Date        string `json:"date"`
	Copyright   string `json:"copyright"`
}

func (c *Client) fetchAPOD(ctx context.Context) (apodResponse, error) {
	u := fmt.Sprintf("%s/planetary/apod?api_key=%s", c.cfg.APODBaseURL, url.QueryEscape(c.cfg.APIKey))

	var raw apodResponse
	if err := c.getJSON(ctx, apodProvider, u, &raw); err != nil {
		return apodResponse{}, err
	}
	return raw, nil
}

// normalizeAPOD maps the raw payload into the canonical record. Copyright and
// date are optional on the wire and stay absent when missing, never invented.
func normalizeAPOD(raw apodResponse) (domain.ImageRecord, error) {
	if raw.URL == "" {
		return domain.ImageRecord{}, &domain.DecodeError{
			Provider: apodProvider,
			Cause:    fmt.Errorf("payload has no image url"),
		}
	}

	rec := domain.ImageRecord{
		Title:       raw.Title,
		Description: raw.Explanation,
		URL:         raw.URL,
		Credit:      raw.Copyright,
	}
	if raw.Date != "" {
		if t, err := parseDate(raw.Date); err == nil {
			rec.CapturedAt = &t
		}
	}
	return rec, nil
}

// FeaturedImage implements domain.FeaturedImageProvider.
func (c *Client) FeaturedImage(ctx context.Context) (domain.ImageRecord, error) {
	raw, err := c.fetchAPOD(ctx)
	if err != nil {
		return domain.ImageRecord{}, err
	}
	return normalizeAPOD(raw)
}
