package nasa

import (
	"context"
	"fmt"
	"net/url"

	"github.com/solarsentinel/sentinel-api/internal/domain"
	"github.com/solarsentinel/sentinel-api/internal/observability"
)

const imagesProvider = "nasa-images"

// maxSearchResults caps how many records a single search can yield. The
// provider paginates at 100; the assistant only ever shows a handful.
const maxSearchResults = 5

// Raw wire shapes of the image library search endpoint. Only the first page
// is consumed.
type imageSearchResponse struct {
	Collection struct {
		Items []imageSearchItem `json:"items"`
	} `json:"collection"`
}

type imageSearchItem struct {
	Data []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"data"`
	Links []struct {
		Href string `json:"href"`
	} `json:"links"`
}

func (c *Client) fetchImageSearch(ctx context.Context, topic string) (imageSearchResponse, error) {
	u := fmt.Sprintf("%s/search?q=%s&media_type=image", c.cfg.ImagesBaseURL, url.QueryEscape(topic))

	var raw imageSearchResponse
	if err := c.getJSON(ctx, imagesProvider, u, &raw); err != nil {
		return imageSearchResponse{}, err
	}
	return raw, nil
}

// normalizeImageSearch keeps provider order, truncates to maxSearchResults and
// drops items without a resource locator. The drop is a documented filter
// policy, not an error; the count is returned so callers can log it.
func normalizeImageSearch(raw imageSearchResponse) (records []domain.ImageRecord, dropped int) {
	for _, item := range raw.Collection.Items {
		if len(records) >= maxSearchResults {
			break
		}

		href := ""
		if len(item.Links) > 0 {
			href = item.Links[0].Href
		}
		if href == "" {
			dropped++
			continue
		}

		rec := domain.ImageRecord{URL: href}
		if len(item.Data) > 0 {
			rec.Title = item.Data[0].Title
			rec.Description = item.Data[0].Description
		}
		records = append(records, rec)
	}
	return records, dropped
}

// SearchImages implements domain.ImageSearchProvider.
func (c *Client) SearchImages(ctx context.Context, topic string) ([]domain.ImageRecord, error) {
	if topic == "" {
		return nil, &domain.DecodeError{
			Provider: imagesProvider,
			Cause:    fmt.Errorf("empty search topic"),
		}
	}

	raw, err := c.fetchImageSearch(ctx, topic)
	if err != nil {
		return nil, err
	}

	records, dropped := normalizeImageSearch(raw)
	if dropped > 0 {
		observability.LoggerFromContext(ctx).Debug("dropped image records without url",
			"provider", imagesProvider,
			"topic", topic,
			"dropped", dropped)
	}
	return records, nil
}
