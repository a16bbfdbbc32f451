// Package spacedata is the aggregation facade: one call per logical
// capability, hiding which provider serves it.
package spacedata

import (
	"context"
	"fmt"
	"time"

	"github.com/solarsentinel/sentinel-api/internal/domain"
)

// MaxResults caps every list capability after normalization, independent of
// whatever the provider itself truncates to.
const MaxResults = 5

type Service struct {
	featured   domain.FeaturedImageProvider
	search     domain.ImageSearchProvider
	weather    domain.WeatherProvider
	satellites domain.SatelliteProvider
	now        func() time.Time
}

func NewService(
	featured domain.FeaturedImageProvider,
	search domain.ImageSearchProvider,
	weather domain.WeatherProvider,
	satellites domain.SatelliteProvider,
) *Service {
	return &Service{
		featured:   featured,
		search:     search,
		weather:    weather,
		satellites: satellites,
		now:        time.Now,
	}
}

// FeaturedImage returns today's featured astronomy image.
func (s *Service) FeaturedImage(ctx context.Context) (domain.ImageRecord, error) {
	return s.featured.FeaturedImage(ctx)
}

// SearchImages returns at most MaxResults records for a topic, provider order.
func (s *Service) SearchImages(ctx context.Context, topic string) ([]domain.ImageRecord, error) {
	if topic == "" {
		return nil, fmt.Errorf("search topic is required")
	}
	records, err := s.search.SearchImages(ctx, topic)
	if err != nil {
		return nil, err
	}
	return capRecords(records), nil
}

// CurrentImpacts returns simulation events for the range. Zero endpoints
// default to today in the caller's local calendar, both ends equal. An empty
// result is a valid "no active alerts" state.
func (s *Service) CurrentImpacts(ctx context.Context, from, to time.Time) ([]domain.WeatherEvent, error) {
	if from.IsZero() {
		from = s.now()
	}
	if to.IsZero() {
		to = from
	}
	return s.weather.Events(ctx, from, to)
}

// LatestSatellites returns up to limit element sets, capped at MaxResults.
func (s *Service) LatestSatellites(ctx context.Context, limit int) ([]domain.SatelliteRecord, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	if limit > MaxResults {
		limit = MaxResults
	}
	records, err := s.satellites.LatestSatellites(ctx, limit)
	if err != nil {
		return nil, err
	}
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func capRecords(records []domain.ImageRecord) []domain.ImageRecord {
	if len(records) > MaxResults {
		return records[:MaxResults]
	}
	return records
}
