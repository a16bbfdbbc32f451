package nasa

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/solarsentinel/sentinel-api/internal/domain"
)

const donkiProvider = "nasa-donki"

// Raw wire shapes of the WSA-Enlil simulation feed. The endpoint answers with
// a bare array, possibly empty; impactList may be null for a quiet run.
type donkiSimulation struct {
	ModelCompletionTime string        `json:"modelCompletionTime"`
	ImpactList          []donkiImpact `json:"impactList"`
}

type donkiImpact struct {
	Location    string  `json:"location"`
	ArrivalTime string  `json:"arrivalTime"`
	KpIndex     float64 `json:"kpIndex"`
}

func (c *Client) fetchSimulations(ctx context.Context, from, to time.Time) ([]donkiSimulation, error) {
	u := fmt.Sprintf("%s/DONKI/WSAEnlilSimulations?startDate=%s&endDate=%s&api_key=%s",
		c.cfg.DonkiBaseURL,
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
		url.QueryEscape(c.cfg.APIKey))

	var raw []donkiSimulation
	if err := c.getJSON(ctx, donkiProvider, u, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// normalizeSimulations maps raw simulations into WeatherEvents. A malformed
// timestamp fails the whole result; partial events are never emitted.
func normalizeSimulations(raw []donkiSimulation) ([]domain.WeatherEvent, error) {
	events := make([]domain.WeatherEvent, 0, len(raw))
	for _, sim := range raw {
		observed, err := parseDate(sim.ModelCompletionTime)
		if err != nil {
			return nil, &domain.DecodeError{
				Provider: donkiProvider,
				Cause:    fmt.Errorf("bad modelCompletionTime %q: %w", sim.ModelCompletionTime, err),
			}
		}

		ev := domain.WeatherEvent{
			ObservedAt: observed,
			Impacts:    make([]domain.WeatherImpact, 0, len(sim.ImpactList)),
		}
		for _, imp := range sim.ImpactList {
			arrival, err := parseDate(imp.ArrivalTime)
			if err != nil {
				return nil, &domain.DecodeError{
					Provider: donkiProvider,
					Cause:    fmt.Errorf("bad arrivalTime %q: %w", imp.ArrivalTime, err),
				}
			}
			ev.Impacts = append(ev.Impacts, domain.WeatherImpact{
				Location:      imp.Location,
				ArrivalTime:   arrival,
				SeverityIndex: int(imp.KpIndex),
			})
		}
		events = append(events, ev)
	}
	return events, nil
}

// Events implements domain.WeatherProvider. An empty feed is a valid
// "no active alerts" state and comes back as an empty slice, not an error.
func (c *Client) Events(ctx context.Context, from, to time.Time) ([]domain.WeatherEvent, error) {
	raw, err := c.fetchSimulations(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return normalizeSimulations(raw)
}
