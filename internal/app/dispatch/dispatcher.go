// Package dispatch decides what an utterance means. Matching is deterministic
// substring work over a fixed pattern order; anything unmatched falls through
// to the generative backend.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/solarsentinel/sentinel-api/internal/app/spacedata"
	"github.com/solarsentinel/sentinel-api/internal/domain"
	"github.com/solarsentinel/sentinel-api/internal/observability"
)

// Kind tags a dispatch outcome.
type Kind int

const (
	// KindHandled means a recognized command produced a structured reply.
	KindHandled Kind = iota
	// KindUnrecognized means the utterance is free conversation for the
	// generative backend.
	KindUnrecognized
	// KindFailed means a recognized command hit a provider failure. The
	// caller surfaces an apology; it never falls through to the backend.
	KindFailed
)

// Outcome is the tagged result of classifying one utterance.
type Outcome struct {
	Kind   Kind
	Reply  string
	Images []domain.ImageRecord
	Err    error
}

func handled(reply string, images ...domain.ImageRecord) Outcome {
	return Outcome{Kind: KindHandled, Reply: reply, Images: images}
}

func failed(err error) Outcome {
	return Outcome{Kind: KindFailed, Err: err}
}

// searchTopics is the fixed vocabulary for image-search phrasing, in declared
// priority order. When several keywords appear in one utterance, the first
// entry here wins regardless of where each keyword sits in the sentence.
var searchTopics = []struct {
	keyword string
	term    string
}{
	{"solar flare", "solar flare"},
	{"aurora", "aurora borealis"},
	{"galaxy", "galaxy"},
	{"nebula", "nebula"},
}

type Dispatcher struct {
	data *spacedata.Service
	now  func() time.Time
}

func NewDispatcher(data *spacedata.Service) *Dispatcher {
	return &Dispatcher{
		data: data,
		now:  time.Now,
	}
}

// Classify evaluates the fixed pattern order against the lower-cased, trimmed
// utterance. The original text is never altered; normalization is for
// matching only. History is deliberately not consulted here.
func (d *Dispatcher) Classify(ctx context.Context, utterance string) Outcome {
	text := strings.ToLower(strings.TrimSpace(utterance))

	if containsAny(text, "today's space photo", "astronomy picture", "picture of the day") {
		return d.featuredImage(ctx)
	}

	if containsAny(text, "show me", "search for") {
		for _, topic := range searchTopics {
			if strings.Contains(text, topic.keyword) {
				return d.searchImages(ctx, topic.term)
			}
		}
		// Show/search phrasing without a known topic is not an image
		// command; the later rules still get a chance.
	}

	if containsAny(text, "space weather", "solar storm", "geomagnetic") {
		return d.weatherReport(ctx)
	}

	if strings.Contains(text, "satellite") {
		return d.satellites(ctx)
	}

	return Outcome{Kind: KindUnrecognized}
}

func (d *Dispatcher) featuredImage(ctx context.Context) Outcome {
	img, err := d.data.FeaturedImage(ctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("featured image fetch failed", "error", err)
		return failed(err)
	}
	return handled("Here's today's Astronomy Picture of the Day from NASA:", img)
}

func (d *Dispatcher) searchImages(ctx context.Context, term string) Outcome {
	images, err := d.data.SearchImages(ctx, term)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("image search failed", "term", term, "error", err)
		return failed(err)
	}
	if len(images) == 0 {
		return handled(fmt.Sprintf("I couldn't find any NASA images related to %q.", term))
	}
	return handled(fmt.Sprintf("Here are some NASA images related to %q:", term), images...)
}

func (d *Dispatcher) weatherReport(ctx context.Context) Outcome {
	today := d.now()
	events, err := d.data.CurrentImpacts(ctx, today, today)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("weather fetch failed", "error", err)
		return failed(err)
	}
	return handled(formatWeatherReply(events))
}

func (d *Dispatcher) satellites(ctx context.Context) Outcome {
	records, err := d.data.LatestSatellites(ctx, spacedata.MaxResults)
	if err != nil {
		observability.LoggerFromContext(ctx).Error("satellite fetch failed", "error", err)
		return failed(err)
	}
	return handled(formatSatelliteReply(records))
}

func formatWeatherReply(events []domain.WeatherEvent) string {
	impacts := 0
	for _, ev := range events {
		impacts += len(ev.Impacts)
	}
	if impacts == 0 {
		return "No active space weather alerts right now."
	}

	var b strings.Builder
	b.WriteString("Current space weather outlook:\n")
	for _, ev := range events {
		for _, imp := range ev.Impacts {
			fmt.Fprintf(&b, "• %s: expected arrival %s, severity %s (Kp %d)\n",
				imp.Location,
				imp.ArrivalTime.Format("Jan 2 15:04 MST"),
				imp.SeverityTier(),
				imp.SeverityIndex)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatSatelliteReply(records []domain.SatelliteRecord) string {
	if len(records) == 0 {
		return "No satellite element sets are available right now."
	}

	var b strings.Builder
	b.WriteString("Latest satellite orbital elements:\n")
	for _, sat := range records {
		fmt.Fprintf(&b, "%s (updated %s)\n%s\n%s\n",
			sat.Name,
			sat.ObservedAt.Format("2006-01-02 15:04 MST"),
			sat.OrbitalLine1,
			sat.OrbitalLine2)
	}
	return strings.TrimRight(b.String(), "\n")
}

func containsAny(text string, substrings ...string) bool {
	for _, s := range substrings {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}
