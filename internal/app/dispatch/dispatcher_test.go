package dispatch_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/solarsentinel/sentinel-api/internal/app/dispatch"
	"github.com/solarsentinel/sentinel-api/internal/app/spacedata"
	"github.com/solarsentinel/sentinel-api/internal/domain"
)

// function adapters for the provider ports

type featuredStub func(context.Context) (domain.ImageRecord, error)

func (f featuredStub) FeaturedImage(ctx context.Context) (domain.ImageRecord, error) { return f(ctx) }

type searchStub func(context.Context, string) ([]domain.ImageRecord, error)

func (f searchStub) SearchImages(ctx context.Context, topic string) ([]domain.ImageRecord, error) {
	return f(ctx, topic)
}

type weatherStub func(context.Context, time.Time, time.Time) ([]domain.WeatherEvent, error)

func (f weatherStub) Events(ctx context.Context, from, to time.Time) ([]domain.WeatherEvent, error) {
	return f(ctx, from, to)
}

type satelliteStub func(context.Context, int) ([]domain.SatelliteRecord, error)

func (f satelliteStub) LatestSatellites(ctx context.Context, limit int) ([]domain.SatelliteRecord, error) {
	return f(ctx, limit)
}

type fixture struct {
	featuredCalls  int
	searchedTopics []string
	weatherCalls   int
	satLimits      []int

	featured   domain.ImageRecord
	featureErr error
	images     []domain.ImageRecord
	imagesErr  error
	events     []domain.WeatherEvent
	eventsErr  error
	sats       []domain.SatelliteRecord
	satsErr    error
}

func (fx *fixture) dispatcher() *dispatch.Dispatcher {
	data := spacedata.NewService(
		featuredStub(func(context.Context) (domain.ImageRecord, error) {
			fx.featuredCalls++
			return fx.featured, fx.featureErr
		}),
		searchStub(func(_ context.Context, topic string) ([]domain.ImageRecord, error) {
			fx.searchedTopics = append(fx.searchedTopics, topic)
			return fx.images, fx.imagesErr
		}),
		weatherStub(func(context.Context, time.Time, time.Time) ([]domain.WeatherEvent, error) {
			fx.weatherCalls++
			return fx.events, fx.eventsErr
		}),
		satelliteStub(func(_ context.Context, limit int) ([]domain.SatelliteRecord, error) {
			fx.satLimits = append(fx.satLimits, limit)
			return fx.sats, fx.satsErr
		}),
	)
	return dispatch.NewDispatcher(data)
}

func TestClassify_FeaturedImage(t *testing.T) {
	fx := &fixture{featured: domain.ImageRecord{Title: "APOD", URL: "https://img/apod.jpg"}}
	d := fx.dispatcher()

	out := d.Classify(context.Background(), "Show me today's space photo")

	require.Equal(t, dispatch.KindHandled, out.Kind)
	require.Equal(t, "Here's today's Astronomy Picture of the Day from NASA:", out.Reply)
	require.Len(t, out.Images, 1)
	require.Equal(t, 1, fx.featuredCalls)
	require.Empty(t, fx.searchedTopics)
}

func TestClassify_FeaturedBeatsSearch(t *testing.T) {
	// overlapping keywords resolve by pattern priority, featured first
	fx := &fixture{featured: domain.ImageRecord{URL: "https://img/apod.jpg"}}
	d := fx.dispatcher()

	out := d.Classify(context.Background(), "show me the astronomy picture with a solar flare")

	require.Equal(t, dispatch.KindHandled, out.Kind)
	require.Equal(t, 1, fx.featuredCalls)
	require.Empty(t, fx.searchedTopics)
}

func TestClassify_SearchTopicMapping(t *testing.T) {
	cases := []struct {
		utterance string
		want      string
	}{
		{"search for nebula pictures", "nebula"},
		{"show me solar flares", "solar flare"},
		{"show me an aurora please", "aurora borealis"},
		{"search for a galaxy far away", "galaxy"},
	}

	for _, tc := range cases {
		fx := &fixture{images: []domain.ImageRecord{{URL: "https://img/1.jpg"}}}
		d := fx.dispatcher()

		out := d.Classify(context.Background(), tc.utterance)

		require.Equal(t, dispatch.KindHandled, out.Kind, tc.utterance)
		require.Equal(t, []string{tc.want}, fx.searchedTopics, tc.utterance)
		require.Equal(t, fmt.Sprintf("Here are some NASA images related to %q:", tc.want), out.Reply)
	}
}

func TestClassify_TopicTieBreakUsesVocabularyOrder(t *testing.T) {
	// "nebula" appears first in the sentence but "aurora" comes first in the
	// fixed vocabulary, so aurora wins.
	fx := &fixture{images: []domain.ImageRecord{{URL: "https://img/1.jpg"}}}
	d := fx.dispatcher()

	out := d.Classify(context.Background(), "show me a nebula behind an aurora")

	require.Equal(t, dispatch.KindHandled, out.Kind)
	require.Equal(t, []string{"aurora borealis"}, fx.searchedTopics)
}

func TestClassify_Unrecognized(t *testing.T) {
	fx := &fixture{}
	d := fx.dispatcher()

	out := d.Classify(context.Background(), "what do you think about the moon landing?")

	require.Equal(t, dispatch.KindUnrecognized, out.Kind)
	require.Zero(t, fx.featuredCalls)
	require.Empty(t, fx.searchedTopics)
	require.Zero(t, fx.weatherCalls)
}

func TestClassify_ShowMeWithoutKnownTopicIsUnrecognized(t *testing.T) {
	fx := &fixture{}
	d := fx.dispatcher()

	out := d.Classify(context.Background(), "show me your source code")

	require.Equal(t, dispatch.KindUnrecognized, out.Kind)
	require.Empty(t, fx.searchedTopics)
}

func TestClassify_WeatherNoAlerts(t *testing.T) {
	fx := &fixture{events: nil}
	d := fx.dispatcher()

	out := d.Classify(context.Background(), "how is the space weather today?")

	require.Equal(t, dispatch.KindHandled, out.Kind)
	require.Equal(t, "No active space weather alerts right now.", out.Reply)
	require.Empty(t, out.Images)
	require.Equal(t, 1, fx.weatherCalls)
}

func TestClassify_WeatherWithImpacts(t *testing.T) {
	arrival := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	fx := &fixture{events: []domain.WeatherEvent{{
		ObservedAt: arrival.Add(-24 * time.Hour),
		Impacts: []domain.WeatherImpact{
			{Location: "Earth", ArrivalTime: arrival, SeverityIndex: 7},
		},
	}}}
	d := fx.dispatcher()

	out := d.Classify(context.Background(), "any solar storm coming?")

	require.Equal(t, dispatch.KindHandled, out.Kind)
	require.Contains(t, out.Reply, "Earth")
	require.Contains(t, out.Reply, "severe")
}

func TestClassify_WeatherFailureIsFailedNotFallthrough(t *testing.T) {
	fx := &fixture{eventsErr: &domain.TransportError{Provider: "nasa-donki", Cause: fmt.Errorf("status 500")}}
	d := fx.dispatcher()

	out := d.Classify(context.Background(), "space weather update please")

	require.Equal(t, dispatch.KindFailed, out.Kind)
	var transportErr *domain.TransportError
	require.ErrorAs(t, out.Err, &transportErr)
	require.Empty(t, out.Images)
}

func TestClassify_SearchCappedAtFive(t *testing.T) {
	var many []domain.ImageRecord
	for i := 0; i < 8; i++ {
		many = append(many, domain.ImageRecord{URL: fmt.Sprintf("https://img/%d.jpg", i)})
	}
	fx := &fixture{images: many}
	d := fx.dispatcher()

	out := d.Classify(context.Background(), "search for galaxy shots")

	require.Equal(t, dispatch.KindHandled, out.Kind)
	require.Len(t, out.Images, 5)
	for _, img := range out.Images {
		require.NotEmpty(t, img.URL)
	}
}

func TestClassify_Satellites(t *testing.T) {
	fx := &fixture{sats: []domain.SatelliteRecord{
		{Name: "ISS (ZARYA)", OrbitalLine1: "1 ...", OrbitalLine2: "2 ...", ObservedAt: time.Now()},
	}}
	d := fx.dispatcher()

	out := d.Classify(context.Background(), "show me the latest satellites")

	require.Equal(t, dispatch.KindHandled, out.Kind)
	require.Equal(t, []int{5}, fx.satLimits)
	require.Contains(t, out.Reply, "ISS (ZARYA)")
}
