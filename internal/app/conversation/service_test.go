package conversation_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/solarsentinel/sentinel-api/internal/adapters/storage/memory"
	"github.com/solarsentinel/sentinel-api/internal/app/conversation"
	"github.com/solarsentinel/sentinel-api/internal/app/dispatch"
	"github.com/solarsentinel/sentinel-api/internal/app/spacedata"
	"github.com/solarsentinel/sentinel-api/internal/domain"
)

const apology = "I apologize, but I encountered an error while fetching the data. Please try again later."

// provider stubs shared by the service fixtures

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

// countingLLM records how it was called and answers canned text.
type countingLLM struct {
	calls       int
	historyLens []int
	block       chan struct{} // when set, GenerateReply waits until closed
}

func (c *countingLLM) GenerateReply(ctx context.Context, history []*domain.ConversationMessage) (string, error) {
	c.calls++
	c.historyLens = append(c.historyLens, len(history))
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "generated reply", nil
}

type fixture struct {
	llm  *countingLLM
	svc  *conversation.Service
	msgs *memory.MessageStore
}

func newFixture(t *testing.T, weatherErr error) *fixture {
	t.Helper()

	fx := &fixture{llm: &countingLLM{}}

	data := spacedata.NewService(
		featuredStub(func(context.Context) (domain.ImageRecord, error) {
			return domain.ImageRecord{Title: "APOD", URL: "https://img/apod.jpg"}, nil
		}),
		searchStub(func(_ context.Context, topic string) ([]domain.ImageRecord, error) {
			return []domain.ImageRecord{{Title: topic, URL: "https://img/1.jpg"}}, nil
		}),
		weatherStub(func(context.Context, time.Time, time.Time) ([]domain.WeatherEvent, error) {
			if weatherErr != nil {
				return nil, weatherErr
			}
			return nil, nil
		}),
		satelliteStub(func(context.Context, int) ([]domain.SatelliteRecord, error) {
			return nil, nil
		}),
	)

	fx.msgs = memory.NewMessageStore()
	fx.svc = conversation.NewService(
		fx.llm,
		memory.NewSessionStore(),
		fx.msgs,
		dispatch.NewDispatcher(data),
	)
	return fx
}

func startSession(t *testing.T, fx *fixture) domain.SessionID {
	t.Helper()
	out, err := fx.svc.StartSession(context.Background(), conversation.StartSessionInput{Title: "test"})
	require.NoError(t, err)
	require.NotNil(t, out.Greeting)
	require.Equal(t, domain.RoleAssistant, out.Greeting.Author)
	return out.Session.ID
}

func TestSendMessage_CommandTurn(t *testing.T) {
	fx := newFixture(t, nil)
	id := startSession(t, fx)

	out, err := fx.svc.SendMessage(context.Background(), conversation.SendMessageInput{
		SessionID: id,
		Text:      "show me today's space photo",
	})
	require.NoError(t, err)

	require.Equal(t, domain.RoleUser, out.UserMessage.Author)
	require.Equal(t, "show me today's space photo", out.UserMessage.Text)
	require.Equal(t, "Here's today's Astronomy Picture of the Day from NASA:", out.AssistantMessage.Text)
	require.Len(t, out.AssistantMessage.Images, 1)
	require.NotEmpty(t, out.AssistantMessage.Images[0].URL)

	// commands never reach the generative backend
	require.Zero(t, fx.llm.calls)
}

func TestSendMessage_UnrecognizedGoesToBackendOnce(t *testing.T) {
	fx := newFixture(t, nil)
	id := startSession(t, fx)

	out, err := fx.svc.SendMessage(context.Background(), conversation.SendMessageInput{
		SessionID: id,
		Text:      "tell me something fun about Jupiter",
	})
	require.NoError(t, err)
	require.Equal(t, "generated reply", out.AssistantMessage.Text)

	require.Equal(t, 1, fx.llm.calls)
	// history = greeting + the new user turn
	require.Equal(t, []int{2}, fx.llm.historyLens)
}

func TestSendMessage_FailedTurnAppendsApology(t *testing.T) {
	fx := newFixture(t, &domain.TransportError{Provider: "nasa-donki", Cause: fmt.Errorf("status 500")})
	id := startSession(t, fx)

	out, err := fx.svc.SendMessage(context.Background(), conversation.SendMessageInput{
		SessionID: id,
		Text:      "space weather report",
	})
	require.NoError(t, err)

	require.Equal(t, apology, out.AssistantMessage.Text)
	require.Empty(t, out.AssistantMessage.Images)
	require.Zero(t, fx.llm.calls) // a failed command never falls through
}

func TestSendMessage_TurnOrdering(t *testing.T) {
	fx := newFixture(t, nil)
	id := startSession(t, fx)

	_, err := fx.svc.SendMessage(context.Background(), conversation.SendMessageInput{SessionID: id, Text: "question A"})
	require.NoError(t, err)
	_, err = fx.svc.SendMessage(context.Background(), conversation.SendMessageInput{SessionID: id, Text: "question B"})
	require.NoError(t, err)

	_, msgs, err := fx.svc.GetSessionTimeline(context.Background(), id, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 5)

	require.Equal(t, domain.RoleAssistant, msgs[0].Author) // greeting
	require.Equal(t, "question A", msgs[1].Text)
	require.Equal(t, domain.RoleAssistant, msgs[2].Author)
	require.Equal(t, "question B", msgs[3].Text)
	require.Equal(t, domain.RoleAssistant, msgs[4].Author)
}

func TestSendMessage_RejectsWhileDispatching(t *testing.T) {
	fx := newFixture(t, nil)
	fx.llm.block = make(chan struct{})
	id := startSession(t, fx)

	done := make(chan error, 1)
	go func() {
		_, err := fx.svc.SendMessage(context.Background(), conversation.SendMessageInput{
			SessionID: id,
			Text:      "slow free-form question",
		})
		done <- err
	}()

	// wait for the turn to be in flight
	require.Eventually(t, func() bool {
		return fx.svc.State(id) == conversation.StateDispatching
	}, time.Second, time.Millisecond)

	_, err := fx.svc.SendMessage(context.Background(), conversation.SendMessageInput{
		SessionID: id,
		Text:      "impatient second question",
	})
	require.ErrorIs(t, err, conversation.ErrTurnInProgress)

	close(fx.llm.block)
	require.NoError(t, <-done)
	require.Equal(t, conversation.StateIdle, fx.svc.State(id))

	// the rejected submission left no trace in the log
	_, msgs, err := fx.svc.GetSessionTimeline(context.Background(), id, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3) // greeting, user, assistant
}

func TestSendMessage_CancelledTurnLeavesNoReply(t *testing.T) {
	fx := newFixture(t, nil)
	fx.llm.block = make(chan struct{})
	id := startSession(t, fx)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := fx.svc.SendMessage(ctx, conversation.SendMessageInput{
			SessionID: id,
			Text:      "doomed question",
		})
		done <- err
	}()

	require.Eventually(t, func() bool {
		return fx.svc.State(id) == conversation.StateDispatching
	}, time.Second, time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	// the user message was appended synchronously, but no reply followed
	_, msgs, err := fx.svc.GetSessionTimeline(context.Background(), id, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "doomed question", msgs[1].Text)
}

func TestSendMessage_UnknownSession(t *testing.T) {
	fx := newFixture(t, nil)

	_, err := fx.svc.SendMessage(context.Background(), conversation.SendMessageInput{
		SessionID: "nope",
		Text:      "hello",
	})
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}
