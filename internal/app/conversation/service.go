// Package conversation owns the message log and the turn state machine:
// Idle, accept a submission, Dispatching while exactly one turn is in flight,
// back to Idle once the assistant reply is appended.
package conversation

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/solarsentinel/sentinel-api/internal/app/dispatch"
	"github.com/solarsentinel/sentinel-api/internal/domain"
	"github.com/solarsentinel/sentinel-api/internal/observability"
)

// ErrTurnInProgress rejects a submission while the session is Dispatching.
// Submissions are rejected, never queued.
var ErrTurnInProgress = errors.New("a turn is already in progress for this session")

// TurnState is the single liveness value callers consult instead of ad-hoc
// loading flags.
type TurnState string

const (
	StateIdle        TurnState = "idle"
	StateDispatching TurnState = "dispatching"
)

const (
	greetingText = "Hello! I'm your SolarSentinel AI assistant. You can ask me about space weather, or try these commands:\n• 'show me today's space photo'\n• 'show me solar flares'\n• 'tell me about auroras'"

	// apologyText is the one user-visible failure message. Raw errors go to
	// the log, never to the user.
	apologyText = "I apologize, but I encountered an error while fetching the data. Please try again later."
)

// historyLimit bounds how much of the log is forwarded to the generative
// backend on the unrecognized path.
const historyLimit = 20

type Service struct {
	llm          domain.LLMClient
	sessionStore domain.SessionStore
	messageStore domain.MessageStore
	dispatcher   *dispatch.Dispatcher
	now          func() time.Time

	mu       sync.Mutex
	inFlight map[domain.SessionID]bool
}

func NewService(
	llm domain.LLMClient,
	sessionStore domain.SessionStore,
	messageStore domain.MessageStore,
	dispatcher *dispatch.Dispatcher,
) *Service {
	return &Service{
		llm:          llm,
		sessionStore: sessionStore,
		messageStore: messageStore,
		dispatcher:   dispatcher,
		now:          time.Now,
		inFlight:     make(map[domain.SessionID]bool),
	}
}

type StartSessionInput struct {
	Title string
}

type StartSessionOutput struct {
	Session  *domain.Session
	Greeting *domain.ConversationMessage
}

func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*StartSessionOutput, error) {
	now := s.now()

	log := observability.LoggerFromContext(ctx)
	log.Info("starting new session", "title", in.Title)

	session := &domain.Session{
		ID:        domain.SessionID(uuid.NewString()),
		CreatedAt: now,
		UpdatedAt: now,
		Title:     in.Title,
	}

	if err := s.sessionStore.CreateSession(session); err != nil {
		log.Error("failed to create session", "error", err)
		return nil, err
	}

	greeting := &domain.ConversationMessage{
		ID:        domain.MessageID(uuid.NewString()),
		SessionID: session.ID,
		Author:    domain.RoleAssistant,
		Text:      greetingText,
		CreatedAt: now,
	}

	if err := s.messageStore.AppendMessage(greeting); err != nil {
		log.Error("failed to append greeting", "error", err)
		return nil, err
	}

	log.Info("session started", "session_id", session.ID)

	return &StartSessionOutput{
		Session:  session,
		Greeting: greeting,
	}, nil
}

type SendMessageInput struct {
	SessionID domain.SessionID
	Text      string
}

type SendMessageOutput struct {
	UserMessage      *domain.ConversationMessage
	AssistantMessage *domain.ConversationMessage
}

// State reports the turn liveness for a session.
func (s *Service) State(sessionID domain.SessionID) TurnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[sessionID] {
		return StateDispatching
	}
	return StateIdle
}

func (s *Service) beginTurn(sessionID domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[sessionID] {
		return ErrTurnInProgress
	}
	s.inFlight[sessionID] = true
	return nil
}

func (s *Service) endTurn(sessionID domain.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, sessionID)
}

// SendMessage runs one full turn. The user message is appended synchronously
// before any network call; exactly one assistant message follows, success or
// apology. The gate guarantees turn N's reply lands before turn N+1 begins.
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	session, err := s.sessionStore.GetSession(in.SessionID)
	if err != nil {
		return nil, err
	}

	if err := s.beginTurn(session.ID); err != nil {
		return nil, err
	}
	defer s.endTurn(session.ID)

	log := observability.LoggerFromContext(ctx).With("session_id", session.ID)
	log.Info("turn started")

	userMsg := &domain.ConversationMessage{
		ID:        domain.MessageID(uuid.NewString()),
		SessionID: session.ID,
		Author:    domain.RoleUser,
		Text:      in.Text,
		CreatedAt: s.now(),
	}

	if err := s.messageStore.AppendMessage(userMsg); err != nil {
		log.Error("failed to append user message", "error", err)
		return nil, err
	}

	replyText, replyImages := s.resolveReply(ctx, log, session.ID, in.Text)

	// The hosting view may be gone by now; a cancelled turn must not write
	// a reply into the log.
	if ctx.Err() != nil {
		log.Info("turn cancelled, discarding reply")
		return nil, ctx.Err()
	}

	assistantMsg := &domain.ConversationMessage{
		ID:        domain.MessageID(uuid.NewString()),
		SessionID: session.ID,
		Author:    domain.RoleAssistant,
		Text:      replyText,
		Images:    replyImages,
		CreatedAt: s.now(),
	}

	if err := s.messageStore.AppendMessage(assistantMsg); err != nil {
		log.Error("failed to append assistant message", "error", err)
		return nil, err
	}

	session.UpdatedAt = s.now()
	if err := s.sessionStore.UpdateSession(session); err != nil {
		log.Error("failed to update session", "error", err)
		return nil, err
	}

	log.Info("turn completed")

	return &SendMessageOutput{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
	}, nil
}

// resolveReply classifies the utterance and produces the assistant reply. All
// failure paths collapse to the fixed apology; the raw error is only logged.
func (s *Service) resolveReply(
	ctx context.Context,
	log *slog.Logger,
	sessionID domain.SessionID,
	text string,
) (string, []domain.ImageRecord) {
	outcome := s.dispatcher.Classify(ctx, text)

	switch outcome.Kind {
	case dispatch.KindHandled:
		log.Info("command handled", "images", len(outcome.Images))
		return outcome.Reply, outcome.Images

	case dispatch.KindFailed:
		log.Error("command failed", "error", outcome.Err)
		return apologyText, nil

	default: // dispatch.KindUnrecognized
		history, err := s.messageStore.GetMessagesBySession(sessionID, historyLimit)
		if err != nil {
			log.Error("failed to load history", "error", err)
			return apologyText, nil
		}

		reply, err := s.llm.GenerateReply(ctx, history)
		if err != nil {
			log.Error("generative backend failed", "error", err)
			return apologyText, nil
		}
		return reply, nil
	}
}

// GetSessionTimeline returns a session and its ordered message log.
func (s *Service) GetSessionTimeline(
	ctx context.Context,
	sessionID domain.SessionID,
	limit int,
) (*domain.Session, []*domain.ConversationMessage, error) {
	log := observability.LoggerFromContext(ctx).With("session_id", sessionID)

	session, err := s.sessionStore.GetSession(sessionID)
	if err != nil {
		log.Error("failed to get session", "error", err)
		return nil, nil, err
	}

	msgs, err := s.messageStore.GetMessagesBySession(sessionID, limit)
	if err != nil {
		log.Error("failed to get messages", "error", err)
		return nil, nil, err
	}

	return session, msgs, nil
}
