package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/solarsentinel/sentinel-api/internal/app/conversation"
	"github.com/solarsentinel/sentinel-api/internal/app/refresh"
	"github.com/solarsentinel/sentinel-api/internal/domain"
)

type Server struct {
	svc       *conversation.Service
	scheduler *refresh.Scheduler
}

func NewServer(svc *conversation.Service, scheduler *refresh.Scheduler) http.Handler {
	s := &Server{svc: svc, scheduler: scheduler}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)

	// /sessions → create session (POST)
	mux.HandleFunc("/sessions", s.handleSessions)

	// /sessions/{id}          →  GET: session + message log
	// /sessions/{id}/messages → POST: run one turn
	mux.HandleFunc("/sessions/", s.handleSessionWithID)

	// dashboard snapshots + live watch
	mux.HandleFunc("/dashboard/weather", s.handleSnapshot(refresh.KeyWeather))
	mux.HandleFunc("/dashboard/satellites", s.handleSnapshot(refresh.KeySatellites))
	mux.HandleFunc("/dashboard/watch", s.handleWatch)

	return chainMiddlewares(mux, withCORS, withLogging, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createSessionRequest struct {
	Title string `json:"title,omitempty"`
}

type createSessionResponse struct {
	Session  sessionResponse  `json:"session"`
	Greeting *messageResponse `json:"greeting,omitempty"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type messageResponse struct {
	ID        string               `json:"id"`
	SessionID string               `json:"session_id"`
	Author    string               `json:"author"`
	Text      string               `json:"text"`
	Images    []domain.ImageRecord `json:"images,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type sendMessageResponse struct {
	UserMessage      messageResponse `json:"user_message"`
	AssistantMessage messageResponse `json:"assistant_message"`
}

type getSessionResponse struct {
	Session  sessionResponse   `json:"session"`
	State    string            `json:"state"`
	Messages []messageResponse `json:"messages"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// /sessions
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSession(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /sessions/{id} or /sessions/{id}/messages
func (s *Server) handleSessionWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if path == "" {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.handleGetSession(w, r, domain.SessionID(id))
		default:
			methodNotAllowed(w)
		}
		return
	}

	if len(parts) == 2 && parts[1] == "messages" {
		switch r.Method {
		case http.MethodPost:
			s.handleSendMessage(w, r, domain.SessionID(id))
		default:
			methodNotAllowed(w)
		}
		return
	}

	http.NotFound(w, r)
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
	}

	out, err := s.svc.StartSession(r.Context(), conversation.StartSessionInput{
		Title: req.Title,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	var greeting *messageResponse
	if out.Greeting != nil {
		m := toMessageResponse(out.Greeting)
		greeting = &m
	}

	writeJSON(w, http.StatusCreated, createSessionResponse{
		Session:  toSessionResponse(out.Session),
		Greeting: greeting,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	session, msgs, err := s.svc.GetSessionTimeline(r.Context(), id, 0)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, getSessionResponse{
		Session:  toSessionResponse(session),
		State:    string(s.svc.State(id)),
		Messages: toMessagesResponse(msgs),
	})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, sessionID domain.SessionID) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}

	out, err := s.svc.SendMessage(r.Context(), conversation.SendMessageInput{
		SessionID: sessionID,
		Text:      req.Text,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			http.NotFound(w, r)
		case errors.Is(err, conversation.ErrTurnInProgress):
			writeJSON(w, http.StatusConflict, map[string]string{
				"error": conversation.ErrTurnInProgress.Error(),
			})
		default:
			internalError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, sendMessageResponse{
		UserMessage:      toMessageResponse(out.UserMessage),
		AssistantMessage: toMessageResponse(out.AssistantMessage),
	})
}

// ─────────────────────────────────────────────
// Conversion helpers
// ─────────────────────────────────────────────

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:        string(s.ID),
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func toMessageResponse(m *domain.ConversationMessage) messageResponse {
	return messageResponse{
		ID:        string(m.ID),
		SessionID: string(m.SessionID),
		Author:    string(m.Author),
		Text:      m.Text,
		Images:    m.Images,
		CreatedAt: m.CreatedAt,
	}
}

func toMessagesResponse(msgs []*domain.ConversationMessage) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
