package domain

import (
	"context"
	"time"
)

// LLMClient defines how the core application talks to the generative backend.
// History is the full visible conversation, oldest first, ending with the new
// user turn. Attached images are not forwarded; the backend only sees text.
type LLMClient interface {
	GenerateReply(ctx context.Context, history []*ConversationMessage) (string, error)
}

// FeaturedImageProvider returns today's featured astronomy image.
type FeaturedImageProvider interface {
	FeaturedImage(ctx context.Context) (ImageRecord, error)
}

// ImageSearchProvider searches an imagery archive by topic. Order is the
// provider's own; entries without a resource locator are already dropped.
type ImageSearchProvider interface {
	SearchImages(ctx context.Context, topic string) ([]ImageRecord, error)
}

// WeatherProvider returns space-weather simulation events for a date range.
// An empty slice is a valid "no active alerts" result, not an error.
type WeatherProvider interface {
	Events(ctx context.Context, from, to time.Time) ([]WeatherEvent, error)
}

// SatelliteProvider returns the latest satellite element sets, source order.
type SatelliteProvider interface {
	LatestSatellites(ctx context.Context, limit int) ([]SatelliteRecord, error)
}

// SessionStore defines session bookkeeping. All implementations are
// process-local; nothing survives a restart.
type SessionStore interface {
	CreateSession(session *Session) error
	UpdateSession(session *Session) error
	GetSession(id SessionID) (*Session, error)
}

// MessageStore owns the ordered, append-only message log per session.
type MessageStore interface {
	AppendMessage(msg *ConversationMessage) error
	GetMessagesBySession(sessionID SessionID, limit int) ([]*ConversationMessage, error)
}
