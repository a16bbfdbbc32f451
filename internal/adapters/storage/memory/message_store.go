package memory

import (
	"sync"

	"github.com/solarsentinel/sentinel-api/internal/domain"
)

// MessageStore keeps the per-session message log in memory. Logs live only
// as long as the process; nothing is ever persisted.
type MessageStore struct {
	mu       sync.RWMutex
	messages map[domain.SessionID][]*domain.ConversationMessage
}

func NewMessageStore() *MessageStore {
	return &MessageStore{
		messages: make(map[domain.SessionID][]*domain.ConversationMessage),
	}
}

func (s *MessageStore) AppendMessage(msg *domain.ConversationMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[msg.SessionID] = append(s.messages[msg.SessionID], msg)
	return nil
}

// GetMessagesBySession returns the log in append order. A positive limit
// keeps only the most recent messages.
func (s *MessageStore) GetMessagesBySession(sessionID domain.SessionID, limit int) ([]*domain.ConversationMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.messages[sessionID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]*domain.ConversationMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}
