package llm

import (
	"context"
	"fmt"

	"github.com/solarsentinel/sentinel-api/internal/domain"
)

// MockLLM is a canned generative backend for local development and tests.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) GenerateReply(_ context.Context, history []*domain.ConversationMessage) (string, error) {
	if len(history) == 0 {
		return "", &domain.GenerativeBackendError{Cause: fmt.Errorf("empty history")}
	}
	last := history[len(history)-1]
	return fmt.Sprintf("You asked %q. Space weather is quiet today, as far as this mock can tell.", last.Text), nil
}
