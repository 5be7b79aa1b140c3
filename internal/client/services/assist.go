package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/avolkovs/surveydesk/internal/client/gateway"
)

const defaultSuggestionCount = 5

// AssistService wraps the backend's AI passthrough for survey authoring:
// free-form prompts and question drafting for a given topic.
type AssistService interface {
	Ask(ctx context.Context, prompt string) (string, error)
	SuggestQuestions(ctx context.Context, topic string, count int) ([]string, error)
}

type assistService struct {
	ai     gateway.Assist
	tokens TokenSource
}

func NewAssistService(ai gateway.Assist, tokens TokenSource) AssistService {
	return &assistService{ai: ai, tokens: tokens}
}

func (s *assistService) token() string {
	t, _ := s.tokens.GetToken()
	return t
}

func (s *assistService) Ask(ctx context.Context, prompt string) (string, error) {
	out, err := s.ai.Process(ctx, s.token(), prompt, "", nil)
	if err != nil {
		return "", fmt.Errorf("assist: %w", err)
	}
	return out, nil
}

func (s *assistService) SuggestQuestions(ctx context.Context, topic string, count int) ([]string, error) {
	if count <= 0 {
		count = defaultSuggestionCount
	}
	prompt := fmt.Sprintf(
		"Write %d survey questions about %s. Return one question per line with no numbering.",
		count, topic)

	out, err := s.ai.Process(ctx, s.token(), prompt, "", nil)
	if err != nil {
		return nil, fmt.Errorf("suggest questions: %w", err)
	}

	var questions []string
	for _, line := range strings.Split(out, "\n") {
		if q := trimListMarker(line); q != "" {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

// trimListMarker strips the bullet or numbering the model may prepend despite
// being asked not to.
func trimListMarker(s string) string {
	s = strings.TrimSpace(s)
	for len(s) > 0 && (s[0] == '-' || s[0] == '*') {
		s = s[1:]
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
