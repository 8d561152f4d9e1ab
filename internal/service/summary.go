package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloo-solutions/litbot/internal/domain"
)

const (
	// MaxSummaryRunes bounds the summary body before escaping.
	MaxSummaryRunes = 800

	// AITag marks provider-written summaries.
	AITag = "🤖 <i>AI-generated</i>"

	summarySystemPrompt = "You are a legal tech analyst. Summarize the article in 1-2 concise sentences, " +
		"focusing on its legal and technical implications. Reply with the summary only."
)

// Completer produces a chat completion for one system and user turn.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Summary is the rendered summary of one item.
type Summary struct {
	Text         string
	UsedFallback bool
}

// SummaryService writes short summaries and never fails: provider errors fall
// back to the cleaned feed excerpt.
type SummaryService struct {
	provider Completer
}

// NewSummaryService creates a SummaryService. A nil provider always falls back.
func NewSummaryService(provider Completer) *SummaryService {
	return &SummaryService{provider: provider}
}

// Summarize returns HTML-safe summary text for item.
func (s *SummaryService) Summarize(ctx context.Context, item *domain.Item) Summary {
	raw := StripHTML(item.Summary)

	if s.provider != nil {
		text, err := s.provider.Complete(ctx, summarySystemPrompt, buildSummaryPrompt(item.Title, raw))
		if err == nil {
			text = strings.TrimSpace(text)
			if text != "" {
				return Summary{
					Text: EscapeHTML(TruncateRunes(text, MaxSummaryRunes)) + "\n\n" + AITag,
				}
			}
			err = fmt.Errorf("empty summary")
		}
		log.Printf("summary: provider failed for %s, using excerpt: %v", item.Link, domain.Wrap(domain.ErrProviderFailure, err))
	}

	return Summary{
		Text:         EscapeHTML(TruncateRunes(raw, MaxSummaryRunes)),
		UsedFallback: true,
	}
}

func buildSummaryPrompt(title, body string) string {
	var sb strings.Builder
	sb.WriteString("Title: ")
	sb.WriteString(title)
	sb.WriteString("\n\nContent: ")
	sb.WriteString(body)
	return sb.String()
}
