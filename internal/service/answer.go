package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloo-solutions/litbot/internal/domain"
	"github.com/cloo-solutions/litbot/internal/telemetry"
)

const (
	// AnswerTopK is how many chunks are retrieved per question.
	AnswerTopK = 10
	// AnswerMaxSources caps distinct articles used as context.
	AnswerMaxSources = 2
	// AnswerTemperature is passed to the answer model.
	AnswerTemperature = 0.3

	NoRelevantArticlesMessage = "I couldn't find any relevant articles in my database to answer that."
	AnswerFailedMessage       = "Sorry, I encountered an error generating the answer."
)

// ChatProvider sends a single-turn prompt to a chat model.
type ChatProvider interface {
	Chat(ctx context.Context, prompt string, temperature float64) (string, error)
}

// AnswerSource is one article used to ground an answer.
type AnswerSource struct {
	Title  string   `json:"title"`
	Link   string   `json:"link"`
	Chunks []string `json:"-"`
}

// AnswerService answers questions from indexed article chunks.
type AnswerService struct {
	store    VectorStore
	provider ChatProvider
}

func NewAnswerService(store VectorStore, provider ChatProvider) *AnswerService {
	return &AnswerService{store: store, provider: provider}
}

// Answer retrieves context for question and asks the chat model. On provider
// failure it returns the apology text together with a wrapped ErrAnswerFailed.
func (s *AnswerService) Answer(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", domain.ErrEmptyQuery
	}

	ctx, span := telemetry.StartSpan(ctx, "service.answer", telemetry.SpanAttributes{Operation: "answer"})
	defer span.End()

	matches, err := s.store.Query(ctx, question, AnswerTopK)
	if err != nil {
		err = domain.Wrap(domain.ErrAnswerFailed, fmt.Errorf("failed to query chunks: %w", err))
		span.SetError(err)
		return AnswerFailedMessage, err
	}
	span.SetCount("answer.matches", len(matches))
	if len(matches) == 0 {
		return NoRelevantArticlesMessage, nil
	}

	sources := GroupSources(matches, AnswerMaxSources)

	reply, err := s.provider.Chat(ctx, buildAnswerPrompt(question, sources), AnswerTemperature)
	if err != nil {
		log.Printf("answer: chat failed: %v", err)
		err = domain.Wrap(domain.ErrAnswerFailed, err)
		span.SetError(err)
		return AnswerFailedMessage, err
	}

	return strings.TrimSpace(reply) + "\n\n" + FormatSources(sources), nil
}

// GroupSources groups matches by link in first-seen order and keeps at most max links.
func GroupSources(matches []domain.ChunkMatch, max int) []AnswerSource {
	index := make(map[string]int)
	sources := make([]AnswerSource, 0, max)
	for _, m := range matches {
		link := m.Metadata.Link
		if i, ok := index[link]; ok {
			sources[i].Chunks = append(sources[i].Chunks, m.Text)
			continue
		}
		if len(sources) >= max {
			continue
		}
		index[link] = len(sources)
		sources = append(sources, AnswerSource{
			Title:  m.Metadata.Title,
			Link:   link,
			Chunks: []string{m.Text},
		})
	}
	return sources
}

// FormatSources renders the citation block appended to every answer.
func FormatSources(sources []AnswerSource) string {
	var sb strings.Builder
	sb.WriteString("📚 Sources:\n")
	for _, src := range sources {
		fmt.Fprintf(&sb, "- %s: %s\n", src.Title, src.Link)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func buildAnswerPrompt(question string, sources []AnswerSource) string {
	var ctxText strings.Builder
	for _, src := range sources {
		ctxText.WriteString("Article: ")
		ctxText.WriteString(src.Title)
		ctxText.WriteString("\n")
		ctxText.WriteString(strings.Join(src.Chunks, "\n"))
		ctxText.WriteString("\n\n")
	}

	return "You are a helpful legal-tech assistant. Answer the user's question based ONLY on the following context.\n" +
		"If the context doesn't contain the answer, say you don't know.\n\n" +
		"Context:\n" + ctxText.String() +
		"Question: " + question + "\n\nAnswer:"
}
