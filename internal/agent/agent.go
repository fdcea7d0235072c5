// ABOUTME: Question-answering agent grounded in retrieved document chunks
// ABOUTME: Builds context from retrieval results and asks the chat model
package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookrag/bookrag/internal/models"
	"github.com/bookrag/bookrag/internal/retrieval"
)

const systemInstruction = "You are a helpful assistant that answers questions based on provided " +
	"document context. Only use information from the provided context to answer questions. " +
	"Do not make up information. If no context is provided, answer to the best of your " +
	"ability but indicate that you don't have specific document context."

// Chatter sends a system+user prompt pair to a chat model.
type Chatter interface {
	Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Source identifies a chunk that contributed context to an answer.
type Source struct {
	ID    string  `json:"id"`
	URL   string  `json:"url"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// Response is the agent's answer plus provenance.
type Response struct {
	Answer    string    `json:"answer"`
	Sources   []Source  `json:"sources"`
	QueryID   string    `json:"query_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Agent answers questions over the ingested documentation.
type Agent struct {
	retrieve retrieval.Func
	chatter  Chatter
	topK     int
}

// New returns an agent using retrieve for context and chatter for answers.
func New(retrieve retrieval.Func, chatter Chatter, topK int) *Agent {
	return &Agent{retrieve: retrieve, chatter: chatter, topK: topK}
}

// Ask retrieves context for the question and asks the chat model. Retrieval
// failures degrade to an answer from general knowledge rather than an error;
// chat failures propagate.
func (a *Agent) Ask(ctx context.Context, question string) (*Response, error) {
	chunks, err := a.retrieve(ctx, question, a.topK)
	if err != nil {
		log.Printf("retrieval for %q failed, answering without context: %v", question, err)
		chunks = nil
	}

	answer, err := a.chatter.Chat(ctx, buildSystemPrompt(chunks), question)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	sources := make([]Source, 0, len(chunks))
	for _, c := range chunks {
		sources = append(sources, Source{
			ID:    c.ID,
			URL:   c.URL,
			Title: c.Title,
			Score: c.Score,
		})
	}

	return &Response{
		Answer:    answer,
		Sources:   sources,
		QueryID:   uuid.New().String(),
		Timestamp: time.Now().UTC(),
	}, nil
}

// buildSystemPrompt prefixes the instruction with the retrieved chunks, or
// with an explicit no-context note when retrieval came back empty.
func buildSystemPrompt(chunks []models.RetrievedChunk) string {
	var sb strings.Builder
	if len(chunks) > 0 {
		sb.WriteString("Here are some relevant document chunks to help answer the question:\n\n")
		for _, c := range chunks {
			sb.WriteString("- ")
			sb.WriteString(c.Content)
			sb.WriteString("\n\n")
		}
	} else {
		sb.WriteString("No relevant documents were found to answer this question. " +
			"Please answer based on general knowledge if possible.\n\n")
	}
	sb.WriteString(systemInstruction)
	return sb.String()
}
