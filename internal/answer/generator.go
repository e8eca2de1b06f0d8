// Package answer wraps the OpenAI chat completion call used to answer
// free-form cooking questions.
package answer

import (
	"context"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// Apology is the fixed reply used whenever text generation fails
const Apology = "Lo siento, hubo un error al procesar tu pregunta."

const systemPrompt = "Eres Chef!, un asistente de cocina. Responde de forma breve y práctica a preguntas sobre cocina, ingredientes y técnicas culinarias."

const defaultTimeout = 30 * time.Second

// Generator produces answers for cooking questions
type Generator struct {
	client  openai.Client
	model   openai.ChatModel
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithModel overrides the chat model
func WithModel(model openai.ChatModel) Option {
	return func(g *Generator) {
		g.model = model
	}
}

// WithTimeout overrides the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(g *Generator) {
		g.timeout = timeout
	}
}

// WithBaseURL points the client at a custom endpoint (for testing)
func WithBaseURL(url string) Option {
	return func(g *Generator) {
		g.client = openai.NewClient(
			option.WithBaseURL(url),
			option.WithAPIKey("test"),
			option.WithMaxRetries(0),
		)
	}
}

// NewGenerator creates a generator backed by the OpenAI API
func NewGenerator(apiKey string, logger *zap.Logger, opts ...Option) *Generator {
	g := &Generator{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   openai.ChatModelGPT4oMini,
		timeout: defaultTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate answers the question, falling back to a fixed apology on any
// transport or service error. It never returns an error to the caller.
func (g *Generator) Generate(ctx context.Context, question string) string {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(question),
		},
	})
	if err != nil {
		g.logger.Error("Chat completion request failed", zap.Error(err))
		return Apology
	}

	if len(resp.Choices) == 0 {
		g.logger.Error("Chat completion returned no choices")
		return Apology
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		g.logger.Error("Chat completion returned empty content")
		return Apology
	}
	return text
}
