package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"visualnovel/internal/debug"
	"visualnovel/internal/novel"
	"visualnovel/internal/observability"
)

// Service wraps the completion API. The primary call replays the full story
// transcript every turn (there is no server-side session); one-shot calls
// serve the introduction and art-decision prompts. Every call carries an
// explicit timeout so a hung request cannot hang the game forever.
type Service struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	debug   *debug.Logger
	tracer  trace.Tracer
}

func NewService(apiKey, model string, timeout time.Duration, dbg *debug.Logger) *Service {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Service{
		client:  &client,
		model:   model,
		timeout: timeout,
		debug:   dbg,
		tracer:  otel.Tracer("llm-service"),
	}
}

// Complete sends the full role-tagged transcript and returns the raw
// completion text. It satisfies the turn engine's Completer contract.
func (s *Service) Complete(ctx context.Context, messages []novel.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "llm.complete_turn",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(observability.GenAIAttributes("openai", s.model)...),
	)
	defer span.End()
	span.SetAttributes(attribute.Int("novel.transcript_len", len(messages)))

	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case novel.RoleSystem:
			params = append(params, openai.SystemMessage(m.Content))
		case novel.RoleAssistant:
			params = append(params, openai.AssistantMessage(m.Content))
		default:
			params = append(params, openai.UserMessage(m.Content))
		}
	}

	s.debug.Printf("turn completion: %d messages, model %s", len(messages), s.model)
	start := time.Now()

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(s.model),
		Messages: params,
	})
	if err != nil {
		span.RecordError(err)
		s.debug.Err(err, "turn completion failed")
		return "", fmt.Errorf("turn completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no completion choices returned")
		span.RecordError(err)
		return "", err
	}

	content := resp.Choices[0].Message.Content
	span.SetAttributes(
		attribute.Int64("gen_ai.usage.input_tokens", resp.Usage.PromptTokens),
		attribute.Int64("gen_ai.usage.output_tokens", resp.Usage.CompletionTokens),
		attribute.Int64("response_time_ms", time.Since(start).Milliseconds()),
	)
	s.debug.Printf("turn completion: %d chars in %v", len(content), time.Since(start))
	return content, nil
}

// CompleteText runs a single-prompt completion with no transcript.
func (s *Service) CompleteText(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "llm.complete_text",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(observability.GenAIAttributes("openai", s.model)...),
	)
	defer span.End()

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
	})
	if err != nil {
		span.RecordError(err)
		s.debug.Err(err, "text completion failed")
		return "", fmt.Errorf("text completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no completion choices returned")
		span.RecordError(err)
		return "", err
	}
	return resp.Choices[0].Message.Content, nil
}
