package story

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bedtime-story-api/internal/config"
	"bedtime-story-api/internal/infrastructure/llm"
	apperrors "bedtime-story-api/pkg/errors"
	"bedtime-story-api/pkg/metrics"
)

var tracer = otel.Tracer("application.story")

// errorSnippetLen 上游错误响应体保留的最大字符数
const errorSnippetLen = 500

// Generation 一次生成的结果
type Generation struct {
	Text             string
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Duration         time.Duration
}

// Generator 故事文本生成器
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Generation, error)
}

// AnthropicGenerator 基于 Anthropic Messages API 的生成器
type AnthropicGenerator struct {
	client *llm.AnthropicClient
	cfg    *config.AnthropicConfig
}

// NewAnthropicGenerator 创建生成器
func NewAnthropicGenerator(client *llm.AnthropicClient) *AnthropicGenerator {
	return &AnthropicGenerator{client: client, cfg: client.Config()}
}

// Generate 单次调用上游生成故事文本，不重试
func (g *AnthropicGenerator) Generate(ctx context.Context, prompt string) (*Generation, error) {
	model := strings.TrimSpace(g.cfg.Model)
	if model == "" {
		model = config.DefaultAnthropicModel
	}

	ctx, span := tracer.Start(ctx, "story.AnthropicGenerator.Generate",
		trace.WithAttributes(
			attribute.String("llm.provider", llm.ProviderAnthropic),
			attribute.String("llm.model", model),
		))
	defer span.End()

	if !g.client.HasAPIKey() {
		return nil, apperrors.New(apperrors.CodeConfiguration, llm.ErrMissingAPIKey.Error())
	}

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := g.client.CreateMessage(ctx, &llm.MessageRequest{
		Model:       model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
	})
	elapsed := time.Since(start)
	metrics.LLMCallDuration.WithLabelValues(llm.ProviderAnthropic, model).Observe(elapsed.Seconds())

	gen, err := g.interpret(raw, err)
	if err != nil {
		span.RecordError(err)
		metrics.LLMCallTotal.WithLabelValues(llm.ProviderAnthropic, model, "error").Inc()
		return nil, err
	}
	metrics.LLMCallTotal.WithLabelValues(llm.ProviderAnthropic, model, "success").Inc()
	metrics.LLMTokensUsed.WithLabelValues(llm.ProviderAnthropic, model, "prompt").Add(float64(gen.PromptTokens))
	metrics.LLMTokensUsed.WithLabelValues(llm.ProviderAnthropic, model, "completion").Add(float64(gen.CompletionTokens))

	gen.Provider = llm.ProviderAnthropic
	if gen.Model == "" {
		gen.Model = model
	}
	gen.Duration = elapsed
	span.SetAttributes(
		attribute.Int("llm.tokens.prompt", gen.PromptTokens),
		attribute.Int("llm.tokens.completion", gen.CompletionTokens),
	)
	return gen, nil
}

func (g *AnthropicGenerator) interpret(raw *llm.RawResponse, callErr error) (*Generation, error) {
	if callErr != nil {
		if errors.Is(callErr, llm.ErrMissingAPIKey) {
			return nil, apperrors.New(apperrors.CodeConfiguration, callErr.Error())
		}
		return nil, apperrors.New(apperrors.CodeGenerationFailed, callErr.Error()).WithError(callErr)
	}

	if !raw.OK() {
		return nil, apperrors.Newf(apperrors.CodeGenerationFailed,
			"Claude API failed: %d | %s", raw.StatusCode, llm.Snippet(raw.Body, errorSnippetLen))
	}

	var resp llm.MessageResponse
	if err := json.Unmarshal(raw.Body, &resp); err != nil {
		return nil, apperrors.New(apperrors.CodeGenerationFailed,
			fmt.Sprintf("Claude returned invalid JSON: %v", err)).WithError(err)
	}

	text, _ := resp.FirstText()
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.New(apperrors.CodeGenerationFailed, "Claude returned empty text")
	}

	return &Generation{
		Text:             text,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
	}, nil
}
