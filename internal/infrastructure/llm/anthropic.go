// Package llm 提供 LLM 服务商客户端
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bedtime-story-api/internal/config"
)

// ProviderAnthropic 服务商标识
const ProviderAnthropic = "anthropic"

var tracer = otel.Tracer("llm.anthropic")

// ErrMissingAPIKey 未配置 API Key
var ErrMissingAPIKey = errors.New("ANTHROPIC_API_KEY not set")

// Message 对话消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MessageRequest Messages API 请求体
type MessageRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

// ContentBlock 响应内容块
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Usage token 用量
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// MessageResponse Messages API 响应体
type MessageResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Content    []ContentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      Usage          `json:"usage"`
}

// FirstText 返回第一个 text 类型内容块
func (r *MessageResponse) FirstText() (string, bool) {
	for _, block := range r.Content {
		if block.Type == "text" {
			return block.Text, true
		}
	}
	return "", false
}

// RawResponse 上游原始响应
type RawResponse struct {
	StatusCode int
	Body       []byte
}

// OK 状态码是否为 2xx
func (r *RawResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// AnthropicClient Anthropic HTTP 客户端
type AnthropicClient struct {
	cfg        *config.AnthropicConfig
	httpClient *http.Client
}

// NewAnthropicClient 创建 Anthropic 客户端
func NewAnthropicClient(cfg *config.AnthropicConfig) *AnthropicClient {
	return &AnthropicClient{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

// WithHTTPClient 替换底层 HTTP 客户端
func (c *AnthropicClient) WithHTTPClient(hc *http.Client) *AnthropicClient {
	c.httpClient = hc
	return c
}

// Config 返回客户端配置
func (c *AnthropicClient) Config() *config.AnthropicConfig {
	return c.cfg
}

// HasAPIKey 是否配置了 API Key
func (c *AnthropicClient) HasAPIKey() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

// CreateMessage 调用 Messages API，返回原始响应
// 非 2xx 状态不视为错误，由调用方按原始响应体处理
func (c *AnthropicClient) CreateMessage(ctx context.Context, req *MessageRequest) (*RawResponse, error) {
	ctx, span := tracer.Start(ctx, "anthropic.CreateMessage",
		trace.WithAttributes(
			attribute.String("llm.model", req.Model),
			attribute.Int("llm.max_tokens", req.MaxTokens),
		))
	defer span.End()

	if !c.HasAPIKey() {
		return nil, ErrMissingAPIKey
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message request: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPost, "/v1/messages", payload)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", raw.StatusCode))
	return raw, nil
}

// ListModels 调用模型列表接口，返回原始响应
func (c *AnthropicClient) ListModels(ctx context.Context) (*RawResponse, error) {
	ctx, span := tracer.Start(ctx, "anthropic.ListModels")
	defer span.End()

	if !c.HasAPIKey() {
		return nil, ErrMissingAPIKey
	}

	raw, err := c.do(ctx, http.MethodGet, "/v1/models", nil)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.status_code", raw.StatusCode))
	return raw, nil
}

func (c *AnthropicClient) do(ctx context.Context, method, path string, payload []byte) (*RawResponse, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.cfg.APIKey)
	httpReq.Header.Set("anthropic-version", c.cfg.Version)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anthropic request failed after %s: %w", time.Since(start).Round(time.Millisecond), err)
	}
	defer resp.Body.Close()

	// 先完整读取文本，错误响应可能不是 JSON
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read anthropic response: %w", err)
	}
	return &RawResponse{StatusCode: resp.StatusCode, Body: data}, nil
}

// Snippet 截取前 n 个字符
func Snippet(body []byte, n int) string {
	runes := []rune(string(body))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n])
}
