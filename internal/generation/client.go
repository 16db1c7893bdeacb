// Package generation talks to an OpenAI-compatible chat completions API to
// converse, summarize requirements and generate project files.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rpggio/codegenesis/internal/domain/project"
	"github.com/rpggio/codegenesis/internal/metrics"
)

const (
	// DefaultBaseURL is the Gemini OpenAI-compatible endpoint.
	DefaultBaseURL   = "https://generativelanguage.googleapis.com/v1beta/openai"
	DefaultChatModel = "gemini-2.5-flash"
	DefaultCodeModel = "gemini-3-pro-preview"

	defaultChatPath    = "/chat/completions"
	defaultTimeout     = 60 * time.Second
	defaultCodeTimeout = 5 * time.Minute
)

// Config configures the Client.
type Config struct {
	BaseURL             string
	APIKey              string
	ChatCompletionsPath string
	ChatModel           string
	CodeModel           string
	Timeout             time.Duration
	CodeTimeout         time.Duration
	// Language is the natural language replies and documents are written in.
	Language string
}

// Client implements the lifecycle Generator.
type Client struct {
	baseURL     string
	apiKey      string
	chatPath    string
	chatModel   string
	codeModel   string
	timeout     time.Duration
	codeTimeout time.Duration
	language    string

	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

// New creates a Client. Empty config fields take their defaults.
func New(cfg Config, logger *slog.Logger, m *metrics.Metrics) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	chatPath := strings.TrimSpace(cfg.ChatCompletionsPath)
	if chatPath == "" {
		chatPath = defaultChatPath
	}
	chatModel := strings.TrimSpace(cfg.ChatModel)
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	codeModel := strings.TrimSpace(cfg.CodeModel)
	if codeModel == "" {
		codeModel = DefaultCodeModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	codeTimeout := cfg.CodeTimeout
	if codeTimeout <= 0 {
		codeTimeout = defaultCodeTimeout
	}
	language := strings.TrimSpace(cfg.Language)
	if language == "" {
		language = defaultLanguage
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL:     baseURL,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		chatPath:    chatPath,
		chatModel:   chatModel,
		codeModel:   codeModel,
		timeout:     timeout,
		codeTimeout: codeTimeout,
		language:    language,
		httpClient:  &http.Client{Transport: tr},
		logger:      logger,
		metrics:     m,
		tracer:      otel.Tracer("github.com/rpggio/codegenesis/internal/generation"),
	}
}

// NewWithHTTPClient is intended for tests.
func NewWithHTTPClient(cfg Config, httpClient *http.Client, logger *slog.Logger, m *metrics.Metrics) *Client {
	c := New(cfg, logger, m)
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content,omitempty"`
		} `json:"message,omitempty"`
		Text string `json:"text,omitempty"`
	} `json:"choices"`
}

// Converse produces the next assistant turn for the conversation. The
// prompt depends on the phase.
func (c *Client) Converse(ctx context.Context, messages []project.Message, phase project.Phase, requirementsDoc string) (reply string, err error) {
	ctx, finish := c.begin(ctx, "converse", attribute.String("phase", string(phase)))
	defer func() { finish(err) }()

	history := historyMessages(messages)
	if len(history) == 0 {
		return "", fmt.Errorf("converse: no conversation turns")
	}
	chat := append([]chatMessage{{Role: "system", Content: systemPromptFor(phase, requirementsDoc, c.language)}}, history...)

	text, err := c.complete(ctx, c.timeout, chatCompletionRequest{Model: c.chatModel, Messages: chat})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// SummarizeRequirements distills the conversation into a Markdown
// requirements document. An empty result means "no change".
func (c *Client) SummarizeRequirements(ctx context.Context, messages []project.Message) (doc string, err error) {
	ctx, finish := c.begin(ctx, "summarize")
	defer func() { finish(err) }()

	conversation := transcript(messages)
	if conversation == "" {
		return "", nil
	}
	req := chatCompletionRequest{
		Model: c.chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: summarizePrompt(c.language)},
			{Role: "user", Content: "Conversation:\n" + conversation},
		},
	}
	text, err := c.complete(ctx, c.timeout, req)
	if errors.Is(err, ErrEmptyCompletion) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return stripFence(text), nil
}

// GenerateProject generates a complete file set from the requirements
// document. It returns a non-empty mapping or an error.
func (c *Client) GenerateProject(ctx context.Context, requirementsDoc string) (files map[string]string, err error) {
	ctx, finish := c.begin(ctx, "generate_project")
	defer func() { finish(err) }()

	req := chatCompletionRequest{
		Model: c.codeModel,
		Messages: []chatMessage{
			{Role: "system", Content: codePrompt},
			{Role: "user", Content: "REQUIREMENTS:\n" + requirementsDoc},
		},
		ResponseFormat: map[string]any{"type": "json_object"},
	}
	text, err := c.complete(ctx, c.codeTimeout, req)
	if err != nil {
		return nil, err
	}
	files, err = ParseFileSet(text)
	if err != nil {
		return nil, err
	}
	c.metrics.FilesGenerated(len(files))
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("files", len(files)))
	return files, nil
}

// begin starts a span and returns a completion func that records the
// outcome on the span, the metrics and the log.
func (c *Client) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	started := time.Now()
	ctx, span := c.tracer.Start(ctx, "generation."+op, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		c.metrics.GenerationRequest(op, started, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.logger.Debug("generation request failed", "operation", op, "duration", time.Since(started), "error", err)
		} else {
			c.logger.Debug("generation request completed", "operation", op, "duration", time.Since(started))
		}
		span.End()
	}
}

func (c *Client) complete(ctx context.Context, timeout time.Duration, req chatCompletionRequest) (string, error) {
	var resp chatCompletionResponse
	if err := c.doJSON(ctx, timeout, http.MethodPost, c.chatPath, req, &resp); err != nil {
		return "", err
	}
	text := extractChatText(resp)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func extractChatText(resp chatCompletionResponse) string {
	for _, choice := range resp.Choices {
		if strings.TrimSpace(choice.Message.Content) != "" {
			return choice.Message.Content
		}
		if strings.TrimSpace(choice.Text) != "" {
			return choice.Text
		}
	}
	return ""
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func (c *Client) doJSON(ctx context.Context, timeout time.Duration, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding upstream response: %w", err)
	}
	return nil
}
