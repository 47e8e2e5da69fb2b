// Package openrouter is a thin client for the OpenRouter chat completions
// API, with retry/backoff, error classification, and a time-boxed cache of
// model pricing metadata.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/sessum/internal/logging"
)

const (
	// DefaultBaseURL is the public OpenRouter API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	// DefaultMaxRetries is the number of additional attempts after the first.
	DefaultMaxRetries = 3

	defaultTimeout = 60 * time.Second
	backoffCap     = 16   // seconds, before jitter
	backoffFloor   = 0.5  // seconds
	userAgent      = "github.com/theirongolddev/sessum/1.0"
)

var retryableStatus = map[int]bool{
	http.StatusRequestTimeout:  true, // 408
	http.StatusConflict:        true, // 409
	http.StatusTooEarly:        true, // 425
	http.StatusTooManyRequests: true, // 429
	500:                        true,
	502:                        true,
	503:                        true,
	504:                        true,
}

// Message is one chat turn in a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionOptions tunes a single completion call. ExtraPayload is merged
// into the request body last, so callers may override any field.
type CompletionOptions struct {
	Temperature     float64
	MaxTokens       int
	Reasoning       map[string]any
	ReasoningEffort string
	ExtraPayload    map[string]any
}

// CompletionResult is the normalized view of a chat completion response.
type CompletionResult struct {
	Content      string
	Usage        map[string]any
	Reasoning    map[string]any
	FinishReason string
	Raw          map[string]any
}

// Client talks to OpenRouter. All HTTP calls share one retry/backoff
// protocol; the model catalog is cached in memory for an hour and
// best-effort persisted to disk.
type Client struct {
	apiKey     string
	baseURL    string
	referer    string
	title      string
	maxRetries int
	http       *http.Client
	log        *logrus.Entry

	catalog *catalogCache

	// Test seams. Production values are the obvious ones.
	now    func() time.Time
	sleep  func(time.Duration)
	jitter func() float64 // uniform in [0.5, 1.5)
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		for len(url) > 0 && url[len(url)-1] == '/' {
			url = url[:len(url)-1]
		}
		c.baseURL = url
	}
}

// WithReferer sets the HTTP-Referer header OpenRouter uses for attribution.
func WithReferer(referer string) Option {
	return func(c *Client) { c.referer = referer }
}

// WithTitle sets the X-Title header.
func WithTitle(title string) Option {
	return func(c *Client) { c.title = title }
}

// WithMaxRetries sets how many additional attempts follow the first.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n < 0 {
			n = 0
		}
		c.maxRetries = n
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithCatalogPath enables disk persistence of the model catalog.
func WithCatalogPath(path string) Option {
	return func(c *Client) { c.catalog.path = path }
}

// New creates a Client. A missing API key is an authentication error.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, authError(0, "API key is required")
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		maxRetries: DefaultMaxRetries,
		http:       &http.Client{Timeout: defaultTimeout},
		log:        logging.New("openrouter"),
		catalog:    &catalogCache{},
		now:        time.Now,
		sleep:      time.Sleep,
		jitter:     func() float64 { return 0.5 + rand.Float64() },
	}
	for _, opt := range opts {
		opt(c)
	}

	c.catalog.loadFromDisk()
	return c, nil
}

// Complete posts a chat completion request for the given model and messages.
func (c *Client) Complete(ctx context.Context, model string, messages []Message, opts CompletionOptions) (*CompletionResult, error) {
	payload := map[string]any{
		"model":       model,
		"messages":    messages,
		"temperature": opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		payload["max_tokens"] = opts.MaxTokens
	}
	if opts.Reasoning != nil {
		payload["reasoning"] = opts.Reasoning
	} else if opts.ReasoningEffort != "" {
		payload["reasoning"] = map[string]any{"effort": opts.ReasoningEffort}
	}
	for k, v := range opts.ExtraPayload {
		payload[k] = v
	}

	data, err := c.requestWithRetries(ctx, http.MethodPost, "/chat/completions", payload)
	if err != nil {
		return nil, err
	}
	return parseCompletion(data)
}

// requestWithRetries performs one logical API call under the retry protocol:
// retryable statuses and transport errors back off and retry up to
// maxRetries additional attempts; 401/403 fail immediately; everything else
// is classified once retries are spent.
func (c *Client) requestWithRetries(ctx context.Context, method, path string, payload any) (map[string]any, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		resp, err := c.do(ctx, method, path, body)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			c.sleep(c.backoff(attempt, 0))
			continue
		}

		switch resp.StatusCode {
		case http.StatusUnauthorized:
			drain(resp)
			return nil, authError(resp.StatusCode, "API key rejected")
		case http.StatusForbidden:
			drain(resp)
			return nil, authError(resp.StatusCode, "access denied")
		}

		if retryableStatus[resp.StatusCode] && attempt < c.maxRetries {
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
			drain(resp)
			c.log.WithFields(logrus.Fields{"status": resp.StatusCode, "attempt": attempt}).Debug("retrying request")
			c.sleep(c.backoff(attempt, retryAfter))
			continue
		}

		if resp.StatusCode >= 400 {
			return nil, classifyFailure(resp)
		}
		return decodeObject(resp)
	}

	message := "request failed after retries"
	if isTimeout(lastErr) {
		message = "request timed out after retries"
	}
	return nil, &Error{Kind: KindTransient, Message: message}
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.referer != "" {
		req.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		req.Header.Set("X-Title", c.title)
	}

	return c.http.Do(req)
}

// backoff computes the wait before the next attempt:
// max(0.5, min(2^attempt, 16) * uniform(0.5, 1.5) + retryAfter) seconds.
func (c *Client) backoff(attempt int, retryAfter float64) time.Duration {
	base := math.Min(math.Pow(2, float64(attempt)), backoffCap)
	secs := base*c.jitter() + retryAfter
	if secs < backoffFloor {
		secs = backoffFloor
	}
	return time.Duration(secs * float64(time.Second))
}

// classifyFailure maps a final error response to the taxonomy, preserving the
// server's message text when its body parses as {"error": {"message": …}}.
func classifyFailure(resp *http.Response) error {
	status := resp.StatusCode
	message := serverMessage(resp)

	switch {
	case status == http.StatusTooManyRequests:
		if message == "" {
			message = "rate limit exceeded"
		}
		return &Error{Kind: KindRateLimit, Status: status, Message: message}
	case status >= 500:
		if message == "" {
			message = "server error"
		}
		return &Error{Kind: KindTransient, Status: status, Message: message}
	default:
		if message == "" {
			message = "request failed"
		}
		return &Error{Kind: KindAPI, Status: status, Message: message}
	}
}

func serverMessage(resp *http.Response) string {
	defer func() { _ = resp.Body.Close() }()
	var decoded map[string]any
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return ""
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		return buf.String()
	}
	if errObj, ok := decoded["error"].(map[string]any); ok {
		if msg, ok := errObj["message"].(string); ok {
			return msg
		}
	}
	return ""
}

// decodeObject enforces that a successful response body is a JSON object.
func decodeObject(resp *http.Response) (map[string]any, error) {
	defer func() { _ = resp.Body.Close() }()

	var decoded any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, badResponse("non-JSON response body")
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, badResponse("response body was not a JSON object")
	}
	return obj, nil
}

func parseCompletion(data map[string]any) (*CompletionResult, error) {
	choices, ok := data["choices"].([]any)
	if !ok || len(choices) == 0 {
		return nil, badResponse("chat response missing choices")
	}
	first, ok := choices[0].(map[string]any)
	if !ok {
		return nil, badResponse("chat response choice was not an object")
	}
	message, ok := first["message"].(map[string]any)
	if !ok {
		return nil, badResponse("chat response missing message")
	}
	content, ok := message["content"].(string)
	if !ok {
		return nil, badResponse("chat response missing text content")
	}

	usage, _ := data["usage"].(map[string]any)
	if usage == nil {
		usage = map[string]any{}
	}

	reasoning := firstObject(message["reasoning"], first["reasoning"], data["reasoning"])
	finishReason, _ := first["finish_reason"].(string)

	return &CompletionResult{
		Content:      content,
		Usage:        usage,
		Reasoning:    reasoning,
		FinishReason: finishReason,
		Raw:          data,
	}, nil
}

func firstObject(candidates ...any) map[string]any {
	for _, c := range candidates {
		if obj, ok := c.(map[string]any); ok {
			return obj
		}
	}
	return nil
}

func parseRetryAfter(header string) float64 {
	if header == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(header, 64)
	if err != nil || secs < 0 {
		return 0
	}
	return secs
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
