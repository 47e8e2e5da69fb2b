package summary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/sessum/internal/logging"
	"github.com/theirongolddev/sessum/internal/openrouter"
	"github.com/theirongolddev/sessum/internal/session"
)

// ErrNoClient is returned when generation is requested but the service was
// built without a remote client (e.g. no API key configured).
var ErrNoClient = errors.New("summary: an OpenRouter client is required to generate summaries")

// Completer is the remote-completion surface the service depends on.
// *openrouter.Client satisfies it; tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, model string, messages []openrouter.Message, opts openrouter.CompletionOptions) (*openrouter.CompletionResult, error)
	EstimateCost(ctx context.Context, model string, usage map[string]any) (map[string]float64, error)
}

// Service is the facade over path resolution, message extraction, prompt
// loading, the remote client, and on-disk persistence.
type Service struct {
	resolver *PathResolver
	prompts  *PromptLoader
	client   Completer
	log      *logrus.Entry
}

// NewService builds a Service. client may be nil for cache-only use;
// prompts may be nil to use the builtin templates only.
func NewService(summaryRoot, sessionsRoot string, client Completer, prompts *PromptLoader) *Service {
	if prompts == nil {
		prompts = NewPromptLoader()
	}
	return &Service{
		resolver: NewPathResolver(summaryRoot, sessionsRoot),
		prompts:  prompts,
		client:   client,
		log:      logging.New("summary"),
	}
}

// Resolver exposes the service's path resolver for callers that list cached
// variants or display cache locations.
func (s *Service) Resolver() *PathResolver {
	return s.resolver
}

// GenerateOptions tunes a Generate call. The zero value means: use the
// cache, temperature 0.2, no token cap.
type GenerateOptions struct {
	NoCache      bool
	Temperature  float64 // 0 means the default of 0.2
	MaxTokens    int
	ExtraPayload map[string]any
	Messages     []openrouter.Message // overrides the default prompt+transcript pair
}

// Generate returns a summary for the request, serving from the cache when
// possible. A cache hit never touches the remote client. A miss (or explicit
// refresh) loads the prompt, (re)writes the extracted-message log, calls the
// model, and persists the result.
func (s *Service) Generate(ctx context.Context, req Request, opts GenerateOptions) (*Record, error) {
	sessionPath := expandHome(req.SessionPath)
	cachePath := s.resolver.CachePath(sessionPath, req.PromptVariant)
	messagesPath := s.resolver.MessagesPath(sessionPath)

	if !opts.NoCache && !req.Refresh {
		if lookup := tryLoad(cachePath); lookup.Found {
			rec := lookup.Record
			count, counted, err := ensureMessagesLog(sessionPath, messagesPath, false)
			if err != nil {
				return nil, err
			}
			backfill(rec.Metadata, messagesPath, count, counted)
			rec.Cached = true
			s.logEvent("cache-hit", req, logrus.Fields{"cache_path": cachePath})
			return rec, nil
		}
	}

	if s.client == nil {
		return nil, ErrNoClient
	}

	prompt, err := s.prompts.Load(req.PromptVariant)
	if err != nil {
		return nil, err
	}

	count, counted, err := ensureMessagesLog(sessionPath, messagesPath, req.Refresh)
	if err != nil {
		return nil, err
	}

	messages := opts.Messages
	if messages == nil {
		messages, err = defaultMessages(prompt.Content, messagesPath)
		if err != nil {
			return nil, err
		}
	}

	temperature := opts.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	result, err := s.client.Complete(ctx, req.Model, messages, openrouter.CompletionOptions{
		Temperature:     temperature,
		MaxTokens:       opts.MaxTokens,
		ReasoningEffort: req.ReasoningEffort,
		ExtraPayload:    opts.ExtraPayload,
	})
	if err != nil {
		return nil, err
	}

	metadata := s.buildMetadata(ctx, req, prompt.Path, sessionPath, messagesPath, count, counted, result)
	rec, err := WriteSummary(cachePath, result.Content, metadata)
	if err != nil {
		return nil, err
	}
	rec.Cached = false
	s.logEvent("cache-miss", req, logrus.Fields{
		"cache_path": cachePath,
		"cost":       metadata["cost_estimate_usd"],
	})
	return rec, nil
}

// GetCachedSummary is a pure cache probe; it never triggers generation.
func (s *Service) GetCachedSummary(req Request) Lookup {
	return tryLoad(s.resolver.CachePath(expandHome(req.SessionPath), req.PromptVariant))
}

func tryLoad(cachePath string) Lookup {
	fi, err := os.Stat(cachePath)
	if err != nil || !fi.Mode().IsRegular() {
		return Lookup{}
	}
	rec, err := ReadSummary(cachePath)
	if err != nil {
		return Lookup{}
	}
	return Lookup{Found: true, Record: rec}
}

// ensureMessagesLog writes the extracted-message log when refresh is forced
// or the log is missing. The counted flag reports whether a fresh count is
// available; an untouched existing log yields none.
func ensureMessagesLog(sessionPath, messagesPath string, refresh bool) (count int, counted bool, err error) {
	if !refresh {
		if fi, statErr := os.Stat(messagesPath); statErr == nil && fi.Mode().IsRegular() {
			return 0, false, nil
		}
	}
	count, err = session.WriteMessagesLog(sessionPath, messagesPath)
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

// defaultMessages builds the standard prompt pair: the template body as the
// system message and the full extracted transcript, wrapped in a delimited
// block, as the user message.
func defaultMessages(promptContent, messagesPath string) ([]openrouter.Message, error) {
	data, err := os.ReadFile(messagesPath)
	if err != nil {
		return nil, fmt.Errorf("reading extracted messages: %w", err)
	}

	system := strings.TrimSpace(promptContent)
	if system == "" {
		system = promptContent
	}

	transcript := strings.TrimRight(string(data), "\n")
	block := "<session start>\n\"\"\"\n" + transcript + "\n\"\"\"\n</session end>"

	return []openrouter.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: block},
	}, nil
}

func (s *Service) buildMetadata(
	ctx context.Context,
	req Request,
	promptPath, sessionPath, messagesPath string,
	count int, counted bool,
	result *openrouter.CompletionResult,
) map[string]any {
	metadata := map[string]any{
		"model":          req.Model,
		"prompt_variant": req.PromptVariant,
		"prompt_path":    promptPath,
		"source_path":    sessionPath,
		"usage":          result.Usage,
		"messages_path":  messagesPath,
	}
	if counted {
		metadata["message_count"] = count
	}

	// Cost estimation rides on the pricing cache and is best-effort only.
	if cost, err := s.client.EstimateCost(ctx, req.Model, result.Usage); err != nil {
		s.log.WithError(err).Debug("cost estimate unavailable")
	} else if cost != nil {
		metadata["cost_estimate_usd"] = cost
	}

	if result.Reasoning != nil {
		metadata["reasoning"] = result.Reasoning
	}
	if result.FinishReason != "" {
		metadata["finish_reason"] = result.FinishReason
	}
	metadata["raw_response"] = result.Raw
	return metadata
}

func backfill(metadata map[string]any, messagesPath string, count int, counted bool) {
	if metadata == nil {
		return
	}
	if _, ok := metadata["messages_path"]; !ok {
		metadata["messages_path"] = messagesPath
	}
	if counted {
		if _, ok := metadata["message_count"]; !ok {
			metadata["message_count"] = count
		}
	}
}

func (s *Service) logEvent(event string, req Request, extra logrus.Fields) {
	fields := logrus.Fields{
		"event":          event,
		"session_path":   req.SessionPath,
		"prompt_variant": req.PromptVariant,
		"model":          req.Model,
	}
	for k, v := range extra {
		fields[k] = v
	}
	s.log.WithFields(fields).Debug("summary")
}

func expandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err == nil {
			return home + path[1:]
		}
	}
	return path
}
