package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MikeSquared-Agency/didyouthough/internal/groq"
	"github.com/MikeSquared-Agency/didyouthough/internal/metrics"
	"github.com/MikeSquared-Agency/didyouthough/internal/model"
)

var (
	ErrNoContent     = errors.New("no content provided")
	ErrNotConfigured = errors.New("GROQ_API_KEY not configured")
	ErrUpstream      = errors.New("processing failed")
)

const (
	temperature = 0.1
	maxTokens   = 4096
)

// Completer is the hosted model the extractor talks to.
type Completer interface {
	Complete(ctx context.Context, system string, messages []groq.Message, opts groq.CompletionOptions) (string, error)
}

type Extractor struct {
	llm     Completer
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// New builds an extractor. A nil llm means no credential was configured;
// every Extract call then fails with ErrNotConfigured.
func New(llm Completer, logger *zap.Logger) *Extractor {
	return &Extractor{
		llm:     llm,
		logger:  logger,
		metrics: metrics.New(),
		now:     time.Now,
	}
}

// Configured reports whether a model client is available.
func (e *Extractor) Configured() bool { return e.llm != nil }

// Extract runs one prompt/response round trip. A reply that is not a JSON
// object does not fail the call: the result is empty and carries a warning.
func (e *Extractor) Extract(ctx context.Context, content, meetingName string) (*Result, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrNoContent
	}
	if e.llm == nil {
		e.metrics.Extractions.WithLabelValues("not_configured").Inc()
		return nil, ErrNotConfigured
	}

	e.logger.Info("extracting from meeting content",
		zap.String("meeting", meetingName),
		zap.Int("content_len", len(content)),
	)

	start := time.Now()
	raw, err := e.llm.Complete(ctx, systemPrompt,
		[]groq.Message{{Role: "user", Content: userPrompt(model.Today(e.now()), meetingName, content)}},
		groq.CompletionOptions{Temperature: temperature, MaxTokens: maxTokens},
	)
	e.metrics.LLMDuration.WithLabelValues("completion").Observe(time.Since(start).Seconds())
	if err != nil {
		e.metrics.Extractions.WithLabelValues("upstream_error").Inc()
		e.logger.Error("llm extraction failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if raw == "" {
		raw = "{}"
	}

	cleaned := Sanitize(raw)
	res, err := parse(cleaned)
	if err != nil {
		e.metrics.Extractions.WithLabelValues("warning").Inc()
		e.logger.Warn("failed to parse extraction response",
			zap.Error(err),
			zap.Int("raw_len", len(raw)),
		)
		e.logger.Debug("unparsed extraction response", zap.String("raw", cleaned))
		res = emptyResult()
		res.Warning = parseWarning
		return res, nil
	}

	e.metrics.Extractions.WithLabelValues("ok").Inc()
	e.logger.Info("extraction complete",
		zap.String("meeting", meetingName),
		zap.Int("tasks", len(res.Tasks)),
		zap.Int("decisions", len(res.Decisions)),
		zap.Int("risks", len(res.Risks)),
	)
	return res, nil
}
