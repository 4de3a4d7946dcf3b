package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/kirillkom/hsa-claims-engine/internal/core/domain"
	"github.com/kirillkom/hsa-claims-engine/internal/infrastructure/resilience"
)

const DefaultTimeout = 10 * time.Second

const (
	OutcomeOK             = "ok"
	OutcomeUnconfigured   = "unconfigured"
	OutcomeTimeout        = "timeout"
	OutcomeHTTPError      = "http_error"
	OutcomeTransportError = "transport_error"
	OutcomeMalformed      = "malformed"
	OutcomeCircuitOpen    = "circuit_open"
)

// Completer is a chat-style model backend returning raw reply text.
type Completer interface {
	Name() string
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type Recorder interface {
	RecordClassifierCall(outcome string, duration time.Duration)
}

type Options struct {
	Timeout  time.Duration
	Executor *resilience.Executor
	Recorder Recorder
}

// Classifier adapts a model backend to the eligibility classifier contract:
// one bounded call per query and a fixed fallback answer on any failure.
type Classifier struct {
	backend  Completer
	timeout  time.Duration
	executor *resilience.Executor
	recorder Recorder
}

func NewClassifier(backend Completer, opts Options) *Classifier {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Classifier{
		backend:  backend,
		timeout:  timeout,
		executor: opts.Executor,
		recorder: opts.Recorder,
	}
}

func (c *Classifier) Classify(ctx context.Context, description string) domain.ClassifierResult {
	if c.backend == nil {
		c.record(OutcomeUnconfigured, 0)
		return domain.FallbackClassification(description)
	}

	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var raw string
	call := func(callCtx context.Context) error {
		reply, err := c.backend.Complete(callCtx, eligibilitySystemPrompt, buildEligibilityPrompt(description))
		if err != nil {
			return err
		}
		raw = reply
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(callCtx, c.Operation(), call, classifyError)
	} else {
		err = call(callCtx)
	}

	var result domain.ClassifierResult
	if err == nil {
		result, err = ParseEligibilityReply(raw)
	}

	outcome := outcomeFor(err)
	c.record(outcome, time.Since(start))
	if err != nil {
		slog.Warn("classifier_call_failed",
			"provider", c.backend.Name(),
			"outcome", outcome,
			"error", err,
		)
		return domain.FallbackClassification(description)
	}
	return result
}

// Operation is the resilience operation name of the backend, or "" when
// the classifier has no backend.
func (c *Classifier) Operation() string {
	if c.backend == nil {
		return ""
	}
	return "classifier." + c.backend.Name()
}

func (c *Classifier) record(outcome string, duration time.Duration) {
	if c.recorder != nil {
		c.recorder.RecordClassifierCall(outcome, duration)
	}
}
