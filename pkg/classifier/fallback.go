package classifier

import (
	"context"
	"errors"
	"strings"
	"time"

	"smart-grocery-be/internal/pkg/logger"
	"smart-grocery-be/pkg/intent"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Policy decides when the primary answer is trusted.
type Policy struct {
	MinConfidence float64
	Timeout       time.Duration
}

var DefaultPolicy = Policy{
	MinConfidence: 0.6,
	Timeout:       3 * time.Second,
}

// Fallback prefers primary and falls back to secondary when primary errors,
// times out, or answers below the confidence threshold. The two override
// rules are applied to whichever answer wins.
type Fallback struct {
	primary   Classifier
	secondary Classifier
	policy    Policy
	logger    logger.ILogger
}

func NewFallback(primary, secondary Classifier, policy Policy, log logger.ILogger) *Fallback {
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		policy:    policy,
		logger:    log,
	}
}

type outcome struct {
	result Result
	err    error
}

func (f *Fallback) Classify(ctx context.Context, text string) (Result, error) {
	ctx, span := otel.Tracer("classifier").Start(ctx, "classify")
	defer span.End()

	r := f.classify(ctx, text)
	span.SetAttributes(
		attribute.String("category", string(r.Category)),
		attribute.String("method", string(r.Method)),
		attribute.Float64("confidence", r.Confidence),
	)
	return r, nil
}

func (f *Fallback) classify(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Default()
	}

	if f.primary != nil {
		r, err := f.callPrimary(ctx, text)
		switch {
		case err != nil:
			f.logger.Warn("CLASSIFIER", "Primary classifier failed, falling back", map[string]interface{}{
				"error": err.Error(),
			})
		case !r.Category.Valid() || r.Confidence < f.policy.MinConfidence:
			f.logger.Debug("CLASSIFIER", "Primary answer below threshold", map[string]interface{}{
				"category":   r.Category,
				"confidence": r.Confidence,
				"threshold":  f.policy.MinConfidence,
			})
		default:
			return f.finish(text, r)
		}
	}

	r, err := f.secondary.Classify(ctx, text)
	if err != nil || !r.Category.Valid() {
		f.logger.Warn("CLASSIFIER", ErrClassificationAmbiguous.Error(), map[string]interface{}{
			"error": errString(err),
		})
		return Default()
	}
	return f.finish(text, r)
}

// callPrimary bounds the primary call by the policy timeout even when the
// implementation ignores ctx.
func (f *Fallback) callPrimary(ctx context.Context, text string) (Result, error) {
	if f.policy.Timeout <= 0 {
		return f.primary.Classify(ctx, text)
	}

	ctx, cancel := context.WithTimeout(ctx, f.policy.Timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		r, err := f.primary.Classify(ctx, text)
		done <- outcome{result: r, err: err}
	}()

	select {
	case o := <-done:
		return o.result, o.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (f *Fallback) finish(text string, r Result) Result {
	lower := strings.ToLower(text)
	applyOverrides(lower, &r)
	if r.Category == intent.CartOperation && r.CartAction == intent.CartNone {
		r.CartAction = detectCartAction(lower)
	}
	r.Complexity = complexityFor(r.Key())
	return r
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return err.Error()
}
