package intent

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/wanhafiz/suara/internal/dialog"
	"github.com/wanhafiz/suara/pkg/provider/llm"
)

// Classifier is the model-backed intent classifier. It selects a system
// prompt for the current dialogue step, calls the model under a
// [RetryPolicy], and parses the response into a [dialog.Decision]. Every
// failure mode (exhausted retries, hard errors, unparseable output) degrades
// to the keyword fallback; Classify never reports an error to its caller.
type Classifier struct {
	provider llm.Provider
	fallback *KeywordClassifier
	policy   RetryPolicy
	log      *slog.Logger

	// onFallback, when set, observes every degradation to the keyword path.
	onFallback func(reason string)
}

var _ dialog.Classifier = (*Classifier)(nil)

// ClassifierOption configures a [Classifier].
type ClassifierOption func(*Classifier)

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(policy RetryPolicy) ClassifierOption {
	return func(c *Classifier) {
		c.policy = policy
	}
}

// WithClassifierLogger sets the classifier's logger.
func WithClassifierLogger(log *slog.Logger) ClassifierOption {
	return func(c *Classifier) {
		c.log = log
	}
}

// WithFallbackHook registers fn to be called with a reason ("model_error" or
// "parse_error") whenever classification degrades to the keyword path.
func WithFallbackHook(fn func(reason string)) ClassifierOption {
	return func(c *Classifier) {
		c.onFallback = fn
	}
}

// NewClassifier builds a model-backed classifier over provider with the
// keyword fallback wired in.
func NewClassifier(provider llm.Provider, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		provider: provider,
		fallback: NewKeywordClassifier(),
		policy:   DefaultRetryPolicy(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify implements dialog.Classifier.
func (c *Classifier) Classify(ctx context.Context, text string, step dialog.Step) dialog.Decision {
	raw, err := c.policy.Do(ctx, func(ctx context.Context) (string, error) {
		resp, err := c.provider.Complete(ctx, llm.CompletionRequest{
			SystemPrompt: promptFor(step),
			UserText:     text,
		})
		if err != nil {
			return "", err
		}
		return resp.Content, nil
	})
	if err != nil || strings.TrimSpace(raw) == "" {
		c.log.Warn("model classification failed, using keyword fallback",
			slog.String("step", string(step)),
			slog.Any("error", err))
		c.degraded("model_error")
		return c.fallback.Classify(ctx, text, step)
	}

	decision, ok := parseDecision(raw, step)
	if !ok {
		c.log.Warn("model output unparseable, using keyword fallback",
			slog.String("step", string(step)))
		c.degraded("parse_error")
		return c.fallback.Classify(ctx, text, step)
	}
	return decision
}

func (c *Classifier) degraded(reason string) {
	if c.onFallback != nil {
		c.onFallback(reason)
	}
}

// parseDecision turns a raw model response into the decision variant for
// step. Markdown code-fence decoration is stripped first. Missing fields are
// not an error: they parse to the step's zero-value variant, which the
// machine answers with a "didn't understand" reply.
func parseDecision(raw string, step dialog.Step) (dialog.Decision, bool) {
	clean := stripCodeFences(raw)

	dec := json.NewDecoder(strings.NewReader(clean))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, false
	}

	switch step {
	case dialog.StepAskIC:
		return dialog.ICDecision{IC: extractDigits(stringField(fields, "extracted_ic"))}, true
	case dialog.StepConfirmIC:
		return dialog.ConfirmDecision{Confirmed: boolField(fields, "confirmation")}, true
	case dialog.StepAskNavigation:
		return dialog.ConfirmDecision{Confirmed: boolField(fields, "navigate_confirmed")}, true
	case dialog.StepAskAmount:
		if amount, ok := numberField(fields, "extracted_amount"); ok {
			return dialog.AmountDecision{Amount: amount, Present: true}, true
		}
		return dialog.AmountDecision{}, true
	default:
		return dialog.ActionDecision{Action: dialog.Action(stringField(fields, "action_id"))}, true
	}
}

// stripCodeFences removes markdown code-fence decoration the model tends to
// wrap JSON output in.
func stripCodeFences(raw string) string {
	clean := strings.ReplaceAll(raw, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	return strings.TrimSpace(clean)
}

// stringField reads a string-valued field, accepting numbers the model
// sometimes emits for digit strings.
func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func boolField(fields map[string]any, key string) bool {
	b, _ := fields[key].(bool)
	return b
}

// numberField reads a numeric field, accepting numeric strings.
func numberField(fields map[string]any, key string) (float64, bool) {
	switch v := fields[key].(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		if amount, ok := extractAmount(strings.ToLower(v)); ok {
			return amount, true
		}
	}
	return 0, false
}
