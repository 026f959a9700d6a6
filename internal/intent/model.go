package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jafar090/CompliBot/internal/llm"
)

// Completer is the completion capability the model classifier needs.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, history []llm.Turn) (string, error)
}

// ModelClassifier asks the LLM to label the utterance, falling back to the
// keyword rules when the upstream is unreachable or answers garbage.
type ModelClassifier struct {
	completer Completer
	fallback  *KeywordClassifier
	logger    *slog.Logger
}

// NewModelClassifier creates an LLM-backed classifier.
func NewModelClassifier(completer Completer, logger *slog.Logger) *ModelClassifier {
	return &ModelClassifier{
		completer: completer,
		fallback:  NewKeywordClassifier(),
		logger:    logger.With("component", "intent"),
	}
}

const classifyPrompt = `You are a strict intent classifier for a fraud-complaint assistant. ` +
	`Label the user's message with exactly one intent. ` +
	`Reply with a single JSON object and nothing else, in the form {"intent":"complaint"}. ` +
	`Valid intents: "complaint" (the user wants to file or register a fraud complaint), ` +
	`"cancel" (the user wants to stop or abandon the current process), ` +
	`"question" (anything else, including questions about fraud).`

type classifyResult struct {
	Intent string `json:"intent"`
}

func (m *ModelClassifier) Classify(ctx context.Context, utterance string) (Result, error) {
	// Cancel phrases are deterministic; never let the model override them.
	if IsCancel(utterance) {
		return Cancel, nil
	}

	raw, err := m.completer.Complete(ctx, classifyPrompt, []llm.Turn{{Role: "user", Content: utterance}})
	if err != nil {
		m.logger.Warn("model classification failed, using keyword rules", "error", err)
		return m.fallback.Classify(ctx, utterance)
	}

	var parsed classifyResult
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		m.logger.Warn("model classification unparseable, using keyword rules", "error", fmt.Errorf("parse intent json: %w", err))
		return m.fallback.Classify(ctx, utterance)
	}

	switch strings.ToLower(strings.TrimSpace(parsed.Intent)) {
	case "complaint":
		return Complaint, nil
	case "cancel":
		return Cancel, nil
	case "question":
		return Question, nil
	default:
		return Question, nil
	}
}

// extractJSON trims code fences and surrounding prose down to the first JSON
// object in the text.
func extractJSON(text string) string {
	s := strings.TrimSpace(text)
	if start := strings.Index(s, "{"); start >= 0 {
		if end := strings.LastIndex(s, "}"); end >= start {
			return s[start : end+1]
		}
	}
	return s
}
