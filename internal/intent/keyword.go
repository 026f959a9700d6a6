package intent

import (
	"context"
	"regexp"
	"strings"
)

// Rule patterns for complaint-filing intent.
var complaintPatterns = []*regexp.Regexp{
	regexp.MustCompile(`file a complaint`),
	regexp.MustCompile(`register a complaint`),
	regexp.MustCompile(`report fraud`),
	regexp.MustCompile(`report a scam`),
	regexp.MustCompile(`register fraud`),
	regexp.MustCompile(`lodge a complaint`),
	regexp.MustCompile(`submit a complaint`),
	regexp.MustCompile(`want to complain`),
	regexp.MustCompile(`want to report`),
	regexp.MustCompile(`register a case`),
	regexp.MustCompile(`start.*complaint`),
	regexp.MustCompile(`begin.*complaint`),
	regexp.MustCompile(`complaint.*fraud`),
	regexp.MustCompile(`scammed.*(register|complaint|file)`),
	regexp.MustCompile(`i (want|need|wish).*complaint`),
	regexp.MustCompile(`help.*(complaint|register.*fraud|report.*fraud)`),
	regexp.MustCompile(`i want to (file|register|lodge|submit|make).*complaint`),
	regexp.MustCompile(`i want to report.*fraud`),
}

var cancelPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^exit$`),
	regexp.MustCompile(`^cancel( it| that)?$`),
	regexp.MustCompile(`^stop$`),
	regexp.MustCompile(`^quit$`),
	regexp.MustCompile(`never ?mind`),
	regexp.MustCompile(`no i don'?t want`),
	regexp.MustCompile(`don'?t want to register`),
}

// KeywordClassifier applies fixed regex rules. It never errors.
type KeywordClassifier struct{}

// NewKeywordClassifier creates the rule-based classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

func (k *KeywordClassifier) Classify(ctx context.Context, utterance string) (Result, error) {
	lower := strings.ToLower(strings.TrimSpace(utterance))
	if IsCancel(lower) {
		return Cancel, nil
	}
	for _, p := range complaintPatterns {
		if p.MatchString(lower) {
			return Complaint, nil
		}
	}
	return Question, nil
}

// IsCancel reports whether the utterance is an explicit cancel phrase. The
// intake machine consults this in every mode, not just GENERAL.
func IsCancel(utterance string) bool {
	lower := strings.ToLower(strings.TrimSpace(utterance))
	for _, p := range cancelPatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}
