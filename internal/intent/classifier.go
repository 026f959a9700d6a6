package intent

import "context"

// Result is the high-level action an utterance requests.
type Result string

const (
	// Complaint means the user wants to file a fraud complaint.
	Complaint Result = "complaint"
	// Cancel means the user wants to abandon whatever is in progress.
	Cancel Result = "cancel"
	// Question means the utterance should be forwarded to the LLM.
	Question Result = "question"
)

// Classifier decides the intent of a GENERAL-mode utterance. Implementations
// must fall back to Question when unsure; an unclassifiable utterance is
// forwarded, never failed.
type Classifier interface {
	Classify(ctx context.Context, utterance string) (Result, error)
}
