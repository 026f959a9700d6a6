package convo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jafar090/CompliBot/internal/archive"
	"github.com/Jafar090/CompliBot/internal/intake"
	"github.com/Jafar090/CompliBot/internal/intent"
	"github.com/Jafar090/CompliBot/internal/llm"
	"github.com/Jafar090/CompliBot/internal/metrics"
	"github.com/Jafar090/CompliBot/internal/session"
)

const systemPrompt = "You are a helpful assistant who specializes in fraud registration and fraud-related topics, " +
	"but you can also answer general questions if asked. " +
	"If the user wants to register a complaint, guide them through the process. " +
	"If they ask about fraud or general knowledge, answer helpfully and concisely. " +
	"Do not use emoticons, asterisks, or describe actions like *smiles* in your responses. " +
	"Keep your answers professional and to the point."

const (
	apologyReply = "Sorry, I'm having trouble reaching my language service right now. Please try that again in a moment."

	emptyInputReply = "I didn't catch that. Could you type your message again?"

	nothingToCancelReply = "No problem. Let me know if there's anything else I can help with."
)

// promptHistoryTurns caps how much of the stored history is sent upstream.
const promptHistoryTurns = 5

// Completer is the LLM capability the engine forwards free-form turns to.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, history []llm.Turn) (string, error)
}

// Engine is the per-turn response router: it decides whether the intake state
// machine handles the turn deterministically or the utterance is forwarded to
// the LLM collaborator. All state transitions happen inside the machine; the
// engine only loads, saves and finalizes.
type Engine struct {
	store      session.Store
	machine    *intake.Machine
	classifier intent.Classifier
	llm        Completer
	archive    archive.Archiver
	metrics    *metrics.Metrics
	logger     *slog.Logger
	maxHistory int
	locks      session.KeyedMutex
}

// New creates a conversation engine instance.
func New(
	store session.Store,
	machine *intake.Machine,
	classifier intent.Classifier,
	completer Completer,
	archiver archive.Archiver,
	m *metrics.Metrics,
	logger *slog.Logger,
	maxHistory int,
) *Engine {
	if maxHistory <= 0 {
		maxHistory = 20
	}
	if archiver == nil {
		archiver = archive.Noop{}
	}
	return &Engine{
		store:      store,
		machine:    machine,
		classifier: classifier,
		llm:        completer,
		archive:    archiver,
		metrics:    m,
		logger:     logger.With("component", "convo"),
		maxHistory: maxHistory,
	}
}

// ProcessTurn handles one utterance for one session and returns the next
// system utterance. Every path, including failures, yields text.
func (e *Engine) ProcessTurn(ctx context.Context, sessionID, utterance string) (string, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return emptyInputReply, nil
	}

	unlock := e.locks.Lock(sessionID)
	defer unlock()

	state, err := e.store.Get(ctx, sessionID)
	if err != nil {
		e.metrics.Errors.WithLabelValues("session_store").Inc()
		e.logger.Error("failed loading session", "error", err, "session_id", sessionID)
		return apologyReply, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	e.metrics.TurnsProcessed.WithLabelValues(string(state.Mode)).Inc()

	// The turn after completion returns to free-form mode; the machine owns
	// that transition like every other.
	e.machine.Resume(state)

	var reply string
	if state.Mode != session.ModeGeneral {
		prevMode := state.Mode
		reply = e.machine.HandleTurn(state, utterance)
		if prevMode == session.ModeAwaitingConfirmation && state.Mode == session.ModeComplete {
			reply += "\n" + e.finalize(ctx, state)
		}
	} else {
		reply, err = e.handleGeneral(ctx, state, utterance)
		if err != nil {
			// Upstream failure: leave state untouched so the user can
			// retry the same turn.
			return apologyReply, nil
		}
	}

	state.AppendHistory(session.RoleUser, utterance, e.maxHistory)
	state.AppendHistory(session.RoleAssistant, reply, e.maxHistory)

	if err := e.store.Save(ctx, sessionID, state); err != nil {
		e.metrics.Errors.WithLabelValues("session_store").Inc()
		e.logger.Error("failed saving session", "error", err, "session_id", sessionID)
	}
	return reply, nil
}

func (e *Engine) handleGeneral(ctx context.Context, state *session.State, utterance string) (string, error) {
	result, err := e.classifier.Classify(ctx, utterance)
	if err != nil {
		// Unclassifiable utterances are forwarded, never failed.
		e.logger.Warn("intent classification failed, forwarding to llm", "error", err)
		result = intent.Question
	}

	switch result {
	case intent.Complaint:
		return e.machine.HandleTurn(state, utterance), nil
	case intent.Cancel:
		return nothingToCancelReply, nil
	default:
		return e.forwardToLLM(ctx, state, utterance)
	}
}

func (e *Engine) forwardToLLM(ctx context.Context, state *session.State, utterance string) (string, error) {
	history := make([]llm.Turn, 0, promptHistoryTurns+1)
	stored := state.History
	if len(stored) > promptHistoryTurns {
		stored = stored[len(stored)-promptHistoryTurns:]
	}
	for _, t := range stored {
		history = append(history, llm.Turn{Role: t.Role, Content: t.Content})
	}
	history = append(history, llm.Turn{Role: session.RoleUser, Content: utterance})

	out, err := e.llm.Complete(ctx, systemPrompt, history)
	if err != nil {
		e.logger.Error("llm completion failed", "error", err)
		return "", err
	}
	return out, nil
}

// finalize hands the confirmed complaint to the archive under the reference
// the machine assigned. Archive failures are logged; they never block the
// reply.
func (e *Engine) finalize(ctx context.Context, state *session.State) string {
	ref := state.ComplaintRef

	if err := e.archive.SaveComplaint(ctx, ref, state.Record); err != nil {
		e.metrics.Errors.WithLabelValues("archive").Inc()
		e.logger.Error("failed archiving complaint", "error", err, "ref", ref)
	} else {
		e.logger.Info("complaint finalized", "ref", ref)
	}
	return fmt.Sprintf("Your complaint reference is %s.", strings.ToUpper(ref))
}
