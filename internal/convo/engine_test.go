package convo

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jafar090/CompliBot/internal/intake"
	"github.com/Jafar090/CompliBot/internal/intent"
	"github.com/Jafar090/CompliBot/internal/llm"
	"github.com/Jafar090/CompliBot/internal/metrics"
	"github.com/Jafar090/CompliBot/internal/session"
)

type fakeLLM struct {
	reply string
	err   error
	calls int
	last  []llm.Turn
}

func (f *fakeLLM) Complete(ctx context.Context, systemPrompt string, history []llm.Turn) (string, error) {
	f.calls++
	f.last = history
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeArchive struct {
	ref    string
	fields map[string]string
	err    error
	calls  int
}

func (f *fakeArchive) SaveComplaint(ctx context.Context, ref string, fields map[string]string) error {
	f.calls++
	f.ref = ref
	f.fields = fields
	return f.err
}

func (f *fakeArchive) Close() error { return nil }

func newEngine(t *testing.T, store session.Store, completer Completer, archiver *fakeArchive) *Engine {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	machine := intake.New(metrics.NewNop(), logger)
	return New(store, machine, intent.NewKeywordClassifier(), completer, archiver, metrics.NewNop(), logger, 20)
}

var validAnswers = []string{
	"Neel Patel",
	"9876543210",
	"34",
	"ABCDE1234F",
	"14 MG Road, Pune",
	"I was tricked into transferring money through a fake UPI request.",
	"SBI",
	"123456789012",
	"15000",
	"don't know",
	"01/01/2023",
	"Ramesh Kumar",
	"no",
}

func TestEmptyInput(t *testing.T) {
	fake := &fakeLLM{reply: "hello"}
	e := newEngine(t, session.NewMemoryStore(), fake, &fakeArchive{})

	reply, err := e.ProcessTurn(context.Background(), "s1", "   ")
	require.NoError(t, err)
	assert.Contains(t, reply, "didn't catch that")
	assert.Zero(t, fake.calls)
}

func TestGeneralQuestionForwardsToLLM(t *testing.T) {
	fake := &fakeLLM{reply: "Phishing is a scam where attackers impersonate trusted parties."}
	store := session.NewMemoryStore()
	e := newEngine(t, store, fake, &fakeArchive{})

	reply, err := e.ProcessTurn(context.Background(), "s1", "what is phishing?")
	require.NoError(t, err)
	assert.Equal(t, fake.reply, reply)
	assert.Equal(t, 1, fake.calls)

	state, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, session.ModeGeneral, state.Mode)
	require.Len(t, state.History, 2)
	assert.Equal(t, session.RoleUser, state.History[0].Role)
	assert.Equal(t, "what is phishing?", state.History[0].Content)
	assert.Equal(t, session.RoleAssistant, state.History[1].Role)
}

func TestUpstreamFailureLeavesStateUntouched(t *testing.T) {
	fake := &fakeLLM{err: llm.ErrUnavailable}
	store := session.NewMemoryStore()
	e := newEngine(t, store, fake, &fakeArchive{})

	reply, err := e.ProcessTurn(context.Background(), "s1", "what is phishing?")
	require.NoError(t, err, "upstream failure surfaces as text, not an error")
	assert.Contains(t, reply, "trouble reaching")

	state, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, state.History, "nothing is saved for a failed turn")
	assert.Equal(t, session.ModeGeneral, state.Mode)
}

func TestComplaintIntentStartsInterview(t *testing.T) {
	fake := &fakeLLM{reply: "unused"}
	store := session.NewMemoryStore()
	e := newEngine(t, store, fake, &fakeArchive{})

	reply, err := e.ProcessTurn(context.Background(), "s1", "I want to register a complaint")
	require.NoError(t, err)
	assert.Contains(t, reply, "full name")
	assert.Zero(t, fake.calls, "intake turns never reach the LLM")

	state, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, session.ModeCollecting, state.Mode)
}

func TestCollectingTurnsSkipClassifier(t *testing.T) {
	fake := &fakeLLM{reply: "unused"}
	store := session.NewMemoryStore()
	e := newEngine(t, store, fake, &fakeArchive{})
	ctx := context.Background()

	_, err := e.ProcessTurn(ctx, "s1", "register a complaint")
	require.NoError(t, err)

	// "what is phishing?" would be a Question in GENERAL mode; while
	// collecting it is just an invalid name.
	reply, err := e.ProcessTurn(ctx, "s1", "what is phishing?")
	require.NoError(t, err)
	assert.Contains(t, reply, "Sorry,")
	assert.Zero(t, fake.calls)
}

func TestFullFlowFinalizesAndArchives(t *testing.T) {
	fake := &fakeLLM{reply: "unused"}
	arch := &fakeArchive{}
	store := session.NewMemoryStore()
	e := newEngine(t, store, fake, arch)
	ctx := context.Background()

	_, err := e.ProcessTurn(ctx, "s1", "register a complaint")
	require.NoError(t, err)
	for _, answer := range validAnswers {
		_, err = e.ProcessTurn(ctx, "s1", answer)
		require.NoError(t, err)
	}

	reply, err := e.ProcessTurn(ctx, "s1", "show me")
	require.NoError(t, err)
	assert.Contains(t, reply, "Complaint Summary:")

	reply, err = e.ProcessTurn(ctx, "s1", "yes")
	require.NoError(t, err)
	assert.Contains(t, reply, "cybercrime.gov.in")
	assert.Contains(t, reply, "Your complaint reference is FRAUD-")

	require.Equal(t, 1, arch.calls)
	assert.True(t, strings.HasPrefix(arch.ref, "fraud-"))
	assert.Equal(t, "Neel Patel", arch.fields["name"])
	assert.Equal(t, "unknown", arch.fields["transaction_id"])

	state, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, session.ModeComplete, state.Mode)
	assert.Equal(t, arch.ref, state.ComplaintRef)
}

func TestTurnAfterCompletionReturnsToGeneral(t *testing.T) {
	fake := &fakeLLM{reply: "You should change your passwords right away."}
	store := session.NewMemoryStore()
	e := newEngine(t, store, fake, &fakeArchive{})
	ctx := context.Background()

	state := session.NewState()
	state.Mode = session.ModeComplete
	require.NoError(t, store.Save(ctx, "s1", state))

	reply, err := e.ProcessTurn(ctx, "s1", "what should I do now?")
	require.NoError(t, err)
	assert.Equal(t, fake.reply, reply)
	assert.Equal(t, 1, fake.calls)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, session.ModeGeneral, got.Mode)
}

func TestCancelInGeneralMode(t *testing.T) {
	fake := &fakeLLM{reply: "unused"}
	store := session.NewMemoryStore()
	e := newEngine(t, store, fake, &fakeArchive{})

	reply, err := e.ProcessTurn(context.Background(), "s1", "cancel")
	require.NoError(t, err)
	assert.Contains(t, reply, "No problem")
	assert.Zero(t, fake.calls)

	state, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, session.ModeGeneral, state.Mode)
}

func TestArchiveFailureDoesNotBlockReply(t *testing.T) {
	fake := &fakeLLM{reply: "unused"}
	arch := &fakeArchive{err: errors.New("disk full")}
	store := session.NewMemoryStore()
	e := newEngine(t, store, fake, arch)
	ctx := context.Background()

	_, err := e.ProcessTurn(ctx, "s1", "register a complaint")
	require.NoError(t, err)
	for _, answer := range validAnswers {
		_, err = e.ProcessTurn(ctx, "s1", answer)
		require.NoError(t, err)
	}
	_, err = e.ProcessTurn(ctx, "s1", "show me")
	require.NoError(t, err)

	reply, err := e.ProcessTurn(ctx, "s1", "yes")
	require.NoError(t, err)
	assert.Contains(t, reply, "Your complaint reference is", "archive failure is invisible to the user")
}

func TestLLMPromptHistoryBounded(t *testing.T) {
	fake := &fakeLLM{reply: "answer"}
	store := session.NewMemoryStore()
	e := newEngine(t, store, fake, &fakeArchive{})
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		_, err := e.ProcessTurn(ctx, "s1", "tell me about online fraud")
		require.NoError(t, err)
	}

	// 5 stored turns plus the current utterance.
	assert.Len(t, fake.last, 6)
	assert.Equal(t, "tell me about online fraud", fake.last[5].Content)
}

func TestSessionsAreIndependent(t *testing.T) {
	fake := &fakeLLM{reply: "generic answer"}
	store := session.NewMemoryStore()
	e := newEngine(t, store, fake, &fakeArchive{})
	ctx := context.Background()

	_, err := e.ProcessTurn(ctx, "a", "register a complaint")
	require.NoError(t, err)

	reply, err := e.ProcessTurn(ctx, "b", "what is phishing?")
	require.NoError(t, err)
	assert.Equal(t, "generic answer", reply, "session b stays in free-form mode")

	stateA, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, session.ModeCollecting, stateA.Mode)
}
