package intake

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jafar090/CompliBot/internal/metrics"
	"github.com/Jafar090/CompliBot/internal/session"
)

func newMachine(t *testing.T) *Machine {
	t.Helper()
	return New(metrics.NewNop(), slog.New(slog.DiscardHandler))
}

// answers fills the interview in schema order with valid values.
var answers = []string{
	"Neel Patel",
	"9876543210",
	"34",
	"ABCDE1234F",
	"14 MG Road, Pune",
	"I was tricked into transferring money through a fake UPI request.",
	"SBI",
	"123456789012",
	"₹15,000",
	"TXN-2023-00042",
	"01/01/2023",
	"Ramesh Kumar",
	"no",
}

func TestStartCollecting(t *testing.T) {
	m := newMachine(t)
	state := session.NewState()

	reply := m.HandleTurn(state, "I want to register a complaint")

	assert.Equal(t, session.ModeCollecting, state.Mode)
	assert.Zero(t, state.Cursor)
	assert.Contains(t, reply, m.Schema()[0].Prompt)
}

func TestInvalidAnswerRepeatsPrompt(t *testing.T) {
	m := newMachine(t)
	state := session.NewState()
	m.HandleTurn(state, "register a complaint")

	m.HandleTurn(state, answers[0])
	require.Equal(t, 1, state.Cursor)

	reply := m.HandleTurn(state, "12345")

	assert.Equal(t, 1, state.Cursor, "cursor must not advance on rejection")
	assert.Equal(t, session.ModeCollecting, state.Mode)
	assert.True(t, strings.HasPrefix(reply, "Sorry, "))
	assert.Contains(t, reply, m.Schema()[1].Prompt)
	assert.False(t, state.Record.Has("mobile_number"))

	reply = m.HandleTurn(state, "9876543210")
	assert.Equal(t, 2, state.Cursor)
	assert.Equal(t, "9876543210", state.Record["mobile_number"])
	assert.Contains(t, reply, m.Schema()[2].Prompt)
}

func TestCancelMidInterview(t *testing.T) {
	m := newMachine(t)
	state := session.NewState()
	m.HandleTurn(state, "register a complaint")
	m.HandleTurn(state, answers[0])
	m.HandleTurn(state, answers[1])

	reply := m.HandleTurn(state, "cancel")

	assert.Equal(t, session.ModeGeneral, state.Mode)
	assert.Empty(t, state.Record)
	assert.Zero(t, state.Cursor)
	assert.Contains(t, reply, "cancelled")
}

func TestCancelFromConfirmation(t *testing.T) {
	m := newMachine(t)
	state := driveToConfirmation(t, m)

	reply := m.HandleTurn(state, "exit")

	assert.Equal(t, session.ModeGeneral, state.Mode)
	assert.Empty(t, state.Record)
	assert.Contains(t, reply, "cancelled")
}

func TestFullInterviewToSummary(t *testing.T) {
	m := newMachine(t)
	state := session.NewState()
	m.HandleTurn(state, "register a complaint")

	var reply string
	for _, answer := range answers {
		reply = m.HandleTurn(state, answer)
	}

	// All fields accepted: still collecting until the next turn surfaces
	// the summary.
	require.Equal(t, session.ModeCollecting, state.Mode)
	require.Equal(t, len(answers), state.Cursor)
	assert.Contains(t, reply, "summary")

	reply = m.HandleTurn(state, "ok")
	assert.Equal(t, session.ModeAwaitingConfirmation, state.Mode)
	assert.Contains(t, reply, "Complaint Summary:")
	assert.Contains(t, reply, "Name: Neel Patel")
	assert.Contains(t, reply, "Amount Lost: 15000")
	assert.Contains(t, reply, "Date of Incident: 2023-01-01")
	assert.Contains(t, reply, "'yes' to register the complaint")
}

func TestConfirmYesCompletes(t *testing.T) {
	m := newMachine(t)
	state := driveToConfirmation(t, m)

	reply := m.HandleTurn(state, "yes")

	assert.Equal(t, session.ModeComplete, state.Mode)
	assert.True(t, strings.HasPrefix(state.ComplaintRef, "fraud-"), "confirmation assigns the reference")
	assert.Len(t, state.ComplaintRef, len("fraud-")+16)
	assert.Contains(t, reply, "registered")
	assert.Contains(t, reply, "cybercrime.gov.in")
	assert.Contains(t, reply, "1930")
}

func TestResume(t *testing.T) {
	m := newMachine(t)

	state := session.NewState()
	state.Mode = session.ModeComplete
	state.ComplaintRef = "fraud-abc"
	m.Resume(state)
	assert.Equal(t, session.ModeGeneral, state.Mode)
	assert.Equal(t, "fraud-abc", state.ComplaintRef, "the reference survives resumption")

	for _, mode := range []session.Mode{session.ModeGeneral, session.ModeCollecting, session.ModeAwaitingConfirmation} {
		state := session.NewState()
		state.Mode = mode
		m.Resume(state)
		assert.Equal(t, mode, state.Mode)
	}
}

func TestConfirmNoRestarts(t *testing.T) {
	m := newMachine(t)
	state := driveToConfirmation(t, m)

	reply := m.HandleTurn(state, "no")

	assert.Equal(t, session.ModeCollecting, state.Mode)
	assert.Empty(t, state.Record, "restart must discard every collected value")
	assert.Zero(t, state.Cursor)
	assert.Contains(t, reply, m.Schema()[0].Prompt)
}

func TestConfirmAmbiguousRepeats(t *testing.T) {
	m := newMachine(t)
	state := driveToConfirmation(t, m)

	reply := m.HandleTurn(state, "maybe later")

	assert.Equal(t, session.ModeAwaitingConfirmation, state.Mode)
	assert.Contains(t, reply, "'yes'")
	assert.Contains(t, reply, "'no'")
}

func TestParseYesNo(t *testing.T) {
	cases := []struct {
		in  string
		yes bool
		no  bool
	}{
		{"yes", true, false},
		{"Yes please", true, false},
		{"ok, go ahead", true, false},
		{"no", false, true},
		{"no that's wrong", false, true},
		{"start over", false, true},
		{"maybe", false, false},
		{"", false, false},
	}
	for _, tc := range cases {
		yes, no := parseYesNo(tc.in)
		assert.Equal(t, tc.yes, yes, tc.in)
		assert.Equal(t, tc.no, no, tc.in)
	}
}

// driveToConfirmation walks a fresh session through every field and the
// summary turn, leaving it in AWAITING_CONFIRMATION.
func driveToConfirmation(t *testing.T, m *Machine) *session.State {
	t.Helper()
	state := session.NewState()
	m.HandleTurn(state, "register a complaint")
	for _, answer := range answers {
		m.HandleTurn(state, answer)
	}
	m.HandleTurn(state, "anything")
	require.Equal(t, session.ModeAwaitingConfirmation, state.Mode)
	return state
}
