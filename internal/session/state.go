package session

import (
	"github.com/Jafar090/CompliBot/internal/complaint"
)

// Mode is the conversation mode of a session.
type Mode string

const (
	ModeGeneral              Mode = "GENERAL"
	ModeCollecting           Mode = "COLLECTING"
	ModeAwaitingConfirmation Mode = "AWAITING_CONFIRMATION"
	ModeComplete             Mode = "COMPLETE"
)

// Turn is one utterance of the conversation history. History is supplied to
// the LLM as context only; it is never consulted for validation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// State is the per-conversation record: current mode, the partially filled
// complaint, the index of the next unfilled field and the bounded history.
type State struct {
	Mode         Mode             `json:"mode"`
	Record       complaint.Record `json:"record"`
	Cursor       int              `json:"cursor"`
	History      []Turn           `json:"history"`
	ComplaintRef string           `json:"complaint_ref,omitempty"`
}

// NewState returns a fresh GENERAL-mode state with an empty record.
func NewState() *State {
	return &State{
		Mode:   ModeGeneral,
		Record: complaint.Record{},
	}
}

// ResetRecord discards the in-progress complaint and rewinds the cursor.
func (s *State) ResetRecord() {
	s.Record = complaint.Record{}
	s.Cursor = 0
	s.ComplaintRef = ""
}

// AppendHistory adds a turn, dropping the oldest entries beyond max.
func (s *State) AppendHistory(role, content string, max int) {
	s.History = append(s.History, Turn{Role: role, Content: content})
	if max > 0 && len(s.History) > max {
		s.History = s.History[len(s.History)-max:]
	}
}

// Clone returns an independent copy so stored state is never aliased.
func (s *State) Clone() *State {
	out := &State{
		Mode:         s.Mode,
		Record:       s.Record.Clone(),
		Cursor:       s.Cursor,
		ComplaintRef: s.ComplaintRef,
	}
	if len(s.History) > 0 {
		out.History = make([]Turn, len(s.History))
		copy(out.History, s.History)
	}
	return out
}
