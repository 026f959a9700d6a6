package intake

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Jafar090/CompliBot/internal/complaint"
	"github.com/Jafar090/CompliBot/internal/intent"
	"github.com/Jafar090/CompliBot/internal/metrics"
	"github.com/Jafar090/CompliBot/internal/session"
)

const (
	cancelledReply = "Complaint registration has been cancelled. If you need help with anything else, just let me know!"

	collectingIntro = "Before we begin registering your fraud complaint, please note:\n" +
		"- Only provide the specific information requested at each step.\n" +
		"- If at any point you wish to stop, simply type 'exit', 'cancel', or 'stop'.\n\n"

	recordCompleteReply = "Thank you, that's everything I need for the complaint. Send any message and I'll show you the summary for confirmation."

	confirmQuestion = "Is everything above correct? Reply 'yes' to register the complaint or 'no' to start over."

	confirmRepeat = "Please reply 'yes' to register the complaint as summarised, or 'no' to start over."

	restartReply = "Understood, let's start over from the beginning.\n\n"

	guidanceReply = "Your complaint has been registered.\n" +
		"Please promptly report the incident to your bank and ask them to freeze the disputed transaction. " +
		"Keep all evidence safe (messages, receipts, screenshots). " +
		"You should also file a report at the National Cybercrime Reporting Portal (cybercrime.gov.in) or call the helpline 1930. " +
		"For further assistance, you may visit your local police station."
)

// Machine advances a session through the complaint interview. It owns every
// state transition; nothing else mutates session mode, record or cursor.
type Machine struct {
	schema  []complaint.Field
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates the intake machine over the fixed complaint schema.
func New(m *metrics.Metrics, logger *slog.Logger) *Machine {
	return &Machine{
		schema:  complaint.Schema(),
		metrics: m,
		logger:  logger.With("component", "intake"),
	}
}

// Schema exposes the interview field order.
func (m *Machine) Schema() []complaint.Field {
	return m.schema
}

// Resume fires the COMPLETE -> GENERAL transition on the turn that follows a
// finalized complaint. Other modes are left alone.
func (m *Machine) Resume(state *session.State) {
	if state.Mode == session.ModeComplete {
		state.Mode = session.ModeGeneral
	}
}

// HandleTurn processes one utterance against the session state, mutating the
// state and returning the next system utterance. An explicit cancel from any
// non-GENERAL mode discards the in-progress record.
func (m *Machine) HandleTurn(state *session.State, utterance string) string {
	if state.Mode != session.ModeGeneral && intent.IsCancel(utterance) {
		state.Mode = session.ModeGeneral
		state.ResetRecord()
		m.logger.Info("complaint registration cancelled")
		return cancelledReply
	}

	switch state.Mode {
	case session.ModeCollecting:
		return m.collect(state, utterance)
	case session.ModeAwaitingConfirmation:
		return m.confirm(state, utterance)
	default:
		return m.start(state)
	}
}

// start fires the GENERAL -> COLLECTING transition: cursor rewinds to the
// first schema field and any stale record is cleared.
func (m *Machine) start(state *session.State) string {
	state.Mode = session.ModeCollecting
	state.ResetRecord()
	return collectingIntro + m.schema[0].Prompt
}

func (m *Machine) collect(state *session.State, utterance string) string {
	// A complete record transitions on the next processed turn, whatever
	// its content.
	if state.Cursor >= len(m.schema) {
		state.Mode = session.ModeAwaitingConfirmation
		return state.Record.Summary(m.schema) + "\n" + confirmQuestion
	}

	field := m.schema[state.Cursor]
	value, err := field.Validate(utterance)
	if err != nil {
		m.metrics.ValidationRejections.WithLabelValues(field.Name).Inc()
		m.logger.Debug("field rejected", "field", field.Name, "reason", err.Error())
		return fmt.Sprintf("Sorry, %s.\n%s", err.Error(), field.Prompt)
	}

	state.Record.Set(field.Name, value)
	state.Cursor++

	if state.Cursor >= len(m.schema) {
		return recordCompleteReply
	}
	return m.schema[state.Cursor].Prompt
}

func (m *Machine) confirm(state *session.State, utterance string) string {
	yes, no := parseYesNo(utterance)
	switch {
	case yes:
		state.Mode = session.ModeComplete
		state.ComplaintRef = newComplaintRef()
		m.metrics.ComplaintsFinalized.Inc()
		m.logger.Info("complaint confirmed", "ref", state.ComplaintRef)
		return guidanceReply
	case no:
		state.Mode = session.ModeCollecting
		state.ResetRecord()
		return restartReply + m.schema[0].Prompt
	default:
		return confirmRepeat
	}
}

func newComplaintRef() string {
	return fmt.Sprintf("fraud-%s", strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}
