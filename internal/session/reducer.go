// Package session holds the observable state of one remote training
// session and transitions it in response to progress events and user
// actions. It performs no I/O of its own; closing the event stream is
// delegated to a callback installed when the session starts.
package session

import (
	"encoding/json"
	"fmt"

	"github.com/neurasect/tui/internal/client"
)

// Phase is the lifecycle state of the training session.
type Phase int

const (
	Idle Phase = iota
	Submitting
	Running
	Completed
	Failed
)

var phaseNames = map[Phase]string{
	Idle:       "idle",
	Submitting: "submitting",
	Running:    "running",
	Completed:  "completed",
	Failed:     "failed",
}

var phaseFromName = map[string]Phase{
	"idle":       Idle,
	"submitting": Submitting,
	"running":    Running,
	"completed":  Completed,
	"failed":     Failed,
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Phase) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if v, ok := phaseFromName[s]; ok {
		*p = v
	}
	return nil
}

// Terminal reports whether the phase accepts no further progress events.
func (p Phase) Terminal() bool {
	return p == Completed || p == Failed
}

// Session is the record created when submission succeeds.
type Session struct {
	ID           string
	Config       client.TrainingConfig
	ModelSummary string
	InputShape   []int
	OutputShape  []int

	// History holds received epoch updates in arrival order. TotalEpochs
	// comes from the training_started event, Final from training_complete.
	History     []client.ProgressEvent
	TotalEpochs int
	Final       json.RawMessage
}

// Snapshot is the immutable view the UI renders from.
type Snapshot struct {
	Phase   Phase
	Session *Session // nil while Idle with no prior run
	Err     string   // user-visible message for the last failure
	Version uint64
}

// Current returns the most recent epoch update, or nil.
func (s Snapshot) Current() *client.ProgressEvent {
	if s.Session == nil || len(s.Session.History) == 0 {
		return nil
	}
	return &s.Session.History[len(s.Session.History)-1]
}

// Reducer owns the session state. It is mutated only from the UI's
// Update loop, so it needs no locking.
type Reducer struct {
	phase   Phase
	sess    *Session
	lastErr string
	version uint64

	// closeStream tears down the live update channel. Installed by
	// Submitted, invoked on terminal transitions and user stop. The
	// injected closer must be idempotent.
	closeStream func()
}

// NewReducer returns a reducer in the Idle phase.
func NewReducer() *Reducer {
	return &Reducer{}
}

// Phase returns the current lifecycle phase.
func (r *Reducer) Phase() Phase { return r.phase }

// Start validates the configuration and transitions Idle -> Submitting.
// At most one session may be in flight: Start while Submitting or
// Running is rejected without touching the existing session.
func (r *Reducer) Start(cfg client.TrainingConfig) error {
	switch r.phase {
	case Submitting:
		return fmt.Errorf("a training run is already being submitted")
	case Running:
		return fmt.Errorf("a training run is already in progress; stop it first")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Starting a fresh run discards the previous session's post-mortem.
	r.phase = Submitting
	r.sess = &Session{Config: cfg}
	r.lastErr = ""
	r.closeStream = nil
	r.bump()
	return nil
}

// Submitted transitions Submitting -> Running with the server-issued
// session identity. closeStream is called when the session reaches a
// terminal phase or the user stops it.
func (r *Reducer) Submitted(resp *client.TrainingResponse, closeStream func()) {
	if r.phase != Submitting {
		return
	}
	r.sess.ID = resp.SessionID
	r.sess.ModelSummary = resp.ModelSummary
	r.sess.InputShape = resp.InputShape
	r.sess.OutputShape = resp.OutputShape
	r.phase = Running
	r.closeStream = closeStream
	r.bump()
}

// SubmitFailed transitions Submitting -> Idle. No partial session is
// retained; the failure is surfaced through the snapshot.
func (r *Reducer) SubmitFailed(err error) {
	if r.phase != Submitting {
		return
	}
	r.phase = Idle
	r.sess = nil
	r.lastErr = err.Error()
	r.bump()
}

// Apply folds one progress event into the session. Events arriving after
// a terminal transition are dropped, not appended.
func (r *Reducer) Apply(ev client.ProgressEvent) {
	if r.phase != Running {
		return
	}
	switch ev.Type {
	case client.EventStarted:
		if ev.Epochs > 0 {
			r.sess.TotalEpochs = ev.Epochs
		}
		r.bump()

	case client.EventEpoch:
		r.sess.History = append(r.sess.History, ev)
		r.bump()

	case client.EventComplete:
		r.sess.Final = ev.FinalMetrics
		r.phase = Completed
		r.close()
		r.bump()

	case client.EventError:
		msg := ev.Message
		if msg == "" {
			msg = "training failed"
		}
		r.lastErr = msg
		r.phase = Failed
		r.close()
		r.bump()
	}
}

// StreamClosed handles the channel's close notification. An unexpected
// close while Running fails the session; after a terminal transition or
// user stop it is the expected cleanup signal and a no-op.
func (r *Reducer) StreamClosed(err error) {
	if r.phase != Running {
		return
	}
	if err != nil {
		r.lastErr = err.Error()
	} else {
		r.lastErr = "connection to training backend lost"
	}
	r.phase = Failed
	r.close()
	r.bump()
}

// Stop is the user cancellation action: Running -> Idle with the channel
// closed. The session record is retained for post-mortem display until
// the next Start.
func (r *Reducer) Stop() {
	if r.phase != Running {
		return
	}
	r.phase = Idle
	r.close()
	r.bump()
}

// ClearError drops the surfaced failure message.
func (r *Reducer) ClearError() {
	if r.lastErr != "" {
		r.lastErr = ""
		r.bump()
	}
}

// Snapshot returns the current observable state. The session pointer is
// shared; callers treat it as read-only.
func (r *Reducer) Snapshot() Snapshot {
	return Snapshot{
		Phase:   r.phase,
		Session: r.sess,
		Err:     r.lastErr,
		Version: r.version,
	}
}

// Version increments on every state change, letting observers detect
// staleness without comparing snapshots.
func (r *Reducer) Version() uint64 { return r.version }

func (r *Reducer) bump() { r.version++ }

func (r *Reducer) close() {
	if r.closeStream != nil {
		r.closeStream()
		r.closeStream = nil
	}
}
