// Package session implements the client-side state machine for one logical
// code run against the execution gateway.
//
// The backends only support single-shot, non-interactive execution, so a
// program that reads from standard input cannot be fed values while it runs.
// Instead the session estimates how many values the program will read (see
// internal/analyzer), collects them from the user one at a time, and issues
// exactly one gateway call with all of them joined as the stdin payload.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/rs/xid"

	"github.com/sakif/coderunner/internal/analyzer"
	"github.com/sakif/coderunner/internal/provider"
)

// State is the session's position in the run lifecycle.
type State int

const (
	StateIdle State = iota
	StateDetecting
	StateAwaitingInput
	StateSubmitting
	StateCompleted
	StateError
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDetecting:
		return "detecting"
	case StateAwaitingInput:
		return "awaiting-input"
	case StateSubmitting:
		return "submitting"
	case StateCompleted:
		return "completed"
	case StateError:
		return "error"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

const initialPrompt = "Enter value: "

// Runner issues one execution call to the gateway. Implemented by
// gwclient.Client; tests substitute their own.
type Runner interface {
	Run(ctx context.Context, code, stdin string) (*provider.Result, error)
}

// Snapshot is the caller-visible session state at one point in time.
type Snapshot struct {
	State       State
	IsRunning   bool
	Output      string
	Error       string
	InputPrompt string
	ShowInput   bool
}

// Session drives one run at a time. All methods are safe for concurrent use;
// at most one gateway call is ever in flight.
type Session struct {
	runner Runner
	logger *slog.Logger

	mu       sync.Mutex
	state    State
	code     string
	inputs   []string
	required int
	output   strings.Builder
	errText  string
	prompt   string
	running  bool

	// gen identifies the current run. A gateway response whose generation no
	// longer matches (the run was stopped or restarted) is discarded.
	gen uint64
}

// New creates an idle session backed by the given runner.
func New(runner Runner, logger *slog.Logger) *Session {
	return &Session{
		runner: runner,
		logger: logger,
		state:  StateIdle,
	}
}

// Run starts a run for code with no caller-supplied stdin. If the analyzer
// detects required input values the session enters AwaitingInput and waits
// for SubmitInput calls; otherwise it submits immediately with empty stdin.
// Either way the session counts as running until the run finishes or is
// stopped — even while no network call has been made yet.
func (s *Session) Run(ctx context.Context, code string) {
	s.start(ctx, code, "", false)
}

// RunWithInput starts a run with stdin already supplied, skipping input
// collection entirely.
func (s *Session) RunWithInput(ctx context.Context, code, stdin string) {
	s.start(ctx, code, stdin, true)
}

func (s *Session) start(ctx context.Context, code, stdin string, haveStdin bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked()
	s.gen++
	s.code = code
	s.running = true
	s.state = StateDetecting

	runID := xid.New().String()
	s.required = analyzer.Count(code)
	s.logger.Debug("run started",
		slog.String("run", runID),
		slog.Int("requiredInputs", s.required),
	)

	if haveStdin || s.required == 0 {
		s.submitLocked(ctx, stdin)
		return
	}

	s.state = StateAwaitingInput
	s.prompt = initialPrompt
}

// SubmitInput records one user-provided stdin value. Calls made while the
// session is not awaiting input — including while a gateway call is already
// in flight — are silently ignored, which is what prevents duplicate or
// racing submissions.
func (s *Session) SubmitInput(ctx context.Context, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingInput {
		return
	}

	s.inputs = append(s.inputs, value)
	// Echo the value into the output log in submission order, the way a
	// terminal would show what was typed.
	s.output.WriteString(value + "\n")

	if len(s.inputs) < s.required {
		s.prompt = fmt.Sprintf("Enter value (%d/%d): ", len(s.inputs)+1, s.required)
		return
	}

	s.prompt = ""
	s.submitLocked(ctx, strings.Join(s.inputs, "\n"))
}

// submitLocked transitions to Submitting and launches the single gateway
// call for this run. Caller must hold s.mu.
func (s *Session) submitLocked(ctx context.Context, stdin string) {
	s.state = StateSubmitting
	gen := s.gen
	code := s.code

	go func() {
		res, err := s.runner.Run(ctx, code, stdin)
		s.apply(gen, res, err)
	}()
}

// apply installs a gateway response, unless the run it belongs to has been
// stopped or superseded in the meantime.
func (s *Session) apply(gen uint64, res *provider.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		s.logger.Debug("discarding stale execution response")
		return
	}

	s.running = false

	if err != nil {
		// Transport failure: keep the echo log, surface the message.
		s.state = StateError
		s.errText = err.Error()
		return
	}

	// The program's real output replaces the echoed-input log.
	s.output.Reset()
	s.output.WriteString(res.Output)

	if res.Success {
		s.state = StateCompleted
		return
	}

	s.state = StateError
	if res.Error != "" {
		s.errText = res.Error
	} else {
		s.errText = "execution failed"
	}
}

// Stop abandons the current run. It cannot abort a call already sent to the
// gateway, but a response arriving afterwards is discarded.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.state = StateStopped
	s.running = false
	s.inputs = nil
	s.required = 0
	s.prompt = ""
}

// Reset returns the session to Idle, clearing everything including the
// output and error logs. Like Stop, it invalidates any in-flight response.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.resetLocked()
	s.state = StateIdle
}

func (s *Session) resetLocked() {
	s.code = ""
	s.inputs = nil
	s.required = 0
	s.output.Reset()
	s.errText = ""
	s.prompt = ""
	s.running = false
}

// ClearOutput erases the output log without touching the run state.
func (s *Session) ClearOutput() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output.Reset()
}

// ClearError erases the error text without touching the run state.
func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errText = ""
}

// Snapshot returns the current caller-visible state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		State:       s.state,
		IsRunning:   s.running,
		Output:      s.output.String(),
		Error:       s.errText,
		InputPrompt: s.prompt,
		ShowInput:   s.state == StateAwaitingInput,
	}
}
