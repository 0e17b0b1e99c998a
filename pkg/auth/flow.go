package auth

import (
	"fmt"
	"net/mail"
	"strings"

	"mergetutor/pkg/errors"
	"mergetutor/pkg/logging"
)

// Step is the sign-in flow's current screen.
type Step int

const (
	// StepEnterEmail collects an email before a code is requested.
	StepEnterEmail Step = iota
	// StepEnterCode collects the code sent to a known email.
	StepEnterCode
	// StepHaveCode collects email and code together for users who
	// already possess a code.
	StepHaveCode
)

// EventKind tags async results posted back to the frame loop.
type EventKind int

const (
	EventCodeRequested EventKind = iota
	EventVerified
)

// Event is one async OTP result.
type Event struct {
	Kind EventKind
	Err  error
}

// Flow is the email sign-in state machine. All methods are called from
// the frame loop; network calls run on their own goroutines and report
// back through the buffered event channel, drained once per frame.
type Flow struct {
	state  *State
	client *Client
	logger *logging.Logger

	step      Step
	email     string
	code      string
	lastError string
	verifying bool
	requested bool

	events chan Event
}

// NewFlow creates a sign-in flow bound to the shared auth state.
func NewFlow(state *State, client *Client, logger *logging.Logger) *Flow {
	return &Flow{
		state:  state,
		client: client,
		logger: logger,
		step:   StepEnterEmail,
		events: make(chan Event, 8),
	}
}

// Step returns the current screen.
func (f *Flow) Step() Step { return f.step }

// Email returns the entered email.
func (f *Flow) Email() string { return f.email }

// SetEmail records the entered email.
func (f *Flow) SetEmail(email string) { f.email = strings.TrimSpace(email) }

// SetCode records the entered code.
func (f *Flow) SetCode(code string) { f.code = strings.TrimSpace(code) }

// LastError returns the current inline error message, empty when none.
func (f *Flow) LastError() string { return f.lastError }

// EnterHaveCode jumps straight to combined email+code entry.
func (f *Flow) EnterHaveCode() {
	f.step = StepHaveCode
	f.lastError = ""
}

// Back returns to email entry, clearing the code but not the email.
func (f *Flow) Back() {
	f.step = StepEnterEmail
	f.code = ""
	f.lastError = ""
}

func (f *Flow) validEmail() bool {
	if f.email == "" {
		f.lastError = "Please enter an email address"
		return false
	}
	addr, err := mail.ParseAddress(f.email)
	if err != nil || addr.Address != f.email {
		f.lastError = "Please enter a valid email address"
		return false
	}
	return true
}

// RequestCode validates the email locally, then asks the provider for a
// one-time code asynchronously. Validation failures never reach the
// network.
func (f *Flow) RequestCode() {
	if !f.validEmail() {
		return
	}

	email := f.email
	f.logger.Info(logging.CategoryAuth, "otp_requested", "", nil)
	go func() {
		err := f.client.RequestCode(email)
		f.events <- Event{Kind: EventCodeRequested, Err: err}
	}()
}

// Verify validates inputs locally, then verifies the code asynchronously.
// On provider success the shared auth state is updated from the network
// goroutine (mutex-guarded), and the frame loop learns of it on drain.
func (f *Flow) Verify() {
	if !f.validEmail() {
		return
	}
	if f.code == "" {
		f.lastError = "Please enter the verification code"
		return
	}

	email, code := f.email, f.code
	f.verifying = true
	f.logger.Info(logging.CategoryAuth, "otp_verify_started", "", nil)
	go func() {
		token, err := f.client.VerifyCode(email, code)
		if err == nil {
			f.state.SetSignedIn(email, token)
		}
		f.events <- Event{Kind: EventVerified, Err: err}
	}()
}

// Drain consumes pending events, once per frame. It returns whether any
// state changed and whether sign-in completed this frame.
func (f *Flow) Drain() (changed, signedIn bool) {
	for {
		select {
		case ev := <-f.events:
			changed = true
			if f.handleEvent(ev) {
				signedIn = true
			}
		default:
			return changed, signedIn
		}
	}
}

// handleEvent applies one async result; reports true on sign-in.
func (f *Flow) handleEvent(ev Event) bool {
	switch ev.Kind {
	case EventCodeRequested:
		f.requested = true
		if ev.Err == nil {
			f.step = StepEnterCode
			f.lastError = ""
			return false
		}
		f.lastError = classifyRequestError(ev.Err)
		f.logger.Error(logging.CategoryAuth, "otp_request_failed", ev.Err.Error(), nil)

	case EventVerified:
		f.verifying = false
		if ev.Err == nil {
			f.lastError = ""
			f.logger.Info(logging.CategoryAuth, "signed_in", "", nil)
			return true
		}
		f.lastError = classifyVerifyError(ev.Err)
		f.logger.Error(logging.CategoryAuth, "otp_verify_failed", ev.Err.Error(), nil)
	}
	return false
}

func classifyRequestError(err error) string {
	if errors.IsCode(err, errors.ErrCodeAuthRateLimit) {
		return err.(*errors.Error).Display()
	}
	return fmt.Sprintf("Failed to send code: %s", display(err))
}

func classifyVerifyError(err error) string {
	switch errors.GetCode(err) {
	case errors.ErrCodeAuthRateLimit, errors.ErrCodeAuthCodeExpired,
		errors.ErrCodeAuthInvalidToken, errors.ErrCodeAuthBadResponse:
		return display(err)
	default:
		return fmt.Sprintf("Error: %s", display(err))
	}
}

func display(err error) string {
	if structured, ok := err.(*errors.Error); ok {
		return structured.Display()
	}
	return err.Error()
}
