// Package app drives the frame loop: one render thread draining async
// results once per frame and routing learner input, never blocking on I/O.
package app

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"mergetutor/pkg/auth"
	"mergetutor/pkg/chat"
	"mergetutor/pkg/logging"
	"mergetutor/pkg/scroll"
	"mergetutor/pkg/storage"
	"mergetutor/pkg/terminal"
)

const (
	frameInterval = 50 * time.Millisecond
	lessonTitle   = "Week 12 - Recursion and MergeSort"

	// Rows reserved for the prompt when computing the history viewport.
	reservedRows = 4
)

// App owns the frame loop and the wiring between components.
type App struct {
	session   *chat.Session
	heights   *scroll.HeightModel
	authState *auth.State
	flow      *auth.Flow
	store     *storage.Store
	writer    *terminal.Writer
	logger    *logging.Logger
	sessionID string

	in io.Reader

	rendered     int // messages already printed this run
	authActive   bool
	resetPending bool
	scrollOffset float64
	viewportRows float64

	input chan string
	quit  bool
}

// New wires an App. The store may be nil (no persistence).
func New(session *chat.Session, heights *scroll.HeightModel, authState *auth.State, flow *auth.Flow, store *storage.Store, writer *terminal.Writer, logger *logging.Logger, sessionID string, in io.Reader) *App {
	return &App{
		session:      session,
		heights:      heights,
		authState:    authState,
		flow:         flow,
		store:        store,
		writer:       writer,
		logger:       logger,
		sessionID:    sessionID,
		in:           in,
		viewportRows: 24 - reservedRows,
		input:        make(chan string, 4),
	}
}

// Restore loads persisted app and auth state. Either blob may be absent
// or invalid; the seeded defaults are kept in that case.
func (a *App) Restore() {
	if a.store == nil {
		return
	}

	var snap chat.Snapshot
	if ok, err := a.store.LoadJSON(storage.KeyAppState, &snap); err == nil && ok {
		if err := a.session.Restore(snap); err != nil {
			a.logger.Warn(logging.CategoryStorage, "app_state_rejected", err.Error(), nil)
		}
	} else if err != nil {
		a.logger.Warn(logging.CategoryStorage, "app_state_load_failed", err.Error(), nil)
	}

	var persisted auth.Persisted
	if ok, err := a.store.LoadJSON(storage.KeyAuthState, &persisted); err == nil && ok {
		a.authState.Restore(persisted)
	} else if err != nil {
		a.logger.Warn(logging.CategoryStorage, "auth_state_load_failed", err.Error(), nil)
	}
}

// Persist writes both state blobs. App and auth state are independent.
func (a *App) Persist() {
	if a.store == nil {
		return
	}
	if err := a.store.SaveJSON(storage.KeyAppState, a.session.Snapshot()); err != nil {
		a.logger.Error(logging.CategoryStorage, "app_state_save_failed", err.Error(), nil)
	}
	if err := a.store.SaveJSON(storage.KeyAuthState, a.authState.Snapshot()); err != nil {
		a.logger.Error(logging.CategoryStorage, "auth_state_save_failed", err.Error(), nil)
	}
	if err := a.store.TouchSession(a.sessionID, len(a.session.Messages())); err != nil {
		a.logger.Warn(logging.CategoryStorage, "session_touch_failed", err.Error(), nil)
	}
}

// Run drives the frame loop until the learner quits or input ends.
func (a *App) Run() error {
	a.writer.Header(lessonTitle)
	if email, ok := a.authState.Email(); ok && a.authState.SignedIn() {
		a.writer.Dim("Logged in as: " + email)
	}
	a.writer.CheckpointPanel(a.session.Checkpoints().All())
	a.writer.Dim("Type a message to talk to the tutor. /help lists commands.")
	a.renderNewMessages()

	go a.readInput()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for !a.quit {
		select {
		case line, ok := <-a.input:
			if !ok {
				a.quit = true
				break
			}
			a.handleLine(line)
		case <-ticker.C:
			a.frame()
		}
	}

	a.Persist()
	return nil
}

func (a *App) readInput() {
	scanner := bufio.NewScanner(a.in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		a.input <- scanner.Text()
	}
	close(a.input)
}

// frame drains async results exactly once: auth events first, then the
// completion mailbox, then repaint of whatever changed.
func (a *App) frame() {
	authChanged, signedIn := a.flow.Drain()
	if signedIn {
		a.authActive = false
		if email, ok := a.authState.Email(); ok {
			a.writer.Success("Signed in as " + email)
		}
	} else if authChanged {
		if msg := a.flow.LastError(); msg != "" {
			a.writer.Error(msg)
		}
		if a.authActive {
			a.promptAuthStep()
		}
	}

	if a.session.DrainPending() {
		a.renderNewMessages()
		if msg := a.session.LastError(); msg != "" {
			a.writer.Error(msg)
			if a.session.HasRetry() {
				a.writer.Dim("/retry resends your last message, /dismiss discards it.")
			}
		}
	}
}

// renderNewMessages prints messages added since the last paint and
// records their measured heights for the scroll model.
func (a *App) renderNewMessages() {
	messages := a.session.Messages()
	a.heights.EnsureLen(len(messages))

	for i := a.rendered; i < len(messages); i++ {
		var block string
		if messages[i].FromUser {
			block = a.writer.UserMessage(messages[i].Content)
		} else {
			block = a.writer.AssistantMessage(messages[i].Content)
		}
		a.heights.RecordMeasuredHeight(i, terminal.MeasureHeight(block))
	}
	a.rendered = len(messages)

	if a.heights.FollowBottom() {
		a.scrollOffset = a.heights.BottomOffset(a.viewportRows)
	}
}

func (a *App) handleLine(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}

	if strings.HasPrefix(trimmed, "/") {
		a.handleCommand(trimmed)
		return
	}
	if a.resetPending {
		a.resetPending = false
		a.writer.Dim("Reset cancelled.")
	}

	if a.authActive {
		a.handleAuthInput(trimmed)
		return
	}

	if !a.authState.SignedIn() {
		a.beginSignIn()
		return
	}

	if a.session.InFlight() {
		a.writer.Dim("Still waiting for the tutor's reply...")
		return
	}
	if a.session.Submit(trimmed) {
		a.renderNewMessages()
		a.writer.Dim("Thinking...")
	}
}

func (a *App) handleCommand(cmd string) {
	fields := strings.Fields(cmd)
	rest := strings.TrimSpace(strings.TrimPrefix(cmd, fields[0]))

	switch fields[0] {
	case "/help":
		a.writer.Dim("/progress  show checkpoint progress")
		a.writer.Dim("/history   re-show the recent conversation window")
		a.writer.Dim("/up /down  scroll the history window")
		a.writer.Dim("/retry     resend the last failed message")
		a.writer.Dim("/dismiss   close the error panel")
		a.writer.Dim("/signin    start email sign-in")
		a.writer.Dim("/havecode  enter an already-received code")
		a.writer.Dim("/back      return to email entry")
		a.writer.Dim("/reset     reset the assignment")
		a.writer.Dim("/quit      save and exit")

	case "/quit", "/exit":
		a.quit = true

	case "/progress":
		a.writer.CheckpointPanel(a.session.Checkpoints().All())

	case "/history":
		a.redrawHistory()

	case "/up":
		a.heights.SetFollowBottom(false)
		a.scrollOffset -= a.viewportRows / 2
		if a.scrollOffset < 0 {
			a.scrollOffset = 0
		}
		a.redrawHistory()

	case "/down":
		a.scrollOffset += a.viewportRows / 2
		if a.scrollOffset >= a.heights.BottomOffset(a.viewportRows) {
			a.scrollOffset = a.heights.BottomOffset(a.viewportRows)
			a.heights.SetFollowBottom(true)
		}
		a.redrawHistory()

	case "/retry":
		if !a.session.RetryLastError() {
			a.writer.Dim("Nothing to retry.")
			return
		}
		a.writer.Dim("Retrying...")

	case "/dismiss":
		a.session.DismissError()
		a.writer.Dim("Error dismissed.")

	case "/signin":
		a.beginSignIn()
		if rest != "" {
			a.handleAuthInput(rest)
		}

	case "/havecode":
		a.authActive = true
		a.flow.EnterHaveCode()
		a.promptAuthStep()

	case "/back":
		if a.authActive {
			a.flow.Back()
			a.promptAuthStep()
		}

	case "/reset":
		if !a.resetPending {
			a.resetPending = true
			a.writer.Error("This will reset all progress and cannot be undone!")
			a.writer.Dim("Type /reset again to confirm, anything else to cancel.")
			return
		}
		a.resetPending = false
		a.session.Reset()
		a.heights.Reset()
		a.rendered = 0
		a.scrollOffset = 0
		a.writer.Success("Assignment reset.")
		a.writer.CheckpointPanel(a.session.Checkpoints().All())
		a.renderNewMessages()

	default:
		a.writer.Dim("Unknown command. /help lists commands.")
	}

	if fields[0] != "/reset" {
		a.resetPending = false
	}
}

// redrawHistory re-renders only the window of messages near the current
// scroll position, using the height model's visible range.
func (a *App) redrawHistory() {
	messages := a.session.Messages()
	start, end := a.heights.VisibleRange(a.scrollOffset, a.viewportRows)
	if start >= end {
		a.writer.Dim("(no messages in view)")
		return
	}
	a.writer.Dim(fmt.Sprintf("--- messages %d-%d of %d ---", start+1, end, len(messages)))
	for i := start; i < end && i < len(messages); i++ {
		var block string
		if messages[i].FromUser {
			block = a.writer.UserMessage(messages[i].Content)
		} else {
			block = a.writer.AssistantMessage(messages[i].Content)
		}
		a.heights.RecordMeasuredHeight(i, terminal.MeasureHeight(block))
	}
}

func (a *App) beginSignIn() {
	a.authActive = true
	a.flow.Back()
	a.promptAuthStep()
}

func (a *App) promptAuthStep() {
	switch a.flow.Step() {
	case auth.StepEnterEmail:
		a.writer.Dim("Enter your email to receive a sign-in code (codes are valid for 1 hour),")
		a.writer.Dim("or /havecode if you already have one.")
	case auth.StepEnterCode:
		a.writer.Dim("Enter the code sent to " + a.flow.Email() + " (/back to re-enter email):")
	case auth.StepHaveCode:
		a.writer.Dim("Enter your email and code separated by a space (/back to start over):")
	}
}

// handleAuthInput interprets plain input according to the sign-in step.
func (a *App) handleAuthInput(text string) {
	switch a.flow.Step() {
	case auth.StepEnterEmail:
		a.flow.SetEmail(text)
		a.flow.RequestCode()
		if msg := a.flow.LastError(); msg != "" {
			a.writer.Error(msg)
			return
		}
		a.writer.Dim("Requesting code...")

	case auth.StepEnterCode:
		a.flow.SetCode(text)
		a.flow.Verify()
		if msg := a.flow.LastError(); msg != "" {
			a.writer.Error(msg)
			return
		}
		a.writer.Dim("Verifying...")

	case auth.StepHaveCode:
		fields := strings.Fields(text)
		if len(fields) != 2 {
			a.writer.Error("Please enter your email and code separated by a space")
			return
		}
		a.flow.SetEmail(fields[0])
		a.flow.SetCode(fields[1])
		a.flow.Verify()
		if msg := a.flow.LastError(); msg != "" {
			a.writer.Error(msg)
			return
		}
		a.writer.Dim("Verifying...")
	}
}
