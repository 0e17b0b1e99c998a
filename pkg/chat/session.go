// Package chat owns the ordered tutoring transcript, the request-in-flight
// gate, and the retry slot for failed sends.
package chat

import (
	"strings"
	"time"

	"mergetutor/pkg/checkpoint"
	"mergetutor/pkg/errors"
	"mergetutor/pkg/logging"
)

// Message is one turn of the tutoring conversation.
type Message struct {
	Content   string    `json:"content"`
	FromUser  bool      `json:"from_user"`
	Cacheable bool      `json:"cacheable"`
	Timestamp time.Time `json:"timestamp"`

	// Analysis fields, set at most once per message.
	Analyzed         bool               `json:"analyzed"`
	FoundCheckpoints []checkpoint.Match `json:"found_checkpoints,omitempty"`
}

// Dispatcher issues a completion request for the new user message given
// the prior history, invoking callback exactly once off the render thread.
type Dispatcher interface {
	Complete(userMessage string, history []Message, callback func(text string, err error))
}

// Session is the chat session state. It is owned by the frame loop; the
// only cross-goroutine boundary is the Mailbox the dispatcher posts into.
type Session struct {
	messages    []Message
	checkpoints *checkpoint.Set
	mailbox     *Mailbox
	dispatcher  Dispatcher
	logger      *logging.Logger

	inFlight     bool
	lastError    string
	pendingRetry string
	currentInput string
}

// SeedMessages returns the initial conversation: the tutor's opening
// warm-up prompt.
func SeedMessages() []Message {
	opening := strings.Join([]string{
		"Welcome! I'm excited to help you discover MergeSort through an interactive learning experience. ",
		"Let's start with a simple problem to get us thinking about sorting.\n\n",
		"Imagine you have this sequence of numbers: `[7, 2, 4, 1, 5, 3]`\n\n",
		"If you had to sort these numbers by hand, what would be your natural approach? ",
		"How would you go about it?\n\n",
		"Remember, there's no wrong answer here - I want to understand how you think about sorting intuitively.",
	}, "")

	return []Message{{
		Content:   opening,
		FromUser:  false,
		Cacheable: true,
		Timestamp: time.Now(),
	}}
}

// NewSession creates a session seeded with the opening message.
func NewSession(dispatcher Dispatcher, checkpoints *checkpoint.Set, logger *logging.Logger) *Session {
	return &Session{
		messages:    SeedMessages(),
		checkpoints: checkpoints,
		mailbox:     &Mailbox{},
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// Messages returns the transcript. Callers must treat it as read-only.
func (s *Session) Messages() []Message {
	return s.messages
}

// Checkpoints returns the session's checkpoint set.
func (s *Session) Checkpoints() *checkpoint.Set {
	return s.checkpoints
}

// InFlight reports whether a completion request is outstanding.
func (s *Session) InFlight() bool {
	return s.inFlight
}

// Submit appends a user message and dispatches it with the prior history.
// Blank input and submissions while a request is in flight are rejected.
func (s *Session) Submit(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	if s.inFlight {
		s.logger.Warn(logging.CategoryChat, "submit_rejected", "request already in flight", nil)
		return false
	}

	s.messages = append(s.messages, Message{
		Content:   text,
		FromUser:  true,
		Timestamp: time.Now(),
	})
	s.inFlight = true

	// The message being sent travels separately from its prior context.
	history := make([]Message, len(s.messages)-1)
	copy(history, s.messages[:len(s.messages)-1])

	s.logger.Info(logging.CategoryChat, "message_submitted", "", map[string]any{
		"history_len": len(history),
		"chars":       len(text),
	})

	mailbox := s.mailbox
	s.dispatcher.Complete(text, history, func(response string, err error) {
		if err != nil {
			mailbox.PostError(err)
			return
		}
		mailbox.PostResponse(response)
	})
	return true
}

// DrainPending consumes the mailbox once per frame. It returns true when
// the transcript or error state changed and the frontend should repaint.
func (s *Session) DrainPending() bool {
	response, err := s.mailbox.Take()
	if response == nil && err == nil {
		return false
	}

	if response != nil {
		s.messages = append(s.messages, Message{
			Content:   *response,
			FromUser:  false,
			Timestamp: time.Now(),
		})
		s.analyzeMessage(len(s.messages) - 1)
		s.inFlight = false
		s.logger.Info(logging.CategoryChat, "reply_received", "", map[string]any{
			"chars": len(*response),
		})
	}

	if err != nil {
		s.handleSendError(err)
		s.inFlight = false
	}

	return true
}

func (s *Session) handleSendError(err error) {
	display := err.Error()
	if structured, ok := err.(*errors.Error); ok {
		display = structured.Display()
	}
	s.lastError = display

	if last := s.lastMessage(); last != nil && last.FromUser {
		s.pendingRetry = last.Content
	}

	s.logger.Error(logging.CategoryChat, "send_failed", display, map[string]any{
		"code": string(errors.GetCode(err)),
	})
}

func (s *Session) lastMessage() *Message {
	if len(s.messages) == 0 {
		return nil
	}
	return &s.messages[len(s.messages)-1]
}

// analyzeMessage runs the checkpoint matcher over one message. User
// messages and already-analyzed messages are no-ops.
func (s *Session) analyzeMessage(idx int) {
	if idx < 0 || idx >= len(s.messages) {
		return
	}
	msg := &s.messages[idx]
	if msg.Analyzed || msg.FromUser {
		return
	}

	msg.FoundCheckpoints = s.checkpoints.Analyze(msg.Content)
	msg.Analyzed = true

	for _, match := range msg.FoundCheckpoints {
		s.logger.Info(logging.CategoryCheckpoint, "checkpoint_completed", match.Description, map[string]any{
			"checkpoint_id": match.CheckpointID,
		})
	}
}

// LastError returns the current displayable error, empty when none.
func (s *Session) LastError() string {
	return s.lastError
}

// HasRetry reports whether a failed user message is eligible for retry.
func (s *Session) HasRetry() bool {
	return s.pendingRetry != ""
}

// RetryLastError resubmits the remembered failed message through the
// same path Submit uses, then clears the error panel.
func (s *Session) RetryLastError() bool {
	if s.pendingRetry == "" {
		return false
	}

	text := s.pendingRetry
	if !s.Submit(text) {
		return false
	}

	s.pendingRetry = ""
	s.lastError = ""
	s.logger.Info(logging.CategoryChat, "message_retried", "", map[string]any{
		"chars": len(text),
	})
	return true
}

// DismissError closes the error panel and discards the retry opportunity.
func (s *Session) DismissError() {
	s.lastError = ""
	s.pendingRetry = ""
}

// CurrentInput returns the persisted draft input.
func (s *Session) CurrentInput() string {
	return s.currentInput
}

// SetCurrentInput stores the draft input for persistence.
func (s *Session) SetCurrentInput(text string) {
	s.currentInput = text
}

// Reset restores the seeded conversation and checkpoint set. Auth state
// lives elsewhere and is deliberately untouched.
func (s *Session) Reset() {
	s.messages = SeedMessages()
	s.checkpoints.Reset()
	s.inFlight = false
	s.lastError = ""
	s.pendingRetry = ""
	s.currentInput = ""
	s.logger.Info(logging.CategorySession, "session_reset", "", nil)
}

// Snapshot captures the persistable session state.
type Snapshot struct {
	Messages     []Message               `json:"messages"`
	Checkpoints  []checkpoint.Checkpoint `json:"checkpoints"`
	CurrentInput string                  `json:"current_input"`
}

// Snapshot returns the state persisted across restarts.
func (s *Session) Snapshot() Snapshot {
	messages := make([]Message, len(s.messages))
	copy(messages, s.messages)
	return Snapshot{
		Messages:     messages,
		Checkpoints:  s.checkpoints.All(),
		CurrentInput: s.currentInput,
	}
}

// Restore replaces the session state from a persisted snapshot. A
// snapshot with no messages or invalid checkpoints is rejected and the
// seeded state kept.
func (s *Session) Restore(snap Snapshot) error {
	if len(snap.Messages) == 0 {
		return errors.New(errors.ErrCodeStorageRead, "snapshot has no messages")
	}
	if err := s.checkpoints.Restore(snap.Checkpoints); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageRead, "snapshot checkpoints invalid")
	}
	s.messages = make([]Message, len(snap.Messages))
	copy(s.messages, snap.Messages)
	s.currentInput = snap.CurrentInput
	s.inFlight = false
	s.lastError = ""
	s.pendingRetry = ""
	return nil
}
