package chat

import "sync"

// Mailbox is the single-slot handoff between a completion task and the
// frame loop. One response or error may sit in it at a time; the loop
// drains and clears both slots every frame. The lock is held only long
// enough to copy a slot in or out.
type Mailbox struct {
	mu       sync.Mutex
	response *string
	err      error
}

// PostResponse installs a successful completion result.
func (m *Mailbox) PostResponse(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = &text
}

// PostError installs a failed completion result.
func (m *Mailbox) PostError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Take removes and returns whatever the mailbox holds. Both slots are
// cleared; a nil, nil return means the mailbox was empty.
func (m *Mailbox) Take() (response *string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	response, err = m.response, m.err
	m.response, m.err = nil, nil
	return response, err
}
