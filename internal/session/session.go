// Package session holds the per-user conversational scratch state. A session
// is only meaningful while a flow is active and is discarded whole on
// completion, cancellation, or return to the main menu.
package session

import (
	"sync"

	"kopilka/internal/core"
)

type State string

const (
	StateIdle                  State = "idle"
	StateEnteringEntryData     State = "entering_entry_data"
	StateConfirmingNewCategory State = "confirming_new_category"
	StateChoosingRecord        State = "choosing_record"
	StateEnteringUpdatedData   State = "entering_updated_data"
)

type Action string

const (
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Session is one user's scratch state. Never represents more than one flow
// at a time.
type Session struct {
	State State

	// Add flow
	Kind    core.Kind
	Pending *core.Entry // entry waiting on category confirmation

	// Edit/delete flow
	Rows     []core.Entry // snapshot of the recent list as shown
	Selected int          // 1-based position within Rows
	Action   Action

	// Message identifiers produced during the flow, for retraction on
	// completion (the transport does the deleting).
	Messages []int
}

func (s *Session) TrackMessage(id int) {
	s.Messages = append(s.Messages, id)
}

// Store keeps sessions keyed by user identity. Injected into the state
// machine rather than living as a global.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// Get returns the user's session, creating an idle one if none exists.
func (st *Store) Get(userID int64) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[userID]
	if !ok {
		s = &Session{State: StateIdle}
		st.sessions[userID] = s
	}
	return s
}

// Clear discards the user's session entirely.
func (st *Store) Clear(userID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, userID)
}
