package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nexuspro/nexus/internal/domain"
)

// WorkspaceStore owns every session and message plus the active-session
// pointer and the per-session busy flags. All mutation goes through the
// store's lock; mutations against unknown ids are silent no-ops so that
// a stream whose session was deleted mid-flight cannot fault.
type WorkspaceStore struct {
	mu       sync.RWMutex
	sessions []*domain.Session // ordered most-recent-first
	active   domain.SessionID
	busy     map[domain.SessionID]bool
	inFlight map[domain.SessionID]domain.MessageID

	now   func() time.Time
	newID func() string
}

func NewWorkspaceStore() *WorkspaceStore {
	return &WorkspaceStore{
		busy:     make(map[domain.SessionID]bool),
		inFlight: make(map[domain.SessionID]domain.MessageID),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// CreateSession allocates an empty session for the given model, inserts it
// at the front of the ordering and makes it active.
func (s *WorkspaceStore) CreateSession(modelID string) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := &domain.Session{
		ID:        domain.SessionID(s.newID()),
		Title:     domain.DefaultSessionTitle,
		ModelID:   modelID,
		CreatedAt: s.now(),
	}
	s.sessions = append([]*domain.Session{session}, s.sessions...)
	s.active = session.ID

	return cloneSession(session)
}

// SelectSession moves the active pointer; unknown ids are a no-op.
func (s *WorkspaceStore) SelectSession(id domain.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) >= 0 {
		s.active = id
	}
}

// DeleteSession removes the session. If it was active, the pointer falls
// back to the new first session, or to none when the store empties.
func (s *WorkspaceStore) DeleteSession(id domain.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return
	}
	s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
	delete(s.busy, id)
	delete(s.inFlight, id)

	if s.active == id {
		if len(s.sessions) > 0 {
			s.active = s.sessions[0].ID
		} else {
			s.active = ""
		}
	}
}

// AppendUserMessage appends a user-role message; the session's first
// message also names the session. Returns nil on unknown session.
func (s *WorkspaceStore) AppendUserMessage(sessionID domain.SessionID, text string) *domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(sessionID)
	if i < 0 {
		return nil
	}
	session := s.sessions[i]

	msg := &domain.Message{
		ID:        domain.MessageID(s.newID()),
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Content:   text,
		CreatedAt: s.now(),
	}
	if len(session.Messages) == 0 {
		session.Title = domain.DeriveTitle(text)
	}
	session.Messages = append(session.Messages, msg)

	c := *msg
	return &c
}

// BeginAssistantMessage appends an empty assistant placeholder and marks
// it as the session's in-flight message. At most one message per session
// is in flight at a time; a second call simply supersedes the marker.
func (s *WorkspaceStore) BeginAssistantMessage(sessionID domain.SessionID) (domain.MessageID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(sessionID)
	if i < 0 {
		return "", false
	}
	session := s.sessions[i]

	msg := &domain.Message{
		ID:        domain.MessageID(s.newID()),
		SessionID: sessionID,
		Role:      domain.RoleAssistant,
		CreatedAt: s.now(),
	}
	session.Messages = append(session.Messages, msg)
	s.inFlight[sessionID] = msg.ID

	return msg.ID, true
}

// SetMessageContent writes the full accumulated text into the in-flight
// message (replace semantics, not delta append). Writes against a settled
// message, a stale id or a deleted session are no-ops.
func (s *WorkspaceStore) SetMessageContent(sessionID domain.SessionID, messageID domain.MessageID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight[sessionID] != messageID {
		return
	}
	i := s.indexOf(sessionID)
	if i < 0 {
		return
	}
	for _, m := range s.sessions[i].Messages {
		if m.ID == messageID {
			m.Content = content
			return
		}
	}
}

// SettleMessage ends the message's streaming phase, freezing its content.
func (s *WorkspaceStore) SettleMessage(sessionID domain.SessionID, messageID domain.MessageID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight[sessionID] == messageID {
		delete(s.inFlight, sessionID)
	}
}

// AcquireBusy atomically claims the per-session busy flag; false means a
// send is already in flight for that session.
func (s *WorkspaceStore) AcquireBusy(sessionID domain.SessionID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy[sessionID] {
		return false
	}
	s.busy[sessionID] = true
	return true
}

// SetBusy flips the advisory per-session busy flag. The store itself does
// not enforce it.
func (s *WorkspaceStore) SetBusy(sessionID domain.SessionID, busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if busy {
		s.busy[sessionID] = true
	} else {
		delete(s.busy, sessionID)
	}
}

func (s *WorkspaceStore) IsBusy(sessionID domain.SessionID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.busy[sessionID]
}

// ActiveSessionID returns the active pointer, or "" when the store is empty.
func (s *WorkspaceStore) ActiveSessionID() domain.SessionID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.active
}

// Session returns a snapshot copy of one session.
func (s *WorkspaceStore) Session(id domain.SessionID) (*domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return cloneSession(s.sessions[i]), true
}

// Sessions returns snapshot copies of every session in order.
func (s *WorkspaceStore) Sessions() []*domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Session, len(s.sessions))
	for i, sess := range s.sessions {
		out[i] = cloneSession(sess)
	}
	return out
}

func (s *WorkspaceStore) indexOf(id domain.SessionID) int {
	for i, sess := range s.sessions {
		if sess.ID == id {
			return i
		}
	}
	return -1
}

func cloneSession(sess *domain.Session) *domain.Session {
	c := *sess
	c.Messages = make([]*domain.Message, len(sess.Messages))
	for i, m := range sess.Messages {
		mc := *m
		c.Messages[i] = &mc
	}
	return &c
}
