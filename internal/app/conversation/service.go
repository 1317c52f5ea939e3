// Package conversation orchestrates a single chat round-trip: append the
// user message, open a streaming completion and merge arriving fragments
// into the placeholder assistant message.
package conversation

import (
	"context"
	"strings"
	"sync"

	"github.com/nexuspro/nexus/internal/adapters/storage/memory"
	"github.com/nexuspro/nexus/internal/domain"
	"github.com/nexuspro/nexus/internal/observability"
)

// FragmentObserver receives each raw fragment as it is applied to the
// store, in arrival order. Used by the SSE endpoint; may be nil.
type FragmentObserver func(delta string)

type Service struct {
	streamer  domain.CompletionStreamer
	workspace *memory.WorkspaceStore
	credStore domain.CredentialStore

	mu      sync.Mutex
	config  domain.ModelConfig
	modelID string
	creds   domain.Credentials
}

// NewService wires the controller. The credential blob is loaded once
// here and lives in memory afterwards; every edit is persisted in full.
func NewService(
	streamer domain.CompletionStreamer,
	workspace *memory.WorkspaceStore,
	credStore domain.CredentialStore,
) (*Service, error) {
	creds, err := credStore.Load()
	if err != nil {
		return nil, err
	}

	return &Service{
		streamer:  streamer,
		workspace: workspace,
		credStore: credStore,
		config:    domain.DefaultConfig(),
		modelID:   domain.DefaultModelID(),
		creds:     creds,
	}, nil
}

// Workspace exposes the session store's read surface to the presentation
// layer.
func (s *Service) Workspace() *memory.WorkspaceStore {
	return s.workspace
}

// NewSession creates a session on the currently selected model and makes
// it active.
func (s *Service) NewSession() *domain.Session {
	s.mu.Lock()
	modelID := s.modelID
	s.mu.Unlock()

	return s.workspace.CreateSession(modelID)
}

// EnsureActiveSession creates a fresh default session whenever the store
// has none, and returns the active one.
func (s *Service) EnsureActiveSession() *domain.Session {
	if id := s.workspace.ActiveSessionID(); id != "" {
		if sess, ok := s.workspace.Session(id); ok {
			return sess
		}
	}
	return s.NewSession()
}

func (s *Service) SelectSession(id domain.SessionID) {
	s.workspace.SelectSession(id)
}

// DeleteSession removes the session; emptying the store triggers
// auto-creation of a fresh default session.
func (s *Service) DeleteSession(id domain.SessionID) {
	s.workspace.DeleteSession(id)
	if s.workspace.ActiveSessionID() == "" {
		s.NewSession()
	}
}

// Send runs one round-trip against the active session.
func (s *Service) Send(ctx context.Context, text string) (*domain.Message, error) {
	sessionID := s.workspace.ActiveSessionID()
	if sessionID == "" {
		return nil, domain.ErrNoActiveSession
	}
	return s.SendTo(ctx, sessionID, text, nil)
}

// SendTo runs one round-trip against a specific session. It returns once
// the stream settles, with the assistant message holding whatever content
// arrived. Stream failures do not escape: the operation settles with the
// partial content, the failure is logged, and no retry happens. The
// advisory busy flag rejects a second concurrent send for the same
// session with ErrSessionBusy; other sessions may stream in parallel.
func (s *Service) SendTo(ctx context.Context, sessionID domain.SessionID, text string, observe FragmentObserver) (*domain.Message, error) {
	session, ok := s.workspace.Session(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if !s.workspace.AcquireBusy(sessionID) {
		return nil, domain.ErrSessionBusy
	}
	defer s.workspace.SetBusy(sessionID, false)

	log := observability.LoggerFromContext(ctx).With(
		"session_id", sessionID,
		"model_id", session.ModelID,
	)

	// History snapshot as it existed before this send; the new user turn
	// travels separately and is never duplicated into it.
	history := make([]domain.Message, len(session.Messages))
	for i, m := range session.Messages {
		history[i] = *m
	}

	s.workspace.AppendUserMessage(sessionID, text)
	messageID, ok := s.workspace.BeginAssistantMessage(sessionID)
	if !ok {
		// Session deleted between the snapshot and now.
		return nil, domain.ErrSessionNotFound
	}

	s.mu.Lock()
	cfg := s.config
	s.mu.Unlock()

	fragments, err := s.streamer.StreamCompletion(ctx, domain.CompletionRequest{
		ModelID:  session.ModelID,
		History:  history,
		UserText: text,
		Config:   cfg,
	})
	if err != nil {
		log.Errorw("failed to open completion stream", "error", err)
		s.workspace.SettleMessage(sessionID, messageID)
		return s.assistantMessage(sessionID, messageID), nil
	}

	var full strings.Builder
	var streamErr error

consume:
	for {
		select {
		case <-ctx.Done():
			streamErr = ctx.Err()
			break consume
		case frag, open := <-fragments:
			if !open {
				break consume
			}
			if frag.Err != nil {
				streamErr = frag.Err
				break consume
			}
			full.WriteString(frag.Text)
			// Full accumulated value, not the delta: the store always
			// holds the complete text so far.
			s.workspace.SetMessageContent(sessionID, messageID, full.String())
			if observe != nil {
				observe(frag.Text)
			}
		}
	}

	s.workspace.SettleMessage(sessionID, messageID)

	if streamErr != nil {
		log.Errorw("completion stream failed, keeping partial content",
			"error", streamErr,
			"received_chars", full.Len(),
		)
	} else {
		log.Infow("completion stream settled", "received_chars", full.Len())
	}

	return s.assistantMessage(sessionID, messageID), nil
}

// assistantMessage returns the settled message snapshot, or nil when the
// session vanished mid-stream.
func (s *Service) assistantMessage(sessionID domain.SessionID, messageID domain.MessageID) *domain.Message {
	session, ok := s.workspace.Session(sessionID)
	if !ok {
		return nil
	}
	for _, m := range session.Messages {
		if m.ID == messageID {
			return m
		}
	}
	return nil
}

// Config returns the current generation configuration.
func (s *Service) Config() domain.ModelConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// UpdateConfig merges the patch field-by-field and returns the result.
// Input sanitation is the presentation layer's job; values are stored as
// given.
func (s *Service) UpdateConfig(patch domain.ConfigPatch) domain.ModelConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = patch.Apply(s.config)
	return s.config
}

// SelectedModel returns the model id used for new sessions.
func (s *Service) SelectedModel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelID
}

// SelectModel switches the model used for new sessions.
func (s *Service) SelectModel(id string) error {
	if _, ok := domain.FindModel(id); !ok {
		return domain.ErrModelNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modelID = id
	return nil
}

// Credentials returns the in-memory credential blob.
func (s *Service) Credentials() domain.Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds
}

// UpdateCredential edits one provider's key and persists the whole blob.
func (s *Service) UpdateCredential(provider, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := s.creds
	if err := updated.Set(provider, value); err != nil {
		return err
	}
	if err := s.credStore.Save(updated); err != nil {
		return err
	}
	s.creds = updated
	return nil
}
