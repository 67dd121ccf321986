package editor

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/folio-journal/backend/internal/content"
)

var (
	// ErrSessionNotFound indicates a token whose session has been closed or
	// never existed.
	ErrSessionNotFound = errors.New("editor: session not found")

	errMissingIDProvider = errors.New("id provider is required")
)

// IDProvider issues session identifiers.
type IDProvider interface {
	NewID() (string, error)
}

// RegistryConfig describes the dependencies of the session registry.
type RegistryConfig struct {
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Registry holds the open editor sessions in memory, keyed by session id.
type Registry struct {
	mu         sync.Mutex
	sessions   map[string]*Session
	idProvider IDProvider
	logger     *zap.Logger
}

// NewRegistry constructs an empty session registry.
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	if cfg.IDProvider == nil {
		return nil, errMissingIDProvider
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions:   map[string]*Session{},
		idProvider: cfg.IDProvider,
		logger:     logger,
	}, nil
}

// Open creates and registers a session for the given draft state.
func (r *Registry) Open(entryID *int64, text string, format content.Format) (*Session, error) {
	id, err := r.idProvider.NewID()
	if err != nil {
		return nil, err
	}
	session := NewSession(SessionConfig{
		ID:      id,
		EntryID: entryID,
		Text:    text,
		Format:  format,
		Logger:  r.logger,
	})
	r.mu.Lock()
	r.sessions[id] = session
	r.mu.Unlock()
	return session, nil
}

// Get returns the session for an id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Close removes a session, releasing any gesture it still holds.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	session, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	session.EndImageResize()
	return nil
}
