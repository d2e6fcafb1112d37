package session

import (
	"context"
	"sync"
	"time"

	"gametable/internal/common/clock"
	"gametable/internal/models"
)

const (
	defaultArchiveTTL        = 5 * time.Minute
	defaultArchiveMaxEntries = 500
)

// memoryRepository implements the Repository interface with process-local
// maps. Sessions are intentionally ephemeral; nothing survives a restart.
// One mutex guards the primary map, every secondary index, and the archive,
// so a write is atomic across all of them.
type memoryRepository struct {
	mu    sync.RWMutex
	clock clock.Clock

	sessions  map[string]*models.Session
	byChannel map[string]string
	byMessage map[string]string
	byPlayer  map[string]string
	byStatus  map[models.SessionStatus]map[string]struct{}

	archive *archive
}

// NewMemory creates a new in-memory session store
func NewMemory(cfg *Config) (*memoryRepository, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	ttl := cfg.ArchiveTTL
	if ttl <= 0 {
		ttl = defaultArchiveTTL
	}

	maxEntries := cfg.ArchiveMaxEntries
	if maxEntries <= 0 {
		maxEntries = defaultArchiveMaxEntries
	}

	return &memoryRepository{
		clock:     cfg.Clock,
		sessions:  make(map[string]*models.Session),
		byChannel: make(map[string]string),
		byMessage: make(map[string]string),
		byPlayer:  make(map[string]string),
		byStatus: map[models.SessionStatus]map[string]struct{}{
			models.SessionStatusWaiting: {},
			models.SessionStatusActive:  {},
		},
		archive: newArchive(maxEntries, ttl),
	}, nil
}

// SaveSession persists a session, bumps its version, and updates every
// secondary index in the same critical section. It refuses writes that
// would break the one-live-session-per-channel or per-player invariants.
func (r *memoryRepository) SaveSession(ctx context.Context, input *SaveSessionInput) (*SaveSessionOutput, error) {
	if input == nil || input.Session == nil {
		return nil, ErrNilSession
	}

	if input.Session.ID == "" {
		return nil, ErrEmptySessionID
	}

	if input.Session.Status.Terminal() {
		return nil, ErrTerminalSave
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	incoming := input.Session

	if other, ok := r.byChannel[incoming.ChannelID]; ok && other != incoming.ID {
		if _, live := r.sessions[other]; live {
			return nil, ErrChannelConflict
		}
	}

	for _, p := range incoming.Players {
		if other, ok := r.byPlayer[p.ID]; ok && other != incoming.ID {
			if _, live := r.sessions[other]; live {
				return nil, ErrPlayerConflict
			}
		}
	}

	stored := incoming.Clone()
	if current, ok := r.sessions[incoming.ID]; ok {
		stored.Version = current.Version + 1
		r.unindexLocked(current)
	} else {
		// Only a never-saved session may create an entry. A versioned copy
		// whose ID is absent belongs to a session already archived or
		// deleted, and writing it back would resurrect it.
		if incoming.Version != 0 {
			return nil, ErrSessionNotFound
		}
		stored.Version = 1
	}

	r.sessions[stored.ID] = stored
	r.indexLocked(stored)

	return &SaveSessionOutput{Session: stored.Clone()}, nil
}

// GetSession retrieves a live session by ID
func (r *memoryRepository) GetSession(ctx context.Context, input *GetSessionInput) (*models.Session, error) {
	if input == nil || input.SessionID == "" {
		return nil, ErrEmptySessionID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.sessions[input.SessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	return stored.Clone(), nil
}

// GetSessionByChannel retrieves the live session owned by a channel. A
// dangling index entry left by a crashed cleanup is healed on the way.
func (r *memoryRepository) GetSessionByChannel(ctx context.Context, input *GetSessionByChannelInput) (*models.Session, error) {
	if input == nil || input.ChannelID == "" {
		return nil, StoreError("channel ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lookupLocked(r.byChannel, input.ChannelID)
}

// GetSessionByMessage retrieves the live session rendered to a message
func (r *memoryRepository) GetSessionByMessage(ctx context.Context, input *GetSessionByMessageInput) (*models.Session, error) {
	if input == nil || input.MessageID == "" {
		return nil, StoreError("message ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lookupLocked(r.byMessage, input.MessageID)
}

// GetSessionByPlayer retrieves the live session a player is part of
func (r *memoryRepository) GetSessionByPlayer(ctx context.Context, input *GetSessionByPlayerInput) (*models.Session, error) {
	if input == nil || input.PlayerID == "" {
		return nil, StoreError("player ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lookupLocked(r.byPlayer, input.PlayerID)
}

// DeleteSession removes a session and its index entries without archiving
func (r *memoryRepository) DeleteSession(ctx context.Context, input *DeleteSessionInput) error {
	if input == nil || input.SessionID == "" {
		return ErrEmptySessionID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[input.SessionID]
	if !ok {
		return ErrSessionNotFound
	}

	r.unindexLocked(current)
	delete(r.sessions, input.SessionID)

	return nil
}

// ListWaitingSessions returns all sessions in the waiting lobby phase
func (r *memoryRepository) ListWaitingSessions(ctx context.Context) ([]*models.Session, error) {
	return r.listByStatus(models.SessionStatusWaiting), nil
}

// ListActiveSessions returns all sessions with games in progress
func (r *memoryRepository) ListActiveSessions(ctx context.Context) ([]*models.Session, error) {
	return r.listByStatus(models.SessionStatusActive), nil
}

// ArchiveSession moves a terminal session out of the live store into the
// bounded archive
func (r *memoryRepository) ArchiveSession(ctx context.Context, input *ArchiveSessionInput) error {
	if input == nil || input.Session == nil {
		return ErrNilSession
	}

	if !input.Session.Status.Terminal() {
		return ErrNotTerminal
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.sessions[input.Session.ID]; ok {
		r.unindexLocked(current)
		delete(r.sessions, input.Session.ID)
	}

	r.archive.add(input.Session.Clone(), r.clock.Now())

	return nil
}

// GetArchivedSession retrieves an archived session by ID
func (r *memoryRepository) GetArchivedSession(ctx context.Context, input *GetArchivedSessionInput) (*models.Session, error) {
	if input == nil || input.SessionID == "" {
		return nil, ErrEmptySessionID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.archive.get(input.SessionID, r.clock.Now())
	if stored == nil {
		return nil, ErrSessionNotFound
	}

	return stored.Clone(), nil
}

// MarkArchivedPayoutDone flips the payout flag on an archived session
func (r *memoryRepository) MarkArchivedPayoutDone(ctx context.Context, input *MarkArchivedPayoutDoneInput) (*MarkArchivedPayoutDoneOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, ErrEmptySessionID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := r.archive.get(input.SessionID, r.clock.Now())
	if stored == nil {
		return nil, ErrSessionNotFound
	}

	alreadyDone := stored.PayoutDone
	stored.PayoutDone = true

	return &MarkArchivedPayoutDoneOutput{AlreadyDone: alreadyDone}, nil
}

// PurgeExpired evicts archive entries past their retention window
func (r *memoryRepository) PurgeExpired(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.archive.purge(r.clock.Now()), nil
}

// Close drops all live and archived state. The store is unusable afterwards.
func (r *memoryRepository) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = make(map[string]*models.Session)
	r.byChannel = make(map[string]string)
	r.byMessage = make(map[string]string)
	r.byPlayer = make(map[string]string)
	for status := range r.byStatus {
		r.byStatus[status] = map[string]struct{}{}
	}
	r.archive.clear()
}

func (r *memoryRepository) listByStatus(status models.SessionStatus) []*models.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Session, 0, len(r.byStatus[status]))
	for id := range r.byStatus[status] {
		if stored, ok := r.sessions[id]; ok {
			out = append(out, stored.Clone())
		}
	}

	return out
}

// lookupLocked resolves an index entry to a live session, healing dangling
// entries whose session has already been removed. Callers hold the write lock.
func (r *memoryRepository) lookupLocked(index map[string]string, key string) (*models.Session, error) {
	id, ok := index[key]
	if !ok {
		return nil, ErrSessionNotFound
	}

	stored, ok := r.sessions[id]
	if !ok {
		delete(index, key)
		return nil, ErrSessionNotFound
	}

	return stored.Clone(), nil
}

func (r *memoryRepository) indexLocked(s *models.Session) {
	if s.ChannelID != "" {
		r.byChannel[s.ChannelID] = s.ID
	}

	if s.MessageID != "" {
		r.byMessage[s.MessageID] = s.ID
	}

	for _, p := range s.Players {
		r.byPlayer[p.ID] = s.ID
	}

	if set, ok := r.byStatus[s.Status]; ok {
		set[s.ID] = struct{}{}
	}
}

func (r *memoryRepository) unindexLocked(s *models.Session) {
	if id, ok := r.byChannel[s.ChannelID]; ok && id == s.ID {
		delete(r.byChannel, s.ChannelID)
	}

	if id, ok := r.byMessage[s.MessageID]; ok && id == s.ID {
		delete(r.byMessage, s.MessageID)
	}

	for _, p := range s.Players {
		if id, ok := r.byPlayer[p.ID]; ok && id == s.ID {
			delete(r.byPlayer, p.ID)
		}
	}

	if set, ok := r.byStatus[s.Status]; ok {
		delete(set, s.ID)
	}
}
