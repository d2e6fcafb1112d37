package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"gametable/internal/common/clock"
	"gametable/internal/common/uuid"
	"gametable/internal/games"
	"gametable/internal/lock"
	"gametable/internal/models"
	ledgerRepo "gametable/internal/repositories/rewardledger"
	sessionRepo "gametable/internal/repositories/session"
	"gametable/internal/scheduler"
	"github.com/rs/zerolog"
)

const (
	defaultMaintenanceInterval = 30 * time.Second

	// orphanGrace is how far past its countdown deadline a waiting lobby
	// may sit before a create request treats it as abandoned. Reaching it
	// means both countdown timers were lost.
	orphanGrace = time.Minute

	phaseLobby   = "lobby"
	phasePlaying = "playing"
)

// service implements the Service interface
type service struct {
	repo      sessionRepo.Repository
	ledger    ledgerRepo.Repository
	locks     *lock.Manager
	registry  *games.Registry
	scheduler *scheduler.Orchestrator
	clock     clock.Clock
	uuids     uuid.UUID
	logger    zerolog.Logger
	observer  Observer

	maintenanceEvery time.Duration
	stop             chan struct{}
	stopOnce         sync.Once
}

// New creates a new game session service and starts its maintenance sweep
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.SessionRepo == nil {
		return nil, ErrNilSessionRepo
	}

	if cfg.RewardLedger == nil {
		return nil, ErrNilRewardLedger
	}

	if cfg.Locks == nil {
		return nil, ErrNilLockManager
	}

	if cfg.Registry == nil {
		return nil, ErrNilRegistry
	}

	if cfg.Scheduler == nil {
		return nil, ErrNilScheduler
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	maintenanceEvery := cfg.MaintenanceInterval
	if maintenanceEvery <= 0 {
		maintenanceEvery = defaultMaintenanceInterval
	}

	s := &service{
		repo:             cfg.SessionRepo,
		ledger:           cfg.RewardLedger,
		locks:            cfg.Locks,
		registry:         cfg.Registry,
		scheduler:        cfg.Scheduler,
		clock:            cfg.Clock,
		uuids:            cfg.UUIDGenerator,
		logger:           cfg.Logger,
		observer:         cfg.Observer,
		maintenanceEvery: maintenanceEvery,
		stop:             make(chan struct{}),
	}

	go s.maintenanceLoop()

	return s, nil
}

// SetObserver wires the presentation callback after construction, breaking
// the cycle between the service and its renderer. Call before any session
// is created.
func (s *service) SetObserver(obs Observer) {
	s.observer = obs
}

// Close stops the maintenance sweep and disarms every countdown timer
func (s *service) Close() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.scheduler.Close()
	})
}

// CreateSession opens a new lobby in a Discord channel
func (s *service) CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
	handler, ok := s.registry.Get(input.GameType)
	if !ok {
		return nil, ErrInvalidGameType
	}

	existing, err := s.repo.GetSessionByChannel(ctx, &sessionRepo.GetSessionByChannelInput{
		ChannelID: input.ChannelID,
	})
	if err == nil {
		if !s.isOrphaned(existing) {
			return nil, ErrChannelHasGame
		}

		// A waiting lobby whose countdown is long past lost both of its
		// timers; clean it up and let the create proceed.
		s.logger.Warn().
			Str("session_id", existing.ID).
			Str("channel_id", input.ChannelID).
			Msg("reaping orphaned lobby before create")

		if _, endErr := s.EndSession(ctx, &EndSessionInput{
			SessionID: existing.ID,
			Reason:    models.EndReasonStopped,
		}); endErr != nil {
			return nil, ErrChannelHasGame
		}
	} else if !errors.Is(err, sessionRepo.ErrSessionNotFound) {
		return nil, err
	}

	now := s.clock.Now()
	settings := handler.LobbySettings()

	session := &models.Session{
		ID:        s.uuids.NewUUID(),
		GameType:  input.GameType,
		GuildID:   input.GuildID,
		ChannelID: input.ChannelID,
		HostID:    input.HostID,
		Status:    models.SessionStatusWaiting,
		Phase:     phaseLobby,
		CreatedAt: now,
		Settings:  settings,
		Players: []*models.Player{{
			ID:        input.HostID,
			Name:      input.HostName,
			AvatarURL: input.HostAvatarURL,
			Slot:      assignSlot(&models.Session{Settings: settings}, 0),
			Status:    models.PlayerStatusWaiting,
			JoinedAt:  now,
		}},
	}

	var countdown time.Duration
	if settings.CountdownSeconds > 0 {
		countdown = time.Duration(settings.CountdownSeconds) * time.Second
		session.CountdownDeadline = now.Add(countdown)
	}

	out, err := s.repo.SaveSession(ctx, &sessionRepo.SaveSessionInput{Session: session})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	if countdown > 0 {
		fire := func() { s.countdownFired(out.Session.ID) }
		s.scheduler.Schedule(out.Session.ID, countdown, fire, fire)
	}

	return &CreateSessionOutput{Session: out.Session}, nil
}

// JoinSession seats a player in a waiting lobby
func (s *service) JoinSession(ctx context.Context, input *JoinSessionInput) (*JoinSessionOutput, error) {
	holder, err := s.acquire(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	defer s.release(input.SessionID, holder)

	// Re-read under the lock; the lobby may have moved since the caller
	// looked at it
	session, err := s.repo.GetSession(ctx, &sessionRepo.GetSessionInput{SessionID: input.SessionID})
	if err != nil {
		return nil, ErrSessionNotFound
	}

	if session.Status != models.SessionStatusWaiting {
		return nil, ErrGameAlreadyStarted
	}

	if session.HasPlayer(input.PlayerID) {
		return nil, ErrAlreadyInGame
	}

	if other, err := s.repo.GetSessionByPlayer(ctx, &sessionRepo.GetSessionByPlayerInput{
		PlayerID: input.PlayerID,
	}); err == nil && other.ID != session.ID {
		return nil, ErrPlayerInOtherGame
	}

	if len(session.Players) >= session.Settings.MaxPlayers {
		return nil, ErrGameFull
	}

	session.Players = append(session.Players, &models.Player{
		ID:        input.PlayerID,
		Name:      input.PlayerName,
		AvatarURL: input.AvatarURL,
		Slot:      assignSlot(session, input.PreferredSlot),
		Status:    models.PlayerStatusWaiting,
		JoinedAt:  s.clock.Now(),
	})

	out, err := s.repo.SaveSession(ctx, &sessionRepo.SaveSessionInput{Session: session})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	return &JoinSessionOutput{Session: out.Session}, nil
}

// LeaveSession removes a player from a session. The host leaving a waiting
// lobby tears the whole session down.
func (s *service) LeaveSession(ctx context.Context, input *LeaveSessionInput) (*LeaveSessionOutput, error) {
	holder, err := s.acquire(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	defer s.release(input.SessionID, holder)

	session, err := s.repo.GetSession(ctx, &sessionRepo.GetSessionInput{SessionID: input.SessionID})
	if err != nil {
		return nil, ErrSessionNotFound
	}

	player := session.Player(input.PlayerID)
	if player == nil {
		return nil, ErrNotInGame
	}

	if session.Status == models.SessionStatusWaiting && player.ID == session.HostID {
		ended, err := s.endLocked(ctx, session, "", models.EndReasonHostLeft)
		if err != nil {
			return nil, err
		}
		return &LeaveSessionOutput{Session: ended, Ended: true}, nil
	}

	remaining := make([]*models.Player, 0, len(session.Players)-1)
	for _, p := range session.Players {
		if p.ID != input.PlayerID {
			remaining = append(remaining, p)
		}
	}
	session.Players = remaining

	out, err := s.repo.SaveSession(ctx, &sessionRepo.SaveSessionInput{Session: session})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	return &LeaveSessionOutput{Session: out.Session}, nil
}

// StartGame moves a waiting lobby into play
func (s *service) StartGame(ctx context.Context, input *StartGameInput) (*StartGameOutput, error) {
	holder, err := s.acquire(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	defer s.release(input.SessionID, holder)

	session, err := s.repo.GetSession(ctx, &sessionRepo.GetSessionInput{SessionID: input.SessionID})
	if err != nil {
		return nil, ErrSessionNotFound
	}

	if session.Status == models.SessionStatusWaiting && len(session.Players) < session.Settings.MinPlayers {
		return nil, ErrNotEnoughPlayers
	}

	started, err := s.startLocked(ctx, session)
	if err != nil {
		return nil, err
	}

	s.scheduler.Cancel(session.ID)

	return &StartGameOutput{Session: started}, nil
}

// EndSession concludes a session and archives it
func (s *service) EndSession(ctx context.Context, input *EndSessionInput) (*EndSessionOutput, error) {
	holder, err := s.acquire(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	defer s.release(input.SessionID, holder)

	session, err := s.repo.GetSession(ctx, &sessionRepo.GetSessionInput{SessionID: input.SessionID})
	if err != nil {
		return nil, ErrSessionNotFound
	}

	reason := input.Reason
	if reason == "" {
		reason = models.EndReasonFinished
	}

	ended, err := s.endLocked(ctx, session, input.WinnerID, reason)
	if err != nil {
		return nil, err
	}

	return &EndSessionOutput{Session: ended}, nil
}

// MarkPayoutDone flags reward settlement for a session, at most once. It
// consults the live store first, then the archive, so a late reconciliation
// after the session ended still gets an idempotent answer.
func (s *service) MarkPayoutDone(ctx context.Context, input *MarkPayoutDoneInput) (*MarkPayoutDoneOutput, error) {
	holder, err := s.acquire(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	defer s.release(input.SessionID, holder)

	session, err := s.repo.GetSession(ctx, &sessionRepo.GetSessionInput{SessionID: input.SessionID})
	if err == nil {
		if session.PayoutDone {
			return &MarkPayoutDoneOutput{AlreadyDone: true}, nil
		}

		session.PayoutDone = true
		if _, err := s.repo.SaveSession(ctx, &sessionRepo.SaveSessionInput{Session: session}); err != nil {
			return nil, mapStoreErr(err)
		}

		s.recordPayout(ctx, session)
		return &MarkPayoutDoneOutput{AlreadyDone: false}, nil
	}

	archived, err := s.repo.GetArchivedSession(ctx, &sessionRepo.GetArchivedSessionInput{SessionID: input.SessionID})
	if err != nil {
		return nil, ErrSessionNotFound
	}

	out, err := s.repo.MarkArchivedPayoutDone(ctx, &sessionRepo.MarkArchivedPayoutDoneInput{SessionID: input.SessionID})
	if err != nil {
		return nil, ErrSessionNotFound
	}

	if !out.AlreadyDone {
		s.recordPayout(ctx, archived)
	}

	return &MarkPayoutDoneOutput{AlreadyDone: out.AlreadyDone}, nil
}

// AttachMessage records the rendered message backing a session's controls
func (s *service) AttachMessage(ctx context.Context, input *AttachMessageInput) (*AttachMessageOutput, error) {
	holder, err := s.acquire(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	defer s.release(input.SessionID, holder)

	session, err := s.repo.GetSession(ctx, &sessionRepo.GetSessionInput{SessionID: input.SessionID})
	if err != nil {
		return nil, ErrSessionNotFound
	}

	session.MessageID = input.MessageID

	out, err := s.repo.SaveSession(ctx, &sessionRepo.SaveSessionInput{Session: session})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	return &AttachMessageOutput{Session: out.Session}, nil
}

// GetSession retrieves a live session by ID
func (s *service) GetSession(ctx context.Context, input *GetSessionInput) (*GetSessionOutput, error) {
	session, err := s.repo.GetSession(ctx, &sessionRepo.GetSessionInput{SessionID: input.SessionID})
	if err != nil {
		return nil, ErrSessionNotFound
	}

	return &GetSessionOutput{Session: session}, nil
}

// GetSessionByChannel retrieves the live session owned by a channel
func (s *service) GetSessionByChannel(ctx context.Context, input *GetSessionByChannelInput) (*GetSessionByChannelOutput, error) {
	session, err := s.repo.GetSessionByChannel(ctx, &sessionRepo.GetSessionByChannelInput{ChannelID: input.ChannelID})
	if err != nil {
		return nil, ErrSessionNotFound
	}

	return &GetSessionByChannelOutput{Session: session}, nil
}

// countdownFired runs when a lobby deadline (or its safety backstop)
// elapses. It re-validates under the lock: the session may have started,
// ended, or vanished since the timer was armed.
func (s *service) countdownFired(sessionID string) {
	ctx := context.Background()

	holder, err := s.acquire(ctx, sessionID)
	if err != nil {
		// The safety timer is still armed and will retry
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("countdown could not lock session")
		return
	}
	defer s.release(sessionID, holder)

	session, err := s.repo.GetSession(ctx, &sessionRepo.GetSessionInput{SessionID: sessionID})
	if err != nil {
		return
	}

	if session.Status != models.SessionStatusWaiting {
		return
	}

	if len(session.Players) >= session.Settings.MinPlayers {
		started, err := s.startLocked(ctx, session)
		if err != nil {
			s.logger.Error().Err(err).Str("session_id", sessionID).Msg("countdown start failed")
			return
		}

		s.scheduler.Cancel(sessionID)

		if s.observer != nil {
			s.observer.SessionStarted(started)
		}
		return
	}

	ended, err := s.endLocked(ctx, session, "", models.EndReasonNotEnoughPlayers)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("countdown cancel failed")
		return
	}

	if s.observer != nil {
		s.observer.SessionEnded(ended, models.EndReasonNotEnoughPlayers)
	}
}

// startLocked transitions a session into play. Callers hold the session lock.
func (s *service) startLocked(ctx context.Context, session *models.Session) (*models.Session, error) {
	if err := session.Transition(models.SessionStatusActive); err != nil {
		return nil, err
	}

	session.StartedAt = s.clock.Now()
	session.Phase = phasePlaying
	for _, p := range session.Players {
		p.Status = models.PlayerStatusPlaying
	}

	out, err := s.repo.SaveSession(ctx, &sessionRepo.SaveSessionInput{Session: session})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	return out.Session, nil
}

// endLocked moves a session to its terminal status, clears its timers, and
// archives it. Callers hold the session lock.
func (s *service) endLocked(ctx context.Context, session *models.Session, winnerID string, reason models.EndReason) (*models.Session, error) {
	target := reason.TerminalStatus()
	if err := session.Transition(target); err != nil {
		return nil, err
	}

	session.CompletedAt = s.clock.Now()
	if winnerID != "" {
		session.WinnerID = winnerID
		if p := session.Player(winnerID); p != nil {
			p.Status = models.PlayerStatusWinner
		}
	}

	s.scheduler.Cancel(session.ID)

	if err := s.repo.ArchiveSession(ctx, &sessionRepo.ArchiveSessionInput{Session: session}); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("session_id", session.ID).
		Str("game_type", session.GameType).
		Str("reason", string(reason)).
		Str("status", string(session.Status)).
		Msg("session ended")

	if target == models.SessionStatusCompleted && session.WinnerID != "" {
		s.settleWinner(ctx, session)
	}

	return session, nil
}

// settleWinner runs the at-most-once payout path for a completed session
func (s *service) settleWinner(ctx context.Context, session *models.Session) {
	out, err := s.repo.MarkArchivedPayoutDone(ctx, &sessionRepo.MarkArchivedPayoutDoneInput{
		SessionID: session.ID,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", session.ID).Msg("payout flag failed")
		return
	}

	if out.AlreadyDone {
		return
	}

	s.recordPayout(ctx, session)
}

// recordPayout writes the ledger marker. Failures are logged, not
// propagated: the archive keeps the session readable for reconciliation.
func (s *service) recordPayout(ctx context.Context, session *models.Session) {
	_, err := s.ledger.RecordPayout(ctx, &ledgerRepo.RecordPayoutInput{
		Record: &models.PayoutRecord{
			SessionID: session.ID,
			GuildID:   session.GuildID,
			WinnerID:  session.WinnerID,
			PaidAt:    s.clock.Now(),
		},
	})
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", session.ID).Msg("payout record failed")
	}
}

// acquire takes the session lock with the retry ladder, translating
// exhaustion into the caller-visible busy error
func (s *service) acquire(ctx context.Context, sessionID string) (string, error) {
	holder := s.uuids.NewUUID()
	if err := s.locks.Acquire(ctx, sessionID, holder); err != nil {
		if errors.Is(err, lock.ErrLockBusy) {
			return "", ErrBusyTryAgain
		}
		return "", err
	}

	return holder, nil
}

// release is best effort; a refused release means the TTL already expired
// and another holder took over, which is logged rather than swallowed
func (s *service) release(sessionID, holder string) {
	if !s.locks.Release(sessionID, holder) {
		s.logger.Warn().Str("session_id", sessionID).Msg("lock release refused, holder superseded")
	}
}

// isOrphaned reports whether a waiting lobby outlived its countdown by the
// grace period, meaning its timers were lost
func (s *service) isOrphaned(session *models.Session) bool {
	if session.Status != models.SessionStatusWaiting {
		return false
	}

	if session.CountdownDeadline.IsZero() {
		return false
	}

	return s.clock.Now().After(session.CountdownDeadline.Add(orphanGrace))
}

func (s *service) maintenanceLoop() {
	ticker := time.NewTicker(s.maintenanceEvery)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			archivePurged, err := s.repo.PurgeExpired(context.Background())
			if err != nil {
				s.logger.Error().Err(err).Msg("archive sweep failed")
			}

			locksPurged := s.locks.PurgeExpired()

			if archivePurged > 0 || locksPurged > 0 {
				s.logger.Debug().
					Int("archive_purged", archivePurged).
					Int("locks_purged", locksPurged).
					Msg("maintenance sweep")
			}
		}
	}
}

// assignSlot picks a seat for the next player. Slotted lobbies honour a
// free preferred seat, otherwise take the lowest free one; open lobbies
// have no seats.
func assignSlot(session *models.Session, preferred int) int {
	if session.Settings.LobbyType != models.LobbyTypeSlotted {
		return 0
	}

	taken := make(map[int]bool, len(session.Players))
	for _, p := range session.Players {
		taken[p.Slot] = true
	}

	if preferred >= 1 && preferred <= session.Settings.MaxPlayers && !taken[preferred] {
		return preferred
	}

	for slot := 1; slot <= session.Settings.MaxPlayers; slot++ {
		if !taken[slot] {
			return slot
		}
	}

	return 0
}

// mapStoreErr translates store invariant violations into service errors
func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, sessionRepo.ErrChannelConflict):
		return ErrChannelHasGame
	case errors.Is(err, sessionRepo.ErrPlayerConflict):
		return ErrPlayerInOtherGame
	default:
		return err
	}
}
