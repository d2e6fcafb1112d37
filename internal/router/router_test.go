package router

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"gametable/internal/common/clock"
	"gametable/internal/customid"
	"gametable/internal/games"
	gameMocks "gametable/internal/games/mocks"
	"gametable/internal/games/vote"
	"gametable/internal/lock"
	"gametable/internal/models"
	sessionRepo "gametable/internal/repositories/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

const testGameType = "mockgame"

type RouterTestSuite struct {
	suite.Suite
	mockCtrl    *gomock.Controller
	mockHandler *gameMocks.MockHandler
	repo        sessionRepo.Repository
	locks       *lock.Manager
	registry    *games.Registry
	router      *Router
	ctx         context.Context
}

func (s *RouterTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockHandler = gameMocks.NewMockHandler(s.mockCtrl)
	s.mockHandler.EXPECT().GameType().Return(testGameType).AnyTimes()

	systemClock := &clock.DefaultClock{}

	repo, err := sessionRepo.NewMemory(&sessionRepo.Config{Clock: systemClock})
	s.Require().NoError(err)
	s.repo = repo

	locks, err := lock.New(&lock.Config{Clock: systemClock})
	s.Require().NoError(err)
	s.locks = locks

	s.registry = games.NewRegistry()
	s.Require().NoError(s.registry.Register(s.mockHandler))

	rt, err := New(&Config{
		SessionRepo: s.repo,
		Locks:       s.locks,
		Registry:    s.registry,
		Logger:      zerolog.Nop(),
	})
	s.Require().NoError(err)
	s.router = rt

	s.ctx = context.Background()
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

// seedSession saves a fresh session and returns the stored copy (version 1)
func (s *RouterTestSuite) seedSession(players ...string) *models.Session {
	session := &models.Session{
		ID:        "test-session-id",
		GameType:  testGameType,
		GuildID:   "test-guild-id",
		ChannelID: "test-channel-id",
		HostID:    "test-host-id",
		Status:    models.SessionStatusActive,
		Phase:     "playing",
	}
	for _, playerID := range players {
		session.Players = append(session.Players, &models.Player{ID: playerID, Status: models.PlayerStatusPlaying})
	}

	out, err := s.repo.SaveSession(s.ctx, &sessionRepo.SaveSessionInput{Session: session})
	s.Require().NoError(err)
	return out.Session
}

// controlID encodes a control identifier snapshotting the given session
func (s *RouterTestSuite) controlID(session *models.Session, action, payload string) string {
	raw, err := customid.Encode(&customid.ActionID{
		SessionID: session.ID,
		Action:    action,
		Payload:   payload,
		Phase:     session.Phase,
		Version:   session.Version,
	})
	s.Require().NoError(err)
	return raw
}

func (s *RouterTestSuite) TestUndecodableIDIsAckedAndSwallowed() {
	ackCalled := false
	handled := s.router.HandleActionEvent(s.ctx, &Event{
		RawCustomID: "join_game",
		ActorID:     "actor-1",
		Ack:         func() error { ackCalled = true; return nil },
	})

	s.True(handled)
	s.True(ackCalled)
}

func (s *RouterTestSuite) TestMissingSessionNotifiesOnce() {
	raw, err := customid.Encode(&customid.ActionID{
		SessionID: "long-gone",
		Action:    "roll",
		Phase:     "playing",
		Version:   3,
	})
	s.Require().NoError(err)

	notices := 0
	event := func() *Event {
		return &Event{
			RawCustomID: raw,
			ActorID:     "actor-1",
			Ack:         func() error { return nil },
			Notify:      func(string) error { notices++; return nil },
		}
	}

	s.True(s.router.HandleActionEvent(s.ctx, event()))
	s.True(s.router.HandleActionEvent(s.ctx, event()))

	s.Equal(1, notices)
}

func (s *RouterTestSuite) TestStaleVersionNeverReachesHandler() {
	s.mockHandler.EXPECT().Concurrency().Return(games.ConcurrencyLockDrop).AnyTimes()
	session := s.seedSession("actor-1")

	stale := *session
	stale.Version = session.Version - 1

	handled := s.router.HandleActionEvent(s.ctx, &Event{
		RawCustomID: s.controlID(&stale, "roll", ""),
		ActorID:     "actor-1",
	})

	s.True(handled)

	// No OnAction expectation is set; a call would fail the controller.
	// The session must also be untouched.
	fresh, err := s.repo.GetSession(s.ctx, &sessionRepo.GetSessionInput{SessionID: session.ID})
	s.Require().NoError(err)
	s.Equal(session.Version, fresh.Version)
}

func (s *RouterTestSuite) TestStalePhaseNeverReachesHandler() {
	s.mockHandler.EXPECT().Concurrency().Return(games.ConcurrencyLockDrop).AnyTimes()
	session := s.seedSession("actor-1")

	stale := *session
	stale.Phase = "lobby"

	s.True(s.router.HandleActionEvent(s.ctx, &Event{
		RawCustomID: s.controlID(&stale, "roll", ""),
		ActorID:     "actor-1",
	}))
}

func (s *RouterTestSuite) TestCommitPersistsAndBumpsVersion() {
	s.mockHandler.EXPECT().Concurrency().Return(games.ConcurrencyLockDrop).AnyTimes()
	session := s.seedSession("actor-1")

	s.mockHandler.EXPECT().
		OnAction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, action *games.ActionContext) error {
			action.Session.Phase = "showdown"
			return action.Commit(ctx)
		})

	s.True(s.router.HandleActionEvent(s.ctx, &Event{
		RawCustomID: s.controlID(session, "roll", ""),
		ActorID:     "actor-1",
	}))

	fresh, err := s.repo.GetSession(s.ctx, &sessionRepo.GetSessionInput{SessionID: session.ID})
	s.Require().NoError(err)
	s.Equal("showdown", fresh.Phase)
	s.Equal(session.Version+1, fresh.Version)
}

func (s *RouterTestSuite) TestLockWithDropDiscardsConcurrentAction() {
	s.mockHandler.EXPECT().Concurrency().Return(games.ConcurrencyLockDrop).AnyTimes()
	session := s.seedSession("actor-1", "actor-2")

	started := make(chan struct{})
	unblock := make(chan struct{})

	s.mockHandler.EXPECT().
		OnAction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, action *games.ActionContext) error {
			close(started)
			<-unblock
			return nil
		}).
		Times(1)

	firstDone := make(chan bool, 1)
	go func() {
		firstDone <- s.router.HandleActionEvent(s.ctx, &Event{
			RawCustomID: s.controlID(session, "roll", ""),
			ActorID:     "actor-1",
		})
	}()

	<-started

	// Second event arrives while the lock is held: dropped, still handled
	handled := s.router.HandleActionEvent(s.ctx, &Event{
		RawCustomID: s.controlID(session, "roll", ""),
		ActorID:     "actor-2",
	})
	s.True(handled)

	close(unblock)
	s.True(<-firstDone)
}

func (s *RouterTestSuite) TestQueueRunsActionsInArrivalOrder() {
	s.mockHandler.EXPECT().Concurrency().Return(games.ConcurrencyQueue).AnyTimes()
	session := s.seedSession("actor-1")

	var mu sync.Mutex
	var order []string
	var wg sync.WaitGroup

	s.mockHandler.EXPECT().
		OnAction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, action *games.ActionContext) error {
			mu.Lock()
			order = append(order, action.Payload)
			mu.Unlock()
			wg.Done()
			return nil
		}).
		Times(5)

	payloads := []string{"one", "two", "three", "four", "five"}
	wg.Add(len(payloads))
	for _, payload := range payloads {
		s.True(s.router.HandleActionEvent(s.ctx, &Event{
			RawCustomID: s.controlID(session, "ballot", payload),
			ActorID:     "actor-1",
		}))
	}

	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	s.Equal(payloads, order)
}

// Every player clicks the controls rendered at round start, so all their
// events carry the same version snapshot. Earlier ballots in the chain bump
// the stored version; the later ballots must still land.
func (s *RouterTestSuite) TestQueuedCommitsDoNotStaleLaterActions() {
	s.Require().NoError(s.registry.Register(vote.New()))

	session := &models.Session{
		ID:        "vote-session",
		GameType:  vote.GameType,
		ChannelID: "vote-channel",
		Status:    models.SessionStatusActive,
		Phase:     "playing",
		Players: []*models.Player{
			{ID: "player-1", Status: models.PlayerStatusPlaying},
			{ID: "player-2", Status: models.PlayerStatusPlaying},
			{ID: "player-3", Status: models.PlayerStatusPlaying},
		},
	}
	out, err := s.repo.SaveSession(s.ctx, &sessionRepo.SaveSessionInput{Session: session})
	s.Require().NoError(err)
	session = out.Session

	for n, actorID := range []string{"player-1", "player-2", "player-3"} {
		option := []string{"yes", "no", "yes"}[n]
		s.True(s.router.HandleActionEvent(s.ctx, &Event{
			RawCustomID: s.controlID(session, vote.ActionBallot, option),
			ActorID:     actorID,
		}))
	}

	s.Require().Eventually(func() bool {
		fresh, err := s.repo.GetSession(s.ctx, &sessionRepo.GetSessionInput{SessionID: session.ID})
		return err == nil && fresh.Phase == "closed"
	}, time.Second, 5*time.Millisecond)

	fresh, err := s.repo.GetSession(s.ctx, &sessionRepo.GetSessionInput{SessionID: session.ID})
	s.Require().NoError(err)

	var st struct {
		Ballots map[string]string `json:"ballots"`
	}
	s.Require().NoError(json.Unmarshal(fresh.GameState, &st))
	s.Equal(map[string]string{
		"player-1": "yes",
		"player-2": "no",
		"player-3": "yes",
	}, st.Ballots)
}

func (s *RouterTestSuite) TestDoneRunsAfterQueuedAction() {
	s.mockHandler.EXPECT().Concurrency().Return(games.ConcurrencyQueue).AnyTimes()
	session := s.seedSession("actor-1")

	var mu sync.Mutex
	var order []string
	finished := make(chan struct{})

	s.mockHandler.EXPECT().
		OnAction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, action *games.ActionContext) error {
			mu.Lock()
			order = append(order, "action")
			mu.Unlock()
			return nil
		})

	s.True(s.router.HandleActionEvent(s.ctx, &Event{
		RawCustomID: s.controlID(session, "ballot", "yes"),
		ActorID:     "actor-1",
		Done: func() {
			mu.Lock()
			order = append(order, "done")
			mu.Unlock()
			close(finished)
		},
	}))

	select {
	case <-finished:
	case <-time.After(time.Second):
		s.FailNow("done callback never fired")
	}

	mu.Lock()
	defer mu.Unlock()
	s.Equal([]string{"action", "done"}, order)
}

func (s *RouterTestSuite) TestDoneRunsAfterLockReleased() {
	s.mockHandler.EXPECT().Concurrency().Return(games.ConcurrencyLockDrop).AnyTimes()
	session := s.seedSession("actor-1")

	s.mockHandler.EXPECT().OnAction(gomock.Any(), gomock.Any()).Return(nil)

	// If the lock were still held when Done runs, this acquire would fail
	lockFree := false
	s.True(s.router.HandleActionEvent(s.ctx, &Event{
		RawCustomID: s.controlID(session, "roll", ""),
		ActorID:     "actor-1",
		Done: func() {
			lockFree = s.locks.TryAcquire(session.ID, "done-holder")
		},
	}))

	s.True(lockFree)
	s.locks.Release(session.ID, "done-holder")
}

func (s *RouterTestSuite) TestDroppedActionSkipsDone() {
	s.mockHandler.EXPECT().Concurrency().Return(games.ConcurrencyLockDrop).AnyTimes()
	session := s.seedSession("actor-1", "actor-2")

	started := make(chan struct{})
	unblock := make(chan struct{})

	s.mockHandler.EXPECT().
		OnAction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, action *games.ActionContext) error {
			close(started)
			<-unblock
			return nil
		}).
		Times(1)

	firstDone := make(chan bool, 1)
	go func() {
		firstDone <- s.router.HandleActionEvent(s.ctx, &Event{
			RawCustomID: s.controlID(session, "roll", ""),
			ActorID:     "actor-1",
		})
	}()

	<-started

	doneCalled := false
	s.True(s.router.HandleActionEvent(s.ctx, &Event{
		RawCustomID: s.controlID(session, "roll", ""),
		ActorID:     "actor-2",
		Done:        func() { doneCalled = true },
	}))
	s.False(doneCalled)

	close(unblock)
	s.True(<-firstDone)
}

func (s *RouterTestSuite) TestHandlerPanicIsContainedAndLockReleased() {
	s.mockHandler.EXPECT().Concurrency().Return(games.ConcurrencyLockDrop).AnyTimes()
	session := s.seedSession("actor-1")

	s.mockHandler.EXPECT().
		OnAction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, action *games.ActionContext) error {
			panic("handler exploded")
		})

	s.True(s.router.HandleActionEvent(s.ctx, &Event{
		RawCustomID: s.controlID(session, "roll", ""),
		ActorID:     "actor-1",
	}))

	// The lock was released despite the panic, so the next click processes
	s.mockHandler.EXPECT().OnAction(gomock.Any(), gomock.Any()).Return(nil)

	s.True(s.router.HandleActionEvent(s.ctx, &Event{
		RawCustomID: s.controlID(session, "roll", ""),
		ActorID:     "actor-1",
	}))
}

func (s *RouterTestSuite) TestUnregisteredGameTypeIsSwallowed() {
	session := &models.Session{
		ID:        "unhandled-session",
		GameType:  "roulette",
		ChannelID: "other-channel",
		Status:    models.SessionStatusActive,
		Phase:     "playing",
	}
	out, err := s.repo.SaveSession(s.ctx, &sessionRepo.SaveSessionInput{Session: session})
	s.Require().NoError(err)

	handled := s.router.HandleActionEvent(s.ctx, &Event{
		RawCustomID: s.controlID(out.Session, "spin", ""),
		ActorID:     "actor-1",
	})

	s.True(handled)
}

// drain timing guard: queue workers finish quickly once jobs are done
func (s *RouterTestSuite) TearDownTest() {
	time.Sleep(5 * time.Millisecond)
	s.mockCtrl.Finish()
}
