package session

import (
	"context"
	"testing"
	"time"

	"gametable/internal/common/clock/mocks"
	"gametable/internal/models"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type MemoryRepositoryTestSuite struct {
	suite.Suite
	mockCtrl  *gomock.Controller
	mockClock *mocks.MockClock
	repo      *memoryRepository
	ctx       context.Context
	testNow   time.Time
}

func (s *MemoryRepositoryTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockClock = mocks.NewMockClock(s.mockCtrl)
	s.testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	// Tests advance s.testNow to simulate the passage of time
	s.mockClock.EXPECT().Now().DoAndReturn(func() time.Time {
		return s.testNow
	}).AnyTimes()

	repo, err := NewMemory(&Config{
		Clock:             s.mockClock,
		ArchiveTTL:        5 * time.Minute,
		ArchiveMaxEntries: 3,
	})
	s.Require().NoError(err)
	s.repo = repo

	s.ctx = context.Background()
}

func TestMemoryRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(MemoryRepositoryTestSuite))
}

func (s *MemoryRepositoryTestSuite) newSession(id, channelID string, players ...string) *models.Session {
	session := &models.Session{
		ID:        id,
		GameType:  "highroll",
		GuildID:   "test-guild-id",
		ChannelID: channelID,
		HostID:    "test-host-id",
		Status:    models.SessionStatusWaiting,
		Phase:     "lobby",
		CreatedAt: s.testNow,
	}
	for i, playerID := range players {
		session.Players = append(session.Players, &models.Player{
			ID:       playerID,
			Name:     "Player " + playerID,
			Slot:     i + 1,
			Status:   models.PlayerStatusWaiting,
			JoinedAt: s.testNow,
		})
	}
	return session
}

func (s *MemoryRepositoryTestSuite) TestSaveBumpsVersionMonotonically() {
	session := s.newSession("session-1", "channel-1")

	out, err := s.repo.SaveSession(s.ctx, &SaveSessionInput{Session: session})
	s.Require().NoError(err)
	s.Equal(int64(1), out.Session.Version)

	out, err = s.repo.SaveSession(s.ctx, &SaveSessionInput{Session: out.Session})
	s.Require().NoError(err)
	s.Equal(int64(2), out.Session.Version)

	// Saving a stale copy still bumps past the stored version
	out, err = s.repo.SaveSession(s.ctx, &SaveSessionInput{Session: session})
	s.Require().NoError(err)
	s.Equal(int64(3), out.Session.Version)
}

func (s *MemoryRepositoryTestSuite) TestSaveCannotResurrectArchivedSession() {
	session := s.newSession("session-1", "channel-1", "player-a")
	out, err := s.repo.SaveSession(s.ctx, &SaveSessionInput{Session: session})
	s.Require().NoError(err)

	// A caller kept this copy from before the session ended
	stale := out.Session.Clone()

	ended := out.Session
	ended.Status = models.SessionStatusCompleted
	s.Require().NoError(s.repo.ArchiveSession(s.ctx, &ArchiveSessionInput{Session: ended}))

	_, err = s.repo.SaveSession(s.ctx, &SaveSessionInput{Session: stale})
	s.Require().ErrorIs(err, ErrSessionNotFound)

	_, err = s.repo.GetSession(s.ctx, &GetSessionInput{SessionID: "session-1"})
	s.Require().ErrorIs(err, ErrSessionNotFound)

	_, err = s.repo.GetSessionByChannel(s.ctx, &GetSessionByChannelInput{ChannelID: "channel-1"})
	s.Require().ErrorIs(err, ErrSessionNotFound)
}

func (s *MemoryRepositoryTestSuite) TestReadsReturnIndependentCopies() {
	session := s.newSession("session-1", "channel-1", "player-a")
	_, err := s.repo.SaveSession(s.ctx, &SaveSessionInput{Session: session})
	s.Require().NoError(err)

	first, err := s.repo.GetSession(s.ctx, &GetSessionInput{SessionID: "session-1"})
	s.Require().NoError(err)

	first.Phase = "mutated"
	first.Players[0].Name = "mutated"

	second, err := s.repo.GetSession(s.ctx, &GetSessionInput{SessionID: "session-1"})
	s.Require().NoError(err)
	s.Equal("lobby", second.Phase)
	s.Equal("Player player-a", second.Players[0].Name)
}

func (s *MemoryRepositoryTestSuite) TestSaveRejectsChannelConflict() {
	_, err := s.repo.SaveSession(s.ctx, &SaveSessionInput{Session: s.newSession("session-1", "channel-1")})
	s.Require().NoError(err)

	_, err = s.repo.SaveSession(s.ctx, &SaveSessionInput{Session: s.newSession("session-2", "channel-1")})
	s.Require().ErrorIs(err, ErrChannelConflict)

	_, err = s.repo.GetSession(s.ctx, &GetSessionInput{SessionID: "session-2"})
	s.Require().ErrorIs(err, ErrSessionNotFound)
}

func (s *MemoryRepositoryTestSuite) TestSaveRejectsPlayerInOtherSession() {
	_, err := s.repo.SaveSession(s.ctx, &SaveSessionInput{Session: s.newSession("session-1", "channel-1", "player-a")})
	s.Require().NoError(err)

	_, err = s.repo.SaveSession(s.ctx, &SaveSessionInput{Session: s.newSession("session-2", "channel-2", "player-a")})
	s.Require().ErrorIs(err, ErrPlayerConflict)
}

func (s *MemoryRepositoryTestSuite) TestSaveRejectsTerminalSession() {
	session := s.newSession("session-1", "channel-1")
	session.Status = models.SessionStatusCompleted

	_, err := s.repo.SaveSession(s.ctx, &SaveSessionInput{Session: session})
	s.Require().ErrorIs(err, ErrTerminalSave)
}

func (s *MemoryRepositoryTestSuite) TestIndexLookups() {
	session := s.newSession("session-1", "channel-1", "player-a", "player-b")
	session.MessageID = "message-1"
	_, err := s.repo.SaveSession(s.ctx, &SaveSessionInput{Session: session})
	s.Require().NoError(err)

	byChannel, err := s.repo.GetSessionByChannel(s.ctx, &GetSessionByChannelInput{ChannelID: "channel-1"})
	s.Require().NoError(err)
	s.Equal("session-1", byChannel.ID)

	byMessage, err := s.repo.GetSessionByMessage(s.ctx, &GetSessionByMessageInput{MessageID: "message-1"})
	s.Require().NoError(err)
	s.Equal("session-1", byMessage.ID)

	byPlayer, err := s.repo.GetSessionByPlayer(s.ctx, &GetSessionByPlayerInput{PlayerID: "player-b"})
	s.Require().NoError(err)
	s.Equal("session-1", byPlayer.ID)
}

func (s *MemoryRepositoryTestSuite) TestSaveRetiresStaleIndexEntries() {
	session := s.newSession("session-1", "channel-1", "player-a")
	session.MessageID = "message-1"
	out, err := s.repo.SaveSession(s.ctx, &SaveSessionInput{Session: session})
	s.Require().NoError(err)

	// Player leaves and the message is re-rendered elsewhere
	updated := out.Session
	updated.Players = nil
	updated.MessageID = "message-2"
	_, err = s.repo.SaveSession(s.ctx, &SaveSessionInput{Session: updated})
	s.Require().NoError(err)

	_, err = s.repo.GetSessionByPlayer(s.ctx, &GetSessionByPlayerInput{PlayerID: "player-a"})
	s.Require().ErrorIs(err, ErrSessionNotFound)

	_, err = s.repo.GetSessionByMessage(s.ctx, &GetSessionByMessageInput{MessageID: "message-1"})
	s.Require().ErrorIs(err, ErrSessionNotFound)

	byMessage, err := s.repo.GetSessionByMessage(s.ctx, &GetSessionByMessageInput{MessageID: "message-2"})
	s.Require().NoError(err)
	s.Equal("session-1", byMessage.ID)
}

func (s *MemoryRepositoryTestSuite) TestDeleteClearsIndices() {
	session := s.newSession("session-1", "channel-1", "player-a")
	_, err := s.repo.SaveSession(s.ctx, &SaveSessionInput{Session: session})
	s.Require().NoError(err)

	err = s.repo.DeleteSession(s.ctx, &DeleteSessionInput{SessionID: "session-1"})
	s.Require().NoError(err)

	_, err = s.repo.GetSession(s.ctx, &GetSessionInput{SessionID: "session-1"})
	s.Require().ErrorIs(err, ErrSessionNotFound)

	_, err = s.repo.GetSessionByChannel(s.ctx, &GetSessionByChannelInput{ChannelID: "channel-1"})
	s.Require().ErrorIs(err, ErrSessionNotFound)

	_, err = s.repo.GetSessionByPlayer(s.ctx, &GetSessionByPlayerInput{PlayerID: "player-a"})
	s.Require().ErrorIs(err, ErrSessionNotFound)
}

func (s *MemoryRepositoryTestSuite) TestListByStatus() {
	waiting := s.newSession("session-1", "channel-1")
	_, err := s.repo.SaveSession(s.ctx, &SaveSessionInput{Session: waiting})
	s.Require().NoError(err)

	active := s.newSession("session-2", "channel-2")
	active.Status = models.SessionStatusActive
	_, err = s.repo.SaveSession(s.ctx, &SaveSessionInput{Session: active})
	s.Require().NoError(err)

	waitingList, err := s.repo.ListWaitingSessions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(waitingList, 1)
	s.Equal("session-1", waitingList[0].ID)

	activeList, err := s.repo.ListActiveSessions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(activeList, 1)
	s.Equal("session-2", activeList[0].ID)
}

func (s *MemoryRepositoryTestSuite) TestArchiveRemovesFromLiveStore() {
	session := s.newSession("session-1", "channel-1", "player-a")
	out, err := s.repo.SaveSession(s.ctx, &SaveSessionInput{Session: session})
	s.Require().NoError(err)

	ended := out.Session
	ended.Status = models.SessionStatusCompleted
	err = s.repo.ArchiveSession(s.ctx, &ArchiveSessionInput{Session: ended})
	s.Require().NoError(err)

	_, err = s.repo.GetSession(s.ctx, &GetSessionInput{SessionID: "session-1"})
	s.Require().ErrorIs(err, ErrSessionNotFound)

	_, err = s.repo.GetSessionByChannel(s.ctx, &GetSessionByChannelInput{ChannelID: "channel-1"})
	s.Require().ErrorIs(err, ErrSessionNotFound)

	waitingList, err := s.repo.ListWaitingSessions(s.ctx)
	s.Require().NoError(err)
	s.Empty(waitingList)

	archived, err := s.repo.GetArchivedSession(s.ctx, &GetArchivedSessionInput{SessionID: "session-1"})
	s.Require().NoError(err)
	s.Equal(models.SessionStatusCompleted, archived.Status)
}

func (s *MemoryRepositoryTestSuite) TestArchiveRejectsLiveSession() {
	session := s.newSession("session-1", "channel-1")

	err := s.repo.ArchiveSession(s.ctx, &ArchiveSessionInput{Session: session})
	s.Require().ErrorIs(err, ErrNotTerminal)
}

func (s *MemoryRepositoryTestSuite) TestArchiveEntriesExpire() {
	session := s.newSession("session-1", "channel-1")
	session.Status = models.SessionStatusCancelled
	err := s.repo.ArchiveSession(s.ctx, &ArchiveSessionInput{Session: session})
	s.Require().NoError(err)

	s.testNow = s.testNow.Add(6 * time.Minute)

	_, err = s.repo.GetArchivedSession(s.ctx, &GetArchivedSessionInput{SessionID: "session-1"})
	s.Require().ErrorIs(err, ErrSessionNotFound)

	purged, err := s.repo.PurgeExpired(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, purged)
}

func (s *MemoryRepositoryTestSuite) TestArchiveCapEvictsOldestFirst() {
	for _, id := range []string{"session-1", "session-2", "session-3", "session-4"} {
		session := s.newSession(id, "channel-"+id)
		session.Status = models.SessionStatusCompleted
		err := s.repo.ArchiveSession(s.ctx, &ArchiveSessionInput{Session: session})
		s.Require().NoError(err)
	}

	// Cap is 3: the first entry is gone, the rest remain
	_, err := s.repo.GetArchivedSession(s.ctx, &GetArchivedSessionInput{SessionID: "session-1"})
	s.Require().ErrorIs(err, ErrSessionNotFound)

	for _, id := range []string{"session-2", "session-3", "session-4"} {
		_, err := s.repo.GetArchivedSession(s.ctx, &GetArchivedSessionInput{SessionID: id})
		s.Require().NoError(err)
	}
}

func (s *MemoryRepositoryTestSuite) TestMarkArchivedPayoutDoneIsIdempotent() {
	session := s.newSession("session-1", "channel-1")
	session.Status = models.SessionStatusCompleted
	session.WinnerID = "player-a"
	err := s.repo.ArchiveSession(s.ctx, &ArchiveSessionInput{Session: session})
	s.Require().NoError(err)

	out, err := s.repo.MarkArchivedPayoutDone(s.ctx, &MarkArchivedPayoutDoneInput{SessionID: "session-1"})
	s.Require().NoError(err)
	s.False(out.AlreadyDone)

	out, err = s.repo.MarkArchivedPayoutDone(s.ctx, &MarkArchivedPayoutDoneInput{SessionID: "session-1"})
	s.Require().NoError(err)
	s.True(out.AlreadyDone)
}
