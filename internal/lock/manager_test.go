package lock

import (
	"context"
	"testing"
	"time"

	"gametable/internal/common/clock/mocks"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type LockManagerTestSuite struct {
	suite.Suite
	mockCtrl  *gomock.Controller
	mockClock *mocks.MockClock
	manager   *Manager
	testNow   time.Time
}

func (s *LockManagerTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockClock = mocks.NewMockClock(s.mockCtrl)
	s.testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	s.mockClock.EXPECT().Now().DoAndReturn(func() time.Time {
		return s.testNow
	}).AnyTimes()

	manager, err := New(&Config{
		Clock:   s.mockClock,
		TTL:     2 * time.Second,
		Backoff: []time.Duration{time.Millisecond, time.Millisecond},
	})
	s.Require().NoError(err)
	s.manager = manager
}

func TestLockManagerTestSuite(t *testing.T) {
	suite.Run(t, new(LockManagerTestSuite))
}

func (s *LockManagerTestSuite) TestTryAcquireIsExclusive() {
	s.True(s.manager.TryAcquire("session-1", "holder-a"))
	s.False(s.manager.TryAcquire("session-1", "holder-b"))

	// A different session is unaffected
	s.True(s.manager.TryAcquire("session-2", "holder-b"))
}

func (s *LockManagerTestSuite) TestTryAcquireReentrantForSameHolder() {
	s.True(s.manager.TryAcquire("session-1", "holder-a"))
	s.True(s.manager.TryAcquire("session-1", "holder-a"))
}

func (s *LockManagerTestSuite) TestLockExpiresAfterTTL() {
	s.True(s.manager.TryAcquire("session-1", "holder-a"))

	s.testNow = s.testNow.Add(3 * time.Second)

	s.True(s.manager.TryAcquire("session-1", "holder-b"))
}

func (s *LockManagerTestSuite) TestAcquireSurfacesBusyAfterBackoff() {
	s.True(s.manager.TryAcquire("session-1", "holder-a"))

	err := s.manager.Acquire(context.Background(), "session-1", "holder-b")
	s.Require().ErrorIs(err, ErrLockBusy)
}

func (s *LockManagerTestSuite) TestAcquireHonoursContextCancellation() {
	s.True(s.manager.TryAcquire("session-1", "holder-a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.manager.Acquire(ctx, "session-1", "holder-b")
	s.Require().ErrorIs(err, context.Canceled)
}

func (s *LockManagerTestSuite) TestReleaseIsIdempotent() {
	s.True(s.manager.TryAcquire("session-1", "holder-a"))

	s.True(s.manager.Release("session-1", "holder-a"))
	s.True(s.manager.Release("session-1", "holder-a"))

	s.True(s.manager.TryAcquire("session-1", "holder-b"))
}

func (s *LockManagerTestSuite) TestReleaseByNonHolderIsRefused() {
	s.True(s.manager.TryAcquire("session-1", "holder-a"))

	s.False(s.manager.Release("session-1", "holder-b"))
	s.False(s.manager.TryAcquire("session-1", "holder-b"))
}

func (s *LockManagerTestSuite) TestPurgeExpiredDropsOnlyStaleEntries() {
	s.True(s.manager.TryAcquire("session-1", "holder-a"))

	s.testNow = s.testNow.Add(time.Second)
	s.True(s.manager.TryAcquire("session-2", "holder-b"))

	s.testNow = s.testNow.Add(1500 * time.Millisecond)

	s.Equal(1, s.manager.PurgeExpired())
	s.False(s.manager.TryAcquire("session-2", "holder-c"))
}
