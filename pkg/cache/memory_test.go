package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MemoryCacheTestSuite struct {
	suite.Suite
	cache *MemoryCache
	clock time.Time
	ctx   context.Context
}

func (s *MemoryCacheTestSuite) SetupTest() {
	s.cache = NewMemoryCache(time.Hour)
	s.clock = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.cache.now = func() time.Time { return s.clock }
	s.ctx = context.Background()
}

func (s *MemoryCacheTestSuite) TearDownTest() {
	_ = s.cache.Close()
}

func (s *MemoryCacheTestSuite) TestGetMissing() {
	_, err := s.cache.Get(s.ctx, "nope")
	assert.ErrorIs(s.T(), err, ErrMiss)
}

func (s *MemoryCacheTestSuite) TestSetGetDelete() {
	require.NoError(s.T(), s.cache.Set(s.ctx, "emailForSignIn:dev-1", "ada@example.com", 0))

	v, err := s.cache.Get(s.ctx, "emailForSignIn:dev-1")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "ada@example.com", v)

	require.NoError(s.T(), s.cache.Delete(s.ctx, "emailForSignIn:dev-1"))
	_, err = s.cache.Get(s.ctx, "emailForSignIn:dev-1")
	assert.ErrorIs(s.T(), err, ErrMiss)
}

func (s *MemoryCacheTestSuite) TestTake() {
	require.NoError(s.T(), s.cache.Set(s.ctx, "oauthState:abc", "1", time.Minute))

	v, err := s.cache.Take(s.ctx, "oauthState:abc")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "1", v)

	_, err = s.cache.Take(s.ctx, "oauthState:abc")
	assert.ErrorIs(s.T(), err, ErrMiss)

	require.NoError(s.T(), s.cache.Set(s.ctx, "oauthState:old", "1", time.Minute))
	s.clock = s.clock.Add(2 * time.Minute)
	_, err = s.cache.Take(s.ctx, "oauthState:old")
	assert.ErrorIs(s.T(), err, ErrMiss)
	assert.Equal(s.T(), 0, s.cache.Len())
}

func (s *MemoryCacheTestSuite) TestTakeConcurrentSingleWinner() {
	require.NoError(s.T(), s.cache.Set(s.ctx, "oauthState:race", "1", time.Minute))

	const callers = 20
	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := s.cache.Take(s.ctx, "oauthState:race"); err == nil {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(s.T(), int32(1), wins.Load())
}

func (s *MemoryCacheTestSuite) TestExpiry() {
	require.NoError(s.T(), s.cache.Set(s.ctx, "state", "1", time.Minute))

	s.clock = s.clock.Add(30 * time.Second)
	_, err := s.cache.Get(s.ctx, "state")
	assert.NoError(s.T(), err)

	s.clock = s.clock.Add(time.Minute)
	_, err = s.cache.Get(s.ctx, "state")
	assert.ErrorIs(s.T(), err, ErrMiss)

	s.cache.deleteExpired()
	assert.Equal(s.T(), 0, s.cache.Len())
}

func (s *MemoryCacheTestSuite) TestCloseIsIdempotent() {
	assert.NoError(s.T(), s.cache.Close())
	assert.NoError(s.T(), s.cache.Close())
}

func TestMemoryCacheTestSuite(t *testing.T) {
	suite.Run(t, new(MemoryCacheTestSuite))
}
