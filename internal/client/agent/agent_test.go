package client_agent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/humanbelnik/kinoswap/matchroom/internal/protocol"
	client_mocks "github.com/humanbelnik/kinoswap/matchroom/mocks/client"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type AgentSuite struct {
	suite.Suite
	source *client_mocks.Source
	agent  *Agent
	ctx    context.Context
}

func title(id int64) protocol.Title {
	return protocol.Title{ID: id, Title: "title"}
}

func page(hasMore bool, next int, ids ...int64) protocol.QueuePage {
	items := make([]protocol.QueueItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, protocol.QueueItem{Title: title(id), Source: "base"})
	}
	return protocol.QueuePage{Items: items, Meta: protocol.QueueMeta{HasMore: hasMore, NextOffset: next}}
}

func ids(items []protocol.QueueItem) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title.ID)
	}
	return out
}

func (s *AgentSuite) BeforeEach(t provider.T) {
	s.source = client_mocks.NewSource(t)
	s.agent = New(s.source, Config{PageSize: 6, LowWater: 3})
	s.ctx = context.Background()
}

func (s *AgentSuite) load(t provider.T, p protocol.QueuePage) {
	s.source.On("Queue", mock.Anything, 6, 0).Return(p, nil).Once()
	require.NoError(t, s.agent.LoadInitial(s.ctx))
}

func (s *AgentSuite) TestConsumeIsMonotonic(t provider.T) {
	s.load(t, page(false, 3, 1, 2, 3))

	for i := 1; i <= 10; i++ {
		assert.Equal(t, i, s.agent.ConsumeNext())
	}
	assert.Equal(t, 10, s.agent.CurrentIndex())
	assert.Equal(t, 0, s.agent.Remaining())

	_, ok := s.agent.Current()
	assert.False(t, ok)
}

func (s *AgentSuite) TestInjectLandsAheadOfCurrent(t provider.T) {
	s.load(t, page(true, 6, 1, 2, 3, 4, 5, 6))
	s.agent.ConsumeNext()

	assert.True(t, s.agent.InjectPartnerLike(title(200)))

	assert.Equal(t, []int64{1, 2, 3, 4, 200, 5, 6}, ids(s.agent.Items()))
	cur, _ := s.agent.Current()
	assert.Equal(t, int64(2), cur.Title.ID)
}

func (s *AgentSuite) TestInjectNearEndAppends(t provider.T) {
	s.load(t, page(false, 2, 1, 2))
	s.agent.ConsumeNext()

	s.agent.InjectPartnerLike(title(9))

	assert.Equal(t, []int64{1, 2, 9}, ids(s.agent.Items()))
}

func (s *AgentSuite) TestInjectNeverDuplicates(t provider.T) {
	s.load(t, page(false, 3, 1, 2, 3))

	assert.False(t, s.agent.InjectPartnerLike(title(2)), "already queued")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.agent.InjectPartnerLike(title(77))
		}()
	}
	wg.Wait()

	count := 0
	for _, id := range ids(s.agent.Items()) {
		if id == 77 {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func (s *AgentSuite) TestInjectDeferredWhileAnimating(t provider.T) {
	s.load(t, page(true, 6, 1, 2, 3, 4, 5, 6))

	s.agent.BeginAnimation()
	assert.True(t, s.agent.InjectPartnerLike(title(200)))
	assert.False(t, s.agent.InjectPartnerLike(title(200)), "already pending")

	assert.NotContains(t, ids(s.agent.Items()), int64(200))
	assert.Equal(t, 1, s.agent.Pending())

	s.agent.ConsumeNext()
	s.agent.SettleAnimation()

	assert.Equal(t, 0, s.agent.Pending())
	assert.Equal(t, []int64{1, 2, 3, 4, 200, 5, 6}, ids(s.agent.Items()))
}

func (s *AgentSuite) TestPagedTitleSupersedesPending(t provider.T) {
	s.load(t, page(true, 2, 1, 2))

	s.agent.BeginAnimation()
	s.agent.InjectPartnerLike(title(200))
	s.agent.AppendMovies(page(true, 4, 3, 200).Items)
	s.agent.SettleAnimation()

	assert.Equal(t, []int64{1, 2, 3, 200}, ids(s.agent.Items()))
}

func (s *AgentSuite) TestFetchMore(t provider.T) {
	s.load(t, page(true, 6, 1, 2, 3, 4, 5, 6))
	assert.False(t, s.agent.ShouldFetchMore())

	for range 4 {
		s.agent.ConsumeNext()
	}
	require.True(t, s.agent.ShouldFetchMore())

	s.source.On("Queue", mock.Anything, 6, 6).Return(page(false, 9, 6, 7, 8, 9), nil).Once()
	require.NoError(t, s.agent.FetchMore(s.ctx))

	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8, 9}, ids(s.agent.Items()))
	assert.False(t, s.agent.ShouldFetchMore(), "server has nothing more")
	assert.NoError(t, s.agent.FetchMore(s.ctx))
}

func (s *AgentSuite) TestFallbackToPopular(t provider.T) {
	s.source.On("Queue", mock.Anything, 6, 0).Return(protocol.QueuePage{}, errors.New("503")).Once()
	s.source.On("Popular", mock.Anything, 0, 6).Return([]protocol.Title{title(1), title(2), title(3), title(4), title(5), title(6)}, nil).Once()

	require.NoError(t, s.agent.LoadInitial(s.ctx))

	items := s.agent.Items()
	require.Len(t, items, 6)
	assert.Equal(t, SourceFallback, items[0].Source)

	for range 4 {
		s.agent.ConsumeNext()
	}
	s.source.On("Popular", mock.Anything, 6, 6).Return([]protocol.Title{title(7)}, nil).Once()
	require.NoError(t, s.agent.FetchMore(s.ctx))
	assert.Len(t, s.agent.Items(), 7)
	assert.False(t, s.agent.ShouldFetchMore())
}

func (s *AgentSuite) TestFallbackFailureSurfacesBoth(t provider.T) {
	queueErr := errors.New("queue down")
	popularErr := errors.New("catalog down")
	s.source.On("Queue", mock.Anything, 6, 0).Return(protocol.QueuePage{}, queueErr).Once()
	s.source.On("Popular", mock.Anything, 0, 6).Return(nil, popularErr).Once()

	err := s.agent.LoadInitial(s.ctx)

	assert.ErrorIs(t, err, queueErr)
	assert.ErrorIs(t, err, popularErr)
}

func (s *AgentSuite) TestHandleEvents(t provider.T) {
	s.load(t, page(true, 6, 1, 2, 3, 4, 5, 6))
	s.agent.ConsumeNext()
	s.agent.ConsumeNext()

	liked, err := json.Marshal(protocol.PartnerLiked{TitleID: 50, Title: &protocol.Title{ID: 50, Title: "Heat"}})
	require.NoError(t, err)
	require.NoError(t, s.agent.HandleEvent(s.ctx, protocol.Envelope{Type: protocol.TypePartnerLiked, Payload: liked}))
	assert.Contains(t, ids(s.agent.Items()), int64(50))

	auth, err := json.Marshal(protocol.PartnerAuthChanged{IsAuthenticated: true, HasWantToWatchList: true})
	require.NoError(t, err)
	s.source.On("Queue", mock.Anything, 6, 0).Return(page(true, 6, 90, 91, 3), nil).Once()
	require.NoError(t, s.agent.HandleEvent(s.ctx, protocol.Envelope{Type: protocol.TypePartnerAuthChanged, Payload: auth}))

	assert.Equal(t, []int64{1, 2, 3, 4, 5, 90, 91, 50, 6}, ids(s.agent.Items()))
	assert.Equal(t, 2, s.agent.CurrentIndex())
}

func (s *AgentSuite) TestReloadWaitsForAnimation(t provider.T) {
	s.load(t, page(true, 4, 1, 2, 3, 4))
	s.agent.ConsumeNext()
	s.agent.BeginAnimation()

	auth, err := json.Marshal(protocol.PartnerAuthChanged{IsAuthenticated: true, HasWantToWatchList: true})
	require.NoError(t, err)
	s.source.On("Queue", mock.Anything, 6, 0).Return(page(true, 4, 900), nil).Once()
	require.NoError(t, s.agent.HandleEvent(s.ctx, protocol.Envelope{Type: protocol.TypePartnerAuthChanged, Payload: auth}))

	cur, ok := s.agent.Current()
	require.True(t, ok)
	assert.Equal(t, int64(2), cur.Title.ID)
	assert.Equal(t, []int64{1, 2, 3, 4}, ids(s.agent.Items()))

	s.agent.SettleAnimation()

	cur, _ = s.agent.Current()
	assert.Equal(t, int64(2), cur.Title.ID)
	assert.Equal(t, []int64{1, 2, 3, 4, 900}, ids(s.agent.Items()))
}

func (s *AgentSuite) TestPartnerLikedWithoutTitleIsResolved(t provider.T) {
	s.load(t, page(true, 6, 1, 2, 3, 4, 5, 6))

	liked, err := json.Marshal(protocol.PartnerLiked{TitleID: 77})
	require.NoError(t, err)
	s.source.On("Title", mock.Anything, int64(77)).Return(protocol.Title{ID: 77, Title: "Ronin"}, nil).Once()
	require.NoError(t, s.agent.HandleEvent(s.ctx, protocol.Envelope{Type: protocol.TypePartnerLiked, Payload: liked}))

	assert.Equal(t, []int64{1, 2, 3, 77, 4, 5, 6}, ids(s.agent.Items()))

	// Already held titles are not looked up again.
	known, err := json.Marshal(protocol.PartnerLiked{TitleID: 5})
	require.NoError(t, err)
	require.NoError(t, s.agent.HandleEvent(s.ctx, protocol.Envelope{Type: protocol.TypePartnerLiked, Payload: known}))
	assert.Len(t, s.agent.Items(), 7)
}

func (s *AgentSuite) TestPartnerLikedLookupFailure(t provider.T) {
	s.load(t, page(false, 2, 1, 2))

	liked, err := json.Marshal(protocol.PartnerLiked{TitleID: 77})
	require.NoError(t, err)
	s.source.On("Title", mock.Anything, int64(77)).Return(protocol.Title{}, assert.AnError).Once()

	err = s.agent.HandleEvent(s.ctx, protocol.Envelope{Type: protocol.TypePartnerLiked, Payload: liked})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []int64{1, 2}, ids(s.agent.Items()))
}

func (s *AgentSuite) TestAuthChangedWithoutListIsIgnored(t provider.T) {
	auth, err := json.Marshal(protocol.PartnerAuthChanged{IsAuthenticated: true})
	require.NoError(t, err)

	assert.NoError(t, s.agent.HandleEvent(s.ctx, protocol.Envelope{Type: protocol.TypePartnerAuthChanged, Payload: auth}))
}

func TestAgentSuite(t *testing.T) {
	suite.RunSuite(t, new(AgentSuite))
}
