package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haierkeys/note-feed-service/internal/domain"
	"github.com/haierkeys/note-feed-service/pkg/code"
	"github.com/haierkeys/note-feed-service/pkg/timeline"
)

type fanoutFixture struct {
	graph *mockGraph
	lists *mockLists
	cache timeline.Cache
	w     FanoutWriter
}

func newFanoutFixture(t *testing.T, cache timeline.Cache) *fanoutFixture {
	t.Helper()
	if cache == nil {
		cache = timeline.NewMemoryCache()
	}
	graph := newMockGraph()
	lists := newMockLists()
	return &fanoutFixture{
		graph: graph,
		lists: lists,
		cache: cache,
		w:     NewFanoutWriter(graph, lists, cache, NewVisibilityEvaluator(graph, nil), FanoutConfig{Concurrency: 4}, nil, nil),
	}
}

func TestFanout_FollowersReceivePublicNote(t *testing.T) {
	ctx := context.Background()
	f := newFanoutFixture(t, nil)
	const f1, f2 int64 = 21, 22
	require.NoError(t, f.graph.Follow(ctx, f1, author))
	require.NoError(t, f.graph.Follow(ctx, f2, author))

	note := &domain.Note{ID: 100, AuthorID: author, Visibility: domain.VisibilityPublic}
	require.NoError(t, f.w.Push(ctx, note))

	got1, err := f.cache.Read(ctx, timeline.HomeKey(f1))
	require.NoError(t, err)
	got2, err := f.cache.Read(ctx, timeline.HomeKey(f2))
	require.NoError(t, err)
	assert.Equal(t, []int64{100}, got1)
	assert.Equal(t, got1, got2)

	own, err := f.cache.Read(ctx, timeline.HomeKey(author))
	require.NoError(t, err)
	assert.Equal(t, []int64{100}, own)
}

func TestFanout_DoublePushIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFanoutFixture(t, nil)
	require.NoError(t, f.graph.Follow(ctx, follower, author))

	note := &domain.Note{ID: 100, AuthorID: author, Visibility: domain.VisibilityFollowers}
	require.NoError(t, f.w.Push(ctx, note))
	require.NoError(t, f.w.Push(ctx, note))

	got, err := f.cache.Read(ctx, timeline.HomeKey(follower))
	require.NoError(t, err)
	assert.Equal(t, []int64{100}, got)
}

func TestFanout_DirectRejectedWithoutWrites(t *testing.T) {
	ctx := context.Background()
	f := newFanoutFixture(t, nil)
	require.NoError(t, f.graph.Follow(ctx, follower, author))

	note := &domain.Note{ID: 100, AuthorID: author, Visibility: domain.VisibilityDirect, SendTo: recipient}
	err := f.w.Push(ctx, note)
	require.Error(t, err)
	assert.ErrorIs(t, err, code.ErrorFanoutDirectRejected)
	assert.Equal(t, code.KindInvalidArgument, code.KindOf(err))

	keys, err := f.cache.Keys(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Zero(t, f.graph.lookups)
}

func TestFanout_ListRecipients(t *testing.T) {
	ctx := context.Background()
	f := newFanoutFixture(t, nil)
	require.NoError(t, f.graph.Follow(ctx, follower, author))

	// follower 与 stranger 各有一个包含 author 的列表
	_, _ = f.lists.Create(ctx, &domain.List{ID: 1, OwnerID: follower, Title: "a", Publicity: domain.PublicityPublic})
	_, _ = f.lists.Create(ctx, &domain.List{ID: 2, OwnerID: stranger, Title: "b", Publicity: domain.PublicityPublic})
	require.NoError(t, f.lists.AddMember(ctx, 1, author))
	require.NoError(t, f.lists.AddMember(ctx, 2, author))

	tests := []struct {
		name       string
		visibility domain.Visibility
		want       []timeline.Key
	}{
		{
			name:       "public reaches both lists",
			visibility: domain.VisibilityPublic,
			want:       []timeline.Key{timeline.HomeKey(author), timeline.HomeKey(follower), timeline.ListKey(1), timeline.ListKey(2)},
		},
		{
			name:       "followers only reaches follower list",
			visibility: domain.VisibilityFollowers,
			want:       []timeline.Key{timeline.HomeKey(author), timeline.HomeKey(follower), timeline.ListKey(1)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys, err := f.w.Recipients(ctx, &domain.Note{ID: 5, AuthorID: author, Visibility: tt.visibility})
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, keys)
		})
	}
}

func TestFanout_WriteFailureReportedOthersWritten(t *testing.T) {
	ctx := context.Background()
	mem := timeline.NewMemoryCache()
	f := newFanoutFixture(t, &failingCache{Cache: mem, failKey: timeline.HomeKey(follower)})
	require.NoError(t, f.graph.Follow(ctx, follower, author))
	require.NoError(t, f.graph.Follow(ctx, stranger, author))

	err := f.w.Push(ctx, &domain.Note{ID: 7, AuthorID: author, Visibility: domain.VisibilityPublic})
	require.Error(t, err)
	assert.ErrorIs(t, err, code.ErrorFanoutWriteFailed)
	assert.True(t, errors.Is(err, errCacheDown))

	got, err := mem.Read(ctx, timeline.HomeKey(stranger))
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, got)
}

func TestFanout_FollowerLookupFailure(t *testing.T) {
	f := newFanoutFixture(t, nil)
	f.graph.failWith = errors.New("graph down")

	err := f.w.Push(context.Background(), &domain.Note{ID: 7, AuthorID: author, Visibility: domain.VisibilityPublic})
	assert.ErrorIs(t, err, code.ErrorFanoutFollowerLookup)
	assert.Equal(t, code.KindUpstreamFailure, code.KindOf(err))
}
