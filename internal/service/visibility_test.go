package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haierkeys/note-feed-service/internal/domain"
)

const (
	author    int64 = 10
	follower  int64 = 20
	stranger  int64 = 30
	recipient int64 = 40
)

func TestVisibilityEvaluator_IsVisible(t *testing.T) {
	graph := newMockGraph()
	_ = graph.Follow(context.Background(), follower, author)
	e := NewVisibilityEvaluator(graph, nil)

	tests := []struct {
		name       string
		visibility domain.Visibility
		sendTo     int64
		viewer     int64
		want       bool
	}{
		{name: "public stranger", visibility: domain.VisibilityPublic, viewer: stranger, want: true},
		{name: "public anonymous", visibility: domain.VisibilityPublic, viewer: 0, want: true},
		{name: "home stranger", visibility: domain.VisibilityHome, viewer: stranger, want: true},
		{name: "followers follower", visibility: domain.VisibilityFollowers, viewer: follower, want: true},
		{name: "followers stranger", visibility: domain.VisibilityFollowers, viewer: stranger, want: false},
		{name: "followers anonymous", visibility: domain.VisibilityFollowers, viewer: 0, want: false},
		{name: "direct recipient", visibility: domain.VisibilityDirect, sendTo: recipient, viewer: recipient, want: true},
		{name: "direct follower", visibility: domain.VisibilityDirect, sendTo: recipient, viewer: follower, want: false},
		{name: "direct anonymous", visibility: domain.VisibilityDirect, sendTo: recipient, viewer: 0, want: false},
		{name: "direct author", visibility: domain.VisibilityDirect, sendTo: recipient, viewer: author, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note := &domain.Note{ID: 1, AuthorID: author, Visibility: tt.visibility, SendTo: tt.sendTo}
			assert.Equal(t, tt.want, e.IsVisible(context.Background(), tt.viewer, note))

			followers := map[int64]struct{}{follower: {}}
			assert.Equal(t, tt.want, e.IsVisibleWithFollowers(tt.viewer, note, followers))
		})
	}
}

func TestVisibilityEvaluator_AuthorSeesEverything(t *testing.T) {
	e := NewVisibilityEvaluator(newMockGraph(), nil)

	for _, v := range domain.Visibilities() {
		t.Run(v.String(), func(t *testing.T) {
			note := &domain.Note{ID: 1, AuthorID: author, Visibility: v, SendTo: recipient}
			assert.True(t, e.IsVisible(context.Background(), author, note))
		})
	}
}

func TestVisibilityEvaluator_AuthorProperty(t *testing.T) {
	e := NewVisibilityEvaluator(newMockGraph(), nil)
	visibilities := domain.Visibilities()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("author always sees own note", prop.ForAll(
		func(authorID, sendTo int64, idx int) bool {
			note := &domain.Note{ID: 1, AuthorID: authorID, Visibility: visibilities[idx], SendTo: sendTo}
			return e.IsVisible(context.Background(), authorID, note)
		},
		gen.Int64Range(1, 1<<40),
		gen.Int64Range(1, 1<<40),
		gen.IntRange(0, len(visibilities)-1),
	))

	properties.TestingRun(t)
}

func TestVisibilityEvaluator_LookupFailureHides(t *testing.T) {
	graph := newMockGraph()
	graph.failWith = errors.New("graph down")
	e := NewVisibilityEvaluator(graph, nil)

	note := &domain.Note{ID: 1, AuthorID: author, Visibility: domain.VisibilityFollowers}
	assert.False(t, e.IsVisible(context.Background(), follower, note))
	// PUBLIC 不需要查询关注图
	note.Visibility = domain.VisibilityPublic
	assert.True(t, e.IsVisible(context.Background(), follower, note))
}

// blockingGraph 首次 FetchFollowers 阻塞到 release 关闭，ctx 取消时返回 ctx.Err()
type blockingGraph struct {
	*mockGraph
	started chan struct{}
	release chan struct{}
}

func (g *blockingGraph) FetchFollowers(ctx context.Context, id int64) ([]domain.PartialAccount, error) {
	select {
	case <-g.started:
	default:
		close(g.started)
	}
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.mockGraph.FetchFollowers(ctx, id)
}

func TestVisibilityEvaluator_CancelledViewerDoesNotHideForOthers(t *testing.T) {
	base := newMockGraph()
	_ = base.Follow(context.Background(), follower, author)
	_ = base.Follow(context.Background(), stranger, author)
	graph := &blockingGraph{mockGraph: base, started: make(chan struct{}), release: make(chan struct{})}
	e := NewVisibilityEvaluator(graph, nil)
	note := &domain.Note{ID: 1, AuthorID: author, Visibility: domain.VisibilityFollowers}

	firstCtx, cancel := context.WithCancel(context.Background())
	first := make(chan bool, 1)
	go func() { first <- e.IsVisible(firstCtx, follower, note) }()
	<-graph.started

	second := make(chan bool, 1)
	go func() { second <- e.IsVisible(context.Background(), stranger, note) }()
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case got := <-first:
		assert.False(t, got)
	case <-time.After(time.Second):
		require.FailNow(t, "cancelled viewer kept waiting")
	}

	close(graph.release)
	select {
	case got := <-second:
		assert.True(t, got)
	case <-time.After(time.Second):
		require.FailNow(t, "second viewer never returned")
	}
}
