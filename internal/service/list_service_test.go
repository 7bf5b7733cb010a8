package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haierkeys/note-feed-service/internal/domain"
	"github.com/haierkeys/note-feed-service/pkg/code"
	"github.com/haierkeys/note-feed-service/pkg/writequeue"
)

func newTestListService(t *testing.T, maxMembers int) (ListService, *mockLists) {
	t.Helper()
	repo := newMockLists()
	queue := writequeue.New(nil, nil)
	t.Cleanup(func() { _ = queue.Shutdown(context.Background()) })
	return NewListService(repo, newTestGenerator(), queue, ListConfig{MaxMembers: maxMembers}, nil, nil), repo
}

func ptr[T any](v T) *T { return &v }

func TestListService_SubscribedLists(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestListService(t, 0)
	const m1 int64 = 77

	list, err := svc.Create(ctx, author, "friends", domain.PublicityPublic)
	require.NoError(t, err)
	require.NoError(t, svc.AddMember(ctx, author, list.ID, m1))

	got, err := svc.FetchSubscribedLists(ctx, m1)
	require.NoError(t, err)
	assert.Equal(t, []int64{list.ID}, got)

	require.NoError(t, svc.RemoveMember(ctx, author, list.ID, m1))
	got, err = svc.FetchSubscribedLists(ctx, m1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListService_EditIndependentFields(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestListService(t, 0)

	list, err := svc.Create(ctx, author, "old", domain.PublicityPublic)
	require.NoError(t, err)

	_, err = svc.Update(ctx, author, list.ID, ListUpdate{Title: ptr("new")})
	require.NoError(t, err)
	got, err := svc.Get(ctx, author, list.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, domain.PublicityPublic, got.Publicity)

	_, err = svc.Update(ctx, author, list.ID, ListUpdate{Publicity: ptr(domain.PublicityPrivate)})
	require.NoError(t, err)
	got, err = svc.Get(ctx, author, list.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, domain.PublicityPrivate, got.Publicity)

	_, err = svc.Get(ctx, stranger, list.ID)
	assert.ErrorIs(t, err, code.ErrorListPrivate)
}

func TestListService_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestListService(t, 2)
	list, err := svc.Create(ctx, author, "l", domain.PublicityPublic)
	require.NoError(t, err)

	tests := []struct {
		name string
		run  func() error
		want *code.Code
	}{
		{name: "empty title", run: func() error { _, err := svc.Create(ctx, author, "  ", ""); return err }, want: code.ErrorListTitleInvalid},
		{name: "bad publicity", run: func() error { _, err := svc.Create(ctx, author, "x", "SECRET"); return err }, want: code.ErrorListPublicityBad},
		{name: "nothing to edit", run: func() error { _, err := svc.Update(ctx, author, list.ID, ListUpdate{}); return err }, want: code.ErrorListNothingToEdit},
		{name: "non owner edit", run: func() error { _, err := svc.Update(ctx, stranger, list.ID, ListUpdate{Title: ptr("x")}); return err }, want: code.ErrorListNotOwner},
		{name: "non owner add", run: func() error { return svc.AddMember(ctx, stranger, list.ID, 5) }, want: code.ErrorListNotOwner},
		{name: "missing list", run: func() error { return svc.Delete(ctx, author, 12345) }, want: code.ErrorListNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.want)
		})
	}
}

func TestListService_MemberCap(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestListService(t, 2)
	list, err := svc.Create(ctx, author, "l", domain.PublicityPublic)
	require.NoError(t, err)

	require.NoError(t, svc.AddMember(ctx, author, list.ID, 1))
	require.NoError(t, svc.AddMember(ctx, author, list.ID, 2))
	// 重复添加不占用名额
	require.NoError(t, svc.AddMember(ctx, author, list.ID, 2))
	assert.ErrorIs(t, svc.AddMember(ctx, author, list.ID, 3), code.ErrorListMembersFull)

	members, err := svc.Members(ctx, author, list.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, members)
}

func TestListService_ConcurrentAddsRespectCap(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestListService(t, 10)
	list, err := svc.Create(ctx, author, "l", domain.PublicityPublic)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := int64(1); i <= 30; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_ = svc.AddMember(ctx, author, list.ID, id)
		}(i)
	}
	wg.Wait()

	n, err := repo.CountMembers(ctx, list.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)
}

func TestListService_DeleteAndOwned(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestListService(t, 0)
	a, err := svc.Create(ctx, author, "a", domain.PublicityPublic)
	require.NoError(t, err)
	b, err := svc.Create(ctx, author, "b", domain.PublicityPrivate)
	require.NoError(t, err)

	owned, err := svc.ListOwned(ctx, author)
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, a.ID, owned[0].ID)

	require.NoError(t, svc.Delete(ctx, author, a.ID))
	owned, err = svc.ListOwned(ctx, author)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, b.ID, owned[0].ID)
}
