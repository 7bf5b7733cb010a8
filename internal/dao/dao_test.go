package dao

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/haierkeys/note-feed-service/internal/domain"
	"github.com/haierkeys/note-feed-service/pkg/code"
)

func newTestDao(t *testing.T) *Dao {
	t.Helper()
	db, err := NewDBEngineWithConfig(DatabaseConfig{
		Type:        "sqlite",
		Path:        filepath.Join(t.TempDir(), "feed.db"),
		AutoMigrate: true,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return New(db, nil)
}

func seedNotes(t *testing.T, repo domain.NoteRepository, notes ...*domain.Note) {
	t.Helper()
	for _, n := range notes {
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now()
		}
		_, err := repo.Create(context.Background(), n)
		require.NoError(t, err)
	}
}

func ids(notes []*domain.Note) []int64 {
	out := make([]int64, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.ID)
	}
	return out
}

func TestNoteRepository_Queries(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newTestDao(t))
	seedNotes(t, repo,
		&domain.Note{ID: 1, AuthorID: 10, Content: "a", Visibility: domain.VisibilityPublic},
		&domain.Note{ID: 2, AuthorID: 10, Content: "b", Visibility: domain.VisibilityDirect, SendTo: 20},
		&domain.Note{ID: 3, AuthorID: 11, Content: "c", Visibility: domain.VisibilityHome},
		&domain.Note{ID: 4, AuthorID: 10, Content: "d", Visibility: domain.VisibilityFollowers},
		&domain.Note{ID: 5, AuthorID: 12, Content: "e", Visibility: domain.VisibilityPublic},
	)

	got, err := repo.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(20), got.SendTo)
	assert.False(t, got.IsDeleted())

	_, err = repo.FindByID(ctx, 99)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	byAuthor, err := repo.FindByAuthor(ctx, 10, domain.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 1}, ids(byAuthor), "DIRECT excluded, newest first")

	byAuthors, err := repo.FindByAuthors(ctx, []int64{10, 11}, domain.Page{BeforeID: 4, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1}, ids(byAuthors))

	public, err := repo.FindByVisibility(ctx, []domain.Visibility{domain.VisibilityPublic, domain.VisibilityHome}, domain.Page{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 3}, ids(public))

	require.NoError(t, repo.SoftDelete(ctx, 3))
	deleted, err := repo.FindByID(ctx, 3)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted())

	hydrated, err := repo.FindByIDs(ctx, []int64{5, 3, 99, 1})
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 1}, ids(hydrated), "order kept, deleted and missing skipped")
}

func TestFollowGraph(t *testing.T) {
	ctx := context.Background()
	g := NewFollowGraph(newTestDao(t))

	require.NoError(t, g.Follow(ctx, 2, 1))
	require.NoError(t, g.Follow(ctx, 3, 1))
	require.NoError(t, g.Follow(ctx, 3, 1))
	require.NoError(t, g.Follow(ctx, 1, 3))

	followers, err := g.FetchFollowers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3}, domain.AccountIDs(followers))

	following, err := g.FetchFollowing(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, domain.AccountIDs(following))

	require.NoError(t, g.Unfollow(ctx, 3, 1))
	require.NoError(t, g.Unfollow(ctx, 3, 1))
	followers, err = g.FetchFollowers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, domain.AccountIDs(followers))
}

func TestListRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewListRepository(newTestDao(t))

	l, err := repo.Create(ctx, &domain.List{ID: 100, OwnerID: 1, Title: "friends", Publicity: domain.PublicityPublic})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.List{ID: 101, OwnerID: 1, Title: "work", Publicity: domain.PublicityPrivate})
	require.NoError(t, err)

	l.Title = "close friends"
	require.NoError(t, repo.Update(ctx, l))
	got, err := repo.FindByID(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "close friends", got.Title)
	assert.Equal(t, domain.PublicityPublic, got.Publicity)

	require.NoError(t, repo.AddMember(ctx, 100, 7))
	require.NoError(t, repo.AddMember(ctx, 100, 7))
	require.NoError(t, repo.AddMember(ctx, 101, 7))
	require.NoError(t, repo.AddMember(ctx, 100, 8))

	members, err := repo.Members(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 8}, members)
	n, err := repo.CountMembers(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	lists, err := repo.FindByMember(ctx, 7)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, int64(100), lists[0].ID)

	require.NoError(t, repo.RemoveMember(ctx, 101, 7))
	lists, err = repo.FindByMember(ctx, 7)
	require.NoError(t, err)
	require.Len(t, lists, 1)

	owned, err := repo.FindByOwner(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	require.NoError(t, repo.Delete(ctx, 100))
	_, err = repo.FindByID(ctx, 100)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	members, err = repo.Members(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestBookmarkRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewBookmarkRepository(newTestDao(t))

	_, err := repo.Create(ctx, &domain.Bookmark{ID: 1, AccountID: 5, NoteID: 50})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Bookmark{ID: 2, AccountID: 5, NoteID: 51})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Bookmark{ID: 3, AccountID: 5, NoteID: 50})
	assert.ErrorIs(t, err, code.ErrorBookmarkDuplicate)

	page, err := repo.FindByAccount(ctx, 5, domain.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(2), page[0].ID)

	require.NoError(t, repo.Delete(ctx, 5, 51))
	assert.ErrorIs(t, repo.Delete(ctx, 5, 51), gorm.ErrRecordNotFound)
}

func TestConversationRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository(newTestDao(t))

	require.NoError(t, repo.Create(ctx,
		&domain.ConversationEntry{ID: 10, AccountID: 1, NoteID: 100, PeerID: 2},
		&domain.ConversationEntry{ID: 11, AccountID: 2, NoteID: 100, PeerID: 1},
	))
	require.NoError(t, repo.Create(ctx, &domain.ConversationEntry{ID: 12, AccountID: 1, NoteID: 101, PeerID: 3}))
	require.NoError(t, repo.Create(ctx))

	entries, err := repo.FindByAccount(ctx, 1, domain.Page{Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(12), entries[0].ID)

	entries, err = repo.FindByAccount(ctx, 1, domain.Page{BeforeID: 12, Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].PeerID)
}

func TestDialectorFor_Unsupported(t *testing.T) {
	_, err := dialectorFor(DatabaseConfig{Type: "oracle"})
	assert.Error(t, err)
	_, err = dialectorFor(DatabaseConfig{Type: "sqlite"})
	assert.Error(t, err)
	_, err = dialectorFor(DatabaseConfig{Type: "postgres", Host: "db:5433", Name: "feed"})
	assert.NoError(t, err)
}
