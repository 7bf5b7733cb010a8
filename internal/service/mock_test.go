package service

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/haierkeys/note-feed-service/internal/domain"
	"github.com/haierkeys/note-feed-service/pkg/code"
	"github.com/haierkeys/note-feed-service/pkg/snowflake"
	"github.com/haierkeys/note-feed-service/pkg/timeline"
)

// stepClock 每次读取前进 1ms，生成的 ID 严格递增
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func newTestGenerator() *snowflake.Generator {
	g, err := snowflake.New(snowflake.Config{
		Instance: 1,
		Clock:    &stepClock{t: snowflake.DefaultEpoch.Add(time.Hour)},
	})
	if err != nil {
		panic(err)
	}
	return g
}

type exhaustedGenerator struct{}

func (exhaustedGenerator) Generate() (snowflake.ID, error) { return 0, snowflake.ErrExhausted }

// mockGraph 内存关注图，followers[followee] = followers
type mockGraph struct {
	domain.FollowGraph
	mu       sync.Mutex
	edges    map[int64]map[int64]struct{}
	failWith error
	lookups  int
}

func newMockGraph() *mockGraph {
	return &mockGraph{edges: map[int64]map[int64]struct{}{}}
}

func (g *mockGraph) Follow(_ context.Context, follower, followee int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.edges[followee] == nil {
		g.edges[followee] = map[int64]struct{}{}
	}
	g.edges[followee][follower] = struct{}{}
	return nil
}

func (g *mockGraph) Unfollow(_ context.Context, follower, followee int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.edges[followee], follower)
	return nil
}

func (g *mockGraph) FetchFollowers(_ context.Context, id int64) ([]domain.PartialAccount, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lookups++
	if g.failWith != nil {
		return nil, g.failWith
	}
	out := []domain.PartialAccount{}
	for f := range g.edges[id] {
		out = append(out, domain.PartialAccount{ID: f})
	}
	slices.SortFunc(out, func(a, b domain.PartialAccount) int { return int(a.ID - b.ID) })
	return out, nil
}

func (g *mockGraph) FetchFollowing(_ context.Context, id int64) ([]domain.PartialAccount, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return nil, g.failWith
	}
	out := []domain.PartialAccount{}
	for followee, fs := range g.edges {
		if _, ok := fs[id]; ok {
			out = append(out, domain.PartialAccount{ID: followee})
		}
	}
	return out, nil
}

// mockNotes 内存笔记仓储
type mockNotes struct {
	domain.NoteRepository
	mu    sync.Mutex
	notes map[int64]*domain.Note
}

func newMockNotes(notes ...*domain.Note) *mockNotes {
	m := &mockNotes{notes: map[int64]*domain.Note{}}
	for _, n := range notes {
		m.notes[n.ID] = n
	}
	return m
}

func (m *mockNotes) Create(_ context.Context, n *domain.Note) (*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	cp.CreatedAt = time.Now()
	m.notes[n.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockNotes) FindByID(_ context.Context, id int64) (*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *mockNotes) FindByIDs(_ context.Context, ids []int64) ([]*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Note, 0, len(ids))
	for _, id := range ids {
		if n, ok := m.notes[id]; ok && !n.IsDeleted() {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockNotes) SoftDelete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	n.DeletedAt = time.Now()
	return nil
}

func (m *mockNotes) query(page domain.Page, keep func(*domain.Note) bool) []*domain.Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Note{}
	for _, n := range m.notes {
		if n.IsDeleted() || !keep(n) {
			continue
		}
		if page.BeforeID > 0 && n.ID >= page.BeforeID {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *domain.Note) int {
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
	if page.Limit > 0 && len(out) > page.Limit {
		out = out[:page.Limit]
	}
	return out
}

func (m *mockNotes) FindByAuthor(_ context.Context, author int64, page domain.Page) ([]*domain.Note, error) {
	return m.query(page, func(n *domain.Note) bool {
		return n.AuthorID == author && n.Visibility != domain.VisibilityDirect
	}), nil
}

func (m *mockNotes) FindByAuthors(_ context.Context, authors []int64, page domain.Page) ([]*domain.Note, error) {
	return m.query(page, func(n *domain.Note) bool {
		return slices.Contains(authors, n.AuthorID) && n.Visibility != domain.VisibilityDirect
	}), nil
}

func (m *mockNotes) FindByVisibility(_ context.Context, vs []domain.Visibility, page domain.Page) ([]*domain.Note, error) {
	return m.query(page, func(n *domain.Note) bool {
		return slices.Contains(vs, n.Visibility)
	}), nil
}

// mockLists 内存列表仓储
type mockLists struct {
	domain.ListRepository
	mu      sync.Mutex
	lists   map[int64]*domain.List
	members map[int64][]int64
}

func newMockLists() *mockLists {
	return &mockLists{lists: map[int64]*domain.List{}, members: map[int64][]int64{}}
}

func (m *mockLists) Create(_ context.Context, l *domain.List) (*domain.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.lists[l.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockLists) Update(_ context.Context, l *domain.List) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.lists[l.ID] = &cp
	return nil
}

func (m *mockLists) FindByID(_ context.Context, id int64) (*domain.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *mockLists) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.lists, id)
	delete(m.members, id)
	return nil
}

func (m *mockLists) FindByOwner(_ context.Context, owner int64) ([]*domain.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.List{}
	for _, l := range m.lists {
		if l.OwnerID == owner {
			cp := *l
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *domain.List) int { return int(a.ID - b.ID) })
	return out, nil
}

func (m *mockLists) AddMember(_ context.Context, listID, account int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !slices.Contains(m.members[listID], account) {
		m.members[listID] = append(m.members[listID], account)
		slices.Sort(m.members[listID])
	}
	return nil
}

func (m *mockLists) RemoveMember(_ context.Context, listID, account int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[listID] = slices.DeleteFunc(m.members[listID], func(v int64) bool { return v == account })
	return nil
}

func (m *mockLists) Members(_ context.Context, listID int64) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.members[listID]), nil
}

func (m *mockLists) CountMembers(_ context.Context, listID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.members[listID])), nil
}

func (m *mockLists) FindByMember(_ context.Context, account int64) ([]*domain.List, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.List{}
	for id, ms := range m.members {
		if slices.Contains(ms, account) {
			if l, ok := m.lists[id]; ok {
				cp := *l
				out = append(out, &cp)
			}
		}
	}
	slices.SortFunc(out, func(a, b *domain.List) int { return int(a.ID - b.ID) })
	return out, nil
}

// mockBookmarks 内存收藏仓储
type mockBookmarks struct {
	domain.BookmarkRepository
	mu    sync.Mutex
	items []*domain.Bookmark
}

func (m *mockBookmarks) Create(_ context.Context, b *domain.Bookmark) (*domain.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.AccountID == b.AccountID && it.NoteID == b.NoteID {
			return nil, code.ErrorBookmarkDuplicate
		}
	}
	cp := *b
	m.items = append(m.items, &cp)
	return b, nil
}

func (m *mockBookmarks) Delete(_ context.Context, account, note int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.items)
	m.items = slices.DeleteFunc(m.items, func(b *domain.Bookmark) bool {
		return b.AccountID == account && b.NoteID == note
	})
	if len(m.items) == n {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (m *mockBookmarks) FindByAccount(_ context.Context, account int64, page domain.Page) ([]*domain.Bookmark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Bookmark{}
	for i := len(m.items) - 1; i >= 0; i-- {
		b := m.items[i]
		if b.AccountID != account || (page.BeforeID > 0 && b.ID >= page.BeforeID) {
			continue
		}
		out = append(out, b)
		if page.Limit > 0 && len(out) == page.Limit {
			break
		}
	}
	return out, nil
}

// mockConversations 内存会话仓储
type mockConversations struct {
	domain.ConversationRepository
	mu      sync.Mutex
	entries []*domain.ConversationEntry
}

func (m *mockConversations) Create(_ context.Context, entries ...*domain.ConversationEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *mockConversations) FindByAccount(_ context.Context, account int64, page domain.Page) ([]*domain.ConversationEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.ConversationEntry{}
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if e.AccountID != account || (page.BeforeID > 0 && e.ID >= page.BeforeID) {
			continue
		}
		out = append(out, e)
		if page.Limit > 0 && len(out) == page.Limit {
			break
		}
	}
	return out, nil
}

// failingCache 对指定键的写入返回错误
type failingCache struct {
	timeline.Cache
	failKey timeline.Key
}

var errCacheDown = errors.New("cache down")

func (c *failingCache) Append(ctx context.Context, key timeline.Key, ids ...int64) error {
	if key == c.failKey {
		return errCacheDown
	}
	return c.Cache.Append(ctx, key, ids...)
}

// brokenReadCache Read 总是失败
type brokenReadCache struct {
	timeline.Cache
}

func (brokenReadCache) Read(context.Context, timeline.Key) ([]int64, error) {
	return nil, errCacheDown
}
