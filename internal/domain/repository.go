package domain

import "context"

// 所有 FindByID 类方法在记录不存在时返回 gorm.ErrRecordNotFound

// NoteRepository 笔记仓储接口
type NoteRepository interface {
	// FindByID 根据 ID 获取笔记（包含已删除）
	FindByID(ctx context.Context, id int64) (*Note, error)

	// FindByIDs 批量获取笔记，不存在或已删除的 ID 被跳过，结果顺序与 ids 一致
	FindByIDs(ctx context.Context, ids []int64) ([]*Note, error)

	// Create 创建笔记
	Create(ctx context.Context, note *Note) (*Note, error)

	// SoftDelete 标记删除
	SoftDelete(ctx context.Context, id int64) error

	// FindByAuthor 按作者分页，ID 降序，排除 DIRECT 与已删除
	FindByAuthor(ctx context.Context, authorID int64, page Page) ([]*Note, error)

	// FindByAuthors 按多个作者分页，ID 降序，排除 DIRECT 与已删除
	FindByAuthors(ctx context.Context, authorIDs []int64, page Page) ([]*Note, error)

	// FindByVisibility 按可见性分页，ID 降序，排除已删除
	FindByVisibility(ctx context.Context, visibilities []Visibility, page Page) ([]*Note, error)
}

// FollowGraph 关注图
type FollowGraph interface {
	// FetchFollowers 获取关注 accountID 的账号
	FetchFollowers(ctx context.Context, accountID int64) ([]PartialAccount, error)

	// FetchFollowing 获取 accountID 关注的账号
	FetchFollowing(ctx context.Context, accountID int64) ([]PartialAccount, error)

	// Follow 建立关注，重复调用无副作用
	Follow(ctx context.Context, followerID, followeeID int64) error

	// Unfollow 取消关注，不存在时无副作用
	Unfollow(ctx context.Context, followerID, followeeID int64) error
}

// ListRepository 列表仓储接口
type ListRepository interface {
	Create(ctx context.Context, list *List) (*List, error)

	// Update 更新标题与公开性
	Update(ctx context.Context, list *List) error

	FindByID(ctx context.Context, id int64) (*List, error)

	// Delete 删除列表及其成员
	Delete(ctx context.Context, id int64) error

	// FindByOwner 获取账号创建的所有列表，ID 升序
	FindByOwner(ctx context.Context, ownerID int64) ([]*List, error)

	// AddMember 添加成员，重复添加无副作用
	AddMember(ctx context.Context, listID, accountID int64) error

	// RemoveMember 移除成员，不存在时无副作用
	RemoveMember(ctx context.Context, listID, accountID int64) error

	// Members 获取列表成员 ID，升序
	Members(ctx context.Context, listID int64) ([]int64, error)

	CountMembers(ctx context.Context, listID int64) (int64, error)

	// FindByMember 获取包含 accountID 的全部列表，ID 升序
	FindByMember(ctx context.Context, accountID int64) ([]*List, error)
}

// BookmarkRepository 收藏仓储接口
type BookmarkRepository interface {
	// Create 创建收藏，(AccountID, NoteID) 已存在时返回 code.ErrorBookmarkDuplicate
	Create(ctx context.Context, bookmark *Bookmark) (*Bookmark, error)

	// Delete 删除收藏，不存在时返回 gorm.ErrRecordNotFound
	Delete(ctx context.Context, accountID, noteID int64) error

	// FindByAccount 按收藏记录 ID 降序分页
	FindByAccount(ctx context.Context, accountID int64, page Page) ([]*Bookmark, error)
}

// ConversationRepository 私信会话仓储接口
type ConversationRepository interface {
	Create(ctx context.Context, entries ...*ConversationEntry) error

	// FindByAccount 按记录 ID 降序分页
	FindByAccount(ctx context.Context, accountID int64, page Page) ([]*ConversationEntry, error)
}
