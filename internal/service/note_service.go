package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/haierkeys/note-feed-service/internal/domain"
	"github.com/haierkeys/note-feed-service/internal/metrics"
	"github.com/haierkeys/note-feed-service/pkg/code"
	"github.com/haierkeys/note-feed-service/pkg/logger"
	"github.com/haierkeys/note-feed-service/pkg/workerpool"
)

// DefaultNoteMaxContent 笔记内容最大字符数
const DefaultNoteMaxContent = 3000

// NoteConfig 笔记配置
type NoteConfig struct {
	MaxContentLen int
	// AsyncFanout 创建后在 Worker Pool 上异步推送
	AsyncFanout bool
}

// NoteCreateParams 创建笔记参数
type NoteCreateParams struct {
	Content    string
	Visibility domain.Visibility
	SendTo     int64
	RenoteID   int64
}

// NoteService 笔记服务
type NoteService interface {
	// Create 存储笔记后推送；同步推送失败时笔记已保存，返回笔记与错误，可通过 Republish 重试
	Create(ctx context.Context, authorID int64, params *NoteCreateParams) (*domain.Note, error)
	Get(ctx context.Context, viewerID, noteID int64) (*domain.Note, error)
	Delete(ctx context.Context, authorID, noteID int64) error
	// Republish 重新执行推送，重复调用幂等
	Republish(ctx context.Context, authorID, noteID int64) error
}

type noteService struct {
	notes         domain.NoteRepository
	conversations domain.ConversationRepository
	ids           IDGenerator
	evaluator     VisibilityEvaluator
	fanout        FanoutWriter
	pool          *workerpool.Pool
	config        NoteConfig
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NoteDeps 笔记服务依赖
type NoteDeps struct {
	Notes         domain.NoteRepository
	Conversations domain.ConversationRepository
	IDs           IDGenerator
	Evaluator     VisibilityEvaluator
	Fanout        FanoutWriter
	// Pool 为 nil 时始终同步推送
	Pool *workerpool.Pool
}

// NewNoteService 创建笔记服务
func NewNoteService(deps NoteDeps, cfg NoteConfig, m *metrics.Metrics, lg *zap.Logger) NoteService {
	if cfg.MaxContentLen <= 0 {
		cfg.MaxContentLen = DefaultNoteMaxContent
	}
	if m == nil {
		m = metrics.New(nil)
	}
	if lg == nil {
		lg = zap.NewNop()
	}
	return &noteService{
		notes:         deps.Notes,
		conversations: deps.Conversations,
		ids:           deps.IDs,
		evaluator:     deps.Evaluator,
		fanout:        deps.Fanout,
		pool:          deps.Pool,
		config:        cfg,
		metrics:       m,
		logger:        lg,
	}
}

func (s *noteService) Create(ctx context.Context, authorID int64, params *NoteCreateParams) (*domain.Note, error) {
	if authorID <= 0 {
		return nil, code.ErrorNotUserAuthToken
	}

	note := &domain.Note{
		AuthorID:   authorID,
		Content:    strings.TrimSpace(params.Content),
		Visibility: params.Visibility,
		SendTo:     params.SendTo,
		RenoteID:   params.RenoteID,
	}
	if note.Visibility == "" {
		note.Visibility = domain.VisibilityPublic
	}
	if err := note.Validate(); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(note.Content) > s.config.MaxContentLen {
		return nil, code.ErrorNoteContentTooLong
	}
	if note.Content == "" && !note.IsRenote() {
		return nil, code.ErrorNoteContentEmpty
	}
	if note.IsRenote() {
		if err := s.checkRenoteTarget(ctx, authorID, note.RenoteID); err != nil {
			return nil, err
		}
	}

	id, err := nextID(s.ids, s.metrics)
	if err != nil {
		return nil, err
	}
	note.ID = id

	created, err := s.notes.Create(ctx, note)
	if err != nil {
		return nil, code.ErrorNoteCreateFailed.WithCause(err)
	}

	s.logger.Info("note created",
		zap.Int64(logger.FieldNoteID, created.ID),
		zap.Int64(logger.FieldAuthorID, authorID),
		zap.String(logger.FieldVisibility, created.Visibility.String()))

	if created.Visibility == domain.VisibilityDirect {
		return created, s.recordConversation(ctx, created)
	}
	return created, s.deliver(ctx, created)
}

// checkRenoteTarget 转发目标必须存在、对作者可见且不是 DIRECT
func (s *noteService) checkRenoteTarget(ctx context.Context, authorID, targetID int64) error {
	target, err := s.notes.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorRenoteTargetInvalid.WithDetails("target not found")
		}
		return code.ErrorDBQuery.WithCause(err)
	}
	if target.IsDeleted() {
		return code.ErrorRenoteTargetInvalid.WithDetails("target not found")
	}
	if target.Visibility == domain.VisibilityDirect {
		return code.ErrorRenoteTargetInvalid.WithDetails("direct notes cannot be renoted")
	}
	if !s.evaluator.IsVisible(ctx, authorID, target) {
		return code.ErrorRenoteTargetInvalid.WithDetails("target not visible")
	}
	return nil
}

// recordConversation DIRECT 笔记为作者与接收者写入会话记录
func (s *noteService) recordConversation(ctx context.Context, note *domain.Note) error {
	pairs := [][2]int64{{note.AuthorID, note.SendTo}}
	if note.SendTo != note.AuthorID {
		pairs = append(pairs, [2]int64{note.SendTo, note.AuthorID})
	}

	entries := make([]*domain.ConversationEntry, 0, len(pairs))
	for _, p := range pairs {
		id, err := nextID(s.ids, s.metrics)
		if err != nil {
			return err
		}
		entries = append(entries, &domain.ConversationEntry{
			ID:        id,
			AccountID: p[0],
			PeerID:    p[1],
			NoteID:    note.ID,
		})
	}
	if err := s.conversations.Create(ctx, entries...); err != nil {
		return code.ErrorConversationWrite.WithCause(err)
	}
	return nil
}

// deliver 按配置同步或异步推送；Worker Pool 不可用时退回同步推送
func (s *noteService) deliver(ctx context.Context, note *domain.Note) error {
	if !s.config.AsyncFanout || s.pool == nil {
		return s.fanout.Push(ctx, note)
	}

	err := s.pool.SubmitAsync(context.WithoutCancel(ctx), func(ctx context.Context) error {
		return s.fanout.Push(ctx, note)
	})
	if err == nil {
		return nil
	}
	s.logger.Warn("async fanout unavailable, pushing inline",
		zap.Int64(logger.FieldNoteID, note.ID),
		zap.Error(err))
	return s.fanout.Push(ctx, note)
}

func (s *noteService) find(ctx context.Context, noteID int64) (*domain.Note, error) {
	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorDBQuery.WithCause(err)
	}
	if note.IsDeleted() {
		return nil, code.ErrorNoteNotFound
	}
	return note, nil
}

func (s *noteService) Get(ctx context.Context, viewerID, noteID int64) (*domain.Note, error) {
	note, err := s.find(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if !s.evaluator.IsVisible(ctx, viewerID, note) {
		return nil, code.ErrorNoteNotVisible
	}
	return note, nil
}

func (s *noteService) Delete(ctx context.Context, authorID, noteID int64) error {
	note, err := s.find(ctx, noteID)
	if err != nil {
		return err
	}
	if note.AuthorID != authorID {
		return code.ErrorNoteNotAuthor
	}
	if err := s.notes.SoftDelete(ctx, noteID); err != nil {
		return code.ErrorNoteDeleteFailed.WithCause(err)
	}
	s.logger.Info("note deleted",
		zap.Int64(logger.FieldNoteID, noteID),
		zap.Int64(logger.FieldAuthorID, authorID))
	return nil
}

func (s *noteService) Republish(ctx context.Context, authorID, noteID int64) error {
	note, err := s.find(ctx, noteID)
	if err != nil {
		return err
	}
	if note.AuthorID != authorID {
		return code.ErrorNoteNotAuthor
	}
	return s.fanout.Push(ctx, note)
}
