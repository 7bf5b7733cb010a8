package task

import (
	"go.uber.org/zap"

	"github.com/haierkeys/note-feed-service/internal/app"
	"github.com/haierkeys/note-feed-service/pkg/safe_close"
)

// Manager 任务管理器,负责创建和管理所有任务
type Manager struct {
	scheduler *Scheduler
	logger    *zap.Logger
	app       *app.App
}

// NewManager 创建任务管理器
func NewManager(logger *zap.Logger, sc *safe_close.SafeClose, a *app.App) *Manager {
	return &Manager{
		scheduler: NewScheduler(logger, sc),
		logger:    logger,
		app:       a,
	}
}

// RegisterTasks 由注册表创建所有任务，单个任务创建失败时中止
func (m *Manager) RegisterTasks() error {
	for _, e := range entries() {
		t, err := e.factory(m.app)
		if err != nil {
			m.logger.Warn("failed to create task", zap.String("name", e.name), zap.Error(err))
			return err
		}
		if t == nil {
			m.logger.Info("task disabled", zap.String("name", e.name))
			continue
		}
		m.logger.Info("task registered", zap.String("name", t.Name()))
		m.scheduler.AddTask(t)
	}
	return nil
}

// Start 启动所有已注册的任务
func (m *Manager) Start() {
	m.scheduler.Start()
}
