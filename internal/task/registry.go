package task

import (
	"sync"

	"github.com/haierkeys/note-feed-service/internal/app"
)

// TaskFactory 由 App 创建任务；返回 (nil, nil) 表示按配置禁用
type TaskFactory func(a *app.App) (Task, error)

type entry struct {
	name    string
	factory TaskFactory
}

var (
	registry   []entry
	registryMu sync.RWMutex
)

// Register 在任务文件的 init() 中登记工厂，name 仅用于日志
func Register(name string, factory TaskFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = append(registry, entry{name: name, factory: factory})
}

// entries 返回登记顺序的副本
func entries() []entry {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return append([]entry(nil), registry...)
}
