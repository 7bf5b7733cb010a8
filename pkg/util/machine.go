package util

import (
	"hash/fnv"
	"os"
	"sync"

	"github.com/denisbrodbeck/machineid"
)

// AppName 用于派生应用专属的机器 ID
const AppName = "note-feed-service"

var (
	machineOnce sync.Once
	machineID   string
)

// GetMachineID 获取当前机器针对本应用的唯一标识
// machineid 不可用时退回主机名，仍失败则返回空字符串
func GetMachineID() string {
	machineOnce.Do(func() {
		if id, err := machineid.ProtectedID(AppName); err == nil && id != "" {
			machineID = id
			return
		}
		if host, err := os.Hostname(); err == nil {
			machineID = host
		}
	})
	return machineID
}

// MachineInstance 将机器标识映射到 [0, limit) 区间，用作 ID 生成器实例号
func MachineInstance(id string, limit int64) int64 {
	if limit <= 0 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int64(h.Sum32()) % limit
}
