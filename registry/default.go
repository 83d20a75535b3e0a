package registry

import (
	"sync"

	"github.com/wildmap/events/delegate"
)

var (
	defaultMu       sync.Mutex
	defaultRegistry *Registry
)

// Default 进程级单实例, 首次访问时创建
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry == nil {
		defaultRegistry = New()
	}
	return defaultRegistry
}

// SetDefault 替换单实例, 返回原实例; 传入nil则下次访问时重新创建
func SetDefault(r *Registry) *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultRegistry
	defaultRegistry = r
	return prev
}

// Register 默认单实例, 登记挂载记录
func Register(event Detacher, owner delegate.Watched, id uint64) {
	Default().Register(event, owner, id)
}

// Remove 默认单实例, 删除挂载记录
func Remove(event Detacher, id uint64) {
	Default().Remove(event, id)
}

// EventDestroyed 默认单实例, 事件销毁
func EventDestroyed(event Detacher) {
	Default().EventDestroyed(event)
}

// OwnerDestroyed 默认单实例, 所有者销毁
func OwnerDestroyed(owner delegate.Watched) {
	Default().OwnerDestroyed(owner)
}
