package registry

import (
	"sync"

	"github.com/wildmap/events/delegate"
	"github.com/wildmap/events/xlog"
)

// Detacher 由事件实现, 所有者销毁时注册表通过它移除对应的委托
type Detacher interface {
	DetachAttachment(id uint64)
}

// attachment 一条挂载记录: 事件 + 所有者 + 委托编号
type attachment struct {
	event Detacher
	owner *delegate.Token
	id    uint64
}

// Registry 存活注册表
//
// 记录被监视对象在各个事件上挂载的委托, 支持按事件和按所有者两个方向查找.
// 锁只用于记录维护, 不会在调用事件或监听器时持有.
type Registry struct {
	mu      sync.Mutex
	byEvent map[Detacher]map[uint64]*attachment
	byOwner map[*delegate.Token]map[uint64]*attachment
}

// New 创建独立的注册表, 一般用于测试隔离
func New() *Registry {
	return &Registry{
		byEvent: make(map[Detacher]map[uint64]*attachment),
		byOwner: make(map[*delegate.Token]map[uint64]*attachment),
	}
}

// Register 登记一条挂载记录
func (r *Registry) Register(event Detacher, owner delegate.Watched, id uint64) {
	if event == nil || owner == nil {
		return
	}
	token := owner.LivenessToken()
	if token == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a := &attachment{event: event, owner: token, id: id}
	set, ok := r.byEvent[event]
	if !ok {
		set = make(map[uint64]*attachment)
		r.byEvent[event] = set
	}
	set[id] = a

	set, ok = r.byOwner[token]
	if !ok {
		set = make(map[uint64]*attachment)
		r.byOwner[token] = set
	}
	set[id] = a
}

// Remove 删除一条挂载记录, 不存在时忽略
func (r *Registry) Remove(event Detacher, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.byEvent[event]
	if !ok {
		return
	}
	a, ok := set[id]
	if !ok {
		return
	}
	r.eraseLocked(a)
}

// EventDestroyed 删除事件的全部挂载记录
func (r *Registry) EventDestroyed(event Detacher) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.byEvent[event]
	if !ok {
		return
	}
	for _, a := range set {
		r.eraseOwnerLocked(a)
	}
	delete(r.byEvent, event)
}

// OwnerDestroyed 所有者销毁, 从各个事件上移除其挂载的委托
//
// 先在锁内取出快照并删除记录, 再逐个通知事件, 事件回调注册表时不会死锁.
func (r *Registry) OwnerDestroyed(owner delegate.Watched) {
	if owner == nil {
		return
	}
	token := owner.LivenessToken()
	if token == nil {
		return
	}

	r.mu.Lock()
	set, ok := r.byOwner[token]
	if !ok {
		r.mu.Unlock()
		return
	}
	snapshot := make([]*attachment, 0, len(set))
	for _, a := range set {
		snapshot = append(snapshot, a)
	}
	for _, a := range snapshot {
		r.eraseLocked(a)
	}
	r.mu.Unlock()

	xlog.Debugw("owner destroyed, detaching delegates", "attachments", len(snapshot))
	for _, a := range snapshot {
		a.event.DetachAttachment(a.id)
	}
}

// Len 挂载记录总数
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, set := range r.byEvent {
		n += len(set)
	}
	return n
}

// LenEvent 事件的挂载记录数
func (r *Registry) LenEvent(event Detacher) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byEvent[event])
}

// LenOwner 所有者的挂载记录数
func (r *Registry) LenOwner(owner delegate.Watched) int {
	if owner == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byOwner[owner.LivenessToken()])
}

func (r *Registry) eraseLocked(a *attachment) {
	if set, ok := r.byEvent[a.event]; ok {
		delete(set, a.id)
		if len(set) == 0 {
			delete(r.byEvent, a.event)
		}
	}
	r.eraseOwnerLocked(a)
}

func (r *Registry) eraseOwnerLocked(a *attachment) {
	if set, ok := r.byOwner[a.owner]; ok {
		delete(set, a.id)
		if len(set) == 0 {
			delete(r.byOwner, a.owner)
		}
	}
}
