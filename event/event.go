package event

import (
	"slices"
	"sync"

	"github.com/wildmap/events/delegate"
	"github.com/wildmap/events/executor"
	"github.com/wildmap/events/registry"
	"github.com/wildmap/events/xlog"
)

// 事件状态
type state int32

const (
	stateIdle           state = iota // 空闲
	stateDispatching                 // 正在分发
	statePendingDestroy              // 分发过程中被销毁, 等待分发结束后释放
	stateDestroyed                   // 已销毁
)

// Handler 事件处理函数
type Handler[A any] = delegate.Wrapper[A, delegate.Void]

// Affine 声明了执行器的所有者, 其监听器投递到该执行器上执行
type Affine interface {
	Executor() executor.Executor
}

var _ registry.Detacher = (*Event[int])(nil)

// Event 事件
//
// 监听器按注册顺序调用. 调用监听器时不持有锁, 监听器可以在回调中
// 添加/移除监听器, 再次触发事件, 甚至销毁事件本身.
// 分发过程中被移除的监听器只置空槽位, 最后一个分发结束时统一压缩.
type Event[A any] struct {
	mu       sync.Mutex
	slots    []*delegate.Delegate[A, delegate.Void] // nil 表示分发中被移除
	state    state
	depth    int // 进行中的分发数, 包括并发和重入
	deferred int // 待压缩的空槽位数
	opts     options
}

// New 创建事件
func New[A any](opts ...Option) *Event[A] {
	return &Event[A]{
		opts: newOptions(opts),
	}
}

// Name 事件名称
func (e *Event[A]) Name() string {
	return e.opts.name
}

// Add 添加监听器, 重复添加相同的调用目标会被忽略
//
// 指定 owner 或方法接收者实现了 delegate.Watched 时, 所有者销毁后监听器自动移除.
func (e *Event[A]) Add(h Handler[A], owner ...delegate.Watched) bool {
	d := delegate.New(h)
	if w := firstOwner(owner); w != nil {
		d.Attach(w)
	} else if w, ok := h.Receiver().(delegate.Watched); ok {
		d.Attach(w)
	}
	if !d.IsLive() {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state >= statePendingDestroy {
		return false
	}
	for _, s := range e.slots {
		if s != nil && s.Equal(d) {
			return false
		}
	}
	e.slots = append(e.slots, d)
	if d.Watching() {
		e.opts.registry.Register(e, d.Owner(), d.ID())
	}
	return true
}

// Remove 移除监听器, 不存在时忽略
//
// 未指定 owner 时只按调用目标匹配第一个; 指定时所有者也必须相同.
func (e *Event[A]) Remove(h Handler[A], owner ...delegate.Watched) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state >= statePendingDestroy {
		return false
	}
	for i, s := range e.slots {
		if s == nil || !s.Wrapper().Equal(h) {
			continue
		}
		if len(owner) > 0 && !s.SameOwner(owner[0]) {
			continue
		}
		e.removeLocked(i)
		return true
	}
	return false
}

// DetachAttachment 按委托编号移除, 由存活注册表在所有者销毁时调用
func (e *Event[A]) DetachAttachment(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state >= statePendingDestroy {
		return
	}
	for i, s := range e.slots {
		if s != nil && s.ID() == id {
			e.removeLocked(i)
			return
		}
	}
}

// Clear 移除全部监听器, 事件仍可使用
func (e *Event[A]) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state >= statePendingDestroy {
		return
	}
	for i := len(e.slots) - 1; i >= 0; i-- {
		if e.slots[i] != nil {
			e.removeLocked(i)
		}
	}
}

// Fire 触发事件
//
// 同步调用的监听器panic不会被捕获, 事件状态会先恢复再继续向上传播,
// 剩余的监听器本次不再调用.
func (e *Event[A]) Fire(a A) {
	e.mu.Lock()
	if e.state >= statePendingDestroy {
		e.mu.Unlock()
		return
	}
	e.state = stateDispatching
	e.depth++
	e.opts.metrics.Fired(e.opts.name)

	locked := true
	defer func() {
		if !locked {
			e.mu.Lock()
		}
		e.finishLocked()
		e.mu.Unlock()
	}()

	// listeners added during this pass are left for the next one
	n := len(e.slots)
	for i := 0; i < n && e.state == stateDispatching; i++ {
		d := e.slots[i]
		if d == nil {
			continue
		}
		if !d.IsLive() {
			e.reapLocked(i)
			continue
		}
		exec := e.executorFor(d)

		locked = false
		e.mu.Unlock()
		e.invoke(d, exec, a)
		e.mu.Lock()
		locked = true
	}
}

// Destroy 销毁事件
//
// 分发过程中调用时只做标记, 由进行中的 Fire 在结束时释放.
func (e *Event[A]) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state >= statePendingDestroy {
		return
	}
	if e.depth > 0 {
		e.state = statePendingDestroy
		xlog.Debugw("event destroyed during dispatch, release deferred", "event", e.opts.name, "depth", e.depth)
		return
	}
	e.releaseLocked()
}

// Destroyed 是否已销毁或等待销毁
func (e *Event[A]) Destroyed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state >= statePendingDestroy
}

// Dispatching 是否正在分发
func (e *Event[A]) Dispatching() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.depth > 0
}

// Len 当前监听器数量, 不含已置空的槽位
func (e *Event[A]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0
	for _, s := range e.slots {
		if s != nil {
			n++
		}
	}
	return n
}

// AddFunc 添加普通函数
func (e *Event[A]) AddFunc(fn func(A)) bool {
	return e.Add(delegate.Func(fn))
}

// RemoveFunc 移除普通函数
func (e *Event[A]) RemoveFunc(fn func(A)) bool {
	return e.Remove(delegate.Func(fn))
}

// AddLambda 添加闭包, 移除时需要传入同一个闭包值
func (e *Event[A]) AddLambda(fn func(A), owner ...delegate.Watched) bool {
	return e.Add(delegate.Lambda(fn), owner...)
}

// RemoveLambda 移除闭包
func (e *Event[A]) RemoveLambda(fn func(A), owner ...delegate.Watched) bool {
	return e.Remove(delegate.Lambda(fn), owner...)
}

// AddMethod 添加对象方法, method 为方法表达式, 如 (*T).OnChanged
func AddMethod[T, A any](e *Event[A], recv *T, method func(*T, A)) bool {
	return e.Add(delegate.Bind(recv, method))
}

// RemoveMethod 移除对象方法
func RemoveMethod[T, A any](e *Event[A], recv *T, method func(*T, A)) bool {
	return e.Remove(delegate.Bind(recv, method))
}

func (e *Event[A]) invoke(d *delegate.Delegate[A, delegate.Void], exec executor.Executor, a A) {
	call := func() {
		if _, ok := d.Invoke(a); ok {
			e.opts.metrics.Invoked(e.opts.name)
		}
	}
	if exec == nil {
		call()
		return
	}
	// liveness is checked again when the task runs
	if err := exec.Submit(call); err != nil {
		e.opts.metrics.SubmitFailed(e.opts.name)
		xlog.Warnw("submit listener failed", "event", e.opts.name, "delegate", d.String(), "err", err)
	}
}

func (e *Event[A]) executorFor(d *delegate.Delegate[A, delegate.Void]) executor.Executor {
	if a, ok := d.Owner().(Affine); ok {
		if exec := a.Executor(); exec != nil {
			return exec
		}
	}
	return e.opts.executor
}

func (e *Event[A]) removeLocked(i int) {
	d := e.slots[i]
	if d.Watching() {
		e.opts.registry.Remove(e, d.ID())
	}
	if e.depth > 0 {
		e.slots[i] = nil
		e.deferred++
		return
	}
	e.slots = slices.Delete(e.slots, i, i+1)
}

func (e *Event[A]) reapLocked(i int) {
	d := e.slots[i]
	xlog.Debugw("dead delegate reaped", "event", e.opts.name, "delegate", d.String())
	e.opts.metrics.Reaped(e.opts.name)
	if d.Watching() {
		e.opts.registry.Remove(e, d.ID())
	}
	e.slots[i] = nil
	e.deferred++
}

func (e *Event[A]) finishLocked() {
	e.depth--
	if e.depth > 0 {
		return
	}
	if e.state == statePendingDestroy {
		e.releaseLocked()
		return
	}
	e.compactLocked()
	e.state = stateIdle
}

func (e *Event[A]) compactLocked() {
	if e.deferred == 0 {
		return
	}
	e.slots = slices.DeleteFunc(e.slots, func(d *delegate.Delegate[A, delegate.Void]) bool {
		return d == nil
	})
	e.deferred = 0
}

func (e *Event[A]) releaseLocked() {
	e.slots = nil
	e.deferred = 0
	e.state = stateDestroyed
	e.opts.registry.EventDestroyed(e)
}

func firstOwner(owner []delegate.Watched) delegate.Watched {
	if len(owner) == 0 {
		return nil
	}
	return owner[0]
}
