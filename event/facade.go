package event

import (
	"fmt"
	"sync"

	"github.com/wildmap/events/delegate"
)

// Facade 按key管理一组同类型事件
type Facade[K comparable, A any] struct {
	mu     sync.RWMutex
	events map[K]*Event[A]
	opts   []Option
}

// NewFacade 创建, opts 作用于每个新建的事件
func NewFacade[K comparable, A any](opts ...Option) *Facade[K, A] {
	return &Facade[K, A]{
		events: make(map[K]*Event[A]),
		opts:   opts,
	}
}

// Event 取key对应的事件, 不存在则创建
func (f *Facade[K, A]) Event(key K) *Event[A] {
	f.mu.RLock()
	ev, ok := f.events[key]
	f.mu.RUnlock()
	if ok {
		return ev
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if ev, ok = f.events[key]; ok {
		return ev
	}
	opts := append([]Option{WithName(fmt.Sprint(key))}, f.opts...)
	ev = New[A](opts...)
	f.events[key] = ev
	return ev
}

// Lookup 取key对应的事件, 不创建
func (f *Facade[K, A]) Lookup(key K) (*Event[A], bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	ev, ok := f.events[key]
	return ev, ok
}

// Add 注册监听器
func (f *Facade[K, A]) Add(key K, h Handler[A], owner ...delegate.Watched) bool {
	return f.Event(key).Add(h, owner...)
}

// Remove 反注册监听器
func (f *Facade[K, A]) Remove(key K, h Handler[A], owner ...delegate.Watched) bool {
	ev, ok := f.Lookup(key)
	if !ok {
		return false
	}
	return ev.Remove(h, owner...)
}

// Fire 抛出事件, 没有监听器时忽略
func (f *Facade[K, A]) Fire(key K, a A) {
	if ev, ok := f.Lookup(key); ok {
		ev.Fire(a)
	}
}

// Destroy 销毁key对应的事件
func (f *Facade[K, A]) Destroy(key K) {
	f.mu.Lock()
	ev, ok := f.events[key]
	delete(f.events, key)
	f.mu.Unlock()
	if ok {
		ev.Destroy()
	}
}

// Keys 所有key
func (f *Facade[K, A]) Keys() []K {
	f.mu.RLock()
	defer f.mu.RUnlock()
	keys := make([]K, 0, len(f.events))
	for k := range f.events {
		keys = append(keys, k)
	}
	return keys
}

// Close 销毁全部事件
func (f *Facade[K, A]) Close() {
	f.mu.Lock()
	events := f.events
	f.events = make(map[K]*Event[A])
	f.mu.Unlock()

	for _, ev := range events {
		ev.Destroy()
	}
}
