package event

import (
	"sync"

	"github.com/wildmap/events/delegate"
	"github.com/wildmap/events/executor"
	"github.com/wildmap/events/registry"
)

var (
	_ delegate.Watched = (*Object)(nil)
	_ Affine           = (*Object)(nil)
)

// Object 可被监视的对象, 嵌入到监听方结构体中使用
//
//	type Window struct {
//		event.Object
//	}
//
//	event.AddMethod(button.Clicked, w, (*Window).OnClicked)
//	w.Destroy() // OnClicked 从所有事件上移除
//
// 零值可用, 不能复制.
type Object struct {
	once     sync.Once
	token    *delegate.Token
	registry *registry.Registry
	executor executor.Executor
}

// ObjectOption 对象配置项
type ObjectOption func(*Object)

// WithObjectRegistry 使用指定的存活注册表
func WithObjectRegistry(r *registry.Registry) ObjectOption {
	return func(o *Object) {
		o.registry = r
	}
}

// WithObjectExecutor 该对象的监听器都投递到 x 上执行
func WithObjectExecutor(x executor.Executor) ObjectOption {
	return func(o *Object) {
		o.executor = x
	}
}

// NewObject 创建对象
func NewObject(opts ...ObjectOption) *Object {
	o := &Object{}
	o.Init(opts...)
	return o
}

// Init 嵌入值使用时进行配置, 需在挂载监听器之前调用
func (o *Object) Init(opts ...ObjectOption) {
	for _, opt := range opts {
		opt(o)
	}
}

// LivenessToken 实现 delegate.Watched
func (o *Object) LivenessToken() *delegate.Token {
	if o == nil {
		return nil
	}
	o.once.Do(func() {
		o.token = delegate.NewToken()
	})
	return o.token
}

// Executor 实现 Affine, 未设置时返回nil
func (o *Object) Executor() executor.Executor {
	if o == nil {
		return nil
	}
	return o.executor
}

// Alive 是否尚未销毁
func (o *Object) Alive() bool {
	return o.LivenessToken().Alive()
}

// Destroy 销毁对象, 从所有事件上移除其监听器, 重复调用无效
func (o *Object) Destroy() {
	if !o.LivenessToken().Kill() {
		return
	}
	r := o.registry
	if r == nil {
		r = registry.Default()
	}
	r.OwnerDestroyed(o)
}
