package executor

import (
	"errors"
)

var (
	ErrLoopClosed = errors.New("executor: loop closed")
	ErrQueueFull  = errors.New("executor: task queue full")
	ErrTaskNil    = errors.New("executor: task cannot be nil")
)

// Executor 异步执行器, 投递后不等待结果
//
// 同一个执行器内按投递顺序执行. Submit 不允许同步回调到投递方持有的锁.
type Executor interface {
	Submit(task func()) error
}

// Func 将普通函数适配为 Executor
type Func func(task func()) error

// Submit 实现 Executor
func (f Func) Submit(task func()) error {
	return f(task)
}

// Inline 在调用方goroutine上直接执行
type Inline struct{}

// Submit 实现 Executor
func (Inline) Submit(task func()) error {
	if task == nil {
		return ErrTaskNil
	}
	task()
	return nil
}
