package executor

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"go.uber.org/atomic"

	"github.com/wildmap/events/xlog"
)

// LoopConfig 任务循环配置
type LoopConfig struct {
	// Name 用于日志
	Name string
	// QueueSize 任务通道缓冲大小
	QueueSize int
	// Block 队列满时阻塞等待, 否则返回 ErrQueueFull
	Block bool
}

// DefaultLoopConfig 默认配置
var DefaultLoopConfig = LoopConfig{
	Name:      "loop",
	QueueSize: 10000,
}

// Loop 单goroutine任务循环, 每个所有者一个, 保证投递顺序
type Loop struct {
	config   LoopConfig
	ChanTask chan func()
	quit     chan struct{}
	done     chan struct{}
	started  atomic.Bool
	closed   atomic.Bool
	pending  atomic.Int64
	mu       sync.RWMutex // Submit 持读锁, 关闭时持写锁等待在途投递结束
}

// NewLoop 新建任务循环, 需要调用 Start 或 Run 才会执行任务
func NewLoop(config LoopConfig) *Loop {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultLoopConfig.QueueSize
	}
	if config.Name == "" {
		config.Name = DefaultLoopConfig.Name
	}
	return &Loop{
		config:   config,
		ChanTask: make(chan func(), config.QueueSize),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Name 名称
func (l *Loop) Name() string {
	return l.config.Name
}

// Start 在新goroutine中运行
func (l *Loop) Start(ctx context.Context) {
	if !l.started.CompareAndSwap(false, true) {
		xlog.Warnf("executor loop %s already running", l.config.Name)
		return
	}
	go l.run(ctx)
}

// Run 在当前goroutine运行循环, 阻塞直到ctx结束或 Close
func (l *Loop) Run(ctx context.Context) {
	if !l.started.CompareAndSwap(false, true) {
		xlog.Warnf("executor loop %s already running", l.config.Name)
		return
	}
	l.run(ctx)
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)

	for {
		select {
		case <-ctx.Done():
			l.shutdown()
			l.drain()
			xlog.Infof("executor loop %s stopped", l.config.Name)
			return
		case <-l.quit:
			l.drain()
			xlog.Infof("executor loop %s closed", l.config.Name)
			return
		case task := <-l.ChanTask:
			l.Exec(task)
		}
	}
}

// Submit 投递任务
func (l *Loop) Submit(task func()) error {
	if task == nil {
		return ErrTaskNil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed.Load() {
		return ErrLoopClosed
	}

	l.pending.Inc()
	if l.config.Block {
		select {
		case l.ChanTask <- task:
			return nil
		case <-l.quit:
			l.pending.Dec()
			return ErrLoopClosed
		}
	}

	select {
	case l.ChanTask <- task:
		return nil
	default:
		l.pending.Dec()
		return fmt.Errorf("%w, loop %s size %d", ErrQueueFull, l.config.Name, cap(l.ChanTask))
	}
}

// Exec 执行一个任务, 捕获panic
func (l *Loop) Exec(task func()) {
	defer func() {
		l.pending.Dec()
		if r := recover(); r != nil {
			xlog.Errorf("executor loop %s task panic %v\n%s", l.config.Name, r, string(debug.Stack()))
		}
	}()
	task()
}

// Pending 已投递未执行完的任务数
func (l *Loop) Pending() int64 {
	return l.pending.Load()
}

// IsClosed 是否已关闭
func (l *Loop) IsClosed() bool {
	return l.closed.Load()
}

// Close 停止接收任务, 执行完队列中剩余任务后返回
// 不能在本循环执行的任务中调用
func (l *Loop) Close() error {
	if !l.shutdown() {
		return fmt.Errorf("%w: %s", ErrLoopClosed, l.config.Name)
	}
	if l.started.Load() {
		<-l.done
	}
	// tasks that raced with the loop exiting run on the caller
	l.drain()
	return nil
}

// shutdown 标记关闭, 返回后不会再有任务进入通道
func (l *Loop) shutdown() bool {
	if !l.closed.CompareAndSwap(false, true) {
		return false
	}
	close(l.quit)
	l.mu.Lock()
	l.mu.Unlock()
	return true
}

// drain 排空通道中的剩余任务
func (l *Loop) drain() {
	for {
		select {
		case task := <-l.ChanTask:
			l.Exec(task)
		default:
			return
		}
	}
}
