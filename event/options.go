package event

import (
	"github.com/wildmap/events/executor"
	"github.com/wildmap/events/metrics"
	"github.com/wildmap/events/registry"
)

type options struct {
	name     string
	registry *registry.Registry
	executor executor.Executor
	metrics  metrics.Recorder
}

// Option 事件配置项
type Option func(*options)

// WithName 事件名称, 用于日志
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithRegistry 使用指定的存活注册表, 默认为进程级单实例
func WithRegistry(r *registry.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithExecutor 没有所有者执行器的监听器都投递到 x 异步执行
func WithExecutor(x executor.Executor) Option {
	return func(o *options) {
		o.executor = x
	}
}

// WithMetrics 记录分发计数, 如 metrics.NewCollector
func WithMetrics(r metrics.Recorder) Option {
	return func(o *options) {
		o.metrics = r
	}
}

func newOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = registry.Default()
	}
	if o.metrics == nil {
		o.metrics = metrics.Nop{}
	}
	return o
}
