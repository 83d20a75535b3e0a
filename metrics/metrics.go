package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/wildmap/events/executor"
)

// Recorder 事件分发计数
//
// 实现需要并发安全, Reaped 在事件锁内调用, 不能回调事件.
type Recorder interface {
	Fired(event string)
	Invoked(event string)
	Reaped(event string)
	SubmitFailed(event string)
}

// Nop 不做任何记录
type Nop struct{}

func (Nop) Fired(string)        {}
func (Nop) Invoked(string)      {}
func (Nop) Reaped(string)       {}
func (Nop) SubmitFailed(string) {}

var _ Recorder = (*Collector)(nil)

// Collector 基于prometheus的计数器, 以事件名为标签
type Collector struct {
	fired        *prometheus.CounterVec
	invoked      *prometheus.CounterVec
	reaped       *prometheus.CounterVec
	submitFailed *prometheus.CounterVec
}

// NewCollector 创建, 需要调用 Register 注册后才会被采集
func NewCollector(namespace string) *Collector {
	counter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "event",
				Name:      name,
				Help:      help,
			},
			[]string{"event"},
		)
	}
	return &Collector{
		fired:        counter("fired_total", "Total number of event fires"),
		invoked:      counter("invoked_total", "Total number of listener invocations"),
		reaped:       counter("reaped_total", "Total number of dead listeners reaped during dispatch"),
		submitFailed: counter("submit_failed_total", "Total number of listener tasks rejected by an executor"),
	}
}

// Register 注册全部计数器
func (c *Collector) Register(r prometheus.Registerer) error {
	var err error
	for _, m := range []prometheus.Collector{c.fired, c.invoked, c.reaped, c.submitFailed} {
		err = multierr.Append(err, r.Register(m))
	}
	return err
}

func (c *Collector) Fired(event string) {
	c.fired.WithLabelValues(event).Inc()
}

func (c *Collector) Invoked(event string) {
	c.invoked.WithLabelValues(event).Inc()
}

func (c *Collector) Reaped(event string) {
	c.reaped.WithLabelValues(event).Inc()
}

func (c *Collector) SubmitFailed(event string) {
	c.submitFailed.WithLabelValues(event).Inc()
}

// WatchLoop 导出任务循环的排队任务数
func WatchLoop(r prometheus.Registerer, namespace string, loops ...*executor.Loop) error {
	var err error
	for _, l := range loops {
		gauge := prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "executor",
				Name:        "pending_tasks",
				Help:        "Tasks submitted to the loop and not yet run",
				ConstLabels: prometheus.Labels{"loop": l.Name()},
			},
			func() float64 { return float64(l.Pending()) },
		)
		err = multierr.Append(err, r.Register(gauge))
	}
	return err
}
