package executor

import (
	"context"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/multierr"
)

// Group 固定数量的任务循环, 同一个key总是分配到同一个循环
type Group struct {
	loops []*Loop
}

// NewGroup 新建并启动 n 个任务循环
func NewGroup(ctx context.Context, n int, config LoopConfig) *Group {
	if n <= 0 {
		n = 1
	}
	g := &Group{
		loops: make([]*Loop, 0, n),
	}
	name := config.Name
	if name == "" {
		name = DefaultLoopConfig.Name
	}
	for i := 0; i < n; i++ {
		cfg := config
		cfg.Name = fmt.Sprintf("%s-%d", name, i)
		l := NewLoop(cfg)
		l.Start(ctx)
		g.loops = append(g.loops, l)
	}
	return g
}

// Len 循环数量
func (g *Group) Len() int {
	return len(g.loops)
}

// Pick 按key取任务循环, 不同进程中的分配结果相同
func (g *Group) Pick(key string) *Loop {
	idx := xxhash.Sum64String(key) % uint64(len(g.loops))
	return g.loops[idx]
}

// Submit 投递到第一个循环
func (g *Group) Submit(task func()) error {
	return g.loops[0].Submit(task)
}

// Close 关闭全部循环
func (g *Group) Close() error {
	var err error
	for _, l := range g.loops {
		err = multierr.Append(err, l.Close())
	}
	return err
}
