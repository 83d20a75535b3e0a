package delegate

import (
	"go.uber.org/atomic"
)

var delegateID atomic.Uint64

// Delegate 绑定引用: 调用目标 + 可选的所有者存活监视
//
// 所有者销毁后 IsLive 返回false, Invoke 变为空操作.
type Delegate[A, R any] struct {
	id      uint64
	wrapper Wrapper[A, R]
	owner   Watched
	token   *Token
}

// New 创建委托, owner 为空则始终存活
func New[A, R any](w Wrapper[A, R], owner ...Watched) *Delegate[A, R] {
	d := &Delegate[A, R]{
		id:      delegateID.Inc(),
		wrapper: w,
	}
	if len(owner) > 0 {
		d.Attach(owner[0])
	}
	return d
}

// ID 进程内唯一编号
func (d *Delegate[A, R]) ID() uint64 {
	return d.id
}

// Wrapper 调用目标
func (d *Delegate[A, R]) Wrapper() Wrapper[A, R] {
	return d.wrapper
}

// Owner 被监视的所有者, 未设置返回nil
func (d *Delegate[A, R]) Owner() Watched {
	return d.owner
}

// Token 所有者的存活标记
func (d *Delegate[A, R]) Token() *Token {
	return d.token
}

// Attach 监视 owner 的生命周期, 传入nil清除监视
func (d *Delegate[A, R]) Attach(owner Watched) {
	token := tokenOf(owner)
	if token == nil {
		d.owner, d.token = nil, nil
		return
	}
	d.owner, d.token = owner, token
}

// Watching 是否设置了监视
func (d *Delegate[A, R]) Watching() bool {
	return d.token != nil
}

// IsLive 未设置监视, 或所有者尚未销毁
func (d *Delegate[A, R]) IsLive() bool {
	return d.token == nil || d.token.Alive()
}

// Invoke 存活时调用, 否则空操作并返回false
func (d *Delegate[A, R]) Invoke(a A) (R, bool) {
	if !d.IsLive() {
		var zero R
		return zero, false
	}
	return d.wrapper.Invoke(a), true
}

// Equal 仅比较调用目标, 不比较所有者
func (d *Delegate[A, R]) Equal(other *Delegate[A, R]) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.wrapper.Equal(other.wrapper)
}

// SameOwner 所有者是否相同
func (d *Delegate[A, R]) SameOwner(owner Watched) bool {
	return d.token == tokenOf(owner)
}

// Clone 复制调用目标和监视关系, 编号重新分配
func (d *Delegate[A, R]) Clone() *Delegate[A, R] {
	return &Delegate[A, R]{
		id:      delegateID.Inc(),
		wrapper: d.wrapper.Clone(),
		owner:   d.owner,
		token:   d.token,
	}
}

func (d *Delegate[A, R]) String() string {
	return d.wrapper.String()
}
