package delegate

import (
	"go.uber.org/atomic"
)

// Watched 被监视的对象, 销毁后其绑定的委托全部失效
type Watched interface {
	LivenessToken() *Token
}

// Token 存活标记, 由被监视对象持有, 委托只读取它
type Token struct {
	alive atomic.Bool
}

// NewToken 创建一个存活的标记
func NewToken() *Token {
	t := &Token{}
	t.alive.Store(true)
	return t
}

// Alive 是否存活
func (t *Token) Alive() bool {
	return t != nil && t.alive.Load()
}

// Kill 标记为已销毁, 仅第一次调用返回true
func (t *Token) Kill() bool {
	if t == nil {
		return false
	}
	return t.alive.CompareAndSwap(true, false)
}

// tokenOf 取对象的存活标记
func tokenOf(w Watched) *Token {
	if w == nil {
		return nil
	}
	return w.LivenessToken()
}
