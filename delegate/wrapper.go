package delegate

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"
)

var (
	ErrUnbound = errors.New("delegate: invoke on unbound wrapper")
)

// Void 事件处理函数的返回类型
type Void = struct{}

// Kind 可调用对象的种类
type Kind uint8

const (
	KindNone     Kind = iota // 未绑定
	KindFunction             // 普通函数
	KindMethod               // 对象 + 方法
	KindClosure              // 闭包
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindClosure:
		return "closure"
	default:
		return "none"
	}
}

// Wrapper 类型擦除后的调用目标, 统一为 func(A) R
// 多个参数请使用结构体传递
type Wrapper[A, R any] struct {
	kind   Kind
	target uintptr // 函数代码地址, 或闭包存储地址
	recv   any     // 方法接收者
	key    any     // 闭包的显式标识
	call   func(A) R
}

// NewFunction 绑定普通函数
func NewFunction[A, R any](fn func(A) R) Wrapper[A, R] {
	return Wrapper[A, R]{
		kind:   KindFunction,
		target: codePointer(fn),
		call:   mustFunc(fn),
	}
}

// NewMethod 绑定对象方法, method 为方法表达式, 如 (*T).OnEvent
func NewMethod[T, A, R any](recv *T, method func(*T, A) R) Wrapper[A, R] {
	if recv == nil || method == nil {
		panic(fmt.Errorf("delegate: bind method with nil receiver or method (%T)", recv))
	}
	return Wrapper[A, R]{
		kind:   KindMethod,
		target: codePointer(method),
		recv:   recv,
		call: func(a A) R {
			return method(recv, a)
		},
	}
}

// NewClosure 绑定闭包, 以闭包存储地址作为标识
func NewClosure[A, R any](fn func(A) R) Wrapper[A, R] {
	return Wrapper[A, R]{
		kind:   KindClosure,
		target: closurePointer(fn),
		call:   mustFunc(fn),
	}
}

// NewKeyedClosure 绑定闭包, 以 key 作为标识
func NewKeyedClosure[A, R any](key any, fn func(A) R) Wrapper[A, R] {
	if key == nil {
		return NewClosure(fn)
	}
	return Wrapper[A, R]{
		kind: KindClosure,
		key:  key,
		call: mustFunc(fn),
	}
}

// Func 绑定无返回值的普通函数
func Func[A any](fn func(A)) Wrapper[A, Void] {
	return Wrapper[A, Void]{
		kind:   KindFunction,
		target: codePointer(fn),
		call:   voidCall(fn),
	}
}

// Bind 绑定无返回值的对象方法
func Bind[T, A any](recv *T, method func(*T, A)) Wrapper[A, Void] {
	if recv == nil || method == nil {
		panic(fmt.Errorf("delegate: bind method with nil receiver or method (%T)", recv))
	}
	return Wrapper[A, Void]{
		kind:   KindMethod,
		target: codePointer(method),
		recv:   recv,
		call: func(a A) Void {
			method(recv, a)
			return Void{}
		},
	}
}

// Lambda 绑定无返回值的闭包
func Lambda[A any](fn func(A)) Wrapper[A, Void] {
	return Wrapper[A, Void]{
		kind:   KindClosure,
		target: closurePointer(fn),
		call:   voidCall(fn),
	}
}

// KeyedLambda 绑定无返回值的闭包, 以 key 作为标识
func KeyedLambda[A any](key any, fn func(A)) Wrapper[A, Void] {
	if key == nil {
		return Lambda(fn)
	}
	return Wrapper[A, Void]{
		kind: KindClosure,
		key:  key,
		call: voidCall(fn),
	}
}

// Kind 绑定种类
func (w Wrapper[A, R]) Kind() Kind {
	return w.kind
}

// Bound 是否已绑定
func (w Wrapper[A, R]) Bound() bool {
	return w.call != nil
}

// Receiver 方法接收者, 非方法返回nil
func (w Wrapper[A, R]) Receiver() any {
	return w.recv
}

// Invoke 调用目标, 未绑定时panic
func (w Wrapper[A, R]) Invoke(a A) R {
	if w.call == nil {
		panic(ErrUnbound)
	}
	return w.call(a)
}

// Equal 种类相同且调用目标相同
func (w Wrapper[A, R]) Equal(other Wrapper[A, R]) bool {
	if w.kind != other.kind || w.kind == KindNone {
		return false
	}
	switch w.kind {
	case KindMethod:
		return w.target == other.target && w.recv == other.recv
	case KindClosure:
		if w.key != nil || other.key != nil {
			return w.key == other.key
		}
	}
	return w.target == other.target
}

// Clone 返回一个独立的副本
func (w Wrapper[A, R]) Clone() Wrapper[A, R] {
	return w
}

func (w Wrapper[A, R]) String() string {
	if w.key != nil {
		return fmt.Sprintf("%s(key=%v)", w.kind, w.key)
	}
	if w.recv != nil {
		return fmt.Sprintf("%s(%#x on %p)", w.kind, w.target, w.recv)
	}
	return fmt.Sprintf("%s(%#x)", w.kind, w.target)
}

func mustFunc[A, R any](fn func(A) R) func(A) R {
	if fn == nil {
		panic(errors.New("delegate: bind nil function"))
	}
	return fn
}

func voidCall[A any](fn func(A)) func(A) Void {
	if fn == nil {
		panic(errors.New("delegate: bind nil function"))
	}
	return func(a A) Void {
		fn(a)
		return Void{}
	}
}

// codePointer 函数入口地址, 同一函数的不同闭包实例相同
func codePointer(fn any) uintptr {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return 0
	}
	return v.Pointer()
}

// closurePointer 闭包对象地址, 每个捕获了变量的闭包实例各不相同
func closurePointer[F any](fn F) uintptr {
	if codePointer(fn) == 0 {
		return 0
	}
	return *(*uintptr)(unsafe.Pointer(&fn))
}
