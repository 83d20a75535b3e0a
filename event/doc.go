// Package event 提供委托事件: 多个独立的监听器订阅同一个事件,
// 触发时按注册顺序调用仍然有效的监听器.
//
// 监听器可以是普通函数, 对象方法或闭包. 所有者嵌入 Object 后,
// 销毁所有者会通过存活注册表把它在各个事件上的监听器全部移除;
// 来不及移除的监听器在下次触发时被跳过并回收.
//
//	type Counter struct {
//		event.Object
//		n int
//	}
//
//	func (c *Counter) OnTick(v int) { c.n += v }
//
//	ticked := event.New[int]()
//	c := &Counter{}
//	event.AddMethod(ticked, c, (*Counter).OnTick)
//	ticked.Fire(1) // c.n == 1
//	c.Destroy()
//	ticked.Fire(1) // c.n == 1
//
// 分发中可以安全地添加/移除监听器, 再次触发或销毁事件本身.
// 所有者设置了执行器时, 其监听器被投递到执行器上异步执行, 见 executor 包.
package event
