package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildmap/events/delegate"
)

type fakeOwner struct {
	token *delegate.Token
}

func newFakeOwner() *fakeOwner {
	return &fakeOwner{token: delegate.NewToken()}
}

func (o *fakeOwner) LivenessToken() *delegate.Token {
	return o.token
}

// fakeEvent 记录被移除的委托, 可在回调中再次修改注册表
type fakeEvent struct {
	mu       sync.Mutex
	detached []uint64
	onDetach func(id uint64)
}

func (e *fakeEvent) DetachAttachment(id uint64) {
	e.mu.Lock()
	e.detached = append(e.detached, id)
	cb := e.onDetach
	e.mu.Unlock()
	if cb != nil {
		cb(id)
	}
}

func TestRegistry_RegisterAndRemove(t *testing.T) {
	r := New()
	ev, o := &fakeEvent{}, newFakeOwner()

	r.Register(ev, o, 1)
	r.Register(ev, o, 2)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 2, r.LenEvent(ev))
	assert.Equal(t, 2, r.LenOwner(o))

	r.Remove(ev, 1)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, r.LenOwner(o))

	// idempotent
	r.Remove(ev, 1)
	r.Remove(&fakeEvent{}, 2)
	assert.Equal(t, 1, r.Len())

	r.Remove(ev, 2)
	assert.Zero(t, r.Len())
	assert.Zero(t, r.LenOwner(o))
}

func TestRegistry_RegisterIgnoresNil(t *testing.T) {
	r := New()
	r.Register(nil, newFakeOwner(), 1)
	r.Register(&fakeEvent{}, nil, 1)
	r.Register(&fakeEvent{}, &fakeOwner{}, 1)
	assert.Zero(t, r.Len())
}

func TestRegistry_EventDestroyed(t *testing.T) {
	r := New()
	ev1, ev2 := &fakeEvent{}, &fakeEvent{}
	o := newFakeOwner()
	r.Register(ev1, o, 1)
	r.Register(ev1, o, 2)
	r.Register(ev2, o, 3)

	r.EventDestroyed(ev1)
	assert.Zero(t, r.LenEvent(ev1))
	assert.Equal(t, 1, r.LenOwner(o))
	assert.Empty(t, ev1.detached, "event destruction must not call back into the event")

	r.EventDestroyed(ev1)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_OwnerDestroyedDetachesEverywhere(t *testing.T) {
	r := New()
	ev1, ev2 := &fakeEvent{}, &fakeEvent{}
	o, other := newFakeOwner(), newFakeOwner()
	r.Register(ev1, o, 1)
	r.Register(ev2, o, 2)
	r.Register(ev2, other, 3)

	r.OwnerDestroyed(o)

	assert.Equal(t, []uint64{1}, ev1.detached)
	assert.Equal(t, []uint64{2}, ev2.detached)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, r.LenOwner(other))
	assert.Zero(t, r.LenOwner(o))
}

func TestRegistry_OwnerDestroyedToleratesReentrantMutation(t *testing.T) {
	r := New()
	ev := &fakeEvent{}
	o := newFakeOwner()
	late := newFakeOwner()
	ev.onDetach = func(id uint64) {
		// an event removing its record again and registering something new
		r.Remove(ev, id)
		r.Register(ev, late, id+100)
	}
	for id := uint64(1); id <= 5; id++ {
		r.Register(ev, o, id)
	}

	r.OwnerDestroyed(o)

	assert.Len(t, ev.detached, 5)
	assert.Zero(t, r.LenOwner(o))
	assert.Equal(t, 5, r.LenOwner(late))
}

func TestRegistry_ConcurrentBookkeeping(t *testing.T) {
	r := New()
	o := newFakeOwner()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		ev := &fakeEvent{}
		wg.Add(1)
		go func(base uint64) {
			defer wg.Done()
			for id := base; id < base+100; id++ {
				r.Register(ev, o, id)
			}
			for id := base; id < base+100; id += 2 {
				r.Remove(ev, id)
			}
		}(uint64(i) * 1000)
	}
	wg.Wait()
	assert.Equal(t, 400, r.Len())

	r.OwnerDestroyed(o)
	assert.Zero(t, r.Len())
}

func TestDefault_LazyAndReplaceable(t *testing.T) {
	isolated := New()
	prev := SetDefault(isolated)
	defer SetDefault(prev)

	require.Same(t, isolated, Default())
	ev, o := &fakeEvent{}, newFakeOwner()
	Register(ev, o, 1)
	assert.Equal(t, 1, isolated.Len())
	OwnerDestroyed(o)
	assert.Equal(t, []uint64{1}, ev.detached)
	Register(ev, o, 2)
	EventDestroyed(ev)
	Remove(ev, 2)
	assert.Zero(t, isolated.Len())

	SetDefault(nil)
	fresh := Default()
	assert.NotNil(t, fresh)
	assert.NotSame(t, isolated, fresh)
}
