package flows

import "sync"

// Observable holds a value and pushes every change to its subscribers.
// Slow subscribers only ever see the latest value.
type Observable[T any] struct {
	mu   sync.Mutex
	v    T
	subs map[int]chan T
	next int
}

// NewObservable returns an observable holding initial.
func NewObservable[T any](initial T) *Observable[T] {
	return &Observable[T]{v: initial, subs: make(map[int]chan T)}
}

// Get returns the current value.
func (o *Observable[T]) Get() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.v
}

// Set replaces the value and notifies subscribers.
func (o *Observable[T]) Set(v T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.v = v
	for _, ch := range o.subs {
		offer(ch, v)
	}
}

// Subscribe returns a channel that first receives the current value and then
// every later one. cancel closes the channel.
func (o *Observable[T]) Subscribe() (<-chan T, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.next
	o.next++
	ch := make(chan T, 1)
	ch <- o.v
	o.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			delete(o.subs, id)
			close(ch)
		})
	}
}

// offer replaces any unread value in ch with v. Callers hold the lock, so
// there is a single sender.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}
