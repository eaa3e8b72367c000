package flows

import (
	"context"
	"sync"
)

// Phase is the lifecycle stage of a fetch.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Fetch is the state of a read flow. Value is set only when Loaded and
// Message only when Failed.
type Fetch[T any] struct {
	Phase   Phase
	Value   T
	Message string
}

// fetcher runs one read at a time against shared state. A response that
// arrives after a newer fetch started is handed to its caller but never
// published.
type fetcher[T any] struct {
	state *Observable[Fetch[T]]

	mu  sync.Mutex
	gen uint64
}

func newFetcher[T any]() *fetcher[T] {
	return &fetcher[T]{state: NewObservable(Fetch[T]{})}
}

func (f *fetcher[T]) begin() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.state.Set(Fetch[T]{Phase: PhaseLoading})
	return f.gen
}

// publish sets st if gen is still current and reports whether it did.
func (f *fetcher[T]) publish(gen uint64, st Fetch[T]) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return false
	}
	f.state.Set(st)
	return true
}

// replace publishes st unconditionally and supersedes any fetch in flight.
func (f *fetcher[T]) replace(st Fetch[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen++
	f.state.Set(st)
}

func (f *fetcher[T]) run(ctx context.Context, call func(context.Context) (T, error), describe func(error) string) <-chan Fetch[T] {
	gen := f.begin()
	out := make(chan Fetch[T], 1)
	go func() {
		defer close(out)
		v, err := call(ctx)
		st := Fetch[T]{Phase: PhaseLoaded, Value: v}
		if err != nil {
			st = Fetch[T]{Phase: PhaseFailed, Message: describe(err)}
		}
		f.publish(gen, st)
		out <- st
	}()
	return out
}
