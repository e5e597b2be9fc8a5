package engine

import (
	"context"
	"sync"
	"sync/atomic"

	"arcadeboard/core"
)

type DispatchMode int

const (
	DispatchSync DispatchMode = iota
	DispatchAsync
)

// AllEvents subscribes a handler to every event type.
const AllEvents core.EventType = ""

const (
	defaultQueueSize    = 1024
	defaultAsyncWorkers = 2
)

type subscription struct {
	id int64
	fn func(context.Context, core.Event)
}

// EventBus provides thread-safe pub/sub with sync and async dispatch.
type EventBus struct {
	mode       DispatchMode
	mu         sync.RWMutex
	subs       map[core.EventType]map[int64]subscription
	nextID     int64
	asyncQueue chan core.Event
	done       chan struct{}
	closeOnce  sync.Once
	pubMu      sync.RWMutex
	closed     bool
	wg         sync.WaitGroup
	dropped    atomic.Int64
}

func NewEventBus(mode DispatchMode) *EventBus {
	eb := &EventBus{
		mode:       mode,
		subs:       make(map[core.EventType]map[int64]subscription),
		asyncQueue: make(chan core.Event, defaultQueueSize),
		done:       make(chan struct{}),
	}
	if mode == DispatchAsync {
		eb.startWorkers(defaultAsyncWorkers)
	}
	return eb
}

func (e *EventBus) startWorkers(n int) {
	for i := 0; i < n; i++ {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			for {
				select {
				case ev := <-e.asyncQueue:
					e.dispatchSync(context.Background(), ev)
				case <-e.done:
					e.drain()
					return
				}
			}
		}()
	}
}

func (e *EventBus) drain() {
	for {
		select {
		case ev := <-e.asyncQueue:
			e.dispatchSync(context.Background(), ev)
		default:
			return
		}
	}
}

// Close stops accepting async events, delivers everything already queued and
// waits for the workers to finish. Events published after Close are dropped.
func (e *EventBus) Close() {
	e.closeOnce.Do(func() {
		e.pubMu.Lock()
		e.closed = true
		e.pubMu.Unlock()
		close(e.done)
		e.wg.Wait()
	})
}

// Dropped reports how many async events were discarded because the queue was full.
func (e *EventBus) Dropped() int64 { return e.dropped.Load() }

// Subscribe registers a handler for an event type (or AllEvents). Returns unsubscribe func.
func (e *EventBus) Subscribe(typ core.EventType, handler func(context.Context, core.Event)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.nextID++
	id := e.nextID
	if e.subs[typ] == nil {
		e.subs[typ] = make(map[int64]subscription)
	}
	e.subs[typ][id] = subscription{id: id, fn: handler}
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if m := e.subs[typ]; m != nil {
			delete(m, id)
		}
	}
}

// Publish sends an event to subscribers. Async publishing never blocks the
// request path: when the queue is full the event is dropped and counted.
func (e *EventBus) Publish(ctx context.Context, ev core.Event) {
	if e.mode == DispatchAsync {
		e.pubMu.RLock()
		defer e.pubMu.RUnlock()
		if e.closed {
			e.dropped.Add(1)
			return
		}
		select {
		case e.asyncQueue <- ev:
		default:
			e.dropped.Add(1)
		}
		return
	}
	e.dispatchSync(ctx, ev)
}

func (e *EventBus) dispatchSync(ctx context.Context, ev core.Event) {
	e.mu.RLock()
	handlers := make([]func(context.Context, core.Event), 0, len(e.subs[ev.Type])+len(e.subs[AllEvents]))
	for _, s := range e.subs[ev.Type] {
		handlers = append(handlers, s.fn)
	}
	if ev.Type != AllEvents {
		for _, s := range e.subs[AllEvents] {
			handlers = append(handlers, s.fn)
		}
	}
	e.mu.RUnlock()
	for _, h := range handlers {
		h(ctx, ev)
	}
}
