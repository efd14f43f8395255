package plugin

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// DefaultQueueSize bounds the number of requests waiting for the main loop.
const DefaultQueueSize = 64

// Handler executes one request on the main loop.
type Handler func(req *Request) Response

// Bridge carries requests from plugin goroutines to the editor's main loop.
// Submit may be called from any goroutine; Drain must only be called from
// the goroutine that owns the editor.
type Bridge struct {
	queue  chan *Request
	nextID atomic.Uint64

	mu        sync.Mutex
	closed    bool
	cancelled map[uuid.UUID]bool
	// pending holds deferred requests by state so they can be cancelled.
	pending map[*Request]uuid.UUID
	notify  chan struct{}
	done    chan struct{}
}

// NewBridge creates a bridge whose queue holds size requests.
func NewBridge(size int) *Bridge {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Bridge{
		queue:     make(chan *Request, size),
		cancelled: make(map[uuid.UUID]bool),
		pending:   make(map[*Request]uuid.UUID),
		notify:    make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// Notify is signalled whenever a request is queued. The main loop can
// select on it to wake up early.
func (b *Bridge) Notify() <-chan struct{} {
	return b.notify
}

// Submit queues req and waits for its response. A request without an ID is
// numbered. Submit returns ctx.Err() if the context ends first, and an
// ErrCancelled response if the bridge is closed.
func (b *Bridge) Submit(ctx context.Context, req *Request) (Response, error) {
	if err := req.Validate(); err != nil {
		return Fail(req, err), nil
	}
	if req.ID == 0 {
		req.ID = b.nextID.Add(1)
	}
	req.reply = make(chan Response, 1)

	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return Fail(req, ErrCancelled), nil
	}

	select {
	case b.queue <- req:
	case <-b.done:
		return Fail(req, ErrCancelled), nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
	select {
	case b.notify <- struct{}{}:
	default:
	}

	select {
	case resp := <-req.reply:
		return resp, nil
	case <-b.done:
		// The request may still have been answered before the close.
		select {
		case resp := <-req.reply:
			return resp, nil
		default:
			return Fail(req, ErrCancelled), nil
		}
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// Drain runs every queued request through handle and returns how many ran.
// It never blocks. Requests addressed to a cancelled state are answered
// with ErrCancelled without reaching the handler. Deferred responses are
// remembered until the handler replies or the state is cancelled.
func (b *Bridge) Drain(handle Handler) int {
	n := 0
	for {
		select {
		case req := <-b.queue:
			n++
			b.run(req, handle)
		default:
			return n
		}
	}
}

func (b *Bridge) run(req *Request, handle Handler) {
	b.mu.Lock()
	cancelled := b.closed || (req.State != uuid.Nil && b.cancelled[req.State])
	b.mu.Unlock()
	if cancelled {
		req.Reply(Fail(req, ErrCancelled))
		return
	}

	resp := handle(req)
	if !resp.Pending {
		req.Reply(resp)
		return
	}
	b.mu.Lock()
	b.pending[req] = req.State
	b.mu.Unlock()
}

// Resolve answers a deferred request.
func (b *Bridge) Resolve(req *Request, resp Response) {
	b.mu.Lock()
	delete(b.pending, req)
	b.mu.Unlock()
	req.Reply(resp)
}

// CancelState answers every deferred request bound to id with ErrCancelled
// and rejects queued requests for it. Call it when a document closes.
func (b *Bridge) CancelState(id uuid.UUID) int {
	b.mu.Lock()
	b.cancelled[id] = true
	var reqs []*Request
	for req, state := range b.pending {
		if state == id {
			reqs = append(reqs, req)
			delete(b.pending, req)
		}
	}
	b.mu.Unlock()

	for _, req := range reqs {
		req.Reply(Fail(req, ErrCancelled))
	}
	return len(reqs)
}

// Close cancels every queued and deferred request. Later submissions fail
// with ErrCancelled.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.done)
	reqs := make([]*Request, 0, len(b.pending))
	for req := range b.pending {
		reqs = append(reqs, req)
	}
	clear(b.pending)
	b.mu.Unlock()

	for _, req := range reqs {
		req.Reply(Fail(req, ErrCancelled))
	}
	b.Drain(func(req *Request) Response { return Fail(req, ErrCancelled) })
}
