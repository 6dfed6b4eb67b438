// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rdv

import (
	"context"
	"sync"
	"time"

	"code.hybscloud.com/iox"
	"github.com/eapache/queue"
)

// Client correlates outbound requests with inbound replies over a
// Conn. A call's lifecycle: waiter acquired → request framed with its
// token and sent → caller blocked on the waiter; Pump completes
// waiters from inbound frames; a reply for an abandoned call resolves
// its token stale and is dropped.
type Client struct {
	conn  *Conn
	arena Arena[[]byte]
	mu    sync.Mutex // serializes the send side (SPSC producer)
}

// NewClient wraps conn. The caller runs Pump, usually on a dedicated
// goroutine, to dispatch inbound replies.
func NewClient(conn *Conn) *Client {
	return &Client{conn: conn}
}

// Call sends body and blocks for the correlated reply. Returns
// ErrTimeout when no reply lands within timeout (timeout <= 0 blocks
// indefinitely) and ErrClosed when the pipe closes before the request
// is sent. Safe for concurrent use.
func (c *Client) Call(body []byte, timeout time.Duration) ([]byte, error) {
	return c.call(nil, body, timeout)
}

// CallContext is Call additionally observing ctx; cancellation returns
// ErrCanceled.
func (c *Client) CallContext(ctx context.Context, body []byte, timeout time.Duration) ([]byte, error) {
	return c.call(ctx.Done(), body, timeout)
}

func (c *Client) call(done <-chan struct{}, body []byte, timeout time.Duration) ([]byte, error) {
	tw := c.arena.NewWaiter()
	defer tw.Release()
	if err := c.send(Frame{Token: tw.Token(), Body: body}); err != nil {
		return nil, err
	}
	return tw.slot.w.wait(done, timeout)
}

// send enqueues f, waiting out transport backpressure with adaptive
// backoff. The mutex reduces concurrent callers to the single producer
// the SPSC queue requires.
func (c *Client) send(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var bo iox.Backoff
	for {
		if c.conn.Closed() {
			return ErrClosed
		}
		if err := c.conn.Send(f); err == nil {
			return nil
		}
		bo.Wait()
	}
}

// Close closes the underlying pipe. Pending calls keep waiting until
// their own deadlines; Pump returns once the inbound queue drains.
func (c *Client) Close() {
	c.conn.Close()
}

// Pump drains inbound frames, completing pending calls by token, until
// the pipe is closed and the inbound queue is empty. Run it on one
// goroutine per client (it is the SPSC consumer of the reply
// direction).
func (c *Client) Pump() {
	var bo iox.Backoff
	for {
		f, err := c.conn.Recv()
		if err == nil {
			c.arena.Complete(f.Token, f.Body)
			bo.Reset()
			continue
		}
		if c.conn.Closed() {
			return
		}
		bo.Wait()
	}
}

// Serve runs a responder loop on conn: each inbound frame's body is
// passed to handler and the reply is sent back carrying the same
// token. Replies hitting transport backpressure are buffered in FIFO
// order and flushed before new replies, preserving per-conn reply
// order. Returns when the pipe is closed, the inbound queue is empty,
// and every buffered reply has been flushed.
func Serve(conn *Conn, handler func([]byte) []byte) {
	pending := queue.New()
	var bo iox.Backoff
	for {
		progress := false
		for pending.Length() > 0 {
			f := pending.Peek().(Frame)
			if conn.Send(f) != nil {
				break
			}
			pending.Remove()
			progress = true
		}
		if f, err := conn.Recv(); err == nil {
			rsp := Frame{Token: f.Token, Body: handler(f.Body)}
			if pending.Length() > 0 || conn.Send(rsp) != nil {
				pending.Add(rsp)
			}
			progress = true
		} else if conn.Closed() && pending.Length() == 0 {
			return
		}
		if !progress {
			bo.Wait()
		} else {
			bo.Reset()
		}
	}
}
