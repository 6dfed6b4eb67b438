// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rdv

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/lfq"
)

// frameQueueCapacity is the bounded capacity for pipe transport
// queues. 16 frames absorb a burst of pipelined calls while keeping
// the ring buffers compact; backpressure past that surfaces as
// iox.ErrWouldBlock.
const frameQueueCapacity = 16

// pipeContext holds the lock-free transport for a single pipe side.
// Each direction is a single-producer single-consumer bounded queue.
type pipeContext struct {
	sendQ    *lfq.SPSC[Frame]
	recvQ    *lfq.SPSC[Frame]
	closed   *atomix.Uint32
	sendSlot Frame
}

// Conn is one side of an in-memory frame pipe. Send and Recv are
// non-blocking; each must be called from at most one goroutine at a
// time (the SPSC contract).
type Conn struct {
	ctx    pipeContext
	serial Serial
}

// Serial returns the serial number assigned to this conn's pipe.
func (c *Conn) Serial() Serial {
	return c.serial
}

// Send enqueues f toward the peer.
// Non-blocking: returns iox.ErrWouldBlock if the bounded SPSC queue is
// full.
func (c *Conn) Send(f Frame) error {
	c.ctx.sendSlot = f
	return c.ctx.sendQ.Enqueue(&c.ctx.sendSlot)
}

// Recv dequeues the next inbound frame.
// Non-blocking: returns iox.ErrWouldBlock if the bounded SPSC queue is
// empty.
func (c *Conn) Recv() (Frame, error) {
	return c.ctx.recvQ.Dequeue()
}

// Close signals pipe shutdown to both sides. Frames already enqueued
// remain receivable; loops drain before exiting. Never blocks.
func (c *Conn) Close() {
	c.ctx.closed.Add(1)
}

// Closed reports whether either side has closed the pipe.
func (c *Conn) Closed() bool {
	return c.ctx.closed.Load() != 0
}

// pipePair holds both conns, queues, and shared state in a single
// allocation. SPSC queues are embedded as values; only the ring
// buffers are separate heap objects.
type pipePair struct {
	a      Conn
	b      Conn
	closed atomix.Uint32
	ab     lfq.SPSC[Frame]
	ba     lfq.SPSC[Frame]
}

// NewPipe creates a connected pair of frame conns. Internal transport
// uses bounded lock-free SPSC queues, one per direction, and a shared
// atomic counter for close signaling.
func NewPipe() (*Conn, *Conn) {
	s := nextSerial()

	pair := &pipePair{}
	pair.ab.Init(frameQueueCapacity)
	pair.ba.Init(frameQueueCapacity)

	pair.a = Conn{
		ctx: pipeContext{
			sendQ:  &pair.ab,
			recvQ:  &pair.ba,
			closed: &pair.closed,
		},
		serial: s,
	}
	pair.b = Conn{
		ctx: pipeContext{
			sendQ:  &pair.ba,
			recvQ:  &pair.ab,
			closed: &pair.closed,
		},
		serial: s,
	}
	return &pair.a, &pair.b
}
