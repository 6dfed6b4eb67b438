// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rdv provides token-correlated response waiting: one goroutine
// blocks for a value that a different goroutine delivers later, matched
// only by an opaque integer token carried across a protocol boundary.
//
// This is the join point of asynchronous request/response clients where
// requests and replies travel on different logical channels and must be
// re-united by an identifier alone.
//
// # Architecture
//
//   - Handoff: [Waiter] is a one-shot value cell plus wake signal. Blocking
//     waits use adaptive backoff ([code.hybscloud.com/iox.Backoff]) with
//     timeout and context cancellation.
//   - Correlation: [Arena] hands out [TokenWaiter] handles whose [Token]
//     packs a slot index and per-slot generation. Completion resolves the
//     token with a bounds-checked lookup and a CAS lease on the slot's key
//     field; no shared map, no allocation on the resolve path.
//   - Destruction: [TokenWaiter.Release] spins until any in-flight lease is
//     released, so a remote completion never touches a recycled slot.
//   - Transport: [NewPipe] creates an in-memory [Conn] pair over bounded
//     lock-free SPSC queues via [code.hybscloud.com/lfq], carrying [Frame]
//     values ({token, body}). Typed bodies are msgpack-encoded.
//   - Non-blocking: probes and transport operations return
//     [code.hybscloud.com/iox.ErrWouldBlock] when they cannot progress yet.
//
// # API Topologies
//
//   - Direct: [Arena.NewWaiter], [TokenWaiter.Token], [Arena.Complete],
//     [TokenWaiter.Wait], [TokenWaiter.WaitContext], [TokenWaiter.Release].
//   - Client: [Client.Call] issues a waiter, frames the request, and blocks;
//     [Client.Pump] completes pending calls from inbound frames; [Serve]
//     answers requests preserving tokens.
//   - Effects: [Await] and [Complete] operations on [code.hybscloud.com/kont].
//     Cont-world [AwaitBind]/[CompleteThen], Expr-world [ExprAwaitBind]/
//     [ExprCompleteThen].
//
// # Integration
//
//   - Stepping: [Step] and [Advance] evaluate computations one effect at a
//     time, making them easy to integrate with a proactor loop.
//   - Blocking: [Exec], [Run] (and Expr variants) wait past boundaries using
//     adaptive backoff.
//
// # Key field protocol
//
// Each slot's key field is the sole coordination point between the owning
// goroutine and remote resolvers:
//
//	0           unused or destroyed
//	token       issued
//	token + 1   leased by a resolver
//
// A completion that wins the lease stores its value and wakes the waiter
// before releasing the lease; a concurrent Release spins until the lease
// clears. Stale, duplicate, or malformed tokens resolve to nothing and the
// completion is silently dropped.
//
// # Example
//
//	var arena rdv.Arena[int]
//	w := arena.NewWaiter()
//	tok := w.Token() // serialize into an outbound message
//	go func() { arena.Complete(tok, 42) }()
//	v, err := w.Wait(0) // v == 42
//	w.Release()
package rdv
