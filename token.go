// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rdv

import (
	"context"
	"time"

	"code.hybscloud.com/iox"
)

// Token is the opaque integer correlating a remote completion to a
// specific pending wait. It is a plain value safe to serialize into a
// protocol header and must travel unmodified.
//
// Layout: bit 0 is reserved as the lease flag (a leased slot holds
// token+1 in its key field), bits 1..32 hold the slot index, bits
// 33..63 hold the slot's generation at issue time. Generation zero is
// never issued, so a valid token is never zero and reuse of a slot
// invalidates all tokens from its earlier lives.
type Token uint64

const (
	tokenFlagBit    = 1
	tokenIndexShift = 1
	tokenIndexBits  = 32
	tokenIndexMask  = 1<<tokenIndexBits - 1
	tokenGenShift   = tokenIndexShift + tokenIndexBits
	tokenGenMask    = 1<<(64-tokenGenShift) - 1
)

// encodeToken packs a slot generation and index. gen must be non-zero
// and below 2^31.
func encodeToken(gen, idx uint32) Token {
	return Token(uint64(gen)<<tokenGenShift | uint64(idx)<<tokenIndexShift)
}

// decodeToken recovers the slot index, rejecting encodings no
// issueToken path can produce: the zero token, a set lease flag, and
// generation zero. Unlike the address-recovery sanity check this
// replaces, rejection here is exact; a token that decodes still proves
// nothing until the key-field CAS matches it.
func decodeToken(tok Token) (uint32, bool) {
	if tok == 0 || tok&tokenFlagBit != 0 {
		return 0, false
	}
	if uint64(tok)>>tokenGenShift&tokenGenMask == 0 {
		return 0, false
	}
	return uint32(uint64(tok) >> tokenIndexShift & tokenIndexMask), true
}

// TokenWaiter is the handle to one pending correlatable wait: an arena
// slot with its issued token. Handles are small values; copies refer to
// the same wait. Exactly one Release per handed-out waiter.
type TokenWaiter[T any] struct {
	arena *Arena[T]
	slot  *slot[T]
	idx   uint32
	token Token
}

// Token returns the issued correlation token. Issuance happened when
// the arena handed out the slot, so the token is stable for the
// waiter's whole lifetime.
func (tw TokenWaiter[T]) Token() Token { return tw.token }

// TryWait is the non-blocking probe; see Waiter.TryWait.
func (tw TokenWaiter[T]) TryWait() (T, error) { return tw.slot.w.TryWait() }

// Wait blocks until the correlated completion delivers a value or
// timeout elapses. timeout <= 0 blocks indefinitely.
func (tw TokenWaiter[T]) Wait(timeout time.Duration) (T, error) {
	return tw.slot.w.Wait(timeout)
}

// WaitContext is Wait additionally observing ctx; see
// Waiter.WaitContext.
func (tw TokenWaiter[T]) WaitContext(ctx context.Context, timeout time.Duration) (T, error) {
	return tw.slot.w.WaitContext(ctx, timeout)
}

// Release runs the destruction protocol and returns the slot to the
// arena. It must be called exactly once, after the blocking wait
// returned (by value, timeout, or cancellation).
//
// The key field is CASed from the issued token to zero. While a remote
// resolver holds the lease the key reads token+1 and the CAS keeps
// spinning, so the slot is never recycled under an in-flight
// completion; the lease clears right after the value lands, bounding
// the spin to a handful of instructions.
func (tw TokenWaiter[T]) Release() {
	s := tw.slot
	key := uint64(tw.token)
	var bo iox.Backoff
	for !s.key.CompareAndSwap(key, 0) {
		if k := s.key.Load(); k != key && k != key+tokenFlagBit {
			// neither issued nor leased: this waiter was already
			// released, nothing left to reclaim
			return
		}
		bo.Wait()
	}
	s.w.reset()
	tw.arena.push(tw.idx)
}
