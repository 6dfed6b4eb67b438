// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rdv

import (
	"sync"

	"code.hybscloud.com/atomix"
)

// Arena geometry. Pages are allocated lazily; the page table itself is
// a fixed array so slot pointers stay stable for the arena's lifetime.
// maxSlots bounds concurrently pending waits, not total waits: slots
// recycle through the free list.
const (
	pageShift = 8
	pageSize  = 1 << pageShift // slots per page
	pageMask  = pageSize - 1
	maxPages  = 1 << 12
	maxSlots  = maxPages * pageSize
)

// slot owns one pending wait. The key field carries the token state
// machine described in the package documentation; gen and next are
// written only by the slot's current owner (gen while the key is
// zeroed, next while the slot is being pushed onto the free list), so
// they need no ordering of their own beyond the free-list CASes.
type slot[T any] struct {
	key  atomix.Uint64
	gen  uint32
	next atomix.Uint32 // free-list link: index+1, 0 terminates
	w    Waiter[T]
}

type page[T any] struct {
	slots [pageSize]slot[T]
}

// Arena hands out correlatable waiters and resolves their tokens back
// to live slots with bounds-checked indexing — no shared lookup table,
// no allocation on the resolve path. The zero value is ready to use.
//
// Token resolution is safe against the owning goroutine's teardown:
// the slot's key field arbitrates between an in-flight completion
// (transient lease) and Release (destruction), and slot memory is
// never reclaimed, only recycled with a bumped generation.
type Arena[T any] struct {
	free      atomix.Uint64 // Treiber head: version<<32 | index+1
	allocated atomix.Uint32 // carved slot count; published after page writes
	grow      sync.Mutex    // serializes page allocation (rare path)
	pages     [maxPages]*page[T]
}

// NewWaiter acquires a slot, bumps its generation, and issues its
// token. The returned handle must be Released exactly once after its
// wait concludes. Panics if maxSlots waits are already pending.
func (a *Arena[T]) NewWaiter() TokenWaiter[T] {
	idx := a.pop()
	s := a.slot(idx)
	s.gen = (s.gen + 1) & tokenGenMask
	if s.gen == 0 {
		// generation zero marks "never issued"; skip it on wrap
		s.gen = 1
	}
	tok := encodeToken(s.gen, idx)
	s.key.Store(uint64(tok))
	return TokenWaiter[T]{arena: a, slot: s, idx: idx, token: tok}
}

// Complete delivers v to the pending wait identified by tok and wakes
// its waiter. Reports whether a live wait was found; stale, duplicate,
// never-issued, and malformed tokens are a silent no-op returning
// false — late completions for abandoned waits are expected under
// timeout races.
//
// The value is stored and the waiter woken while the lease is still
// held, so a racing Release observes the locked key and spins until
// delivery finished. If the waiter already timed out, the value lands
// in a cell the owner is about to discard, which is harmless.
func (a *Arena[T]) Complete(tok Token, v T) bool {
	s := a.resolveAndLock(tok)
	if s == nil {
		return false
	}
	s.w.Set(v)
	s.key.CompareAndSwap(uint64(tok)+tokenFlagBit, uint64(tok))
	return true
}

// resolveAndLock resolves tok back to its slot and takes the lease.
// Returns nil when the token is malformed, out of range, never issued,
// stale, already leased, or already destroyed. On success the slot is
// guaranteed to stay alive until the lease is released.
func (a *Arena[T]) resolveAndLock(tok Token) *slot[T] {
	idx, ok := decodeToken(tok)
	if !ok || idx >= a.allocated.Load() {
		return nil
	}
	s := a.slot(idx)
	if !s.key.CompareAndSwap(uint64(tok), uint64(tok)+tokenFlagBit) {
		return nil
	}
	return s
}

func (a *Arena[T]) slot(idx uint32) *slot[T] {
	return &a.pages[idx>>pageShift].slots[idx&pageMask]
}

// pop takes a recycled slot off the free list, or carves a fresh one
// when the list is empty. The head's high half is a version bumped on
// every successful CAS to defeat ABA on concurrent pops.
func (a *Arena[T]) pop() uint32 {
	for {
		h := a.free.Load()
		idx1 := uint32(h)
		if idx1 == 0 {
			return a.carve()
		}
		next := a.slot(idx1 - 1).next.Load()
		if a.free.CompareAndSwap(h, nextFreeHead(h, next)) {
			return idx1 - 1
		}
	}
}

// push returns a destroyed slot to the free list for reuse.
func (a *Arena[T]) push(idx uint32) {
	s := a.slot(idx)
	for {
		h := a.free.Load()
		s.next.Store(uint32(h))
		if a.free.CompareAndSwap(h, nextFreeHead(h, idx+1)) {
			return
		}
	}
}

// nextFreeHead builds a free-list head pointing at idx1 with the
// version bumped.
func nextFreeHead(h uint64, idx1 uint32) uint64 {
	return (h>>32+1)<<32 | uint64(idx1)
}

// carve extends the arena by one slot, allocating its page on first
// touch. The mutex only guards this rare growth path; the allocated
// counter is bumped after the page write so resolvers that
// bounds-check against it always observe an initialized page.
func (a *Arena[T]) carve() uint32 {
	a.grow.Lock()
	n := a.allocated.Load()
	if n == maxSlots {
		a.grow.Unlock()
		panic("rdv: arena exhausted")
	}
	if pi := n >> pageShift; a.pages[pi] == nil {
		a.pages[pi] = new(page[T])
	}
	a.allocated.Add(1)
	a.grow.Unlock()
	return n
}
