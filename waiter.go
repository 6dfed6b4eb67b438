// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rdv

import (
	"context"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// Cell states for Waiter. A value is published by moving the cell from
// cellEmpty to cellFull; the consumer moves it to cellTaken, so a value
// is handed out at most once.
const (
	cellEmpty uint32 = iota
	cellFull
	cellTaken
)

// Waiter delivers exactly one value from a producer goroutine to a
// consumer goroutine, with timeout and cancellation on the consuming
// side. The zero value is ready to use.
//
// Set publishes the value with a release store on the cell state; the
// waiting side observes it with an acquire load, so the value itself
// needs no further synchronization. Set must be called at most once per
// instance.
type Waiter[T any] struct {
	cell  atomix.Uint32
	wakes atomix.Uint32 // wake epoch, bumped by Wake
	value T
}

// Set stores v and wakes the waiter. Any goroutine blocked in Wait
// becomes eligible to return the value.
func (w *Waiter[T]) Set(v T) {
	w.value = v
	w.cell.Store(cellFull)
	w.Wake()
}

// Wake signals the waiter without delivering a value. A waiter woken
// with no value present treats it as spurious and blocks again with
// its remaining deadline.
func (w *Waiter[T]) Wake() {
	w.wakes.Add(1)
}

// TryWait is the non-blocking probe: it consumes and returns the value
// if one is present, or iox.ErrWouldBlock otherwise. A value is
// returned exactly once; after a successful TryWait the cell reads as
// empty again.
func (w *Waiter[T]) TryWait() (T, error) {
	if w.cell.Load() == cellFull && w.cell.CompareAndSwap(cellFull, cellTaken) {
		return w.value, nil
	}
	var zero T
	return zero, iox.ErrWouldBlock
}

// Wait blocks until a value is delivered or timeout elapses, returning
// ErrTimeout in the latter case. timeout <= 0 blocks indefinitely.
func (w *Waiter[T]) Wait(timeout time.Duration) (T, error) {
	return w.wait(nil, timeout)
}

// WaitContext is Wait additionally observing ctx: cancellation returns
// ErrCanceled, always distinct from ErrTimeout.
func (w *Waiter[T]) WaitContext(ctx context.Context, timeout time.Duration) (T, error) {
	return w.wait(ctx.Done(), timeout)
}

// wait blocks on the wake signal with adaptive backoff. The deadline is
// fixed once on entry and re-applied across spurious wakes.
func (w *Waiter[T]) wait(done <-chan struct{}, timeout time.Duration) (T, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	seen := w.wakes.Load()
	var bo iox.Backoff
	for {
		if v, err := w.TryWait(); err == nil {
			return v, nil
		}
		if done != nil {
			select {
			case <-done:
				var zero T
				return zero, ErrCanceled
			default:
			}
		}
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			var zero T
			return zero, ErrTimeout
		}
		if n := w.wakes.Load(); n != seen {
			// spurious wake: no value yet, re-arm and block again
			seen = n
			bo.Reset()
			continue
		}
		bo.Wait()
	}
}

// reset returns the waiter to its zero state. Callers must guarantee
// exclusive ownership: no concurrent Set, Wake, or Wait.
func (w *Waiter[T]) reset() {
	var zero T
	w.value = zero
	w.wakes.Store(0)
	w.cell.Store(cellEmpty)
}
