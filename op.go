// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rdv

import (
	"time"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// correlator is the structural interface for correlation operations.
// DispatchCorrelate is non-blocking: it returns iox.ErrWouldBlock when
// the operation cannot make progress yet.
type correlator interface {
	DispatchCorrelate() (kont.Resumed, error)
}

// Await is the effect operation for waiting on a correlatable waiter.
// Perform(Await[T]{...}) resumes with Either[error, T]: Right(value)
// once the completion lands, Left(ErrTimeout) once Deadline passes.
type Await[T any] struct {
	kont.Phantom[kont.Either[error, T]]
	Waiter   TokenWaiter[T]
	Deadline time.Time // zero means no deadline
}

// DispatchCorrelate handles Await. Non-blocking: returns
// iox.ErrWouldBlock while no value is present and the deadline has not
// passed; the deadline is absolute, so retries re-apply it exactly.
func (op Await[T]) DispatchCorrelate() (kont.Resumed, error) {
	if v, err := op.Waiter.TryWait(); err == nil {
		return kont.Right[error, T](v), nil
	}
	if !op.Deadline.IsZero() && !time.Now().Before(op.Deadline) {
		return kont.Left[error, T](ErrTimeout), nil
	}
	return nil, iox.ErrWouldBlock
}

// Complete is the effect operation for delivering a value by token.
// Perform(Complete[T]{...}) resumes with true when a live wait received
// the value, false when the token resolved stale. Never blocks.
type Complete[T any] struct {
	kont.Phantom[bool]
	Arena *Arena[T]
	Token Token
	Value T
}

// DispatchCorrelate handles Complete on the arena. Never returns an
// error: a stale token is an ordinary false resumption.
func (op Complete[T]) DispatchCorrelate() (kont.Resumed, error) {
	return op.Arena.Complete(op.Token, op.Value), nil
}

// newAwait builds an Await with its absolute deadline fixed at
// construction time. timeout <= 0 means no deadline.
func newAwait[T any](w TokenWaiter[T], timeout time.Duration) Await[T] {
	op := Await[T]{Waiter: w}
	if timeout > 0 {
		op.Deadline = time.Now().Add(timeout)
	}
	return op
}
