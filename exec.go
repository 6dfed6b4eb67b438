// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rdv

import (
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// correlateHandler implements kont.Handler for correlation effects.
// Waits on iox.ErrWouldBlock, converting non-blocking dispatch into
// blocking evaluation for Exec/ExecExpr. Stateless: Await and Complete
// operations carry their own waiter and arena references.
type correlateHandler[R any] struct{}

// Dispatch implements kont.Handler via structural interface assertion.
// Waits past the iox.ErrWouldBlock boundary with adaptive backoff.
func (correlateHandler[R]) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	cop, ok := op.(correlator)
	if !ok {
		panic("rdv: unhandled effect in correlateHandler")
	}
	return dispatchWait(cop), true
}

// dispatchWait blocks until DispatchCorrelate succeeds, backing off on
// iox.ErrWouldBlock with iox.Backoff.
func dispatchWait(cop correlator) kont.Resumed {
	var bo iox.Backoff
	for {
		v, err := cop.DispatchCorrelate()
		if err == nil {
			return v
		}
		bo.Wait()
	}
}

// Exec runs a Cont-world correlation protocol to completion. Blocks on
// iox.ErrWouldBlock via adaptive backoff (iox.Backoff), without
// spawning goroutines or creating channels.
func Exec[R any](protocol kont.Eff[R]) R {
	return kont.Handle(protocol, correlateHandler[R]{})
}

// ExecExpr runs an Expr-world correlation protocol to completion.
// Blocks on iox.ErrWouldBlock via adaptive backoff (iox.Backoff),
// without spawning goroutines or creating channels.
func ExecExpr[R any](protocol kont.Expr[R]) R {
	return kont.HandleExpr(protocol, correlateHandler[R]{})
}
