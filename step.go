// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rdv

import (
	"code.hybscloud.com/kont"
)

// Step evaluates a correlation protocol until the first effect
// suspension. Returns (result, nil) on completion, or (zero,
// suspension) if pending.
func Step[R any](protocol kont.Expr[R]) (R, *kont.Suspension[R]) {
	return kont.StepExpr(protocol)
}

// Advance dispatches the suspended correlation operation.
// DispatchCorrelate is non-blocking: it returns iox.ErrWouldBlock when
// the awaited value has not arrived yet (the I/O boundary).
//
// On success (nil error), the suspension is consumed and the protocol
// advances to the next effect or completion.
// On iox.ErrWouldBlock, the suspension is unconsumed and may be
// retried after the completer makes progress.
func Advance[R any](susp *kont.Suspension[R]) (R, *kont.Suspension[R], error) {
	cop, ok := susp.Op().(correlator)
	if !ok {
		panic("rdv: unhandled effect in Advance")
	}
	v, err := cop.DispatchCorrelate()
	if err != nil {
		var zero R
		return zero, susp, err
	}
	result, next := susp.Resume(v)
	return result, next, nil
}
