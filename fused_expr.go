// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rdv

import (
	"time"

	"code.hybscloud.com/kont"
)

// exprReturnFrame is pre-allocated to eliminate heap escapes when
// boxing the terminal frame during Expr-world construction.
var exprReturnFrame kont.Frame = kont.ReturnFrame{}

// identityResume is the identity resume function for EffectFrame
// construction. Named function produces a static function value,
// consistent with kont convention.
func identityResume(v kont.Erased) kont.Erased { return v }

func awaitBindUnwind[T, B any](data, _, _ kont.Erased, current kont.Erased) (kont.Erased, kont.Frame) {
	f := data.(func(kont.Either[error, T]) kont.Expr[B])
	result := f(current.(kont.Either[error, T]))
	return kont.Erased(result.Value), result.Frame
}

// ExprAwaitBind waits on w and passes the outcome to f.
// Fuses ExprPerform(Await[T]{...}) + ExprBind.
func ExprAwaitBind[T, B any](w TokenWaiter[T], timeout time.Duration, f func(kont.Either[error, T]) kont.Expr[B]) kont.Expr[B] {
	bf := kont.AcquireUnwindFrame()
	bf.Data1 = f
	bf.Unwind = awaitBindUnwind[T, B]
	ef := kont.AcquireEffectFrame()
	ef.Operation = newAwait(w, timeout)
	ef.Resume = identityResume
	ef.Next = bf
	return kont.ExprSuspend[B](ef)
}

// ExprCompleteThen delivers v to the wait identified by tok on a and
// then continues with next.
// Fuses ExprPerform(Complete[T]{...}) + ExprThen.
func ExprCompleteThen[T, B any](a *Arena[T], tok Token, v T, next kont.Expr[B]) kont.Expr[B] {
	tf := kont.AcquireThenFrame()
	tf.Second = kont.Expr[kont.Erased]{Value: kont.Erased(next.Value), Frame: next.Frame}
	tf.Next = exprReturnFrame
	ef := kont.AcquireEffectFrame()
	ef.Operation = Complete[T]{Arena: a, Token: tok, Value: v}
	ef.Resume = identityResume
	ef.Next = tf
	return kont.ExprSuspend[B](ef)
}

func completeBindUnwind[B any](data, _, _ kont.Erased, current kont.Erased) (kont.Erased, kont.Frame) {
	f := data.(func(bool) kont.Expr[B])
	result := f(current.(bool))
	return kont.Erased(result.Value), result.Frame
}

// ExprCompleteBind delivers v to the wait identified by tok on a and
// passes the delivered/stale outcome to f.
// Fuses ExprPerform(Complete[T]{...}) + ExprBind.
func ExprCompleteBind[T, B any](a *Arena[T], tok Token, v T, f func(bool) kont.Expr[B]) kont.Expr[B] {
	bf := kont.AcquireUnwindFrame()
	bf.Data1 = f
	bf.Unwind = completeBindUnwind[B]
	ef := kont.AcquireEffectFrame()
	ef.Operation = Complete[T]{Arena: a, Token: tok, Value: v}
	ef.Resume = identityResume
	ef.Next = bf
	return kont.ExprSuspend[B](ef)
}
