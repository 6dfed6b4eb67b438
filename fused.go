// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rdv

import (
	"time"

	"code.hybscloud.com/kont"
)

// AwaitBind waits on w and passes the outcome to f: Right(value) on
// delivery, Left(ErrTimeout) once timeout elapses. timeout <= 0 waits
// indefinitely. Fuses Perform(Await[T]{...}) + Bind.
func AwaitBind[T, B any](w TokenWaiter[T], timeout time.Duration, f func(kont.Either[error, T]) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(newAwait(w, timeout)), f)
}

// CompleteThen delivers v to the wait identified by tok on a and then
// continues with next, discarding the delivered/stale outcome.
// Fuses Perform(Complete[T]{...}) + Then.
func CompleteThen[T, B any](a *Arena[T], tok Token, v T, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Complete[T]{Arena: a, Token: tok, Value: v}), next)
}

// CompleteBind delivers v to the wait identified by tok on a and
// passes the outcome to f: true when a live wait received the value,
// false when the token resolved stale.
// Fuses Perform(Complete[T]{...}) + Bind.
func CompleteBind[T, B any](a *Arena[T], tok Token, v T, f func(bool) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Complete[T]{Arena: a, Token: tok, Value: v}), f)
}
