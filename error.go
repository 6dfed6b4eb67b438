// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rdv

import "errors"

// Error taxonomy of a blocking wait. Both are reported by the waiting
// call only; Set and Complete never fail. A stale or duplicate
// completion is not an error: it resolves to nothing and is dropped.
var (
	// ErrTimeout reports that the deadline elapsed with no value.
	// Recoverable: the caller may release the waiter and retry with a
	// fresh one.
	ErrTimeout = errors.New("rdv: wait timed out")

	// ErrCanceled reports context cancellation observed during a wait.
	// Distinct from ErrTimeout and not retried: cancellation tears down
	// the waiting scope.
	ErrCanceled = errors.New("rdv: wait canceled")

	// ErrClosed reports an operation on a closed pipe.
	ErrClosed = errors.New("rdv: pipe closed")
)

// IsTimeout reports whether err is a wait deadline expiry.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// IsCanceled reports whether err is a wait cancellation.
func IsCanceled(err error) bool { return errors.Is(err, ErrCanceled) }
