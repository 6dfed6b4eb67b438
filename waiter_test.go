// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rdv_test

import (
	"context"
	"testing"
	"time"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/rdv"
)

func TestWaiterSetBeforeWait(t *testing.T) {
	var w rdv.Waiter[string]
	w.Set("ready")

	v, err := w.Wait(0)
	if err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if v != "ready" {
		t.Fatalf("got %q, want %q", v, "ready")
	}
}

func TestWaiterRoundTrip(t *testing.T) {
	var w rdv.Waiter[int]
	go func() {
		time.Sleep(10 * time.Millisecond)
		w.Set(42)
	}()

	v, err := w.Wait(0)
	if err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if v != 42 {
		t.Fatalf("got %d, want 42", v)
	}
}

func TestWaiterTimeout(t *testing.T) {
	var w rdv.Waiter[int]
	start := time.Now()

	_, err := w.Wait(50 * time.Millisecond)
	if !rdv.IsTimeout(err) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Fatalf("returned after %v, before the 50ms deadline", elapsed)
	}
}

func TestWaiterCancel(t *testing.T) {
	var w rdv.Waiter[int]
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := w.WaitContext(ctx, 0)
	if !rdv.IsCanceled(err) {
		t.Fatalf("got %v, want ErrCanceled", err)
	}
}

func TestWaiterCancelDistinctFromTimeout(t *testing.T) {
	// Cancellation must never be reported as a timeout, even when a
	// deadline is armed.
	var w rdv.Waiter[int]
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.WaitContext(ctx, time.Hour)
	if !rdv.IsCanceled(err) {
		t.Fatalf("got %v, want ErrCanceled", err)
	}
	if rdv.IsTimeout(err) {
		t.Fatalf("cancellation reported as timeout")
	}
}

func TestWaiterSpuriousWakeReblocks(t *testing.T) {
	// Wakes without a value must re-block the waiter, not return empty.
	var w rdv.Waiter[int]
	go func() {
		for i := 0; i < 5; i++ {
			w.Wake()
			time.Sleep(time.Millisecond)
		}
		w.Set(7)
	}()

	v, err := w.Wait(0)
	if err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if v != 7 {
		t.Fatalf("got %d, want 7", v)
	}
}

func TestWaiterWakeOnlyTimesOut(t *testing.T) {
	// A wake with no value keeps the original deadline in force.
	var w rdv.Waiter[int]
	go func() {
		time.Sleep(5 * time.Millisecond)
		w.Wake()
	}()

	_, err := w.Wait(40 * time.Millisecond)
	if !rdv.IsTimeout(err) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}
}

func TestWaiterTryWait(t *testing.T) {
	var w rdv.Waiter[int]

	if _, err := w.TryWait(); !iox.IsWouldBlock(err) {
		t.Fatalf("empty probe got %v, want ErrWouldBlock", err)
	}

	w.Set(3)
	v, err := w.TryWait()
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if v != 3 {
		t.Fatalf("got %d, want 3", v)
	}

	// The value is consumed exactly once.
	if _, err := w.TryWait(); !iox.IsWouldBlock(err) {
		t.Fatalf("second probe got %v, want ErrWouldBlock", err)
	}
}
