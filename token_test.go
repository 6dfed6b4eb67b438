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

func TestArenaCompleteImmediate(t *testing.T) {
	var arena rdv.Arena[int]
	w := arena.NewWaiter()
	tok := w.Token()

	go arena.Complete(tok, 42)

	v, err := w.Wait(0)
	if err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if v != 42 {
		t.Fatalf("got %d, want 42", v)
	}
	w.Release()
}

func TestArenaLateCompletionNoOp(t *testing.T) {
	var arena rdv.Arena[int]
	w := arena.NewWaiter()
	tok := w.Token()

	delivered := make(chan bool, 1)
	go func() {
		time.Sleep(250 * time.Millisecond)
		delivered <- arena.Complete(tok, 42)
	}()

	_, err := w.Wait(50 * time.Millisecond)
	if !rdv.IsTimeout(err) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}
	w.Release()

	if <-delivered {
		t.Fatalf("completion after release delivered a value")
	}
}

func TestCompleteMalformedTokens(t *testing.T) {
	var arena rdv.Arena[int]
	w := arena.NewWaiter()
	defer w.Release()

	for _, tok := range []rdv.Token{
		0,                  // never a valid encoding
		w.Token() + 1,      // lease flag set
		2,                  // generation zero is never issued
		1<<33 | 12345<<1,   // index past everything the arena carved
		1<<62 | w.Token(),  // wrong generation for a live slot
	} {
		if arena.Complete(tok, 1) {
			t.Fatalf("token %#x delivered a value", uint64(tok))
		}
	}

	// The live wait is untouched by all of the rejected completions.
	if _, err := w.TryWait(); !iox.IsWouldBlock(err) {
		t.Fatalf("live wait disturbed: %v", err)
	}
}

func TestReleaseInvalidatesToken(t *testing.T) {
	var arena rdv.Arena[int]
	w := arena.NewWaiter()
	tok := w.Token()
	w.Release()

	if arena.Complete(tok, 1) {
		t.Fatalf("released token delivered a value")
	}
}

func TestSlotReuseFreshToken(t *testing.T) {
	var arena rdv.Arena[int]
	w1 := arena.NewWaiter()
	tok1 := w1.Token()
	w1.Release()

	// Single-threaded, so the free list hands the same slot back; its
	// bumped generation makes the old token stale.
	w2 := arena.NewWaiter()
	tok2 := w2.Token()
	if tok1 == tok2 {
		t.Fatalf("recycled slot reissued token %#x", uint64(tok1))
	}
	if arena.Complete(tok1, 1) {
		t.Fatalf("token from a previous slot life delivered a value")
	}
	if !arena.Complete(tok2, 5) {
		t.Fatalf("live token rejected")
	}

	v, err := w2.Wait(0)
	if err != nil || v != 5 {
		t.Fatalf("got (%d, %v), want (5, nil)", v, err)
	}
	w2.Release()

	if arena.Complete(tok2, 9) {
		t.Fatalf("consumed and released token delivered a value")
	}
}

func TestDoubleReleaseHarmless(t *testing.T) {
	var arena rdv.Arena[int]
	w := arena.NewWaiter()
	w.Release()
	w.Release()

	// The arena stays consistent for the next wait.
	w2 := arena.NewWaiter()
	arena.Complete(w2.Token(), 8)
	if v, err := w2.Wait(0); err != nil || v != 8 {
		t.Fatalf("got (%d, %v), want (8, nil)", v, err)
	}
	w2.Release()
}

func TestTokenWaiterTryWait(t *testing.T) {
	var arena rdv.Arena[string]
	w := arena.NewWaiter()
	defer w.Release()

	if _, err := w.TryWait(); !iox.IsWouldBlock(err) {
		t.Fatalf("empty probe got %v, want ErrWouldBlock", err)
	}
	arena.Complete(w.Token(), "hello")
	if v, err := w.TryWait(); err != nil || v != "hello" {
		t.Fatalf("got (%q, %v), want (hello, nil)", v, err)
	}
}

func TestTokenWaiterWaitContextCancel(t *testing.T) {
	var arena rdv.Arena[int]
	w := arena.NewWaiter()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := w.WaitContext(ctx, 0)
	if !rdv.IsCanceled(err) {
		t.Fatalf("got %v, want ErrCanceled", err)
	}
	w.Release()
}
