package syncbuf

import (
	"sync"
	"testing"
)

func TestPrimeWithNoWritersReturnsImmediately(t *testing.T) {
	b := New[int, string](0)
	b.GetReadHandle()
	extra, ready := b.Prime("job")
	if !ready || extra != "job" {
		t.Fatalf("expected immediate readiness with extra %q, got ready=%v extra=%q", "job", ready, extra)
	}
}

func TestLastWriteReleasesExtra(t *testing.T) {
	b := New[int, string](0)
	w1 := b.GetWriteHandle()
	w2 := b.GetWriteHandle()
	b.GetReadHandle()

	_, ready := b.Prime("downstream")
	if ready {
		t.Fatal("expected not ready with two writers pending")
	}

	if _, ready := w1.Lock(func(v *int) { *v += 1 }); ready {
		t.Fatal("first of two writes should not release extra")
	}
	extra, ready := w2.Lock(func(v *int) { *v += 2 })
	if !ready || extra != "downstream" {
		t.Fatalf("expected second write to release extra, got ready=%v extra=%q", ready, extra)
	}
}

func TestWaitBlocksUntilAllWritersComplete(t *testing.T) {
	b := New[int, struct{}](0)
	w1 := b.GetWriteHandle()
	w2 := b.GetWriteHandle()
	r := b.GetReadHandle()
	b.Prime(struct{}{})

	done := make(chan int)
	go func() {
		v := r.Wait()
		done <- *v
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); w1.Lock(func(v *int) { *v += 10 }) }()
	go func() { defer wg.Done(); w2.Lock(func(v *int) { *v += 5 }) }()
	wg.Wait()

	if got := <-done; got != 15 {
		t.Errorf("expected accumulated value 15, got %d", got)
	}
}
