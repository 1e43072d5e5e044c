package spots

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestQueueDrainOrder(t *testing.T) {
	q := NewQueue()
	var got []int
	for i := 0; i < 3; i++ {
		i := i
		q.Post(func() { got = append(got, i) })
	}
	if n := q.Drain(); n != 3 {
		t.Errorf("drained %d, want 3", n)
	}
	if len(got) != 3 || got[0] != 0 || got[2] != 2 {
		t.Errorf("order = %v", got)
	}
	if n := q.Drain(); n != 0 {
		t.Errorf("second drain ran %d", n)
	}
}

func TestQueuePostWhileDraining(t *testing.T) {
	q := NewQueue()
	ran := 0
	q.Post(func() {
		ran++
		q.Post(func() { ran++ })
	})
	q.Drain()
	if ran != 1 {
		t.Fatalf("ran = %d, want 1", ran)
	}
	q.Drain()
	if ran != 2 {
		t.Errorf("ran = %d, want 2", ran)
	}
}

func TestQueueRun(t *testing.T) {
	q := NewQueue()
	ctl := newTestController(t, NewComponent("row", ""))

	var wg sync.WaitGroup
	for n := 0; n < 4; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items := titled("x")
			q.Post(func() { ctl.Append(0, items, nil) })
		}()
	}

	errc := make(chan error, 1)
	go func() { errc <- q.Run(context.Background()) }()
	wg.Wait()
	q.Close()

	select {
	case err := <-errc:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after close")
	}
	if n := mustComponent(t, ctl, 0).Len(); n != 4 {
		t.Errorf("items = %d, want 4", n)
	}
	if q.Post(func() {}) {
		t.Error("post accepted after close")
	}
}

func TestQueueRunCancel(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Run(ctx); err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
