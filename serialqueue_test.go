package eventhub

import (
	"sync"
	"testing"
	"time"
)

func TestSerialQueueRunsInSubmissionOrder(t *testing.T) {
	q := newSerialQueue()
	defer q.Close()

	var mu sync.Mutex
	var order []int
	done := make(chan struct{}, 5)
	for i := 0; i < 5; i++ {
		i := i
		q.Submit(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			done <- struct{}{}
		})
	}
	for i := 0; i < 5; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for queue drain")
		}
	}
	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		if v != i {
			t.Fatalf("expected strictly submission-ordered execution, got %v", order)
		}
	}
}

func TestSerialQueueCloseDrainsPendingWork(t *testing.T) {
	q := newSerialQueue()
	ran := make(chan struct{}, 1)
	q.Submit(func() { ran <- struct{}{} })
	q.Close()

	select {
	case <-ran:
	default:
		t.Fatal("expected already-submitted work to run before Close returns")
	}
}

func TestSerialQueueRejectsSubmitAfterClose(t *testing.T) {
	q := newSerialQueue()
	q.Close()

	ran := make(chan struct{}, 1)
	q.Submit(func() { ran <- struct{}{} })

	select {
	case <-ran:
		t.Fatal("expected Submit after Close to be a no-op")
	case <-time.After(50 * time.Millisecond):
	}
}
