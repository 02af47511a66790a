package util

import "testing"

func TestUniqueQueueDeduplicates(t *testing.T) {
	q := NewUniqueQueue[ChunkCoord, int]()

	a := ChunkCoord{X: 1, Z: 2}
	b := ChunkCoord{X: 3, Z: 4}

	if !q.Enqueue(a, 10) {
		t.Error("first Enqueue of a key should report new")
	}
	if q.Enqueue(a, 20) {
		t.Error("second Enqueue of the same key should report update")
	}
	q.Enqueue(b, 30)

	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}
	if !q.Contains(a) || !q.Contains(b) {
		t.Error("Contains should report both keys")
	}

	// A ordem de chegada é preservada e o valor atualizado prevalece.
	key, val, ok := q.Dequeue()
	if !ok || key != a || val != 20 {
		t.Errorf("Dequeue() = (%v, %d, %v), want (%v, 20, true)", key, val, ok, a)
	}
	key, val, ok = q.Dequeue()
	if !ok || key != b || val != 30 {
		t.Errorf("Dequeue() = (%v, %d, %v), want (%v, 30, true)", key, val, ok, b)
	}
	if _, _, ok := q.Dequeue(); ok {
		t.Error("Dequeue on empty queue should report false")
	}
}

func TestUniqueQueueReenqueueAfterDequeue(t *testing.T) {
	q := NewUniqueQueue[string, struct{}]()

	q.Enqueue("x", struct{}{})
	q.Dequeue()

	if !q.Enqueue("x", struct{}{}) {
		t.Error("key dequeued should be enqueueable again as new")
	}
}

func TestUniqueQueueClear(t *testing.T) {
	q := NewUniqueQueue[int, int]()
	q.Enqueue(1, 1)
	q.Enqueue(2, 2)

	q.Clear()

	if q.Len() != 0 || q.Contains(1) {
		t.Error("Clear should empty items and key set")
	}
	if !q.Enqueue(1, 1) {
		t.Error("Enqueue after Clear should report new")
	}
}
