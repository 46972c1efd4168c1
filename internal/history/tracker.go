package history

import "sync"

const DefaultCapacity = 20

// Tracker is the ordered record of content already shown in a session,
// most recent last. It keeps at most Capacity entries.
type Tracker struct {
	mu       sync.RWMutex
	items    []string
	capacity int
}

func NewTracker(capacity int) *Tracker {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Tracker{
		items:    make([]string, 0, capacity),
		capacity: capacity,
	}
}

// Record appends content and drops the oldest entries past the capacity.
func (t *Tracker) Record(content string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.items = append(t.items, content)
	if over := len(t.items) - t.capacity; over > 0 {
		t.items = append(t.items[:0], t.items[over:]...)
	}
}

// Contains is an exact-string membership test.
func (t *Tracker) Contains(content string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, item := range t.items {
		if item == content {
			return true
		}
	}
	return false
}

func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = t.items[:0]
}

// Recent returns up to n of the newest entries, oldest first.
func (t *Tracker) Recent(n int) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n <= 0 {
		return nil
	}
	start := len(t.items) - n
	if start < 0 {
		start = 0
	}
	out := make([]string, len(t.items)-start)
	copy(out, t.items[start:])
	return out
}

// Items returns a copy of the whole history in delivery order.
func (t *Tracker) Items() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, len(t.items))
	copy(out, t.items)
	return out
}

func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}
