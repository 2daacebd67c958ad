package analytics

import "sensor_analytics/internal/models"

// ring is a fixed-capacity FIFO of readings. It is not safe for concurrent use;
// Engine serializes access.
type ring struct {
	items []models.Reading
	head  int // index of the oldest reading
	size  int
}

func newRing(capacity int) *ring {
	return &ring{items: make([]models.Reading, capacity)}
}

// push appends r, overwriting the oldest reading when full.
// It reports whether a reading was evicted.
func (b *ring) push(r models.Reading) bool {
	capacity := len(b.items)
	if b.size < capacity {
		b.items[(b.head+b.size)%capacity] = r
		b.size++
		return false
	}
	b.items[b.head] = r
	b.head = (b.head + 1) % capacity
	return true
}

func (b *ring) len() int { return b.size }

// last returns the most recently pushed reading.
func (b *ring) last() (models.Reading, bool) {
	if b.size == 0 {
		return models.Reading{}, false
	}
	return b.items[(b.head+b.size-1)%len(b.items)], true
}

// each visits readings oldest first.
func (b *ring) each(fn func(models.Reading)) {
	for i := 0; i < b.size; i++ {
		fn(b.items[(b.head+i)%len(b.items)])
	}
}

func (b *ring) snapshot() []models.Reading {
	out := make([]models.Reading, 0, b.size)
	b.each(func(r models.Reading) { out = append(out, r) })
	return out
}
