package indicator

// ring is a fixed-capacity buffer of output values with FIFO eviction.
// Memory is allocated once at construction, so the per-instance bound
// holds no matter how long the input stream runs.
type ring struct {
	buf  []Value
	next int // index the next push writes to
	size int // number of live entries, <= len(buf)
}

func newRing(capacity int) *ring {
	if capacity < 1 {
		capacity = 1
	}
	return &ring{buf: make([]Value, capacity)}
}

// push appends a value, evicting the oldest entry once full.
func (r *ring) push(v Value) {
	r.buf[r.next] = v
	r.next = (r.next + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

// at returns the value offset positions back from the most recent
// (0 = latest). Out-of-range offsets yield Unavailable.
func (r *ring) at(offset int) Value {
	if offset < 0 || offset >= r.size {
		return Unavailable()
	}
	idx := (r.next - 1 - offset + 2*len(r.buf)) % len(r.buf)
	return r.buf[idx]
}

// latest returns the most recently pushed value.
func (r *ring) latest() Value {
	return r.at(0)
}

func (r *ring) len() int {
	return r.size
}

// snapshot returns a copy of the live entries, oldest first.
func (r *ring) snapshot() []Value {
	out := make([]Value, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.at(r.size - 1 - i)
	}
	return out
}

// reset discards all entries but keeps the allocated capacity.
func (r *ring) reset() {
	r.next = 0
	r.size = 0
}
