package closure

// Default closure budget for a single shading point.
const MaxClosures = 64

// Index addresses a closure slot inside an Arena. Indices stay valid until
// the arena is reset.
type Index int

// Arena is a fixed capacity list of closures belonging to one shading point.
// Allocation never grows the arena; once full, Alloc reports failure and the
// caller drops the closure.
type Arena struct {
	slots []Closure
}

// Create an arena that holds up to capacity closures. A zero capacity
// arena rejects every allocation.
func NewArena(capacity int) *Arena {
	if capacity < 0 {
		capacity = 0
	}
	return &Arena{
		slots: make([]Closure, 0, capacity),
	}
}

// Store c in the next free slot.
func (a *Arena) Alloc(c Closure) (Index, bool) {
	if a == nil || len(a.slots) == cap(a.slots) {
		return -1, false
	}
	a.slots = append(a.slots, c)
	return Index(len(a.slots) - 1), true
}

// Get the closure stored at idx.
func (a *Arena) Get(idx Index) Closure {
	return a.slots[idx]
}

// Number of allocated closures.
func (a *Arena) Len() int {
	if a == nil {
		return 0
	}
	return len(a.slots)
}

// Number of closures that can still be allocated.
func (a *Arena) Left() int {
	if a == nil {
		return 0
	}
	return cap(a.slots) - len(a.slots)
}

// Release all closures while keeping the capacity.
func (a *Arena) Reset() {
	for i := range a.slots {
		a.slots[i] = nil
	}
	a.slots = a.slots[:0]
}

// Invoke fn for each allocated closure in allocation order.
func (a *Arena) Each(fn func(Index, Closure)) {
	if a == nil {
		return
	}
	for i, c := range a.slots {
		fn(Index(i), c)
	}
}
