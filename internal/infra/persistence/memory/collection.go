package memory

// collection keeps records addressable by id while preserving insertion
// order, which is the order the persisted document lists them in. Ledger
// records are flat value types, so copying a record clones it.
type collection[T any] struct {
	order []string
	items map[string]T
}

func newCollection[T any]() collection[T] {
	return collection[T]{items: make(map[string]T)}
}

func (c collection[T]) clone() collection[T] {
	cp := collection[T]{
		order: append([]string(nil), c.order...),
		items: make(map[string]T, len(c.items)),
	}
	for k, v := range c.items {
		cp.items[k] = v
	}
	return cp
}

func (c collection[T]) get(id string) (T, bool) {
	v, ok := c.items[id]
	return v, ok
}

func (c collection[T]) has(id string) bool {
	_, ok := c.items[id]
	return ok
}

// put inserts v at the end, or replaces it in place when id already exists.
func (c *collection[T]) put(id string, v T) {
	if _, exists := c.items[id]; !exists {
		c.order = append(c.order, id)
	}
	c.items[id] = v
}

func (c *collection[T]) remove(id string) bool {
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

func (c collection[T]) len() int { return len(c.order) }

// list returns records in insertion order, filtered by keep when non-nil.
func (c collection[T]) list(keep func(T) bool) []T {
	out := make([]T, 0, len(c.order))
	for _, id := range c.order {
		v := c.items[id]
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}
