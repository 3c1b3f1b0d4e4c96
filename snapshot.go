package settings

// Snapshot is an immutable view of all preference values at a point in
// time. Mutations go through the Aggregator, which replaces the whole
// snapshot rather than editing it in place, so readers may hold a
// Snapshot across a render pass without copying it first.
type Snapshot map[string]interface{}

// Get returns the value stored under key.
func (s Snapshot) Get(key string) (interface{}, bool) {
	v, ok := s[key]
	return v, ok
}

// With returns a copy of the snapshot with key set to value. The receiver
// is left untouched.
func (s Snapshot) With(key string, value interface{}) Snapshot {
	next := s.clone()
	next[key] = copyValue(value)
	return next
}

// Equal reports whether two snapshots hold the same keys and values.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s) != len(other) {
		return false
	}
	for key, v := range s {
		ov, ok := other[key]
		if !ok || !valueEqual(v, ov) {
			return false
		}
	}
	return true
}

func (s Snapshot) clone() Snapshot {
	next := make(Snapshot, len(s)+1)
	for key, v := range s {
		next[key] = copyValue(v)
	}
	return next
}

// copyValue duplicates slice-typed values so no two snapshots share a
// backing array. Scalars are returned as-is.
func copyValue(v interface{}) interface{} {
	if ss, ok := v.([]string); ok {
		dup := make([]string, len(ss))
		copy(dup, ss)
		return dup
	}
	return v
}

func valueEqual(a, b interface{}) bool {
	as, aok := a.([]string)
	bs, bok := b.([]string)
	if aok || bok {
		if !aok || !bok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if as[i] != bs[i] {
				return false
			}
		}
		return true
	}
	return a == b
}
