package schedule

// Equal reports whether a and b hold the same trips on routes with the same
// stops, comparing field values only. Sharing is ignored; see [SameShape].
func Equal(a, b *Schedule) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if len(a.Entries) != len(b.Entries) {
		return false
	}
	for i := range a.Entries {
		ea, eb := a.Entries[i], b.Entries[i]
		if ea.Trip != eb.Trip || !routeEqual(ea.Route, eb.Route) {
			return false
		}
	}
	return true
}

// SameShape reports whether a and b have the same aliasing structure:
// walking both in parallel, every route and stop of a corresponds to
// exactly one route and stop of b and vice versa. Two references to one
// object in a must be two references to one object in b, and references
// to distinct objects must stay distinct.
func SameShape(a, b *Schedule) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if len(a.Entries) != len(b.Entries) {
		return false
	}
	routes := newBijection[*Route]()
	stops := newBijection[Stop]()
	for i := range a.Entries {
		ra, rb := a.Entries[i].Route, b.Entries[i].Route
		if (ra == nil) != (rb == nil) {
			return false
		}
		if ra == nil {
			continue
		}
		if !routes.pair(ra, rb) || len(ra.Stops) != len(rb.Stops) {
			return false
		}
		for j := range ra.Stops {
			sa, sb := ra.Stops[j], rb.Stops[j]
			if (sa == nil) != (sb == nil) {
				return false
			}
			if sa != nil && !stops.pair(sa, sb) {
				return false
			}
		}
	}
	return true
}

type bijection[T comparable] struct {
	fwd map[T]T
	rev map[T]T
}

func newBijection[T comparable]() *bijection[T] {
	return &bijection[T]{fwd: make(map[T]T), rev: make(map[T]T)}
}

// pair records a <-> b and reports whether that is consistent with every
// pair recorded so far.
func (m *bijection[T]) pair(a, b T) bool {
	fb, okF := m.fwd[a]
	ra, okR := m.rev[b]
	if okF || okR {
		return okF && okR && fb == b && ra == a
	}
	m.fwd[a] = b
	m.rev[b] = a
	return true
}
