package schedule

import (
	"github.com/matzehuels/busarchive/pkg/archive"
)

// Route is an ordered list of stops. It holds references only: the same
// stop may appear in several routes, or more than once in one route.
type Route struct {
	Stops []Stop
}

// Append adds s to the end of the route.
func (r *Route) Append(s Stop) {
	r.Stops = append(r.Stops, s)
}

func (*Route) ArchiveVersion() int { return 1 }

func (r *Route) MarshalArchive(w *archive.Writer) error {
	w.Len(len(r.Stops))
	for _, s := range r.Stops {
		w.Poly(StopCapability, s)
	}
	return w.Err()
}

func (r *Route) UnmarshalArchive(ar *archive.Reader, _ int) error {
	n := ar.Len()
	r.Stops = make([]Stop, 0, min(n, 64))
	for i := 0; i < n && ar.Err() == nil; i++ {
		r.Stops = append(r.Stops, archive.ReadPoly[Stop](ar, StopCapability))
	}
	return ar.Err()
}

func routeEqual(a, b *Route) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if len(a.Stops) != len(b.Stops) {
		return false
	}
	for i := range a.Stops {
		if !stopEqual(a.Stops[i], b.Stops[i]) {
			return false
		}
	}
	return true
}
