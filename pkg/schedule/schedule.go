package schedule

import (
	"github.com/matzehuels/busarchive/pkg/archive"
)

// Entry pairs a trip with the route it runs on.
type Entry struct {
	Trip  Trip
	Route *Route
}

// Schedule is an ordered list of trips. It references routes but does not
// own them.
type Schedule struct {
	Entries []Entry
}

// New returns an empty schedule.
func New() *Schedule {
	return &Schedule{}
}

// Append adds a trip departing at hour:minute on route.
func (s *Schedule) Append(driver string, hour, minute int, route *Route) {
	s.Entries = append(s.Entries, Entry{
		Trip:  Trip{Hour: hour, Minute: minute, Driver: driver},
		Route: route,
	})
}

func (*Schedule) ArchiveVersion() int { return 1 }

func (s *Schedule) MarshalArchive(w *archive.Writer) error {
	w.Len(len(s.Entries))
	for _, e := range s.Entries {
		w.Record(e.Trip)
		w.Ref(e.Route)
	}
	return w.Err()
}

func (s *Schedule) UnmarshalArchive(r *archive.Reader, _ int) error {
	n := r.Len()
	s.Entries = make([]Entry, 0, min(n, 64))
	for i := 0; i < n && r.Err() == nil; i++ {
		var e Entry
		r.Record(&e.Trip)
		e.Route = archive.ReadRef[Route](r)
		s.Entries = append(s.Entries, e)
	}
	return r.Err()
}

// Summary counts the distinct objects reachable from a schedule.
type Summary struct {
	Trips        int
	Routes       int
	Stops        int
	Corners      int
	Destinations int
}

// Summarize walks s and counts distinct routes and stops by identity.
func Summarize(s *Schedule) Summary {
	sum := Summary{Trips: len(s.Entries)}
	routes := make(map[*Route]bool)
	stops := make(map[Stop]bool)
	for _, e := range s.Entries {
		if e.Route == nil || routes[e.Route] {
			continue
		}
		routes[e.Route] = true
		for _, st := range e.Route.Stops {
			if st == nil || stops[st] {
				continue
			}
			stops[st] = true
			switch st.(type) {
			case *CornerStop:
				sum.Corners++
			case *DestinationStop:
				sum.Destinations++
			}
		}
	}
	sum.Routes = len(routes)
	sum.Stops = len(stops)
	return sum
}
