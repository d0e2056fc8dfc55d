package schedule

import (
	"bufio"
	"fmt"
	"io"
)

// Format writes a readable listing of s to w: one line per trip followed by
// the stops of its route. Routes and stops are labelled route#k and stop#k
// in first-visit order, so shared objects show up with the same label.
func Format(w io.Writer, s *Schedule) error {
	bw := bufio.NewWriter(w)
	labels := NewLabeler()
	for _, e := range s.Entries {
		fmt.Fprintf(bw, "%s %s\n", e.Trip, labels.Route(e.Route))
		if e.Route == nil {
			continue
		}
		for _, st := range e.Route.Stops {
			if st == nil {
				fmt.Fprintf(bw, "  %s\n", labels.Stop(nil))
				continue
			}
			fmt.Fprintf(bw, "  %s %s %s %s\n", labels.Stop(st), st.Latitude(), st.Longitude(), st.Description())
		}
	}
	return bw.Flush()
}

// Labeler assigns labels to routes and stops by identity, numbering each
// kind in the order it is first seen.
type Labeler struct {
	routes map[*Route]int
	stops  map[Stop]int
}

func NewLabeler() *Labeler {
	return &Labeler{routes: make(map[*Route]int), stops: make(map[Stop]int)}
}

// Route returns route#k for r, or route#nil.
func (l *Labeler) Route(r *Route) string {
	if r == nil {
		return "route#nil"
	}
	id, ok := l.routes[r]
	if !ok {
		id = len(l.routes)
		l.routes[r] = id
	}
	return fmt.Sprintf("route#%d", id)
}

// Stop returns stop#k for s, or stop#nil.
func (l *Labeler) Stop(s Stop) string {
	if s == nil {
		return "stop#nil"
	}
	id, ok := l.stops[s]
	if !ok {
		id = len(l.stops)
		l.stops[s] = id
	}
	return fmt.Sprintf("stop#%d", id)
}
