// Package gtfsimport builds a schedule graph from a static GTFS feed.
//
// Every GTFS stop used by an imported trip becomes one shared
// schedule.Stop: names of the form "A & B" become corner stops, all others
// destination stops. Trips of one GTFS route that visit the same stops in
// the same order share one schedule.Route. Each trip departs at its first
// stop's departure time, and its driver is the GTFS block id.
package gtfsimport

import (
	"cmp"
	"math"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/jamespfennell/gtfs"

	aerrors "github.com/matzehuels/busarchive/pkg/errors"
	"github.com/matzehuels/busarchive/pkg/schedule"
)

// Options limits what is imported.
type Options struct {
	// Routes restricts the import to these GTFS route ids. Empty means all.
	Routes []string

	// Limit caps the number of trips, keeping the earliest departures.
	// Zero means no limit.
	Limit int
}

// ParseFile reads a GTFS zip archive from path and imports it.
func ParseFile(path string, opts Options) (*schedule.Schedule, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, aerrors.Wrap(aerrors.ErrCodeNotFound, err, "read GTFS feed %s", path)
	}
	if err != nil {
		return nil, aerrors.Wrap(aerrors.ErrCodeIOUnavailable, err, "read GTFS feed %s", path)
	}
	static, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, aerrors.Wrap(aerrors.ErrCodeInvalidInput, err, "parse GTFS feed %s", path)
	}
	return FromStatic(static, opts)
}

type departure struct {
	trip *gtfs.ScheduledTrip
	at   time.Duration
}

// FromStatic converts parsed GTFS data into a schedule.
func FromStatic(static *gtfs.Static, opts Options) (*schedule.Schedule, error) {
	if static == nil {
		return nil, aerrors.New(aerrors.ErrCodeInvalidInput, "no GTFS data")
	}

	var deps []departure
	for i := range static.Trips {
		t := &static.Trips[i]
		if len(t.StopTimes) == 0 || t.Route == nil {
			continue
		}
		if len(opts.Routes) > 0 && !slices.Contains(opts.Routes, t.Route.Id) {
			continue
		}
		deps = append(deps, departure{trip: t, at: firstDeparture(t)})
	}
	if len(deps) == 0 {
		return nil, aerrors.New(aerrors.ErrCodeInvalidInput, "GTFS feed has no matching trips with stop times")
	}

	slices.SortFunc(deps, func(a, b departure) int {
		return cmp.Or(cmp.Compare(a.at, b.at), cmp.Compare(a.trip.ID, b.trip.ID))
	})
	if opts.Limit > 0 && len(deps) > opts.Limit {
		deps = deps[:opts.Limit]
	}

	b := newBuilder()
	s := schedule.New()
	for _, d := range deps {
		route := b.route(d.trip)
		hour := int(d.at/time.Hour) % 24
		minute := int(d.at/time.Minute) % 60
		s.Append(d.trip.BlockID, hour, minute, route)
	}
	return s, nil
}

func firstDeparture(t *gtfs.ScheduledTrip) time.Duration {
	first := slices.MinFunc(t.StopTimes, func(a, b gtfs.ScheduledStopTime) int {
		return cmp.Compare(a.StopSequence, b.StopSequence)
	})
	if first.DepartureTime != 0 {
		return first.DepartureTime
	}
	return first.ArrivalTime
}

// builder interns stops and routes so repeated GTFS entities map to one
// shared object.
type builder struct {
	stops  map[string]schedule.Stop
	routes map[string]*schedule.Route
}

func newBuilder() *builder {
	return &builder{stops: make(map[string]schedule.Stop), routes: make(map[string]*schedule.Route)}
}

func (b *builder) route(t *gtfs.ScheduledTrip) *schedule.Route {
	stopTimes := slices.Clone(t.StopTimes)
	slices.SortFunc(stopTimes, func(a, b gtfs.ScheduledStopTime) int {
		return cmp.Compare(a.StopSequence, b.StopSequence)
	})

	ids := make([]string, 0, len(stopTimes))
	for _, st := range stopTimes {
		if st.Stop != nil {
			ids = append(ids, st.Stop.Id)
		}
	}
	key := t.Route.Id + "\x00" + strings.Join(ids, "\x00")
	if r, ok := b.routes[key]; ok {
		return r
	}

	r := &schedule.Route{}
	for _, st := range stopTimes {
		if st.Stop != nil {
			r.Append(b.stop(st.Stop))
		}
	}
	b.routes[key] = r
	return r
}

func (b *builder) stop(gs *gtfs.Stop) schedule.Stop {
	if s, ok := b.stops[gs.Id]; ok {
		return s
	}
	lat, lon := coordinate(gs.Latitude), coordinate(gs.Longitude)
	var s schedule.Stop
	if street1, street2, ok := strings.Cut(gs.Name, " & "); ok && street1 != "" && street2 != "" {
		s = schedule.NewCornerStop(lat, lon, strings.TrimSpace(street1), strings.TrimSpace(street2))
	} else {
		name := gs.Name
		if name == "" {
			name = gs.Id
		}
		s = schedule.NewDestinationStop(lat, lon, name)
	}
	b.stops[gs.Id] = s
	return s
}

func coordinate(v *float64) schedule.Position {
	if v == nil {
		return schedule.Position{}
	}
	return DecimalToPosition(*v)
}

// DecimalToPosition converts decimal degrees to degrees, minutes and
// seconds. The sign is carried by the first non-zero component.
func DecimalToPosition(v float64) schedule.Position {
	neg := v < 0
	v = math.Abs(v)
	deg := math.Floor(v)
	rem := (v - deg) * 60
	mins := math.Floor(rem)
	p := schedule.Position{
		Degrees: int(deg),
		Minutes: int(mins),
		Seconds: (rem - mins) * 60,
	}
	if neg {
		switch {
		case p.Degrees != 0:
			p.Degrees = -p.Degrees
		case p.Minutes != 0:
			p.Minutes = -p.Minutes
		default:
			p.Seconds = -p.Seconds
		}
	}
	return p
}
