package schedule

import (
	"io"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	aerrors "github.com/matzehuels/busarchive/pkg/errors"
)

// Definition is the TOML form of a schedule. Stops and routes are named by
// id and referenced by id, and every reference to an id becomes a reference
// to one shared object in the built graph:
//
//	[[stop]]
//	id = "main"
//	kind = "destination"
//	name = "Main Station"
//	lat = { deg = 35, min = 136, sec = 15.456 }
//	lon = { deg = 133, min = 32, sec = 15.3 }
//
//	[[route]]
//	id = "loop"
//	stops = ["main", "corner", "main"]
//
//	[[trip]]
//	route = "loop"
//	hour = 6
//	minute = 24
//	driver = "bob"
type Definition struct {
	Stops  []StopDef  `toml:"stop"`
	Routes []RouteDef `toml:"route"`
	Trips  []TripDef  `toml:"trip"`
}

// StopDef defines one stop. Kind is "corner" (Street1, Street2) or
// "destination" (Name).
type StopDef struct {
	ID      string      `toml:"id"`
	Kind    string      `toml:"kind"`
	Lat     PositionDef `toml:"lat"`
	Lon     PositionDef `toml:"lon"`
	Street1 string      `toml:"street1"`
	Street2 string      `toml:"street2"`
	Name    string      `toml:"name"`
}

// PositionDef is the TOML form of a [Position].
type PositionDef struct {
	Degrees int     `toml:"deg"`
	Minutes int     `toml:"min"`
	Seconds float64 `toml:"sec"`
}

// RouteDef lists stop ids in order.
type RouteDef struct {
	ID    string   `toml:"id"`
	Stops []string `toml:"stops"`
}

// TripDef is one departure on a route.
type TripDef struct {
	Route  string `toml:"route"`
	Hour   int    `toml:"hour"`
	Minute int    `toml:"minute"`
	Driver string `toml:"driver"`
}

// ParseDefinition decodes a TOML definition from r and builds its schedule.
// Unknown keys, duplicate ids and dangling references fail with
// INVALID_INPUT.
func ParseDefinition(r io.Reader) (*Schedule, error) {
	var def Definition
	md, err := toml.NewDecoder(r).Decode(&def)
	if err != nil {
		return nil, aerrors.Wrap(aerrors.ErrCodeInvalidInput, err, "parse schedule definition")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, aerrors.New(aerrors.ErrCodeInvalidInput, "unknown keys in schedule definition: %s", strings.Join(keys, ", "))
	}
	return def.Build()
}

// LoadDefinition reads and builds the TOML definition at path.
func LoadDefinition(path string) (*Schedule, error) {
	f, err := openForRead(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseDefinition(f)
}

// Build resolves ids and returns the schedule graph.
func (d *Definition) Build() (*Schedule, error) {
	stops := make(map[string]Stop, len(d.Stops))
	for _, sd := range d.Stops {
		if err := aerrors.ValidateIdentifier("stop", sd.ID); err != nil {
			return nil, err
		}
		if _, dup := stops[sd.ID]; dup {
			return nil, aerrors.New(aerrors.ErrCodeInvalidInput, "duplicate stop %q", sd.ID)
		}
		st, err := sd.stop()
		if err != nil {
			return nil, err
		}
		stops[sd.ID] = st
	}

	routes := make(map[string]*Route, len(d.Routes))
	for _, rd := range d.Routes {
		if err := aerrors.ValidateIdentifier("route", rd.ID); err != nil {
			return nil, err
		}
		if _, dup := routes[rd.ID]; dup {
			return nil, aerrors.New(aerrors.ErrCodeInvalidInput, "duplicate route %q", rd.ID)
		}
		r := &Route{}
		for _, id := range rd.Stops {
			st, ok := stops[id]
			if !ok {
				return nil, aerrors.New(aerrors.ErrCodeInvalidInput, "route %q: unknown stop %q", rd.ID, id)
			}
			r.Append(st)
		}
		routes[rd.ID] = r
	}

	s := New()
	for i, td := range d.Trips {
		r, ok := routes[td.Route]
		if !ok {
			return nil, aerrors.New(aerrors.ErrCodeInvalidInput, "trip %d: unknown route %q", i+1, td.Route)
		}
		if td.Hour < 0 || td.Hour > 23 || td.Minute < 0 || td.Minute > 59 {
			return nil, aerrors.New(aerrors.ErrCodeInvalidInput, "trip %d: invalid time %d:%02d", i+1, td.Hour, td.Minute)
		}
		s.Append(td.Driver, td.Hour, td.Minute, r)
	}
	return s, nil
}

func (sd StopDef) stop() (Stop, error) {
	lat, lon := sd.Lat.position(), sd.Lon.position()
	switch sd.Kind {
	case VariantCorner:
		if sd.Street1 == "" || sd.Street2 == "" {
			return nil, aerrors.New(aerrors.ErrCodeInvalidInput, "stop %q: corner needs street1 and street2", sd.ID)
		}
		return NewCornerStop(lat, lon, sd.Street1, sd.Street2), nil
	case VariantDestination:
		if sd.Name == "" {
			return nil, aerrors.New(aerrors.ErrCodeInvalidInput, "stop %q: destination needs a name", sd.ID)
		}
		return NewDestinationStop(lat, lon, sd.Name), nil
	default:
		return nil, aerrors.New(aerrors.ErrCodeInvalidInput, "stop %q: unknown kind %q", sd.ID, sd.Kind)
	}
}

func (p PositionDef) position() Position {
	return Position{Degrees: p.Degrees, Minutes: p.Minutes, Seconds: p.Seconds}
}
