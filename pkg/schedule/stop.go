package schedule

import (
	"github.com/matzehuels/busarchive/pkg/archive"
)

// StopCapability is the registry capability under which stop variants are
// registered.
const StopCapability = "stop"

// Stop variant discriminators.
const (
	VariantCorner      = "corner"
	VariantDestination = "destination"
)

func init() {
	archive.Register(StopCapability, VariantCorner, func() archive.Unmarshaler { return &CornerStop{} })
	archive.Register(StopCapability, VariantDestination, func() archive.Unmarshaler { return &DestinationStop{} })
}

// Stop is a bus stop. Implementations must be pointers so that routes can
// share them.
type Stop interface {
	archive.Variant
	archive.Unmarshaler
	Latitude() Position
	Longitude() Position
	Description() string
}

// Location holds the coordinates common to every stop.
type Location struct {
	Lat Position
	Lon Position
}

func (l Location) Latitude() Position  { return l.Lat }
func (l Location) Longitude() Position { return l.Lon }

func (l Location) marshal(w *archive.Writer) {
	w.Record(l.Lat)
	w.Record(l.Lon)
}

func (l *Location) unmarshal(r *archive.Reader) {
	r.Record(&l.Lat)
	r.Record(&l.Lon)
}

// CornerStop is a stop at the corner of two streets.
type CornerStop struct {
	Location
	Street1 string
	Street2 string
}

// NewCornerStop returns a stop at the crossing of street1 and street2.
func NewCornerStop(lat, lon Position, street1, street2 string) *CornerStop {
	return &CornerStop{Location: Location{lat, lon}, Street1: street1, Street2: street2}
}

func (s *CornerStop) Description() string { return s.Street1 + " and " + s.Street2 }

func (*CornerStop) ArchiveVariant() string { return VariantCorner }
func (*CornerStop) ArchiveVersion() int    { return 1 }

func (s *CornerStop) MarshalArchive(w *archive.Writer) error {
	s.Location.marshal(w)
	w.String(s.Street1)
	w.String(s.Street2)
	return w.Err()
}

func (s *CornerStop) UnmarshalArchive(r *archive.Reader, _ int) error {
	s.Location.unmarshal(r)
	s.Street1 = r.String()
	s.Street2 = r.String()
	return r.Err()
}

// DestinationStop is a named terminal stop.
type DestinationStop struct {
	Location
	Name string
}

// NewDestinationStop returns a terminal stop called name.
func NewDestinationStop(lat, lon Position, name string) *DestinationStop {
	return &DestinationStop{Location: Location{lat, lon}, Name: name}
}

func (s *DestinationStop) Description() string { return s.Name }

func (*DestinationStop) ArchiveVariant() string { return VariantDestination }
func (*DestinationStop) ArchiveVersion() int    { return 1 }

func (s *DestinationStop) MarshalArchive(w *archive.Writer) error {
	s.Location.marshal(w)
	w.String(s.Name)
	return w.Err()
}

func (s *DestinationStop) UnmarshalArchive(r *archive.Reader, _ int) error {
	s.Location.unmarshal(r)
	s.Name = r.String()
	return r.Err()
}

// stopEqual compares two stops by variant and field values.
func stopEqual(a, b Stop) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !a.Latitude().Equal(b.Latitude()) || !a.Longitude().Equal(b.Longitude()) {
		return false
	}
	switch x := a.(type) {
	case *CornerStop:
		y, ok := b.(*CornerStop)
		return ok && x.Street1 == y.Street1 && x.Street2 == y.Street2
	case *DestinationStop:
		y, ok := b.(*DestinationStop)
		return ok && x.Name == y.Name
	default:
		return a.ArchiveVariant() == b.ArchiveVariant() && a.Description() == b.Description()
	}
}
