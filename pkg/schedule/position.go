package schedule

import (
	"fmt"
	"math"

	"github.com/matzehuels/busarchive/pkg/archive"
)

// SecondsEpsilon is the tolerance used when comparing the seconds of two
// positions.
const SecondsEpsilon = 1e-9

// Position is a GPS coordinate in degrees, minutes and seconds. It is an
// immutable value and is always archived by value.
type Position struct {
	Degrees int
	Minutes int
	Seconds float64
}

// Equal reports whether p and o denote the same coordinate. Degrees and
// minutes must match exactly; seconds may differ by up to SecondsEpsilon.
func (p Position) Equal(o Position) bool {
	return p.Degrees == o.Degrees &&
		p.Minutes == o.Minutes &&
		math.Abs(p.Seconds-o.Seconds) <= SecondsEpsilon
}

func (p Position) String() string {
	return fmt.Sprintf("%d°%d'%g\"", p.Degrees, p.Minutes, p.Seconds)
}

func (Position) ArchiveVersion() int { return 1 }

func (p Position) MarshalArchive(w *archive.Writer) error {
	w.Int(p.Degrees)
	w.Int(p.Minutes)
	w.Float(p.Seconds)
	return w.Err()
}

func (p *Position) UnmarshalArchive(r *archive.Reader, _ int) error {
	p.Degrees = r.Int()
	p.Minutes = r.Int()
	p.Seconds = r.Float()
	return r.Err()
}
