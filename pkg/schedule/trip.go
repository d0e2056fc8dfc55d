package schedule

import (
	"fmt"

	"github.com/matzehuels/busarchive/pkg/archive"
)

// Trip is one departure: a time of day and the driver assigned to it.
type Trip struct {
	Hour   int
	Minute int
	Driver string // since version 2
}

func (t Trip) String() string {
	if t.Driver == "" {
		return fmt.Sprintf("%d:%02d", t.Hour, t.Minute)
	}
	return fmt.Sprintf("%d:%02d %s", t.Hour, t.Minute, t.Driver)
}

func (Trip) ArchiveVersion() int { return 2 }

func (t Trip) MarshalArchive(w *archive.Writer) error {
	w.String(t.Driver)
	w.Int(t.Hour)
	w.Int(t.Minute)
	return w.Err()
}

func (t *Trip) UnmarshalArchive(r *archive.Reader, version int) error {
	t.Driver = ""
	if version >= 2 {
		t.Driver = r.String()
	}
	t.Hour = r.Int()
	t.Minute = r.Int()
	return r.Err()
}
