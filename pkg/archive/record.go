package archive

import (
	"strconv"

	aerrors "github.com/matzehuels/busarchive/pkg/errors"
)

// Marshaler is implemented by types that describe their fields to a
// [Writer]. Fields must be written in the same order UnmarshalArchive reads
// them.
type Marshaler interface {
	MarshalArchive(w *Writer) error
}

// Unmarshaler is implemented by types that read their fields back.
// version is the schema version recorded in the stream, which may be older
// than the type's current [Versioned.ArchiveVersion]; fields added later
// must only be read when version is high enough.
type Unmarshaler interface {
	UnmarshalArchive(r *Reader, version int) error
}

// Versioned is implemented by record types that carry a schema version.
// Types without it are at version 0.
type Versioned interface {
	ArchiveVersion() int
}

// Variant is implemented by concrete types reached through a polymorphic
// reference. ArchiveVariant returns the discriminator registered for the
// type in a [Registry].
type Variant interface {
	Marshaler
	ArchiveVariant() string
}

func versionOf(v any) int {
	if vv, ok := v.(Versioned); ok {
		return vv.ArchiveVersion()
	}
	return 0
}

func formatVersion(v int) string {
	return "v" + strconv.Itoa(v)
}

// version reads a version marker and checks it against the highest version
// the program understands for typ.
func (d *decoder) version(typ any) (int, error) {
	tok, err := d.token()
	if err != nil {
		return 0, err
	}
	if len(tok) < 2 || tok[0] != 'v' {
		return 0, d.malformed("expected version marker, got %q", tok)
	}
	v, err := strconv.Atoi(tok[1:])
	if err != nil || v < 0 || tok[1] == '+' || tok[1] == '-' {
		return 0, d.malformed("invalid version marker %q", tok)
	}
	if max := versionOf(typ); v > max {
		return 0, aerrors.New(aerrors.ErrCodeFutureVersion,
			"line %d: %T schema version %d is newer than supported version %d", d.line, typ, v, max)
	}
	return v, nil
}
