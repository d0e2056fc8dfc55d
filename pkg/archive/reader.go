package archive

import (
	"fmt"
	"io"
	"math"
	"time"

	aerrors "github.com/matzehuels/busarchive/pkg/errors"
	"github.com/matzehuels/busarchive/pkg/observability"
)

// Reader reconstructs one object graph written by a [Writer]. Like the
// Writer it performs a single [Reader.Decode] and cannot be reused.
//
// Objects reached through references are freshly allocated and wired
// together exactly as they were when written: references that shared an
// object share the reconstructed object, and no other sharing is
// introduced.
type Reader struct {
	dec   *decoder
	slots slotTable
	opts  options
	state state
	err   error
	stats Stats
}

// NewReader returns a Reader consuming an archive from r.
func NewReader(r io.Reader, opts ...Option) *Reader {
	return &Reader{
		dec:  newDecoder(r),
		opts: newOptions(opts),
	}
}

// Decode reads the archive header, root's record and the trailer. It fails with a
// coded *errors.Error if the stream is malformed, truncated, declares a
// newer version than supported, or names an unregistered variant; in that
// case root must be discarded.
func (r *Reader) Decode(root Unmarshaler) error {
	if r.state != stateIdle {
		return aerrors.New(aerrors.ErrCodeInternal, "archive reader already used")
	}
	r.state = stateActive
	defer func() { r.state = stateClosed }()

	start := time.Now()
	r.header()
	r.Record(root)
	r.trailer()
	if r.err == nil {
		r.fail(r.dec.end())
	}

	ev := observability.ArchiveEvent{
		Root:     fmt.Sprintf("%T", root),
		Records:  r.stats.Records,
		Objects:  r.stats.Objects,
		BackRefs: r.stats.BackRefs,
		Duration: time.Since(start),
		Err:      r.err,
	}
	observability.Archive().OnDecode(ev)
	if r.err != nil {
		r.opts.logger.Debug("decode failed", "root", ev.Root, "err", r.err)
		return r.err
	}
	r.opts.logger.Debug("decoded archive", "root", ev.Root, "records", ev.Records, "objects", ev.Objects, "backrefs", ev.BackRefs)
	return nil
}

func (r *Reader) header() {
	magic, err := r.dec.token()
	if err != nil {
		r.fail(err)
		return
	}
	if magic != Magic {
		r.fail(r.dec.malformed("not an archive: header %q", magic))
		return
	}
	format, err := r.dec.int()
	if err != nil {
		r.fail(err)
		return
	}
	switch {
	case format < 1:
		r.fail(r.dec.malformed("invalid archive format %d", format))
	case format > FormatVersion:
		r.fail(aerrors.New(aerrors.ErrCodeFutureVersion, "archive format %d is newer than supported format %d", format, FormatVersion))
	}
}

func (r *Reader) trailer() {
	if r.err != nil {
		return
	}
	tok, err := r.dec.token()
	if err != nil {
		r.fail(err)
		return
	}
	if tok != Trailer {
		r.fail(r.dec.malformed("expected %q after root record, got %q", Trailer, tok))
	}
}

// Err returns the first failure recorded by the Reader.
func (r *Reader) Err() error { return r.err }

// Stats reports what has been read so far.
func (r *Reader) Stats() Stats { return r.stats }

func (r *Reader) fail(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Int reads an integer field.
func (r *Reader) Int() int {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.int()
	if err != nil {
		r.fail(err)
		return 0
	}
	if v < math.MinInt || v > math.MaxInt {
		r.fail(r.dec.malformed("integer %d out of range", v))
		return 0
	}
	return int(v)
}

// Float reads a floating point field.
func (r *Reader) Float() float64 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.float()
	r.fail(err)
	return v
}

// String reads a string field.
func (r *Reader) String() string {
	if r.err != nil {
		return ""
	}
	s, err := r.dec.string()
	r.fail(err)
	return s
}

// Bool reads a boolean field.
func (r *Reader) Bool() bool {
	switch v := r.Int(); v {
	case 0:
		return false
	case 1:
		return true
	default:
		r.fail(r.dec.malformed("expected boolean, got %d", v))
		return false
	}
}

// Len reads a sequence length prefix. Callers must then read exactly that
// many elements; a short stream is reported as malformed.
func (r *Reader) Len() int {
	n := r.Int()
	if n < 0 {
		r.fail(r.dec.malformed("negative sequence length %d", n))
		return 0
	}
	return n
}

// Record reads a by-value record into u: its schema version, then its
// fields as described by u for that version.
func (r *Reader) Record(u Unmarshaler) {
	if r.err != nil {
		return
	}
	r.stats.Records++
	v, err := r.dec.version(u)
	if err != nil {
		r.fail(err)
		return
	}
	if v < versionOf(u) {
		r.stats.Outdated++
	}
	if err := u.UnmarshalArchive(r, v); err != nil {
		r.fail(aerrors.Ensure(err, aerrors.ErrCodeMalformedArchive, "line %d: decode %T", r.dec.line, u))
	}
}

// readRef reads one reference token and, for a first occurrence, the
// object behind it. For polymorphic references capability is set and the
// object comes from the registry; otherwise alloc provides it.
// A nil reference yields (nil, true).
func (r *Reader) readRef(capability string, alloc func() Unmarshaler) (any, bool) {
	if r.err != nil {
		return nil, false
	}
	tok, err := r.dec.token()
	if err != nil {
		r.fail(err)
		return nil, false
	}
	if tok == markNil {
		return nil, true
	}
	mark, slot, ok := parseSlot(tok)
	if !ok {
		r.fail(r.dec.malformed("expected reference, got %q", tok))
		return nil, false
	}

	if mark == markBack {
		obj, ok := r.slots.resolve(slot)
		if !ok {
			r.fail(r.dec.malformed("reference to unseen slot %d", slot))
			return nil, false
		}
		r.stats.BackRefs++
		r.opts.logger.Debug("back-reference", "slot", slot, "type", fmt.Sprintf("%T", obj))
		return obj, true
	}

	var obj Unmarshaler
	if capability != "" {
		variant, err := r.dec.token()
		if err != nil {
			r.fail(err)
			return nil, false
		}
		obj, err = r.opts.registry.Construct(capability, variant)
		if err != nil {
			r.fail(err)
			return nil, false
		}
	} else {
		obj = alloc()
	}

	// Claim the slot before decoding fields so a self reference resolves.
	if !r.slots.claim(slot, obj) {
		r.fail(r.dec.malformed("slot %d out of order (expected %d)", slot, r.slots.len()))
		return nil, false
	}
	r.stats.Objects++
	r.opts.logger.Debug("new slot", "slot", slot, "type", fmt.Sprintf("%T", obj), "capability", capability)
	r.Record(obj)
	return obj, r.err == nil
}

func (r *Reader) mismatch(obj, want any) {
	r.fail(r.dec.malformed("reference resolves to %T, want %T", obj, want))
}

// ReadRef reads a shared reference written by [Writer.Ref]. The first
// occurrence allocates a new E and decodes into it; later occurrences
// return the same pointer. A nil reference returns nil.
func ReadRef[E any, P interface {
	*E
	Unmarshaler
}](r *Reader) P {
	obj, ok := r.readRef("", func() Unmarshaler { return P(new(E)) })
	if !ok || obj == nil {
		return nil
	}
	p, ok := obj.(P)
	if !ok {
		r.mismatch(obj, p)
		return nil
	}
	return p
}

// ReadPoly reads a polymorphic reference written by [Writer.Poly] and
// returns it as T, typically the interface the capability stands for.
func ReadPoly[T any](r *Reader, capability string) T {
	var zero T
	obj, ok := r.readRef(capability, nil)
	if !ok || obj == nil {
		return zero
	}
	t, ok := obj.(T)
	if !ok {
		r.mismatch(obj, (*T)(nil))
		return zero
	}
	return t
}
