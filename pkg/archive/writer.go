package archive

import (
	"fmt"
	"io"
	"time"

	aerrors "github.com/matzehuels/busarchive/pkg/errors"
	"github.com/matzehuels/busarchive/pkg/observability"
)

// Writer serializes one object graph. A Writer performs exactly one
// [Writer.Encode] and cannot be reused; its identity table lives only as
// long as that call.
//
// Field methods record the first failure and turn into no-ops afterwards,
// so MarshalArchive implementations can write all fields and return
// [Writer.Err] once at the end.
type Writer struct {
	enc   *encoder
	ids   *identityTable
	opts  options
	state state
	err   error
	stats Stats
}

// NewWriter returns a Writer that emits an archive to w.
func NewWriter(w io.Writer, opts ...Option) *Writer {
	return &Writer{
		enc:  newEncoder(w),
		ids:  newIdentityTable(),
		opts: newOptions(opts),
	}
}

// Encode writes the archive header, root and the trailer, then flushes the
// underlying stream. It returns a coded *errors.Error on failure.
func (w *Writer) Encode(root Marshaler) error {
	if w.state != stateIdle {
		return aerrors.New(aerrors.ErrCodeInternal, "archive writer already used")
	}
	w.state = stateActive
	defer func() { w.state = stateClosed }()

	start := time.Now()
	w.enc.token(Magic)
	w.enc.int(FormatVersion)
	w.Record(root)
	if w.Err() == nil {
		w.enc.newline()
		w.enc.token(Trailer)
		if err := w.enc.flush(); err != nil {
			w.fail(aerrors.Wrap(aerrors.ErrCodeIOUnavailable, err, "flush archive"))
		}
	}

	ev := observability.ArchiveEvent{
		Root:     fmt.Sprintf("%T", root),
		Records:  w.stats.Records,
		Objects:  w.stats.Objects,
		BackRefs: w.stats.BackRefs,
		Duration: time.Since(start),
		Err:      w.err,
	}
	observability.Archive().OnEncode(ev)
	if w.err != nil {
		w.opts.logger.Debug("encode failed", "root", ev.Root, "err", w.err)
		return w.err
	}
	w.opts.logger.Debug("encoded archive", "root", ev.Root, "records", ev.Records, "objects", ev.Objects, "backrefs", ev.BackRefs)
	return nil
}

// Err returns the first failure recorded by the Writer.
func (w *Writer) Err() error {
	if w.err == nil && w.enc.err != nil {
		w.err = aerrors.Wrap(aerrors.ErrCodeIOUnavailable, w.enc.err, "write archive")
	}
	return w.err
}

// Stats reports what has been written so far.
func (w *Writer) Stats() Stats { return w.stats }

func (w *Writer) fail(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Int writes an integer field.
func (w *Writer) Int(v int) {
	if w.Err() != nil {
		return
	}
	w.enc.int(int64(v))
}

// Float writes a floating point field. The text form round-trips exactly.
func (w *Writer) Float(v float64) {
	if w.Err() != nil {
		return
	}
	w.enc.float(v)
}

// String writes a string field of arbitrary content.
func (w *Writer) String(s string) {
	if w.Err() != nil {
		return
	}
	w.enc.string(s)
}

// Bool writes a boolean field as 0 or 1.
func (w *Writer) Bool(b bool) {
	if b {
		w.Int(1)
		return
	}
	w.Int(0)
}

// Len writes the length prefix of a sequence. Exactly n elements must follow.
func (w *Writer) Len(n int) {
	if n < 0 {
		w.fail(aerrors.New(aerrors.ErrCodeInternal, "negative sequence length %d", n))
		return
	}
	w.Int(n)
}

// Record writes m by value: its schema version followed by its fields.
// Values written this way are never deduplicated.
func (w *Writer) Record(m Marshaler) {
	if w.Err() != nil {
		return
	}
	if isNil(m) {
		w.fail(aerrors.New(aerrors.ErrCodeInternal, "nil record %T", m))
		return
	}
	w.enc.newline()
	w.record(m)
}

func (w *Writer) record(m Marshaler) {
	w.stats.Records++
	w.enc.token(formatVersion(versionOf(m)))
	if err := m.MarshalArchive(w); err != nil {
		w.fail(aerrors.Ensure(err, aerrors.ErrCodeInternal, "marshal %T", m))
	}
	w.enc.newline()
}

// Ref writes a shared reference to m, which must be a pointer. The first
// reference to an object writes the object itself; later ones write only
// its slot.
func (w *Writer) Ref(m Marshaler) {
	w.ref("", m, "")
}

// Poly writes a shared reference to v through the polymorphic capability.
// The variant discriminator precedes the object so a reader can pick the
// factory registered for it.
func (w *Writer) Poly(capability string, v Variant) {
	if w.Err() != nil {
		return
	}
	if isNil(v) {
		w.ref(capability, nil, "")
		return
	}
	if err := w.opts.registry.checkVariant(capability, v); err != nil {
		w.fail(err)
		return
	}
	w.ref(capability, v, v.ArchiveVariant())
}

func (w *Writer) ref(capability string, m Marshaler, variant string) {
	if w.Err() != nil {
		return
	}
	w.enc.newline()
	if isNil(m) {
		w.enc.token(markNil)
		w.enc.newline()
		return
	}
	if !isPointer(m) {
		w.fail(aerrors.New(aerrors.ErrCodeInternal, "reference to non-pointer %T", m))
		return
	}

	seen, slot := w.ids.intern(m)
	if seen {
		w.stats.BackRefs++
		w.enc.token(formatSlot(markBack, slot))
		w.enc.newline()
		w.opts.logger.Debug("back-reference", "slot", slot, "type", fmt.Sprintf("%T", m))
		return
	}

	w.stats.Objects++
	w.opts.logger.Debug("new slot", "slot", slot, "type", fmt.Sprintf("%T", m), "capability", capability)
	w.enc.token(formatSlot(markNew, slot))
	if variant != "" {
		w.enc.token(variant)
	}
	w.record(m)
}
