package archive

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	aerrors "github.com/matzehuels/busarchive/pkg/errors"
)

// encoder appends whitespace separated tokens to a buffered stream.
// Strings are written as a length token, one space, and the raw bytes,
// so they may contain any byte including whitespace.
type encoder struct {
	w         *bufio.Writer
	lineStart bool
	err       error
}

func newEncoder(w io.Writer) *encoder {
	return &encoder{w: bufio.NewWriter(w), lineStart: true}
}

func (e *encoder) token(s string) {
	if e.err != nil {
		return
	}
	if !e.lineStart {
		if e.err = e.w.WriteByte(' '); e.err != nil {
			return
		}
	}
	_, e.err = e.w.WriteString(s)
	e.lineStart = false
}

// newline ends the current line unless nothing has been written to it.
func (e *encoder) newline() {
	if e.err != nil || e.lineStart {
		return
	}
	e.err = e.w.WriteByte('\n')
	e.lineStart = true
}

func (e *encoder) int(v int64) { e.token(strconv.FormatInt(v, 10)) }

func (e *encoder) float(v float64) { e.token(strconv.FormatFloat(v, 'g', -1, 64)) }

func (e *encoder) string(s string) {
	e.int(int64(len(s)))
	if e.err != nil {
		return
	}
	if e.err = e.w.WriteByte(' '); e.err != nil {
		return
	}
	_, e.err = e.w.WriteString(s)
}

func (e *encoder) flush() error {
	if e.err != nil {
		return e.err
	}
	e.newline()
	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}

// decoder consumes the tokens written by encoder. Every shape mismatch is
// reported as MALFORMED_ARCHIVE with the line it occurred on.
type decoder struct {
	r    *bufio.Reader
	line int
}

func newDecoder(r io.Reader) *decoder {
	return &decoder{r: bufio.NewReader(r), line: 1}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}

func (d *decoder) malformed(format string, args ...any) error {
	return aerrors.New(aerrors.ErrCodeMalformedArchive, "line %d: %s", d.line, fmt.Sprintf(format, args...))
}

func (d *decoder) readErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return d.malformed("unexpected end of archive")
	}
	return aerrors.Wrap(aerrors.ErrCodeIOUnavailable, err, "read archive")
}

// skipSpace advances past whitespace. It returns io.EOF when the stream
// ends before another token.
func (d *decoder) skipSpace() error {
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return err
		}
		if !isSpace(b) {
			return d.r.UnreadByte()
		}
		if b == '\n' {
			d.line++
		}
	}
}

// token returns the next whitespace delimited token. The delimiter itself
// is left in the stream.
func (d *decoder) token() (string, error) {
	if err := d.skipSpace(); err != nil {
		return "", d.readErr(err)
	}
	var buf bytes.Buffer
	for {
		b, err := d.r.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", d.readErr(err)
		}
		if isSpace(b) {
			if err := d.r.UnreadByte(); err != nil {
				return "", d.readErr(err)
			}
			break
		}
		buf.WriteByte(b)
	}
	return buf.String(), nil
}

func (d *decoder) int() (int64, error) {
	tok, err := d.token()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, d.malformed("expected integer, got %q", tok)
	}
	return v, nil
}

func (d *decoder) float() (float64, error) {
	tok, err := d.token()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, d.malformed("expected number, got %q", tok)
	}
	return v, nil
}

func (d *decoder) string() (string, error) {
	n, err := d.int()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", d.malformed("negative string length %d", n)
	}
	sep, err := d.r.ReadByte()
	if err != nil {
		return "", d.readErr(err)
	}
	if sep != ' ' {
		return "", d.malformed("expected space after string length")
	}
	// CopyN grows buf as bytes arrive rather than by the declared length.
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, d.r, n); err != nil {
		return "", d.readErr(err)
	}
	s := buf.String()
	d.line += bytes.Count(buf.Bytes(), []byte{'\n'})
	return s, nil
}

// end reports an error unless only whitespace remains.
func (d *decoder) end() error {
	err := d.skipSpace()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return d.readErr(err)
	}
	tok, _ := d.token()
	return d.malformed("unexpected trailing data %q", tok)
}
