package schedule

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/matzehuels/busarchive/pkg/archive"
	aerrors "github.com/matzehuels/busarchive/pkg/errors"
)

// Write encodes s as an archive to w.
func Write(s *Schedule, w io.Writer, opts ...archive.Option) error {
	if s == nil {
		return aerrors.New(aerrors.ErrCodeInternal, "nil schedule")
	}
	return archive.NewWriter(w, opts...).Encode(s)
}

// Read decodes a schedule from r. On failure it returns nil and a coded
// error; a partially decoded schedule is never returned.
func Read(r io.Reader, opts ...archive.Option) (*Schedule, error) {
	s := New()
	if err := archive.NewReader(r, opts...).Decode(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes s to the file at path, replacing any previous content.
// It fails with IO_UNAVAILABLE if the file cannot be opened for writing.
// On failure the file may be left partially written.
func Save(s *Schedule, path string, opts ...archive.Option) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return aerrors.Wrap(aerrors.ErrCodeIOUnavailable, err, "failed to open %s for write", path)
	}
	if err := Write(s, f, opts...); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return aerrors.Wrap(aerrors.ErrCodeIOUnavailable, err, "close %s", path)
	}
	return nil
}

// Load reads the schedule saved at path. It fails with NOT_FOUND if the
// file does not exist.
func Load(path string, opts ...archive.Option) (*Schedule, error) {
	f, err := openForRead(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, opts...)
}

func openForRead(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, aerrors.Wrap(aerrors.ErrCodeNotFound, err, "failed to open %s", path)
	}
	if err != nil {
		return nil, aerrors.Wrap(aerrors.ErrCodeIOUnavailable, err, "failed to open %s", path)
	}
	return f, nil
}
