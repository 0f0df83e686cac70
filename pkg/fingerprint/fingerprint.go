package fingerprint

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/zeebo/xxh3"
)

// ErrEmptyFile is returned for zero-length files, which have no content to
// sample and are never linked.
var ErrEmptyFile = errors.New("cannot fingerprint an empty file")

// Fingerprint is a cheap, probabilistic content signature. Different
// fingerprints imply different content; equal fingerprints only make two
// files candidates for an exact comparison.
type Fingerprint struct {
	Hash uint64
	Size uint64
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("%016x/%d", f.Hash, f.Size)
}

// New computes the fingerprint of the regular file at path.
func New(fsys afero.Fs, path string) (fp Fingerprint, err error) {
	defer func() {
		if err != nil && !errors.Is(err, ErrEmptyFile) {
			err = errors.Wrapf(err, "fingerprint %q", path)
		}
	}()

	file, err := fsys.Open(path)
	if err != nil {
		return Fingerprint{}, errors.Wrap(err, "open")
	}
	defer file.Close()

	return FromReadSeeker(file)
}

// FromReadSeeker fingerprints the content behind rs, which must be positioned
// anywhere; its size is taken from the end offset.
func FromReadSeeker(rs io.ReadSeeker) (Fingerprint, error) {
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return Fingerprint{}, errors.Wrap(err, "seek to end")
	}
	if end == 0 {
		return Fingerprint{}, ErrEmptyFile
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return Fingerprint{}, errors.Wrap(err, "rewind")
	}

	size := uint64(end)
	skip := SkipLength(size)

	hasher := xxh3.New()
	buf := make([]byte, SampleSize)
	for {
		n, err := io.ReadFull(rs, buf)
		if n > 0 {
			_, _ = hasher.Write(buf[:n])
		}

		switch {
		case err == io.EOF || err == io.ErrUnexpectedEOF:
			return Fingerprint{Hash: hasher.Sum64(), Size: size}, nil
		case err != nil:
			return Fingerprint{}, errors.Wrap(err, "read sample")
		}

		if skip > 0 {
			if _, err := rs.Seek(skip, io.SeekCurrent); err != nil {
				return Fingerprint{}, errors.Wrap(err, "seek to next sample")
			}
		}
	}
}
