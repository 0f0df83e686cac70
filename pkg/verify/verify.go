package verify

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/autobrr/hldup/pkg/fileid"
	"github.com/autobrr/hldup/pkg/logger"
)

// DefaultBufferSize is the per-file read buffer used while comparing.
const DefaultBufferSize = 32 * 1024 * 1024

// Verifier confirms that two fingerprint-colliding files are byte-identical.
type Verifier struct {
	fs         afero.Fs
	bufferSize int
	lstat      func(string) (fileid.Info, error)
	log        *logrus.Entry
}

func New(fsys afero.Fs, bufferSize int) *Verifier {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	return &Verifier{
		fs:         fsys,
		bufferSize: bufferSize,
		lstat:      fileid.Lstat,
		log:        logger.GetLogger("verify"),
	}
}

// SameContent reports whether left and right hold identical bytes. Files of
// different type or size are rejected without being opened, and two paths to
// the same inode are accepted without being opened. I/O failures are returned
// as errors, never as a negative answer.
func (v *Verifier) SameContent(left, right string) (bool, error) {
	v.log.Debugf("Checking if %q and %q are the same file", left, right)

	leftInfo, err := v.lstat(left)
	if err != nil {
		return false, err
	}
	rightInfo, err := v.lstat(right)
	if err != nil {
		return false, err
	}

	if leftInfo.Mode != rightInfo.Mode || leftInfo.Size != rightInfo.Size {
		return false, nil
	}
	v.log.Tracef("Files %q and %q passed size & type checks; size was %d", left, right, leftInfo.Size)

	if leftInfo.SameInode(rightInfo) {
		return true, nil
	}
	v.log.Tracef("Files %q and %q passed inode short-circuit; were %s and %s", left, right,
		leftInfo.ID, rightInfo.ID)

	return v.compare(left, right)
}

func (v *Verifier) compare(left, right string) (bool, error) {
	lf, err := v.fs.Open(left)
	if err != nil {
		return false, errors.Wrapf(err, "open %q", left)
	}
	defer lf.Close()

	rf, err := v.fs.Open(right)
	if err != nil {
		return false, errors.Wrapf(err, "open %q", right)
	}
	defer rf.Close()

	lbuf := make([]byte, v.bufferSize)
	rbuf := make([]byte, v.bufferSize)

	var offset int64
	for {
		ln, err := readFull(lf, lbuf)
		if err != nil {
			return false, errors.Wrapf(err, "read %q", left)
		}
		rn, err := readFull(rf, rbuf)
		if err != nil {
			return false, errors.Wrapf(err, "read %q", right)
		}

		if !bytes.Equal(lbuf[:ln], rbuf[:rn]) {
			v.log.Debugf("Found difference between %q and %q after offset %d", left, right, offset)
			return false, nil
		}

		// a short read means end of file; sizes were already checked
		if ln < len(lbuf) {
			v.log.Debugf("Finished comparison; %q and %q are identical", left, right)
			return true, nil
		}
		offset += int64(ln)
	}
}

// readFull fills buf until it is full or the reader is exhausted.
func readFull(r io.Reader, buf []byte) (int, error) {
	n, err := io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return n, nil
	}
	return n, err
}
