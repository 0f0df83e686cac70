package relink

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/autobrr/hldup/pkg/logger"
)

// DefaultBackupSuffix is appended to a file's name while it is being replaced.
const DefaultBackupSuffix = ".bak"

// ErrBackupExists is returned when the backup path of a file is already
// taken, usually by an earlier interrupted run. Nothing is modified.
var ErrBackupExists = errors.New("backup path already exists")

// Replacer swaps a file for a hardlink to another file while keeping the
// original content at a backup path until the link exists.
//
// The sequence is not atomic: a crash between the rename and the backup
// removal leaves the target missing and its content at the backup path.
type Replacer struct {
	fs     afero.Fs
	suffix string
	link   func(oldname, newname string) error
	log    *logrus.Entry
}

func New(fsys afero.Fs, suffix string) *Replacer {
	if suffix == "" {
		suffix = DefaultBackupSuffix
	}

	return &Replacer{
		fs:     fsys,
		suffix: suffix,
		link:   os.Link,
		log:    logger.GetLogger("relink"),
	}
}

// BackupPath appends suffix after the extension of path.
func BackupPath(path, suffix string) string {
	return path + suffix
}

// Replace makes right a hardlink to left. On failure after the backup was
// taken, the backup is left in place and named in the returned error.
func (r *Replacer) Replace(left, right string) (err error) {
	defer func() {
		if err != nil {
			err = errors.Wrapf(err, "replace %q with link to %q", right, left)
		}
	}()

	backup := BackupPath(right, r.suffix)

	exists, err := afero.Exists(r.fs, backup)
	if err != nil {
		return errors.Wrapf(err, "check backup %q", backup)
	}
	if exists {
		return errors.Wrapf(ErrBackupExists, "%q", backup)
	}

	if err := r.fs.Rename(right, backup); err != nil {
		return errors.Wrapf(err, "create backup %q", backup)
	}
	r.log.Tracef("Moved %q to backup %q", right, backup)

	if err := r.link(left, right); err != nil {
		return errors.Wrapf(err, "create link (original content kept at %q)", backup)
	}

	if err := r.fs.Remove(backup); err != nil {
		return errors.Wrapf(err, "remove backup %q", backup)
	}

	return nil
}
