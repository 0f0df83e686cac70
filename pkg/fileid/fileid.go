package fileid

import (
	"github.com/pkg/errors"
)

// Stat returns metadata for path, following symlinks.
func Stat(path string) (Info, error) {
	info, err := statPath(path, true)
	if err != nil {
		return Info{}, errors.Wrapf(err, "stat %q", path)
	}
	return info, nil
}

// Lstat returns metadata for path without following a trailing symlink.
func Lstat(path string) (Info, error) {
	info, err := statPath(path, false)
	if err != nil {
		return Info{}, errors.Wrapf(err, "lstat %q", path)
	}
	return info, nil
}
