//go:build !windows

package fileid

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

// statPath reads device, inode and link count from the raw stat struct.
func statPath(path string, follow bool) (Info, error) {
	var st unix.Stat_t
	var err error
	if follow {
		err = unix.Stat(path, &st)
	} else {
		err = unix.Lstat(path, &st)
	}
	if err != nil {
		return Info{}, err
	}

	return Info{
		ID: FileID{
			Device: uint64(st.Dev),
			Inode:  uint64(st.Ino),
		},
		Nlink: uint64(st.Nlink),
		Size:  st.Size,
		Mode:  typeBits(uint32(st.Mode)),
	}, nil
}

func typeBits(mode uint32) fs.FileMode {
	switch mode & unix.S_IFMT {
	case unix.S_IFDIR:
		return fs.ModeDir
	case unix.S_IFLNK:
		return fs.ModeSymlink
	case unix.S_IFIFO:
		return fs.ModeNamedPipe
	case unix.S_IFSOCK:
		return fs.ModeSocket
	case unix.S_IFCHR:
		return fs.ModeDevice | fs.ModeCharDevice
	case unix.S_IFBLK:
		return fs.ModeDevice
	default:
		return 0
	}
}
