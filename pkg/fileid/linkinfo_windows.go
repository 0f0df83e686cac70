package fileid

import (
	"fmt"
	"os"
	"syscall"
)

// statPath returns the file identifier, link count, size and type of path on
// Windows. Device is the volume serial number and Inode the file index.
func statPath(path string, follow bool) (Info, error) {
	pathp, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return Info{}, fmt.Errorf("convert path to UTF16: %w", err)
	}

	var fi os.FileInfo
	if follow {
		fi, err = os.Stat(path)
	} else {
		fi, err = os.Lstat(path)
	}
	if err != nil {
		return Info{}, err
	}

	attrs := uint32(syscall.FILE_FLAG_BACKUP_SEMANTICS)
	if !follow && isSymlink(fi) {
		// Use FILE_FLAG_OPEN_REPARSE_POINT, otherwise CreateFile will follow symlink.
		// See https://docs.microsoft.com/en-us/windows/desktop/FileIO/symbolic-link-effects-on-file-systems-functions#createfile-and-createfiletransacted
		attrs |= syscall.FILE_FLAG_OPEN_REPARSE_POINT
	}

	h, err := syscall.CreateFile(pathp, 0, 0, nil, syscall.OPEN_EXISTING, attrs, 0)
	if err != nil {
		return Info{}, fmt.Errorf("open file: %w", err)
	}
	defer syscall.CloseHandle(h)

	var info syscall.ByHandleFileInformation
	if err := syscall.GetFileInformationByHandle(h, &info); err != nil {
		return Info{}, fmt.Errorf("get file info: %w", err)
	}

	return Info{
		ID: FileID{
			Device: uint64(info.VolumeSerialNumber),
			Inode:  (uint64(info.FileIndexHigh) << 32) | uint64(info.FileIndexLow),
		},
		Nlink: uint64(info.NumberOfLinks),
		Size:  fi.Size(),
		Mode:  fi.Mode().Type(),
	}, nil
}

func isSymlink(fi os.FileInfo) bool {
	return fi.Mode()&os.ModeSymlink != 0
}
