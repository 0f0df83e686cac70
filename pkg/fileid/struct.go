package fileid

import (
	"fmt"
	"io/fs"
)

// FileID represents a unique file identifier (device ID + inode number).
type FileID struct {
	Device uint64 // Device ID
	Inode  uint64 // Inode number
}

// String returns a string representation of the FileID.
func (f FileID) String() string {
	return fmt.Sprintf("%d:%d", f.Device, f.Inode)
}

// Equal checks if two FileIDs are equal.
func (f FileID) Equal(other FileID) bool {
	return f.Device == other.Device && f.Inode == other.Inode
}

// Info is the subset of file metadata needed to compare and link files.
type Info struct {
	ID    FileID
	Nlink uint64
	Size  int64
	// Mode only carries the type bits (fs.ModeType).
	Mode fs.FileMode
}

// SameInode reports whether both infos describe the same inode.
func (i Info) SameInode(other Info) bool {
	return i.ID.Equal(other.ID)
}

// SameDevice reports whether both infos reside on the same filesystem.
func (i Info) SameDevice(other Info) bool {
	return i.ID.Device == other.ID.Device
}
