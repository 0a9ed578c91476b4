package fs

import (
	"fmt"
	"strconv"
	"time"
)

// EntryType represents the type of a filesystem entry.
type EntryType string

const (
	TypeDir  EntryType = "dir"
	TypeFile EntryType = "file"
)

// Metadata holds the filesystem metadata for an entry.
type Metadata struct {
	Type   EntryType
	Mode   string
	Owner  string
	FileID int64
	Size   int64
	CTime  int64 // creation time (unix timestamp)
	MTime  int64 // modification time
	ATime  int64 // access time
}

// NewDirMeta creates metadata for a new directory.
func NewDirMeta(fileID int64, owner string) *Metadata {
	now := time.Now().Unix()
	return &Metadata{
		Type:   TypeDir,
		Mode:   "0755",
		Owner:  owner,
		FileID: fileID,
		CTime:  now,
		MTime:  now,
		ATime:  now,
	}
}

// NewFileMeta creates metadata for a new file.
func NewFileMeta(fileID int64, owner string, size int64) *Metadata {
	now := time.Now().Unix()
	return &Metadata{
		Type:   TypeFile,
		Mode:   "0644",
		Owner:  owner,
		FileID: fileID,
		Size:   size,
		CTime:  now,
		MTime:  now,
		ATime:  now,
	}
}

// ToMap converts metadata to a map for HSET.
func (m *Metadata) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"type":   string(m.Type),
		"mode":   m.Mode,
		"owner":  m.Owner,
		"fileid": strconv.FormatInt(m.FileID, 10),
		"size":   strconv.FormatInt(m.Size, 10),
		"ctime":  strconv.FormatInt(m.CTime, 10),
		"mtime":  strconv.FormatInt(m.MTime, 10),
		"atime":  strconv.FormatInt(m.ATime, 10),
	}
}

// MetaFromMap parses a Redis hash map into Metadata.
func MetaFromMap(m map[string]string) *Metadata {
	if m == nil {
		return nil
	}
	fileID, _ := strconv.ParseInt(m["fileid"], 10, 64)
	size, _ := strconv.ParseInt(m["size"], 10, 64)
	ctime, _ := strconv.ParseInt(m["ctime"], 10, 64)
	mtime, _ := strconv.ParseInt(m["mtime"], 10, 64)
	atime, _ := strconv.ParseInt(m["atime"], 10, 64)

	return &Metadata{
		Type:   EntryType(m["type"]),
		Mode:   m["mode"],
		Owner:  m["owner"],
		FileID: fileID,
		Size:   size,
		CTime:  ctime,
		MTime:  mtime,
		ATime:  atime,
	}
}

// FormatTime formats a unix timestamp for display.
func FormatTime(ts int64) string {
	if ts == 0 {
		return "-"
	}
	return time.Unix(ts, 0).Format("Jan _2 15:04")
}

// FormatSize formats a file size for display.
func FormatSize(size int64) string {
	return fmt.Sprintf("%d", size)
}

// ModeString returns a POSIX-style mode string like "drwxr-xr-x".
func (m *Metadata) ModeString() string {
	prefix := byte('-')
	if m.Type == TypeDir {
		prefix = 'd'
	}

	mode, err := strconv.ParseUint(m.Mode, 8, 32)
	if err != nil {
		return string(prefix) + "rwxr-xr-x"
	}

	perms := [9]byte{'-', '-', '-', '-', '-', '-', '-', '-', '-'}
	bits := []byte{'r', 'w', 'x'}
	for i := 0; i < 9; i++ {
		if mode&(1<<uint(8-i)) != 0 {
			perms[i] = bits[i%3]
		}
	}

	return string(prefix) + string(perms[:])
}
