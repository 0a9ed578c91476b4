package fs

import "fmt"

// KeyGen generates Redis key names for a given volume.
type KeyGen struct {
	Volume string
}

// NewKeyGen creates a KeyGen for the given volume.
func NewKeyGen(volume string) *KeyGen {
	return &KeyGen{Volume: volume}
}

// Meta returns the metadata key for a path.
// e.g., fs:main:meta:/alice/files/Photos
func (k *KeyGen) Meta(path string) string {
	return fmt.Sprintf("fs:%s:meta:%s", k.Volume, path)
}

// Data returns the data key for a path.
func (k *KeyGen) Data(path string) string {
	return fmt.Sprintf("fs:%s:data:%s", k.Volume, path)
}

// Dir returns the directory set key for a path.
func (k *KeyGen) Dir(path string) string {
	return fmt.Sprintf("fs:%s:dir:%s", k.Volume, path)
}

// Versions returns the list key holding prior contents of a file, newest first.
func (k *KeyGen) Versions(path string) string {
	return fmt.Sprintf("fs:%s:versions:%s", k.Volume, path)
}

// FileID returns the key mapping a numeric file id to its current path.
func (k *KeyGen) FileID(id int64) string {
	return fmt.Sprintf("fs:%s:fileid:%d", k.Volume, id)
}

// NextFileID returns the file id counter key.
func (k *KeyGen) NextFileID() string {
	return fmt.Sprintf("fs:%s:next_fileid", k.Volume)
}

// Mounts returns the hash of mountpoint -> storage kind.
func (k *KeyGen) Mounts() string {
	return fmt.Sprintf("fs:%s:mounts", k.Volume)
}

// Users returns the set of known user ids.
func (k *KeyGen) Users() string {
	return fmt.Sprintf("fs:%s:users", k.Volume)
}

// Trash returns the hash of trash entry name -> original location for a user.
func (k *KeyGen) Trash(uid string) string {
	return fmt.Sprintf("fs:%s:trash:%s", k.Volume, uid)
}
