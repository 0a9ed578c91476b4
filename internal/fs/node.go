package fs

import (
	"fmt"
	"strings"
)

// StorageKind tags the backend a node lives on.
type StorageKind string

const (
	// StorageHome is a user's own primary file area.
	StorageHome StorageKind = "home"
	// StorageExternal is storage mounted into a home from elsewhere.
	StorageExternal StorageKind = "external"
	// StorageShared is a federated or incoming share mount.
	StorageShared StorageKind = "shared"
	// StorageRoot covers the volume root, which belongs to nobody.
	StorageRoot StorageKind = "root"
)

// ParseMountKind parses a storage kind accepted by Mount.
func ParseMountKind(s string) (StorageKind, error) {
	switch StorageKind(strings.ToLower(s)) {
	case StorageExternal:
		return StorageExternal, nil
	case StorageShared:
		return StorageShared, nil
	default:
		return "", fmt.Errorf("unknown mount kind '%s' (use external or shared)", s)
	}
}

// Node is a handle to a file or folder, valid for the duration of the call
// that produced it.
type Node struct {
	Path    string
	Type    EntryType
	FileID  int64
	Owner   string
	Storage StorageKind
	Size    int64
	MTime   int64
}

// IsFolder reports whether the node is a directory.
func (n *Node) IsFolder() bool {
	return n.Type == TypeDir
}

// InstanceOfStorage reports whether the node's backing storage is of the given kind.
func (n *Node) InstanceOfStorage(kind StorageKind) bool {
	return n.Storage == kind
}

// Name returns the final path component.
func (n *Node) Name() string {
	return BaseName(n.Path)
}

func (n *Node) String() string {
	return fmt.Sprintf("%s(%d)", n.Path, n.FileID)
}

func newNode(path string, meta *Metadata, mounts map[string]StorageKind) *Node {
	return &Node{
		Path:    path,
		Type:    meta.Type,
		FileID:  meta.FileID,
		Owner:   meta.Owner,
		Storage: storageKindFor(path, mounts),
		Size:    meta.Size,
		MTime:   meta.MTime,
	}
}

// storageKindFor picks the kind of the longest mountpoint containing path.
// Anything else below a user directory is home storage.
func storageKindFor(path string, mounts map[string]StorageKind) StorageKind {
	path = NormalizePath(path)
	best := ""
	kind := StorageHome
	for mp, k := range mounts {
		if IsUnder(path, mp) && len(mp) > len(best) {
			best = mp
			kind = k
		}
	}
	if best == "" && path == "/" {
		return StorageRoot
	}
	return kind
}
