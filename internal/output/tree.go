package output

import (
	"fmt"
	"io"

	"github.com/gary-kim/maps/internal/fs"
)

// PrintTree renders a tree with Unicode box-drawing characters. Mount points
// are tagged with their storage kind.
func (f *Formatter) PrintTree(entry *fs.TreeEntry, dirCount, fileCount int, mounts map[string]fs.StorageKind) {
	if f.JSON {
		f.PrintJSON(treeToJSON(entry, mounts))
		return
	}

	fmt.Fprintln(f.Writer, f.treeName(entry, mounts))
	f.printTreeChildren(f.Writer, entry.Children, "", mounts)
	fmt.Fprintf(f.Writer, "\n%d directories, %d files\n", dirCount, fileCount)
}

func (f *Formatter) treeName(entry *fs.TreeEntry, mounts map[string]fs.StorageKind) string {
	name := f.FormatEntryName(entry.Name, entry.Type)
	if kind, ok := mounts[entry.Path]; ok {
		name += " " + f.dim("["+string(kind)+"]")
	}
	return name
}

// Children are already in name order.
func (f *Formatter) printTreeChildren(w io.Writer, children []fs.TreeEntry, prefix string, mounts map[string]fs.StorageKind) {
	for i := range children {
		child := &children[i]
		isLast := i == len(children)-1

		connector := "├── "
		childPrefix := "│   "
		if isLast {
			connector = "└── "
			childPrefix = "    "
		}

		fmt.Fprintf(w, "%s%s%s\n", prefix, connector, f.treeName(child, mounts))

		if child.Type == fs.TypeDir && len(child.Children) > 0 {
			f.printTreeChildren(w, child.Children, prefix+childPrefix, mounts)
		}
	}
}

func treeToJSON(entry *fs.TreeEntry, mounts map[string]fs.StorageKind) interface{} {
	result := map[string]interface{}{
		"name": entry.Name,
		"type": string(entry.Type),
	}
	if kind, ok := mounts[entry.Path]; ok {
		result["storage"] = string(kind)
	}
	if len(entry.Children) > 0 {
		children := make([]interface{}, len(entry.Children))
		for i := range entry.Children {
			children[i] = treeToJSON(&entry.Children[i], mounts)
		}
		result["children"] = children
	}
	return result
}
