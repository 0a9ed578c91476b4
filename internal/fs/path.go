package fs

import (
	"path"
	"strings"
)

const (
	filesDir = "files"
	trashDir = "files_trashbin"
)

// NormalizePath converts a path to a clean, absolute form.
// It resolves ".", "..", multiple slashes, and trailing slashes (except for root).
func NormalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}

// ResolvePath resolves a potentially relative path against the current working directory.
func ResolvePath(cwd, p string) string {
	if p == "" {
		return NormalizePath(cwd)
	}
	if strings.HasPrefix(p, "/") {
		return NormalizePath(p)
	}
	return NormalizePath(cwd + "/" + p)
}

// ParentPath returns the parent directory of the given path.
// Returns "/" for root and first-level paths.
func ParentPath(p string) string {
	p = NormalizePath(p)
	if p == "/" {
		return "/"
	}
	return path.Dir(p)
}

// BaseName returns the final component of the path.
func BaseName(p string) string {
	p = NormalizePath(p)
	if p == "/" {
		return "/"
	}
	return path.Base(p)
}

// SplitPath returns the parent directory and the base name.
func SplitPath(p string) (string, string) {
	return ParentPath(p), BaseName(p)
}

// JoinPath joins path components into a normalized path.
func JoinPath(parts ...string) string {
	return NormalizePath(strings.Join(parts, "/"))
}

// IsUnder reports whether p equals root or lies below it.
func IsUnder(p, root string) bool {
	p = NormalizePath(p)
	root = NormalizePath(root)
	if root == "/" || p == root {
		return true
	}
	return strings.HasPrefix(p, root+"/")
}

// UserHome returns the files root of a user, e.g. /alice/files.
func UserHome(uid string) string {
	return JoinPath(uid, filesDir)
}

// UserFilesPath maps a path relative to a user's files root to an absolute
// path: ("alice", "Photos/a.jpg") becomes /alice/files/Photos/a.jpg.
// rel is cleaned on its own first so ".." cannot leave the files root.
func UserFilesPath(uid, rel string) string {
	return JoinPath(uid, filesDir, NormalizePath(rel))
}

// UserTrash returns the directory holding a user's deleted entries.
func UserTrash(uid string) string {
	return JoinPath(uid, trashDir, filesDir)
}

// RelativeToHome strips the /<uid>/files prefix. The result keeps a leading
// slash; ok is false when p is outside the user's files root.
func RelativeToHome(uid, p string) (rel string, ok bool) {
	home := UserHome(uid)
	p = NormalizePath(p)
	if !IsUnder(p, home) {
		return "", false
	}
	rel = strings.TrimPrefix(p, home)
	if rel == "" {
		rel = "/"
	}
	return rel, true
}

// OwnerOf returns the first path segment, which names the owning user.
// Returns "" for the root.
func OwnerOf(p string) string {
	p = NormalizePath(p)
	if p == "/" {
		return ""
	}
	first, _, _ := strings.Cut(p[1:], "/")
	return first
}
