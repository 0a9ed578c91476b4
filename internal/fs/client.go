package fs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client provides filesystem operations backed by Redis.
type Client struct {
	rdb    *redis.Client
	keys   *KeyGen
	Volume string
	events *Emitter
}

// NewClient creates a new filesystem client.
func NewClient(rdb *redis.Client, volume string) *Client {
	return &Client{
		rdb:    rdb,
		keys:   NewKeyGen(volume),
		Volume: volume,
		events: NewEmitter(),
	}
}

// Events returns the emitter that node and trash events are published on.
func (c *Client) Events() *Emitter {
	return c.events
}

// Redis returns the underlying Redis client.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}

// --- Init ---

// Init bootstraps the volume root directory if it doesn't exist.
func (c *Client) Init(ctx context.Context) error {
	metaKey := c.keys.Meta("/")
	// HSETNX keeps it idempotent
	created, err := c.rdb.HSetNX(ctx, metaKey, "type", string(TypeDir)).Result()
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	if !created {
		return nil
	}

	id, err := c.nextFileID(ctx)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, metaKey, NewDirMeta(id, "").ToMap())
	pipe.Set(ctx, c.keys.FileID(id), "/", 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	return nil
}

func (c *Client) nextFileID(ctx context.Context) (int64, error) {
	return c.rdb.Incr(ctx, c.keys.NextFileID()).Result()
}

// --- Stat / Exists / Get ---

// Stat returns metadata for a path. Returns nil, nil if not found.
func (c *Client) Stat(ctx context.Context, path string) (*Metadata, error) {
	m, err := c.rdb.HGetAll(ctx, c.keys.Meta(path)).Result()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	if len(m) == 0 {
		return nil, nil
	}
	return MetaFromMap(m), nil
}

// Exists checks if a path exists.
func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	n, err := c.rdb.Exists(ctx, c.keys.Meta(path)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IsDir checks if the path is an existing directory.
func (c *Client) IsDir(ctx context.Context, path string) (bool, error) {
	t, err := c.rdb.HGet(ctx, c.keys.Meta(path), "type").Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return t == string(TypeDir), nil
}

// Get resolves a path to a node. Missing paths yield an error wrapping ErrNotFound.
func (c *Client) Get(ctx context.Context, path string) (*Node, error) {
	path = NormalizePath(path)
	meta, err := c.Stat(ctx, path)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	mounts, err := c.Mounts(ctx)
	if err != nil {
		return nil, err
	}
	return newNode(path, meta, mounts), nil
}

// GetByID resolves a numeric file id to its node.
func (c *Client) GetByID(ctx context.Context, id int64) (*Node, error) {
	path, err := c.rdb.Get(ctx, c.keys.FileID(id)).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("file id %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get by id: %w", err)
	}
	return c.Get(ctx, path)
}

// --- ReadDir ---

// ReadDir returns the child entry names of a directory.
func (c *Client) ReadDir(ctx context.Context, path string) ([]string, error) {
	members, err := c.rdb.SMembers(ctx, c.keys.Dir(path)).Result()
	if err != nil {
		return nil, fmt.Errorf("readdir: %w", err)
	}
	sort.Strings(members)
	return members, nil
}

// DirEntry is a directory listing entry with metadata.
type DirEntry struct {
	Name string
	Meta *Metadata
}

// ReadDirWithMeta returns child names with metadata (for ls -l).
func (c *Client) ReadDirWithMeta(ctx context.Context, dirPath string) ([]DirEntry, error) {
	children, err := c.ReadDir(ctx, dirPath)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return nil, nil
	}

	pipe := c.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(children))
	for i, child := range children {
		cmds[i] = pipe.HGetAll(ctx, c.keys.Meta(JoinPath(dirPath, child)))
	}
	_, err = pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("readdir meta: %w", err)
	}

	entries := make([]DirEntry, 0, len(children))
	for i, child := range children {
		m, _ := cmds[i].Result()
		entries = append(entries, DirEntry{
			Name: child,
			Meta: MetaFromMap(m),
		})
	}
	return entries, nil
}

// --- Mkdir ---

// Mkdir creates a directory. If parents is true, creates intermediate directories.
func (c *Client) Mkdir(ctx context.Context, path string, parents bool) error {
	path = NormalizePath(path)
	if path == "/" {
		return nil
	}

	if parents {
		return c.mkdirParents(ctx, path, true)
	}

	isDir, err := c.IsDir(ctx, ParentPath(path))
	if err != nil {
		return err
	}
	if !isDir {
		return fmt.Errorf("mkdir: cannot create directory '%s': %w", path, ErrNotFound)
	}

	exists, err := c.Exists(ctx, path)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("mkdir: cannot create directory '%s': %w", path, ErrExists)
	}

	return c.createDir(ctx, path, true)
}

// ensureDir creates path and its parents without emitting events.
func (c *Client) ensureDir(ctx context.Context, path string) error {
	return c.mkdirParents(ctx, path, false)
}

func (c *Client) mkdirParents(ctx context.Context, path string, emit bool) error {
	current := ""
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		current += "/" + part
		meta, err := c.Stat(ctx, current)
		if err != nil {
			return err
		}
		if meta != nil {
			if meta.Type != TypeDir {
				return fmt.Errorf("mkdir: '%s': %w", current, ErrNotDir)
			}
			continue
		}
		if err := c.createDir(ctx, current, emit); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) createDir(ctx context.Context, path string, emit bool) error {
	id, err := c.nextFileID(ctx)
	if err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	parent, base := SplitPath(path)
	meta := NewDirMeta(id, OwnerOf(path))

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, c.keys.Meta(path), meta.ToMap())
	pipe.SAdd(ctx, c.keys.Dir(parent), base)
	pipe.Set(ctx, c.keys.FileID(id), path, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if !emit {
		return nil
	}
	return c.emit(ctx, EventPostCreate, path)
}

// --- Touch ---

// Touch creates a file or updates timestamps. Touching an existing entry
// emits postTouch; creating one emits postCreate and postWrite.
func (c *Client) Touch(ctx context.Context, path string) error {
	path = NormalizePath(path)
	exists, err := c.Exists(ctx, path)
	if err != nil {
		return err
	}

	if exists {
		now := strconv.FormatInt(time.Now().Unix(), 10)
		if err := c.rdb.HSet(ctx, c.keys.Meta(path), "mtime", now, "atime", now).Err(); err != nil {
			return fmt.Errorf("touch: %w", err)
		}
		return c.emit(ctx, EventPostTouch, path)
	}

	if err := c.createFile(ctx, path, "", "touch"); err != nil {
		return err
	}
	return c.emitCreated(ctx, path)
}

func (c *Client) createFile(ctx context.Context, path, content, op string) error {
	parent, base := SplitPath(path)
	isDir, err := c.IsDir(ctx, parent)
	if err != nil {
		return err
	}
	if !isDir {
		return fmt.Errorf("%s: cannot create '%s': %w", op, path, ErrNotFound)
	}

	id, err := c.nextFileID(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	meta := NewFileMeta(id, OwnerOf(path), int64(len(content)))

	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, c.keys.Data(path), content, 0)
	pipe.HSet(ctx, c.keys.Meta(path), meta.ToMap())
	pipe.SAdd(ctx, c.keys.Dir(parent), base)
	pipe.Set(ctx, c.keys.FileID(id), path, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// --- ReadFile ---

// ReadFile returns the content of a file.
func (c *Client) ReadFile(ctx context.Context, path string) (string, error) {
	path = NormalizePath(path)

	meta, err := c.Stat(ctx, path)
	if err != nil {
		return "", err
	}
	if meta == nil {
		return "", fmt.Errorf("cat: %s: %w", path, ErrNotFound)
	}
	if meta.Type == TypeDir {
		return "", fmt.Errorf("cat: %s: %w", path, ErrIsDir)
	}

	data, err := c.rdb.Get(ctx, c.keys.Data(path)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("cat: %w", err)
	}

	now := strconv.FormatInt(time.Now().Unix(), 10)
	c.rdb.HSet(ctx, c.keys.Meta(path), "atime", now)

	return data, nil
}

// --- WriteFile / AppendFile ---

// WriteFile sets file content (truncate/overwrite). The previous content is
// kept as a version.
func (c *Client) WriteFile(ctx context.Context, path, content string) error {
	path = NormalizePath(path)

	meta, err := c.Stat(ctx, path)
	if err != nil {
		return err
	}
	if meta == nil {
		if err := c.createFile(ctx, path, content, "echo"); err != nil {
			return err
		}
		return c.emitCreated(ctx, path)
	}
	if meta.Type == TypeDir {
		return fmt.Errorf("echo: %s: %w", path, ErrIsDir)
	}

	old, err := c.rdb.Get(ctx, c.keys.Data(path)).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("echo: %w", err)
	}
	return c.overwrite(ctx, path, meta, old, content)
}

// AppendFile appends content to a file, creating it if needed.
func (c *Client) AppendFile(ctx context.Context, path, content string) error {
	path = NormalizePath(path)

	meta, err := c.Stat(ctx, path)
	if err != nil {
		return err
	}
	if meta == nil {
		return c.WriteFile(ctx, path, content)
	}
	if meta.Type == TypeDir {
		return fmt.Errorf("echo: %s: %w", path, ErrIsDir)
	}

	old, err := c.rdb.Get(ctx, c.keys.Data(path)).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("echo: %w", err)
	}
	return c.overwrite(ctx, path, meta, old, old+content)
}

func (c *Client) overwrite(ctx context.Context, path string, meta *Metadata, old, content string) error {
	version, err := encodeVersion(Version{MTime: meta.MTime, Content: old})
	if err != nil {
		return fmt.Errorf("echo: %w", err)
	}
	now := strconv.FormatInt(time.Now().Unix(), 10)

	pipe := c.rdb.TxPipeline()
	pipe.LPush(ctx, c.keys.Versions(path), version)
	pipe.LTrim(ctx, c.keys.Versions(path), 0, maxVersions-1)
	pipe.Set(ctx, c.keys.Data(path), content, 0)
	pipe.HSet(ctx, c.keys.Meta(path), "size", strconv.Itoa(len(content)), "mtime", now)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("echo: %w", err)
	}
	return c.emit(ctx, EventPostWrite, path)
}

// --- Delete ---

// Delete removes a file or, when recursive is set, a directory tree.
// preDelete is emitted while the node is still resolvable; a listener error
// aborts the delete. Entries inside a user's files root go to that user's
// trash; anything else is removed permanently.
func (c *Client) Delete(ctx context.Context, path string, recursive bool) error {
	path = NormalizePath(path)
	if isProtected(path) {
		return fmt.Errorf("rm: cannot remove '%s': %w", path, ErrPermission)
	}

	node, err := c.Get(ctx, path)
	if err != nil {
		return fmt.Errorf("rm: cannot remove '%s': %w", path, err)
	}
	if node.IsFolder() && !recursive {
		return fmt.Errorf("rm: cannot remove '%s': %w", path, ErrIsDir)
	}

	if err := c.events.EmitNode(ctx, ScopeFiles, EventPreDelete, node); err != nil {
		return err
	}

	if _, inHome := RelativeToHome(node.Owner, path); inHome {
		if err := c.moveToTrash(ctx, node); err != nil {
			return err
		}
	} else {
		if err := c.removeTree(ctx, path); err != nil {
			return err
		}
		if parent, name := SplitPath(path); parent == UserTrash(node.Owner) {
			if err := c.rdb.HDel(ctx, c.keys.Trash(node.Owner), name).Err(); err != nil {
				return fmt.Errorf("rm: %w", err)
			}
		}
	}

	return c.events.EmitNode(ctx, ScopeFiles, EventPostDelete, node)
}

// isProtected reports whether path is a structural directory: the root, a
// user directory, or a user's files and trash roots.
func isProtected(path string) bool {
	if path == "/" || ParentPath(path) == "/" {
		return true
	}
	owner := OwnerOf(path)
	return path == UserHome(owner) || path == JoinPath(owner, trashDir) || path == UserTrash(owner)
}

// subtree lists root and everything below it, parents before children.
func (c *Client) subtree(ctx context.Context, root string) ([]string, error) {
	paths := []string{root}
	isDir, err := c.IsDir(ctx, root)
	if err != nil {
		return nil, err
	}
	if !isDir {
		return paths, nil
	}
	children, err := c.ReadDir(ctx, root)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		sub, err := c.subtree(ctx, JoinPath(root, child))
		if err != nil {
			return nil, err
		}
		paths = append(paths, sub...)
	}
	return paths, nil
}

// moveTree renames every key of the src subtree to dst. File ids are kept.
// No events are emitted.
func (c *Client) moveTree(ctx context.Context, src, dst string) error {
	paths, err := c.subtree(ctx, src)
	if err != nil {
		return err
	}

	for _, p := range paths {
		target := dst + strings.TrimPrefix(p, src)
		meta, err := c.Stat(ctx, p)
		if err != nil {
			return err
		}
		if meta == nil {
			continue
		}
		optional, err := c.existingKeys(ctx, c.keys.Dir(p), c.keys.Versions(p))
		if err != nil {
			return err
		}

		pipe := c.rdb.TxPipeline()
		pipe.Rename(ctx, c.keys.Meta(p), c.keys.Meta(target))
		if meta.Type == TypeFile {
			pipe.Rename(ctx, c.keys.Data(p), c.keys.Data(target))
		}
		if optional[0] {
			pipe.Rename(ctx, c.keys.Dir(p), c.keys.Dir(target))
		}
		if optional[1] {
			pipe.Rename(ctx, c.keys.Versions(p), c.keys.Versions(target))
		}
		pipe.Set(ctx, c.keys.FileID(meta.FileID), target, 0)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("move %s: %w", p, err)
		}
	}

	srcParent, srcBase := SplitPath(src)
	dstParent, dstBase := SplitPath(dst)
	pipe := c.rdb.TxPipeline()
	pipe.SRem(ctx, c.keys.Dir(srcParent), srcBase)
	pipe.SAdd(ctx, c.keys.Dir(dstParent), dstBase)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("move %s: %w", src, err)
	}
	return nil
}

func (c *Client) existingKeys(ctx context.Context, keys ...string) ([]bool, error) {
	pipe := c.rdb.Pipeline()
	cmds := make([]*redis.IntCmd, len(keys))
	for i, k := range keys {
		cmds[i] = pipe.Exists(ctx, k)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	found := make([]bool, len(keys))
	for i, cmd := range cmds {
		found[i] = cmd.Val() > 0
	}
	return found, nil
}

// removeTree permanently deletes path and everything below it without events.
func (c *Client) removeTree(ctx context.Context, path string) error {
	paths, err := c.subtree(ctx, path)
	if err != nil {
		return err
	}

	pipe := c.rdb.TxPipeline()
	for _, p := range paths {
		meta, err := c.Stat(ctx, p)
		if err != nil {
			return err
		}
		if meta != nil {
			pipe.Del(ctx, c.keys.FileID(meta.FileID))
		}
		pipe.Del(ctx, c.keys.Meta(p), c.keys.Data(p), c.keys.Dir(p), c.keys.Versions(p))
	}
	parent, base := SplitPath(path)
	pipe.SRem(ctx, c.keys.Dir(parent), base)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	return nil
}

// --- Walk ---

// WalkFunc is called for every node visited by Walk.
type WalkFunc func(node *Node) error

// Walk visits root and every node below it, parents first, children in name order.
func (c *Client) Walk(ctx context.Context, root string, fn WalkFunc) error {
	root = NormalizePath(root)
	meta, err := c.Stat(ctx, root)
	if err != nil {
		return err
	}
	if meta == nil {
		return fmt.Errorf("walk: %s: %w", root, ErrNotFound)
	}
	mounts, err := c.Mounts(ctx)
	if err != nil {
		return err
	}
	return c.walk(ctx, root, meta, mounts, fn)
}

func (c *Client) walk(ctx context.Context, path string, meta *Metadata, mounts map[string]StorageKind, fn WalkFunc) error {
	if err := fn(newNode(path, meta, mounts)); err != nil {
		return err
	}
	if meta.Type != TypeDir {
		return nil
	}
	children, err := c.ReadDir(ctx, path)
	if err != nil {
		return err
	}
	for _, child := range children {
		childPath := JoinPath(path, child)
		childMeta, err := c.Stat(ctx, childPath)
		if err != nil {
			return err
		}
		if childMeta == nil {
			continue
		}
		if err := c.walk(ctx, childPath, childMeta, mounts, fn); err != nil {
			return err
		}
	}
	return nil
}

// --- Tree ---

// TreeEntry represents a node in a tree listing.
type TreeEntry struct {
	Name     string
	Path     string
	Type     EntryType
	Children []TreeEntry
}

// Tree builds a tree structure for a path.
func (c *Client) Tree(ctx context.Context, root string, maxDepth int) (*TreeEntry, int, int, error) {
	root = NormalizePath(root)
	meta, err := c.Stat(ctx, root)
	if err != nil {
		return nil, 0, 0, err
	}
	if meta == nil {
		return nil, 0, 0, fmt.Errorf("tree: '%s': %w", root, ErrNotFound)
	}

	entry := &TreeEntry{
		Name: BaseName(root),
		Path: root,
		Type: meta.Type,
	}

	dirCount, fileCount := 0, 0
	if meta.Type == TypeDir {
		if err := c.buildTree(ctx, root, entry, 1, maxDepth, &dirCount, &fileCount); err != nil {
			return nil, 0, 0, err
		}
	} else {
		fileCount = 1
	}

	return entry, dirCount, fileCount, nil
}

func (c *Client) buildTree(ctx context.Context, path string, entry *TreeEntry, depth, maxDepth int, dirCount, fileCount *int) error {
	if maxDepth > 0 && depth > maxDepth {
		return nil
	}

	children, err := c.ReadDirWithMeta(ctx, path)
	if err != nil {
		return err
	}

	for _, child := range children {
		if child.Meta == nil {
			continue
		}
		childEntry := TreeEntry{
			Name: child.Name,
			Path: JoinPath(path, child.Name),
			Type: child.Meta.Type,
		}

		if child.Meta.Type == TypeDir {
			*dirCount++
			if err := c.buildTree(ctx, childEntry.Path, &childEntry, depth+1, maxDepth, dirCount, fileCount); err != nil {
				return err
			}
		} else {
			*fileCount++
		}

		entry.Children = append(entry.Children, childEntry)
	}
	return nil
}

// --- Event helpers ---

func (c *Client) emit(ctx context.Context, event, path string) error {
	node, err := c.Get(ctx, path)
	if err != nil {
		return err
	}
	return c.events.EmitNode(ctx, ScopeFiles, event, node)
}

func (c *Client) emitCreated(ctx context.Context, path string) error {
	if err := c.emit(ctx, EventPostCreate, path); err != nil {
		return err
	}
	return c.emit(ctx, EventPostWrite, path)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
