package fs

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// TrashEntry is a deleted entry waiting in a user's trash.
type TrashEntry struct {
	Name         string // name inside the trash, <base>.d<unix>
	OriginalPath string // location relative to the files root
	DeletedAt    int64
	Type         EntryType
	FileID       int64
}

func (c *Client) moveToTrash(ctx context.Context, node *Node) error {
	uid := node.Owner
	rel, _ := RelativeToHome(uid, node.Path)
	trash := UserTrash(uid)
	if err := c.ensureDir(ctx, trash); err != nil {
		return fmt.Errorf("rm: %w", err)
	}

	ts := time.Now().Unix()
	name := trashName(node.Name(), ts)
	for {
		exists, err := c.Exists(ctx, JoinPath(trash, name))
		if err != nil {
			return err
		}
		if !exists {
			break
		}
		ts++
		name = trashName(node.Name(), ts)
	}

	if err := c.moveTree(ctx, node.Path, JoinPath(trash, name)); err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	if err := c.rdb.HSet(ctx, c.keys.Trash(uid), name, rel).Err(); err != nil {
		return fmt.Errorf("rm: %w", err)
	}
	return nil
}

func trashName(base string, ts int64) string {
	return fmt.Sprintf("%s.d%d", base, ts)
}

// deletedAt extracts the timestamp suffix of a trash name.
func deletedAt(name string) int64 {
	i := strings.LastIndex(name, ".d")
	if i < 0 {
		return 0
	}
	ts, _ := strconv.ParseInt(name[i+2:], 10, 64)
	return ts
}

// ListTrash returns the acting user's trash, sorted by name.
func (c *Client) ListTrash(ctx context.Context) ([]TrashEntry, error) {
	uid, err := actingUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("trash list: %w", err)
	}
	m, err := c.rdb.HGetAll(ctx, c.keys.Trash(uid)).Result()
	if err != nil {
		return nil, fmt.Errorf("trash list: %w", err)
	}

	entries := make([]TrashEntry, 0, len(m))
	for name, orig := range m {
		entry := TrashEntry{
			Name:         name,
			OriginalPath: orig,
			DeletedAt:    deletedAt(name),
		}
		meta, err := c.Stat(ctx, JoinPath(UserTrash(uid), name))
		if err != nil {
			return nil, err
		}
		if meta != nil {
			entry.Type = meta.Type
			entry.FileID = meta.FileID
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// RestoreFromTrash moves a trash entry of the acting user back to where it
// was deleted from, or to the files root when that folder no longer exists,
// and emits the trashbin post_restore hook. Returns the restored path.
func (c *Client) RestoreFromTrash(ctx context.Context, name string) (string, error) {
	uid, err := actingUser(ctx)
	if err != nil {
		return "", fmt.Errorf("trash restore: %w", err)
	}
	orig, err := c.rdb.HGet(ctx, c.keys.Trash(uid), name).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("trash restore: '%s': %w", name, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("trash restore: %w", err)
	}

	target := UserFilesPath(uid, orig)
	isDir, err := c.IsDir(ctx, ParentPath(target))
	if err != nil {
		return "", err
	}
	if !isDir {
		target = UserFilesPath(uid, BaseName(orig))
	}
	target, err = c.uniquePath(ctx, target)
	if err != nil {
		return "", err
	}

	if err := c.moveTree(ctx, JoinPath(UserTrash(uid), name), target); err != nil {
		return "", fmt.Errorf("trash restore: %w", err)
	}
	if err := c.rdb.HDel(ctx, c.keys.Trash(uid), name).Err(); err != nil {
		return "", fmt.Errorf("trash restore: %w", err)
	}

	rel, _ := RelativeToHome(uid, target)
	err = c.events.EmitHook(ctx, HookTrashbin, HookPostRestore, Params{
		"filePath":  rel,
		"trashPath": "/" + name,
	})
	return target, err
}

// uniquePath appends " (restored)" before the extension until p is free.
func (c *Client) uniquePath(ctx context.Context, p string) (string, error) {
	parent, base := SplitPath(p)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	candidate := p
	for i := 1; ; i++ {
		exists, err := c.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		suffix := " (restored)"
		if i > 1 {
			suffix = fmt.Sprintf(" (restored %d)", i)
		}
		candidate = JoinPath(parent, stem+suffix+ext)
	}
}

// PurgeTrash permanently deletes an entry from the acting user's trash.
func (c *Client) PurgeTrash(ctx context.Context, name string) error {
	uid, err := actingUser(ctx)
	if err != nil {
		return fmt.Errorf("trash purge: %w", err)
	}
	ok, err := c.rdb.HExists(ctx, c.keys.Trash(uid), name).Result()
	if err != nil {
		return fmt.Errorf("trash purge: %w", err)
	}
	if !ok {
		return fmt.Errorf("trash purge: '%s': %w", name, ErrNotFound)
	}
	if err := c.removeTree(ctx, JoinPath(UserTrash(uid), name)); err != nil {
		return err
	}
	return c.rdb.HDel(ctx, c.keys.Trash(uid), name).Err()
}
