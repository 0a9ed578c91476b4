package fs

import (
	"context"
	"fmt"
)

// Mount declares path, inside a user's files root, as backed by storage of
// the given kind. The mountpoint directory is created if missing.
func (c *Client) Mount(ctx context.Context, path string, kind StorageKind) error {
	path = NormalizePath(path)
	if kind != StorageExternal && kind != StorageShared {
		return fmt.Errorf("mount: storage kind '%s' cannot be mounted", kind)
	}
	rel, ok := RelativeToHome(OwnerOf(path), path)
	if !ok || rel == "/" {
		return fmt.Errorf("mount: '%s' must lie inside a user's files directory", path)
	}
	if err := c.ensureDir(ctx, path); err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	if err := c.rdb.HSet(ctx, c.keys.Mounts(), path, string(kind)).Err(); err != nil {
		return fmt.Errorf("mount: %w", err)
	}
	return nil
}

// Mounts returns all mountpoints and their storage kinds.
func (c *Client) Mounts(ctx context.Context) (map[string]StorageKind, error) {
	m, err := c.rdb.HGetAll(ctx, c.keys.Mounts()).Result()
	if err != nil {
		return nil, fmt.Errorf("mounts: %w", err)
	}
	mounts := make(map[string]StorageKind, len(m))
	for mp, kind := range m {
		mounts[mp] = StorageKind(kind)
	}
	return mounts, nil
}
