package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const maxVersions = 50

// Version is a prior content of a file.
type Version struct {
	MTime   int64  `json:"mtime"`
	Content string `json:"content"`
}

// Size returns the length of the version's content.
func (v Version) Size() int64 {
	return int64(len(v.Content))
}

func encodeVersion(v Version) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeVersion(s string) (Version, error) {
	var v Version
	err := json.Unmarshal([]byte(s), &v)
	return v, err
}

func (c *Client) statFile(ctx context.Context, op, path string) (*Metadata, error) {
	meta, err := c.Stat(ctx, path)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, fmt.Errorf("%s: %s: %w", op, path, ErrNotFound)
	}
	if meta.Type == TypeDir {
		return nil, fmt.Errorf("%s: %s: %w", op, path, ErrIsDir)
	}
	return meta, nil
}

// ListVersions returns prior contents of a file, newest first.
func (c *Client) ListVersions(ctx context.Context, path string) ([]Version, error) {
	path = NormalizePath(path)
	if _, err := c.statFile(ctx, "versions", path); err != nil {
		return nil, err
	}
	raw, err := c.rdb.LRange(ctx, c.keys.Versions(path), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("versions: %w", err)
	}
	versions := make([]Version, 0, len(raw))
	for _, s := range raw {
		v, err := decodeVersion(s)
		if err != nil {
			return nil, fmt.Errorf("versions: %s: %w", path, err)
		}
		versions = append(versions, v)
	}
	return versions, nil
}

// RestoreVersion rolls a file back to version n (0 is the newest). The current
// content becomes the newest version. Emits postTouch, not postWrite.
func (c *Client) RestoreVersion(ctx context.Context, path string, n int) error {
	path = NormalizePath(path)
	meta, err := c.statFile(ctx, "versions restore", path)
	if err != nil {
		return err
	}

	raw, err := c.rdb.LRange(ctx, c.keys.Versions(path), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("versions restore: %w", err)
	}
	if n < 0 || n >= len(raw) {
		return fmt.Errorf("versions restore: %s has no version %d", path, n)
	}
	restored, err := decodeVersion(raw[n])
	if err != nil {
		return fmt.Errorf("versions restore: %w", err)
	}

	current, err := c.rdb.Get(ctx, c.keys.Data(path)).Result()
	if err != nil {
		return fmt.Errorf("versions restore: %w", err)
	}
	head, err := encodeVersion(Version{MTime: meta.MTime, Content: current})
	if err != nil {
		return fmt.Errorf("versions restore: %w", err)
	}

	rest := make([]interface{}, 0, len(raw))
	rest = append(rest, head)
	for i, s := range raw {
		if i != n {
			rest = append(rest, s)
		}
	}

	now := strconv.FormatInt(time.Now().Unix(), 10)
	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, c.keys.Versions(path))
	pipe.RPush(ctx, c.keys.Versions(path), rest...)
	pipe.LTrim(ctx, c.keys.Versions(path), 0, maxVersions-1)
	pipe.Set(ctx, c.keys.Data(path), restored.Content, 0)
	pipe.HSet(ctx, c.keys.Meta(path), "size", strconv.Itoa(len(restored.Content)), "mtime", now)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("versions restore: %w", err)
	}
	return c.emit(ctx, EventPostTouch, path)
}
