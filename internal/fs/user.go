package fs

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

type userKey struct{}

// ContextWithUser returns a context carrying the acting user.
func ContextWithUser(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userKey{}, uid)
}

// UserFromContext returns the acting user carried by ctx.
func UserFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userKey{}).(string)
	return uid, ok && uid != ""
}

func actingUser(ctx context.Context) (string, error) {
	uid, ok := UserFromContext(ctx)
	if !ok {
		return "", ErrNoUser
	}
	return uid, nil
}

// CreateUser registers a user and creates its files root.
func (c *Client) CreateUser(ctx context.Context, uid string) error {
	if uid == "" || strings.ContainsAny(uid, "/: ") {
		return fmt.Errorf("user add: invalid user id '%s'", uid)
	}
	added, err := c.rdb.SAdd(ctx, c.keys.Users(), uid).Result()
	if err != nil {
		return fmt.Errorf("user add: %w", err)
	}
	if added == 0 {
		return fmt.Errorf("user add: '%s': %w", uid, ErrExists)
	}
	if err := c.ensureDir(ctx, UserHome(uid)); err != nil {
		return fmt.Errorf("user add: %w", err)
	}
	return nil
}

// UserExists reports whether uid has been registered.
func (c *Client) UserExists(ctx context.Context, uid string) (bool, error) {
	return c.rdb.SIsMember(ctx, c.keys.Users(), uid).Result()
}

// Users returns all registered users, sorted.
func (c *Client) Users(ctx context.Context) ([]string, error) {
	users, err := c.rdb.SMembers(ctx, c.keys.Users()).Result()
	if err != nil {
		return nil, fmt.Errorf("user list: %w", err)
	}
	sort.Strings(users)
	return users, nil
}
