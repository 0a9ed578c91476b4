// Package share records shares of files between users and announces them
// as hooks on the filesystem emitter.
package share

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gary-kim/maps/internal/fs"
	"github.com/redis/go-redis/v9"
)

// Type identifies who a share targets.
type Type int

const (
	TypeUser   Type = 0
	TypeGroup  Type = 1
	TypeLink   Type = 3
	TypeEmail  Type = 4
	TypeRemote Type = 6
)

var typeNames = map[Type]string{
	TypeUser:   "user",
	TypeGroup:  "group",
	TypeLink:   "link",
	TypeEmail:  "email",
	TypeRemote: "remote",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "type(" + strconv.Itoa(int(t)) + ")"
}

// ParseType parses a share type name such as "user" or "group".
func ParseType(s string) (Type, error) {
	for t, name := range typeNames {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown share type '%s'", s)
}

// Sharing hooks.
const (
	HookClass       = "share"
	HookPostShared  = "post_shared"
	HookPostUnshare = "post_unshare"
)

// ErrNotFound is returned for unknown share ids.
var ErrNotFound = errors.New("share not found")

// Share is a file or folder shared by its owner.
type Share struct {
	ID         int64
	Type       Type
	Owner      string
	ShareWith  string
	FileSource int64
	ItemTarget string
	CreatedAt  int64
}

// Params returns the hook payload announcing the share.
func (s *Share) Params() fs.Params {
	return fs.Params{
		"id":         s.ID,
		"shareType":  int(s.Type),
		"shareWith":  s.ShareWith,
		"fileSource": s.FileSource,
		"itemTarget": s.ItemTarget,
		"uidOwner":   s.Owner,
	}
}

func (s *Share) toMap() map[string]interface{} {
	return map[string]interface{}{
		"type":        strconv.Itoa(int(s.Type)),
		"owner":       s.Owner,
		"share_with":  s.ShareWith,
		"file_source": strconv.FormatInt(s.FileSource, 10),
		"item_target": s.ItemTarget,
		"ctime":       strconv.FormatInt(s.CreatedAt, 10),
	}
}

func shareFromMap(id int64, m map[string]string) *Share {
	t, _ := strconv.Atoi(m["type"])
	src, _ := strconv.ParseInt(m["file_source"], 10, 64)
	ctime, _ := strconv.ParseInt(m["ctime"], 10, 64)
	return &Share{
		ID:         id,
		Type:       Type(t),
		Owner:      m["owner"],
		ShareWith:  m["share_with"],
		FileSource: src,
		ItemTarget: m["item_target"],
		CreatedAt:  ctime,
	}
}

// Files is the part of the host filesystem the manager needs.
type Files interface {
	Get(ctx context.Context, path string) (*fs.Node, error)
	GetByID(ctx context.Context, id int64) (*fs.Node, error)
	UserExists(ctx context.Context, uid string) (bool, error)
}

// Manager stores shares in Redis.
type Manager struct {
	rdb    *redis.Client
	volume string
	files  Files
	events *fs.Emitter
}

// NewManager creates a share manager publishing hooks on events.
func NewManager(rdb *redis.Client, volume string, files Files, events *fs.Emitter) *Manager {
	return &Manager{
		rdb:    rdb,
		volume: volume,
		files:  files,
		events: events,
	}
}

func (m *Manager) shareKey(id int64) string {
	return fmt.Sprintf("fs:%s:share:%d", m.volume, id)
}

func (m *Manager) ownerKey(owner string) string {
	return fmt.Sprintf("fs:%s:shares:%s", m.volume, owner)
}

// receivedKey is the set of user share ids targeting uid.
func (m *Manager) receivedKey(uid string) string {
	return fmt.Sprintf("fs:%s:shares-in:%s", m.volume, uid)
}

func (m *Manager) nextIDKey() string {
	return fmt.Sprintf("fs:%s:next_shareid", m.volume)
}

func actingUser(ctx context.Context, op string) (string, error) {
	uid, ok := fs.UserFromContext(ctx)
	if !ok {
		return "", fmt.Errorf("%s: %w", op, fs.ErrNoUser)
	}
	return uid, nil
}

// Share shares path, owned by the acting user, and emits post_shared.
func (m *Manager) Share(ctx context.Context, path string, t Type, shareWith string) (*Share, error) {
	owner, err := actingUser(ctx, "share")
	if err != nil {
		return nil, err
	}

	node, err := m.files.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("share: %w", err)
	}
	if node.Owner != owner {
		return nil, fmt.Errorf("share: '%s' is not owned by %s: %w", node.Path, owner, fs.ErrPermission)
	}
	// Only entries below the owner's files root are shareable. The user
	// directory, the files root and the trash are not.
	if rel, ok := fs.RelativeToHome(owner, node.Path); !ok || rel == "/" {
		return nil, fmt.Errorf("share: '%s' is outside %s: %w", node.Path, fs.UserHome(owner), fs.ErrPermission)
	}

	switch {
	case t != TypeLink && shareWith == "":
		return nil, fmt.Errorf("share: missing recipient for %s share", t)
	case t == TypeUser && shareWith == owner:
		return nil, fmt.Errorf("share: cannot share with yourself")
	case t == TypeUser:
		ok, err := m.files.UserExists(ctx, shareWith)
		if err != nil {
			return nil, fmt.Errorf("share: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("share: '%s': %w", shareWith, fs.ErrUnknownUser)
		}
	}

	id, err := m.rdb.Incr(ctx, m.nextIDKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("share: %w", err)
	}
	s := &Share{
		ID:         id,
		Type:       t,
		Owner:      owner,
		ShareWith:  shareWith,
		FileSource: node.FileID,
		ItemTarget: "/" + node.Name(),
		CreatedAt:  time.Now().Unix(),
	}

	pipe := m.rdb.TxPipeline()
	pipe.HSet(ctx, m.shareKey(id), s.toMap())
	pipe.SAdd(ctx, m.ownerKey(owner), id)
	if t == TypeUser {
		pipe.SAdd(ctx, m.receivedKey(shareWith), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("share: %w", err)
	}

	return s, m.events.EmitHook(ctx, HookClass, HookPostShared, s.Params())
}

// Unshare deletes a share of the acting user and emits post_unshare.
func (m *Manager) Unshare(ctx context.Context, id int64) error {
	owner, err := actingUser(ctx, "unshare")
	if err != nil {
		return err
	}
	s, err := m.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("unshare: %w", err)
	}
	if s.Owner != owner {
		return fmt.Errorf("unshare: share %d belongs to %s: %w", id, s.Owner, fs.ErrPermission)
	}

	pipe := m.rdb.TxPipeline()
	pipe.Del(ctx, m.shareKey(id))
	pipe.SRem(ctx, m.ownerKey(owner), id)
	if s.Type == TypeUser {
		pipe.SRem(ctx, m.receivedKey(s.ShareWith), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("unshare: %w", err)
	}

	return m.events.EmitHook(ctx, HookClass, HookPostUnshare, s.Params())
}

// Get loads a share by id.
func (m *Manager) Get(ctx context.Context, id int64) (*Share, error) {
	fields, err := m.rdb.HGetAll(ctx, m.shareKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("share %d: %w", id, ErrNotFound)
	}
	return shareFromMap(id, fields), nil
}

// List returns the acting user's shares ordered by id.
func (m *Manager) List(ctx context.Context) ([]*Share, error) {
	owner, err := actingUser(ctx, "shares")
	if err != nil {
		return nil, err
	}
	members, err := m.rdb.SMembers(ctx, m.ownerKey(owner)).Result()
	if err != nil {
		return nil, fmt.Errorf("shares: %w", err)
	}

	shares := make([]*Share, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		s, err := m.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("shares: %w", err)
		}
		shares = append(shares, s)
	}
	sort.Slice(shares, func(i, j int) bool {
		return shares[i].ID < shares[j].ID
	})
	return shares, nil
}

// Covers reports whether one of uid's received user shares is node itself
// or a folder containing it.
func (m *Manager) Covers(ctx context.Context, uid string, node *fs.Node) (bool, error) {
	members, err := m.rdb.SMembers(ctx, m.receivedKey(uid)).Result()
	if err != nil {
		return false, fmt.Errorf("shares of %s: %w", uid, err)
	}
	for _, member := range members {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		s, err := m.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("shares of %s: %w", uid, err)
		}
		if s.FileSource == node.FileID {
			return true, nil
		}
		src, err := m.files.GetByID(ctx, s.FileSource)
		if fs.IsNotFound(err) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("shares of %s: %w", uid, err)
		}
		if src.IsFolder() && fs.IsUnder(node.Path, src.Path) {
			return true, nil
		}
	}
	return false, nil
}
