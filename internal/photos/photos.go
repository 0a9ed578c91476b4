// Package photos keeps a per-user index of image files. It is the indexing
// service the file hooks dispatch to; it reads node metadata from the host
// filesystem and never parses image content.
package photos

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gary-kim/maps/internal/fs"
	"github.com/gary-kim/maps/internal/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// imageExtensions are file extensions treated as photos.
var imageExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tiff", ".tif",
	".heic", ".heif", ".avif",
	// RAW formats
	".cr2", ".cr3", ".nef", ".arw", ".dng", ".orf", ".rw2", ".pef", ".srw", ".raf",
}

// IsImageFile checks if a file path has an image extension.
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range imageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func isPhoto(n *fs.Node) bool {
	return !n.IsFolder() && IsImageFile(n.Path)
}

// indexable reports whether a walked or shared node belongs in the index.
// Mounted storage is never indexed.
func indexable(n *fs.Node) bool {
	return isPhoto(n) && n.InstanceOfStorage(fs.StorageHome)
}

// Tree is the part of the host filesystem the index reads.
type Tree interface {
	Get(ctx context.Context, path string) (*fs.Node, error)
	GetByID(ctx context.Context, id int64) (*fs.Node, error)
	Walk(ctx context.Context, root string, fn fs.WalkFunc) error
}

// Photo is one index entry, visible to User.
type Photo struct {
	FileID int64
	Path   string
	Owner  string
	User   string
	MTime  int64
	Size   int64
}

func (p *Photo) toMap() map[string]interface{} {
	return map[string]interface{}{
		"fileid": strconv.FormatInt(p.FileID, 10),
		"path":   p.Path,
		"owner":  p.Owner,
		"mtime":  strconv.FormatInt(p.MTime, 10),
		"size":   strconv.FormatInt(p.Size, 10),
	}
}

func photoFromMap(user string, m map[string]string) *Photo {
	id, _ := strconv.ParseInt(m["fileid"], 10, 64)
	mtime, _ := strconv.ParseInt(m["mtime"], 10, 64)
	size, _ := strconv.ParseInt(m["size"], 10, 64)
	return &Photo{
		FileID: id,
		Path:   m["path"],
		Owner:  m["owner"],
		User:   user,
		MTime:  mtime,
		Size:   size,
	}
}

func photoFromNode(user string, n *fs.Node) *Photo {
	return &Photo{
		FileID: n.FileID,
		Path:   n.Path,
		Owner:  n.Owner,
		User:   user,
		MTime:  n.MTime,
		Size:   n.Size,
	}
}

// Coverage reports whether uid still reaches node through a share.
type Coverage interface {
	Covers(ctx context.Context, uid string, node *fs.Node) (bool, error)
}

// Service maintains the photo index in Redis.
type Service struct {
	rdb      *redis.Client
	volume   string
	tree     Tree
	coverage Coverage
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCoverage keeps a user's entries on unshare while another share
// still grants them the file.
func WithCoverage(c Coverage) Option {
	return func(s *Service) {
		s.coverage = c
	}
}

// NewService creates a photo index for the given volume.
func NewService(rdb *redis.Client, volume string, tree Tree, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		rdb:    rdb,
		volume: volume,
		tree:   tree,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// entryKey holds one user's entry for a file.
// e.g., maps:main:photo:alice:42
func (s *Service) entryKey(uid string, id int64) string {
	return fmt.Sprintf("maps:%s:photo:%s:%d", s.volume, uid, id)
}

// userKey is the set of file ids indexed for a user.
func (s *Service) userKey(uid string) string {
	return fmt.Sprintf("maps:%s:photos:%s", s.volume, uid)
}

// holdersKey is the set of users holding an entry for a file id.
func (s *Service) holdersKey(id int64) string {
	return fmt.Sprintf("maps:%s:photo-users:%d", s.volume, id)
}

// --- Add ---

// AddByFile indexes a photo for its owner, overwriting any existing entry.
func (s *Service) AddByFile(ctx context.Context, node *fs.Node) error {
	metrics.RecordIndexOp("add_by_file")
	if !isPhoto(node) {
		return nil
	}
	return s.put(ctx, photoFromNode(node.Owner, node))
}

// SafeAddByFile indexes a photo for its owner unless an entry already
// exists, in which case only its path, size and mtime are refreshed.
func (s *Service) SafeAddByFile(ctx context.Context, node *fs.Node) error {
	metrics.RecordIndexOp("safe_add_by_file")
	if !isPhoto(node) {
		return nil
	}
	return s.putIfMissing(ctx, photoFromNode(node.Owner, node))
}

// AddByFolder indexes every home-storage photo below folder for its owner.
func (s *Service) AddByFolder(ctx context.Context, folder *fs.Node) error {
	metrics.RecordIndexOp("add_by_folder")
	return s.tree.Walk(ctx, folder.Path, func(n *fs.Node) error {
		if !indexable(n) {
			return nil
		}
		return s.put(ctx, photoFromNode(n.Owner, n))
	})
}

// SafeAddByFileIDUserID makes a shared file, or every photo of a shared
// folder, visible to uid.
func (s *Service) SafeAddByFileIDUserID(ctx context.Context, fileID int64, uid string) error {
	metrics.RecordIndexOp("safe_add_for_user")
	node, err := s.tree.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if !node.IsFolder() {
		if !indexable(node) {
			return nil
		}
		return s.putIfMissing(ctx, photoFromNode(uid, node))
	}
	return s.tree.Walk(ctx, node.Path, func(n *fs.Node) error {
		if !indexable(n) {
			return nil
		}
		return s.putIfMissing(ctx, photoFromNode(uid, n))
	})
}

// Rescan indexes every photo in uid's files.
func (s *Service) Rescan(ctx context.Context, uid string) error {
	home, err := s.tree.Get(ctx, fs.UserHome(uid))
	if err != nil {
		return fmt.Errorf("rescan: %w", err)
	}
	return s.AddByFolder(ctx, home)
}

func (s *Service) put(ctx context.Context, p *Photo) error {
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, s.entryKey(p.User, p.FileID), p.toMap())
	pipe.SAdd(ctx, s.userKey(p.User), p.FileID)
	pipe.SAdd(ctx, s.holdersKey(p.FileID), p.User)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("index %s: %w", p.Path, err)
	}
	metrics.RecordEntriesAdded(1)
	s.logger.Debug("photo indexed",
		zap.String("user", p.User),
		zap.String("path", p.Path),
		zap.Int64("fileid", p.FileID),
	)
	return nil
}

func (s *Service) putIfMissing(ctx context.Context, p *Photo) error {
	key := s.entryKey(p.User, p.FileID)
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("index %s: %w", p.Path, err)
	}
	if n == 0 {
		return s.put(ctx, p)
	}
	err = s.rdb.HSet(ctx, key,
		"path", p.Path,
		"mtime", strconv.FormatInt(p.MTime, 10),
		"size", strconv.FormatInt(p.Size, 10),
	).Err()
	if err != nil {
		return fmt.Errorf("index %s: %w", p.Path, err)
	}
	return nil
}

// --- Delete ---

// DeleteByFile removes a file's entries for every user holding one.
func (s *Service) DeleteByFile(ctx context.Context, node *fs.Node) error {
	metrics.RecordIndexOp("delete_by_file")
	return s.removeFileIDs(ctx, []int64{node.FileID})
}

// DeleteByFolder removes every entry whose path lies under folder, for the
// folder's owner and everyone the files were shared with.
func (s *Service) DeleteByFolder(ctx context.Context, folder *fs.Node) error {
	metrics.RecordIndexOp("delete_by_folder")
	photos, err := s.List(ctx, folder.Owner)
	if err != nil {
		return err
	}
	var ids []int64
	for _, p := range photos {
		if fs.IsUnder(p.Path, folder.Path) {
			ids = append(ids, p.FileID)
		}
	}
	return s.removeFileIDs(ctx, ids)
}

// DeleteByFileIDUserID hides a file, or every photo of a folder, from uid.
// A file id that no longer resolves still has uid's entry removed. Files
// uid still receives through another share keep their entries.
func (s *Service) DeleteByFileIDUserID(ctx context.Context, fileID int64, uid string) error {
	metrics.RecordIndexOp("delete_for_user")
	node, err := s.tree.GetByID(ctx, fileID)
	if fs.IsNotFound(err) {
		return s.removeFor(ctx, uid, []int64{fileID})
	}
	if err != nil {
		return err
	}

	var ids []int64
	err = s.tree.Walk(ctx, node.Path, func(n *fs.Node) error {
		if n.IsFolder() {
			return nil
		}
		covered, err := s.covered(ctx, uid, n)
		if err != nil || covered {
			return err
		}
		ids = append(ids, n.FileID)
		return nil
	})
	if err != nil {
		return err
	}
	return s.removeFor(ctx, uid, ids)
}

func (s *Service) covered(ctx context.Context, uid string, n *fs.Node) (bool, error) {
	if s.coverage == nil {
		return false, nil
	}
	return s.coverage.Covers(ctx, uid, n)
}

func (s *Service) removeFileIDs(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		users, err := s.rdb.SMembers(ctx, s.holdersKey(id)).Result()
		if err != nil {
			return fmt.Errorf("unindex %d: %w", id, err)
		}
		if err := s.removeFor(ctx, "", []int64{id}, users...); err != nil {
			return err
		}
	}
	return nil
}

// removeFor deletes the entries of ids for uid and any extra users.
func (s *Service) removeFor(ctx context.Context, uid string, ids []int64, extra ...string) error {
	users := extra
	if uid != "" {
		users = append([]string{uid}, extra...)
	}
	if len(users) == 0 || len(ids) == 0 {
		return nil
	}

	pipe := s.rdb.TxPipeline()
	dels := make([]*redis.IntCmd, 0, len(ids)*len(users))
	for _, id := range ids {
		for _, u := range users {
			dels = append(dels, pipe.Del(ctx, s.entryKey(u, id)))
			pipe.SRem(ctx, s.userKey(u), id)
			pipe.SRem(ctx, s.holdersKey(id), u)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("unindex: %w", err)
	}

	removed := 0
	for _, cmd := range dels {
		removed += int(cmd.Val())
	}
	metrics.RecordEntriesRemoved(removed)
	s.logger.Debug("photos unindexed", zap.Strings("users", users), zap.Int("entries", removed))
	return nil
}

// --- Query ---

// List returns the photos visible to uid, ordered by path.
func (s *Service) List(ctx context.Context, uid string) ([]*Photo, error) {
	members, err := s.rdb.SMembers(ctx, s.userKey(uid)).Result()
	if err != nil {
		return nil, fmt.Errorf("photos: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		cmds = append(cmds, pipe.HGetAll(ctx, s.entryKey(uid, id)))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("photos: %w", err)
	}

	photos := make([]*Photo, 0, len(cmds))
	for _, cmd := range cmds {
		m, _ := cmd.Result()
		if len(m) == 0 {
			continue
		}
		photos = append(photos, photoFromMap(uid, m))
	}
	sort.Slice(photos, func(i, j int) bool {
		return photos[i].Path < photos[j].Path
	})
	return photos, nil
}
