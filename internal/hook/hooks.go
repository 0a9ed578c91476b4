// Package hook routes filesystem lifecycle events to the photo index.
//
// FileHooks subscribes to five host events: file write, pre-delete, touch,
// trash restore and share/unshare. For each it decides whether the affected
// node belongs to the owning user's home storage and, if so, calls exactly
// one sequence of Indexer operations. Handlers run synchronously on the
// goroutine that fired the event and return indexer errors unchanged.
package hook

import (
	"context"
	"errors"
	"fmt"

	"github.com/gary-kim/maps/internal/fs"
	"github.com/gary-kim/maps/internal/metrics"
	"github.com/gary-kim/maps/internal/share"
	"go.uber.org/zap"
)

// ErrMalformedParams is returned when a hook payload lacks a required key or
// carries it with the wrong type.
var ErrMalformedParams = errors.New("malformed hook parameters")

// Indexer is the photo indexing service the hooks dispatch to.
type Indexer interface {
	AddByFile(ctx context.Context, node *fs.Node) error
	SafeAddByFile(ctx context.Context, node *fs.Node) error
	AddByFolder(ctx context.Context, folder *fs.Node) error
	DeleteByFile(ctx context.Context, node *fs.Node) error
	DeleteByFolder(ctx context.Context, folder *fs.Node) error
	SafeAddByFileIDUserID(ctx context.Context, fileID int64, uid string) error
	DeleteByFileIDUserID(ctx context.Context, fileID int64, uid string) error
}

// Resolver looks nodes up by absolute path.
type Resolver interface {
	Get(ctx context.Context, path string) (*fs.Node, error)
}

// Subscriber is the event registry the hooks attach to.
type Subscriber interface {
	Listen(scope, event string, fn fs.NodeListener)
	ConnectHook(class, name string, fn fs.HookListener)
}

// OwnershipFunc reports whether a node may be indexed for its owner.
type OwnershipFunc func(node *fs.Node) bool

// IsHomeNode reports whether node lives on its owner's home storage.
func IsHomeNode(node *fs.Node) bool {
	return node.InstanceOfStorage(fs.StorageHome)
}

// Option configures FileHooks.
type Option func(*FileHooks)

// WithOwnership replaces the default IsHomeNode predicate.
func WithOwnership(fn OwnershipFunc) Option {
	return func(h *FileHooks) {
		h.owned = fn
	}
}

// FileHooks connects host events to an Indexer.
type FileHooks struct {
	root    Resolver
	indexer Indexer
	owned   OwnershipFunc
	logger  *zap.Logger
}

// NewFileHooks creates the router. root resolves restored paths.
func NewFileHooks(root Resolver, indexer Indexer, logger *zap.Logger, opts ...Option) *FileHooks {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &FileHooks{
		root:    root,
		indexer: indexer,
		owned:   IsHomeNode,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register subscribes every handler. Call it once at startup.
func (h *FileHooks) Register(sub Subscriber) {
	sub.Listen(fs.ScopeFiles, fs.EventPostWrite, h.OnPostWrite)
	sub.Listen(fs.ScopeFiles, fs.EventPreDelete, h.OnPreDelete)
	sub.Listen(fs.ScopeFiles, fs.EventPostTouch, h.OnPostTouch)
	sub.ConnectHook(fs.HookTrashbin, fs.HookPostRestore, h.OnPostRestore)
	sub.ConnectHook(share.HookClass, share.HookPostShared, h.OnPostShare)
	sub.ConnectHook(share.HookClass, share.HookPostUnshare, h.OnPostUnshare)
}

// OnPostWrite indexes a written file if it is not already indexed.
func (h *FileHooks) OnPostWrite(ctx context.Context, node *fs.Node) error {
	if !h.accept(fs.EventPostWrite, node) {
		return nil
	}
	return h.record(fs.EventPostWrite, h.indexer.SafeAddByFile(ctx, node))
}

// OnPreDelete drops a node's entries while it is still resolvable.
func (h *FileHooks) OnPreDelete(ctx context.Context, node *fs.Node) error {
	if !h.accept(fs.EventPreDelete, node) {
		return nil
	}
	if node.IsFolder() {
		return h.record(fs.EventPreDelete, h.indexer.DeleteByFolder(ctx, node))
	}
	return h.record(fs.EventPreDelete, h.indexer.DeleteByFile(ctx, node))
}

// OnPostTouch re-indexes a touched node from scratch.
func (h *FileHooks) OnPostTouch(ctx context.Context, node *fs.Node) error {
	if !h.accept(fs.EventPostTouch, node) {
		return nil
	}
	if err := h.indexer.DeleteByFile(ctx, node); err != nil {
		return h.record(fs.EventPostTouch, err)
	}
	return h.record(fs.EventPostTouch, h.indexer.AddByFile(ctx, node))
}

// OnPostRestore indexes a node the acting user restored from the trash.
// params["filePath"] is relative to the user's files directory.
func (h *FileHooks) OnPostRestore(ctx context.Context, params fs.Params) error {
	const event = fs.HookPostRestore

	rel, ok := params.String("filePath")
	if !ok {
		return h.record(event, fmt.Errorf("%s: filePath: %w", event, ErrMalformedParams))
	}
	uid, ok := fs.UserFromContext(ctx)
	if !ok {
		return h.record(event, fmt.Errorf("%s: %w", event, fs.ErrNoUser))
	}

	node, err := h.root.Get(ctx, fs.UserFilesPath(uid, rel))
	if err != nil {
		return h.record(event, fmt.Errorf("%s: %w", event, err))
	}
	if !h.accept(event, node) {
		return nil
	}
	if node.IsFolder() {
		return h.record(event, h.indexer.AddByFolder(ctx, node))
	}
	return h.record(event, h.indexer.AddByFile(ctx, node))
}

// OnPostShare makes a file shared with a single user visible to them.
func (h *FileHooks) OnPostShare(ctx context.Context, params fs.Params) error {
	const event = share.HookPostShared

	fileID, uid, ok, err := userShare(params)
	if err != nil {
		return h.record(event, fmt.Errorf("%s: %w", event, err))
	}
	if !ok {
		h.skip(event, zap.Any("shareType", params["shareType"]))
		return nil
	}
	h.logger.Debug("share indexed", zap.Int64("fileid", fileID), zap.String("user", uid))
	return h.record(event, h.indexer.SafeAddByFileIDUserID(ctx, fileID, uid))
}

// OnPostUnshare hides a file from the single user it was shared with.
func (h *FileHooks) OnPostUnshare(ctx context.Context, params fs.Params) error {
	const event = share.HookPostUnshare

	fileID, uid, ok, err := userShare(params)
	if err != nil {
		return h.record(event, fmt.Errorf("%s: %w", event, err))
	}
	if !ok {
		h.skip(event, zap.Any("shareType", params["shareType"]))
		return nil
	}
	h.logger.Debug("share unindexed", zap.Int64("fileid", fileID), zap.String("user", uid))
	return h.record(event, h.indexer.DeleteByFileIDUserID(ctx, fileID, uid))
}

// userShare extracts the file id and recipient of a user share. ok is false
// for every other share type.
func userShare(params fs.Params) (fileID int64, uid string, ok bool, err error) {
	t, found := params.Int64("shareType")
	if !found {
		return 0, "", false, fmt.Errorf("shareType: %w", ErrMalformedParams)
	}
	if share.Type(t) != share.TypeUser {
		return 0, "", false, nil
	}
	if fileID, found = params.Int64("fileSource"); !found {
		return 0, "", false, fmt.Errorf("fileSource: %w", ErrMalformedParams)
	}
	if uid, found = params.String("shareWith"); !found || uid == "" {
		return 0, "", false, fmt.Errorf("shareWith: %w", ErrMalformedParams)
	}
	return fileID, uid, true, nil
}

func (h *FileHooks) accept(event string, node *fs.Node) bool {
	if h.owned(node) {
		h.logger.Debug("dispatching",
			zap.String("event", event),
			zap.String("path", node.Path),
			zap.Bool("folder", node.IsFolder()),
		)
		return true
	}
	h.skip(event, zap.String("path", node.Path), zap.String("storage", string(node.Storage)))
	return false
}

func (h *FileHooks) skip(event string, fields ...zap.Field) {
	metrics.RecordHookEvent(event, metrics.OutcomeSkipped)
	h.logger.Debug("skipped", append([]zap.Field{zap.String("event", event)}, fields...)...)
}

// record counts the outcome of a dispatched event and passes err through.
func (h *FileHooks) record(event string, err error) error {
	if err != nil {
		metrics.RecordHookEvent(event, metrics.OutcomeError)
		return err
	}
	metrics.RecordHookEvent(event, metrics.OutcomeDispatched)
	return nil
}
