package photos

import (
	"context"
	"testing"

	"github.com/gary-kim/maps/internal/fs"
	"github.com/gary-kim/maps/internal/hook"
	"github.com/gary-kim/maps/internal/share"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHookedLifecycle drives the index purely through filesystem and share
// operations with the file hooks registered.
func TestHookedLifecycle(t *testing.T) {
	s, c := newTestService(t)
	shares := share.NewManager(c.Redis(), "test", c, c.Events())
	s.coverage = shares
	hook.NewFileHooks(c, s, nil).Register(c.Events())
	ctx := fs.ContextWithUser(context.Background(), "alice")

	require.NoError(t, c.Mkdir(ctx, "/alice/files/Photos", false))
	require.NoError(t, c.WriteFile(ctx, "/alice/files/Photos/a.jpg", "1"))
	require.NoError(t, c.WriteFile(ctx, "/alice/files/Photos/a.jpg", "22"))
	require.NoError(t, c.Touch(ctx, "/alice/files/Photos/a.jpg"))
	require.NoError(t, c.WriteFile(ctx, "/alice/files/notes.txt", "x"))
	assert.Equal(t, []string{"/alice/files/Photos/a.jpg"}, paths(t, s, "alice"))

	// external storage is never indexed
	require.NoError(t, c.Mount(ctx, "/alice/files/ext", fs.StorageExternal))
	require.NoError(t, c.WriteFile(ctx, "/alice/files/ext/b.jpg", "x"))
	assert.Equal(t, []string{"/alice/files/Photos/a.jpg"}, paths(t, s, "alice"))

	// user shares reach the recipient, group shares do not
	sh, err := shares.Share(ctx, "/alice/files/Photos", share.TypeUser, "bob")
	require.NoError(t, err)
	_, err = shares.Share(ctx, "/alice/files/Photos", share.TypeGroup, "staff")
	require.NoError(t, err)
	assert.Equal(t, []string{"/alice/files/Photos/a.jpg"}, paths(t, s, "bob"))
	require.NoError(t, shares.Unshare(ctx, sh.ID))
	assert.Empty(t, paths(t, s, "bob"))

	// a file shared on its own survives unsharing its folder
	folderShare, err := shares.Share(ctx, "/alice/files/Photos", share.TypeUser, "bob")
	require.NoError(t, err)
	fileShare, err := shares.Share(ctx, "/alice/files/Photos/a.jpg", share.TypeUser, "bob")
	require.NoError(t, err)
	require.NoError(t, shares.Unshare(ctx, folderShare.ID))
	assert.Equal(t, []string{"/alice/files/Photos/a.jpg"}, paths(t, s, "bob"))
	require.NoError(t, shares.Unshare(ctx, fileShare.ID))
	assert.Empty(t, paths(t, s, "bob"))

	// the user directory and the trash cannot be shared
	_, err = shares.Share(ctx, "/alice", share.TypeUser, "bob")
	assert.ErrorIs(t, err, fs.ErrPermission)

	// delete then restore the folder
	require.NoError(t, c.Delete(ctx, "/alice/files/Photos", true))
	assert.Empty(t, paths(t, s, "alice"))

	trash, err := c.ListTrash(ctx)
	require.NoError(t, err)
	require.Len(t, trash, 1)
	_, err = c.RestoreFromTrash(ctx, trash[0].Name)
	require.NoError(t, err)
	assert.Equal(t, []string{"/alice/files/Photos/a.jpg"}, paths(t, s, "alice"))

	// rolling back a version re-indexes the file with its old size
	require.NoError(t, c.RestoreVersion(ctx, "/alice/files/Photos/a.jpg", 0))
	list, err := s.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].Size)
}
