package fs

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	c := NewClient(rdb, "test")
	ctx := context.Background()
	require.NoError(t, c.Init(ctx))
	require.NoError(t, c.CreateUser(ctx, "alice"))
	return c
}

func asAlice() context.Context {
	return ContextWithUser(context.Background(), "alice")
}

type event struct {
	name string
	path string
}

// recordEvents captures every node event and restore hook on c.
func recordEvents(c *Client) *[]event {
	var got []event
	for _, name := range []string{EventPostCreate, EventPostWrite, EventPostTouch, EventPreDelete, EventPostDelete} {
		name := name
		c.Events().Listen(ScopeFiles, name, func(_ context.Context, n *Node) error {
			got = append(got, event{name, n.Path})
			return nil
		})
	}
	c.Events().ConnectHook(HookTrashbin, HookPostRestore, func(_ context.Context, p Params) error {
		path, _ := p.String("filePath")
		got = append(got, event{HookPostRestore, path})
		return nil
	})
	return &got
}

func TestInitIsIdempotent(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	root, err := c.Get(ctx, "/")
	require.NoError(t, err)
	require.NoError(t, c.Init(ctx))

	again, err := c.Get(ctx, "/")
	require.NoError(t, err)
	assert.Equal(t, root.FileID, again.FileID)
	assert.Equal(t, StorageRoot, again.Storage)
}

func TestCreateUser(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	home, err := c.Get(ctx, "/alice/files")
	require.NoError(t, err)
	assert.True(t, home.IsFolder())
	assert.Equal(t, "alice", home.Owner)
	assert.True(t, home.InstanceOfStorage(StorageHome))

	assert.ErrorIs(t, c.CreateUser(ctx, "alice"), ErrExists)
	assert.Error(t, c.CreateUser(ctx, "bad/name"))

	require.NoError(t, c.CreateUser(ctx, "bob"))
	users, err := c.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, users)
}

func TestWriteEvents(t *testing.T) {
	c := newTestClient(t)
	ctx := asAlice()
	got := recordEvents(c)

	require.NoError(t, c.WriteFile(ctx, "/alice/files/a.jpg", "v1"))
	require.NoError(t, c.WriteFile(ctx, "/alice/files/a.jpg", "v2"))
	require.NoError(t, c.AppendFile(ctx, "/alice/files/a.jpg", "+"))

	assert.Equal(t, []event{
		{EventPostCreate, "/alice/files/a.jpg"},
		{EventPostWrite, "/alice/files/a.jpg"},
		{EventPostWrite, "/alice/files/a.jpg"},
		{EventPostWrite, "/alice/files/a.jpg"},
	}, *got)

	content, err := c.ReadFile(ctx, "/alice/files/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "v2+", content)
}

func TestTouchEvents(t *testing.T) {
	c := newTestClient(t)
	ctx := asAlice()
	got := recordEvents(c)

	require.NoError(t, c.Touch(ctx, "/alice/files/a.jpg"))
	require.NoError(t, c.Touch(ctx, "/alice/files/a.jpg"))

	assert.Equal(t, []event{
		{EventPostCreate, "/alice/files/a.jpg"},
		{EventPostWrite, "/alice/files/a.jpg"},
		{EventPostTouch, "/alice/files/a.jpg"},
	}, *got)
}

func TestCreateRequiresParent(t *testing.T) {
	c := newTestClient(t)
	ctx := asAlice()

	err := c.WriteFile(ctx, "/alice/files/missing/a.jpg", "x")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, c.Mkdir(ctx, "/alice/files/x/y", false), ErrNotFound)
	require.NoError(t, c.Mkdir(ctx, "/alice/files/x/y", true))
	assert.ErrorIs(t, c.Mkdir(ctx, "/alice/files/x/y", false), ErrExists)
}

func TestGetByIDFollowsMoves(t *testing.T) {
	c := newTestClient(t)
	ctx := asAlice()

	require.NoError(t, c.Mkdir(ctx, "/alice/files/Photos", false))
	require.NoError(t, c.WriteFile(ctx, "/alice/files/Photos/a.jpg", "x"))
	n, err := c.Get(ctx, "/alice/files/Photos/a.jpg")
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, "/alice/files/Photos", true))
	moved, err := c.GetByID(ctx, n.FileID)
	require.NoError(t, err)
	assert.True(t, IsUnder(moved.Path, UserTrash("alice")))

	_, err = c.GetByID(ctx, 9999)
	assert.True(t, IsNotFound(err))
}

func TestDeleteMovesToTrash(t *testing.T) {
	c := newTestClient(t)
	ctx := asAlice()
	require.NoError(t, c.WriteFile(ctx, "/alice/files/a.jpg", "x"))

	var resolvable bool
	c.Events().Listen(ScopeFiles, EventPreDelete, func(ctx context.Context, n *Node) error {
		_, err := c.Get(ctx, n.Path)
		resolvable = err == nil
		return nil
	})
	got := recordEvents(c)

	require.NoError(t, c.Delete(ctx, "/alice/files/a.jpg", false))
	assert.True(t, resolvable)
	assert.Equal(t, []event{
		{EventPreDelete, "/alice/files/a.jpg"},
		{EventPostDelete, "/alice/files/a.jpg"},
	}, *got)

	exists, err := c.Exists(ctx, "/alice/files/a.jpg")
	require.NoError(t, err)
	assert.False(t, exists)

	trash, err := c.ListTrash(ctx)
	require.NoError(t, err)
	require.Len(t, trash, 1)
	assert.Equal(t, "/a.jpg", trash[0].OriginalPath)
	assert.Equal(t, TypeFile, trash[0].Type)
}

func TestDeleteAbortedByListener(t *testing.T) {
	c := newTestClient(t)
	ctx := asAlice()
	require.NoError(t, c.WriteFile(ctx, "/alice/files/a.jpg", "x"))

	boom := errors.New("boom")
	c.Events().Listen(ScopeFiles, EventPreDelete, func(context.Context, *Node) error {
		return boom
	})

	assert.Same(t, boom, c.Delete(ctx, "/alice/files/a.jpg", false))
	exists, err := c.Exists(ctx, "/alice/files/a.jpg")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDeleteRules(t *testing.T) {
	c := newTestClient(t)
	ctx := asAlice()
	require.NoError(t, c.Mkdir(ctx, "/alice/files/Photos", false))

	assert.ErrorIs(t, c.Delete(ctx, "/alice/files/Photos", false), ErrIsDir)
	assert.ErrorIs(t, c.Delete(ctx, "/alice/files/nope", false), ErrNotFound)
	for _, p := range []string{"/", "/alice", "/alice/files", "/alice/files_trashbin", "/alice/files_trashbin/files"} {
		assert.ErrorIs(t, c.Delete(ctx, p, true), ErrPermission, p)
	}
}

func TestRestoreFromTrash(t *testing.T) {
	c := newTestClient(t)
	ctx := asAlice()
	require.NoError(t, c.Mkdir(ctx, "/alice/files/Photos", false))
	require.NoError(t, c.WriteFile(ctx, "/alice/files/Photos/a.jpg", "x"))
	before, err := c.Get(ctx, "/alice/files/Photos")
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, "/alice/files/Photos", true))
	trash, err := c.ListTrash(ctx)
	require.NoError(t, err)
	require.Len(t, trash, 1)

	got := recordEvents(c)
	restored, err := c.RestoreFromTrash(ctx, trash[0].Name)
	require.NoError(t, err)
	assert.Equal(t, "/alice/files/Photos", restored)
	assert.Equal(t, []event{{HookPostRestore, "/Photos"}}, *got)

	after, err := c.Get(ctx, "/alice/files/Photos")
	require.NoError(t, err)
	assert.Equal(t, before.FileID, after.FileID)
	content, err := c.ReadFile(ctx, "/alice/files/Photos/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "x", content)

	trash, err = c.ListTrash(ctx)
	require.NoError(t, err)
	assert.Empty(t, trash)
}

func TestRestoreFallbacks(t *testing.T) {
	c := newTestClient(t)
	ctx := asAlice()
	require.NoError(t, c.Mkdir(ctx, "/alice/files/Photos", false))
	require.NoError(t, c.WriteFile(ctx, "/alice/files/Photos/a.jpg", "old"))
	require.NoError(t, c.Delete(ctx, "/alice/files/Photos/a.jpg", false))
	require.NoError(t, c.Delete(ctx, "/alice/files/Photos", true))

	trash, err := c.ListTrash(ctx)
	require.NoError(t, err)
	require.Len(t, trash, 2)

	var fileEntry string
	for _, e := range trash {
		if e.OriginalPath == "/Photos/a.jpg" {
			fileEntry = e.Name
		}
	}
	require.NotEmpty(t, fileEntry)

	// The parent folder is gone, and a.jpg already exists at the files root.
	require.NoError(t, c.WriteFile(ctx, "/alice/files/a.jpg", "new"))
	restored, err := c.RestoreFromTrash(ctx, fileEntry)
	require.NoError(t, err)
	assert.Equal(t, "/alice/files/a (restored).jpg", restored)

	_, err = c.RestoreFromTrash(ctx, "nope.d1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = c.RestoreFromTrash(context.Background(), fileEntry)
	assert.ErrorIs(t, err, ErrNoUser)
}

func TestPurgeTrash(t *testing.T) {
	c := newTestClient(t)
	ctx := asAlice()
	require.NoError(t, c.WriteFile(ctx, "/alice/files/a.jpg", "x"))
	n, err := c.Get(ctx, "/alice/files/a.jpg")
	require.NoError(t, err)
	require.NoError(t, c.Delete(ctx, "/alice/files/a.jpg", false))

	trash, err := c.ListTrash(ctx)
	require.NoError(t, err)
	require.Len(t, trash, 1)

	require.NoError(t, c.PurgeTrash(ctx, trash[0].Name))
	_, err = c.GetByID(ctx, n.FileID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, c.PurgeTrash(ctx, trash[0].Name), ErrNotFound)
}

func TestVersions(t *testing.T) {
	c := newTestClient(t)
	ctx := asAlice()
	require.NoError(t, c.WriteFile(ctx, "/alice/files/a.txt", "one"))
	require.NoError(t, c.WriteFile(ctx, "/alice/files/a.txt", "two"))
	require.NoError(t, c.WriteFile(ctx, "/alice/files/a.txt", "three"))

	versions, err := c.ListVersions(ctx, "/alice/files/a.txt")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "two", versions[0].Content)
	assert.Equal(t, "one", versions[1].Content)

	got := recordEvents(c)
	require.NoError(t, c.RestoreVersion(ctx, "/alice/files/a.txt", 1))
	assert.Equal(t, []event{{EventPostTouch, "/alice/files/a.txt"}}, *got)

	content, err := c.ReadFile(ctx, "/alice/files/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "one", content)

	versions, err = c.ListVersions(ctx, "/alice/files/a.txt")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "three", versions[0].Content)
	assert.Equal(t, "two", versions[1].Content)

	assert.Error(t, c.RestoreVersion(ctx, "/alice/files/a.txt", 5))
}

func TestMounts(t *testing.T) {
	c := newTestClient(t)
	ctx := asAlice()

	require.NoError(t, c.Mount(ctx, "/alice/files/ext", StorageExternal))
	require.NoError(t, c.WriteFile(ctx, "/alice/files/ext/a.jpg", "x"))

	n, err := c.Get(ctx, "/alice/files/ext/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, StorageExternal, n.Storage)

	assert.Error(t, c.Mount(ctx, "/alice/files", StorageExternal))
	assert.Error(t, c.Mount(ctx, "/elsewhere", StorageShared))
	assert.Error(t, c.Mount(ctx, "/alice/files/x", StorageHome))

	mounts, err := c.Mounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]StorageKind{"/alice/files/ext": StorageExternal}, mounts)
}

func TestWalk(t *testing.T) {
	c := newTestClient(t)
	ctx := asAlice()
	require.NoError(t, c.Mkdir(ctx, "/alice/files/b", false))
	require.NoError(t, c.WriteFile(ctx, "/alice/files/b/z.jpg", "x"))
	require.NoError(t, c.WriteFile(ctx, "/alice/files/a.jpg", "x"))

	var paths []string
	err := c.Walk(ctx, "/alice/files", func(n *Node) error {
		paths = append(paths, n.Path)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/alice/files", "/alice/files/a.jpg", "/alice/files/b", "/alice/files/b/z.jpg"}, paths)

	assert.ErrorIs(t, c.Walk(ctx, "/alice/files/none", func(*Node) error { return nil }), ErrNotFound)
}

func TestTree(t *testing.T) {
	c := newTestClient(t)
	ctx := asAlice()
	require.NoError(t, c.Mkdir(ctx, "/alice/files/b/c", true))
	require.NoError(t, c.WriteFile(ctx, "/alice/files/b/c/z.jpg", "x"))

	entry, dirs, files, err := c.Tree(ctx, "/alice/files", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, dirs)
	assert.Equal(t, 1, files)
	require.Len(t, entry.Children, 1)
	assert.Equal(t, "b", entry.Children[0].Name)

	_, dirs, files, err = c.Tree(ctx, "/alice/files", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, dirs)
	assert.Equal(t, 0, files)
}
