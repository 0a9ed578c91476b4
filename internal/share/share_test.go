package share

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gary-kim/maps/internal/fs"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"user", TypeUser, false},
		{"GROUP", TypeGroup, false},
		{"link", TypeLink, false},
		{"email", TypeEmail, false},
		{"remote", TypeRemote, false},
		{"circle", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseType(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseType(%q) = %v, %v, want %v, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "user", TypeUser.String())
	assert.Equal(t, "type(9)", Type(9).String())
}

func TestParams(t *testing.T) {
	s := &Share{ID: 3, Type: TypeUser, Owner: "alice", ShareWith: "bob", FileSource: 42, ItemTarget: "/a.jpg"}
	p := s.Params()

	st, ok := p.Int64("shareType")
	require.True(t, ok)
	assert.Equal(t, int64(TypeUser), st)
	src, ok := p.Int64("fileSource")
	require.True(t, ok)
	assert.Equal(t, int64(42), src)
	with, _ := p.String("shareWith")
	assert.Equal(t, "bob", with)
	owner, _ := p.String("uidOwner")
	assert.Equal(t, "alice", owner)
}

type hookCall struct {
	name   string
	params fs.Params
}

func newTestManager(t *testing.T) (*Manager, *fs.Client, *[]hookCall) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	ctx := context.Background()
	client := fs.NewClient(rdb, "test")
	require.NoError(t, client.Init(ctx))
	require.NoError(t, client.CreateUser(ctx, "alice"))
	require.NoError(t, client.CreateUser(ctx, "bob"))

	var calls []hookCall
	for _, name := range []string{HookPostShared, HookPostUnshare} {
		name := name
		client.Events().ConnectHook(HookClass, name, func(_ context.Context, p fs.Params) error {
			calls = append(calls, hookCall{name, p})
			return nil
		})
	}
	return NewManager(rdb, "test", client, client.Events()), client, &calls
}

func TestShareAndUnshare(t *testing.T) {
	m, client, calls := newTestManager(t)
	ctx := fs.ContextWithUser(context.Background(), "alice")
	require.NoError(t, client.WriteFile(ctx, "/alice/files/a.jpg", "x"))
	node, err := client.Get(ctx, "/alice/files/a.jpg")
	require.NoError(t, err)

	s, err := m.Share(ctx, "/alice/files/a.jpg", TypeUser, "bob")
	require.NoError(t, err)
	assert.Equal(t, node.FileID, s.FileSource)
	assert.Equal(t, "/a.jpg", s.ItemTarget)

	require.Len(t, *calls, 1)
	assert.Equal(t, HookPostShared, (*calls)[0].name)
	src, _ := (*calls)[0].params.Int64("fileSource")
	assert.Equal(t, node.FileID, src)

	list, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, s.ID, list[0].ID)

	require.NoError(t, m.Unshare(ctx, s.ID))
	require.Len(t, *calls, 2)
	assert.Equal(t, HookPostUnshare, (*calls)[1].name)

	_, err = m.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Unshare(ctx, s.ID), ErrNotFound)
}

func TestShareValidation(t *testing.T) {
	m, client, calls := newTestManager(t)
	alice := fs.ContextWithUser(context.Background(), "alice")
	bob := fs.ContextWithUser(context.Background(), "bob")
	require.NoError(t, client.WriteFile(alice, "/alice/files/a.jpg", "x"))

	_, err := m.Share(context.Background(), "/alice/files/a.jpg", TypeUser, "bob")
	assert.ErrorIs(t, err, fs.ErrNoUser)

	_, err = m.Share(bob, "/alice/files/a.jpg", TypeUser, "alice")
	assert.ErrorIs(t, err, fs.ErrPermission)

	_, err = m.Share(alice, "/alice/files/none.jpg", TypeUser, "bob")
	assert.ErrorIs(t, err, fs.ErrNotFound)

	_, err = m.Share(alice, "/alice/files/a.jpg", TypeUser, "carol")
	assert.ErrorIs(t, err, fs.ErrUnknownUser)

	_, err = m.Share(alice, "/alice/files/a.jpg", TypeUser, "alice")
	assert.Error(t, err)

	_, err = m.Share(alice, "/alice/files/a.jpg", TypeGroup, "")
	assert.Error(t, err)

	assert.Empty(t, *calls)

	link, err := m.Share(alice, "/alice/files/a.jpg", TypeLink, "")
	require.NoError(t, err)
	assert.Equal(t, TypeLink, link.Type)

	assert.ErrorIs(t, m.Unshare(bob, link.ID), fs.ErrPermission)
}

func TestShareOutsideFilesRoot(t *testing.T) {
	m, client, calls := newTestManager(t)
	alice := fs.ContextWithUser(context.Background(), "alice")
	require.NoError(t, client.Mkdir(alice, "/alice/files/Private", false))
	require.NoError(t, client.WriteFile(alice, "/alice/files/Private/secret.jpg", "x"))
	require.NoError(t, client.Delete(alice, "/alice/files/Private", true))

	trash, err := client.ListTrash(alice)
	require.NoError(t, err)
	require.Len(t, trash, 1)

	for _, p := range []string{
		"/alice",
		"/alice/files",
		"/alice/files_trashbin",
		fs.UserTrash("alice"),
		fs.UserTrash("alice") + "/" + trash[0].Name,
		fs.UserTrash("alice") + "/" + trash[0].Name + "/secret.jpg",
	} {
		_, err := m.Share(alice, p, TypeUser, "bob")
		assert.ErrorIs(t, err, fs.ErrPermission, p)
	}
	assert.Empty(t, *calls)

	require.NoError(t, client.WriteFile(alice, "/alice/files/b.jpg", "x"))
	_, err = m.Share(alice, "/alice/files/b.jpg", TypeUser, "bob")
	require.NoError(t, err)
	assert.Len(t, *calls, 1)
}

func TestCovers(t *testing.T) {
	m, client, _ := newTestManager(t)
	alice := fs.ContextWithUser(context.Background(), "alice")
	require.NoError(t, client.Mkdir(alice, "/alice/files/Photos", false))
	require.NoError(t, client.WriteFile(alice, "/alice/files/Photos/a.jpg", "x"))
	require.NoError(t, client.WriteFile(alice, "/alice/files/b.jpg", "x"))
	inside, err := client.Get(alice, "/alice/files/Photos/a.jpg")
	require.NoError(t, err)
	outside, err := client.Get(alice, "/alice/files/b.jpg")
	require.NoError(t, err)

	folder, err := m.Share(alice, "/alice/files/Photos", TypeUser, "bob")
	require.NoError(t, err)
	_, err = m.Share(alice, "/alice/files/b.jpg", TypeLink, "")
	require.NoError(t, err)

	tests := []struct {
		uid  string
		node *fs.Node
		want bool
	}{
		{"bob", inside, true},
		{"bob", outside, false},
		{"alice", inside, false},
	}
	for _, tt := range tests {
		got, err := m.Covers(context.Background(), tt.uid, tt.node)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %s", tt.uid, tt.node.Path)
	}

	require.NoError(t, m.Unshare(alice, folder.ID))
	got, err := m.Covers(context.Background(), "bob", inside)
	require.NoError(t, err)
	assert.False(t, got)
}
