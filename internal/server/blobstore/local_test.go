package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ADevelopere/storagegate/internal/common"
)

func newLocal(t *testing.T) (*Local, string) {
	t.Helper()
	root := t.TempDir()
	store, err := NewLocal(root)
	require.NoError(t, err)
	return store, root
}

func TestCleanPath(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "public/a.txt", want: "public/a.txt"},
		{name: "redundant segments", in: "public//./a.txt", want: "public/a.txt"},
		{name: "empty", in: "", wantErr: true},
		{name: "absolute", in: "/etc/passwd", wantErr: true},
		{name: "traversal", in: "../../etc/passwd", wantErr: true},
		{name: "hidden traversal", in: "public/../../etc/passwd", wantErr: true},
		{name: "dot only", in: ".", wantErr: true},
		{name: "backslash", in: `public\a.txt`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CleanPath(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocal_PutGetRoundTrip(t *testing.T) {
	store, _ := newLocal(t)
	ctx := context.Background()

	content := []byte("hello world")
	n, err := store.Put(ctx, "public/a.txt", strings.NewReader(string(content)))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), n)

	rc, err := store.Get(ctx, "public/a.txt")
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestLocal_PutLeavesNoStagingFiles(t *testing.T) {
	store, root := newLocal(t)

	_, err := store.Put(context.Background(), "dir/obj.bin", strings.NewReader("data"))
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(root, "dir"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "obj.bin", entries[0].Name())
}

func TestLocal_PutFailedReadLeavesNothing(t *testing.T) {
	store, root := newLocal(t)

	r := io.MultiReader(strings.NewReader("partial"), &failingReader{})
	_, err := store.Put(context.Background(), "dir/broken.bin", r)
	require.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(root, "dir"))
	require.NoError(t, err)
	assert.Empty(t, entries, "staged write must be removed on failure")

	_, err = store.Get(context.Background(), "dir/broken.bin")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestLocal_TraversalRejected(t *testing.T) {
	store, _ := newLocal(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "../escape.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, common.ErrInvalidPath)

	_, err = store.Get(ctx, "a/../../escape.txt")
	assert.ErrorIs(t, err, common.ErrInvalidPath)
}

func TestLocal_OpenRange(t *testing.T) {
	store, _ := newLocal(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "r.txt", strings.NewReader("0123456789"))
	require.NoError(t, err)

	rc, err := store.OpenRange(ctx, "r.txt", 2, 5)
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "23456", string(got))
}

func TestLocal_StatAndDelete(t *testing.T) {
	store, _ := newLocal(t)
	ctx := context.Background()

	_, err := store.Put(ctx, "s.txt", strings.NewReader("abcde"))
	require.NoError(t, err)

	info, err := store.Stat(ctx, "s.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), info.Size)

	require.NoError(t, store.Delete(ctx, "s.txt"))

	_, err = store.Stat(ctx, "s.txt")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "s.txt"), common.ErrNotFound)
}

type failingReader struct{}

func (f *failingReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }
