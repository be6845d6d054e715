package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRequestPath(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"alice/20240101+day+one.mp4", "alice/20240101 day one.mp4"},
		{"alice/a%2Bb.mp4", "alice/a+b.mp4"},
		{"%E5%8D%9A%E4%B8%BB/x.mp4", "博主/x.mp4"},
		{"alice/%28x%29.mp4", "alice/(x).mp4"},
	}
	for _, tt := range tests {
		got, err := DecodeRequestPath(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.expected, got)
	}

	_, err := DecodeRequestPath("bad%zz")
	assert.Error(t, err)
}

func TestResolveUnder(t *testing.T) {
	root := t.TempDir()

	got, err := ResolveUnder(root, "alice/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "alice", "clip.mp4"), got)

	got, err = ResolveUnder(root, "alice/../bob/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "bob", "clip.mp4"), got)

	for _, rel := range []string{
		"../../etc/passwd",
		"alice/../../outside.mp4",
		"/../secret",
		"..",
		"a\x00b",
	} {
		_, err := ResolveUnder(root, rel)
		assert.ErrorIs(t, err, ErrOutsideRoot, rel)
	}
}

func TestResolveUnder_SiblingWithSharedPrefix(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "vlog")

	_, err := ResolveUnder(root, "../vlog-private/x.mp4")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestResolveUnder_Symlinks(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "vlog")
	outside := filepath.Join(parent, "outside")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "alice"), 0o755))
	require.NoError(t, os.MkdirAll(outside, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "alice", "clip.mp4"), []byte("x"), 0o644))

	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(root, "alice", "leak.mp4")))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "bob")))
	require.NoError(t, os.Symlink(filepath.Join(root, "alice", "clip.mp4"), filepath.Join(root, "alice", "alias.mp4")))

	for _, rel := range []string{"alice/leak.mp4", "bob/secret.txt", "bob/new.jpg", "bob"} {
		_, err := ResolveUnder(root, rel)
		assert.ErrorIs(t, err, ErrOutsideRoot, rel)
	}

	got, err := ResolveUnder(root, "alice/alias.mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "alice", "alias.mp4"), got)

	// a root reached through a symlink is still honoured
	linkedRoot := filepath.Join(parent, "linked")
	require.NoError(t, os.Symlink(root, linkedRoot))
	got, err = ResolveUnder(linkedRoot, "alice/clip.mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(linkedRoot, "alice", "clip.mp4"), got)
}

func TestResolveChild(t *testing.T) {
	root := t.TempDir()

	_, err := resolveChild(root, "alice")
	assert.NoError(t, err)

	for _, name := range []string{"", ".", "..", "a/b", `a\b`} {
		_, err := resolveChild(root, name)
		assert.ErrorIs(t, err, ErrOutsideRoot, name)
	}
}

func TestEncodeComponentAndMediaURL(t *testing.T) {
	assert.Equal(t, "day+one", EncodeComponent("day one"))
	assert.Equal(t, "%28a%29%21%27%2A", EncodeComponent("(a)!'*"))
	assert.Equal(t, "a%2Bb", EncodeComponent("a+b"))

	assert.Equal(t, "/media/alice/20240101+day.mp4", MediaURL("", "alice", "20240101 day.mp4"))
	assert.Equal(t, "http://h:3000/media/bob/tx.jpg", MediaURL("http://h:3000", "bob", "tx.jpg"))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, name := range []string{"a b+c.mp4", "100% real.mp4", "博主 (1).mp4"} {
		got, err := DecodeRequestPath(EncodeComponent(name))
		require.NoError(t, err)
		assert.Equal(t, name, got)
	}
}

func TestVideoKey(t *testing.T) {
	a := VideoKey("alice", "clip.mp4")
	assert.Len(t, a, 11)
	assert.Equal(t, a, VideoKey("alice", "clip.mp4"))
	assert.NotEqual(t, a, VideoKey("bob", "clip.mp4"))
}
