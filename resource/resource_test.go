package resource

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		source string
		ref    string
		want   string
	}{
		{
			name:   "parent directory",
			source: "assets/protos/sword.proto.json",
			ref:    "../icons/foo.png",
			want:   "assets/icons/foo.png",
		},
		{
			name:   "sibling file",
			source: "assets/protos/sword.proto.json",
			ref:    "foo.png",
			want:   "assets/protos/foo.png",
		},
		{
			name:   "nested reference",
			source: "protos/items.json",
			ref:    "textures/hi/foo.png",
			want:   "protos/textures/hi/foo.png",
		},
		{
			name:   "document at root",
			source: "items.json",
			ref:    "foo.png",
			want:   "foo.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.source, tt.ref))
		})
	}
}

func TestHandleLifecycle(t *testing.T) {
	h, resolve := NewHandle("icons/foo.png")

	assert.True(t, h.Valid())
	assert.False(t, h.Ready())
	assert.Equal(t, "icons/foo.png", h.Path())

	resolve([]byte("png bytes"), nil)

	assert.True(t, h.Ready())
	data, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), data)
}

func TestHandleZeroValue(t *testing.T) {
	var h Handle
	assert.False(t, h.Valid())
	assert.False(t, h.Ready())

	_, err := h.Wait(context.Background())
	assert.Error(t, err)
}

func TestHandleWaitCancellation(t *testing.T) {
	h, _ := NewHandle("never/arrives.png")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := h.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFSLoader(t *testing.T) {
	fsys := fstest.MapFS{
		"assets/icons/foo.png": {Data: []byte("icon")},
	}

	loader := NewFSLoader(fsys)

	h := loader.Load(context.Background(), "assets/icons/foo.png")
	require.True(t, h.Valid())

	data, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("icon"), data)
}

func TestFSLoaderMissingFile(t *testing.T) {
	loader := NewFSLoader(fstest.MapFS{})

	h := loader.Load(context.Background(), "nope.png")
	require.True(t, h.Valid())

	_, err := h.Wait(context.Background())
	assert.Error(t, err)
}
