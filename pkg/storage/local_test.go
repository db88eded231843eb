package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(LocalConfig{BasePath: t.TempDir(), URLPrefix: "/media/"})
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "posts/a.png", strings.NewReader("png"), 3, "image/png"))

	rc, err := s.Read(ctx, "posts/a.png")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "png", string(body))

	url, err := s.GetURL(ctx, "posts/a.png", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "/media/posts/a.png", url)

	require.NoError(t, s.Delete(ctx, "posts/a.png"))
	require.NoError(t, s.Delete(ctx, "posts/a.png"))
	_, err = s.Read(ctx, "posts/a.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorageStaysInBasePath(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s, err := NewLocalStorage(LocalConfig{BasePath: base})
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "../../escape.txt", strings.NewReader("x"), 1, ""))

	rc, err := s.Read(ctx, "escape.txt")
	require.NoError(t, err)
	require.NoError(t, rc.Close())

	_, err = s.Read(ctx, "")
	assert.Error(t, err)
}
