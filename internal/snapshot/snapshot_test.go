package snapshot

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/finmap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileURL(t *testing.T) {
	dir := t.TempDir()
	u, err := FileURL(filepath.Join(dir, "my map.html"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "file:///"))
	assert.True(t, strings.HasSuffix(u, "/my%20map.html"))
}

func TestFindChromeBinary_Env(t *testing.T) {
	t.Setenv("CHROME_BIN", "/opt/custom/chrome")
	assert.Equal(t, "/opt/custom/chrome", FindChromeBinary())
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, DefaultWidth, o.Width)
	assert.Equal(t, DefaultHeight, o.Height)
	assert.Equal(t, DefaultTimeout, o.Timeout)

	custom := Options{Width: 640, Height: 480, Timeout: time.Second}.withDefaults()
	assert.Equal(t, 640, custom.Width)
	assert.Equal(t, time.Second, custom.Timeout)
}

func TestCapture_MissingMap(t *testing.T) {
	err := Capture(context.Background(), filepath.Join(t.TempDir(), "nope.html"), "out.png", Options{})
	var loadErr *schema.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCapture_Browser(t *testing.T) {
	if testing.Short() || FindChromeBinary() == "" {
		t.Skip("headless Chrome not available")
	}
	dir := t.TempDir()
	htmlPath := filepath.Join(dir, "map.html")
	page := `<!DOCTYPE html><html><body><div id="map" style="width:200px;height:200px;background:#41b6c4"></div></body></html>`
	require.NoError(t, os.WriteFile(htmlPath, []byte(page), 0o644))

	pngPath := filepath.Join(dir, "map.png")
	require.NoError(t, Capture(context.Background(), htmlPath, pngPath, Options{Width: 320, Height: 240, Timeout: 30 * time.Second}))

	data, err := os.ReadFile(pngPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}
