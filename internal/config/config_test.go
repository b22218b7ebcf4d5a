package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bindpatch/bindpatch/internal/codec/codectest"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestCreateCodec(t *testing.T) {
	logger := log.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "layout.yaml")

	file, err := os.Create(path)
	assert.NoError(t, err)
	assert.NoError(t, codectest.Layout().Encode(file))
	assert.NoError(t, file.Close())

	c, err := CreateCodec(logger, path)
	assert.NoError(t, err)
	assert.Equal(t, *codectest.Layout(), *c.Layout())
}

func TestCreateCodecInvalidLayout(t *testing.T) {
	logger := log.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "layout.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("name: empty\n"), 0600))

	_, err := CreateCodec(logger, path)
	assert.ErrorContains(t, err, "invalid layout")
}
