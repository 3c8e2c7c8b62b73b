package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/mlcc/pkg/mlcc/config"
	"github.com/jamesainslie/mlcc/pkg/mlcc/prompt"
)

func corruptStore(t *testing.T) *config.GlobalStore {
	t.Helper()
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, config.GlobalFileName), []byte("{not json"), 0o644))
	return config.NewGlobalStore(home)
}

func TestConfigGet(t *testing.T) {
	home := t.TempDir()
	store := config.NewGlobalStore(home)
	require.NoError(t, store.Save(config.Record{config.RecordRegion: "us-east-1"}))

	var out, errOut bytes.Buffer
	require.NoError(t, configGet(&out, &errOut, config.NewGlobalStore(home), config.RecordRegion))
	assert.Equal(t, "us-east-1\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestConfigGet_CorruptFileWarns(t *testing.T) {
	var out, errOut bytes.Buffer
	err := configGet(&out, &errOut, corruptStore(t), config.RecordRegion)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not set")
	assert.Contains(t, errOut.String(), "Warning: failed to load global config")
	assert.Empty(t, out.String())
}

func TestConfigSet_CorruptFileWarns(t *testing.T) {
	store := corruptStore(t)

	var errOut bytes.Buffer
	require.NoError(t, configSet(&errOut, store, config.RecordIncludeTesting, false))
	assert.Contains(t, errOut.String(), "Warning: failed to load global config")

	reread := config.NewGlobalStore(filepath.Dir(store.Path()))
	v, ok := reread.Get(config.RecordIncludeTesting)
	require.True(t, ok)
	assert.Equal(t, false, v)
	assert.Empty(t, reread.Warnings)
}

func TestGenerate_ReconfigureCorruptGlobalWarns(t *testing.T) {
	opts := testOptions(t, &prompt.Scripted{}, nil)
	opts.Store = corruptStore(t)
	opts.Reconfigure = true
	var errOut bytes.Buffer
	opts.ErrOut = &errOut

	_, err := generate(opts)
	require.NoError(t, err)
	assert.Contains(t, errOut.String(), "Warning: failed to load global config")

	reread := config.NewGlobalStore(filepath.Dir(opts.Store.Path()))
	assert.NotNil(t, reread.Load())
	assert.Empty(t, reread.Warnings)
}
