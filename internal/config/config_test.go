package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader(t *testing.T, env map[string]string) (*Loader, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	l := NewLoader(fs)
	l.SetEnv(func(k string) string { return env[k] })
	l.SetConfigDir(func() (string, error) { return "/home/test/.config", nil })
	return l, fs
}

func TestLoadDefaults(t *testing.T) {
	l, _ := newTestLoader(t, nil)

	cfg, err := l.Load("/proj")
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestGlobalPath(t *testing.T) {
	l, _ := newTestLoader(t, nil)
	assert.Equal(t, filepath.Join("/home/test/.config", "rspec-toggle", "config.toml"), l.GlobalPath())

	l.SetEnv(func(k string) string {
		if k == EnvConfigPath {
			return "/tmp/custom.toml"
		}
		return ""
	})
	assert.Equal(t, "/tmp/custom.toml", l.GlobalPath())

	l.SetEnv(nil)
	l.SetConfigDir(func() (string, error) { return "", errors.New("no home") })
	l.SetEnv(func(string) string { return "" })
	assert.Equal(t, "", l.GlobalPath())
}

func TestLoadGlobalToml(t *testing.T) {
	l, fs := newTestLoader(t, nil)
	require.NoError(t, afero.WriteFile(fs, l.GlobalPath(), []byte(`
debug = true
editor = "subl -w"
roots = ["/work/a", "/work/b"]
`), 0o644))

	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "subl -w", cfg.Editor)
	assert.Equal(t, []string{"/work/a", "/work/b"}, cfg.Roots)
}

func TestLoadProjectOverrideWins(t *testing.T) {
	l, fs := newTestLoader(t, nil)
	require.NoError(t, afero.WriteFile(fs, l.GlobalPath(), []byte("debug = true\neditor = \"vim\"\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/proj/.rspec-toggle.yml", []byte(`
rspec-toggle.debug: false
rspec-toggle.editor: " code -r "
rspec-toggle.roots:
  - /proj/engines/billing
`), 0o644))

	cfg, err := l.Load("/proj")
	require.NoError(t, err)
	assert.False(t, cfg.Debug)
	assert.Equal(t, "code -r", cfg.Editor)
	assert.Equal(t, []string{"/proj/engines/billing"}, cfg.Roots)
}

func TestLoadProjectOverridePartial(t *testing.T) {
	l, fs := newTestLoader(t, nil)
	require.NoError(t, afero.WriteFile(fs, l.GlobalPath(), []byte("debug = true\neditor = \"vim\"\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/proj/.rspec-toggle.yml", []byte("debug: false\n"), 0o644))

	cfg, err := l.Load("/proj")
	require.NoError(t, err)
	assert.True(t, cfg.Debug, "un-namespaced keys are ignored")
	assert.Equal(t, "vim", cfg.Editor)
}

func TestLoadEnvDebug(t *testing.T) {
	l, _ := newTestLoader(t, map[string]string{EnvDebug: "1"})

	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
}

func TestLoadEnvDebugInvalidIgnored(t *testing.T) {
	l, _ := newTestLoader(t, map[string]string{EnvDebug: "maybe"})

	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Debug)
}

func TestLoadMalformed(t *testing.T) {
	l, fs := newTestLoader(t, nil)
	require.NoError(t, afero.WriteFile(fs, l.GlobalPath(), []byte("debug = [\n"), 0o644))

	_, err := l.Load("")
	assert.Error(t, err)

	l2, fs2 := newTestLoader(t, nil)
	require.NoError(t, afero.WriteFile(fs2, "/proj/.rspec-toggle.yml", []byte("rspec-toggle.debug: [oops\n"), 0o644))
	_, err = l2.Load("/proj")
	assert.Error(t, err)
}

func TestWriteDefault(t *testing.T) {
	l, fs := newTestLoader(t, nil)

	path, err := l.WriteDefault()
	require.NoError(t, err)
	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfigToml, string(content))

	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.Editor)
	assert.Empty(t, cfg.Roots)

	_, err = l.WriteDefault()
	assert.Error(t, err, "existing config is not overwritten")
}
