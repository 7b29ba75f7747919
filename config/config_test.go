package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blefnk/dler/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".dler.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	t.Run("should point at the public registry with caret updates", func(t *testing.T) {
		t.Parallel()

		// when
		cfg := config.Default()

		// then
		assert.Equal(t, "https://registry.npmjs.org", cfg.Registry.URL)
		assert.Equal(t, 5, cfg.Update.Concurrency)
		assert.True(t, cfg.Update.AllowMajor)
		assert.Equal(t, "^", cfg.Update.SavePrefix)
		assert.Empty(t, cfg.Ignore)
	})
}

func TestLoad(t *testing.T) {
	t.Run("should overlay file values on top of the defaults", func(t *testing.T) {
		// given
		path := writeConfig(t, `
registry:
  url: https://registry.example.com
update:
  concurrency: 10
  allow_major: false
  save_prefix: "~"
ignore:
  - typescript
`)

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "https://registry.example.com", cfg.Registry.URL)
		assert.Equal(t, 10, cfg.Update.Concurrency)
		assert.False(t, cfg.Update.AllowMajor)
		assert.Equal(t, "~", cfg.Update.SavePrefix)
		assert.Equal(t, []string{"typescript"}, cfg.Ignore)
	})

	t.Run("should keep defaults for omitted keys", func(t *testing.T) {
		// given
		path := writeConfig(t, `
ignore:
  - eslint
`)

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "https://registry.npmjs.org", cfg.Registry.URL)
		assert.Equal(t, 5, cfg.Update.Concurrency)
		assert.Equal(t, []string{"eslint"}, cfg.Ignore)
	})

	t.Run("should expand an environment token reference", func(t *testing.T) {
		// given
		t.Setenv("DLER_TEST_TOKEN", "npm_from_env")
		path := writeConfig(t, `
registry:
  token: ${DLER_TEST_TOKEN}
`)

		// when
		cfg, err := config.Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "npm_from_env", cfg.Registry.Token)
	})

	t.Run("should fail on a missing file", func(t *testing.T) {
		// when
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("should fail on malformed YAML", func(t *testing.T) {
		// given
		path := writeConfig(t, "update: [")

		// when
		_, err := config.Load(path)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("should reject an invalid save prefix", func(t *testing.T) {
		// given
		path := writeConfig(t, `
update:
  concurrency: 5
  save_prefix: ">="
`)

		// when
		_, err := config.Load(path)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "save_prefix")
	})
}

func TestResolveToken(t *testing.T) {
	t.Run("should return inline tokens verbatim", func(t *testing.T) {
		// when
		token := config.ResolveToken("npm_inline")

		// then
		assert.Equal(t, "npm_inline", token)
	})

	t.Run("should return empty for empty input", func(t *testing.T) {
		// when
		token := config.ResolveToken("")

		// then
		assert.Empty(t, token)
	})

	t.Run("should expand set environment variables", func(t *testing.T) {
		// given
		t.Setenv("DLER_RESOLVE_TOKEN", "secret-value")

		// when
		token := config.ResolveToken("${DLER_RESOLVE_TOKEN}")

		// then
		assert.Equal(t, "secret-value", token)
	})

	t.Run("should resolve unset environment variables to empty", func(t *testing.T) {
		// given
		t.Setenv("DLER_UNSET_TOKEN", "")

		// when
		token := config.ResolveToken("${DLER_UNSET_TOKEN}")

		// then
		assert.Empty(t, token)
	})

	t.Run("should read and trim the token from an existing file", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(path, []byte("  npm_from_file \n"), 0o600))

		// when
		token := config.ResolveToken(path)

		// then
		assert.Equal(t, "npm_from_file", token)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("should accept the defaults", func(t *testing.T) {
		t.Parallel()

		// when
		err := config.Validate(config.Default())

		// then
		require.NoError(t, err)
	})

	t.Run("should reject an empty registry URL", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := config.Default()
		cfg.Registry.URL = ""

		// when
		err := config.Validate(cfg)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "registry.url")
	})

	t.Run("should reject non-positive concurrency", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := config.Default()
		cfg.Update.Concurrency = 0

		// when
		err := config.Validate(cfg)

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "concurrency")
	})
}

func TestNormalizeSavePrefix(t *testing.T) {
	t.Parallel()

	t.Run("should map the accepted spellings", func(t *testing.T) {
		t.Parallel()

		// given
		cases := map[string]string{
			"^":     "^",
			"~":     "~",
			"":      "",
			"exact": "",
		}

		for raw, expected := range cases {
			// when
			prefix, err := config.NormalizeSavePrefix(raw)

			// then
			require.NoError(t, err)
			assert.Equal(t, expected, prefix)
		}
	})

	t.Run("should reject unknown spellings", func(t *testing.T) {
		t.Parallel()

		// when
		_, err := config.NormalizeSavePrefix("latest")

		// then
		require.Error(t, err)
	})
}
