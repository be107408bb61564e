package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".nimbusrc")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvToken, EnvConfigFile, EnvProfile, EnvOutput, EnvEndpoint, EnvRegion} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_DefaultProfile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[default]
token = "tok-default"
region = "eu-1"

[staging]
token = "tok-staging"
output_format = "json"
`)

	cfg, err := Load(path, "default")
	require.NoError(t, err)
	assert.Equal(t, "tok-default", cfg.Token)
	assert.Equal(t, "eu-1", cfg.Region)
	assert.Empty(t, cfg.OutputFormat)
}

func TestLoad_NamedProfile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
[default]
token = "tok-default"

[staging]
token = "tok-staging"
output_format = "json"
`)

	cfg, err := Load(path, "staging")
	require.NoError(t, err)
	assert.Equal(t, "tok-staging", cfg.Token)
	assert.Equal(t, "json", cfg.OutputFormat)
}

func TestLoad_MissingProfile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[default]\ntoken = \"x\"\n")

	_, err := Load(path, "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `profile "nope" not found`)
}

func TestLoad_EnvTokenOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[default]\ntoken = \"from-file\"\n")
	t.Setenv(EnvToken, "from-env")

	cfg, err := Load(path, "default")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Token)
}

func TestLoad_EnvTokenWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvToken, "from-env")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), "default")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Token)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"), "default")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config init")
}

func TestLoad_EnvOutputAndRegion(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "[default]\ntoken = \"x\"\noutput_format = \"yaml\"\nregion = \"eu-1\"\n")
	t.Setenv(EnvOutput, "json")
	t.Setenv(EnvRegion, "us-1")

	cfg, err := Load(path, "default")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, "us-1", cfg.Region)
}

func TestResolveProfile(t *testing.T) {
	clearEnv(t)
	assert.Equal(t, "flag", ResolveProfile("flag"))
	t.Setenv(EnvProfile, "env")
	assert.Equal(t, "env", ResolveProfile(""))
	os.Unsetenv(EnvProfile)
	assert.Equal(t, DefaultProfile, ResolveProfile(""))
}

func TestInit_RefusesOverwrite(t *testing.T) {
	path := writeConfig(t, "[default]\ntoken = \"x\"\n")
	err := Init(path, "default", "y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitSetUnset(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".nimbusrc")

	require.NoError(t, Init(path, "default", "tok-1"))

	cfg, err := Load(path, "default")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", cfg.Token)

	require.NoError(t, Set(path, "default", "region", "eu-2"))
	require.NoError(t, Set(path, "staging", "token", "tok-2"))

	cfg, err = Load(path, "default")
	require.NoError(t, err)
	assert.Equal(t, "eu-2", cfg.Region)

	names, err := Profiles(path)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"default", "staging"}, names)

	require.NoError(t, Unset(path, "default", "region"))
	cfg, err = Load(path, "default")
	require.NoError(t, err)
	assert.Empty(t, cfg.Region)

	err = Unset(path, "default", "region")
	assert.Error(t, err, "unsetting an absent key should fail")
}

func TestDump_MasksTokens(t *testing.T) {
	path := writeConfig(t, "[default]\ntoken = \"secret\"\nregion = \"eu-1\"\n")
	out, err := Dump(path)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "secret")
	assert.Contains(t, string(out), "***")
	assert.Contains(t, string(out), "eu-1")
}
