package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useTempConfig(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "litbot")
	t.Setenv(envConfigDir, dir)
	return filepath.Join(dir, configFileName)
}

func TestConfigPath_Override(t *testing.T) {
	want := useTempConfig(t)

	path, err := ConfigPath()
	require.NoError(t, err)
	assert.Equal(t, want, path)
}

func TestLoadLogin_NoFile(t *testing.T) {
	useTempConfig(t)

	login, err := LoadLogin()
	require.NoError(t, err)
	assert.Nil(t, login)
}

func TestSaveLoadForget(t *testing.T) {
	want := useTempConfig(t)

	path, err := SaveLogin(SavedLogin{APIToken: "tok", APIURL: "http://bot:8080"})
	require.NoError(t, err)
	assert.Equal(t, want, path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	login, err := LoadLogin()
	require.NoError(t, err)
	assert.Equal(t, &SavedLogin{APIToken: "tok", APIURL: "http://bot:8080"}, login)

	require.NoError(t, ForgetLogin())
	require.NoError(t, ForgetLogin(), "forgetting twice is fine")
	login, err = LoadLogin()
	require.NoError(t, err)
	assert.Nil(t, login)
}

func TestSaveLogin_RejectsEmptyToken(t *testing.T) {
	useTempConfig(t)
	_, err := SaveLogin(SavedLogin{APIURL: "http://bot"})
	assert.ErrorContains(t, err, "empty token")
}

func TestLoadLogin_InvalidYAML(t *testing.T) {
	path := useTempConfig(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("api_token: [unterminated"), 0o600))

	_, err := LoadLogin()
	assert.ErrorContains(t, err, "failed to parse")
}

func TestResolveCredentials(t *testing.T) {
	useTempConfig(t)
	t.Setenv(envAPIToken, "")
	t.Setenv(envAPIURL, "")

	creds, err := ResolveCredentials("", "")
	require.NoError(t, err)
	assert.Equal(t, Credentials{Source: SourceNone, URL: defaultAPIURL}, creds)

	_, err = SaveLogin(SavedLogin{APIToken: "saved", APIURL: "http://saved"})
	require.NoError(t, err)
	creds, err = ResolveCredentials("", "")
	require.NoError(t, err)
	assert.Equal(t, Credentials{Source: SourceSaved, Token: "saved", URL: "http://saved"}, creds)

	t.Setenv(envAPIToken, "env")
	creds, err = ResolveCredentials("", "")
	require.NoError(t, err)
	assert.Equal(t, Credentials{Source: SourceEnv, Token: "env", URL: "http://saved"}, creds)

	creds, err = ResolveCredentials("flag", "http://flag")
	require.NoError(t, err)
	assert.Equal(t, Credentials{Source: SourceFlag, Token: "flag", URL: "http://flag"}, creds)
}
