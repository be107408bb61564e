package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbuscloud/nimbus-cli/internal/config"
	"github.com/nimbuscloud/nimbus-cli/pkg/api"
	"github.com/nimbuscloud/nimbus-cli/test/mockapi"
)

// startMock spins up the fake API and points the CLI at it through the
// environment. No config file exists, so the token must come from env.
func startMock(t *testing.T) *mockapi.API {
	t.Helper()
	a := mockapi.New(mockapi.NewState(), "test-token")
	ts := httptest.NewServer(a.Router())
	t.Cleanup(ts.Close)

	t.Setenv(config.EnvToken, "test-token")
	t.Setenv(config.EnvEndpoint, ts.URL)
	t.Setenv(config.EnvConfigFile, filepath.Join(t.TempDir(), "nimbusrc"))
	t.Setenv(config.EnvProfile, "")
	t.Setenv(config.EnvOutput, "")
	return a
}

// runNimbus executes one CLI invocation. The command tree and its flag
// variables are package globals, so persistent flag state is reset
// before each run.
func runNimbus(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	flagVerbose, flagConfig, flagProfile, flagOutput = false, "", "", ""
	serverFlags.filter, serverFlags.status, serverFlags.yes = "", false, false
	serverFlags.wait = false
	sshKeyFlags.filter, sshKeyFlags.name, sshKeyFlags.yes = "", "", false

	var out, errBuf bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err = rootCmd.ExecuteContext(context.Background())
	return out.String(), errBuf.String(), err
}

func TestServerListTable(t *testing.T) {
	a := startMock(t)
	a.State().AddServer("web-1", "eu-1", "on")
	a.State().AddServer("db-1", "us-1", "off")

	out, _, err := runNimbus(t, "", "server", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "web-1")
	assert.Contains(t, out, "db-1")
	assert.Contains(t, out, "ubuntu 24.04")
}

func TestServerListFilter(t *testing.T) {
	a := startMock(t)
	a.State().AddServer("web-1", "eu-1", "on")
	a.State().AddServer("db-1", "us-1", "off")

	out, _, err := runNimbus(t, "", "server", "list", "--filter", "status:on")
	require.NoError(t, err)

	assert.Contains(t, out, "web-1")
	assert.NotContains(t, out, "db-1")
}

func TestServerListJSON(t *testing.T) {
	a := startMock(t)
	a.State().AddServer("web-1", "eu-1", "on")

	out, _, err := runNimbus(t, "", "server", "list", "-o", "json")
	require.NoError(t, err)

	assert.Contains(t, out, `"web-1"`)
	assert.Contains(t, out, `"servers"`)
}

func TestInvalidOutputFormatFailsBeforeRequest(t *testing.T) {
	a := startMock(t)

	_, _, err := runNimbus(t, "", "server", "list", "-o", "bogus")
	require.Error(t, err)
	assert.Zero(t, a.Requests, "validation must fail before any API call")
}

func TestInvalidOutputFormatFromEnv(t *testing.T) {
	a := startMock(t)
	t.Setenv(config.EnvOutput, "bogus")

	_, _, err := runNimbus(t, "", "server", "list")
	require.Error(t, err)
	assert.Zero(t, a.Requests)
}

func TestServerGetStatus(t *testing.T) {
	a := startMock(t)
	srv := a.State().AddServer("web-1", "eu-1", "off")

	out, _, err := runNimbus(t, "", "server", "get", strconv.Itoa(srv.ID), "--status")
	assert.ErrorIs(t, err, ErrSilent)
	assert.Equal(t, "off\n", out)

	a.State().DoAction(srv.ID, "start")
	out, _, err = runNimbus(t, "", "server", "get", strconv.Itoa(srv.ID), "--status")
	require.NoError(t, err)
	assert.Equal(t, "on\n", out)
}

func TestServerCreate(t *testing.T) {
	a := startMock(t)

	out, _, err := runNimbus(t, "",
		"server", "create", "--name", "web-9", "--os-id", "79", "--preset-id", "5")
	require.NoError(t, err)

	servers := a.State().ListServers()
	require.Len(t, servers, 1)
	assert.Equal(t, "web-9", servers[0].Name)
	assert.Equal(t, strconv.Itoa(servers[0].ID)+"\n", out)
}

func TestServerStart(t *testing.T) {
	a := startMock(t)
	srv := a.State().AddServer("web-1", "eu-1", "off")

	out, _, err := runNimbus(t, "", "server", "start", strconv.Itoa(srv.ID))
	require.NoError(t, err)
	assert.Contains(t, out, strconv.Itoa(srv.ID))

	got, ok := a.State().GetServer(srv.ID)
	require.True(t, ok)
	assert.Equal(t, "on", got.Status)
}

func TestServerRemoveAsksForConfirmation(t *testing.T) {
	a := startMock(t)
	srv := a.State().AddServer("web-1", "eu-1", "on")

	out, _, err := runNimbus(t, "n\n", "server", "remove", strconv.Itoa(srv.ID))
	require.Error(t, err)
	assert.Contains(t, out, "[y/N]")
	assert.Zero(t, a.Requests, "a declined prompt must not reach the API")
	assert.Len(t, a.State().ListServers(), 1)
}

func TestServerRemoveBulkContinuesOnError(t *testing.T) {
	a := startMock(t)
	one := a.State().AddServer("web-1", "eu-1", "on")
	two := a.State().AddServer("web-2", "eu-1", "on")

	// The middle ID does not exist. Its failure must not stop the rest.
	_, stderr, err := runNimbus(t, "",
		"server", "remove", "-y", strconv.Itoa(one.ID), "999", strconv.Itoa(two.ID))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to remove 1 of 3")
	assert.Contains(t, stderr, "999")
	assert.Empty(t, a.State().ListServers(), "surviving IDs must still be removed")
}

func TestServerStartWaitPollsUntilOn(t *testing.T) {
	a := startMock(t)
	srv := a.State().AddServer("web-1", "eu-1", "off")
	a.State().ScriptServerStatus(srv.ID, "off", "off", "on")

	old := waitInterval
	waitInterval = 10 * time.Millisecond
	t.Cleanup(func() { waitInterval = old })

	out, _, err := runNimbus(t, "", "server", "start", strconv.Itoa(srv.ID), "--wait")
	require.NoError(t, err)
	assert.Contains(t, out, strconv.Itoa(srv.ID))

	// One action request plus one status poll per scripted entry.
	assert.Equal(t, 4, a.Requests)
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runNimbus(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, api.Version)
	assert.Contains(t, out, runtime.GOOS)
}

func TestAuthErrorSurfaced(t *testing.T) {
	startMock(t)
	t.Setenv(config.EnvToken, "wrong-token")

	_, _, err := runNimbus(t, "", "server", "list")
	require.Error(t, err)
	assert.True(t, api.IsAuthError(err))
}

func TestSSHKeyAddFromFile(t *testing.T) {
	a := startMock(t)

	path := filepath.Join(t.TempDir(), "id_ed25519.pub")
	require.NoError(t, os.WriteFile(path, []byte("ssh-ed25519 AAAAC3Nza alice@laptop\n"), 0o600))

	_, _, err := runNimbus(t, "", "ssh-key", "add", path)
	require.NoError(t, err)

	keys := a.State().ListSSHKeys()
	require.Len(t, keys, 1)
	assert.Equal(t, "alice@laptop", keys[0].Name, "name defaults to the key comment")
	assert.Equal(t, "ssh-ed25519 AAAAC3Nza alice@laptop", keys[0].Body)
}

func TestSSHKeyAddWithoutCommentNeedsName(t *testing.T) {
	a := startMock(t)

	_, _, err := runNimbus(t, "", "ssh-key", "add", "ssh-rsa AAAAB3Nza")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--name")
	assert.Empty(t, a.State().ListSSHKeys())

	_, _, err = runNimbus(t, "", "ssh-key", "add", "ssh-rsa AAAAB3Nza", "--name", "deploy")
	require.NoError(t, err)

	keys := a.State().ListSSHKeys()
	require.Len(t, keys, 1)
	assert.Equal(t, "deploy", keys[0].Name)
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	_, err = parseID("forty-two")
	assert.Error(t, err)
}
