package cli_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corraldev/corral/internal/cli"
	"github.com/corraldev/corral/internal/testutil"
	"github.com/corraldev/corral/pkg/client"
)

// runCtl executes corralctl against the given daemon socket and returns
// captured stdout.
func runCtl(t *testing.T, socket string, args ...string) (string, error) {
	t.Helper()

	cmd := cli.RootCmd()

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--socket", socket}, args...))

	err := cmd.Execute()

	return stdout.String(), err
}

func TestCLIRoundTrip(t *testing.T) {
	socket := testutil.StartDaemon(t)

	_, err := runCtl(t, socket, "create", "test")
	require.NoError(t, err)

	knobs := testutil.Knobs()

	for _, knob := range knobs {
		_, err := runCtl(
			t,
			socket,
			"set", "test", knob.Key, knob.ExpectedValue(),
		)
		require.NoError(t, err, "set %s", knob.Key)
	}

	for _, knob := range knobs {
		out, err := runCtl(t, socket, "get", "test", knob.Key)
		require.NoError(t, err)
		assert.Equal(t, knob.ExpectedValue()+"\n", out, "get %s", knob.Key)
	}
}

func TestCrossInterfaceConsistency(t *testing.T) {
	socket := testutil.StartDaemon(t)

	c, err := client.Connect(socket, 10*time.Second)
	require.NoError(t, err)
	defer c.Close()

	entity, err := c.Create("test")
	require.NoError(t, err)

	// Set via API, read via CLI.
	require.NoError(t, entity.SetProperty("cpu_limit", "0.9c"))
	require.NoError(t, entity.SetProperty("respawn", false))

	out, err := runCtl(t, socket, "get", "test", "cpu_limit")
	require.NoError(t, err)
	assert.Equal(t, "0.9c\n", out)

	out, err = runCtl(t, socket, "get", "test", "respawn")
	require.NoError(t, err)
	assert.Equal(t, "false\n", out)

	// Set via CLI, read via API.
	_, err = runCtl(t, socket, "set", "test", "hostname", "cli.local")
	require.NoError(t, err)

	value, err := entity.GetProperty("hostname")
	require.NoError(t, err)
	assert.Equal(t, "cli.local", value)
}

func TestCLIListAndDestroy(t *testing.T) {
	socket := testutil.StartDaemon(t)

	for _, name := range []string{"beta", "alpha"} {
		_, err := runCtl(t, socket, "create", name)
		require.NoError(t, err)
	}

	out, err := runCtl(t, socket, "list")
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta\n", out)

	_, err = runCtl(t, socket, "destroy", "alpha")
	require.NoError(t, err)

	out, err = runCtl(t, socket, "list")
	require.NoError(t, err)
	assert.Equal(t, "beta\n", out)
}

func TestCLIReloadDiscard(t *testing.T) {
	socket := testutil.StartDaemon(t)

	_, err := runCtl(t, socket, "create", "test")
	require.NoError(t, err)

	_, err = runCtl(t, socket, "reload", "--discard")
	require.NoError(t, err)

	_, err = runCtl(t, socket, "get", "test", "cpu_limit")
	assert.Error(t, err)
}

func TestCLIRejectsMalformedValue(t *testing.T) {
	socket := testutil.StartDaemon(t)

	_, err := runCtl(t, socket, "create", "test")
	require.NoError(t, err)

	_, err = runCtl(t, socket, "set", "test", "memory_limit", "lots")
	assert.Error(t, err)

	_, err = runCtl(t, socket, "set", "test", "no_such_knob", "1")
	assert.Error(t, err)
}
