package daemon_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corraldev/corral/internal/apierror"
	"github.com/corraldev/corral/internal/testutil"
	"github.com/corraldev/corral/pkg/client"
)

const testTimeout = 10 * time.Second

func TestPropertyRoundTrip(t *testing.T) {
	socket := testutil.StartDaemon(t)

	c, err := client.Connect(socket, testTimeout)
	require.NoError(t, err)
	defer c.Close()

	entity, err := c.Create("test")
	require.NoError(t, err)

	knobs := testutil.Knobs()

	for _, knob := range knobs {
		require.NoError(
			t,
			entity.SetProperty(knob.Key, knob.Value),
			"set %s to %v", knob.Key, knob.Value,
		)
	}

	for _, knob := range knobs {
		value, err := entity.GetProperty(knob.Key)
		require.NoError(t, err)
		assert.Equal(t, knob.ExpectedValue(), value, "get %s", knob.Key)
	}

	// A reload must preserve the entity and every property.
	require.NoError(t, c.Reload(false))

	c2, err := client.Connect(socket, testTimeout)
	require.NoError(t, err)
	defer c2.Close()

	entity, err = c2.Find("test")
	require.NoError(t, err)

	for _, knob := range knobs {
		value, err := entity.GetProperty(knob.Key)
		require.NoError(t, err)
		assert.Equal(
			t,
			knob.ExpectedValue(),
			value,
			"get %s after reload", knob.Key,
		)
	}

	require.NoError(t, entity.Destroy())
}

func TestNetVariants(t *testing.T) {
	socket := testutil.StartDaemon(t)

	c, err := client.Connect(socket, testTimeout)
	require.NoError(t, err)
	defer c.Close()

	entity, err := c.Create("test")
	require.NoError(t, err)

	// Another property set up front must stay untouched by net changes.
	require.NoError(t, entity.SetProperty("hostname", "steady.local"))

	for _, variant := range testutil.NetVariants() {
		require.NoError(
			t,
			entity.SetProperty("net", variant),
			"set net to %q", variant,
		)

		value, err := entity.GetProperty("net")
		require.NoError(t, err)
		assert.Equal(t, variant, value)

		hostname, err := entity.GetProperty("hostname")
		require.NoError(t, err)
		assert.Equal(t, "steady.local", hostname)
	}
}

func TestConcreteScenarios(t *testing.T) {
	socket := testutil.StartDaemon(t)

	c, err := client.Connect(socket, testTimeout)
	require.NoError(t, err)
	defer c.Close()

	entity, err := c.Create("test")
	require.NoError(t, err)

	require.NoError(t, entity.SetProperty("cpu_limit", "0.9c"))

	value, err := entity.GetProperty("cpu_limit")
	require.NoError(t, err)
	assert.Equal(t, "0.9c", value)

	require.NoError(t, entity.SetProperty("respawn", false))

	respawn, err := entity.GetPropertyBool("respawn")
	require.NoError(t, err)
	assert.False(t, respawn)
}

func TestDiscardReloadResetsState(t *testing.T) {
	socket := testutil.StartDaemon(t)

	c, err := client.Connect(socket, testTimeout)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Create("test")
	require.NoError(t, err)

	require.NoError(t, c.Reload(true))

	_, err = c.Find("test")
	assert.True(
		t,
		apierror.IsCode(err, apierror.ContainerDoesNotExist),
		"expected ContainerDoesNotExist, got %v", err,
	)

	names, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestErrors(t *testing.T) {
	socket := testutil.StartDaemon(t)

	c, err := client.Connect(socket, testTimeout)
	require.NoError(t, err)
	defer c.Close()

	entity, err := c.Create("test")
	require.NoError(t, err)

	scenarios := map[string]struct {
		run  func() error
		code apierror.Code
	}{
		"create duplicate": {
			run: func() error {
				_, err := c.Create("test")
				return err
			},
			code: apierror.ContainerAlreadyExists,
		},
		"find missing": {
			run: func() error {
				_, err := c.Find("missing")
				return err
			},
			code: apierror.ContainerDoesNotExist,
		},
		"destroy missing": {
			run:  func() error { return c.Destroy("missing") },
			code: apierror.ContainerDoesNotExist,
		},
		"set unknown property": {
			run:  func() error { return entity.SetProperty("no_such_knob", "1") },
			code: apierror.InvalidProperty,
		},
		"set read-only property": {
			run:  func() error { return entity.SetProperty("state", "running") },
			code: apierror.InvalidProperty,
		},
		"set malformed value": {
			run:  func() error { return entity.SetProperty("memory_limit", "lots") },
			code: apierror.InvalidValue,
		},
		"set malformed net": {
			run:  func() error { return entity.SetProperty("net", "bogus eth0") },
			code: apierror.InvalidValue,
		},
		"get unknown property": {
			run: func() error {
				_, err := entity.GetProperty("no_such_knob")
				return err
			},
			code: apierror.InvalidProperty,
		},
		"invalid container name": {
			run: func() error {
				_, err := c.Create("not/a/name")
				return err
			},
			code: apierror.InvalidValue,
		},
	}

	for scenario, data := range scenarios {
		t.Run(scenario, func(t *testing.T) {
			err := data.run()
			assert.True(
				t,
				apierror.IsCode(err, data.code),
				"expected %s, got %v", data.code, err,
			)
		})
	}
}

func TestFailedSetLeavesPreviousValue(t *testing.T) {
	socket := testutil.StartDaemon(t)

	c, err := client.Connect(socket, testTimeout)
	require.NoError(t, err)
	defer c.Close()

	entity, err := c.Create("test")
	require.NoError(t, err)

	require.NoError(t, entity.SetProperty("cpu_limit", "0.9c"))
	require.Error(t, entity.SetProperty("cpu_limit", "0.9x"))

	value, err := entity.GetProperty("cpu_limit")
	require.NoError(t, err)
	assert.Equal(t, "0.9c", value)
}

func TestDefaults(t *testing.T) {
	socket := testutil.StartDaemon(t)

	c, err := client.Connect(socket, testTimeout)
	require.NoError(t, err)
	defer c.Close()

	entity, err := c.Create("test")
	require.NoError(t, err)

	scenarios := map[string]string{
		"net":           "inherited",
		"cpu_policy":    "normal",
		"virt_mode":     "app",
		"respawn":       "false",
		"isolate":       "true",
		"state":         "stopped",
		"absolute_name": "/corral/test",
	}

	for key, expected := range scenarios {
		value, err := entity.GetProperty(key)
		require.NoError(t, err)
		assert.Equal(t, expected, value, "default of %s", key)
	}
}

func TestVersion(t *testing.T) {
	socket := testutil.StartDaemon(t)

	c, err := client.Connect(socket, testTimeout)
	require.NoError(t, err)
	defer c.Close()

	version, err := c.Version()
	require.NoError(t, err)
	assert.NotEmpty(t, version)
}
