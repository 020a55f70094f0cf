package enforce_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corraldev/corral/internal/enforce"
)

func TestResources(t *testing.T) {
	res, err := enforce.Resources(map[string]string{
		"memory_limit":     "268435456",
		"memory_guarantee": "33554432",
		"cpu_limit":        "0.9c",
		"cpu_guarantee":    "0.5c",
		"cpu_set":          "1-2,4",
		"ulimit":           "nproc: 20480 30720; nofile: 1024 1024",
	})
	require.NoError(t, err)

	require.NotNil(t, res.Memory)
	assert.Equal(t, int64(268435456), *res.Memory.Limit)
	assert.Equal(t, int64(33554432), *res.Memory.Reservation)

	require.NotNil(t, res.CPU)
	assert.Equal(t, int64(90000), *res.CPU.Quota)
	assert.Equal(t, uint64(100000), *res.CPU.Period)
	assert.Equal(t, uint64(512), *res.CPU.Shares)
	assert.Equal(t, "1-2,4", res.CPU.Cpus)

	require.NotNil(t, res.Pids)
	assert.Equal(t, int64(30720), res.Pids.Limit)
}

func TestResourcesUnlimited(t *testing.T) {
	res, err := enforce.Resources(map[string]string{
		"memory_limit": "0",
		"cpu_limit":    "0c",
	})
	require.NoError(t, err)

	assert.Nil(t, res.Memory)
	assert.Nil(t, res.CPU)
	assert.Nil(t, res.Pids)
}

func TestResourcesRejectsMalformed(t *testing.T) {
	_, err := enforce.Resources(map[string]string{"memory_limit": "lots"})
	assert.Error(t, err)
}

func TestIsResourceKey(t *testing.T) {
	assert.True(t, enforce.IsResourceKey("memory_limit"))
	assert.True(t, enforce.IsResourceKey("cpu_set"))
	assert.False(t, enforce.IsResourceKey("hostname"))
}
