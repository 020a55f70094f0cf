package protocol_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corraldev/corral/internal/apierror"
	"github.com/corraldev/corral/internal/protocol"
)

func TestErrorRoundTrip(t *testing.T) {
	resp := protocol.ErrorResponse(apierror.New(
		apierror.InvalidValue,
		"bad value",
	))

	require.NotNil(t, resp.Error)
	assert.Equal(t, int32(apierror.InvalidValue), resp.Error.Code)
	assert.Equal(t, "bad value", resp.Error.Message)

	err := resp.Err()
	assert.True(t, apierror.IsCode(err, apierror.InvalidValue))
}

func TestPlainErrorMapsToUnknown(t *testing.T) {
	resp := protocol.ErrorResponse(errors.New("boom"))

	require.NotNil(t, resp.Error)
	assert.Equal(t, int32(apierror.Unknown), resp.Error.Code)
	assert.Equal(t, "boom", resp.Error.Message)
}

func TestSuccessHasNoError(t *testing.T) {
	resp := protocol.Response{Value: "0.9c"}
	assert.NoError(t, resp.Err())
}
