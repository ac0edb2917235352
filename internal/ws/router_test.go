package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coderoomsgo/internal/protocol"
)

func TestDispatchUnknownAction(t *testing.T) {
	r := NewRouter()
	_, err := r.dispatch(&ConnContext{}, protocol.Envelope{Type: protocol.StartGame})
	assert.ErrorIs(t, err, errUnknownAction)
}

func TestDispatchDecodesTypedParams(t *testing.T) {
	r := NewRouter()

	var got protocol.JoinParams
	Register(r, protocol.Join, func(_ *ConnContext, _ protocol.Envelope, req protocol.JoinParams) bool {
		got = req
		return true
	})

	env := protocol.Envelope{
		Type:   protocol.Join,
		Params: json.RawMessage(`{"roomId":"r-1","userInfo":{"userId":"alice"}}`),
	}
	ok, err := r.dispatch(&ConnContext{}, env)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "r-1", got.RoomID)
	assert.Equal(t, "alice", got.UserInfo.UserID)
}

func TestDispatchRejectsMalformedParams(t *testing.T) {
	r := NewRouter()

	called := false
	Register(r, protocol.Join, func(_ *ConnContext, _ protocol.Envelope, _ protocol.JoinParams) bool {
		called = true
		return true
	})

	// wrong shape for the declared type
	_, err := r.dispatch(&ConnContext{}, protocol.Envelope{
		Type:   protocol.Join,
		Params: json.RawMessage(`{"roomId":123}`),
	})
	assert.Error(t, err)

	// required field missing
	_, err = r.dispatch(&ConnContext{}, protocol.Envelope{
		Type:   protocol.Join,
		Params: json.RawMessage(`{"roomId":"r-1"}`),
	})
	assert.Error(t, err)

	// params absent entirely on an action that requires them
	_, err = r.dispatch(&ConnContext{}, protocol.Envelope{Type: protocol.Join})
	assert.Error(t, err)

	assert.False(t, called, "handler must not run on a protocol error")
}

func TestDispatchIgnoresParamsForBareActions(t *testing.T) {
	r := NewRouter()

	Register(r, protocol.Ready, func(_ *ConnContext, _ protocol.Envelope, _ protocol.NoParams) bool {
		return true
	})

	ok, err := r.dispatch(&ConnContext{}, protocol.Envelope{Type: protocol.Ready})
	require.NoError(t, err)
	assert.True(t, ok)
}
