package notify

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndRemove(t *testing.T) {
	reg := NewRegistry()
	addr := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9999}

	reg.Register("device-1", addr)
	reg.Register("device-2", addr)
	require.Len(t, reg.Snapshot(), 2)

	// re-registering the same token updates in place
	reg.Register("device-1", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8888})
	require.Len(t, reg.Snapshot(), 2)

	reg.Remove("device-1")
	snap := reg.Snapshot()
	require.Len(t, snap, 1)
	require.Equal(t, "device-2", snap[0].Token)
}

func TestRegistryIgnoresInvalidInput(t *testing.T) {
	reg := NewRegistry()
	reg.Register("", &net.UDPAddr{})
	reg.Register("token", nil)
	require.Empty(t, reg.Snapshot())
}

func TestParseRegisterMessage(t *testing.T) {
	msg, err := parseRegisterMessage([]byte(`{"type":"register","token":"abc"}`))
	require.NoError(t, err)
	require.Equal(t, RegisterMessageType, msg.Type)
	require.Equal(t, "abc", msg.Token)

	_, err = parseRegisterMessage([]byte(`{"type":"register"}`))
	require.Error(t, err)

	_, err = parseRegisterMessage([]byte(`garbage`))
	require.Error(t, err)
}
