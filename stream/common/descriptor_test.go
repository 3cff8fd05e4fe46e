package common

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

// TestParseDescriptor tests the resolution rules for all valid descriptor forms
func TestParseDescriptor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		address string
		role    SocketRole
		mode    BindMode
	}{
		// publish family
		{"pub default", "tcp://127.0.0.1:5555 PUB", "tcp://127.0.0.1:5555", RolePublish, ModeBind},
		{"pub connect", "tcp://127.0.0.1:5555 PUB CONNECT", "tcp://127.0.0.1:5555", RolePublish, ModeConnect},
		{"pub connect wildcard", "tcp://*:5555 PUB CONNECT", "tcp://*:5555", RolePublish, ModeBind},
		{"publish synonym", "tcp://127.0.0.1:5555 PUBLISH BIND", "tcp://127.0.0.1:5555", RolePublish, ModeBind},
		{"sub synonym", "tcp://127.0.0.1:5555 SUB", "tcp://127.0.0.1:5555", RolePublish, ModeBind},

		// push family
		{"push default", "tcp://192.168.1.5:5555 PUSH", "tcp://192.168.1.5:5555", RolePush, ModeConnect},
		{"push bind", "tcp://*:5556 PUSH BIND", "tcp://*:5556", RolePush, ModeBind},
		{"push wildcard", "tcp://*:5556 PUSH", "tcp://*:5556", RolePush, ModeBind},
		{"push explicit connect", "tcp://10.0.0.1:5556 PUSH CONNECT", "tcp://10.0.0.1:5556", RolePush, ModeConnect},
		{"pull synonym", "tcp://10.0.0.1:5556 PULL", "tcp://10.0.0.1:5556", RolePush, ModeConnect},

		// no type token
		{"wildcard only", "tcp://*:5555", "tcp://*:5555", RolePublish, ModeBind},
		{"address only", "tcp://10.0.0.1:5555", "tcp://10.0.0.1:5555", RolePush, ModeConnect},
		{"bind in type position", "tcp://10.0.0.1:5555 BIND", "tcp://10.0.0.1:5555", RolePush, ModeBind},
		{"connect in type position", "tcp://10.0.0.1:5555 CONNECT", "tcp://10.0.0.1:5555", RolePush, ModeConnect},
		{"wildcard with connect", "tcp://*:5555 CONNECT", "tcp://*:5555", RolePublish, ModeBind},

		// token order and case
		{"swapped tokens", "tcp://10.0.0.1:5555 BIND PUSH", "tcp://10.0.0.1:5555", RolePush, ModeBind},
		{"lower case", "ipc:///tmp/frames push bind", "ipc:///tmp/frames", RolePush, ModeBind},
		{"extra whitespace", "  tcp://*:5555\tPUB   BIND ", "tcp://*:5555", RolePublish, ModeBind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDescriptor(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.address, d.Address)
			assert.Equal(t, tt.role, d.Role, "role")
			assert.Equal(t, tt.mode, d.Mode, "mode")
		})
	}
}

// TestParseDescriptorErrors tests that malformed descriptors are configuration errors
func TestParseDescriptorErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		token string
	}{
		{"empty", "", ""},
		{"blank", "   ", ""},
		{"unknown type", "tcp://*:5555 DEALER", "DEALER"},
		{"unknown type with mode", "tcp://*:5555 ROUTER BIND", "ROUTER"},
		{"too many tokens", "tcp://*:5555 PUB BIND NOW", "NOW"},
		{"missing transport", "127.0.0.1:5555 PUSH", "127.0.0.1:5555"},
		{"empty endpoint", "tcp:// PUSH", "tcp://"},
		{"duplicate mode", "tcp://*:5555 BIND CONNECT", "CONNECT"},
		{"duplicate type", "tcp://*:5555 PUB PUSH", "PUSH"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDescriptor(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)

			var descErr *DescriptorError
			require.True(t, errors.As(err, &descErr))
			assert.Equal(t, tt.token, descErr.Token)
			assert.Equal(t, tt.input, descErr.Input)
		})
	}
}

// TestDescriptorString tests the canonical rendering
func TestDescriptorString(t *testing.T) {
	d, err := ParseDescriptor("tcp://*:5555")
	require.NoError(t, err)
	assert.Equal(t, "tcp://*:5555 PUB BIND", d.String())
	assert.Equal(t, "tcp", d.Scheme())
	assert.True(t, d.Binds())

	d, err = ParseDescriptor("tcp://192.168.1.5:5555 PUSH")
	require.NoError(t, err)
	assert.Equal(t, "tcp://192.168.1.5:5555 PUSH CONNECT", d.String())
	assert.False(t, d.Binds())
}
