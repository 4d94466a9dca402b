package wayland

import (
	"testing"

	"github.com/neurlang/wayland/wl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/waywake/internal/wayland/idleinhibit"
)

func wlGlobalEvent(iface string, version uint32) wl.RegistryGlobalEvent {
	return wl.RegistryGlobalEvent{Interface: iface, Version: version}
}

func requiredGlobals() map[string]uint32 {
	return map[string]uint32{
		"wl_compositor":              compositorVersion,
		idleinhibit.ManagerInterface: idleInhibitVersion,
	}
}

func TestBinderOffer(t *testing.T) {
	tests := []struct {
		name     string
		iface    string
		version  uint32
		wantBind bool
		wantErr  error
	}{
		{
			name:     "matching interface binds",
			iface:    "wl_compositor",
			version:  1,
			wantBind: true,
		},
		{
			name:     "higher advertised version binds at requested version",
			iface:    idleinhibit.ManagerInterface,
			version:  4,
			wantBind: true,
		},
		{
			name:     "unknown interface ignored",
			iface:    "wl_output",
			version:  3,
			wantBind: false,
		},
		{
			name:    "advertised version below requested fails",
			iface:   idleinhibit.ManagerInterface,
			version: 0,
			wantErr: ErrVersionTooOld,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBinder(requiredGlobals())

			bind, err := b.offer(tt.iface, tt.version)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBind, bind)
		})
	}
}

func TestBinderFirstMatchWins(t *testing.T) {
	b := newBinder(requiredGlobals())

	bind, err := b.offer("wl_compositor", 1)
	require.NoError(t, err)
	require.True(t, bind)

	// A second advertisement of the same interface is ignored.
	bind, err = b.offer("wl_compositor", 5)
	require.NoError(t, err)
	assert.False(t, bind)
}

func TestBinderMissing(t *testing.T) {
	b := newBinder(requiredGlobals())
	assert.Equal(t, []string{"wl_compositor", idleinhibit.ManagerInterface}, b.missing())

	_, err := b.offer(idleinhibit.ManagerInterface, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"wl_compositor"}, b.missing())

	_, err = b.offer("wl_compositor", 1)
	require.NoError(t, err)
	assert.Empty(t, b.missing())
}

func TestVerifyBound(t *testing.T) {
	t.Run("all globals bound", func(t *testing.T) {
		s := &Session{binder: newBinder(requiredGlobals())}
		for iface := range requiredGlobals() {
			_, err := s.binder.offer(iface, 1)
			require.NoError(t, err)
		}

		require.NoError(t, s.verifyBound())
	})

	t.Run("compositor without idle inhibit protocol", func(t *testing.T) {
		s := &Session{binder: newBinder(requiredGlobals())}
		_, err := s.binder.offer("wl_compositor", 1)
		require.NoError(t, err)

		err = s.verifyBound()
		require.ErrorIs(t, err, ErrMissingGlobal)
		assert.Contains(t, err.Error(), idleinhibit.ManagerInterface)
	})

	t.Run("nothing advertised", func(t *testing.T) {
		s := &Session{binder: newBinder(requiredGlobals())}

		err := s.verifyBound()
		require.ErrorIs(t, err, ErrMissingGlobal)
		assert.Contains(t, err.Error(), "wl_compositor")
		assert.Contains(t, err.Error(), idleinhibit.ManagerInterface)
	})

	t.Run("recorded version error wins", func(t *testing.T) {
		s := &Session{binder: newBinder(requiredGlobals())}
		_, err := s.binder.offer(idleinhibit.ManagerInterface, 0)
		require.Error(t, err)
		s.bindErr = err

		require.ErrorIs(t, s.verifyBound(), ErrVersionTooOld)
	})
}

func TestGlobalRecorderKeepsFirstVersion(t *testing.T) {
	rec := &globalRecorder{globals: make(map[string]uint32)}
	rec.HandleRegistryGlobal(wlGlobalEvent("wl_seat", 7))
	rec.HandleRegistryGlobal(wlGlobalEvent("wl_seat", 9))
	rec.HandleRegistryGlobal(wlGlobalEvent(idleinhibit.ManagerInterface, 1))

	assert.Equal(t, map[string]uint32{
		"wl_seat":                    7,
		idleinhibit.ManagerInterface: 1,
	}, rec.globals)
}
