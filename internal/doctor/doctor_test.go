package doctor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bnema/waywake/internal/config"
)

func TestReportOK(t *testing.T) {
	tests := []struct {
		name   string
		checks []Check
		want   bool
	}{
		{
			name: "all required passing",
			checks: []Check{
				{Name: "a", OK: true, Required: true},
				{Name: "b", OK: true, Required: true},
			},
			want: true,
		},
		{
			name: "required failure",
			checks: []Check{
				{Name: "a", OK: true, Required: true},
				{Name: "b", OK: false, Required: true},
			},
			want: false,
		},
		{
			name: "informational failure does not count",
			checks: []Check{
				{Name: "a", OK: true, Required: true},
				{Name: "portal", OK: false, Required: false},
			},
			want: true,
		},
		{
			name: "empty report",
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Report{Checks: tt.checks}.OK())
		})
	}
}

func TestCheckSessionEnv(t *testing.T) {
	t.Run("missing runtime dir", func(t *testing.T) {
		t.Setenv("XDG_RUNTIME_DIR", "")
		t.Setenv("WAYLAND_DISPLAY", "wayland-1")

		c := checkSessionEnv(config.DefaultConfig())
		assert.False(t, c.OK)
		assert.Contains(t, c.Detail, "XDG_RUNTIME_DIR")
	})

	t.Run("missing display", func(t *testing.T) {
		t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
		t.Setenv("WAYLAND_DISPLAY", "")

		c := checkSessionEnv(config.DefaultConfig())
		assert.False(t, c.OK)
		assert.Contains(t, c.Detail, "WAYLAND_DISPLAY")
	})

	t.Run("display from environment", func(t *testing.T) {
		t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
		t.Setenv("WAYLAND_DISPLAY", "wayland-1")

		c := checkSessionEnv(config.DefaultConfig())
		assert.True(t, c.OK)
		assert.Equal(t, "display wayland-1", c.Detail)
	})

	t.Run("configured display wins", func(t *testing.T) {
		t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
		t.Setenv("WAYLAND_DISPLAY", "")

		cfg := config.DefaultConfig()
		cfg.Wayland.Display = "wayland-7"
		c := checkSessionEnv(cfg)
		assert.True(t, c.OK)
		assert.Equal(t, "display wayland-7", c.Detail)
	})
}
