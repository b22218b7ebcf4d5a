package cli

import (
	"errors"
	"os"
	"testing"

	"github.com/bindpatch/bindpatch/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/xyproto/env/v2"
)

// setLayoutEnv sets the layout environment variable for the test. The env
// package caches the environment, so the cache is reloaded after setting and
// after restoring the variable.
func setLayoutEnv(t *testing.T, value string) {
	t.Helper()

	t.Cleanup(func() { env.Load() })
	t.Setenv(LayoutEnv, value)
	env.Load()
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want options.Program
	}{
		{
			name: "export only",
			args: []string{"prog", "-layout", "game.yaml", "-export", "keys.yaml", "game.exe"},
			want: options.Program{
				Parameters: options.Parameters{Input: "game.exe", Layout: "game.yaml", Export: "keys.yaml"},
			},
		},
		{
			name: "apply bindings",
			args: []string{"prog", "-layout", "game.yaml", "-bindings", "keys.yaml", "-o", "out.exe", "-verify", "game.exe"},
			want: options.Program{
				Parameters: options.Parameters{Input: "game.exe", Output: "out.exe", Layout: "game.yaml", Bindings: "keys.yaml"},
				Flags:      options.Flags{Verify: true},
			},
		},
		{
			name: "input flag",
			args: []string{"prog", "-layout", "game.yaml", "-i", "game.exe", "-dry-run", "-q"},
			want: options.Program{
				Parameters: options.Parameters{Input: "game.exe", Layout: "game.yaml"},
				Flags:      options.Flags{DryRun: true, Quiet: true},
			},
		},
		{
			name: "batch",
			args: []string{"prog", "-layout", "game.yaml", "-bindings", "keys.yaml", "-batch", "*.exe"},
			want: options.Program{
				Parameters: options.Parameters{Layout: "game.yaml", Bindings: "keys.yaml", Batch: "*.exe"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			t.Cleanup(func() { os.Args = oldArgs })
			setLayoutEnv(t, "")

			os.Args = tt.args

			got, err := ParseFlags()
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFlagsLayoutFromEnvironment(t *testing.T) {
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	setLayoutEnv(t, "env.yaml")

	os.Args = []string{"prog", "game.exe"}
	got, err := ParseFlags()
	assert.NoError(t, err)
	assert.Equal(t, "env.yaml", got.Layout)
}

func TestParseFlagsUsage(t *testing.T) {
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })

	setLayoutEnv(t, "")

	os.Args = []string{"prog", "-layout", "game.yaml"}
	_, err := ParseFlags()
	var usageErr *UsageError
	assert.True(t, errors.As(err, &usageErr))

	os.Args = []string{"prog", "-layout", "game.yaml", "game.exe", "-q"}
	_, err = ParseFlags()
	assert.True(t, errors.As(err, &usageErr))
}

func TestValidateOptionCombinations(t *testing.T) {
	tests := []struct {
		name        string
		opts        options.Program
		expectError bool
	}{
		{
			name: "layout only",
			opts: options.Program{Parameters: options.Parameters{Layout: "game.yaml"}},
		},
		{
			name:        "missing layout",
			opts:        options.Program{},
			expectError: true,
		},
		{
			name: "batch with output",
			opts: options.Program{
				Parameters: options.Parameters{Layout: "game.yaml", Batch: "*.exe", Output: "out.exe"},
			},
			expectError: true,
		},
		{
			name: "batch with export",
			opts: options.Program{
				Parameters: options.Parameters{Layout: "game.yaml", Batch: "*.exe", Export: "keys.yaml"},
			},
			expectError: true,
		},
		{
			name: "verify without patching",
			opts: options.Program{
				Parameters: options.Parameters{Layout: "game.yaml"},
				Flags:      options.Flags{Verify: true},
			},
			expectError: true,
		},
		{
			name: "batch verify without bindings",
			opts: options.Program{
				Parameters: options.Parameters{Layout: "game.yaml", Batch: "*.exe"},
				Flags:      options.Flags{Verify: true},
			},
			expectError: true,
		},
		{
			name: "batch verify with bindings",
			opts: options.Program{
				Parameters: options.Parameters{Layout: "game.yaml", Batch: "*.exe", Bindings: "keys.yaml"},
				Flags:      options.Flags{Verify: true},
			},
		},
		{
			name: "verify with bindings",
			opts: options.Program{
				Parameters: options.Parameters{Layout: "game.yaml", Bindings: "keys.yaml"},
				Flags:      options.Flags{Verify: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateOptionCombinations(tt.opts)
			if tt.expectError {
				assert.True(t, err != nil)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
