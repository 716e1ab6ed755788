package config_test

import (
	"testing"

	"github.com/pschiffmann/minic/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	l, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 1<<16, l.MaxProgramBytes)
	assert.Equal(t, 1<<16, l.MemoryBytes)
	assert.Equal(t, 4, l.PointerSize)
}

func TestLoadRespectsEnvOverride(t *testing.T) {
	t.Setenv("MINIC_POINTER_SIZE", "8")
	l, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 8, l.PointerSize)
}

func TestMachineConfigTranslation(t *testing.T) {
	l := config.Limits{MaxProgramBytes: 100, MemoryBytes: 200, PointerSize: 4}
	cfg := l.MachineConfig()
	assert.Equal(t, 100, cfg.MaxProgramBytes)
	assert.Equal(t, 200, cfg.MemoryBytes)
}
