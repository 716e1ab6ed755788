// Package config loads the environment-configurable limits the CLI applies
// to the compiler and VM. Library callers of lang/parser and lang/machine
// never touch this package -- they construct their own parser.Parse
// pointerSize argument and machine.Config directly, keeping the env-var
// dependency confined to the cmd/minic boundary.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"

	"github.com/pschiffmann/minic/lang/machine"
)

// Limits bounds what the CLI will accept, read from the process
// environment via struct tags. The defaults mirror the specification's
// stated limits: a 2^16-byte program image, a 2^16-byte memory buffer, and
// a 4-byte (32-bit) default pointer size.
type Limits struct {
	MaxProgramBytes int `env:"MINIC_MAX_PROGRAM_BYTES" envDefault:"65536"`
	MemoryBytes     int `env:"MINIC_MEMORY_BYTES" envDefault:"65536"`
	PointerSize     int `env:"MINIC_POINTER_SIZE" envDefault:"4"`
}

// Load reads Limits from the environment, applying the defaults above for
// any variable that is unset.
func Load() (Limits, error) {
	var l Limits
	if err := env.Parse(&l); err != nil {
		return Limits{}, fmt.Errorf("config: %w", err)
	}
	return l, nil
}

// MachineConfig translates l into the machine.Config the VM constructor
// expects.
func (l Limits) MachineConfig() machine.Config {
	return machine.Config{MaxProgramBytes: l.MaxProgramBytes, MemoryBytes: l.MemoryBytes}
}
