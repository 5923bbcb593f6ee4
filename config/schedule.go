// Package config holds the "schedule": the versioned, immutable bundle of
// gas costs, resource limits, and feature toggles of spec.md §3/§4.I. It is
// grounded on two teacher idioms: core/data_gastable.go's versioned literal
// gas-table values (DefaultHomeSteadGasTable, DefaultGasRepriceGasTable,
// DefaultDiehardGasTable — one struct literal per protocol version), and
// params/defaults.go's load-from-file-with-code-fallback pattern, adapted
// from JSON genesis files to the declarative TOML file spec.md §6 calls for.
package config

import (
	"fmt"
	"os"

	"github.com/naoina/toml"

	"github.com/dusk-network/rusk-vm/vmerrors"
)

// Version identifies a schedule revision. The compiled-module cache keys on
// (digest, Version) per spec.md §4.B: "reusing a compiled module across
// schedule versions is unsound because instrumentation differs."
type Version uint32

// CurrentVersion is the schedule version produced by Default().
const CurrentVersion Version = 1

// Schedule is the config/"schedule" bundle of spec.md §3.
type Schedule struct {
	Version Version

	// RegularOpCost is the flat per-instruction charge for any opcode not
	// listed in PerOpCost (spec.md §3 "regular op cost").
	RegularOpCost uint64
	// MemoryGrowCost is charged per page grown by memory.grow, on top of
	// RegularOpCost (spec.md §3 "memory-grow cost"; §4.B step 4 "grow_memory
	// surcharge").
	MemoryGrowCost uint64
	// MaxStackHeight bounds both the WASM value stack (stack-height
	// limiter injected at compile time, spec.md §4.B step 5) and the call
	// frame stack (spec.md §3 "bounded by the configured max stack height
	// of the engine").
	MaxStackHeight uint32
	// MaxTableSize is the cap on a module's single allowed table's initial
	// size (spec.md §4.B step 3).
	MaxTableSize uint32
	// MaxMemoryPages bounds how far a linear memory may grow (spec.md §4.F:
	// "auto-grow the linear memory (by whole pages) up to max_memory_pages").
	MaxMemoryPages uint32
	// ForbidFloats, when true, rejects any module declaring a float-typed
	// global/local/param/result (spec.md §4.B step 2, the "no-floats law"
	// of §8).
	ForbidFloats bool

	// PerOpCost overrides RegularOpCost for specific opcode mnemonics
	// (spec.md §3 "per-instruction-type cost map"; §9 "the schedule's
	// per_type_op_cost map is the authoritative input").
	PerOpCost map[string]uint64

	// BaseHostCallCost is the minimum charge for crossing the host/guest
	// boundary through any host import (spec.md §4.G: "must charge at
	// minimum the configured per-call cost").
	BaseHostCallCost uint64
	// HostCallCost overrides BaseHostCallCost for specific host function
	// names (spec.md §9's open question, ratified in SPEC_FULL.md).
	HostCallCost map[string]uint64
	// HostCallBytePrice is charged per byte read or written across a host
	// call's buffers, on top of the per-call cost (spec.md §4.G: "plus the
	// byte-read/write cost for their buffers").
	HostCallBytePrice uint64

	// EnabledHostModules is a 256-bit set (one bit per reserved id selector
	// byte) naming which reserved host modules this schedule makes
	// available, folded in from the original Rust source's module_config.rs
	// (see SPEC_FULL.md "Supplemented features").
	EnabledHostModules [32]byte
}

// CostOf returns the gas cost of opcode name under this schedule, falling
// back to RegularOpCost when name has no entry in PerOpCost.
func (s *Schedule) CostOf(name string) uint64 {
	if c, ok := s.PerOpCost[name]; ok {
		return c
	}
	return s.RegularOpCost
}

// HostCostOf returns the base charge for crossing into host function name,
// falling back to BaseHostCallCost.
func (s *Schedule) HostCostOf(name string) uint64 {
	if c, ok := s.HostCallCost[name]; ok {
		return c
	}
	return s.BaseHostCallCost
}

// EnableHostModule marks selector (the second byte of a reserved id, see
// network/registry.go) as available.
func (s *Schedule) EnableHostModule(selector byte) {
	s.EnabledHostModules[selector/8] |= 1 << (selector % 8)
}

// HostModuleEnabled reports whether selector was marked available.
func (s *Schedule) HostModuleEnabled(selector byte) bool {
	return s.EnabledHostModules[selector/8]&(1<<(selector%8)) != 0
}

// Default returns the schedule shipped when no config file is supplied
// (spec.md §6: "missing file yields defaults"). The literal values below
// follow the shape of core/data_gastable.go's per-version gas-table
// literals, scaled to the WASM opcode set instead of EVM opcodes.
func Default() *Schedule {
	s := &Schedule{
		Version:           CurrentVersion,
		RegularOpCost:      1,
		MemoryGrowCost:     8192,
		MaxStackHeight:     65536,
		MaxTableSize:       16384,
		MaxMemoryPages:     2048, // 128 MiB at 64 KiB/page
		ForbidFloats:       true,
		BaseHostCallCost:   10,
		HostCallBytePrice:  1,
		PerOpCost: map[string]uint64{
			"call":          50,
			"call_indirect": 70,
			"i32.load":      3,
			"i64.load":      3,
			"i32.store":     3,
			"i64.store":     3,
			"memory.grow":   1, // MemoryGrowCost is added on top per page
		},
		HostCallCost: map[string]uint64{
			"query":      200,
			"transact":   400,
			"store_put":  100,
			"store_get":  50,
			"hash":       60,
			"debug":      5,
			"emit":       30,
		},
	}
	for sel := 0; sel < 256; sel++ {
		s.EnableHostModule(byte(sel))
	}
	return s
}

// LoadFile reads a declarative TOML schedule file (spec.md §6 "Config
// file"). A missing file is not an error — the caller gets Default()
// instead, per spec.md §6 ("missing file yields defaults"); a malformed file
// is fatal and returned as a vmerrors.ConfigurationError before any contract
// executes (spec.md §6, §7).
func LoadFile(path string) (*Schedule, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, vmerrors.Wrap(vmerrors.ConfigurationError, fmt.Sprintf("config: reading schedule file %s", path), err)
	}

	s := Default()
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, vmerrors.Wrap(vmerrors.ConfigurationError, fmt.Sprintf("config: parsing schedule file %s", path), err)
	}
	return s, nil
}
