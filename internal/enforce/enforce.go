// Package enforce translates an entity's resource properties into cgroup
// resource specs and optionally applies them. Translation is pure so it can
// run (and be tested) without touching the host; Apply is only reached when
// the daemon runs with enforcement enabled.
package enforce

import (
	"fmt"

	"github.com/containerd/cgroups/v3/cgroup2"
	"github.com/opencontainers/runtime-spec/specs-go"

	"github.com/corraldev/corral/internal/property"
)

const cpuPeriod = 100000

// resourceKeys are the properties that feed the cgroup translation.
var resourceKeys = map[string]struct{}{
	"memory_limit":     {},
	"memory_guarantee": {},
	"cpu_limit":        {},
	"cpu_guarantee":    {},
	"cpu_set":          {},
	"ulimit":           {},
}

// IsResourceKey reports whether setting key should trigger re-enforcement.
func IsResourceKey(key string) bool {
	_, ok := resourceKeys[key]
	return ok
}

// Resources translates a property bag into a LinuxResources spec. Unset or
// zero-valued limits are left nil (unlimited).
func Resources(props map[string]string) (*specs.LinuxResources, error) {
	var res specs.LinuxResources

	if v, ok := props["memory_limit"]; ok {
		limit, err := property.ParseSize(v)
		if err != nil {
			return nil, fmt.Errorf("memory_limit: %w", err)
		}

		if limit > 0 {
			if res.Memory == nil {
				res.Memory = &specs.LinuxMemory{}
			}
			res.Memory.Limit = &limit
		}
	}

	if v, ok := props["memory_guarantee"]; ok {
		guarantee, err := property.ParseSize(v)
		if err != nil {
			return nil, fmt.Errorf("memory_guarantee: %w", err)
		}

		if guarantee > 0 {
			if res.Memory == nil {
				res.Memory = &specs.LinuxMemory{}
			}
			res.Memory.Reservation = &guarantee
		}
	}

	if v, ok := props["cpu_limit"]; ok {
		cores, err := property.ParseCPU(v)
		if err != nil {
			return nil, fmt.Errorf("cpu_limit: %w", err)
		}

		if cores > 0 {
			if res.CPU == nil {
				res.CPU = &specs.LinuxCPU{}
			}
			quota := int64(cores * cpuPeriod)
			period := uint64(cpuPeriod)
			res.CPU.Quota = &quota
			res.CPU.Period = &period
		}
	}

	if v, ok := props["cpu_guarantee"]; ok {
		cores, err := property.ParseCPU(v)
		if err != nil {
			return nil, fmt.Errorf("cpu_guarantee: %w", err)
		}

		if cores > 0 {
			if res.CPU == nil {
				res.CPU = &specs.LinuxCPU{}
			}
			shares := uint64(cores * 1024)
			res.CPU.Shares = &shares
		}
	}

	if v, ok := props["cpu_set"]; ok {
		cpus, err := property.ParseCPUSet(v)
		if err != nil {
			return nil, fmt.Errorf("cpu_set: %w", err)
		}

		if cpus != "" {
			if res.CPU == nil {
				res.CPU = &specs.LinuxCPU{}
			}
			res.CPU.Cpus = cpus
		}
	}

	if v, ok := props["ulimit"]; ok {
		rlimits, err := property.ParseUlimits(v)
		if err != nil {
			return nil, fmt.Errorf("ulimit: %w", err)
		}

		for _, rl := range rlimits {
			if rl.Type != "RLIMIT_NPROC" {
				continue
			}

			limit := int64(rl.Hard)
			res.Pids = &specs.LinuxPids{Limit: limit}
		}
	}

	return &res, nil
}

// Apply creates or updates the entity's cgroup slice from its properties.
func Apply(name string, props map[string]string) error {
	res, err := Resources(props)
	if err != nil {
		return err
	}

	if _, err := cgroup2.NewSystemd(
		"/",
		fmt.Sprintf("corral-%s.slice", name),
		-1,
		cgroup2.ToResources(res),
	); err != nil {
		return fmt.Errorf("apply cgroup for %q: %w", name, err)
	}

	return nil
}

// Remove deletes the entity's cgroup slice if it exists.
func Remove(name string) error {
	cg, err := cgroup2.LoadSystemd("/", fmt.Sprintf("corral-%s.slice", name))
	if err != nil {
		return fmt.Errorf("load cgroup for %q: %w", name, err)
	}

	if err := cg.DeleteSystemd(); err != nil {
		return fmt.Errorf("delete cgroup for %q: %w", name, err)
	}

	return nil
}
