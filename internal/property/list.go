package property

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// splitList splits a ";"-separated property value into trimmed entries,
// dropping empty ones.
func splitList(value string) []string {
	var entries []string
	for _, e := range strings.Split(value, ";") {
		e = strings.TrimSpace(e)
		if e != "" {
			entries = append(entries, e)
		}
	}

	return entries
}

func validateEnv(value string) (string, error) {
	seen := map[string]struct{}{}

	for _, e := range splitList(value) {
		name, _, ok := strings.Cut(e, "=")
		if !ok || name == "" {
			return "", fmt.Errorf("expected <name>=<value>, got %q", e)
		}

		if _, dup := seen[name]; dup {
			return "", fmt.Errorf("duplicate variable %q", name)
		}
		seen[name] = struct{}{}
	}

	return value, nil
}

func validateBind(value string) (string, error) {
	for _, e := range splitList(value) {
		fields := strings.Fields(e)
		if len(fields) < 2 || len(fields) > 3 {
			return "", fmt.Errorf(
				"expected <source> <target> [ro|rw], got %q", e,
			)
		}

		if !strings.HasPrefix(fields[0], "/") ||
			!strings.HasPrefix(fields[1], "/") {
			return "", fmt.Errorf("bind paths must be absolute in %q", e)
		}

		if len(fields) == 3 &&
			fields[2] != "ro" && fields[2] != "rw" {
			return "", fmt.Errorf("bind flag must be ro or rw in %q", e)
		}
	}

	return value, nil
}

func validateDevices(value string) (string, error) {
	for _, e := range splitList(value) {
		fields := strings.Fields(e)
		if len(fields) < 2 || len(fields) > 6 {
			return "", fmt.Errorf(
				"expected <device> <access> [name] [mode] [user] [group], got %q",
				e,
			)
		}

		if !strings.HasPrefix(fields[0], "/") {
			return "", fmt.Errorf("device path must be absolute in %q", e)
		}

		for _, c := range fields[1] {
			if c != 'r' && c != 'w' && c != 'm' && c != '-' {
				return "", fmt.Errorf(
					"device access must combine r, w, m or be '-' in %q", e,
				)
			}
		}
	}

	return value, nil
}

func validateIP(value string) (string, error) {
	for _, e := range splitList(value) {
		fields := strings.Fields(e)
		if len(fields) != 2 {
			return "", fmt.Errorf(
				"expected <interface> <address/prefix>, got %q", e,
			)
		}

		if _, _, err := net.ParseCIDR(fields[1]); err != nil {
			return "", fmt.Errorf("invalid address %q", fields[1])
		}
	}

	return value, nil
}

var controllers = map[string]struct{}{
	"cpu":      {},
	"cpuacct":  {},
	"cpuset":   {},
	"memory":   {},
	"freezer":  {},
	"net_cls":  {},
	"net_prio": {},
	"blkio":    {},
	"devices":  {},
	"hugetlb":  {},
	"pids":     {},
}

func validateControllers(value string) (string, error) {
	for _, e := range splitList(value) {
		if _, ok := controllers[e]; !ok {
			return "", fmt.Errorf("unknown cgroup controller %q", e)
		}
	}

	return value, nil
}

// validateCPUSet accepts a cpu list ("1-2,4"), "node <n>" or "all".
func validateCPUSet(value string) (string, error) {
	if _, err := ParseCPUSet(value); err != nil {
		return "", err
	}

	return value, nil
}

// ParseCPUSet parses a cpu_set value and returns the cpu list in cpuset
// cgroup syntax; "node <n>" and "all" return an empty list, meaning the
// placement is resolved elsewhere.
func ParseCPUSet(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "all" {
		return "", nil
	}

	if n, ok := strings.CutPrefix(value, "node "); ok {
		if _, err := strconv.ParseUint(strings.TrimSpace(n), 10, 32); err != nil {
			return "", fmt.Errorf("invalid numa node %q", n)
		}

		return "", nil
	}

	for _, part := range strings.Split(value, ",") {
		lo, hi, isRange := strings.Cut(part, "-")

		if _, err := strconv.ParseUint(lo, 10, 32); err != nil {
			return "", fmt.Errorf("invalid cpu %q", part)
		}

		if isRange {
			if _, err := strconv.ParseUint(hi, 10, 32); err != nil {
				return "", fmt.Errorf("invalid cpu range %q", part)
			}
		}
	}

	return value, nil
}

// mapEntry is a single "<key>: <value>" clause of a map-valued property.
type mapEntry struct {
	key string
	val string
}

// splitMap parses the "<key>: <value>;..." grammar shared by ulimit and the
// per-interface network properties.
func splitMap(value string) ([]mapEntry, error) {
	var entries []mapEntry
	seen := map[string]struct{}{}

	for _, e := range splitList(value) {
		k, v, ok := strings.Cut(e, ":")
		if !ok {
			return nil, fmt.Errorf("expected <key>: <value>, got %q", e)
		}

		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k == "" {
			return nil, fmt.Errorf("empty key in %q", e)
		}

		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("duplicate key %q", k)
		}
		seen[k] = struct{}{}

		entries = append(entries, mapEntry{key: k, val: v})
	}

	return entries, nil
}

// validateUintMap validates "<interface>|default: <uint>;..." values; a
// non-zero max additionally bounds each value.
func validateUintMap(max uint64) func(string) (string, error) {
	return func(value string) (string, error) {
		entries, err := splitMap(value)
		if err != nil {
			return "", err
		}

		for _, e := range entries {
			n, err := strconv.ParseUint(e.val, 10, 64)
			if err != nil {
				return "", fmt.Errorf(
					"invalid value %q for %q", e.val, e.key,
				)
			}

			if max != 0 && n > max {
				return "", fmt.Errorf(
					"value %d for %q exceeds maximum %d", n, e.key, max,
				)
			}
		}

		return value, nil
	}
}
