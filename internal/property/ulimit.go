package property

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/opencontainers/runtime-spec/specs-go"
	"golang.org/x/sys/unix"
)

// ulimitResources maps ulimit resource names (see man prlimit) to their
// RLIMIT_* constants.
var ulimitResources = map[string]uint{
	"as":         unix.RLIMIT_AS,
	"core":       unix.RLIMIT_CORE,
	"cpu":        unix.RLIMIT_CPU,
	"data":       unix.RLIMIT_DATA,
	"fsize":      unix.RLIMIT_FSIZE,
	"locks":      unix.RLIMIT_LOCKS,
	"memlock":    unix.RLIMIT_MEMLOCK,
	"msgqueue":   unix.RLIMIT_MSGQUEUE,
	"nice":       unix.RLIMIT_NICE,
	"nofile":     unix.RLIMIT_NOFILE,
	"nproc":      unix.RLIMIT_NPROC,
	"rss":        unix.RLIMIT_RSS,
	"rtprio":     unix.RLIMIT_RTPRIO,
	"rttime":     unix.RLIMIT_RTTIME,
	"sigpending": unix.RLIMIT_SIGPENDING,
	"stack":      unix.RLIMIT_STACK,
}

func validateUlimit(value string) (string, error) {
	if _, err := ParseUlimits(value); err != nil {
		return "", err
	}

	return value, nil
}

// ParseUlimits parses a ulimit property value ("<type>: <soft> <hard>;...")
// into POSIXRlimit specs. "unlimited" maps to RLIM_INFINITY; a single limit
// applies to both soft and hard.
func ParseUlimits(value string) ([]specs.POSIXRlimit, error) {
	entries, err := splitMap(value)
	if err != nil {
		return nil, err
	}

	var rlimits []specs.POSIXRlimit

	for _, e := range entries {
		if _, ok := ulimitResources[e.key]; !ok {
			return nil, fmt.Errorf("unknown ulimit resource %q", e.key)
		}

		fields := strings.Fields(e.val)
		if len(fields) < 1 || len(fields) > 2 {
			return nil, fmt.Errorf(
				"expected %s: <soft> [hard], got %q", e.key, e.val,
			)
		}

		soft, err := parseLimit(fields[0])
		if err != nil {
			return nil, fmt.Errorf("ulimit %s: %w", e.key, err)
		}

		hard := soft
		if len(fields) == 2 {
			hard, err = parseLimit(fields[1])
			if err != nil {
				return nil, fmt.Errorf("ulimit %s: %w", e.key, err)
			}
		}

		if soft > hard {
			return nil, fmt.Errorf(
				"ulimit %s: soft limit %d above hard limit %d",
				e.key, soft, hard,
			)
		}

		rlimits = append(rlimits, specs.POSIXRlimit{
			Type: "RLIMIT_" + strings.ToUpper(e.key),
			Soft: soft,
			Hard: hard,
		})
	}

	return rlimits, nil
}

func parseLimit(s string) (uint64, error) {
	if s == "unlimited" || s == "unlim" {
		return math.MaxUint64, nil
	}

	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid limit %q", s)
	}

	return n, nil
}
