package property

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/docker/go-units"
)

// validateBool normalizes any case of true/false to the lowercase token.
func validateBool(value string) (string, error) {
	switch strings.ToLower(value) {
	case "true":
		return "true", nil
	case "false":
		return "false", nil
	}

	return "", errors.New("invalid bool value")
}

func validateUint(value string) (string, error) {
	if _, err := strconv.ParseUint(value, 10, 64); err != nil {
		return "", errors.New("invalid unsigned integer")
	}

	return value, nil
}

// validateSize accepts plain bytes or human-readable sizes (512M, 2G, ...).
func validateSize(value string) (string, error) {
	if _, err := ParseSize(value); err != nil {
		return "", err
	}

	return value, nil
}

// ParseSize parses a byte-size value: a plain number or a go-units RAM size
// with a binary-scale suffix.
func ParseSize(value string) (int64, error) {
	n, err := units.RAMInBytes(value)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", value)
	}

	if n < 0 {
		return 0, fmt.Errorf("negative size %q", value)
	}

	return n, nil
}

func validateCPU(value string) (string, error) {
	if _, err := ParseCPU(value); err != nil {
		return "", err
	}

	return value, nil
}

// ParseCPU parses a cpu value into a core count: "<num>c" is an absolute
// number of cores, a bare number is a percentage of the host cores.
func ParseCPU(value string) (float64, error) {
	v := value
	cores := false
	if strings.HasSuffix(v, "c") {
		v = strings.TrimSuffix(v, "c")
		cores = true
	}

	n, err := strconv.ParseFloat(v, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid cpu value %q", value)
	}

	if cores {
		return n, nil
	}

	return n / 100 * float64(runtime.NumCPU()), nil
}

func validateOctal(value string) (string, error) {
	if _, err := strconv.ParseUint(value, 8, 32); err != nil {
		return "", errors.New("invalid octal value")
	}

	return value, nil
}

// validateRespawns accepts an unsigned count or -1 for unlimited.
func validateRespawns(value string) (string, error) {
	if value == "-1" {
		return value, nil
	}

	return validateUint(value)
}

func validateEnum(allowed ...string) func(string) (string, error) {
	return func(value string) (string, error) {
		for _, a := range allowed {
			if value == a {
				return value, nil
			}
		}

		return "", fmt.Errorf(
			"must be one of: %s",
			strings.Join(allowed, " | "),
		)
	}
}

// validateNameToken accepts a single user or group name with no separators.
// Host account lookup is deliberately not performed here.
func validateNameToken(value string) (string, error) {
	if value == "" {
		return "", errors.New("empty name")
	}

	if strings.ContainsAny(value, " \t;") {
		return "", errors.New("name must be a single token")
	}

	return value, nil
}

func validatePrivate(value string) (string, error) {
	if len(value) > PrivateMax {
		return "", errors.New("value is too long")
	}

	return value, nil
}
