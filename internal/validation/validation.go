package validation

import (
	"github.com/corraldev/corral/internal/apierror"
)

const maxNameLength = 64

// EntityName validates that the provided container name is not empty, does
// not exceed maxNameLength, and only contains alphanumeric, '_' and '-'
// characters.
func EntityName(name string) error {
	if name == "" {
		return apierror.New(apierror.InvalidValue, "empty container name")
	}

	if len(name) > maxNameLength {
		return apierror.Newf(
			apierror.InvalidValue,
			"container name exceeds %d chars",
			maxNameLength,
		)
	}

	for _, c := range name {
		if !((c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') ||
			c == '-' ||
			c == '_') {
			return apierror.New(
				apierror.InvalidValue,
				"container name may only contain alphanumeric, '-' and '_' chars",
			)
		}
	}

	return nil
}
