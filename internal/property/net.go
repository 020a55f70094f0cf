package property

import (
	"github.com/corraldev/corral/internal/property/netcfg"
)

func validateNet(value string) (string, error) {
	if _, err := netcfg.Parse(value); err != nil {
		return "", err
	}

	return value, nil
}
