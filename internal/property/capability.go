package property

import (
	"fmt"
	"strings"

	"github.com/syndtr/gocapability/capability"
)

// capabilityNames maps the property spelling of a capability (uppercase,
// no CAP_ prefix) to the kernel capability value.
var capabilityNames = func() map[string]capability.Cap {
	names := make(map[string]capability.Cap)
	for _, c := range capability.List() {
		names[strings.ToUpper(c.String())] = c
	}

	return names
}()

func validateCapabilities(value string) (string, error) {
	for _, name := range splitList(value) {
		if _, ok := capabilityNames[name]; !ok {
			return "", fmt.Errorf("unsupported capability %q", name)
		}
	}

	return value, nil
}

// ParseCapabilities resolves a capabilities property value into kernel
// capability values.
func ParseCapabilities(value string) ([]capability.Cap, error) {
	var caps []capability.Cap

	for _, name := range splitList(value) {
		c, ok := capabilityNames[name]
		if !ok {
			return nil, fmt.Errorf("unsupported capability %q", name)
		}

		caps = append(caps, c)
	}

	return caps, nil
}
