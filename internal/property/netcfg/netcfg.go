// Package netcfg parses the "net" property grammar: a ";"-separated list of
// clauses, each one of a closed set of variants describing how the
// container's network is built. Exclusive variants (none, inherited,
// container, netns) stand alone; device variants may be combined, with MTU
// clauses adjusting a device declared earlier in the same value.
package netcfg

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

type Kind string

const (
	None      Kind = "none"
	Inherited Kind = "inherited"
	Steal     Kind = "steal"
	Container Kind = "container"
	Macvlan   Kind = "macvlan"
	Ipvlan    Kind = "ipvlan"
	Veth      Kind = "veth"
	L3        Kind = "L3"
	NAT       Kind = "NAT"
	MTU       Kind = "MTU"
	Autoconf  Kind = "autoconf"
	NetNS     Kind = "netns"
)

// Clause is one parsed variant of the net grammar.
type Clause struct {
	Kind Kind

	// Name is the device, interface or container the clause refers to.
	Name string

	// Master is the host interface a virtual device hangs off
	// (macvlan/ipvlan) or the bridge/master of a veth or L3 device.
	Master string

	// Mode is the macvlan (bridge|private|vepa|passthru) or ipvlan
	// (l2|l3) mode.
	Mode string

	MTU int
	HW  string
}

// Config is the parsed form of a complete net property value.
type Config struct {
	Clauses []Clause
}

// Inherited reports whether the configuration keeps the parent namespace.
func (c *Config) Inherited() bool {
	return len(c.Clauses) == 1 && c.Clauses[0].Kind == Inherited
}

var macvlanModes = map[string]struct{}{
	"bridge": {}, "private": {}, "vepa": {}, "passthru": {},
}

var ipvlanModes = map[string]struct{}{
	"l2": {}, "l3": {},
}

// exclusive variants cannot be combined with any other clause.
var exclusive = map[Kind]struct{}{
	None: {}, Inherited: {}, Container: {}, NetNS: {},
}

// Parse parses a net property value into its clauses.
func Parse(value string) (*Config, error) {
	var cfg Config

	// Names of devices declared so far, for MTU back references.
	devices := map[string]struct{}{}

	clauses := strings.Split(value, ";")

	for _, raw := range clauses {
		fields := strings.Fields(raw)
		if len(fields) == 0 {
			return nil, fmt.Errorf("empty net clause in %q", value)
		}

		clause, err := parseClause(fields, devices)
		if err != nil {
			return nil, err
		}

		if _, excl := exclusive[clause.Kind]; excl && len(clauses) > 1 {
			return nil, fmt.Errorf(
				"net %s cannot be combined with other clauses",
				clause.Kind,
			)
		}

		cfg.Clauses = append(cfg.Clauses, clause)
	}

	return &cfg, nil
}

func parseClause(fields []string, devices map[string]struct{}) (Clause, error) {
	kind, args := Kind(fields[0]), fields[1:]

	switch kind {
	case None, Inherited:
		if len(args) != 0 {
			return Clause{}, fmt.Errorf("net %s takes no arguments", kind)
		}

		return Clause{Kind: kind}, nil

	case Steal, Container, Autoconf, NetNS:
		if len(args) != 1 {
			return Clause{}, fmt.Errorf("net %s takes exactly one name", kind)
		}

		return Clause{Kind: kind, Name: args[0]}, nil

	case Macvlan:
		// macvlan <master> <name> [mode] [mtu] [hw]
		if len(args) < 2 || len(args) > 5 {
			return Clause{}, fmt.Errorf(
				"net macvlan: expected <master> <name> [bridge|private|vepa|passthru] [mtu] [hw]",
			)
		}

		clause := Clause{Kind: kind, Master: args[0], Name: args[1]}
		rest := args[2:]

		// Mode is optional; anything else in its position is an mtu.
		if len(rest) > 0 {
			if _, ok := macvlanModes[rest[0]]; ok {
				clause.Mode = rest[0]
				rest = rest[1:]
			}
		}

		if err := parseDeviceTail(&clause, rest); err != nil {
			return Clause{}, fmt.Errorf("net macvlan: %w", err)
		}

		devices[clause.Name] = struct{}{}

		return clause, nil

	case Ipvlan:
		// ipvlan <master> <name> [l2|l3] [mtu]
		if len(args) < 2 || len(args) > 4 {
			return Clause{}, fmt.Errorf(
				"net ipvlan: expected <master> <name> [l2|l3] [mtu]",
			)
		}

		clause := Clause{Kind: kind, Master: args[0], Name: args[1]}
		rest := args[2:]

		if len(rest) > 0 {
			if _, ok := ipvlanModes[rest[0]]; ok {
				clause.Mode = rest[0]
				rest = rest[1:]
			}
		}

		if len(rest) > 0 {
			mtu, err := parseMTU(rest[0])
			if err != nil {
				return Clause{}, fmt.Errorf("net ipvlan: %w", err)
			}
			clause.MTU = mtu
		}

		devices[clause.Name] = struct{}{}

		return clause, nil

	case Veth:
		// veth <name> <bridge> [mtu] [hw]
		if len(args) < 2 || len(args) > 4 {
			return Clause{}, fmt.Errorf(
				"net veth: expected <name> <bridge> [mtu] [hw]",
			)
		}

		clause := Clause{Kind: kind, Name: args[0], Master: args[1]}

		if err := parseDeviceTail(&clause, args[2:]); err != nil {
			return Clause{}, fmt.Errorf("net veth: %w", err)
		}

		devices[clause.Name] = struct{}{}

		return clause, nil

	case L3:
		// L3 <name> [master]
		if len(args) < 1 || len(args) > 2 {
			return Clause{}, fmt.Errorf("net L3: expected <name> [master]")
		}

		clause := Clause{Kind: kind, Name: args[0]}
		if len(args) == 2 {
			clause.Master = args[1]
		}

		devices[clause.Name] = struct{}{}

		return clause, nil

	case NAT:
		// NAT [name]
		if len(args) > 1 {
			return Clause{}, fmt.Errorf("net NAT: expected [name]")
		}

		clause := Clause{Kind: kind}
		if len(args) == 1 {
			clause.Name = args[0]
			devices[clause.Name] = struct{}{}
		}

		return clause, nil

	case MTU:
		// MTU <name> <mtu>, name must be declared by an earlier clause.
		if len(args) != 2 {
			return Clause{}, fmt.Errorf("net MTU: expected <name> <mtu>")
		}

		if _, ok := devices[args[0]]; !ok {
			return Clause{}, fmt.Errorf(
				"net MTU: unknown device %q", args[0],
			)
		}

		mtu, err := parseMTU(args[1])
		if err != nil {
			return Clause{}, fmt.Errorf("net MTU: %w", err)
		}

		return Clause{Kind: kind, Name: args[0], MTU: mtu}, nil
	}

	return Clause{}, fmt.Errorf("unknown net variant %q", fields[0])
}

// parseDeviceTail parses the optional trailing [mtu] [hw] arguments shared
// by macvlan and veth clauses.
func parseDeviceTail(clause *Clause, rest []string) error {
	if len(rest) > 0 {
		mtu, err := parseMTU(rest[0])
		if err != nil {
			return err
		}
		clause.MTU = mtu
		rest = rest[1:]
	}

	if len(rest) > 0 {
		if _, err := net.ParseMAC(rest[0]); err != nil {
			return fmt.Errorf("invalid hardware address %q", rest[0])
		}
		clause.HW = rest[0]
	}

	return nil
}

func parseMTU(s string) (int, error) {
	mtu, err := strconv.Atoi(s)
	if err != nil || mtu <= 0 {
		return 0, fmt.Errorf("invalid mtu %q", s)
	}

	return mtu, nil
}
