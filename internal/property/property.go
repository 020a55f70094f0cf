// Package property defines the configuration vocabulary of a container
// entity: the closed set of property keys, the value grammar of each key,
// and its default. Values are carried as strings on the wire; Set validates
// a value against its key's grammar and returns the canonical form that
// Get will hand back verbatim from then on.
package property

import (
	"github.com/corraldev/corral/internal/apierror"
)

// PrivateMax bounds the length of the free-form "private" value.
const PrivateMax = 4096

// Definition describes a single property key.
type Definition struct {
	Name     string
	Desc     string
	Default  string
	ReadOnly bool

	// validate checks value against the key's grammar and returns the
	// canonical string to store. nil means any string is accepted as-is.
	validate func(value string) (string, error)
}

var registry = map[string]*Definition{
	"aging_time": {
		Name:     "aging_time",
		Desc:     "After given number of seconds a dead container is removed",
		Default:  "86400",
		validate: validateUint,
	},
	"anon_limit": {
		Name:     "anon_limit",
		Desc:     "Anonymous memory limit [bytes]",
		Default:  "0",
		validate: validateSize,
	},
	"bind": {
		Name:     "bind",
		Desc:     "Bind mounts: <source> <target> [ro|rw];...",
		Default:  "",
		validate: validateBind,
	},
	"bind_dns": {
		Name:     "bind_dns",
		Desc:     "Bind resolv.conf and hosts from host into container root",
		Default:  "false",
		validate: validateBool,
	},
	"capabilities": {
		Name:     "capabilities",
		Desc:     "Limit capabilities in container: SYS_ADMIN;NET_ADMIN;...",
		Default:  "",
		validate: validateCapabilities,
	},
	"command": {
		Name:    "command",
		Desc:    "Command executed upon container start",
		Default: "",
	},
	"controllers": {
		Name:     "controllers",
		Desc:     "Cgroup controllers: cpu;memory;...",
		Default:  "freezer;memory;cpu;cpuacct;devices",
		validate: validateControllers,
	},
	"corral_namespace": {
		Name:    "corral_namespace",
		Desc:    "Absolute name prefix for containers visible inside",
		Default: "",
	},
	"cpu_guarantee": {
		Name:     "cpu_guarantee",
		Desc:     "CPU guarantee: 0.0...<cores>c [cores] or percent",
		Default:  "0c",
		validate: validateCPU,
	},
	"cpu_limit": {
		Name:     "cpu_limit",
		Desc:     "CPU limit: 0.0...<cores>c [cores] or percent",
		Default:  "0c",
		validate: validateCPU,
	},
	"cpu_policy": {
		Name:     "cpu_policy",
		Desc:     "CPU policy: rt, high, normal, batch, idle, iso",
		Default:  "normal",
		validate: validateEnum("rt", "high", "normal", "batch", "idle", "iso"),
	},
	"cpu_set": {
		Name:     "cpu_set",
		Desc:     "CPU affinity: 1-2,4 | node <n> | all",
		Default:  "",
		validate: validateCPUSet,
	},
	"cwd": {
		Name:    "cwd",
		Desc:    "Container working directory",
		Default: "/",
	},
	"devices": {
		Name:     "devices",
		Desc:     "Devices the container can access: <device> [r][w][m][-] [name] [mode] [user] [group];...",
		Default:  "",
		validate: validateDevices,
	},
	"dirty_limit": {
		Name:     "dirty_limit",
		Desc:     "Dirty file cache limit [bytes]",
		Default:  "0",
		validate: validateSize,
	},
	"enable_corral": {
		Name:     "enable_corral",
		Desc:     "API access level: false | read-only | child-only | true",
		Default:  "true",
		validate: validateEnum("false", "read-only", "child-only", "true"),
	},
	"env": {
		Name:     "env",
		Desc:     "Container environment variables: <name>=<value>;...",
		Default:  "",
		validate: validateEnv,
	},
	"group": {
		Name:     "group",
		Desc:     "Start command with given group",
		Default:  "",
		validate: validateNameToken,
	},
	"hostname": {
		Name:    "hostname",
		Desc:    "Container hostname",
		Default: "",
	},
	"io_limit": {
		Name:     "io_limit",
		Desc:     "Disk IO bandwidth limit [bytes/s]",
		Default:  "0",
		validate: validateSize,
	},
	"io_ops_limit": {
		Name:     "io_ops_limit",
		Desc:     "Disk IO limit [operations/s]",
		Default:  "0",
		validate: validateUint,
	},
	"io_policy": {
		Name:     "io_policy",
		Desc:     "IO policy: normal | batch",
		Default:  "normal",
		validate: validateEnum("normal", "batch"),
	},
	"ip": {
		Name:     "ip",
		Desc:     "IP configuration: <interface> <address/prefix>;...",
		Default:  "",
		validate: validateIP,
	},
	"isolate": {
		Name:     "isolate",
		Desc:     "Isolate container from parent",
		Default:  "true",
		validate: validateBool,
	},
	"max_respawns": {
		Name:     "max_respawns",
		Desc:     "Limit respawn count, -1 for unlimited",
		Default:  "-1",
		validate: validateRespawns,
	},
	"memory_guarantee": {
		Name:     "memory_guarantee",
		Desc:     "Memory guarantee [bytes]",
		Default:  "0",
		validate: validateSize,
	},
	"memory_limit": {
		Name:     "memory_limit",
		Desc:     "Memory hard limit [bytes]",
		Default:  "0",
		validate: validateSize,
	},
	"net": {
		Name:     "net",
		Desc:     "Container network settings, see netcfg grammar",
		Default:  "inherited",
		validate: validateNet,
	},
	"net_guarantee": {
		Name:     "net_guarantee",
		Desc:     "Guaranteed network bandwidth: <interface>|default: <Bps>;...",
		Default:  "",
		validate: validateUintMap(0),
	},
	"net_limit": {
		Name:     "net_limit",
		Desc:     "Maximum network bandwidth: <interface>|default: <Bps>;...",
		Default:  "",
		validate: validateUintMap(0),
	},
	"net_priority": {
		Name:     "net_priority",
		Desc:     "Network traffic priority: <interface>|default: 0-7;...",
		Default:  "",
		validate: validateUintMap(7),
	},
	"owner_group": {
		Name:     "owner_group",
		Desc:     "Owner group",
		Default:  "",
		validate: validateNameToken,
	},
	"owner_user": {
		Name:     "owner_user",
		Desc:     "Owner user",
		Default:  "",
		validate: validateNameToken,
	},
	"private": {
		Name:     "private",
		Desc:     "User-defined property",
		Default:  "",
		validate: validatePrivate,
	},
	"recharge_on_pgfault": {
		Name:     "recharge_on_pgfault",
		Desc:     "Recharge memory on page fault",
		Default:  "false",
		validate: validateBool,
	},
	"resolv_conf": {
		Name:    "resolv_conf",
		Desc:    "DNS resolver configuration",
		Default: "",
	},
	"respawn": {
		Name:     "respawn",
		Desc:     "Automatically respawn dead container",
		Default:  "false",
		validate: validateBool,
	},
	"root": {
		Name:    "root",
		Desc:    "Container root directory",
		Default: "/",
	},
	"root_readonly": {
		Name:     "root_readonly",
		Desc:     "Mount root directory in read-only mode",
		Default:  "false",
		validate: validateBool,
	},
	"stderr_path": {
		Name:    "stderr_path",
		Desc:    "Container stderr path",
		Default: "",
	},
	"stdin_path": {
		Name:    "stdin_path",
		Desc:    "Container stdin path",
		Default: "",
	},
	"stdout_limit": {
		Name:     "stdout_limit",
		Desc:     "Limit for stored stdout and stderr size [bytes]",
		Default:  "8388608",
		validate: validateSize,
	},
	"stdout_path": {
		Name:    "stdout_path",
		Desc:    "Container stdout path",
		Default: "",
	},
	"ulimit": {
		Name:     "ulimit",
		Desc:     "Process limits: <type>: <soft> <hard>;... (see man prlimit)",
		Default:  "",
		validate: validateUlimit,
	},
	"umask": {
		Name:     "umask",
		Desc:     "File mode creation mask",
		Default:  "0002",
		validate: validateOctal,
	},
	"user": {
		Name:     "user",
		Desc:     "Start command with given user",
		Default:  "",
		validate: validateNameToken,
	},
	"virt_mode": {
		Name:     "virt_mode",
		Desc:     "Virtualization mode: app | os",
		Default:  "app",
		validate: validateEnum("app", "os"),
	},
	"weak": {
		Name:     "weak",
		Desc:     "Destroy container when client disconnects",
		Default:  "false",
		validate: validateBool,
	},

	// Read-only data properties.
	"state": {
		Name:     "state",
		Desc:     "Container state",
		Default:  "stopped",
		ReadOnly: true,
	},
	"absolute_name": {
		Name:     "absolute_name",
		Desc:     "Full container name including namespace",
		ReadOnly: true,
	},
}

// Lookup returns the definition for key, or nil if the key is not part of
// the vocabulary.
func Lookup(key string) *Definition {
	return registry[key]
}

// Set validates value against key's grammar and returns the canonical
// string to store.
func Set(key, value string) (string, error) {
	def := registry[key]
	if def == nil {
		return "", apierror.Newf(
			apierror.InvalidProperty,
			"unknown property %q",
			key,
		)
	}

	if def.ReadOnly {
		return "", apierror.Newf(
			apierror.InvalidProperty,
			"property %q is read-only",
			key,
		)
	}

	if def.validate == nil {
		return value, nil
	}

	canonical, err := def.validate(value)
	if err != nil {
		if apierror.CodeOf(err) != apierror.Unknown {
			return "", err
		}

		return "", apierror.Newf(
			apierror.InvalidValue,
			"property %s: %v (value %q)",
			key, err, value,
		)
	}

	return canonical, nil
}

// DefaultOf returns the default value reported by Get for a key that was
// never set, and whether the key exists.
func DefaultOf(key string) (string, bool) {
	def := registry[key]
	if def == nil {
		return "", false
	}

	return def.Default, true
}
