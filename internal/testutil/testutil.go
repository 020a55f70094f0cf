// Package testutil carries the conformance fixtures shared by the daemon
// and CLI tests: the property knob table and an in-process daemon.
package testutil

import (
	"io"
	"net"
	"path/filepath"
	"testing"

	"github.com/corraldev/corral/internal/daemon"
	"github.com/corraldev/corral/internal/logging"
	"github.com/corraldev/corral/internal/store"
)

// Knob is one property key with a legal value and the string Get must
// return after a successful Set.
type Knob struct {
	Key      string
	Value    any
	Expected string
}

// Knobs returns a legal value for every settable property key.
func Knobs() []Knob {
	return []Knob{
		{Key: "aging_time", Value: "3600"},
		{Key: "anon_limit", Value: "134217728"},
		{Key: "bind", Value: "/var/log /newvar;/home /home ro"},
		{Key: "bind_dns", Value: true},
		{Key: "capabilities", Value: "CHOWN;DAC_OVERRIDE;DAC_READ_SEARCH;FOWNER;FSETID;KILL;" +
			"SETGID;SETUID;SETPCAP;LINUX_IMMUTABLE;NET_BIND_SERVICE;" +
			"NET_BROADCAST;NET_ADMIN;NET_RAW;IPC_LOCK;IPC_OWNER;" +
			"SYS_MODULE;SYS_RAWIO;SYS_CHROOT;SYS_PTRACE;SYS_PACCT;" +
			"SYS_ADMIN;SYS_BOOT;SYS_NICE;SYS_RESOURCE;SYS_TIME;" +
			"SYS_TTY_CONFIG;MKNOD;LEASE;AUDIT_WRITE;AUDIT_CONTROL;" +
			"SETFCAP;MAC_OVERRIDE;MAC_ADMIN;SYSLOG;WAKE_ALARM;" +
			"BLOCK_SUSPEND;AUDIT_READ"},
		{Key: "command", Value: `bash -c 'echo $(sleep) | xargs -I%sdf echo %sdf'`},
		{Key: "controllers", Value: "freezer;memory;cpu;cpuacct;net_cls;blkio;devices;hugetlb;cpuset"},
		{Key: "corral_namespace", Value: "/corral"},
		{Key: "cpu_guarantee", Value: "0.756c"},
		{Key: "cpu_limit", Value: "0.9c"},
		{Key: "cpu_policy", Value: "normal"},
		{Key: "cpu_set", Value: "1-2,4"},
		{Key: "cwd", Value: "/var/log/../../home"},
		{Key: "devices", Value: "/dev/loop0 rwm newdev0 rw alice alice;" +
			"/dev/loop1 - newdev1 ro bob bob"},
		{Key: "dirty_limit", Value: "67108864"},
		{Key: "enable_corral", Value: "child-only"},
		{Key: "env", Value: "A1=123;A2=321;B=D"},
		{Key: "group", Value: "bob"},
		{Key: "hostname", Value: "hostname.local"},
		{Key: "io_limit", Value: "200000"},
		{Key: "io_ops_limit", Value: "50000"},
		{Key: "io_policy", Value: "normal"},
		{Key: "ip", Value: "eth0 1.1.1.1/32"},
		{Key: "isolate", Value: true},
		{Key: "max_respawns", Value: "5"},
		{Key: "memory_guarantee", Value: "33554432"},
		{Key: "memory_limit", Value: "268435456"},
		{Key: "net", Value: "inherited"},
		{Key: "net_guarantee", Value: "default: 0"},
		{Key: "net_limit", Value: "default: 0"},
		{Key: "net_priority", Value: "default: 0"},
		{Key: "owner_group", Value: "root"},
		{Key: "owner_user", Value: "root"},
		{Key: "private", Value: "123;321321   2323cv"},
		{Key: "recharge_on_pgfault", Value: true},
		{Key: "resolv_conf", Value: "nameserver 1.1.1.1"},
		{Key: "respawn", Value: false},
		{Key: "root", Value: "/var/log/../../"},
		{Key: "root_readonly", Value: true},
		{Key: "stderr_path", Value: "/place/corral/../stderr.txt"},
		{Key: "stdin_path", Value: "/place/corral/../stdin.txt"},
		{Key: "stdout_limit", Value: "4194304"},
		{Key: "stdout_path", Value: "/place/corral/../stdout.txt"},
		{Key: "ulimit", Value: "as: 1048576 1048576; core: 1024 1024; cpu: 1 1; " +
			"data: 2097152 2097152; fsize: 4096 4096; locks: 16 16; " +
			"memlock: 4096 4096; msgqueue: 8192 8192; nice: 10 15; " +
			"nofile: 819200 1024000; nproc: 20480 30720; rss: 65536 65536; " +
			"rtprio: 1024 1024; rttime: 10000 10000; sigpending: 10 10; " +
			"stack: 16384 16384"},
		{Key: "umask", Value: "0777"},
		{Key: "user", Value: "alice"},
		{Key: "virt_mode", Value: "os"},
		{Key: "weak", Value: false},
	}
}

// ExpectedValue is the string Get must return for a knob: strings verbatim,
// booleans as lowercase tokens.
func (k Knob) ExpectedValue() string {
	switch v := k.Value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	}

	panic("knob value must be string or bool")
}

// NetVariants are the accepted forms of the net property.
func NetVariants() []string {
	return []string{
		"none",
		"inherited",
		"steal eth0",
		"container test",
		"macvlan eth0 eth0 bridge 1400 11:22:33:44:55:66",
		"ipvlan eth0 eth0",
		"veth veth0 veth1 1400 22:33:44:55:66:77",
		"L3 eth0 eth0",
		"NAT eth0",
		"veth veth0 veth1;MTU veth0 1400",
		"autoconf eth0",
	}
}

// StartDaemon runs an in-process daemon on a fresh socket and state
// directory and returns the socket path.
func StartDaemon(t *testing.T) string {
	t.Helper()

	logger := logging.New(io.Discard, false)

	st, err := store.New(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("create store: %s", err)
	}

	socket := filepath.Join(t.TempDir(), "corrald.sock")

	listener, err := net.Listen("unix", socket)
	if err != nil {
		t.Fatalf("listen on %s: %s", socket, err)
	}

	server := daemon.NewServer(listener, st, logger, false)

	go server.Serve()
	t.Cleanup(server.Shutdown)

	return socket
}
