package netcfg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corraldev/corral/internal/property/netcfg"
)

func TestParseVariants(t *testing.T) {
	scenarios := map[string]struct {
		value string
		valid bool
	}{
		"none":                    {value: "none", valid: true},
		"inherited":               {value: "inherited", valid: true},
		"steal":                   {value: "steal eth0", valid: true},
		"container":               {value: "container test", valid: true},
		"macvlan full":            {value: "macvlan eth0 eth0 bridge 1400 11:22:33:44:55:66", valid: true},
		"macvlan minimal":         {value: "macvlan eth0 virt0", valid: true},
		"ipvlan":                  {value: "ipvlan eth0 eth0", valid: true},
		"ipvlan with mode":        {value: "ipvlan eth0 eth0 l3 1450", valid: true},
		"veth full":               {value: "veth veth0 veth1 1400 22:33:44:55:66:77", valid: true},
		"L3":                      {value: "L3 eth0 eth0", valid: true},
		"NAT":                     {value: "NAT eth0", valid: true},
		"NAT bare":                {value: "NAT", valid: true},
		"veth with mtu clause":    {value: "veth veth0 veth1;MTU veth0 1400", valid: true},
		"autoconf":                {value: "autoconf eth0", valid: true},
		"netns":                   {value: "netns myns", valid: true},
		"unknown variant":         {value: "bogus eth0", valid: false},
		"empty":                   {value: "", valid: false},
		"none with args":          {value: "none eth0", valid: false},
		"steal without iface":     {value: "steal", valid: false},
		"macvlan bad mode":        {value: "macvlan eth0 eth0 star", valid: false},
		"macvlan bad mtu":         {value: "macvlan eth0 eth0 bridge twelve", valid: false},
		"macvlan bad hw":          {value: "macvlan eth0 eth0 bridge 1400 nothex", valid: false},
		"ipvlan bad mode":         {value: "ipvlan eth0 eth0 l7", valid: false},
		"mtu unknown device":      {value: "veth veth0 veth1;MTU other0 1400", valid: false},
		"mtu negative":            {value: "veth veth0 veth1;MTU veth0 -1", valid: false},
		"inherited combined":      {value: "inherited;veth veth0 veth1", valid: false},
		"container combined":      {value: "veth veth0 veth1;container test", valid: false},
		"combined device clauses": {value: "veth veth0 veth1;L3 l3dev", valid: true},
	}

	for scenario, data := range scenarios {
		t.Run(scenario, func(t *testing.T) {
			cfg, err := netcfg.Parse(data.value)
			if data.valid {
				require.NoError(t, err)
				assert.NotEmpty(t, cfg.Clauses)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestParseClauseFields(t *testing.T) {
	cfg, err := netcfg.Parse("macvlan eth0 virt0 bridge 1400 11:22:33:44:55:66")
	require.NoError(t, err)
	require.Len(t, cfg.Clauses, 1)

	clause := cfg.Clauses[0]
	assert.Equal(t, netcfg.Macvlan, clause.Kind)
	assert.Equal(t, "eth0", clause.Master)
	assert.Equal(t, "virt0", clause.Name)
	assert.Equal(t, "bridge", clause.Mode)
	assert.Equal(t, 1400, clause.MTU)
	assert.Equal(t, "11:22:33:44:55:66", clause.HW)
}

func TestInherited(t *testing.T) {
	cfg, err := netcfg.Parse("inherited")
	require.NoError(t, err)
	assert.True(t, cfg.Inherited())

	cfg, err = netcfg.Parse("none")
	require.NoError(t, err)
	assert.False(t, cfg.Inherited())
}
