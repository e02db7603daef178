package netstate

import (
	"strings"
	"testing"
)

// Sample network-state documents for testing
var sampleStates = map[string]string{
	"v1-dhcp": `version: 1
interfaces:
  - name: eth0
    type: physical
    subnets:
      - type: dhcp4`,

	"v1-static-with-global-dns": `version: 1
dns-nameservers: [8.8.8.8, 8.8.4.4]
dns-searchdomains: [example.com]
interfaces:
  - name: eth0
    type: physical
    mac-address: "aa:bb:cc:dd:ee:ff"
    mtu: 1500
    subnets:
      - type: static
        address: 192.168.1.100
        prefix: 24
        gateway: 192.168.1.1
        routes:
          - network: 172.16.0.0
            prefix: 16
            gateway: 192.168.1.254
            metric: 100`,

	"v2-vlan-bond": `version: 2
interfaces:
  - name: eth0
    type: physical
  - name: vlan100
    type: vlan
  - name: bond0
    type: bond
    subnets:
      - type: dhcp4
vlans:
  vlan100:
    id: 100
    link: eth0
bonds:
  bond0:
    interfaces: [ens3, ens4]
    parameters:
      mode: active-backup
      mii-monitor-interval: 100
ethernets:
  bond0:
    dhcp4-overrides:
      use-dns: true
      route-metric: 50`,

	"v2-set-name": `version: 2
interfaces:
  - name: custom0
    type: physical
    subnets:
      - type: dhcp4
ethernets:
  eth0:
    set-name: custom0
    dhcp4domain: route`,
}

func TestLoadStateFromBytes(t *testing.T) {
	for name, doc := range sampleStates {
		t.Run(name, func(t *testing.T) {
			state, err := LoadStateFromBytes([]byte(doc))
			if err != nil {
				t.Fatalf("Failed to load state %s: %v", name, err)
			}

			if state.Version != 1 && state.Version != 2 {
				t.Errorf("Unexpected version %d", state.Version)
			}

			// Test that we can marshal it back
			if _, err := state.ToYAML(); err != nil {
				t.Errorf("Failed to marshal state back to YAML: %v", err)
			}
		})
	}
}

func TestLoadStateFields(t *testing.T) {
	state, err := LoadStateFromBytes([]byte(sampleStates["v1-static-with-global-dns"]))
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}

	if len(state.Interfaces) != 1 {
		t.Fatalf("expected 1 interface, got %d", len(state.Interfaces))
	}

	iface := state.Interfaces[0]
	if iface.MACAddress != "aa:bb:cc:dd:ee:ff" || iface.MTU != 1500 {
		t.Errorf("interface fields not parsed: %+v", iface)
	}

	if len(iface.Subnets) != 1 {
		t.Fatalf("expected 1 subnet, got %d", len(iface.Subnets))
	}
	subnet := iface.Subnets[0]
	if subnet.Address != "192.168.1.100" || subnet.Prefix != 24 || subnet.Gateway != "192.168.1.1" {
		t.Errorf("subnet fields not parsed: %+v", subnet)
	}

	if len(subnet.Routes) != 1 {
		t.Fatalf("expected 1 route, got %d", len(subnet.Routes))
	}
	route := subnet.Routes[0]
	if route.Network != "172.16.0.0" || route.Metric == nil || *route.Metric != 100 {
		t.Errorf("route fields not parsed: %+v", route)
	}
	if route.Prefix == nil || *route.Prefix != 16 {
		t.Errorf("route prefix not parsed: %+v", route.Prefix)
	}

	if len(state.DNSNameservers) != 2 || state.DNSNameservers[0] != "8.8.8.8" {
		t.Errorf("global DNS not parsed: %v", state.DNSNameservers)
	}
}

func TestLoadStateV2Devices(t *testing.T) {
	state, err := LoadStateFromBytes([]byte(sampleStates["v2-vlan-bond"]))
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}

	vlan := state.VLANs["vlan100"]
	if vlan == nil || vlan.ID == nil || *vlan.ID != 100 || vlan.Link != "eth0" {
		t.Errorf("VLAN not parsed: %+v", vlan)
	}

	bond := state.Bonds["bond0"]
	if bond == nil || len(bond.Interfaces) != 2 {
		t.Fatalf("bond not parsed: %+v", bond)
	}
	if bond.Parameters["mode"] != "active-backup" {
		t.Errorf("bond parameters not parsed: %v", bond.Parameters)
	}

	device := state.Ethernets["bond0"]
	if device == nil {
		t.Fatal("device config not parsed")
	}
	if v, ok := device.Overrides(4)["use-dns"]; !ok || v != true {
		t.Errorf("dhcp4-overrides not parsed: %v", device.DHCP4Overrides)
	}
}

func TestLoadStateDomainToggle(t *testing.T) {
	state, err := LoadStateFromBytes([]byte(sampleStates["v2-set-name"]))
	if err != nil {
		t.Fatalf("Failed to load state: %v", err)
	}

	device := state.Ethernets["eth0"]
	if device == nil || device.SetName != "custom0" {
		t.Fatalf("set-name not parsed: %+v", device)
	}

	toggle, ok := device.DomainToggle(4)
	if !ok || toggle != "route" {
		t.Errorf("dhcp4domain = %v (declared=%v), want route", toggle, ok)
	}
	if _, ok := device.DomainToggle(6); ok {
		t.Errorf("dhcp6domain should be absent")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		state       *NetworkState
		expectError string
	}{
		{
			name:  "valid v1",
			state: &NetworkState{Version: 1},
		},
		{
			name:  "valid v2",
			state: &NetworkState{Version: 2},
		},
		{
			name:        "unsupported version",
			state:       &NetworkState{Version: 3},
			expectError: "unsupported",
		},
		{
			name: "v1 with device config",
			state: &NetworkState{
				Version:   1,
				Ethernets: map[string]*DeviceConfig{"eth0": {}},
			},
			expectError: "per-device",
		},
		{
			name: "duplicate interface names",
			state: &NetworkState{
				Version: 1,
				Interfaces: []Interface{
					{Name: "eth0", Type: "physical"},
					{Name: "eth0", Type: "physical"},
				},
			},
			expectError: "duplicate",
		},
		{
			name: "empty interface name",
			state: &NetworkState{
				Version:    1,
				Interfaces: []Interface{{Type: "physical"}},
			},
			expectError: "empty name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.state.Validate()
			if tt.expectError == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.expectError) {
				t.Errorf("error = %v, want containing %q", err, tt.expectError)
			}
		})
	}
}

func TestBuilders(t *testing.T) {
	ns := NewState(2)
	ns.AddInterface(NewDHCPInterface("eth0", "dhcp4"))
	ns.AddInterface(NewStaticInterface("eth1", "10.0.0.2", 24, "10.0.0.1", []string{"8.8.8.8"}))
	ns.AddVLAN("vlan100", &VLANDevice{ID: Int(100), Link: "eth0"})
	ns.AddBond("bond0", &BondDevice{Interfaces: []string{"ens3"}})
	ns.AddEthernet("eth0", &DeviceConfig{})

	if err := ns.Validate(); err != nil {
		t.Fatalf("built state invalid: %v", err)
	}

	if len(ns.IterInterfaces()) != 2 {
		t.Errorf("expected 2 interfaces")
	}
	if ns.Interfaces[1].Subnets[0].Gateway != "10.0.0.1" {
		t.Errorf("static builder dropped gateway: %+v", ns.Interfaces[1])
	}
	if ns.VLANs["vlan100"] == nil || ns.Bonds["bond0"] == nil || ns.Ethernets["eth0"] == nil {
		t.Errorf("device maps not initialized")
	}
}
