package networkd

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"netrender/netstate"
)

// UnitKind distinguishes primary network-settings units from device
// definition units.
type UnitKind int

const (
	UnitNetwork UnitKind = iota
	UnitNetDev
)

// Ext returns the file extension for the unit kind
func (k UnitKind) Ext() string {
	if k == UnitNetDev {
		return ".netdev"
	}
	return ".network"
}

func (k UnitKind) String() string {
	if k == UnitNetDev {
		return "netdev"
	}
	return "network"
}

// Unit is one rendered configuration file payload
type Unit struct {
	Name     string
	Kind     UnitKind
	Contents string
}

// Config holds the renderer and writer settings. Zero values are replaced
// with the usual system defaults by New.
type Config struct {
	NetworkDir      string
	ResolveConfPath string
	FileOwner       string
}

const (
	// DefaultNetworkDir is where networkd looks for unit files
	DefaultNetworkDir = "/etc/systemd/network/"
	// DefaultResolveConfPath is the systemd-resolved configuration file
	DefaultResolveConfPath = "/etc/systemd/resolved.conf"
	// DefaultFileOwner owns the written unit files
	DefaultFileOwner = "systemd-network"
)

func (c Config) withDefaults() Config {
	if c.NetworkDir == "" {
		c.NetworkDir = DefaultNetworkDir
	}
	if c.ResolveConfPath == "" {
		c.ResolveConfPath = DefaultResolveConfPath
	}
	return c
}

// Renderer translates an abstract network state into networkd unit files
type Renderer struct {
	cfg Config
}

// New creates a renderer with explicit configuration
func New(cfg Config) *Renderer {
	return &Renderer{cfg: cfg.withDefaults()}
}

// Render produces one .network unit per interface, plus one .netdev unit
// per declared VLAN and bond. Interface units come first in model order,
// followed by VLAN and bond device units in name order.
func (r *Renderer) Render(ns *netstate.NetworkState) ([]Unit, error) {
	vlans := renderVLANDevices(ns)
	bonds := renderBondDevices(ns)

	var units []Unit
	for _, iface := range ns.IterInterfaces() {
		unit, err := r.renderInterface(ns, iface, vlans, bonds)
		if err != nil {
			return nil, err
		}
		units = append(units, unit)
	}

	units = append(units, vlans.units...)
	units = append(units, bonds.units...)
	return units, nil
}

// Apply renders the network state and writes the resulting units into the
// configured network directory.
func (r *Renderer) Apply(ns *netstate.NetworkState) error {
	units, err := r.Render(ns)
	if err != nil {
		return err
	}
	return NewWriter(r.cfg).Write(units)
}

func (r *Renderer) renderInterface(ns *netstate.NetworkState, iface netstate.Interface, vlans, bonds *deviceLinks) (Unit, error) {
	cfg := NewUnitConfig()

	// Cross references must be resolved before the match and link sections:
	// a VLAN or bond device may have registered a MAC address under this
	// interface's name that the model itself does not carry yet.
	if dev := vlans.byMember[iface.Name]; dev != "" {
		cfg.Add(SectionNetwork, "VLAN", dev)
	}
	if iface.MACAddress == "" {
		if mac := vlans.macs[iface.Name]; mac != "" {
			iface.MACAddress = mac
		}
	}

	if dev := bonds.byMember[iface.Name]; dev != "" {
		cfg.Add(SectionNetwork, "Bond", dev)
	}
	if iface.MACAddress == "" {
		if mac := bonds.macs[iface.Name]; mac != "" {
			iface.MACAddress = mac
		}
	}

	renderMatch(iface, cfg)
	renderLink(iface, cfg)
	dhcp := renderSubnets(iface, cfg)
	renderDNS(ns, iface, cfg)

	for i, route := range ns.IterRoutes() {
		renderRoute(cfg, RouteKey{Source: RouteSourceGlobal, Index: i}, route)
	}

	if ns.Version == 2 {
		if err := renderDHCPOverrides(ns, iface.Name, dhcp, cfg); err != nil {
			return Unit{}, err
		}
	}

	return Unit{Name: iface.Name, Kind: UnitNetwork, Contents: cfg.Serialize()}, nil
}

// renderMatch emits the [Match] section. Virtual devices are matched by
// name, not MAC, since their MAC may be inherited or assigned later.
func renderMatch(iface netstate.Interface, cfg *UnitConfig) {
	if iface.Name != "" {
		cfg.Add(SectionMatch, "Name", iface.Name)
	}
	if iface.Driver != "" {
		cfg.Add(SectionMatch, "Driver", iface.Driver)
	}
	if iface.Type == "physical" && iface.MACAddress != "" {
		cfg.Add(SectionMatch, "MACAddress", iface.MACAddress)
	}
}

func renderLink(iface netstate.Interface, cfg *UnitConfig) {
	if iface.MTU > 0 {
		cfg.Add(SectionLink, "MTUBytes", strconv.Itoa(iface.MTU))
	}
	if iface.Type != "physical" && iface.MACAddress != "" {
		cfg.Add(SectionLink, "MACAddress", iface.MACAddress)
	}
	if iface.Optional {
		cfg.Add(SectionLink, "RequiredForOnline", "no")
	}
}

// renderSubnets walks the interface's subnets, accumulating the DHCP mode
// across all of them while emitting address, route and DNS directives.
// Subnet-declared routes and gateway routes use disjoint route-key families
// so they never collide.
func renderSubnets(iface netstate.Interface, cfg *UnitConfig) string {
	dhcp := "no"
	rid := 0

	for _, subnet := range iface.Subnets {
		switch subnet.Type {
		case "dhcp4", "dhcp":
			if dhcp == "no" {
				dhcp = "ipv4"
			} else if dhcp == "ipv6" {
				dhcp = "yes"
			}
		case "dhcp6":
			if dhcp == "no" {
				dhcp = "ipv6"
			} else if dhcp == "ipv4" {
				dhcp = "yes"
			}
		}

		for _, route := range subnet.Routes {
			renderRoute(cfg, RouteKey{Source: RouteSourceSubnet, Index: rid}, route)
			rid++
		}

		if subnet.Address == "" {
			continue
		}

		addr := subnet.Address
		if subnet.Prefix > 0 {
			addr = fmt.Sprintf("%s/%d", subnet.Address, subnet.Prefix)
		}
		cfg.Add(SectionAddress, "Address", addr)

		if subnet.Gateway != "" {
			rk := RouteKey{Source: RouteSourceAddress, Index: rid}
			cfg.AddRoute(rk, "Gateway", subnet.Gateway)
			if gatewayOnLink(subnet.Gateway, addr) {
				log.Printf("Gateway %s is not contained within subnet %s, adding GatewayOnLink flag",
					subnet.Gateway, addr)
				cfg.AddRoute(rk, "GatewayOnLink", "yes")
			}
			rid++
		}

		if len(subnet.DNSNameservers) > 0 {
			cfg.Add(SectionNetwork, "DNS", strings.Join(subnet.DNSNameservers, " "))
		}
		if len(subnet.DNSSearch) > 0 {
			cfg.Add(SectionNetwork, "Domains", strings.Join(subnet.DNSSearch, " "))
		}
	}

	cfg.Add(SectionNetwork, "DHCP", dhcp)

	if iface.AcceptRA != nil {
		val := "no"
		if *iface.AcceptRA {
			val = "yes"
		}
		cfg.Add(SectionNetwork, "IPv6AcceptRA", val)
	}

	return dhcp
}

func renderRoute(cfg *UnitConfig, rk RouteKey, route netstate.Route) {
	if route.Gateway != "" {
		cfg.AddRoute(rk, "Gateway", route.Gateway)
	}
	if route.Network != "" {
		dest := route.Network
		if route.Prefix != nil {
			dest = fmt.Sprintf("%s/%d", route.Network, *route.Prefix)
		}
		cfg.AddRoute(rk, "Destination", dest)
	}
	if route.Metric != nil {
		cfg.AddRoute(rk, "Metric", strconv.Itoa(*route.Metric))
	}
}

// renderDNS emits the interface's DNS block. Version-1 states fall back to
// the global DNS settings when the interface has none; version-2 states
// never fall back.
func renderDNS(ns *netstate.NetworkState, iface netstate.Interface, cfg *UnitConfig) {
	dns := iface.DNS
	if dns == nil {
		if ns.Version != 1 {
			return
		}
		dns = &netstate.DNSConfig{
			Search:      ns.DNSSearchDomains,
			Nameservers: ns.DNSNameservers,
		}
	}

	if len(dns.Search) > 0 {
		cfg.Add(SectionNetwork, "Domains", strings.Join(dns.Search, " "))
	}
	if len(dns.Nameservers) > 0 {
		cfg.Add(SectionNetwork, "DNS", strings.Join(dns.Nameservers, " "))
	}
}

// dhcpOverrideMap translates override keys shared by both protocol versions
// into their networkd directive names.
var dhcpOverrideMap = map[string]string{
	"UseDNS":      "use-dns",
	"UseDomains":  "use-domains",
	"UseHostname": "use-hostname",
	"UseNTP":      "use-ntp",
}

// dhcp4OverrideMap holds the additional overrides only DHCPv4 supports
var dhcp4OverrideMap = map[string]string{
	"SendHostname": "send-hostname",
	"Hostname":     "hostname",
	"RouteMetric":  "route-metric",
	"UseMTU":       "use-mtu",
	"UseRoutes":    "use-routes",
}

func renderDHCPOverrides(ns *netstate.NetworkState, name, dhcp string, cfg *UnitConfig) error {
	// A device with a set-name directive matching this interface is keyed
	// in the ethernets map under its original name.
	for _, devName := range SortedKeys(ns.Ethernets) {
		if dev := ns.Ethernets[devName]; dev != nil && dev.SetName == name {
			name = devName
			break
		}
	}

	device := ns.Ethernets[name]
	if device == nil {
		return nil
	}

	for _, version := range []int{4, 6} {
		overrides, _ := Canonicalize(device.Overrides(version)).(map[string]any)

		if toggle, ok := device.DomainToggle(version); ok {
			if _, conflict := overrides["use-domains"]; conflict {
				return fmt.Errorf("%s has both dhcp%ddomain and dhcp%d-overrides.use-domains configured; use one",
					name, version, version)
			}
			cfg.Add(overrideSection(version), "UseDomains", translateDomainToggle(toggle, version))
		}

		renderOverrides(overrides, version, dhcp, cfg)
	}

	return nil
}

// renderOverrides applies a device's DHCP override block. Overrides are only
// meaningful when DHCP is active for the matching protocol family.
func renderOverrides(overrides map[string]any, version int, dhcp string, cfg *UnitConfig) {
	if len(overrides) == 0 {
		return
	}
	if dhcp != "yes" && dhcp != fmt.Sprintf("ipv%d", version) {
		return
	}

	translations := make(map[string]string, len(dhcpOverrideMap)+len(dhcp4OverrideMap))
	for directive, key := range dhcpOverrideMap {
		translations[directive] = key
	}
	if version == 4 {
		for directive, key := range dhcp4OverrideMap {
			translations[directive] = key
		}
	}

	sec := overrideSection(version)
	for _, directive := range SortedKeys(translations) {
		if v, ok := overrides[translations[directive]]; ok {
			cfg.Add(sec, directive, formatValue(v))
		}
	}
}

func overrideSection(version int) Section {
	if version == 6 {
		return SectionDHCPv6
	}
	return SectionDHCPv4
}

// translateDomainToggle converts the two-state legacy domain toggle into a
// UseDomains value. Boolean-like values map to yes/no, the literal "route"
// passes through, anything else is logged and coerced to no.
func translateDomainToggle(v any, version int) string {
	s := strings.ToLower(fmt.Sprintf("%v", v))
	switch s {
	case "true", "1", "on", "yes":
		return "yes"
	case "false", "0", "off", "no":
		return "no"
	case "route":
		return "route"
	}
	log.Printf("Invalid dhcp%ddomain value - %s", version, s)
	return "no"
}

func formatValue(v any) string {
	switch val := v.(type) {
	case bool:
		if val {
			return "true"
		}
		return "false"
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}
