package netstate

// NetworkState is the abstract, version-agnostic network configuration model
// consumed by the renderer. Version 1 states carry global DNS settings;
// version 2 states carry per-device configuration (ethernets/vlans/bonds).
type NetworkState struct {
	Version    int         `yaml:"version"`
	Interfaces []Interface `yaml:"interfaces,omitempty"`
	Routes     []Route     `yaml:"routes,omitempty"`

	// Version 1 only: global DNS settings used as a fallback for
	// interfaces that carry no DNS block of their own.
	DNSSearchDomains []string `yaml:"dns-searchdomains,omitempty"`
	DNSNameservers   []string `yaml:"dns-nameservers,omitempty"`

	// Version 2 only: per-device configuration keyed by device name.
	Ethernets map[string]*DeviceConfig `yaml:"ethernets,omitempty"`
	VLANs     map[string]*VLANDevice   `yaml:"vlans,omitempty"`
	Bonds     map[string]*BondDevice   `yaml:"bonds,omitempty"`
}

// Interface represents a single network interface in the abstract model
type Interface struct {
	Name       string     `yaml:"name"`
	Type       string     `yaml:"type"` // "physical", "vlan", "bond", ...
	MACAddress string     `yaml:"mac-address,omitempty"`
	MTU        int        `yaml:"mtu,omitempty"`
	Optional   bool       `yaml:"optional,omitempty"`
	AcceptRA   *bool      `yaml:"accept-ra,omitempty"`
	Driver     string     `yaml:"driver,omitempty"`
	Subnets    []Subnet   `yaml:"subnets,omitempty"`
	DNS        *DNSConfig `yaml:"dns,omitempty"`
}

// Subnet represents one address configuration attached to an interface
type Subnet struct {
	Type           string   `yaml:"type"` // "dhcp4", "dhcp", "dhcp6", "static", "manual", ...
	Address        string   `yaml:"address,omitempty"`
	Prefix         int      `yaml:"prefix,omitempty"`
	Gateway        string   `yaml:"gateway,omitempty"`
	DNSNameservers []string `yaml:"dns-nameservers,omitempty"`
	DNSSearch      []string `yaml:"dns-search,omitempty"`
	Routes         []Route  `yaml:"routes,omitempty"`
}

// Route represents a route, either declared on a subnet or globally. Prefix
// is a pointer so a declared /0 (a default route) is distinguishable from an
// absent prefix.
type Route struct {
	Network string `yaml:"network,omitempty"`
	Prefix  *int   `yaml:"prefix,omitempty"`
	Gateway string `yaml:"gateway,omitempty"`
	Metric  *int   `yaml:"metric,omitempty"`
}

// DNSConfig holds DNS settings, either per-interface or global
type DNSConfig struct {
	Search      []string `yaml:"search,omitempty"`
	Nameservers []string `yaml:"nameservers,omitempty"`
}

// VLANDevice is a version-2 VLAN device declaration. ID and Link are
// required; declarations missing either are skipped by the renderer.
type VLANDevice struct {
	ID         *int   `yaml:"id"`
	Link       string `yaml:"link"`
	MTU        int    `yaml:"mtu,omitempty"`
	MACAddress string `yaml:"macaddress,omitempty"`
}

// BondDevice is a version-2 bond device declaration. Interfaces must be
// non-empty; declarations without members are skipped by the renderer.
type BondDevice struct {
	Interfaces []string       `yaml:"interfaces"`
	MTU        int            `yaml:"mtu,omitempty"`
	MACAddress string         `yaml:"macaddress,omitempty"`
	Parameters map[string]any `yaml:"parameters,omitempty"`
}

// DeviceConfig carries the version-2 per-ethernet settings that are not part
// of the flattened interface model: set-name aliasing, DHCP override blocks
// and the legacy per-protocol domain toggles.
type DeviceConfig struct {
	SetName        string         `yaml:"set-name,omitempty"`
	DHCP4Domain    any            `yaml:"dhcp4domain,omitempty"`
	DHCP6Domain    any            `yaml:"dhcp6domain,omitempty"`
	DHCP4Overrides map[string]any `yaml:"dhcp4-overrides,omitempty"`
	DHCP6Overrides map[string]any `yaml:"dhcp6-overrides,omitempty"`
}

// IterInterfaces returns the interfaces in declaration order
func (ns *NetworkState) IterInterfaces() []Interface {
	return ns.Interfaces
}

// IterRoutes returns the routes declared at the network-state level, not
// tied to any one subnet
func (ns *NetworkState) IterRoutes() []Route {
	return ns.Routes
}

// DomainToggle returns the legacy dhcp domain toggle for the given protocol
// version, and whether one was declared.
func (d *DeviceConfig) DomainToggle(version int) (any, bool) {
	switch version {
	case 4:
		return d.DHCP4Domain, d.DHCP4Domain != nil
	case 6:
		return d.DHCP6Domain, d.DHCP6Domain != nil
	}
	return nil, false
}

// Overrides returns the DHCP override map for the given protocol version
func (d *DeviceConfig) Overrides(version int) map[string]any {
	switch version {
	case 4:
		return d.DHCP4Overrides
	case 6:
		return d.DHCP6Overrides
	}
	return nil
}
