package netstate

// NewState creates a new network state with the given model version
func NewState(version int) *NetworkState {
	return &NetworkState{
		Version: version,
	}
}

// AddInterface appends an interface to the state
func (ns *NetworkState) AddInterface(iface Interface) {
	ns.Interfaces = append(ns.Interfaces, iface)
}

// AddRoute appends a global route to the state
func (ns *NetworkState) AddRoute(route Route) {
	ns.Routes = append(ns.Routes, route)
}

// AddEthernet adds version-2 per-device configuration for an ethernet
func (ns *NetworkState) AddEthernet(name string, cfg *DeviceConfig) {
	if ns.Ethernets == nil {
		ns.Ethernets = make(map[string]*DeviceConfig)
	}
	ns.Ethernets[name] = cfg
}

// AddVLAN adds a version-2 VLAN device declaration
func (ns *NetworkState) AddVLAN(name string, cfg *VLANDevice) {
	if ns.VLANs == nil {
		ns.VLANs = make(map[string]*VLANDevice)
	}
	ns.VLANs[name] = cfg
}

// AddBond adds a version-2 bond device declaration
func (ns *NetworkState) AddBond(name string, cfg *BondDevice) {
	if ns.Bonds == nil {
		ns.Bonds = make(map[string]*BondDevice)
	}
	ns.Bonds[name] = cfg
}

// Helper constructors for common interface shapes

// NewDHCPInterface creates a physical interface with a single DHCP subnet
func NewDHCPInterface(name, subnetType string) Interface {
	return Interface{
		Name:    name,
		Type:    "physical",
		Subnets: []Subnet{{Type: subnetType}},
	}
}

// NewStaticInterface creates a physical interface with a single static subnet
func NewStaticInterface(name, address string, prefix int, gateway string, nameservers []string) Interface {
	subnet := Subnet{
		Type:    "static",
		Address: address,
		Prefix:  prefix,
	}
	if gateway != "" {
		subnet.Gateway = gateway
	}
	if len(nameservers) > 0 {
		subnet.DNSNameservers = nameservers
	}

	return Interface{
		Name:    name,
		Type:    "physical",
		Subnets: []Subnet{subnet},
	}
}

// Bool is a helper function to create a pointer to a boolean value
func Bool(b bool) *bool {
	return &b
}

// Int is a helper function to create a pointer to an integer value
func Int(i int) *int {
	return &i
}
