package networkd

import (
	"log"
	"strconv"
	"strings"

	"netrender/netstate"
)

// deviceLinks carries the read-only associations computed once up front from
// the VLAN/bond declarations and consulted during each interface's render.
type deviceLinks struct {
	byMember map[string]string // parent/member interface -> device name
	macs     map[string]string // device name -> lowercased MAC address
	units    []Unit
}

func newDeviceLinks() *deviceLinks {
	return &deviceLinks{
		byMember: make(map[string]string),
		macs:     make(map[string]string),
	}
}

// renderVLANDevices emits one .netdev unit per well-formed VLAN declaration
// and records the parent-interface and MAC associations for the interface
// renders. Declarations missing 'id' or 'link' are skipped.
func renderVLANDevices(ns *netstate.NetworkState) *deviceLinks {
	links := newDeviceLinks()

	for _, name := range SortedKeys(ns.VLANs) {
		vlan := ns.VLANs[name]
		if vlan == nil || vlan.ID == nil || vlan.Link == "" {
			log.Printf("Skipping VLAN %s - missing 'id' or 'link'", name)
			continue
		}

		links.byMember[vlan.Link] = name

		cfg := NewUnitConfig()
		cfg.Add(SectionNetDev, "Name", name)
		cfg.Add(SectionNetDev, "Kind", "vlan")

		if vlan.MTU > 0 {
			cfg.Add(SectionNetDev, "MTUBytes", strconv.Itoa(vlan.MTU))
		}
		if vlan.MACAddress != "" {
			mac := strings.ToLower(vlan.MACAddress)
			cfg.Add(SectionNetDev, "MACAddress", mac)
			links.macs[name] = mac
		}

		cfg.Add(SectionVLAN, "Id", strconv.Itoa(*vlan.ID))

		links.units = append(links.units, Unit{Name: name, Kind: UnitNetDev, Contents: cfg.Serialize()})
	}

	return links
}

// renderBondDevices emits one .netdev unit per well-formed bond declaration
// and records every member-interface association. Declarations without
// member interfaces are skipped.
func renderBondDevices(ns *netstate.NetworkState) *deviceLinks {
	links := newDeviceLinks()

	for _, name := range SortedKeys(ns.Bonds) {
		bond := ns.Bonds[name]
		if bond == nil || len(bond.Interfaces) == 0 {
			log.Printf("Skipping bond %s - missing 'interfaces'", name)
			continue
		}

		for _, member := range bond.Interfaces {
			links.byMember[member] = name
		}

		cfg := NewUnitConfig()
		cfg.Add(SectionNetDev, "Name", name)
		cfg.Add(SectionNetDev, "Kind", "bond")

		if bond.MTU > 0 {
			cfg.Add(SectionNetDev, "MTUBytes", strconv.Itoa(bond.MTU))
		}
		if bond.MACAddress != "" {
			mac := strings.ToLower(bond.MACAddress)
			cfg.Add(SectionNetDev, "MACAddress", mac)
			links.macs[name] = mac
		}

		renderBondParameters(bond.Parameters, cfg)

		links.units = append(links.units, Unit{Name: name, Kind: UnitNetDev, Contents: cfg.Serialize()})
	}

	return links
}

// bondDurationParams are tunables expressed in milliseconds on the wire
var bondDurationParams = map[string]string{
	"mii-monitor-interval": "MIIMonitorSec",
	"updelay":              "UpDelaySec",
	"downdelay":            "DownDelaySec",
	"arp-interval":         "ARPIntervalSec",
}

// bondPlainParams translate one to one
var bondPlainParams = map[string]string{
	"mode":                 "Mode",
	"arp-validate":         "ARPValidate",
	"arp-all-targets":      "ARPAllTargets",
	"primary-reselect":     "PrimaryReselectPolicy",
	"lacp-rate":            "LACPTransmitRate",
	"transmit-hash-policy": "TransmitHashPolicy",
	"ad-select":            "AdSelect",
	"min-links":            "MinLinks",
}

func renderBondParameters(params map[string]any, cfg *UnitConfig) {
	for _, key := range SortedKeys(bondPlainParams) {
		if v, ok := params[key]; ok {
			cfg.Add(SectionBond, bondPlainParams[key], formatValue(v))
		}
	}

	for _, key := range SortedKeys(bondDurationParams) {
		if v, ok := params[key]; ok {
			cfg.Add(SectionBond, bondDurationParams[key], formatValue(v)+"ms")
		}
	}

	if v, ok := params["arp-ip-target"]; ok {
		cfg.Add(SectionBond, "ARPIPTargets", joinTargets(v))
	}

	if v, ok := params["all-slaves-active"]; ok {
		cfg.Add(SectionBond, "AllSlavesActive", strings.ToLower(formatValue(v)))
	}
}

// joinTargets space-joins an ARP target list; a bare string is passed through
func joinTargets(v any) string {
	switch targets := v.(type) {
	case string:
		return targets
	case []string:
		return strings.Join(targets, " ")
	case []any:
		parts := make([]string, len(targets))
		for i, t := range targets {
			parts[i] = formatValue(t)
		}
		return strings.Join(parts, " ")
	}
	return formatValue(v)
}
