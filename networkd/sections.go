package networkd

import (
	"fmt"
	"sort"
	"strings"
)

// Section identifies one stanza type of a networkd unit file. The set is
// fixed, so writing to an unknown section is a compile-time impossibility.
type Section int

const (
	SectionMatch Section = iota
	SectionLink
	SectionNetwork
	SectionDHCPv4
	SectionDHCPv6
	SectionAddress
	SectionRoute
	SectionNetDev
	SectionVLAN
	SectionBond
)

var sectionNames = map[Section]string{
	SectionMatch:   "Match",
	SectionLink:    "Link",
	SectionNetwork: "Network",
	SectionDHCPv4:  "DHCPv4",
	SectionDHCPv6:  "DHCPv6",
	SectionAddress: "Address",
	SectionRoute:   "Route",
	SectionNetDev:  "NetDev",
	SectionVLAN:    "VLAN",
	SectionBond:    "Bond",
}

func (s Section) String() string {
	return sectionNames[s]
}

// RouteSource tags where a route stanza originated, so that routes from
// different sources never merge into one [Route] block.
type RouteSource int

const (
	// RouteSourceAddress marks gateway routes derived from a subnet address
	RouteSourceAddress RouteSource = iota
	// RouteSourceGlobal marks routes declared at the network-state level
	RouteSourceGlobal
	// RouteSourceSubnet marks routes declared explicitly on a subnet
	RouteSourceSubnet
)

// RouteKey isolates one route stanza from all others. Keys order by source
// first, then by index within the source.
type RouteKey struct {
	Source RouteSource
	Index  int
}

// UnitConfig accumulates the contents of a single unit file: a set of
// deduplicated, sorted Key=Value lines per section, plus one line list per
// route key for the multi-stanza Route section. A UnitConfig is populated
// during one rendering pass, serialized once and discarded.
type UnitConfig struct {
	sections map[Section][]string
	routes   map[RouteKey][]string
}

// NewUnitConfig creates an empty unit accumulator
func NewUnitConfig() *UnitConfig {
	return &UnitConfig{
		sections: make(map[Section][]string),
		routes:   make(map[RouteKey][]string),
	}
}

// Add appends key=value to a section, keeping the section's lines unique and
// sorted. The Route section is only addressable through AddRoute and is
// ignored here.
func (u *UnitConfig) Add(sec Section, key, value string) {
	if sec == SectionRoute {
		return
	}
	u.sections[sec] = sortedUnique(append(u.sections[sec], fmt.Sprintf("%s=%s", key, value)))
}

// AddRoute appends key=value to the route stanza identified by rk, creating
// the stanza on first use.
func (u *UnitConfig) AddRoute(rk RouteKey, key, value string) {
	u.routes[rk] = sortedUnique(append(u.routes[rk], fmt.Sprintf("%s=%s", key, value)))
}

// Serialize emits the accumulated sections as unit-file text. Sections are
// emitted in lexicographic section-name order; every [Address] line becomes
// its own stanza; the Route section emits one [Route] stanza per route key.
// Insertion order never affects the output.
func (u *UnitConfig) Serialize() string {
	var b strings.Builder

	for _, sec := range sectionsByName() {
		if sec == SectionRoute {
			u.serializeRoutes(&b)
			continue
		}

		lines, _ := Canonicalize(u.sections[sec]).([]string)
		if len(lines) == 0 {
			continue
		}

		if sec == SectionAddress {
			// each address directive is its own stanza
			for _, line := range lines {
				fmt.Fprintf(&b, "[%s]\n%s\n\n", sec, line)
			}
			continue
		}

		fmt.Fprintf(&b, "[%s]\n", sec)
		for _, line := range lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	contents := b.String()
	if strings.HasSuffix(contents, "\n\n") {
		contents = contents[:len(contents)-1]
	}
	return contents
}

func (u *UnitConfig) serializeRoutes(b *strings.Builder) {
	keys := make([]RouteKey, 0, len(u.routes))
	for rk := range u.routes {
		keys = append(keys, rk)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Source != keys[j].Source {
			return keys[i].Source < keys[j].Source
		}
		return keys[i].Index < keys[j].Index
	})

	for _, rk := range keys {
		lines, _ := Canonicalize(u.routes[rk]).([]string)
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(b, "[%s]\n", SectionRoute)
		for _, line := range lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
}

func sectionsByName() []Section {
	secs := make([]Section, 0, len(sectionNames))
	for sec := range sectionNames {
		secs = append(secs, sec)
	}
	sort.Slice(secs, func(i, j int) bool {
		return secs[i].String() < secs[j].String()
	})
	return secs
}
