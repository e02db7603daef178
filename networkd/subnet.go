package networkd

import (
	"log"
	"net"
	"strings"
)

// stripCIDR removes the CIDR notation (e.g., /24) from an IP address
func stripCIDR(ip string) string {
	if idx := strings.Index(ip, "/"); idx != -1 {
		return ip[:idx]
	}
	return ip
}

// InSameSubnet checks if an IP address falls within a CIDR network
func InSameSubnet(cidr, ip string) bool {
	_, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return false
	}

	addr := net.ParseIP(stripCIDR(ip))
	if addr == nil {
		return false
	}

	return ipNet.Contains(addr)
}

// gatewayOnLink reports whether a GatewayOnLink flag is needed: the gateway
// lies outside the subnet's own network, so the target system must be told
// the gateway is reachable without an intervening route. Unparseable input
// is logged and treated as not needing the flag.
func gatewayOnLink(gateway, addrCIDR string) bool {
	_, ipNet, err := net.ParseCIDR(addrCIDR)
	if err != nil {
		log.Printf("Failed to parse address %s: %v", addrCIDR, err)
		return false
	}

	addr := net.ParseIP(stripCIDR(gateway))
	if addr == nil {
		log.Printf("Failed to parse gateway address %s", gateway)
		return false
	}

	return !ipNet.Contains(addr)
}
