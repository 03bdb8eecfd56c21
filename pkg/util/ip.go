package util

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// IsValidIPv4 checks if a string is a valid IPv4 address
func IsValidIPv4(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	return ip != nil && ip.To4() != nil && !strings.Contains(ipStr, ":")
}

// PrefixLenToNetmask converts a prefix length (0-32) to dotted-quad form.
func PrefixLenToNetmask(prefixLen int) (string, error) {
	if prefixLen < 0 || prefixLen > 32 {
		return "", fmt.Errorf("prefix length must be between 0 and 32, got %d", prefixLen)
	}
	return net.IP(net.CIDRMask(prefixLen, 32)).String(), nil
}

// NetmaskToPrefixLen converts a dotted-quad netmask to its prefix length.
// Non-contiguous masks such as 255.0.255.0 are rejected.
func NetmaskToPrefixLen(mask string) (int, error) {
	ip := net.ParseIP(mask)
	if ip == nil || ip.To4() == nil {
		return 0, fmt.Errorf("invalid netmask: %s", mask)
	}
	ones, bits := net.IPMask(ip.To4()).Size()
	if bits == 0 {
		return 0, fmt.Errorf("non-contiguous netmask: %s", mask)
	}
	return ones, nil
}

// NormalizeNetmask accepts "255.255.255.0", "24" or "/24" and returns the
// dotted-quad netmask the device models expect.
func NormalizeNetmask(mask string) (string, error) {
	mask = strings.TrimSpace(mask)
	if strings.Contains(mask, ".") {
		if _, err := NetmaskToPrefixLen(mask); err != nil {
			return "", err
		}
		return mask, nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(mask, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid netmask: %s", mask)
	}
	return PrefixLenToNetmask(n)
}

// FormatPrefix renders an address and dotted-quad mask as CIDR notation,
// falling back to "addr/mask" when the mask cannot be converted.
func FormatPrefix(addr, mask string) string {
	if mask == "" {
		return addr
	}
	if n, err := NetmaskToPrefixLen(mask); err == nil {
		return fmt.Sprintf("%s/%d", addr, n)
	}
	return addr + "/" + mask
}
