package util

import (
	"sort"
	"strings"
)

// IOS-XE interface type abbreviations accepted from chat input
var (
	shortToLong = map[string]string{
		"gi":   "GigabitEthernet",
		"gig":  "GigabitEthernet",
		"fa":   "FastEthernet",
		"te":   "TenGigabitEthernet",
		"twe":  "TwentyFiveGigE",
		"fo":   "FortyGigabitEthernet",
		"hu":   "HundredGigE",
		"lo":   "Loopback",
		"po":   "Port-channel",
		"vl":   "Vlan",
		"vlan": "Vlan",
		"tu":   "Tunnel",
	}

	// shortToLongSorted is longest-first so "vlan" wins over "vl"
	shortToLongSorted []string
)

func init() {
	shortToLongSorted = make([]string, 0, len(shortToLong))
	for k := range shortToLong {
		shortToLongSorted = append(shortToLongSorted, k)
	}
	sort.Slice(shortToLongSorted, func(i, j int) bool {
		if len(shortToLongSorted[i]) != len(shortToLongSorted[j]) {
			return len(shortToLongSorted[i]) > len(shortToLongSorted[j])
		}
		return shortToLongSorted[i] < shortToLongSorted[j]
	})
}

// NormalizeInterfaceName expands IOS-style abbreviations:
// gi1 -> GigabitEthernet1, Te0/0/1 -> TenGigabitEthernet0/0/1, lo0 -> Loopback0.
// Full or unknown names are returned trimmed but otherwise unchanged.
func NormalizeInterfaceName(name string) string {
	name = strings.TrimSpace(name)
	lower := strings.ToLower(name)

	for _, abbr := range shortToLongSorted {
		if strings.HasPrefix(lower, abbr) && len(name) > len(abbr) {
			suffix := name[len(abbr):]
			if suffix[0] >= '0' && suffix[0] <= '9' {
				return shortToLong[abbr] + suffix
			}
		}
	}
	return name
}

// SanitizeName replaces characters outside [A-Za-z0-9-] with hyphens,
// producing a string safe for file names and store keys.
func SanitizeName(name string) string {
	result := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' {
			result = append(result, c)
		} else {
			result = append(result, '-')
		}
	}
	return string(result)
}
