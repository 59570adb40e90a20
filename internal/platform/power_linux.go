//go:build linux

package platform

import (
	"os"
	"path/filepath"
	"strings"
)

// IsOnACPower scans /sys/class/power_supply for a Mains supply reporting
// online, exactly as the original power.cpp does. It defaults to true
// (assume AC, don't needlessly throttle a desktop with no battery) when
// the sysfs tree is absent or inconclusive.
func IsOnACPower() bool {
	const root = "/sys/class/power_supply"
	entries, err := os.ReadDir(root)
	if err != nil {
		return true
	}

	found := false
	for _, e := range entries {
		typ, err := os.ReadFile(filepath.Join(root, e.Name(), "type"))
		if err != nil || strings.TrimSpace(string(typ)) != "Mains" {
			continue
		}
		found = true
		online, err := os.ReadFile(filepath.Join(root, e.Name(), "online"))
		if err == nil && strings.TrimSpace(string(online)) == "1" {
			return true
		}
	}
	if !found {
		return true
	}
	return false
}
