package platform

import "net"

// NetworkUp reports whether any non-loopback interface is up and running.
// It has no way to distinguish Wi-Fi from cellular on a generic host, so
// callers treat "up" as the Wi-Fi signal and always report no cellular —
// good enough for the "is there a network at all" policy question this
// feeds into.
func NetworkUp() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return true // can't tell; don't needlessly pause the daemon
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagRunning != 0 {
			return true
		}
	}
	return false
}
