// Package statemachine maps the five boolean conditions Levin cares about
// onto exactly one of five activity states.
package statemachine

// State is one of the five activity modes the orchestrator drives the
// torrent session into.
type State int

const (
	Off State = iota
	Paused
	Idle
	Seeding
	Downloading
)

func (s State) String() string {
	switch s {
	case Off:
		return "OFF"
	case Paused:
		return "PAUSED"
	case Idle:
		return "IDLE"
	case Seeding:
		return "SEEDING"
	case Downloading:
		return "DOWNLOADING"
	default:
		return "UNKNOWN"
	}
}

// TransitionFunc is invoked synchronously, on the same goroutine as the
// Update call that triggered it, exactly once per actual state change. It
// must not call back into the Machine.
type TransitionFunc func(old, new State)

// Machine holds the five conditions and the state they currently resolve
// to. It is not safe for concurrent use — the orchestrator's tick loop is
// its only caller.
type Machine struct {
	enabled     bool
	batteryOK   bool
	networkOK   bool
	hasTorrents bool
	storageOK   bool

	current      State
	onTransition TransitionFunc
}

// New creates a Machine in state Off (all conditions false) and installs
// the transition callback.
func New(onTransition TransitionFunc) *Machine {
	return &Machine{
		current:      Off,
		onTransition: onTransition,
	}
}

// State returns the machine's current state.
func (m *Machine) State() State {
	return m.current
}

// UpdateEnabled sets the enabled condition. No-op if unchanged.
func (m *Machine) UpdateEnabled(v bool) {
	if m.enabled == v {
		return
	}
	m.enabled = v
	m.evaluate()
}

// UpdateBatteryOK sets the battery_ok condition. No-op if unchanged.
func (m *Machine) UpdateBatteryOK(v bool) {
	if m.batteryOK == v {
		return
	}
	m.batteryOK = v
	m.evaluate()
}

// UpdateNetworkOK sets the network_ok condition. No-op if unchanged.
func (m *Machine) UpdateNetworkOK(v bool) {
	if m.networkOK == v {
		return
	}
	m.networkOK = v
	m.evaluate()
}

// UpdateHasTorrents sets the has_torrents condition. No-op if unchanged.
func (m *Machine) UpdateHasTorrents(v bool) {
	if m.hasTorrents == v {
		return
	}
	m.hasTorrents = v
	m.evaluate()
}

// UpdateStorageOK sets the storage_ok condition. No-op if unchanged.
func (m *Machine) UpdateStorageOK(v bool) {
	if m.storageOK == v {
		return
	}
	m.storageOK = v
	m.evaluate()
}

// evaluate recomputes the state from the current conditions in priority
// order and fires the transition callback exactly once if it changed.
func (m *Machine) evaluate() {
	next := m.decide()
	if next == m.current {
		return
	}
	old := m.current
	m.current = next
	if m.onTransition != nil {
		m.onTransition(old, next)
	}
}

func (m *Machine) decide() State {
	switch {
	case !m.enabled:
		return Off
	case !m.batteryOK || !m.networkOK:
		return Paused
	case !m.hasTorrents:
		return Idle
	case !m.storageOK:
		return Seeding
	default:
		return Downloading
	}
}
