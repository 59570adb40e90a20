package statemachine

import "testing"

import "github.com/stretchr/testify/assert"

func TestDecidePriorityOrder(t *testing.T) {
	cases := []struct {
		name        string
		enabled     bool
		batteryOK   bool
		networkOK   bool
		hasTorrents bool
		storageOK   bool
		want        State
	}{
		{"disabled wins over everything", false, false, false, false, false, Off},
		{"battery bad pauses even with torrents", true, false, true, true, true, Paused},
		{"network bad pauses", true, true, false, true, true, Paused},
		{"no torrents idles", true, true, true, false, true, Idle},
		{"over budget seeds", true, true, true, true, false, Seeding},
		{"everything green downloads", true, true, true, true, true, Downloading},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := New(nil)
			m.UpdateEnabled(c.enabled)
			m.UpdateBatteryOK(c.batteryOK)
			m.UpdateNetworkOK(c.networkOK)
			m.UpdateHasTorrents(c.hasTorrents)
			m.UpdateStorageOK(c.storageOK)
			assert.Equal(t, c.want, m.State())
		})
	}
}

func TestRedundantUpdateProducesNoTransition(t *testing.T) {
	calls := 0
	m := New(func(old, new State) { calls++ })
	m.UpdateEnabled(true)
	m.UpdateBatteryOK(true)
	m.UpdateNetworkOK(true)
	m.UpdateHasTorrents(false)
	before := calls
	m.UpdateHasTorrents(false)
	assert.Equal(t, before, calls, "re-setting the same value must not fire the callback")
}

func TestCallbackFiresExactlyOncePerActualTransition(t *testing.T) {
	var transitions [][2]State
	m := New(func(old, new State) {
		transitions = append(transitions, [2]State{old, new})
	})
	m.UpdateEnabled(true)     // Off -> Paused (battery and network still false)
	m.UpdateBatteryOK(true)   // no state change (network still false, so still Paused)
	m.UpdateNetworkOK(true)   // Paused -> Idle
	m.UpdateHasTorrents(true) // Idle -> Seeding (storageOK is still false)

	require := assert.New(t)
	require.NotEmpty(transitions)
	require.Equal(Off, transitions[0][0])
	require.Equal([][2]State{{Off, Paused}, {Paused, Idle}, {Idle, Seeding}}, transitions)
}
