package device

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakePowerDriver struct {
	lit      bool
	probeErr error
	pokes    int
}

func (f *fakePowerDriver) Setup(stayOn bool, autoOffSeconds int64) error { return nil }
func (f *fakePowerDriver) ForceOn() error                                { f.lit = true; return nil }
func (f *fakePowerDriver) ForceOff() error                               { f.lit = false; return nil }
func (f *fakePowerDriver) Probe() (bool, error)                          { return f.lit, f.probeErr }
func (f *fakePowerDriver) Poke() error                                   { f.pokes++; return nil }

func newTestPower(t *testing.T, driver PowerDriver, state MonitorState) *Power {
	t.Helper()
	return &Power{
		driver:      driver,
		state:       state,
		timeToSleep: 300,
		logDir:      t.TempDir(),
	}
}

func TestIsMonitorOnConfirmsPendingStates(t *testing.T) {
	driver := &fakePowerDriver{lit: true}
	power := newTestPower(t, driver, MONITOR_ON_PENDING_STATE)

	require.True(t, power.IsMonitorOn())
	require.Equal(t, MONITOR_ON_STATE, power.state)

	require.NoError(t, power.ForceOff())
	require.Equal(t, MONITOR_OFF_PENDING_STATE, power.state)
	require.False(t, power.IsMonitorOn())
	require.Equal(t, MONITOR_OFF_STATE, power.state)
}

func TestIsMonitorOnPendingHoldsUntilConfirmed(t *testing.T) {
	// The panel takes a while to obey; a probe still showing the old state
	// must not flip a pending state back.
	driver := &fakePowerDriver{}
	power := newTestPower(t, driver, MONITOR_ON_PENDING_STATE)

	driver.lit = false
	require.True(t, power.IsMonitorOn())
	require.Equal(t, MONITOR_ON_PENDING_STATE, power.state)

	power.state = MONITOR_OFF_PENDING_STATE
	driver.lit = true
	require.False(t, power.IsMonitorOn())
	require.Equal(t, MONITOR_OFF_PENDING_STATE, power.state)
}

func TestIsMonitorOnTracksExternalChanges(t *testing.T) {
	driver := &fakePowerDriver{lit: false}
	power := newTestPower(t, driver, MONITOR_ON_STATE)

	require.False(t, power.IsMonitorOn())
	require.Equal(t, MONITOR_OFF_STATE, power.state)

	driver.lit = true
	require.True(t, power.IsMonitorOn())
	require.Equal(t, MONITOR_ON_STATE, power.state)
}

func TestIsMonitorOnKeepsStateOnProbeError(t *testing.T) {
	driver := &fakePowerDriver{lit: false, probeErr: errors.New("no display")}
	power := newTestPower(t, driver, MONITOR_ON_STATE)

	require.True(t, power.IsMonitorOn())
	require.Equal(t, MONITOR_ON_STATE, power.state)
}

func TestForceOnMovesToPending(t *testing.T) {
	driver := &fakePowerDriver{}
	power := newTestPower(t, driver, MONITOR_OFF_STATE)

	require.NoError(t, power.ForceOn())
	require.Equal(t, MONITOR_ON_PENDING_STATE, power.state)
	require.True(t, driver.lit)
}

func TestParseXsetMonitor(t *testing.T) {
	on, err := parseXsetMonitor("Keyboard Control:\nDPMS is Enabled\n  Monitor is On\n")
	require.NoError(t, err)
	require.True(t, on)

	on, err = parseXsetMonitor("  Monitor is Off\n")
	require.NoError(t, err)
	require.False(t, on)

	_, err = parseXsetMonitor("no dpms section here")
	require.Error(t, err)
}

func TestPokeRateLimited(t *testing.T) {
	driver := &fakePowerDriver{}
	power := newTestPower(t, driver, MONITOR_ON_STATE)

	power.Poke(false)
	power.Poke(false)
	require.Equal(t, 1, driver.pokes)

	power.lastPoke = time.Now().Add(-time.Duration(power.timeToSleep) * time.Second)
	power.Poke(false)
	require.Equal(t, 2, driver.pokes)
}

func TestForcedPokeSkipsRateLimit(t *testing.T) {
	driver := &fakePowerDriver{}
	power := newTestPower(t, driver, MONITOR_ON_STATE)

	power.Poke(true)
	power.Poke(true)
	power.Poke(false)
	require.Equal(t, 2, driver.pokes)
}

func TestStateChangeWritesDailyLog(t *testing.T) {
	driver := &fakePowerDriver{}
	power := newTestPower(t, driver, MONITOR_ON_STATE)

	require.NoError(t, power.ForceOff())

	name := filepath.Join(power.logDir, "monitor-log-"+time.Now().Format("2006-01-02")+".txt")
	raw, err := os.ReadFile(name)
	require.NoError(t, err)
	require.Contains(t, string(raw), "monitor off-pending")
}
