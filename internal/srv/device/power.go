package device

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/frank26080115/fotokiosk/internal/srv/config"
)

type MonitorState int

const (
	MONITOR_ON_STATE MonitorState = iota
	MONITOR_ON_PENDING_STATE
	MONITOR_OFF_STATE
	MONITOR_OFF_PENDING_STATE
)

func (m MonitorState) String() string {
	switch m {
	case MONITOR_ON_STATE:
		return "on"
	case MONITOR_ON_PENDING_STATE:
		return "on-pending"
	case MONITOR_OFF_STATE:
		return "off"
	case MONITOR_OFF_PENDING_STATE:
		return "off-pending"
	}
	return "unknown"
}

// PowerDriver talks to whatever actually turns the panel on and off.
type PowerDriver interface {
	Setup(stayOn bool, autoOffSeconds int64) error
	ForceOn() error
	ForceOff() error
	// Probe reports whether the panel is currently lit.
	Probe() (bool, error)
	// Poke resets the idle countdown without changing the panel state.
	Poke() error
}

// Power tracks the panel state across our own commands and external changes
// (the display server timing out on its own, someone pressing the monitor
// button). Commands only move the state to a pending value; a probe confirms
// it. A failed probe keeps the previous state.
type Power struct {
	lock   sync.Mutex
	driver PowerDriver
	state  MonitorState

	stayOn      bool
	timeToSleep int64
	lastPoke    time.Time

	logDir string
}

func NewPower(serverConfig *config.ServerConfig) *Power {
	device := Power{
		state:       MONITOR_ON_PENDING_STATE,
		stayOn:      serverConfig.StayOn,
		timeToSleep: serverConfig.TimeToSleep,
		logDir:      serverConfig.ConfigDir,
	}

	if serverConfig.SimulationMode {
		device.driver = &noopPowerDriver{}
		return &device
	}

	switch serverConfig.PowerParam.Driver {
	case "gpio":
		device.driver = newGpioPowerDriver(serverConfig.PowerParam.BacklightPin)
	case "dpms":
		device.driver = newDpmsPowerDriver(serverConfig.PowerParam.HideMouse)
	default:
		device.driver = &noopPowerDriver{}
	}

	return &device
}

func (d *Power) Start() {
	logrus.Infof("Start power device")

	d.lock.Lock()
	defer d.lock.Unlock()

	autoOff := d.timeToSleep
	if d.stayOn {
		autoOff = 0
	}
	if err := d.driver.Setup(d.stayOn, autoOff); err != nil {
		logrus.Warnf("Unable to set up power driver: %v", err)
	}
	if err := d.driver.ForceOn(); err != nil {
		logrus.Warnf("Unable to turn monitor on: %v", err)
	}
}

func (d *Power) Stop() {
	logrus.Infof("Stop power device")

	d.lock.Lock()
	defer d.lock.Unlock()

	if err := d.driver.ForceOn(); err != nil {
		logrus.Warnf("Unable to restore monitor state: %v", err)
	}
}

func (d *Power) ForceOn() error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if err := d.driver.ForceOn(); err != nil {
		return err
	}
	d.setState(MONITOR_ON_PENDING_STATE)
	return nil
}

func (d *Power) ForceOff() error {
	d.lock.Lock()
	defer d.lock.Unlock()

	if err := d.driver.ForceOff(); err != nil {
		return err
	}
	d.setState(MONITOR_OFF_PENDING_STATE)
	return nil
}

// IsMonitorOn reconciles the tracked state against a fresh probe and reports
// whether the panel should be considered lit.
func (d *Power) IsMonitorOn() bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	lit, err := d.driver.Probe()
	if err != nil {
		logrus.Debugf("monitor probe failed, keeping state %s: %v", d.state, err)
		return d.isOn()
	}

	switch d.state {
	case MONITOR_ON_STATE:
		if !lit {
			d.setState(MONITOR_OFF_STATE)
		}
	case MONITOR_OFF_STATE:
		if lit {
			d.setState(MONITOR_ON_STATE)
		}
	case MONITOR_ON_PENDING_STATE:
		if lit {
			d.setState(MONITOR_ON_STATE)
		}
	case MONITOR_OFF_PENDING_STATE:
		if !lit {
			d.setState(MONITOR_OFF_STATE)
		}
	}

	return d.isOn()
}

// Poke resets the display server's idle countdown. An unforced poke is rate
// limited to half the sleep timeout; user activity pokes with force.
func (d *Power) Poke(force bool) {
	d.lock.Lock()
	defer d.lock.Unlock()

	now := time.Now()
	if !force {
		minInterval := d.timeToSleep
		if minInterval < 10 {
			minInterval = 10
		}
		minInterval = minInterval / 2

		if now.Sub(d.lastPoke) < time.Duration(minInterval)*time.Second {
			return
		}
	}
	d.lastPoke = now

	if err := d.driver.Poke(); err != nil {
		logrus.Debugf("monitor poke failed: %v", err)
	}
}

func (d *Power) isOn() bool {
	return d.state == MONITOR_ON_STATE || d.state == MONITOR_ON_PENDING_STATE
}

func (d *Power) setState(state MonitorState) {
	if state == d.state {
		return
	}
	logrus.Infof("Monitor state: %s -> %s", d.state, state)
	d.state = state
	d.appendLog(state)
}

// appendLog records the change in a per-day log file.
func (d *Power) appendLog(state MonitorState) {
	now := time.Now()
	name := filepath.Join(d.logDir, "monitor-log-"+now.Format("2006-01-02")+".txt")
	f, err := os.OpenFile(name, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0660)
	if err != nil {
		logrus.Debugf("unable to open monitor log: %v", err)
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "%s monitor %s\n", now.Format("2006-01-02 15:04:05"), state)
}

// noopPowerDriver is used in simulation mode and on panels we cannot drive.
type noopPowerDriver struct {
	lit bool
}

func (n *noopPowerDriver) Setup(stayOn bool, autoOffSeconds int64) error { n.lit = true; return nil }
func (n *noopPowerDriver) ForceOn() error                                { n.lit = true; return nil }
func (n *noopPowerDriver) ForceOff() error                               { n.lit = false; return nil }
func (n *noopPowerDriver) Probe() (bool, error)                          { return n.lit, nil }
func (n *noopPowerDriver) Poke() error                                   { return nil }
