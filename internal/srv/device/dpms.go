package device

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// dpmsPowerDriver drives an X display through xset. The display server turns
// the monitor off on its own after the configured idle time; probing parses
// `xset q` to find out what it actually did.
type dpmsPowerDriver struct {
	hideMouse bool
}

func newDpmsPowerDriver(hideMouse bool) *dpmsPowerDriver {
	return &dpmsPowerDriver{hideMouse: hideMouse}
}

func (x *dpmsPowerDriver) Setup(stayOn bool, autoOffSeconds int64) error {
	if x.hideMouse {
		// unclutter daemonizes itself, no need to track the process
		if err := exec.Command("unclutter", "-idle", "1", "-root").Start(); err != nil {
			logrus.Warnf("Unable to start unclutter: %v", err)
		}
	}

	if stayOn || autoOffSeconds <= 0 {
		if err := exec.Command("xset", "s", "off").Run(); err != nil {
			return err
		}
		return exec.Command("xset", "-dpms").Run()
	}

	if err := exec.Command("xset", "s", "off").Run(); err != nil {
		return err
	}
	return exec.Command("xset", "dpms", "0", "0", fmt.Sprintf("%d", autoOffSeconds)).Run()
}

func (x *dpmsPowerDriver) ForceOn() error {
	return exec.Command("xset", "dpms", "force", "on").Run()
}

func (x *dpmsPowerDriver) ForceOff() error {
	return exec.Command("xset", "dpms", "force", "off").Run()
}

func (x *dpmsPowerDriver) Probe() (bool, error) {
	out, err := exec.Command("xset", "q").Output()
	if err != nil {
		return false, err
	}
	return parseXsetMonitor(string(out))
}

func (x *dpmsPowerDriver) Poke() error {
	return exec.Command("xset", "s", "reset").Run()
}

func parseXsetMonitor(out string) (bool, error) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "Monitor is ") {
			return strings.HasSuffix(line, "On"), nil
		}
	}
	return false, fmt.Errorf("no monitor state in xset output")
}
