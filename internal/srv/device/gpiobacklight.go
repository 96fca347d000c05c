package device

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// gpioPowerDriver switches a panel backlight wired to a GPIO pin. There is
// nothing to probe on such panels, so the last commanded level is the truth.
type gpioPowerDriver struct {
	pinName string
	pin     gpio.PinIO
	lit     bool
}

func newGpioPowerDriver(pinName string) *gpioPowerDriver {
	if _, err := host.Init(); err != nil {
		logrus.Fatalf("Unable to initialize gpio host: %v", err)
	}

	driver := gpioPowerDriver{pinName: pinName}
	driver.pin = gpioreg.ByName(pinName)
	if driver.pin == nil {
		logrus.Fatalf("Failed to find backlight pin %s", pinName)
	}
	return &driver
}

func (g *gpioPowerDriver) Setup(stayOn bool, autoOffSeconds int64) error {
	return g.ForceOn()
}

func (g *gpioPowerDriver) ForceOn() error {
	if err := g.pin.Out(gpio.High); err != nil {
		return fmt.Errorf("backlight pin %s: %w", g.pinName, err)
	}
	g.lit = true
	return nil
}

func (g *gpioPowerDriver) ForceOff() error {
	if err := g.pin.Out(gpio.Low); err != nil {
		return fmt.Errorf("backlight pin %s: %w", g.pinName, err)
	}
	g.lit = false
	return nil
}

func (g *gpioPowerDriver) Probe() (bool, error) {
	return g.lit, nil
}

func (g *gpioPowerDriver) Poke() error {
	return nil
}
