package sense

import (
	"github.com/abiosoft/ishell"

	"github.com/robotalks/sparki.go/pkg/cli/sh"
)

func connected(fn sh.CmdFunc) func(c *ishell.Context) {
	return sh.Do(sh.MustBeConnected(fn))
}

// Ping reads the range finder in centimeters.
func Ping(s *sh.Shell, args []string) (interface{}, error) {
	return s.Session.Ping()
}

// Light reads the left, center and right light sensors.
func Light(s *sh.Shell, args []string) (interface{}, error) {
	return s.Session.Light()
}

// Line reads the five line sensors.
func Line(s *sh.Shell, args []string) (interface{}, error) {
	return s.Session.Line()
}

// Accel reads the accelerometer.
func Accel(s *sh.Shell, args []string) (interface{}, error) {
	return s.Session.Accel()
}

// Mag reads the magnetometer.
func Mag(s *sh.Shell, args []string) (interface{}, error) {
	return s.Session.Mag()
}

// Compass reads the heading.
func Compass(s *sh.Shell, args []string) (interface{}, error) {
	return s.Session.Compass()
}

// ReceiveIR reads the last infrared code.
func ReceiveIR(s *sh.Shell, args []string) (interface{}, error) {
	return s.Session.ReceiveIR()
}

// Obstacle pings with the servo at DEGREES, or all of left, center
// and right without an argument.
func Obstacle(s *sh.Shell, args []string) (interface{}, error) {
	if len(args) == 0 {
		return s.Session.Obstacles()
	}
	deg, err := sh.IntArg(args, 0, "DEGREES")
	if err != nil {
		return nil, err
	}
	return s.Session.Obstacle(deg)
}

// SendIR transmits CODE.
func SendIR(s *sh.Shell, args []string) (interface{}, error) {
	code, err := sh.IntArg(args, 0, "CODE")
	if err != nil {
		return nil, err
	}
	return nil, s.Session.SendIR(code)
}

var (
	// PingCmd reads the ultrasonic range finder in centimeters.
	PingCmd = ishell.Cmd{
		Name:    "ping",
		Aliases: []string{"p"},
		Help:    "",
		Func:    connected(Ping),
	}

	// LightCmd reads the light sensors.
	LightCmd = ishell.Cmd{
		Name: "light",
		Help: "",
		Func: connected(Light),
	}

	// LineCmd reads the line sensors.
	LineCmd = ishell.Cmd{
		Name: "line",
		Help: "",
		Func: connected(Line),
	}

	// AccelCmd reads the accelerometer.
	AccelCmd = ishell.Cmd{
		Name: "accel",
		Help: "",
		Func: connected(Accel),
	}

	// MagCmd reads the magnetometer.
	MagCmd = ishell.Cmd{
		Name: "mag",
		Help: "",
		Func: connected(Mag),
	}

	// CompassCmd reads the heading.
	CompassCmd = ishell.Cmd{
		Name: "compass",
		Help: "",
		Func: connected(Compass),
	}

	// IRCmd reads the last infrared code received.
	IRCmd = ishell.Cmd{
		Name: "ir",
		Help: "",
		Func: connected(ReceiveIR),
	}

	// IRSendCmd sends an infrared code.
	IRSendCmd = ishell.Cmd{
		Name: "ir.send",
		Help: "CODE",
		Func: connected(SendIR),
	}

	// ObstacleCmd looks around with the range finder.
	ObstacleCmd = ishell.Cmd{
		Name:    "obstacle",
		Aliases: []string{"obs"},
		Help:    "[DEGREES]",
		Func:    connected(Obstacle),
	}
)

func init() {
	sh.AddCmds(
		&PingCmd,
		&LightCmd,
		&LineCmd,
		&AccelCmd,
		&MagCmd,
		&CompassCmd,
		&IRCmd,
		&IRSendCmd,
		&ObstacleCmd,
	)
}
