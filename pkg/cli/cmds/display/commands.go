package display

import (
	"github.com/abiosoft/ishell"

	"github.com/robotalks/sparki.go/pkg/cli/sh"
	"github.com/robotalks/sparki.go/pkg/sparki"
)

func connected(fn sh.CmdFunc) func(c *ishell.Context) {
	return sh.Do(sh.MustBeConnected(fn))
}

// Beep plays a tone, MS and HZ default to 200ms at 2800Hz.
func Beep(s *sh.Shell, args []string) (interface{}, error) {
	ms, err := sh.OptIntArg(args, 0, "MS", sparki.DefaultBeepMS)
	if err != nil {
		return nil, err
	}
	hz, err := sh.OptIntArg(args, 1, "HZ", sparki.DefaultBeepHz)
	if err != nil {
		return nil, err
	}
	return nil, s.Session.Beep(ms, hz)
}

// Servo points the range finder.
func Servo(s *sh.Shell, args []string) (interface{}, error) {
	deg, err := sh.IntArg(args, 0, "DEGREES")
	if err != nil {
		return nil, err
	}
	return nil, s.Session.Servo(deg)
}

func gripper(move func(*sparki.Session, float64) error) sh.CmdFunc {
	return func(s *sh.Shell, args []string) (interface{}, error) {
		cm, err := sh.OptFloatArg(args, 0, "CM", sparki.MaxGripperCM)
		if err != nil {
			return nil, err
		}
		return nil, move(s.Session, cm)
	}
}

func lcdText(show func(*sparki.Session, string, bool) error) sh.CmdFunc {
	return func(s *sh.Shell, args []string) (interface{}, error) {
		text, err := sh.TextArg(args, 0, "TEXT")
		if err != nil {
			return nil, err
		}
		return nil, show(s.Session, text, true)
	}
}

// LCDPixel draws a pixel.
func LCDPixel(s *sh.Shell, args []string) (interface{}, error) {
	x, err := sh.IntArg(args, 0, "X")
	if err != nil {
		return nil, err
	}
	y, err := sh.IntArg(args, 1, "Y")
	if err != nil {
		return nil, err
	}
	return nil, s.Session.LCDDrawPixel(x, y, true)
}

// LCDString draws TEXT at column X of LINE.
func LCDString(s *sh.Shell, args []string) (interface{}, error) {
	x, err := sh.IntArg(args, 0, "X")
	if err != nil {
		return nil, err
	}
	line, err := sh.IntArg(args, 1, "LINE")
	if err != nil {
		return nil, err
	}
	text, err := sh.TextArg(args, 2, "TEXT")
	if err != nil {
		return nil, err
	}
	return nil, s.Session.LCDDrawString(x, line, text, true)
}

// LCDRead reads a pixel.
func LCDRead(s *sh.Shell, args []string) (interface{}, error) {
	x, err := sh.IntArg(args, 0, "X")
	if err != nil {
		return nil, err
	}
	y, err := sh.IntArg(args, 1, "Y")
	if err != nil {
		return nil, err
	}
	return s.Session.LCDReadPixel(x, y)
}

// LCDColor sets the drawing color, black or white.
func LCDColor(s *sh.Shell, args []string) (interface{}, error) {
	if len(args) == 0 {
		return s.Session.LCDColor(), nil
	}
	color := sparki.LCDBlack
	switch args[0] {
	case "black", "0":
	case "white", "1":
		color = sparki.LCDWhite
	default:
		n, err := sh.IntArg(args, 0, "COLOR")
		if err != nil {
			return nil, err
		}
		color = n
	}
	return nil, s.Session.LCDSetColor(color)
}

// RGB sets the RGB LED.
func RGB(s *sh.Shell, args []string) (interface{}, error) {
	var vals [3]int
	for n, name := range []string{"R", "G", "B"} {
		val, err := sh.IntArg(args, n, name)
		if err != nil {
			return nil, err
		}
		vals[n] = val
	}
	return nil, s.Session.SetRGBLED(vals[0], vals[1], vals[2])
}

// Status sets the status LED, LEVEL is a brightness or on/off.
func Status(s *sh.Shell, args []string) (interface{}, error) {
	level, err := sh.IntArg(args, 0, "LEVEL")
	if err != nil {
		on, berr := sh.BoolArg(args, 0, "LEVEL", true)
		if berr != nil {
			return nil, err
		}
		level = sparki.StatusOff
		if on {
			level = sparki.StatusOn
		}
	}
	return nil, s.Session.SetStatusLED(level)
}

var (
	// BeepCmd plays a tone.
	BeepCmd = ishell.Cmd{
		Name: "beep",
		Help: "[MS] [HZ]",
		Func: connected(Beep),
	}

	// ServoCmd turns the range finder.
	ServoCmd = ishell.Cmd{
		Name: "servo",
		Help: "DEGREES(-80..80)",
		Func: connected(Servo),
	}

	// GripperOpenCmd opens the gripper.
	GripperOpenCmd = ishell.Cmd{
		Name: "gripper.open",
		Help: "[CM]",
		Func: connected(gripper((*sparki.Session).GripperOpen)),
	}

	// GripperCloseCmd closes the gripper.
	GripperCloseCmd = ishell.Cmd{
		Name: "gripper.close",
		Help: "[CM]",
		Func: connected(gripper((*sparki.Session).GripperClose)),
	}

	// GripperStopCmd stops the gripper.
	GripperStopCmd = ishell.Cmd{
		Name: "gripper.stop",
		Help: "",
		Func: connected(func(s *sh.Shell, args []string) (interface{}, error) {
			return nil, s.Session.GripperStop()
		}),
	}

	// LCDClearCmd clears the LCD.
	LCDClearCmd = ishell.Cmd{
		Name: "lcd.clear",
		Help: "",
		Func: connected(func(s *sh.Shell, args []string) (interface{}, error) {
			return nil, s.Session.LCDClear(true)
		}),
	}

	// LCDPrintCmd prints on the LCD.
	LCDPrintCmd = ishell.Cmd{
		Name: "lcd.print",
		Help: "TEXT",
		Func: connected(lcdText((*sparki.Session).LCDPrint)),
	}

	// LCDPrintLnCmd prints a line on the LCD.
	LCDPrintLnCmd = ishell.Cmd{
		Name: "lcd.println",
		Help: "TEXT",
		Func: connected(lcdText((*sparki.Session).LCDPrintLn)),
	}

	// LCDUpdateCmd shows what was drawn.
	LCDUpdateCmd = ishell.Cmd{
		Name: "lcd.update",
		Help: "",
		Func: connected(func(s *sh.Shell, args []string) (interface{}, error) {
			return nil, s.Session.LCDUpdate()
		}),
	}

	// LCDPixelCmd draws a pixel.
	LCDPixelCmd = ishell.Cmd{
		Name: "lcd.pixel",
		Help: "X Y",
		Func: connected(LCDPixel),
	}

	// LCDStringCmd draws a string.
	LCDStringCmd = ishell.Cmd{
		Name: "lcd.string",
		Help: "X LINE TEXT",
		Func: connected(LCDString),
	}

	// LCDReadCmd reads a pixel.
	LCDReadCmd = ishell.Cmd{
		Name: "lcd.read",
		Help: "X Y",
		Func: connected(LCDRead),
	}

	// LCDColorCmd gets or sets the drawing color.
	LCDColorCmd = ishell.Cmd{
		Name: "lcd.color",
		Help: "[black|white]",
		Func: connected(LCDColor),
	}

	// RGBCmd sets the RGB LED.
	RGBCmd = ishell.Cmd{
		Name: "led.rgb",
		Help: "R G B (0..100)",
		Func: connected(RGB),
	}

	// StatusLEDCmd sets the status LED.
	StatusLEDCmd = ishell.Cmd{
		Name: "led.status",
		Help: "LEVEL(0..100)|on|off",
		Func: connected(Status),
	}
)

func init() {
	sh.AddCmds(
		&BeepCmd,
		&ServoCmd,
		&GripperOpenCmd,
		&GripperCloseCmd,
		&GripperStopCmd,
		&LCDClearCmd,
		&LCDPrintCmd,
		&LCDPrintLnCmd,
		&LCDUpdateCmd,
		&LCDPixelCmd,
		&LCDStringCmd,
		&LCDReadCmd,
		&LCDColorCmd,
		&RGBCmd,
		&StatusLEDCmd,
	)
}
