package sparki

import (
	"github.com/robotalks/sparki.go/pkg/comm"
	"github.com/robotalks/sparki.go/pkg/firmware"
	"github.com/robotalks/sparki.go/pkg/logging"
)

// Defaults of Beep.
const (
	DefaultBeepMS = 200
	DefaultBeepHz = 2800
)

// Limits of the actuators.
const (
	MaxBeepMS           = 10000
	MaxBeepHz           = 40000
	MaxGripperCM        = 7.0
	MaxLEDBrightness    = 100
	MaxSparkiDebugLevel = 5
)

// ServoSeconds is waited for the servo to reach a position.
const ServoSeconds = 0.1

// Status LED brightness for on and off.
const (
	StatusOn  = MaxLEDBrightness
	StatusOff = 0
)

// Beep plays hz for ms milliseconds and waits until it ends.
func (s *Session) Beep(ms, hz int) error {
	ms = s.clampInt("beep time", ms, 0, MaxBeepMS)
	hz = s.clampInt("beep frequency", hz, 0, MaxBeepHz)
	return s.sendAndWait(func() { s.wait(float64(ms) / 1000) }, firmware.Beep, hz, ms)
}

// Servo turns the ultrasonic sensor, positive is clockwise.
func (s *Session) Servo(deg int) error {
	deg = s.clampInt("servo position", deg, ServoLeft, ServoRight)
	return s.sendAndWait(func() { s.wait(ServoSeconds) }, firmware.Servo, deg)
}

// GripperOpen opens the gripper by cm.
func (s *Session) GripperOpen(cm float64) error {
	return s.gripper(firmware.GripperOpen, cm)
}

// GripperClose closes the gripper by cm.
func (s *Session) GripperClose(cm float64) error {
	return s.gripper(firmware.GripperClose, cm)
}

func (s *Session) gripper(op comm.Opcode, cm float64) error {
	cm = s.clamp("gripper distance", cm, 0, MaxGripperCM)
	return s.sendAndWait(func() { s.wait(cm) }, op, cm)
}

// GripperStop stops the gripper.
func (s *Session) GripperStop() error {
	return s.send(firmware.GripperStop)
}

// SetRGBLED sets the brightness of each color, 0 to 100.
func (s *Session) SetRGBLED(r, g, b int) error {
	if r == g && g == b && r != 0 {
		s.Logger.Logf(logging.Warn, "equal RGB values show a dim white, the LED is brightest with one color")
	}
	r = s.clampInt("red", r, 0, MaxLEDBrightness)
	g = s.clampInt("green", g, 0, MaxLEDBrightness)
	b = s.clampInt("blue", b, 0, MaxLEDBrightness)
	return s.send(firmware.SetRGBLED, r, g, b)
}

// SetStatusLED sets the brightness of the status LED, 0 to 100.
func (s *Session) SetStatusLED(level int) error {
	level = s.clampInt("status LED", level, StatusOff, StatusOn)
	return s.send(firmware.SetStatusLED, level)
}

// SetDebugLevel sets the verbosity of the firmware, 0 to 5.
func (s *Session) SetDebugLevel(level int) error {
	if err := s.require("SetDebugLevel", firmware.FeatureDebugs); err != nil {
		return err
	}
	level = s.clampInt("debug level", level, 0, MaxSparkiDebugLevel)
	return s.send(firmware.SetDebugLevel, level)
}

// Gamepad hands the robot over to the IR remote.
func (s *Session) Gamepad() error {
	return s.send(firmware.Gamepad)
}

// Noop keeps the link alive. Firmware without NOOP blinks the status LED.
func (s *Session) Noop() error {
	if err := s.require("Noop"); err != nil {
		return err
	}
	if s.Profile().Noop {
		return s.send(firmware.Noop)
	}
	if err := s.SetStatusLED(StatusOn); err != nil {
		return err
	}
	return s.SetStatusLED(StatusOff)
}
