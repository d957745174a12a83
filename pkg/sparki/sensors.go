package sparki

import (
	"github.com/robotalks/sparki.go/pkg/comm"
	"github.com/robotalks/sparki.go/pkg/firmware"
)

// Indices of Light.
const (
	LightLeft = iota
	LightCenter
	LightRight
)

// Indices of Line.
const (
	LineEdgeLeft = iota
	LineLeft
	LineCenter
	LineRight
	LineEdgeRight
)

// Servo positions of Obstacles.
const (
	ServoLeft   = -80
	ServoCenter = 0
	ServoRight  = 80
)

// Ping returns the ultrasonic distance in centimeters, -1 when
// nothing is in range.
func (s *Session) Ping() (int, error) {
	vals := make([]int, 1)
	err := s.queryInts(firmware.Ping, vals)
	return vals[0], err
}

// Light reads the left, center and right light sensors.
func (s *Session) Light() (vals [3]int, err error) {
	err = s.queryInts(firmware.GetLight, vals[:])
	return
}

// Line reads the line sensors from the left edge to the right edge.
func (s *Session) Line() (vals [5]int, err error) {
	err = s.queryInts(firmware.GetLine, vals[:])
	return
}

// Accel reads the X, Y and Z accelerometers.
func (s *Session) Accel() (vals [3]float64, err error) {
	if err = s.require("Accel", firmware.FeatureAccel); err != nil {
		return
	}
	err = s.queryFloats(firmware.GetAccel, vals[:])
	return
}

// Mag reads the X, Y and Z magnetometers.
func (s *Session) Mag() (vals [3]float64, err error) {
	if err = s.require("Mag", firmware.FeatureMag); err != nil {
		return
	}
	err = s.queryFloats(firmware.GetMag, vals[:])
	return
}

// Compass returns the heading from the magnetometers, it can be flaky.
func (s *Session) Compass() (float64, error) {
	if err := s.require("Compass", firmware.FeatureMag); err != nil {
		return -1, err
	}
	vals := make([]float64, 1)
	err := s.queryFloats(firmware.Compass, vals)
	return vals[0], err
}

// ReceiveIR returns the last code received by the IR sensor,
// -1 if none.
func (s *Session) ReceiveIR() (int, error) {
	vals := make([]int, 1)
	err := s.queryInts(firmware.ReceiveIR, vals)
	return vals[0], err
}

// SendIR transmits a code through the IR emitter.
func (s *Session) SendIR(code int) error {
	return s.send(firmware.SendIR, code)
}

// Obstacle turns the servo to deg and pings.
func (s *Session) Obstacle(deg int) (dist int, err error) {
	deg = s.clampInt("obstacle position", deg, ServoLeft, ServoRight)
	err = s.dispatcher.Do(func(c *comm.Conn) error {
		if err := c.SendCommand(firmware.Servo, deg); err != nil {
			return err
		}
		s.wait(ServoSeconds)
		if err := c.SendCommand(firmware.Ping); err != nil {
			return err
		}
		dist, err = c.ReadInt()
		return err
	})
	return
}

// Obstacles pings left, center and right.
func (s *Session) Obstacles() (dists [3]int, err error) {
	for n, deg := range []int{ServoLeft, ServoCenter, ServoRight} {
		if dists[n], err = s.Obstacle(deg); err != nil {
			return
		}
	}
	return
}
