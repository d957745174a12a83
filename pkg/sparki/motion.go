package sparki

import (
	"fmt"
	"math"

	"github.com/robotalks/sparki.go/pkg/comm"
	"github.com/robotalks/sparki.go/pkg/firmware"
	"github.com/robotalks/sparki.go/pkg/logging"
)

// Calibrated from observation, they vary with batteries and robots.
const (
	SecondsPerCM     = 0.4
	SecondsPerDegree = 0.03
)

// Limits of Wait and WaitNoop in seconds.
const (
	MaxWait     = 600
	MaxWaitNoop = 1200
)

// Pose is the bookkeeping of where the robot should be: X and Y in
// centimeters, Angle in degrees clockwise from the direction faced
// when the pose was last reset. Nothing on the robot measures it.
type Pose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
}

// String implements fmt.Stringer.
func (p Pose) String() string {
	return fmt.Sprintf("(%.1f, %.1f) %.1f°", p.X, p.Y, p.Angle)
}

// WrapAngle keeps the sign and brings degrees into (-360, 360).
func WrapAngle(deg float64) float64 {
	return math.Mod(deg, 360)
}

// Motors drives the wheels at speeds from -1 to 1 for seconds,
// or until stopped if seconds is negative.
func (s *Session) Motors(left, right, seconds float64) error {
	if left == 0 && right == 0 {
		s.Logger.Logf(logging.Warn, "motors with both speeds 0, stopping")
		return s.Stop()
	}
	if left < -1 || left > 1 || right < -1 || right > 1 {
		s.Logger.Logf(logging.Error, "motor speeds (%v, %v) must be between -1.0 and 1.0", left, right)
		left = math.Max(-1, math.Min(1, left))
		right = math.Max(-1, math.Min(1, right))
	}
	s.setMoving(true)
	err := s.sendAndWait(func() {
		if seconds >= 0 {
			s.Wait(seconds)
			s.setMoving(false)
		}
	}, firmware.Motors, int(left*100), int(right*100), seconds)
	if err != nil {
		s.setMoving(false)
	}
	return err
}

// Forward moves forward, a negative speed moves backward.
func (s *Session) Forward(speed, seconds float64) error {
	switch {
	case speed < 0:
		s.Logger.Logf(logging.Warn, "forward with negative speed, moving backward")
		return s.Backward(-speed, seconds)
	case speed == 0:
		s.Logger.Logf(logging.Warn, "forward with speed 0, nothing to do")
		return nil
	case speed > 1:
		s.Logger.Logf(logging.Error, "forward speed %v reduced to 1.0", speed)
		speed = 1
	}
	return s.Motors(speed, speed, seconds)
}

// Backward moves backward, a negative speed moves forward.
func (s *Session) Backward(speed, seconds float64) error {
	switch {
	case speed < 0:
		s.Logger.Logf(logging.Warn, "backward with negative speed, moving forward")
		return s.Forward(-speed, seconds)
	case speed == 0:
		s.Logger.Logf(logging.Warn, "backward with speed 0, nothing to do")
		return nil
	case speed > 1:
		s.Logger.Logf(logging.Error, "backward speed %v reduced to 1.0", speed)
		speed = 1
	}
	return s.Motors(-speed, -speed, seconds)
}

// TurnLeft spins counterclockwise in place.
func (s *Session) TurnLeft(speed, seconds float64) error {
	switch {
	case speed < 0:
		return s.TurnRight(-speed, seconds)
	case speed == 0:
		return nil
	case speed > 1:
		speed = 1
	}
	return s.Motors(-speed, speed, seconds)
}

// TurnRight spins clockwise in place.
func (s *Session) TurnRight(speed, seconds float64) error {
	switch {
	case speed < 0:
		return s.TurnLeft(-speed, seconds)
	case speed == 0:
		return nil
	case speed > 1:
		speed = 1
	}
	return s.Motors(speed, -speed, seconds)
}

// Translate moves forward until stopped.
func (s *Session) Translate(speed float64) error {
	return s.Forward(speed, -1)
}

// Rotate turns right until stopped.
func (s *Session) Rotate(speed float64) error {
	return s.TurnRight(speed, -1)
}

// Move combines translation and rotation until stopped.
func (s *Session) Move(translate, rotate float64) error {
	translate = s.clamp("translate speed", translate, -1, 1)
	rotate = s.clamp("rotate speed", rotate, -1, 1)
	switch {
	case translate == 0:
		return s.TurnLeft(rotate, -1)
	case rotate == 0:
		return s.Forward(translate, -1)
	}
	v := translate + rotate
	if translate < 0 {
		v = translate - rotate
	}
	if rotate > 0 {
		return s.Motors(v/2, v, -1)
	}
	return s.Motors(v, v/2, -1)
}

// Stop stops the wheels.
func (s *Session) Stop() error {
	err := s.send(firmware.Stop)
	s.setMoving(false)
	return err
}

// TurnBy turns degrees clockwise, negative turns counterclockwise.
// It returns after the estimated duration of the turn.
func (s *Session) TurnBy(deg float64) error {
	deg = WrapAngle(deg)
	if deg == 0 {
		s.Logger.Logf(logging.Warn, "turn by 0 degrees, nothing to do")
		return nil
	}
	s.setMoving(true)
	defer s.setMoving(false)
	return s.sendAndWait(func() {
		s.lock.Lock()
		s.pose.Angle = WrapAngle(s.pose.Angle + deg)
		s.lock.Unlock()
		s.wait(math.Abs(deg) * SecondsPerDegree)
	}, firmware.TurnBy, deg)
}

// TurnTo turns to a heading relative to the last pose reset.
func (s *Session) TurnTo(heading float64) error {
	return s.TurnBy(WrapAngle(heading) - s.Angle())
}

// MoveForwardCM moves forward cm centimeters.
func (s *Session) MoveForwardCM(cm float64) error {
	switch {
	case cm == 0:
		s.Logger.Logf(logging.Warn, "move forward 0 cm, nothing to do")
		return nil
	case cm < 0:
		s.Logger.Logf(logging.Error, "move forward negative cm, moving backward")
		return s.MoveBackwardCM(-cm)
	}
	return s.moveCM(firmware.ForwardCM, cm)
}

// MoveBackwardCM moves backward cm centimeters.
func (s *Session) MoveBackwardCM(cm float64) error {
	switch {
	case cm == 0:
		s.Logger.Logf(logging.Warn, "move backward 0 cm, nothing to do")
		return nil
	case cm < 0:
		s.Logger.Logf(logging.Error, "move backward negative cm, moving forward")
		return s.MoveForwardCM(-cm)
	}
	return s.moveCM(firmware.BackwardCM, cm)
}

func (s *Session) moveCM(op comm.Opcode, cm float64) error {
	s.setMoving(true)
	defer s.setMoving(false)
	return s.sendAndWait(func() {
		s.lock.Lock()
		s.cmMoved += cm
		s.lock.Unlock()
		s.wait(cm * SecondsPerCM)
	}, op, cm)
}

// Wait sleeps for seconds, at most MaxWait.
func (s *Session) Wait(seconds float64) {
	if seconds >= MaxWait {
		s.Logger.Logf(logging.Error, "wait %vs is too long, waiting %ds", seconds, MaxWait)
	} else if seconds > 120 {
		s.Logger.Logf(logging.Warn, "waiting %vs", seconds)
	}
	s.wait(math.Max(0, math.Min(MaxWait, seconds)))
}

// WaitNoop sleeps for seconds, at most MaxWaitNoop, sending a
// keepalive every second.
func (s *Session) WaitNoop(seconds float64) error {
	if seconds >= MaxWaitNoop {
		s.Logger.Logf(logging.Error, "wait %vs is too long, waiting %ds", seconds, MaxWaitNoop)
	}
	remaining := math.Max(0, math.Min(MaxWaitNoop, seconds))
	for remaining > 0 {
		if err := s.Noop(); err != nil {
			return err
		}
		step := math.Min(1, remaining)
		s.wait(step)
		remaining -= step
	}
	return nil
}

// Pose returns the pose bookkeeping.
func (s *Session) Pose() Pose {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.pose
}

// Position returns X and Y.
func (s *Session) Position() (float64, float64) {
	p := s.Pose()
	return p.X, p.Y
}

// Angle returns the heading.
func (s *Session) Angle() float64 {
	return s.Pose().Angle
}

// SetPosition overrides X and Y.
func (s *Session) SetPosition(x, y float64) {
	s.lock.Lock()
	s.pose.X, s.pose.Y = x, y
	s.lock.Unlock()
}

// SetAngle overrides the heading.
func (s *Session) SetAngle(deg float64) {
	s.lock.Lock()
	s.pose.Angle = WrapAngle(deg)
	s.lock.Unlock()
}

// ResetPosition returns the bookkeeping to the origin facing +Y.
func (s *Session) ResetPosition() {
	s.lock.Lock()
	s.pose = Pose{}
	s.lock.Unlock()
}

// CentimetersMoved sums the distance of every MoveForwardCM
// and MoveBackwardCM.
func (s *Session) CentimetersMoved() float64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.cmMoved
}

// IsMoving reports whether a motion is believed to be in progress.
func (s *Session) IsMoving() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.moving
}

func (s *Session) setMoving(moving bool) {
	s.lock.Lock()
	s.moving = moving
	s.lock.Unlock()
}
