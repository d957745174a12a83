package motion

import (
	"github.com/abiosoft/ishell"

	"github.com/robotalks/sparki.go/pkg/cli/sh"
)

// Forward drives forward at SPEED for SECS, or until stopped.
func Forward(s *sh.Shell, args []string) (interface{}, error) {
	speed, err := sh.FloatArg(args, 0, "SPEED")
	if err != nil {
		return nil, err
	}
	secs, err := sh.OptFloatArg(args, 1, "SECS", -1)
	if err != nil {
		return nil, err
	}
	return nil, s.Session.Forward(speed, secs)
}

// Backward drives backward at SPEED for SECS, or until stopped.
func Backward(s *sh.Shell, args []string) (interface{}, error) {
	speed, err := sh.FloatArg(args, 0, "SPEED")
	if err != nil {
		return nil, err
	}
	secs, err := sh.OptFloatArg(args, 1, "SECS", -1)
	if err != nil {
		return nil, err
	}
	return nil, s.Session.Backward(speed, secs)
}

// Turn turns by DEGREES, positive is clockwise.
func Turn(s *sh.Shell, args []string) (interface{}, error) {
	deg, err := sh.FloatArg(args, 0, "DEGREES")
	if err != nil {
		return nil, err
	}
	if err = s.Session.TurnBy(deg); err != nil {
		return nil, err
	}
	return s.Session.Pose(), nil
}

// TurnTo turns to the absolute HEADING.
func TurnTo(s *sh.Shell, args []string) (interface{}, error) {
	heading, err := sh.FloatArg(args, 0, "HEADING")
	if err != nil {
		return nil, err
	}
	if err = s.Session.TurnTo(heading); err != nil {
		return nil, err
	}
	return s.Session.Pose(), nil
}

// Motors sets both wheel speeds.
func Motors(s *sh.Shell, args []string) (interface{}, error) {
	left, err := sh.FloatArg(args, 0, "LEFT")
	if err != nil {
		return nil, err
	}
	right, err := sh.FloatArg(args, 1, "RIGHT")
	if err != nil {
		return nil, err
	}
	secs, err := sh.OptFloatArg(args, 2, "SECS", -1)
	if err != nil {
		return nil, err
	}
	return nil, s.Session.Motors(left, right, secs)
}

// MoveCM moves CM centimeters, backward when negative.
func MoveCM(s *sh.Shell, args []string) (interface{}, error) {
	cm, err := sh.FloatArg(args, 0, "CM")
	if err != nil {
		return nil, err
	}
	if cm < 0 {
		err = s.Session.MoveBackwardCM(-cm)
	} else {
		err = s.Session.MoveForwardCM(cm)
	}
	if err != nil {
		return nil, err
	}
	return s.Session.CentimetersMoved(), nil
}

// SetPose overrides the bookkept pose.
func SetPose(s *sh.Shell, args []string) (interface{}, error) {
	x, err := sh.FloatArg(args, 0, "X")
	if err != nil {
		return nil, err
	}
	y, err := sh.FloatArg(args, 1, "Y")
	if err != nil {
		return nil, err
	}
	pose := s.Session.Pose()
	angle, err := sh.OptFloatArg(args, 2, "ANGLE", pose.Angle)
	if err != nil {
		return nil, err
	}
	s.Session.SetPosition(x, y)
	s.Session.SetAngle(angle)
	return s.Session.Pose(), nil
}

var (
	// ForwardCmd drives forward.
	ForwardCmd = ishell.Cmd{
		Name:    "forward",
		Aliases: []string{"fw"},
		Help:    "SPEED(0..1) [SECS]",
		Func:    sh.Do(sh.MustBeConnected(Forward)),
	}

	// BackwardCmd drives backward.
	BackwardCmd = ishell.Cmd{
		Name:    "backward",
		Aliases: []string{"bw"},
		Help:    "SPEED(0..1) [SECS]",
		Func:    sh.Do(sh.MustBeConnected(Backward)),
	}

	// TurnCmd turns by degrees.
	TurnCmd = ishell.Cmd{
		Name:    "turn",
		Aliases: []string{"t"},
		Help:    "DEGREES",
		Func:    sh.Do(sh.MustBeConnected(Turn)),
	}

	// TurnToCmd turns to a heading.
	TurnToCmd = ishell.Cmd{
		Name:    "turn.to",
		Aliases: []string{"tt"},
		Help:    "HEADING(degrees)",
		Func:    sh.Do(sh.MustBeConnected(TurnTo)),
	}

	// MotorsCmd sets wheel speeds.
	MotorsCmd = ishell.Cmd{
		Name:    "motors",
		Aliases: []string{"m"},
		Help:    "LEFT(-1..1) RIGHT(-1..1) [SECS]",
		Func:    sh.Do(sh.MustBeConnected(Motors)),
	}

	// StopCmd stops the wheels.
	StopCmd = ishell.Cmd{
		Name:    "stop",
		Aliases: []string{"s"},
		Help:    "",
		Func: sh.Do(sh.MustBeConnected(func(s *sh.Shell, args []string) (interface{}, error) {
			return nil, s.Session.Stop()
		})),
	}

	// MoveCMCmd moves a distance.
	MoveCMCmd = ishell.Cmd{
		Name:    "move.cm",
		Aliases: []string{"mcm"},
		Help:    "CM",
		Func:    sh.Do(sh.MustBeConnected(MoveCM)),
	}

	// PoseCmd prints the bookkept pose.
	PoseCmd = ishell.Cmd{
		Name: "pose",
		Help: "",
		Func: sh.Do(func(s *sh.Shell, args []string) (interface{}, error) {
			return s.Session.Pose(), nil
		}),
	}

	// SetPoseCmd overrides the pose.
	SetPoseCmd = ishell.Cmd{
		Name: "pose.set",
		Help: "X Y [ANGLE]",
		Func: sh.Do(SetPose),
	}

	// ResetPoseCmd resets the pose to the origin.
	ResetPoseCmd = ishell.Cmd{
		Name: "pose.reset",
		Help: "",
		Func: sh.Do(func(s *sh.Shell, args []string) (interface{}, error) {
			s.Session.ResetPosition()
			return s.Session.Pose(), nil
		}),
	}
)

func init() {
	sh.AddCmds(
		&ForwardCmd,
		&BackwardCmd,
		&TurnCmd,
		&TurnToCmd,
		&MotorsCmd,
		&StopCmd,
		&MoveCMCmd,
		&PoseCmd,
		&SetPoseCmd,
		&ResetPoseCmd,
	)
}
