package sim

import (
	"math"
	"time"
)

// Full speed rates of the robot.
const (
	CMPerSecond      = 2.5
	DegreesPerSecond = 1 / 0.03
)

// driveState is a differential drive motion started at startTime.
type driveState struct {
	startPose Pose2D
	startTime time.Time
	// endTime is zero when running until stopped.
	endTime time.Time
	// wheel speeds in -1..1
	left, right float64
}

func newDriveState(pose Pose2D, now time.Time, left, right float64, d time.Duration) *driveState {
	if left == 0 && right == 0 {
		return nil
	}
	s := &driveState{startPose: pose, startTime: now, left: left, right: right}
	if d >= 0 {
		s.endTime = now.Add(d)
	}
	return s
}

// estimate returns the pose at now, and whether the motion has finished.
func (s *driveState) estimate(now time.Time) (Pose2D, bool) {
	done := false
	if !s.endTime.IsZero() && !now.Before(s.endTime) {
		now, done = s.endTime, true
	}
	secs := now.Sub(s.startTime).Seconds()
	if secs <= 0 {
		return s.startPose, done
	}
	speed := (s.left + s.right) / 2 * CMPerSecond
	turnRate := (s.left - s.right) / 2 * DegreesPerSecond
	pose := s.startPose
	if turnRate == 0 {
		return pose.Advance(speed * secs), done
	}
	// follow the arc, orientation is counter-clockwise in radians
	omega := -turnRate * math.Pi / 180
	theta := pose.Orientation.Radians()
	next := theta + omega*secs
	if speed != 0 {
		pose.X += speed / omega * (math.Sin(next) - math.Sin(theta))
		pose.Y -= speed / omega * (math.Cos(next) - math.Cos(theta))
	}
	pose.Orientation = AngleFromRadians(next)
	return pose, done
}
