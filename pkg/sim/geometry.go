package sim

import "math"

// Angle is in radians, counterclockwise from +X, in [-pi, pi].
type Angle float64

// AngleFromDegrees converts counterclockwise degrees.
func AngleFromDegrees(d float64) Angle {
	return AngleFromRadians(d * math.Pi / 180)
}

// AngleFromRadians wraps r into [-pi, pi].
func AngleFromRadians(r float64) Angle {
	return Angle(math.Remainder(r, 2*math.Pi))
}

// AngleFromHeading converts a compass heading, degrees clockwise from +Y.
func AngleFromHeading(h float64) Angle {
	return AngleFromDegrees(90 - h)
}

// Radians returns the raw value.
func (a Angle) Radians() float64 {
	return float64(a)
}

// Degrees converts to counterclockwise degrees.
func (a Angle) Degrees() float64 {
	return float64(a) * 180 / math.Pi
}

// Heading converts to degrees clockwise from +Y, in (-180, 180].
func (a Angle) Heading() float64 {
	h := math.Remainder(90-a.Degrees(), 360)
	if h <= -180 {
		h += 360
	}
	return h
}

// Pos2D is a position on the floor in centimeters.
type Pos2D struct {
	X, Y float64
}

// Pose2D is the simulated robot's position and orientation.
type Pose2D struct {
	Pos2D
	Orientation Angle
}

// StartPose is the pose at power on: at the origin facing +Y.
func StartPose() Pose2D {
	return Pose2D{Orientation: AngleFromHeading(0)}
}

// Advance moves dist centimeters along the orientation, backward if negative.
func (p Pose2D) Advance(dist float64) Pose2D {
	theta := p.Orientation.Radians()
	p.X += dist * math.Cos(theta)
	p.Y += dist * math.Sin(theta)
	return p
}

// Turn rotates clockwise by deg.
func (p Pose2D) Turn(deg float64) Pose2D {
	p.Orientation = AngleFromRadians(p.Orientation.Radians() - deg*math.Pi/180)
	return p
}

// Heading is the orientation as a compass heading.
func (p Pose2D) Heading() float64 {
	return p.Orientation.Heading()
}
