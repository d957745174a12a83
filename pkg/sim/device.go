// Package sim simulates the Sparki firmware on the host, including the
// device side of the serial protocol.
package sim

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robotalks/sparki.go/pkg/comm"
	"github.com/robotalks/sparki.go/pkg/firmware"
	"github.com/robotalks/sparki.go/pkg/logging"
)

// EEPROM layout.
const (
	EEPROMSize  = 1024
	NameAddress = 0
	NameSize    = 20
)

// Sensors are the readings the device reports.
type Sensors struct {
	Ping    int
	Light   [3]int
	Line    [5]int
	Accel   [3]float64
	Mag     [3]float64
	Compass float64
	IR      int
}

// State is a snapshot of the actuators.
type State struct {
	Pose       Pose2D
	Motors     [2]int
	Moving     bool
	Servo      int
	Gripper    float64
	RGB        [3]int
	StatusLED  int
	DebugLevel int
	Beeps      int
	IRSent     []int
	LCDColor   int
	LCD        []string
	Gamepad    bool
}

// Device is a simulated robot.
type Device struct {
	Version string
	Profile firmware.Profile
	Logger  logging.Logger
	// Now is the clock used for motion.
	Now func() time.Time

	ExecCaster

	lock     sync.Mutex
	powered  bool
	sensors  Sensors
	state    State
	drive    *driveState
	lcd      LCD
	eeprom   [EEPROMSize]byte
	dec      comm.Decoder
	pending  *comm.Command
	arity    int
	out      []byte
	executed []comm.Command
}

// NewDevice creates a powered device running the firmware version.
func NewDevice(version string) *Device {
	profile, _ := firmware.Lookup(version)
	d := &Device{
		Version: version,
		Profile: profile,
		Logger:  logging.Discard,
		Now:     time.Now,
		powered: true,
	}
	d.state.Pose = StartPose()
	d.lcd.Color = ColorBlack
	return d
}

// SetPowered turns the device on or off. A device which is off
// neither sends Sync nor receives commands.
func (d *Device) SetPowered(on bool) {
	d.lock.Lock()
	d.powered = on
	if !on {
		d.out = nil
		d.pending = nil
		d.dec.Reset()
	}
	d.lock.Unlock()
}

// Powered indicates the device is on.
func (d *Device) Powered() bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.powered
}

// SetSensors sets the readings.
func (d *Device) SetSensors(s Sensors) {
	d.lock.Lock()
	d.sensors = s
	d.lock.Unlock()
}

// SetName stores the name in EEPROM as SET_NAME does.
func (d *Device) SetName(name string) {
	d.lock.Lock()
	d.storeName(name)
	d.lock.Unlock()
}

// State returns a snapshot.
func (d *Device) State() State {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.updatePose()
	s := d.state
	s.IRSent = append([]int(nil), d.state.IRSent...)
	s.LCDColor = d.lcd.Color
	s.LCD = d.lcd.Shown()
	return s
}

// Pixel reads the LCD draw buffer.
func (d *Device) Pixel(x, y int) bool {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.lcd.Pixel(x, y)
}

// EEPROM returns a copy of a range.
func (d *Device) EEPROM(loc, n int) []byte {
	d.lock.Lock()
	defer d.lock.Unlock()
	loc, n = eepromRange(loc, n)
	return append([]byte(nil), d.eeprom[loc:loc+n]...)
}

// Executed returns every command executed.
func (d *Device) Executed() []comm.Command {
	d.lock.Lock()
	defer d.lock.Unlock()
	return append([]comm.Command(nil), d.executed...)
}

// Receive feeds bytes sent by the host.
func (d *Device) Receive(p []byte) {
	var done []comm.Command
	var states []State
	d.lock.Lock()
	if !d.powered {
		d.lock.Unlock()
		return
	}
	for _, b := range p {
		tok, ok := d.dec.Parse(b)
		if !ok {
			continue
		}
		if cmd := d.token(tok); cmd != nil {
			done = append(done, *cmd)
			states = append(states, d.state)
		}
	}
	d.lock.Unlock()
	for n, cmd := range done {
		d.CommandExecuted(cmd, states[n])
	}
}

// Output takes all bytes queued for the host.
func (d *Device) Output() []byte {
	d.lock.Lock()
	defer d.lock.Unlock()
	out := d.out
	d.out = nil
	return out
}

// token returns the command once all its arguments arrived.
func (d *Device) token(tok string) *comm.Command {
	if d.pending == nil {
		if len(tok) != 1 {
			d.Logger.Logf(logging.Warn, "sim: ignored token %q", tok)
			return nil
		}
		op := comm.Opcode(tok[0])
		info, ok := firmware.Info(op)
		if !ok {
			d.Logger.Logf(logging.Warn, "sim: unknown opcode %s", op)
			return nil
		}
		d.pending, d.arity = &comm.Command{Opcode: op}, info.Arity
	} else {
		d.pending.Args = append(d.pending.Args, tok)
	}
	if len(d.pending.Args) < d.arity {
		return nil
	}
	cmd := d.pending
	d.pending = nil
	if err := d.exec(cmd); err != nil {
		d.Logger.Logf(logging.Error, "sim: %s: %v", cmd, err)
	}
	d.executed = append(d.executed, *cmd)
	return cmd
}

func (d *Device) reply(toks ...string) {
	for _, tok := range toks {
		d.out = append(d.out, tok...)
		d.out = append(d.out, comm.Terminator)
	}
}

func (d *Device) replyInts(vals ...int) {
	for _, v := range vals {
		d.reply(strconv.Itoa(v))
	}
}

func (d *Device) replyFloats(vals ...float64) {
	for _, v := range vals {
		d.reply(strconv.FormatFloat(v, 'f', 2, 64))
	}
}

type args []interface{}

func (a args) strAt(n int) string {
	return a[n].(string)
}

func (a args) intAt(n int) (int, error) {
	return strconv.Atoi(a.strAt(n))
}

func (a args) floatAt(n int) (float64, error) {
	return strconv.ParseFloat(a.strAt(n), 64)
}

func (a args) ints() ([]int, error) {
	vals := make([]int, len(a))
	for n := range a {
		v, err := a.intAt(n)
		if err != nil {
			return nil, err
		}
		vals[n] = v
	}
	return vals, nil
}

func (d *Device) unsupported(op comm.Opcode) error {
	return fmt.Errorf("opcode %s not supported by firmware %q", op, d.Version)
}

func (d *Device) exec(cmd *comm.Command) error {
	a := args(cmd.Args)
	p := d.Profile
	switch cmd.Opcode {
	case firmware.Init:
		d.reply(d.Version)
	case firmware.Noop:
		if !p.Noop {
			return d.unsupported(cmd.Opcode)
		}
	case firmware.Beep:
		d.state.Beeps++
	case firmware.Gamepad:
		d.state.Gamepad = true

	case firmware.Ping:
		d.replyInts(d.sensors.Ping)
	case firmware.GetLight:
		d.replyInts(d.sensors.Light[:]...)
	case firmware.GetLine:
		d.replyInts(d.sensors.Line[:]...)
	case firmware.GetAccel:
		if p.NoAccel {
			return d.unsupported(cmd.Opcode)
		}
		d.replyFloats(d.sensors.Accel[:]...)
	case firmware.GetMag:
		if p.NoMag {
			return d.unsupported(cmd.Opcode)
		}
		d.replyFloats(d.sensors.Mag[:]...)
	case firmware.Compass:
		if p.NoMag {
			return d.unsupported(cmd.Opcode)
		}
		d.replyFloats(d.sensors.Compass)
	case firmware.ReceiveIR:
		d.replyInts(d.sensors.IR)
	case firmware.SendIR:
		v, err := a.intAt(0)
		if err != nil {
			return err
		}
		d.state.IRSent = append(d.state.IRSent, v)

	case firmware.Motors:
		return d.motors(a)
	case firmware.Stop:
		d.updatePose()
		d.drive = nil
		d.state.Motors = [2]int{}
		d.state.Moving = false
	case firmware.ForwardCM, firmware.BackwardCM:
		cm, err := a.floatAt(0)
		if err != nil {
			return err
		}
		if cmd.Opcode == firmware.BackwardCM {
			cm = -cm
		}
		d.updatePose()
		d.drive = nil
		d.state.Pose = d.state.Pose.Advance(cm)
	case firmware.TurnBy:
		deg, err := a.floatAt(0)
		if err != nil {
			return err
		}
		d.updatePose()
		d.drive = nil
		d.state.Pose = d.state.Pose.Turn(deg)
	case firmware.Servo:
		v, err := a.intAt(0)
		if err != nil {
			return err
		}
		d.state.Servo = v
	case firmware.GripperOpen, firmware.GripperClose:
		cm, err := a.floatAt(0)
		if err != nil {
			return err
		}
		if cmd.Opcode == firmware.GripperClose {
			cm = -cm
		}
		d.state.Gripper = clamp(d.state.Gripper+cm, 0, 7)
	case firmware.GripperStop:

	case firmware.SetRGBLED:
		rgb, err := a.ints()
		if err != nil {
			return err
		}
		copy(d.state.RGB[:], rgb)
	case firmware.SetStatusLED:
		v, err := a.intAt(0)
		if err != nil {
			return err
		}
		d.state.StatusLED = v
	case firmware.SetDebugLevel:
		if !p.Debugs {
			return d.unsupported(cmd.Opcode)
		}
		v, err := a.intAt(0)
		if err != nil {
			return err
		}
		d.state.DebugLevel = v

	case firmware.LCDClear:
		d.lcd.Clear()
	case firmware.LCDPrint:
		d.lcd.Print(a.strAt(0))
	case firmware.LCDPrintLn:
		d.lcd.Print(a.strAt(0) + "\n")
	case firmware.LCDUpdate:
		d.lcd.Update()
	case firmware.LCDDrawPixel:
		xy, err := a.ints()
		if err != nil {
			return err
		}
		d.lcd.SetPixel(xy[0], xy[1])
	case firmware.LCDDrawString:
		if !p.ExtLCD {
			return d.unsupported(cmd.Opcode)
		}
		xy, err := a[:2].ints()
		if err != nil {
			return err
		}
		d.lcd.DrawString(xy[0], xy[1], a.strAt(2))
	case firmware.LCDReadPixel:
		if !p.ExtLCD {
			return d.unsupported(cmd.Opcode)
		}
		xy, err := a.ints()
		if err != nil {
			return err
		}
		if d.lcd.Pixel(xy[0], xy[1]) {
			d.replyInts(1)
		} else {
			d.replyInts(0)
		}
	case firmware.LCDSetColor:
		if !p.ExtLCD {
			return d.unsupported(cmd.Opcode)
		}
		v, err := a.intAt(0)
		if err != nil {
			return err
		}
		d.lcd.Color = v

	case firmware.GetName:
		if !p.EEPROM {
			return d.unsupported(cmd.Opcode)
		}
		d.reply(d.name())
	case firmware.SetName:
		if !p.EEPROM {
			return d.unsupported(cmd.Opcode)
		}
		d.storeName(a.strAt(0))
	case firmware.ReadEEPROM:
		if !p.EEPROM || !p.ExtLCD {
			return d.unsupported(cmd.Opcode)
		}
		vals, err := a.ints()
		if err != nil {
			return err
		}
		loc, n := eepromRange(vals[0], vals[1])
		d.reply(string(d.eeprom[loc : loc+n]))
	case firmware.WriteEEPROM:
		if !p.EEPROM || !p.ExtLCD {
			return d.unsupported(cmd.Opcode)
		}
		loc, err := a.intAt(0)
		if err != nil {
			return err
		}
		data := a.strAt(1)
		loc, n := eepromRange(loc, len(data))
		copy(d.eeprom[loc:loc+n], data)
	default:
		return d.unsupported(cmd.Opcode)
	}
	return nil
}

func (d *Device) motors(a args) error {
	speeds, err := a[:2].ints()
	if err != nil {
		return err
	}
	secs, err := a.floatAt(2)
	if err != nil {
		return err
	}
	d.updatePose()
	var dur time.Duration = -1
	if secs >= 0 {
		dur = time.Duration(secs * float64(time.Second))
	}
	d.drive = newDriveState(d.state.Pose, d.Now(), float64(speeds[0])/100, float64(speeds[1])/100, dur)
	d.state.Motors = [2]int{speeds[0], speeds[1]}
	d.state.Moving = d.drive != nil
	return nil
}

// updatePose applies the running motion up to now.
func (d *Device) updatePose() {
	if d.drive == nil {
		return
	}
	pose, done := d.drive.estimate(d.Now())
	d.state.Pose = pose
	if done {
		d.drive = nil
		d.state.Motors = [2]int{}
		d.state.Moving = false
	}
}

func (d *Device) name() string {
	name := d.eeprom[NameAddress : NameAddress+NameSize]
	if n := strings.IndexByte(string(name), 0); n >= 0 {
		name = name[:n]
	}
	return string(name)
}

func (d *Device) storeName(name string) {
	if len(name) > NameSize-1 {
		name = name[:NameSize-1]
	}
	area := d.eeprom[NameAddress : NameAddress+NameSize]
	for n := range area {
		area[n] = 0
	}
	copy(area, name)
}

func eepromRange(loc, n int) (int, int) {
	loc = int(clamp(float64(loc), 0, EEPROMSize-1))
	if n < 0 {
		n = 0
	}
	if loc+n > EEPROMSize {
		n = EEPROMSize - loc
	}
	return loc, n
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
