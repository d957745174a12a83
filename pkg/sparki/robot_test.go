package sparki

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sparki.go/pkg/comm"
	"github.com/robotalks/sparki.go/pkg/firmware"
	"github.com/robotalks/sparki.go/pkg/logging"
	"github.com/robotalks/sparki.go/pkg/serial"
	"github.com/robotalks/sparki.go/pkg/sim"
)

func cmd(op comm.Opcode, args ...interface{}) comm.Command {
	return comm.NewCommand(op, args...)
}

func TestMotorsZeroSendsStop(t *testing.T) {
	ts := connectSim(t, "1.1.4")
	sent := ts.sent(t, func() error { return ts.Motors(0, 0, 2) })
	require.Equal(t, []comm.Command{cmd(firmware.Stop)}, sent)
	require.Equal(t, firmware.Stop, ts.dev.Executed()[len(ts.dev.Executed())-1].Opcode)
	require.False(t, ts.IsMoving())
	require.Empty(t, ts.slept)
}

func TestMotion(t *testing.T) {
	cases := []struct {
		name     string
		run      func(*Session) error
		expected []comm.Command
		slept    []float64
		moving   bool
	}{
		{"motors clamped", func(s *Session) error { return s.Motors(0.5, -2, 1.5) },
			[]comm.Command{cmd(firmware.Motors, 50, -100, 1.5)}, []float64{1.5}, false},
		{"motors until stopped", func(s *Session) error { return s.Motors(1, 1, -1) },
			[]comm.Command{cmd(firmware.Motors, 100, 100, -1.0)}, []float64{}, true},
		{"forward", func(s *Session) error { return s.Forward(0.25, 2) },
			[]comm.Command{cmd(firmware.Motors, 25, 25, 2.0)}, []float64{2}, false},
		{"forward negative", func(s *Session) error { return s.Forward(-0.5, 2) },
			[]comm.Command{cmd(firmware.Motors, -50, -50, 2.0)}, []float64{2}, false},
		{"forward too fast", func(s *Session) error { return s.Forward(3, -1) },
			[]comm.Command{cmd(firmware.Motors, 100, 100, -1.0)}, []float64{}, true},
		{"forward zero", func(s *Session) error { return s.Forward(0, 1) },
			[]comm.Command{}, []float64{}, false},
		{"backward", func(s *Session) error { return s.Backward(0.5, 1) },
			[]comm.Command{cmd(firmware.Motors, -50, -50, 1.0)}, []float64{1}, false},
		{"backward negative", func(s *Session) error { return s.Backward(-0.5, 1) },
			[]comm.Command{cmd(firmware.Motors, 50, 50, 1.0)}, []float64{1}, false},
		{"turn left", func(s *Session) error { return s.TurnLeft(0.5, 1) },
			[]comm.Command{cmd(firmware.Motors, -50, 50, 1.0)}, []float64{1}, false},
		{"turn right negative", func(s *Session) error { return s.TurnRight(-0.5, 1) },
			[]comm.Command{cmd(firmware.Motors, -50, 50, 1.0)}, []float64{1}, false},
		{"rotate", func(s *Session) error { return s.Rotate(0.5) },
			[]comm.Command{cmd(firmware.Motors, 50, -50, -1.0)}, []float64{}, true},
		{"translate", func(s *Session) error { return s.Translate(0.5) },
			[]comm.Command{cmd(firmware.Motors, 50, 50, -1.0)}, []float64{}, true},
		{"move arc", func(s *Session) error { return s.Move(0.5, 0.5) },
			[]comm.Command{cmd(firmware.Motors, 50, 100, -1.0)}, []float64{}, true},
		{"move spin", func(s *Session) error { return s.Move(0, 0.5) },
			[]comm.Command{cmd(firmware.Motors, -50, 50, -1.0)}, []float64{}, true},
		{"stop", func(s *Session) error { return s.Stop() },
			[]comm.Command{cmd(firmware.Stop)}, []float64{}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ts := connectSim(t, "1.1.4")
			sent := ts.sent(t, func() error { return c.run(ts.Session) })
			require.Equal(t, c.expected, append([]comm.Command{}, sent...))
			require.Equal(t, c.slept, ts.sleptSeconds())
			require.Equal(t, c.moving, ts.IsMoving())
		})
	}
}

func TestMotorsOutOfRangeLogsError(t *testing.T) {
	ts := connectSim(t, "1.1.4")
	require.NoError(t, ts.Motors(2, 0, 0))
	require.Len(t, ts.log.Find(logging.Error, "must be between -1.0 and 1.0"), 1)
}

func TestTurnBy(t *testing.T) {
	ts := connectSim(t, "1.1.4")
	sent := ts.sent(t, func() error { return ts.TurnBy(450) })
	require.Equal(t, []comm.Command{cmd(firmware.TurnBy, 90.0)}, sent)
	require.InDelta(t, 90, ts.Angle(), 1e-9)
	require.Len(t, ts.slept, 1)
	require.InDelta(t, 2.7, ts.slept[0].Seconds(), 1e-6)
	require.InDelta(t, 90, ts.dev.State().Pose.Heading(), 1e-9)
	require.False(t, ts.IsMoving())

	require.NoError(t, ts.TurnBy(-400))
	require.InDelta(t, 50, ts.Angle(), 1e-9)
	require.NoError(t, ts.TurnTo(-10))
	require.InDelta(t, -10, ts.Angle(), 1e-9)
	require.InDelta(t, -10, ts.dev.State().Pose.Heading(), 1e-9)

	sent = ts.sent(t, func() error { return ts.TurnBy(720) })
	require.Empty(t, sent)
	require.Len(t, ts.log.Find(logging.Warn, "turn by 0 degrees"), 1)
}

func TestMoveCM(t *testing.T) {
	ts := connectSim(t, "1.1.4")
	sent := ts.sent(t, func() error {
		if err := ts.MoveForwardCM(10); err != nil {
			return err
		}
		if err := ts.MoveBackwardCM(-5); err != nil {
			return err
		}
		if err := ts.MoveBackwardCM(3); err != nil {
			return err
		}
		return ts.MoveForwardCM(0)
	})
	require.Equal(t, []comm.Command{
		cmd(firmware.ForwardCM, 10.0),
		cmd(firmware.ForwardCM, 5.0),
		cmd(firmware.BackwardCM, 3.0),
	}, sent)
	require.InDelta(t, 18, ts.CentimetersMoved(), 1e-9)
	require.Equal(t, []float64{4, 2, 1.2}, roundAll(ts.sleptSeconds()))
	// the bookkeeping doesn't follow motions
	require.Equal(t, Pose{}, ts.Pose())
	require.InDelta(t, 12, ts.dev.State().Pose.Y, 1e-9)
}

func TestTimedCommandsHoldLink(t *testing.T) {
	cases := []struct {
		name string
		op   comm.Opcode
		run  func(*Session) error
	}{
		{"move cm", firmware.ForwardCM, func(s *Session) error { return s.MoveForwardCM(50) }},
		{"motors", firmware.Motors, func(s *Session) error { return s.Motors(0.5, 0.5, 2) }},
		{"turn", firmware.TurnBy, func(s *Session) error { return s.TurnBy(90) }},
		{"beep", firmware.Beep, func(s *Session) error { return s.Beep(100, 440) }},
		{"servo", firmware.Servo, func(s *Session) error { return s.Servo(30) }},
		{"gripper", firmware.GripperOpen, func(s *Session) error { return s.GripperOpen(2) }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ts := connectSim(t, "1.1.4")
			var once sync.Once
			waiting := make(chan struct{})
			release := make(chan struct{})
			ts.Sleep = func(time.Duration) {
				once.Do(func() { close(waiting) })
				<-release
			}

			done := make(chan error, 1)
			go func() { done <- c.run(ts.Session) }()
			<-waiting

			noop := make(chan error, 1)
			go func() { noop <- ts.Noop() }()
			select {
			case err := <-noop:
				t.Fatalf("noop returned while %s was running: %v", c.op, err)
			case <-time.After(20 * time.Millisecond):
			}

			close(release)
			require.NoError(t, <-done)
			require.NoError(t, <-noop)
			executed := ts.dev.Executed()
			require.True(t, len(executed) >= 2)
			require.Equal(t, c.op, executed[len(executed)-2].Opcode)
			require.Equal(t, firmware.Noop, executed[len(executed)-1].Opcode)
			require.Empty(t, ts.log.Find(logging.Warn, "reconnecting"))
		})
	}
}

func roundAll(vals []float64) []float64 {
	for n, v := range vals {
		vals[n] = float64(int64(v*1000+0.5)) / 1000
	}
	return vals
}

func TestPoseBookkeeping(t *testing.T) {
	ts := connectSim(t, "1.1.4")
	ts.SetPosition(3, 4)
	ts.SetAngle(-370)
	x, y := ts.Position()
	require.Equal(t, 3.0, x)
	require.Equal(t, 4.0, y)
	require.InDelta(t, -10, ts.Angle(), 1e-9)
	ts.ResetPosition()
	require.Equal(t, Pose{}, ts.Pose())
	require.Empty(t, ts.History()[2:])
}

func TestWait(t *testing.T) {
	ts := connectSim(t, "1.1.4")
	ts.Wait(700)
	ts.Wait(-3)
	ts.Wait(0.5)
	require.Equal(t, []float64{600, 0.5}, ts.sleptSeconds())
	require.Len(t, ts.log.Find(logging.Error, "too long"), 1)
}

func TestWaitNoop(t *testing.T) {
	ts := connectSim(t, "1.1.4")
	before := len(ts.dev.Executed())
	require.NoError(t, ts.WaitNoop(2.5))
	require.Equal(t, []float64{1, 1, 0.5}, ts.sleptSeconds())
	executed := ts.dev.Executed()[before:]
	require.Len(t, executed, 3)
	for _, c := range executed {
		require.Equal(t, firmware.Noop, c.Opcode)
	}
}

func TestNoopWithoutFirmwareSupport(t *testing.T) {
	ts := connectSim(t, "1.1.2")
	sent := ts.sent(t, ts.Noop)
	require.Equal(t, []comm.Command{
		cmd(firmware.SetStatusLED, StatusOn),
		cmd(firmware.SetStatusLED, StatusOff),
	}, sent)
}

func TestSensors(t *testing.T) {
	ts := connectSim(t, "1.1.4")
	ts.dev.SetSensors(sim.Sensors{
		Ping:    42,
		Light:   [3]int{10, 20, 30},
		Line:    [5]int{1, 2, 3, 4, 5},
		Accel:   [3]float64{0.25, -0.5, 9.75},
		Mag:     [3]float64{-1, 2.5, 300},
		Compass: 123.45,
		IR:      7,
	})

	dist, err := ts.Ping()
	require.NoError(t, err)
	require.Equal(t, 42, dist)

	light, err := ts.Light()
	require.NoError(t, err)
	require.Equal(t, [3]int{10, 20, 30}, light)
	require.Equal(t, 20, light[LightCenter])

	line, err := ts.Line()
	require.NoError(t, err)
	require.Equal(t, 5, line[LineEdgeRight])

	accel, err := ts.Accel()
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{0.25, -0.5, 9.75}, accel[:], 1e-9)

	mag, err := ts.Mag()
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{-1, 2.5, 300}, mag[:], 1e-9)

	heading, err := ts.Compass()
	require.NoError(t, err)
	require.InDelta(t, 123.45, heading, 1e-9)

	ir, err := ts.ReceiveIR()
	require.NoError(t, err)
	require.Equal(t, 7, ir)

	dists, err := ts.Obstacles()
	require.NoError(t, err)
	require.Equal(t, [3]int{42, 42, 42}, dists)
	require.Equal(t, ServoRight, ts.dev.State().Servo)
}

func TestActuators(t *testing.T) {
	ts := connectSim(t, "1.1.4")
	sent := ts.sent(t, func() error {
		for _, fn := range []func() error{
			func() error { return ts.Beep(20000, -5) },
			func() error { return ts.Servo(100) },
			func() error { return ts.GripperOpen(10) },
			func() error { return ts.GripperClose(1.5) },
			ts.GripperStop,
			func() error { return ts.SetRGBLED(150, -1, 50) },
			func() error { return ts.SetStatusLED(200) },
			func() error { return ts.SendIR(9) },
			ts.Gamepad,
		} {
			if err := fn(); err != nil {
				return err
			}
		}
		return nil
	})
	require.Equal(t, []comm.Command{
		cmd(firmware.Beep, 0, MaxBeepMS),
		cmd(firmware.Servo, ServoRight),
		cmd(firmware.GripperOpen, MaxGripperCM),
		cmd(firmware.GripperClose, 1.5),
		cmd(firmware.GripperStop),
		cmd(firmware.SetRGBLED, 100, 0, 50),
		cmd(firmware.SetStatusLED, 100),
		cmd(firmware.SendIR, 9),
		cmd(firmware.Gamepad),
	}, sent)
	require.Equal(t, []float64{10, 0.1, 7, 1.5}, roundAll(ts.sleptSeconds()))

	state := ts.dev.State()
	require.Equal(t, [3]int{100, 0, 50}, state.RGB)
	require.Equal(t, []int{9}, state.IRSent)
	require.NotEmpty(t, ts.log.Find(logging.Warn, "beep time"))

	require.NoError(t, ts.SetRGBLED(10, 10, 10))
	require.Len(t, ts.log.Find(logging.Warn, "equal RGB values"), 1)
}

func TestLCD(t *testing.T) {
	ts := connectSim(t, "1.1.4")
	sent := ts.sent(t, func() error { return ts.LCDPrintLn("hi", true) })
	require.Equal(t, []comm.Command{cmd(firmware.LCDPrintLn, "hi"), cmd(firmware.LCDUpdate)}, sent)
	require.Equal(t, "hi", ts.dev.State().LCD[0])

	sent = ts.sent(t, func() error { return ts.LCDDrawPixel(200, -3, false) })
	require.Equal(t, []comm.Command{cmd(firmware.LCDDrawPixel, LCDWidth-1, 0)}, sent)
	on, err := ts.LCDReadPixel(LCDWidth-1, 0)
	require.NoError(t, err)
	require.True(t, on)

	require.NoError(t, ts.LCDSetColor(LCDWhite))
	require.Equal(t, LCDWhite, ts.LCDColor())
	require.NoError(t, ts.LCDDrawPixel(LCDWidth-1, 0, true))
	on, err = ts.LCDReadPixel(LCDWidth-1, 0)
	require.NoError(t, err)
	require.False(t, on)

	sent = ts.sent(t, func() error { return ts.LCDDrawString(130, 9, "x", false) })
	require.Equal(t, []comm.Command{cmd(firmware.LCDDrawString, MaxStringX, LCDLines-1, "x")}, sent)

	sent = ts.sent(t, func() error { return ts.LCDClear(true) })
	require.Equal(t, []comm.Command{cmd(firmware.LCDClear), cmd(firmware.LCDUpdate)}, sent)
}

func TestLCDPrintTooLong(t *testing.T) {
	ts := connectSim(t, "1.1.4")
	before := len(ts.History())
	err := ts.LCDPrint(strings.Repeat("x", 20), true)
	require.True(t, errors.Is(err, comm.ErrMessageTooLong))
	history := ts.History()[before:]
	require.Len(t, history, 2)
	require.Equal(t, firmware.Stop, history[1].Opcode)
}

func TestCapabilityGating(t *testing.T) {
	cases := []struct {
		name    string
		version string
		run     func(*Session) error
		feature firmware.Feature
	}{
		{"accel", "9.9.9", func(s *Session) error { _, err := s.Accel(); return err }, firmware.FeatureAccel},
		{"mag", "9.9.9", func(s *Session) error { _, err := s.Mag(); return err }, firmware.FeatureMag},
		{"compass", "z", func(s *Session) error { _, err := s.Compass(); return err }, firmware.FeatureMag},
		{"debug level", "1.1.4", func(s *Session) error { return s.SetDebugLevel(3) }, firmware.FeatureDebugs},
		{"set name", "9.9.9", func(s *Session) error { return s.SetName("Zippy") }, firmware.FeatureEEPROM},
		{"eeprom read", "1.0.0", func(s *Session) error { _, err := s.EEPROMRead(0, 4); return err }, firmware.FeatureExtLCD},
		{"eeprom write", "DEBUG-LCD", func(s *Session) error { return s.EEPROMWrite(0, "ab") }, firmware.FeatureEEPROM},
		{"draw string", "1.0.0", func(s *Session) error { return s.LCDDrawString(0, 0, "hi", true) }, firmware.FeatureExtLCD},
		{"read pixel", "9.9.9", func(s *Session) error { _, err := s.LCDReadPixel(0, 0); return err }, firmware.FeatureExtLCD},
		{"set color", "1.0.0", func(s *Session) error { return s.LCDSetColor(LCDWhite) }, firmware.FeatureExtLCD},
		{"bluetooth", "1.0.0", func(s *Session) error { _, err := s.BluetoothAddress(); return err }, firmware.FeatureExtLCD},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ts := connectSim(t, c.version)
			before := len(ts.History())
			err := c.run(ts.Session)
			require.True(t, errors.Is(err, ErrUnsupported))
			var capErr *CapabilityError
			require.True(t, errors.As(err, &capErr))
			require.Equal(t, c.feature, capErr.Feature)
			require.Equal(t, c.version, capErr.Version)
			require.Len(t, ts.History(), before)
			require.True(t, ts.IsConnected())
		})
	}
}

func TestDebugLevel(t *testing.T) {
	ts := connectSim(t, "DEBUG")
	sent := ts.sent(t, func() error { return ts.SetDebugLevel(9) })
	require.Equal(t, []comm.Command{cmd(firmware.SetDebugLevel, MaxSparkiDebugLevel)}, sent)
	require.Equal(t, MaxSparkiDebugLevel, ts.dev.State().DebugLevel)
}

func TestEEPROMOutOfBounds(t *testing.T) {
	ts := connectSim(t, "1.1.4")
	before := len(ts.History())

	err := ts.EEPROMWrite(1020, "0123456789")
	require.True(t, errors.Is(err, ErrOutOfBounds))
	var oob *OutOfBoundsError
	require.True(t, errors.As(err, &oob))
	require.Equal(t, 1020, oob.Location)
	require.Equal(t, 10, oob.Length)

	_, err = ts.EEPROMRead(1020, 10)
	require.True(t, errors.Is(err, ErrOutOfBounds))
	_, err = ts.EEPROMRead(5000, 1)
	require.True(t, errors.Is(err, ErrOutOfBounds))

	require.Len(t, ts.History(), before)
	require.Len(t, ts.log.Find(logging.Error, "exceeds EEPROM"), 3)
}

func TestEEPROM(t *testing.T) {
	ts := connectSim(t, "1.1.4")
	require.NoError(t, ts.EEPROMWrite(100, "hello"))
	data, err := ts.EEPROMRead(100, 5)
	require.NoError(t, err)
	require.Equal(t, "hello", data)
	require.Equal(t, []byte("hello"), ts.dev.EEPROM(100, 5))

	require.NoError(t, ts.EEPROMWrite(-20, "ab"))
	require.Equal(t, []byte("ab"), ts.dev.EEPROM(0, 2))
}

func TestName(t *testing.T) {
	opener := serial.NewOpener(nil)
	ts := newTestSession(t, testConfig(), opener)
	ok, err := ts.Connect("sim://1.1.4")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, ts.SetName(strings.Repeat("abc", 10)))
	name, err := ts.Name()
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("abc", 10)[:MaxNameLength], name)
	require.Len(t, ts.log.Find(logging.Warn, "truncated"), 1)

	// the name is read back from the robot when connecting again
	ok, err = ts.Connect("sim://1.1.4")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, name, ts.Info().Name)
}

func TestNameTruncatedAtRune(t *testing.T) {
	ts := connectSim(t, "1.1.4")
	long := strings.Repeat("a", MaxNameLength-1) + "é!"
	sent := ts.sent(t, func() error { return ts.SetName(long) })
	require.Equal(t, []comm.Command{cmd(firmware.SetName, strings.Repeat("a", MaxNameLength-1))}, sent)
	name, err := ts.Name()
	require.NoError(t, err)
	require.True(t, utf8.ValidString(name))
	require.Equal(t, strings.Repeat("a", MaxNameLength-1), name)
}

func TestTruncateUTF8(t *testing.T) {
	cases := []struct {
		in       string
		n        int
		expected string
	}{
		{"sparki", 10, "sparki"},
		{"sparki", 3, "spa"},
		{"héllo", 2, "h"},
		{"héllo", 3, "hé"},
		{"日本語", 4, "日"},
		{"日本語", 2, ""},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			require.Equal(t, c.expected, truncateUTF8(c.in, c.n))
		})
	}
}

func TestBluetoothAddress(t *testing.T) {
	ts := connectSim(t, "1.1.4")
	addr, err := ts.BluetoothAddress()
	require.NoError(t, err)
	require.Empty(t, addr)

	err = ts.SetBluetoothAddress("00:11:22:33:44")
	require.True(t, errors.Is(err, ErrInvalidAddress))

	require.NoError(t, ts.SetBluetoothAddress("00:11:22:aa:BB:55"))
	addr, err = ts.BluetoothAddress()
	require.NoError(t, err)
	require.Equal(t, "00:11:22:aa:BB:55", addr)
	require.Equal(t, []byte("00:11"), ts.dev.EEPROM(BluetoothAddressLocation, 5))
}

func TestValidBluetoothAddress(t *testing.T) {
	cases := map[string]bool{
		"00:11:22:33:44:55": true,
		"aa-bb-cc-dd-ee-ff": true,
		"00:11:22:33:44":    false,
		"00:11:22:33:44:5g": false,
		"":                  false,
	}
	for addr, valid := range cases {
		require.Equal(t, valid, ValidBluetoothAddress(addr), addr)
	}
}

func TestUptime(t *testing.T) {
	ts := connectSim(t, "1.1.4")
	start := time.Now()
	ts.Now = func() time.Time { return start.Add(time.Hour) }
	require.True(t, ts.Uptime() >= 59*time.Minute)
}
