package sense

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sparki.go/pkg/cli/sh"
	"github.com/robotalks/sparki.go/pkg/cli/sh/shtest"
	"github.com/robotalks/sparki.go/pkg/sim"
	"github.com/robotalks/sparki.go/pkg/sparki"
)

func TestReadings(t *testing.T) {
	env := shtest.New(t, "1.1.4")
	env.Device.SetSensors(sim.Sensors{
		Ping:    42,
		Light:   [3]int{100, 200, 300},
		Accel:   [3]float64{0.5, -1, 9.75},
		Compass: 181.5,
		IR:      7,
	})
	cases := []struct {
		name     string
		fn       sh.CmdFunc
		expected interface{}
	}{
		{"ping", Ping, 42},
		{"light", Light, [3]int{100, 200, 300}},
		{"line", Line, [5]int{}},
		{"accel", Accel, [3]float64{0.5, -1, 9.75}},
		{"mag", Mag, [3]float64{}},
		{"compass", Compass, 181.5},
		{"ir", ReceiveIR, 7},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, err := env.Run(c.fn)
			require.NoError(t, err)
			require.Equal(t, c.expected, res)
		})
	}
}

func TestObstacle(t *testing.T) {
	env := shtest.New(t, "1.1.4")
	env.Device.SetSensors(sim.Sensors{Ping: 12})
	res, err := env.Run(Obstacle, "45")
	require.NoError(t, err)
	require.Equal(t, 12, res)
	require.Equal(t, 45, env.Device.State().Servo)

	res, err = env.Run(Obstacle)
	require.NoError(t, err)
	require.Equal(t, [3]int{12, 12, 12}, res)

	_, err = env.Run(Obstacle, "left")
	require.Error(t, err)
}

func TestSendIR(t *testing.T) {
	env := shtest.New(t, "1.1.4")
	_, err := env.Run(SendIR, "33")
	require.NoError(t, err)
	require.Equal(t, []int{33}, env.Device.State().IRSent)
	_, err = env.Run(SendIR)
	require.EqualError(t, err, "CODE required")
}

func TestUnsupportedReading(t *testing.T) {
	env := shtest.New(t, "z")
	for _, fn := range []sh.CmdFunc{Accel, Mag, Compass} {
		_, err := env.Run(fn)
		require.True(t, errors.Is(err, sparki.ErrUnsupported))
	}
}
