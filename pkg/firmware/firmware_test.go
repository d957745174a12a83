package firmware

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sparki.go/pkg/comm"
)

func TestParseVersion(t *testing.T) {
	cases := []struct {
		raw      string
		key      string
		revision string
		numeric  bool
	}{
		{"1.1.4", "1.1.4", "", true},
		{"1.1.2r5", "1.1.2", "5", true},
		{" 1.0.1r12 ", "1.0.1", "12", true},
		{"1.1", "1.1.0", "", true},
		{"DEBUG-EEPROM", "DEBUG-EEPROM", "", false},
		{"0.2 No Mag / No Accel", "0.2 No Mag / No Accel", "", false},
		{"z", "z", "", false},
		{"1.2.3.4", "1.2.3.4", "", false},
		{"", "", "", false},
	}
	for _, c := range cases {
		t.Run(c.raw, func(t *testing.T) {
			v := ParseVersion(c.raw)
			require.Equal(t, c.key, v.Key())
			require.Equal(t, c.revision, v.Revision)
			require.Equal(t, c.numeric, v.Numeric)
		})
	}
}

func TestLookup(t *testing.T) {
	cases := []struct {
		version string
		known   bool
		profile Profile
	}{
		{"1.1.4", true, Profile{EEPROM: true, ExtLCD: true, Noop: true}},
		{"1.1.3", true, Profile{EEPROM: true, ExtLCD: true, Noop: true}},
		{"1.1.2r5", true, Profile{EEPROM: true, ExtLCD: true}},
		{"1.0.0", true, Profile{EEPROM: true}},
		{"0.9.6", true, Profile{EEPROM: true}},
		{"DEBUG", true, Profile{NoAccel: true, NoMag: true, Debugs: true}},
		{"DEBUG-LCD", true, Profile{Debugs: true, ExtLCD: true}},
		{"DEBUG-MAG", true, Profile{NoAccel: true, Debugs: true}},
		{"0.8.3 Mag / Accel On", true, Profile{}},
		{"9.9.9", false, Conservative},
		{"", false, Conservative},
	}
	for _, c := range cases {
		t.Run(c.version, func(t *testing.T) {
			p, ok := Lookup(c.version)
			require.Equal(t, c.known, ok)
			require.Equal(t, c.profile, p)
		})
	}
}

func TestConservative(t *testing.T) {
	require.Equal(t, [7]bool{true, true, false, false, false, false, false}, Conservative.Tuple())
	require.Empty(t, Conservative.Features())
	for f := FeatureAccel; f <= FeatureNoop; f++ {
		require.False(t, Conservative.Has(f), f.String())
	}
}

func TestProfileFeatures(t *testing.T) {
	p, ok := Lookup("1.1.4")
	require.True(t, ok)
	require.Equal(t, []Feature{FeatureAccel, FeatureMag, FeatureEEPROM, FeatureExtLCD, FeatureNoop}, p.Features())
	require.Equal(t, "extended LCD", FeatureExtLCD.String())
	require.Equal(t, "unknown feature", Feature(99).String())
}

func TestKnown(t *testing.T) {
	known := Known()
	require.Len(t, known, 19)
	for _, v := range known {
		_, ok := Lookup(v)
		require.True(t, ok, v)
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(comm.NewCommand(Motors, 10, 10, -1.0)))
	require.NoError(t, Validate(comm.NewCommand(Stop)))

	for _, cmd := range []comm.Command{
		comm.NewCommand('?'),
		comm.NewCommand(Beep, 440),
		comm.NewCommand(Stop, 1),
	} {
		t.Run(cmd.String(), func(t *testing.T) {
			err := Validate(cmd)
			require.True(t, errors.Is(err, comm.ErrInvalidCommand), "%v", err)
		})
	}

	info, ok := Info(GetLine)
	require.True(t, ok)
	require.Equal(t, 5, info.Replies)
}
