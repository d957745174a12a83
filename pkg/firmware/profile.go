package firmware

// Feature is an optional firmware capability.
type Feature int

// Features gated by the profile.
const (
	FeatureAccel Feature = iota
	FeatureMag
	FeatureDebugs
	FeatureEEPROM
	FeatureExtLCD
	FeatureNoop
)

var featureNames = map[Feature]string{
	FeatureAccel:  "accelerometer",
	FeatureMag:    "magnetometer",
	FeatureDebugs: "debug commands",
	FeatureEEPROM: "EEPROM",
	FeatureExtLCD: "extended LCD",
	FeatureNoop:   "noop",
}

// String implements fmt.Stringer.
func (f Feature) String() string {
	if name, ok := featureNames[f]; ok {
		return name
	}
	return "unknown feature"
}

// Profile is the capability set of a firmware version.
type Profile struct {
	NoAccel  bool
	NoMag    bool
	Debugs   bool
	EEPROM   bool
	ExtLCD   bool
	Reserved bool
	Noop     bool
}

// Conservative is used for firmware versions not in the table.
// Every optional feature is off.
var Conservative = Profile{NoAccel: true, NoMag: true}

// Has checks a feature.
func (p Profile) Has(f Feature) bool {
	switch f {
	case FeatureAccel:
		return !p.NoAccel
	case FeatureMag:
		return !p.NoMag
	case FeatureDebugs:
		return p.Debugs
	case FeatureEEPROM:
		return p.EEPROM
	case FeatureExtLCD:
		return p.ExtLCD
	case FeatureNoop:
		return p.Noop
	}
	return false
}

// Features lists the features enabled.
func (p Profile) Features() []Feature {
	var features []Feature
	for f := FeatureAccel; f <= FeatureNoop; f++ {
		if p.Has(f) {
			features = append(features, f)
		}
	}
	return features
}

// Tuple returns the flags in firmware table order.
func (p Profile) Tuple() [7]bool {
	return [7]bool{p.NoAccel, p.NoMag, p.Debugs, p.EEPROM, p.ExtLCD, p.Reserved, p.Noop}
}

func profileOf(t [7]bool) Profile {
	return Profile{
		NoAccel:  t[0],
		NoMag:    t[1],
		Debugs:   t[2],
		EEPROM:   t[3],
		ExtLCD:   t[4],
		Reserved: t[5],
		Noop:     t[6],
	}
}

const (
	on  = true
	off = false
)

// released versions, keyed by major.minor.patch.
var numericProfiles = map[string]Profile{
	"0.9.6": profileOf([7]bool{off, off, off, on, off, off, off}),
	"0.9.7": profileOf([7]bool{off, off, off, on, off, off, off}),
	"0.9.8": profileOf([7]bool{off, off, off, on, off, off, off}),
	"1.0.0": profileOf([7]bool{off, off, off, on, off, off, off}),
	"1.0.1": profileOf([7]bool{off, off, off, on, on, off, off}),
	"1.1.0": profileOf([7]bool{off, off, off, on, on, off, off}),
	"1.1.1": profileOf([7]bool{off, off, off, on, on, off, off}),
	"1.1.2": profileOf([7]bool{off, off, off, on, on, off, off}),
	"1.1.3": profileOf([7]bool{off, off, off, on, on, off, on}),
	"1.1.4": profileOf([7]bool{off, off, off, on, on, off, on}),
}

// development and early builds identified by label.
var labelProfiles = map[string]Profile{
	"z":                     profileOf([7]bool{on, on, off, off, off, off, off}),
	"DEBUG":                 profileOf([7]bool{on, on, on, off, off, off, off}),
	"DEBUG-ACCEL":           profileOf([7]bool{off, on, on, off, off, off, off}),
	"DEBUG-EEPROM":          profileOf([7]bool{on, on, on, on, off, off, off}),
	"DEBUG-LCD":             profileOf([7]bool{off, off, on, off, on, off, off}),
	"DEBUG-MAG":             profileOf([7]bool{on, off, on, off, off, off, off}),
	"DEBUG-PING":            profileOf([7]bool{on, on, on, off, off, off, off}),
	"0.2 No Mag / No Accel": profileOf([7]bool{on, on, off, off, off, off, off}),
	"0.8.3 Mag / Accel On":  profileOf([7]bool{off, off, off, off, off, off, off}),
}

// Lookup finds the profile of a version string as reported by the
// firmware. Unknown versions return Conservative and false.
func Lookup(raw string) (Profile, bool) {
	v := ParseVersion(raw)
	var p Profile
	var ok bool
	if v.Numeric {
		p, ok = numericProfiles[v.Key()]
	} else {
		p, ok = labelProfiles[v.Key()]
	}
	if !ok {
		return Conservative, false
	}
	return p, true
}

// Known lists every version in the table.
func Known() []string {
	versions := make([]string, 0, len(numericProfiles)+len(labelProfiles))
	for v := range numericProfiles {
		versions = append(versions, v)
	}
	for v := range labelProfiles {
		versions = append(versions, v)
	}
	return versions
}
