package sparki

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/robotalks/sparki.go/pkg/comm"
	"github.com/robotalks/sparki.go/pkg/firmware"
	"github.com/robotalks/sparki.go/pkg/logging"
)

// EEPROM layout.
const (
	MaxEEPROMAddress = 1023
	// BluetoothAddressLocation holds the paired Bluetooth address.
	BluetoothAddressLocation = 80
	BluetoothAddressLength   = 17
	MaxNameLength            = 19
)

// DefaultName is the name of robots that can't store one.
const DefaultName = "Sparki"

var bluetoothAddressRe = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}$`)

// ValidBluetoothAddress checks for xx:xx:xx:xx:xx:xx or xx-xx-xx-xx-xx-xx.
func ValidBluetoothAddress(addr string) bool {
	return bluetoothAddressRe.MatchString(addr)
}

func (s *Session) eepromRange(op string, loc, n int) (int, error) {
	loc = s.clampInt("EEPROM location", loc, 0, MaxEEPROMAddress)
	if loc+n > MaxEEPROMAddress {
		err := &OutOfBoundsError{Operation: op, Location: loc, Length: n}
		s.Logger.Logf(logging.Error, "%v", err)
		return loc, err
	}
	return loc, nil
}

// EEPROMRead reads n bytes at loc.
func (s *Session) EEPROMRead(loc, n int) (string, error) {
	const op = "EEPROMRead"
	if err := s.require(op, firmware.FeatureEEPROM, firmware.FeatureExtLCD); err != nil {
		return "", err
	}
	n = s.clampInt("EEPROM amount", n, 0, MaxEEPROMAddress)
	if n == 0 {
		s.Logger.Logf(logging.Warn, "reading 0 bytes of EEPROM")
	}
	loc, err := s.eepromRange(op, loc, n)
	if err != nil {
		return "", err
	}
	var data string
	err = s.query(firmware.ReadEEPROM, func(c *comm.Conn) (err error) {
		data, err = c.ReadString()
		return
	}, loc, n)
	return data, err
}

// EEPROMWrite stores data at loc.
func (s *Session) EEPROMWrite(loc int, data string) error {
	const op = "EEPROMWrite"
	if err := s.require(op, firmware.FeatureEEPROM, firmware.FeatureExtLCD); err != nil {
		return err
	}
	loc, err := s.eepromRange(op, loc, len(data))
	if err != nil {
		return err
	}
	return s.send(firmware.WriteEEPROM, loc, data)
}

// Name returns the name stored on the robot.
func (s *Session) Name() (string, error) {
	if err := s.require("Name"); err != nil {
		return "", err
	}
	if !s.Profile().EEPROM {
		return DefaultName, nil
	}
	s.lock.RLock()
	name := s.name
	s.lock.RUnlock()
	if name != "" && name != DefaultName {
		return name, nil
	}
	return s.fetchName()
}

func (s *Session) fetchName() (string, error) {
	var name string
	if err := s.query(firmware.GetName, func(c *comm.Conn) (err error) {
		name, err = c.ReadString()
		return
	}); err != nil {
		return "", err
	}
	if name == "" {
		name = DefaultName
	}
	s.lock.Lock()
	s.name = name
	s.lock.Unlock()
	return name, nil
}

// SetName stores a name of at most MaxNameLength bytes, cut at a
// character boundary.
func (s *Session) SetName(name string) error {
	if err := s.require("SetName", firmware.FeatureEEPROM); err != nil {
		return err
	}
	if len(name) > MaxNameLength {
		s.Logger.Logf(logging.Warn, "name %q is truncated to %d bytes", name, MaxNameLength)
		name = truncateUTF8(name, MaxNameLength)
	}
	if err := s.send(firmware.SetName, name); err != nil {
		return err
	}
	s.lock.Lock()
	s.name = name
	s.lock.Unlock()
	return nil
}

// BluetoothAddress returns the stored Bluetooth address, empty
// if none was stored.
func (s *Session) BluetoothAddress() (string, error) {
	addr, err := s.EEPROMRead(BluetoothAddressLocation, BluetoothAddressLength)
	if err != nil || !ValidBluetoothAddress(addr) {
		return "", err
	}
	return addr, nil
}

// SetBluetoothAddress stores a Bluetooth address.
func (s *Session) SetBluetoothAddress(addr string) error {
	if !ValidBluetoothAddress(addr) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	return s.EEPROMWrite(BluetoothAddressLocation, addr)
}

func truncateUTF8(str string, n int) string {
	if len(str) <= n {
		return str
	}
	for n > 0 && !utf8.RuneStart(str[n]) {
		n--
	}
	return str[:n]
}
