package storage

import (
	"github.com/abiosoft/ishell"

	"github.com/robotalks/sparki.go/pkg/cli/sh"
)

func connected(fn sh.CmdFunc) func(c *ishell.Context) {
	return sh.Do(sh.MustBeConnected(fn))
}

// Read reads N bytes of EEPROM at LOC.
func Read(s *sh.Shell, args []string) (interface{}, error) {
	loc, err := sh.IntArg(args, 0, "LOC")
	if err != nil {
		return nil, err
	}
	n, err := sh.IntArg(args, 1, "N")
	if err != nil {
		return nil, err
	}
	return s.Session.EEPROMRead(loc, n)
}

// Write writes TEXT to EEPROM at LOC.
func Write(s *sh.Shell, args []string) (interface{}, error) {
	loc, err := sh.IntArg(args, 0, "LOC")
	if err != nil {
		return nil, err
	}
	text, err := sh.TextArg(args, 1, "TEXT")
	if err != nil {
		return nil, err
	}
	return nil, s.Session.EEPROMWrite(loc, text)
}

// SetName stores the robot name.
func SetName(s *sh.Shell, args []string) (interface{}, error) {
	name, err := sh.TextArg(args, 0, "NAME")
	if err != nil {
		return nil, err
	}
	if err = s.Session.SetName(name); err != nil {
		return nil, err
	}
	return s.Session.Name()
}

// SetBluetooth stores the Bluetooth address.
func SetBluetooth(s *sh.Shell, args []string) (interface{}, error) {
	addr, err := sh.TextArg(args, 0, "ADDRESS")
	if err != nil {
		return nil, err
	}
	return nil, s.Session.SetBluetoothAddress(addr)
}

var (
	// ReadCmd reads EEPROM.
	ReadCmd = ishell.Cmd{
		Name: "eeprom.read",
		Help: "LOC N",
		Func: connected(Read),
	}

	// WriteCmd writes EEPROM.
	WriteCmd = ishell.Cmd{
		Name: "eeprom.write",
		Help: "LOC TEXT",
		Func: connected(Write),
	}

	// NameCmd prints the robot name.
	NameCmd = ishell.Cmd{
		Name: "name",
		Help: "",
		Func: connected(func(s *sh.Shell, args []string) (interface{}, error) {
			return s.Session.Name()
		}),
	}

	// SetNameCmd stores the robot name.
	SetNameCmd = ishell.Cmd{
		Name: "name.set",
		Help: "NAME",
		Func: connected(SetName),
	}

	// BluetoothCmd prints the stored Bluetooth address.
	BluetoothCmd = ishell.Cmd{
		Name: "bt",
		Help: "",
		Func: connected(func(s *sh.Shell, args []string) (interface{}, error) {
			return s.Session.BluetoothAddress()
		}),
	}

	// SetBluetoothCmd stores a Bluetooth address.
	SetBluetoothCmd = ishell.Cmd{
		Name: "bt.set",
		Help: "xx:xx:xx:xx:xx:xx",
		Func: connected(SetBluetooth),
	}
)

func init() {
	sh.AddCmds(
		&ReadCmd,
		&WriteCmd,
		&NameCmd,
		&SetNameCmd,
		&BluetoothCmd,
		&SetBluetoothCmd,
	)
}
