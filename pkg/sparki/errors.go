package sparki

import (
	"errors"
	"fmt"

	"github.com/robotalks/sparki.go/pkg/firmware"
)

var (
	// ErrUnsupported indicates the firmware lacks a feature.
	ErrUnsupported = errors.New("not supported by firmware")
	// ErrOutOfBounds indicates an EEPROM access past the end.
	ErrOutOfBounds = errors.New("out of bounds")
	// ErrNotFound indicates no candidate port reached a robot.
	ErrNotFound = errors.New("no Sparki found")
	// ErrNoVersion indicates the robot didn't identify itself.
	ErrNoVersion = errors.New("no firmware version")
	// ErrInvalidAddress indicates a malformed Bluetooth address.
	ErrInvalidAddress = errors.New("invalid bluetooth address")
)

// CapabilityError is returned when an operation needs a feature
// the connected firmware doesn't have.
type CapabilityError struct {
	Operation string
	Feature   firmware.Feature
	Version   string
}

// Error implements error.
func (e *CapabilityError) Error() string {
	return fmt.Sprintf("%s requires %s, not supported by firmware %q", e.Operation, e.Feature, e.Version)
}

// Unwrap returns ErrUnsupported.
func (e *CapabilityError) Unwrap() error {
	return ErrUnsupported
}

// OutOfBoundsError reports an EEPROM range past MaxEEPROMAddress.
type OutOfBoundsError struct {
	Operation string
	Location  int
	Length    int
}

// Error implements error.
func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%s at %d with %d bytes exceeds EEPROM address %d",
		e.Operation, e.Location, e.Length, MaxEEPROMAddress)
}

// Unwrap returns ErrOutOfBounds.
func (e *OutOfBoundsError) Unwrap() error {
	return ErrOutOfBounds
}
