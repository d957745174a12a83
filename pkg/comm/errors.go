package comm

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected indicates no port is open.
	ErrNotConnected = errors.New("not connected")
	// ErrInvalidCommand indicates a malformed opcode or argument.
	ErrInvalidCommand = errors.New("invalid command")
	// ErrSyncTimeout indicates the device didn't signal readiness in time.
	ErrSyncTimeout = errors.New("sync timeout")
	// ErrReadTimeout indicates no byte arrived within the read timeout.
	ErrReadTimeout = errors.New("read timeout")
	// ErrMessageTooLong indicates a token exceeds MaxTransmission.
	ErrMessageTooLong = errors.New("message too long")
)

// Troubleshooting is the checklist shown when the robot can't be reached.
const Troubleshooting = `Unable to communicate with Sparki. Please check:
  * Sparki is turned on and the power light is lit
  * the batteries are charged (low batteries make the link drop)
  * Bluetooth is paired, or the USB cable is plugged in, on the right port
  * no other program has the port open
  * press the reset button on Sparki, wait a few seconds and reconnect`

// InvalidCommandError describes why a command was rejected.
type InvalidCommandError struct {
	Opcode Opcode
	Reason string
}

// Error implements error.
func (e *InvalidCommandError) Error() string {
	return fmt.Sprintf("invalid command %q: %s", e.Opcode.String(), e.Reason)
}

// Unwrap returns ErrInvalidCommand.
func (e *InvalidCommandError) Unwrap() error {
	return ErrInvalidCommand
}

// MessageTooLongError reports the oversized token.
type MessageTooLongError struct {
	Token string
}

// Error implements error.
func (e *MessageTooLongError) Error() string {
	return fmt.Sprintf("message too long: %q is %d bytes with terminator, limit %d",
		e.Token, len(e.Token)+1, MaxTransmission)
}

// Unwrap returns ErrMessageTooLong.
func (e *MessageTooLongError) Unwrap() error {
	return ErrMessageTooLong
}

// ConnectError is returned when a port can't be opened.
type ConnectError struct {
	Port string
	Err  error
}

// Error implements error.
func (e *ConnectError) Error() string {
	return fmt.Sprintf("unable to connect %s: %v", e.Port, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConnectError) Unwrap() error {
	return e.Err
}

// Guidance returns the troubleshooting checklist.
func (e *ConnectError) Guidance() string {
	return Troubleshooting
}

// ConnectionLostError is returned when the link can't be recovered.
type ConnectionLostError struct {
	Port string
	Err  error
}

// Error implements error.
func (e *ConnectionLostError) Error() string {
	return fmt.Sprintf("connection to %s lost: %v", e.Port, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConnectionLostError) Unwrap() error {
	return e.Err
}

// Guidance returns the troubleshooting checklist.
func (e *ConnectionLostError) Guidance() string {
	return Troubleshooting
}
