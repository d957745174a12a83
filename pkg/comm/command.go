package comm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Protocol framing bytes and limits.
const (
	// Terminator follows every token on the wire.
	Terminator byte = 23
	// Sync is emitted by the device when it is idle.
	Sync byte = 22
	// MaxTransmission is the largest token accepted by the device,
	// including the terminator.
	MaxTransmission = 20
)

// Opcode is the single character command code.
type Opcode byte

// String returns the opcode character.
func (o Opcode) String() string {
	if o == 0 {
		return ""
	}
	return string(rune(o))
}

// Command is an opcode with its arguments.
type Command struct {
	Opcode Opcode
	Args   []interface{}
}

// NewCommand creates a Command.
func NewCommand(op Opcode, args ...interface{}) Command {
	return Command{Opcode: op, Args: args}
}

// Tokens renders the opcode and every argument as text.
func (c Command) Tokens() ([]string, error) {
	if c.Opcode == 0 {
		return nil, &InvalidCommandError{Reason: "empty opcode"}
	}
	tokens := make([]string, 0, len(c.Args)+1)
	tokens = append(tokens, c.Opcode.String())
	for n, arg := range c.Args {
		tok, err := FormatArg(arg)
		if err != nil {
			return nil, &InvalidCommandError{Opcode: c.Opcode, Reason: fmt.Sprintf("arg %d: %v", n, err)}
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// Encode returns the framed bytes of every token.
func (c Command) Encode() ([][]byte, error) {
	tokens, err := c.Tokens()
	if err != nil {
		return nil, err
	}
	frames := make([][]byte, len(tokens))
	for n, tok := range tokens {
		if frames[n], err = EncodeToken(tok); err != nil {
			return nil, err
		}
	}
	return frames, nil
}

// String implements fmt.Stringer.
func (c Command) String() string {
	tokens, err := c.Tokens()
	if err != nil {
		return fmt.Sprintf("%s%v", c.Opcode.String(), c.Args)
	}
	return strings.Join(tokens, " ")
}

// EncodeToken appends Terminator and checks the size limit.
func EncodeToken(tok string) ([]byte, error) {
	if len(tok)+1 > MaxTransmission {
		return nil, &MessageTooLongError{Token: tok}
	}
	b := make([]byte, len(tok)+1)
	copy(b, tok)
	b[len(tok)] = Terminator
	return b, nil
}

// FormatArg renders an argument the way the firmware parses it.
func FormatArg(arg interface{}) (string, error) {
	switch v := arg.(type) {
	case string:
		return v, nil
	case Opcode:
		return v.String(), nil
	case int:
		return strconv.Itoa(v), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return formatFloat(float64(v), 32), nil
	case float64:
		return formatFloat(v, 64), nil
	}
	return "", fmt.Errorf("unsupported type %T", arg)
}

// formatFloat always keeps a fraction part or an exponent, so 1 is sent as "1.0".
func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, bitSize)
	}
	s := strconv.FormatFloat(f, 'f', -1, bitSize)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
