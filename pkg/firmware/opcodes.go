// Package firmware describes what the Sparki firmware understands:
// its opcodes and the features each released version supports.
package firmware

import (
	"fmt"

	"github.com/robotalks/sparki.go/pkg/comm"
)

// Opcodes understood by the firmware.
const (
	Beep          comm.Opcode = 'b'
	Compass       comm.Opcode = 'c'
	Gamepad       comm.Opcode = 'e'
	GetAccel      comm.Opcode = 'f'
	GetLight      comm.Opcode = 'k'
	GetLine       comm.Opcode = 'm'
	GetMag        comm.Opcode = 'o'
	GripperClose  comm.Opcode = 'v'
	GripperOpen   comm.Opcode = 'x'
	GripperStop   comm.Opcode = 'y'
	Init          comm.Opcode = 'z'
	LCDClear      comm.Opcode = '0'
	LCDDrawPixel  comm.Opcode = '3'
	LCDDrawString comm.Opcode = '5'
	LCDPrint      comm.Opcode = '6'
	LCDPrintLn    comm.Opcode = '7'
	LCDReadPixel  comm.Opcode = '8'
	LCDSetColor   comm.Opcode = 'T'
	LCDUpdate     comm.Opcode = '9'
	Motors        comm.Opcode = 'A'
	BackwardCM    comm.Opcode = 'B'
	ForwardCM     comm.Opcode = 'C'
	Ping          comm.Opcode = 'D'
	ReceiveIR     comm.Opcode = 'E'
	SendIR        comm.Opcode = 'F'
	Servo         comm.Opcode = 'G'
	SetDebugLevel comm.Opcode = 'H'
	SetRGBLED     comm.Opcode = 'I'
	SetStatusLED  comm.Opcode = 'J'
	Stop          comm.Opcode = 'K'
	TurnBy        comm.Opcode = 'L'
	GetName       comm.Opcode = 'O'
	SetName       comm.Opcode = 'P'
	ReadEEPROM    comm.Opcode = 'Q'
	WriteEEPROM   comm.Opcode = 'R'
	Noop          comm.Opcode = 'Z'
)

// OpcodeInfo describes an opcode.
type OpcodeInfo struct {
	Name string
	// Arity is the number of argument tokens following the opcode.
	Arity int
	// Replies is the number of tokens sent back.
	Replies int
}

var opcodes = map[comm.Opcode]OpcodeInfo{
	Beep:          {"BEEP", 2, 0},
	Compass:       {"COMPASS", 0, 1},
	Gamepad:       {"GAMEPAD", 0, 0},
	GetAccel:      {"GET_ACCEL", 0, 3},
	GetLight:      {"GET_LIGHT", 0, 3},
	GetLine:       {"GET_LINE", 0, 5},
	GetMag:        {"GET_MAG", 0, 3},
	GripperClose:  {"GRIPPER_CLOSE_DIS", 1, 0},
	GripperOpen:   {"GRIPPER_OPEN_DIS", 1, 0},
	GripperStop:   {"GRIPPER_STOP", 0, 0},
	Init:          {"INIT", 0, 1},
	LCDClear:      {"LCD_CLEAR", 0, 0},
	LCDDrawPixel:  {"LCD_DRAW_PIXEL", 2, 0},
	LCDDrawString: {"LCD_DRAW_STRING", 3, 0},
	LCDPrint:      {"LCD_PRINT", 1, 0},
	LCDPrintLn:    {"LCD_PRINTLN", 1, 0},
	LCDReadPixel:  {"LCD_READ_PIXEL", 2, 1},
	LCDSetColor:   {"LCD_SET_COLOR", 1, 0},
	LCDUpdate:     {"LCD_UPDATE", 0, 0},
	Motors:        {"MOTORS", 3, 0},
	BackwardCM:    {"BACKWARD_CM", 1, 0},
	ForwardCM:     {"FORWARD_CM", 1, 0},
	Ping:          {"PING", 0, 1},
	ReceiveIR:     {"RECEIVE_IR", 0, 1},
	SendIR:        {"SEND_IR", 1, 0},
	Servo:         {"SERVO", 1, 0},
	SetDebugLevel: {"SET_DEBUG_LEVEL", 1, 0},
	SetRGBLED:     {"SET_RGB_LED", 3, 0},
	SetStatusLED:  {"SET_STATUS_LED", 1, 0},
	Stop:          {"STOP", 0, 0},
	TurnBy:        {"TURN_BY", 1, 0},
	GetName:       {"GET_NAME", 0, 1},
	SetName:       {"SET_NAME", 1, 0},
	ReadEEPROM:    {"READ_EEPROM", 2, 1},
	WriteEEPROM:   {"WRITE_EEPROM", 2, 0},
	Noop:          {"NOOP", 0, 0},
}

// Info looks up an opcode.
func Info(op comm.Opcode) (OpcodeInfo, bool) {
	info, ok := opcodes[op]
	return info, ok
}

// Validate rejects unknown opcodes and wrong argument counts.
func Validate(cmd comm.Command) error {
	info, ok := opcodes[cmd.Opcode]
	if !ok {
		return &comm.InvalidCommandError{Opcode: cmd.Opcode, Reason: "unknown opcode"}
	}
	if len(cmd.Args) != info.Arity {
		return &comm.InvalidCommandError{
			Opcode: cmd.Opcode,
			Reason: fmt.Sprintf("%s expects %d args, got %d", info.Name, info.Arity, len(cmd.Args)),
		}
	}
	return nil
}
