package sparki

import (
	"github.com/robotalks/sparki.go/pkg/comm"
	"github.com/robotalks/sparki.go/pkg/firmware"
)

// LCD geometry.
const (
	LCDWidth  = 128
	LCDHeight = 64
	// LCDLines is the number of text lines.
	LCDLines = 8
	// MaxStringX is the last column a string can start at.
	MaxStringX = 121
)

// LCD colors, drawing with LCDWhite erases.
const (
	LCDBlack = 0
	LCDWhite = 1
)

// LCDClear blanks the screen.
func (s *Session) LCDClear(update bool) error {
	return s.lcdSend(update, firmware.LCDClear)
}

// LCDPrint prints msg at the cursor.
func (s *Session) LCDPrint(msg string, update bool) error {
	return s.lcdSend(update, firmware.LCDPrint, msg)
}

// LCDPrintLn prints msg and moves the cursor to the next line.
func (s *Session) LCDPrintLn(msg string, update bool) error {
	return s.lcdSend(update, firmware.LCDPrintLn, msg)
}

// LCDUpdate shows what was drawn since the last update.
func (s *Session) LCDUpdate() error {
	return s.send(firmware.LCDUpdate)
}

// LCDDrawPixel draws a pixel with the current color.
func (s *Session) LCDDrawPixel(x, y int, update bool) error {
	x = s.clampInt("pixel x", x, 0, LCDWidth-1)
	y = s.clampInt("pixel y", y, 0, LCDHeight-1)
	return s.lcdSend(update, firmware.LCDDrawPixel, x, y)
}

// LCDDrawString draws msg at column x of text line y.
func (s *Session) LCDDrawString(x, y int, msg string, update bool) error {
	if err := s.require("LCDDrawString", firmware.FeatureExtLCD); err != nil {
		return err
	}
	x = s.clampInt("string x", x, 0, MaxStringX)
	y = s.clampInt("string line", y, 0, LCDLines-1)
	return s.lcdSend(update, firmware.LCDDrawString, x, y, msg)
}

// LCDReadPixel reports whether a pixel is drawn.
func (s *Session) LCDReadPixel(x, y int) (bool, error) {
	if err := s.require("LCDReadPixel", firmware.FeatureExtLCD); err != nil {
		return false, err
	}
	x = s.clampInt("pixel x", x, 0, LCDWidth-1)
	y = s.clampInt("pixel y", y, 0, LCDHeight-1)
	vals := make([]int, 1)
	if err := s.query(firmware.LCDReadPixel, func(c *comm.Conn) (err error) {
		vals[0], err = c.ReadInt()
		return
	}, x, y); err != nil {
		return false, err
	}
	return vals[0] == 1, nil
}

// LCDSetColor sets the color of later drawing.
func (s *Session) LCDSetColor(color int) error {
	if err := s.require("LCDSetColor", firmware.FeatureExtLCD); err != nil {
		return err
	}
	color = s.clampInt("color", color, LCDBlack, LCDWhite)
	if err := s.send(firmware.LCDSetColor, color); err != nil {
		return err
	}
	s.lock.Lock()
	s.lcdColor = color
	s.lock.Unlock()
	return nil
}

// LCDColor returns the color last set.
func (s *Session) LCDColor() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.lcdColor
}

func (s *Session) lcdSend(update bool, op comm.Opcode, args ...interface{}) error {
	if err := s.send(op, args...); err != nil {
		return err
	}
	if update {
		return s.LCDUpdate()
	}
	return nil
}
