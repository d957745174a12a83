package sim

import "strings"

// LCD geometry.
const (
	LCDWidth  = 128
	LCDHeight = 64
	LCDLines  = 8
	// CharWidth is the width of a character in pixels.
	CharWidth = 6
)

// Colors for LCDSetColor.
const (
	ColorBlack = 0
	ColorWhite = 1
)

// LCD keeps a draw buffer and what was last shown by an update.
type LCD struct {
	Color  int
	pixels [LCDHeight][LCDWidth]bool
	lines  [LCDLines][]byte
	// text printed since the last clear
	printed []byte
	shown   [LCDLines]string
	updates int
}

// Clear blanks the draw buffer.
func (l *LCD) Clear() {
	l.pixels = [LCDHeight][LCDWidth]bool{}
	l.lines = [LCDLines][]byte{}
	l.printed = nil
}

// SetPixel draws with the current color. Out of range is ignored.
func (l *LCD) SetPixel(x, y int) {
	if x < 0 || x >= LCDWidth || y < 0 || y >= LCDHeight {
		return
	}
	l.pixels[y][x] = l.Color == ColorBlack
}

// Pixel reports whether a pixel is black.
func (l *LCD) Pixel(x, y int) bool {
	if x < 0 || x >= LCDWidth || y < 0 || y >= LCDHeight {
		return false
	}
	return l.pixels[y][x]
}

// DrawString places text at pixel column x of a text line.
func (l *LCD) DrawString(x, line int, msg string) {
	if line < 0 || line >= LCDLines || x < 0 {
		return
	}
	col := x / CharWidth
	buf := l.lines[line]
	for len(buf) < col+len(msg) {
		buf = append(buf, ' ')
	}
	copy(buf[col:], msg)
	l.lines[line] = buf
}

// Print appends text at the cursor.
func (l *LCD) Print(msg string) {
	l.printed = append(l.printed, msg...)
}

// Update shows the draw buffer.
func (l *LCD) Update() {
	text := strings.Split(string(l.printed), "\n")
	for n := range l.shown {
		line := string(l.lines[n])
		if n < len(text) && text[n] != "" {
			line = text[n] + line
		}
		l.shown[n] = strings.TrimRight(line, " ")
	}
	l.updates++
}

// Shown returns the text lines visible after the last update.
func (l *LCD) Shown() []string {
	return append([]string(nil), l.shown[:]...)
}

// Updates counts updates.
func (l *LCD) Updates() int {
	return l.updates
}
