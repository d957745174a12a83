package comm

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Overflow is sent by the firmware in place of a number it couldn't produce.
const Overflow = "ovf"

// Decoder splits a received byte stream into tokens.
type Decoder struct {
	buf []byte
}

// Reset drops any partial token.
func (d *Decoder) Reset() {
	d.buf = d.buf[:0]
}

// Pending returns the number of bytes of the partial token.
func (d *Decoder) Pending() int {
	return len(d.buf)
}

// Parse consumes one byte. It returns the token when b completes one.
func (d *Decoder) Parse(b byte) (tok string, ok bool) {
	switch b {
	case Sync:
	case Terminator:
		tok, ok = string(d.buf), true
		d.buf = d.buf[:0]
	default:
		d.buf = append(d.buf, b)
	}
	return
}

// ReadToken reads bytes until a complete token is decoded.
// Errors from r are returned unchanged.
func ReadToken(r io.ByteReader) (string, error) {
	var d Decoder
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if tok, ok := d.Parse(b); ok {
			return tok, nil
		}
	}
}

func isNoData(tok string) bool {
	tok = strings.TrimSpace(tok)
	return tok == "" || tok == Overflow
}

// ParseInt decodes an integer token, "ovf" or empty yields -1.
func ParseInt(tok string) (int, error) {
	if isNoData(tok) {
		return -1, nil
	}
	return strconv.Atoi(strings.TrimSpace(tok))
}

// ParseFloat decodes a float token, "ovf" or empty yields -1.0.
func ParseFloat(tok string) (float64, error) {
	if isNoData(tok) {
		return -1.0, nil
	}
	return strconv.ParseFloat(strings.TrimSpace(tok), 64)
}

// ParseChar decodes a character sent as its decimal code.
func ParseChar(tok string) (rune, error) {
	code, err := strconv.Atoi(strings.TrimSpace(tok))
	if err != nil {
		return 0, err
	}
	if code < 0 || code > 0x10ffff {
		return 0, fmt.Errorf("invalid character code %d", code)
	}
	return rune(code), nil
}
