package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTextAsk(t *testing.T) {
	var out bytes.Buffer
	p := NewText(strings.NewReader("  /dev/ttyUSB0 \n"), &out)
	answer, err := p.Ask("Port?")
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyUSB0", answer)
	require.Equal(t, "Port? ", out.String())

	_, err = p.Ask("Again?")
	require.Equal(t, ErrNoAnswer, err)
}

func TestTextAskWithoutNewline(t *testing.T) {
	p := NewText(strings.NewReader("sim"), &bytes.Buffer{})
	answer, err := p.Ask("Port?")
	require.NoError(t, err)
	require.Equal(t, "sim", answer)
}

func TestTextConfirm(t *testing.T) {
	cases := []struct {
		input    string
		expected bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"maybe\nno\n", false},
	}
	for _, c := range cases {
		t.Run(strings.TrimSpace(c.input), func(t *testing.T) {
			p := NewText(strings.NewReader(c.input), &bytes.Buffer{})
			ok, err := p.Confirm("Continue?")
			require.NoError(t, err)
			require.Equal(t, c.expected, ok)
		})
	}
}

func TestTextChoose(t *testing.T) {
	options := []string{"/dev/ttyACM0", "/dev/rfcomm0"}
	cases := []struct {
		input    string
		expected int
	}{
		{"1\n", 0},
		{"2\n", 1},
		{"0\n3\n2\n", 1},
		{"/DEV/TTYACM0\n", 0},
	}
	for _, c := range cases {
		t.Run(strings.Replace(c.input, "\n", ",", -1), func(t *testing.T) {
			var out bytes.Buffer
			p := NewText(strings.NewReader(c.input), &out)
			n, err := p.Choose("Which port?", options)
			require.NoError(t, err)
			require.Equal(t, c.expected, n)
			require.Contains(t, out.String(), "  2) /dev/rfcomm0")
		})
	}

	p := NewText(strings.NewReader("1\n"), &bytes.Buffer{})
	_, err := p.Choose("Which port?", nil)
	require.Equal(t, ErrNoAnswer, err)

	p = NewText(strings.NewReader("9\n"), &bytes.Buffer{})
	_, err = p.Choose("Which port?", options)
	require.Equal(t, ErrNoAnswer, err)
}

func TestSelect(t *testing.T) {
	text := NewText(strings.NewReader(""), &bytes.Buffer{})
	require.Equal(t, text, Select(nil, &Shell{}, text))

	fallback, ok := Select(&Shell{}).(*Text)
	require.True(t, ok)
	require.True(t, fallback.Available())
}
