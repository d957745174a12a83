package logging

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	testCases := []struct {
		name   string
		expect Severity
	}{
		{"debug", Debug},
		{"INFO", Info},
		{"warning", Warn},
		{" error ", Error},
		{"critical", Critical},
		{"always", Always},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sev, err := ParseSeverity(tc.name)
			require.NoError(t, err)
			require.Equal(t, tc.expect, sev)
		})
	}
	_, err := ParseSeverity("loud")
	require.Error(t, err)
}

func TestSeverityOrder(t *testing.T) {
	require.True(t, Debug < Info)
	require.True(t, Info < Warn)
	require.True(t, Warn < Error)
	require.True(t, Error < Critical)
	require.True(t, Critical < Always)
	require.Equal(t, "critical", Critical.String())
}

func TestFilter(t *testing.T) {
	var rec Recorder
	l := &Filter{Logger: &rec, Level: Error}
	l.Logf(Debug, "d")
	l.Logf(Warn, "w")
	l.Logf(Error, "e %d", 1)
	l.Logf(Always, "a")
	require.Equal(t, []Entry{{Error, "e 1"}, {Always, "a"}}, rec.Entries())
}

func TestTee(t *testing.T) {
	var r1, r2 Recorder
	Tee{&r1, &r2}.Logf(Info, "hello %s", "sparki")
	require.Len(t, r1.Find(Info, "sparki"), 1)
	require.Len(t, r2.Find(Info, "hello"), 1)
	require.Empty(t, r2.Find(Warn, "hello"))
}

func TestZapFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "sparki-log")
	require.NoError(t, err)
	path := filepath.Join(dir, "session.log")
	zl := NewFileLogger(FileOptions{Path: path})
	(&Zap{Logger: zl}).Logf(Warn, "clamped %d", 5)
	require.NoError(t, zl.Sync())

	data, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	require.Equal(t, "clamped 5", rec["msg"])
	require.Equal(t, "warn", rec["level"])
	require.Equal(t, "warn", rec["severity"])
}
