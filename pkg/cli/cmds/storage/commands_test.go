package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sparki.go/pkg/cli/sh/shtest"
	"github.com/robotalks/sparki.go/pkg/sparki"
)

func TestEEPROM(t *testing.T) {
	env := shtest.New(t, "1.1.4")
	_, err := env.Run(Write, "100", "hello", "world")
	require.NoError(t, err)
	res, err := env.Run(Read, "100", "11")
	require.NoError(t, err)
	require.Equal(t, "hello world", res)

	_, err = env.Run(Read, "1020", "10")
	require.True(t, errors.Is(err, sparki.ErrOutOfBounds))
	_, err = env.Run(Read, "100")
	require.EqualError(t, err, "N required")
	_, err = env.Run(Write, "100")
	require.EqualError(t, err, "TEXT required")
}

func TestName(t *testing.T) {
	env := shtest.New(t, "1.1.4")
	res, err := env.Run(SetName, "Rover")
	require.NoError(t, err)
	require.Equal(t, "Rover", res)

	_, err = env.Run(SetName)
	require.EqualError(t, err, "NAME required")
}

func TestBluetooth(t *testing.T) {
	env := shtest.New(t, "1.1.4")
	_, err := env.Run(SetBluetooth, "00:11:22:AA:BB:CC")
	require.NoError(t, err)
	addr, err := env.Shell.Session.BluetoothAddress()
	require.NoError(t, err)
	require.Equal(t, "00:11:22:AA:BB:CC", addr)

	_, err = env.Run(SetBluetooth, "nope")
	require.True(t, errors.Is(err, sparki.ErrInvalidAddress))
}

func TestStorageUnsupported(t *testing.T) {
	env := shtest.New(t, "1.0.0")
	_, err := env.Run(Read, "0", "4")
	require.True(t, errors.Is(err, sparki.ErrUnsupported))
}
