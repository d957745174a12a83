package sh

import (
	"fmt"
	"strconv"
	"strings"
)

// IntArg parses the required argument n.
func IntArg(args []string, n int, name string) (int, error) {
	if n >= len(args) {
		return 0, fmt.Errorf("%s required", name)
	}
	val, err := strconv.Atoi(args[n])
	if err != nil {
		return 0, fmt.Errorf("Invalid %s: %v", name, err)
	}
	return val, nil
}

// OptIntArg parses argument n if present.
func OptIntArg(args []string, n int, name string, def int) (int, error) {
	if n >= len(args) {
		return def, nil
	}
	return IntArg(args, n, name)
}

// FloatArg parses the required argument n.
func FloatArg(args []string, n int, name string) (float64, error) {
	if n >= len(args) {
		return 0, fmt.Errorf("%s required", name)
	}
	val, err := strconv.ParseFloat(args[n], 64)
	if err != nil {
		return 0, fmt.Errorf("Invalid %s: %v", name, err)
	}
	return val, nil
}

// OptFloatArg parses argument n if present.
func OptFloatArg(args []string, n int, name string, def float64) (float64, error) {
	if n >= len(args) {
		return def, nil
	}
	return FloatArg(args, n, name)
}

// BoolArg parses on/off style argument n, def if absent.
func BoolArg(args []string, n int, name string, def bool) (bool, error) {
	if n >= len(args) {
		return def, nil
	}
	switch strings.ToLower(args[n]) {
	case "1", "on", "yes", "true", "y":
		return true, nil
	case "0", "off", "no", "false", "n":
		return false, nil
	}
	return false, fmt.Errorf("Invalid %s: %q", name, args[n])
}

// TextArg joins arguments from n on, the rest of the command line.
func TextArg(args []string, n int, name string) (string, error) {
	if n >= len(args) {
		return "", fmt.Errorf("%s required", name)
	}
	return strings.Join(args[n:], " "), nil
}
