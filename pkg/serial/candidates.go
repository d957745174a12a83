package serial

import (
	"fmt"

	bugst "go.bug.st/serial"
)

// Candidates lists the ports to try when none is given. Ports of
// darwin and windows are well known, others are enumerated.
func Candidates(goos string) ([]string, error) {
	switch goos {
	case "darwin":
		return []string{
			"/dev/tty.ArcBotics-DevB",
			"/dev/tty.HC-06-DevB",
			"/dev/tty.ArcBotics-SPPDev",
		}, nil
	case "windows":
		ports := make([]string, 0, 8)
		for n := 3; n <= 10; n++ {
			ports = append(ports, fmt.Sprintf("com%d", n))
		}
		return ports, nil
	}
	ports, err := bugst.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("unable to list serial ports: %w", err)
	}
	return ports, nil
}
