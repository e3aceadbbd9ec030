package hw

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"

	"github.com/gwillem/shooterbot/pkg/robot"
)

// Found describes a serial port with servos answering on it.
type Found struct {
	Port string
	IDs  []int
}

// Ports lists candidate serial ports.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}
		out = append(out, port)
	}
	return out, nil
}

// Scan probes every serial port for servos with IDs in [minID, maxID].
// Ports that cannot be opened or have no servos are skipped.
func Scan(minID, maxID int) []Found {
	ports, err := Ports()
	if err != nil {
		return nil
	}

	var found []Found
	for _, port := range ports {
		ids, err := ScanPort(port, minID, maxID)
		if err != nil || len(ids) == 0 {
			continue
		}
		found = append(found, Found{Port: port, IDs: ids})
	}
	return found
}

// ScanPort returns the servo IDs in [minID, maxID] answering on port.
func ScanPort(port string, minID, maxID int) ([]int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}
	defer bus.Close()

	servos, err := bus.Scan(ctx, minID, maxID)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(servos))
	for _, s := range servos {
		ids = append(ids, s.ID)
	}
	sort.Ints(ids)
	return ids, nil
}

// Covers reports whether ids contains a device for every actuator in cfg.
func Covers(ids []int, cfg *robot.Config) bool {
	have := make(map[int]bool, len(ids))
	for _, id := range ids {
		have[id] = true
	}
	for _, a := range cfg.Actuators {
		if !have[a.ID] {
			return false
		}
	}
	return true
}
