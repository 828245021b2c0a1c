// Package board identifies the host board from its device tree, for the
// startup banner and backend sanity checks.
package board

import (
	"os"
	"strings"
)

// Device-tree model paths, in preference order.
var modelPaths = []string{
	"/sys/firmware/devicetree/base/model",
	"/proc/device-tree/model",
}

// Model returns the device-tree model string, or "" when the host has no
// device tree (e.g. x86 dev machines).
func Model() string {
	for _, p := range modelPaths {
		b, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if m := parseModel(b); m != "" {
			return m
		}
	}
	return ""
}

func parseModel(b []byte) string {
	return strings.TrimSpace(strings.Trim(string(b), "\x00"))
}

func IsRaspberryPi(model string) bool {
	return strings.Contains(model, "Raspberry Pi")
}
