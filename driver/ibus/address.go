package ibus

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Bus address from IBUS_ADDRESS, or from the address file the daemon
// writes for the display.
func Address(display string) (string, error) {
	if a := os.Getenv("IBUS_ADDRESS"); a != "" {
		return a, nil
	}
	mid, err := machineID()
	if err != nil {
		return "", err
	}
	name, err := addressFileName(mid, display)
	if err != nil {
		return "", err
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "ibus", "bus", name)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "ibus address file")
	}
	return parseAddressFile(data)
}

func machineID() (string, error) {
	for _, p := range []string{"/var/lib/dbus/machine-id", "/etc/machine-id"} {
		b, err := os.ReadFile(p)
		if err == nil {
			return strings.TrimSpace(string(b)), nil
		}
	}
	return "", errors.New("machine id not found")
}

// "<machine-id>-<host or unix>-<display number>"
func addressFileName(machineID, display string) (string, error) {
	if display == "" {
		display = os.Getenv("DISPLAY")
	}
	host, rest, ok := strings.Cut(display, ":")
	if !ok {
		return "", errors.Errorf("bad display: %q", display)
	}
	num, _, _ := strings.Cut(rest, ".")
	if num == "" {
		return "", errors.Errorf("bad display: %q", display)
	}
	if host == "" {
		host = "unix"
	}
	return fmt.Sprintf("%s-%s-%s", machineID, host, num), nil
}

func parseAddressFile(data []byte) (string, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		if a, ok := strings.CutPrefix(line, "IBUS_ADDRESS="); ok && a != "" {
			return a, nil
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", errors.New("IBUS_ADDRESS not found")
}
