package tool

import (
	"net"
	"os/exec"
	"strings"
)

// GetIPAddress returns the host's primary IPv4 address. It opens a UDP
// "connection" to a public address to let the kernel pick the outgoing
// interface, falling back to `hostname -I` when the host is offline.
func GetIPAddress() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
			return addr.IP.String()
		}
	}

	out, err := exec.Command("hostname", "-I").Output()
	if err != nil {
		return ""
	}
	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
