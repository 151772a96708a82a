package prtapi

import (
	"net"
	"os"
	"strconv"
)

// ServerIP returns the address of the interface used for outbound traffic.
// No packets are sent; dialing UDP only selects a route.
func ServerIP() string {
	conn, err := net.Dial("udp", "10.255.255.255:1")
	if err == nil {
		defer func() { _ = conn.Close() }()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
			return addr.IP.String()
		}
	}

	host, err := os.Hostname()
	if err != nil {
		return "127.0.0.1"
	}
	addrs, err := net.LookupHost(host)
	if err != nil || len(addrs) == 0 {
		return "127.0.0.1"
	}
	return addrs[0]
}

// DefaultOrigins returns the origins a dashboard on this host may use:
// the server IP and hostname (with and without ".local"), each bare and
// with webPort.
func DefaultOrigins(serverIP, hostname string, webPort int) []string {
	port := strconv.Itoa(webPort)
	origins := []string{
		serverIP,
		"http://" + serverIP,
		"http://" + net.JoinHostPort(serverIP, port),
	}
	if hostname != "" {
		origins = append(origins,
			"http://"+hostname,
			"http://"+net.JoinHostPort(hostname, port),
			"http://"+hostname+".local",
			"http://"+net.JoinHostPort(hostname+".local", port),
		)
	}
	return origins
}
