package net

import (
	"fmt"
	"log"
	"net"
)

// GetOutgoingIP finds the address other machines on the LAN can reach this
// host at.
func GetOutgoingIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// No route to the internet; fall back to the interface list.
		return getLocalIPFallback()
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

func getLocalIPFallback() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}
	for _, address := range addrs {
		if ipnet, ok := address.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				return ipnet.IP.String(), nil
			}
		}
	}
	log.Println("[NET] No suitable local IP found, share URL falls back to loopback")
	return "127.0.0.1", nil
}

// SurfaceURL is the WebSocket address a browser surface connects to.
func SurfaceURL(host string, port int) string {
	return fmt.Sprintf("ws://%s/ws", net.JoinHostPort(host, fmt.Sprint(port)))
}

// ShareURL returns the surface URL on this host's LAN address.
func ShareURL(port int) string {
	ip, err := GetOutgoingIP()
	if err != nil {
		ip = "127.0.0.1"
	}
	return SurfaceURL(ip, port)
}
