package net

import (
	"fmt"
	"net"

	"github.com/sirupsen/logrus"
)

// GetOutgoingIP finds the preferred local IP address for the host to share.
func GetOutgoingIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return getLocalIPFallback()
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}

// getLocalIPFallback is used on networks without internet access. It picks
// the first IPv4 address of an interface that is up and not loopback.
func getLocalIPFallback() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.String(), nil
			}
		}
	}
	logrus.Warn("No suitable local IP found, viewer link will use loopback")
	return "127.0.0.1", nil
}

// ViewerURL returns the address viewers on the LAN should open.
func ViewerURL(port int) string {
	ip, err := GetOutgoingIP()
	if err != nil {
		logrus.WithError(err).Warn("Could not determine local IP")
		ip = "127.0.0.1"
	}
	return fmt.Sprintf("http://%s/api/snapshot", net.JoinHostPort(ip, fmt.Sprint(port)))
}
