package health_monitor

import (
	"fmt"
	"net"
	"net/url"
)

// BackendsFromIPs builds one Backend per IPv4 target, suitable for
// feeding to HealthMonitor.Add, probing each target on the given TCP
// port (the forwarder's own backends are raw IPv4 addresses, not named
// services, so there is no URL path or scheme to recover from config —
// the caller picks the probe port out of band).
func BackendsFromIPs(ips []net.IP, port int) []*Backend {
	backends := make([]*Backend, 0, len(ips))
	for _, ip := range ips {
		u := url.URL{Scheme: "tcp", Host: fmt.Sprintf("%s:%d", ip.String(), port)}
		backends = append(backends, &Backend{Url: u, Name: ip.String()})
	}
	return backends
}
