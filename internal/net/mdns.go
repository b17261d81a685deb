package net

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service under which editors announce themselves.
const ServiceType = "_overlayeditor._tcp"

// Advertise announces an editor endpoint on port to the local network.
// Close the returned server to withdraw the announcement.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}
	// Two editors on one machine still need distinct instance names.
	instance := fmt.Sprintf("%s-%s", host, uuid.NewString()[:8])

	service, err := mdns.NewMDNSService(
		instance,
		ServiceType,
		"",
		"",
		port,
		nil,
		[]string{"OverlayEditor", "path=/ws"},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	log.Printf("[MDNS] Advertising %s on port %d", instance, port)
	return server, nil
}

// Browse looks for advertised editors for the given duration and reports
// each one's host:port to found.
func Browse(timeout time.Duration, found func(addr string)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			found(fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port))
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	<-done
	return err
}
