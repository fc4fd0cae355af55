// Package advertise announces the strip on the local network over mDNS.
package advertise

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the DNS-SD service the daemon registers.
	ServiceType = "_ledstrip._tcp"
	domain      = "local."
)

// Info is what gets published about the strip.
type Info struct {
	ID      string
	Name    string
	Version string
	Port    int
}

// TXT returns the TXT records for info.
func (i Info) TXT() []string {
	return []string{
		"id=" + i.ID,
		"name=" + i.Name,
		"version=" + i.Version,
	}
}

// shutdowner is the part of *zeroconf.Server used here.
type shutdowner interface {
	Shutdown()
}

type registerFunc func(instance, service, domain string, port int, text []string, ifaces []net.Interface) (shutdowner, error)

func zeroconfRegister(instance, service, domain string, port int, text []string, ifaces []net.Interface) (shutdowner, error) {
	return zeroconf.Register(instance, service, domain, port, text, ifaces)
}

// Advertiser holds an active mDNS registration.
type Advertiser struct {
	logger *slog.Logger
	server shutdowner
}

// Start registers the strip and returns once the responder is running.
func Start(logger *slog.Logger, info Info) (*Advertiser, error) {
	return start(logger, info, zeroconfRegister)
}

func start(logger *slog.Logger, info Info, register registerFunc) (*Advertiser, error) {
	if info.Port <= 0 || info.Port > 65535 {
		return nil, fmt.Errorf("invalid advertise port %d", info.Port)
	}
	instance := info.Name
	if instance == "" {
		instance = info.ID
	}

	srv, err := register(instance, ServiceType, domain, info.Port, info.TXT(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	logger.Info("Advertising strip over mDNS",
		"service", ServiceType,
		"instance", instance,
		"port", info.Port,
	)
	return &Advertiser{logger: logger, server: srv}, nil
}

// Stop withdraws the registration.
func (a *Advertiser) Stop() {
	if a == nil || a.server == nil {
		return
	}
	a.server.Shutdown()
	a.server = nil
	a.logger.Info("Stopped mDNS advertisement")
}
