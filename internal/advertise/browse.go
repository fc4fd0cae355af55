package advertise

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

// Found is a strip seen on the network.
type Found struct {
	Instance string
	ID       string
	Name     string
	Version  string
	Host     string
	Addr     net.IP
	Port     int
}

// URL returns the HTTP base URL of the strip.
func (f Found) URL() string {
	return "http://" + net.JoinHostPort(f.Addr.String(), strconv.Itoa(f.Port))
}

type browseFunc func(ctx context.Context, service, domain string, entries chan *zeroconf.ServiceEntry) error

func zeroconfBrowse(ctx context.Context, service, domain string, entries chan *zeroconf.ServiceEntry) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return err
	}
	return resolver.Browse(ctx, service, domain, entries)
}

// Discover browses for strips until timeout elapses or ctx is done.
// Entries without an IPv4 address or port are skipped. Results are
// sorted by instance name.
func Discover(ctx context.Context, logger *slog.Logger, timeout time.Duration) ([]Found, error) {
	return discover(ctx, logger, timeout, zeroconfBrowse)
}

func discover(ctx context.Context, logger *slog.Logger, timeout time.Duration, browse browseFunc) ([]Found, error) {
	if timeout < time.Second {
		timeout = time.Second
		logger.Warn("Discovery timeout too short, using minimum of 1 second")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry, 10)
	if err := browse(ctx, ServiceType, domain, entries); err != nil {
		return nil, fmt.Errorf("failed to start discovery: %w", err)
	}

	seen := make(map[string]Found)
	for {
		select {
		case <-ctx.Done():
			return sortFound(seen), nil
		case entry, ok := <-entries:
			if !ok {
				return sortFound(seen), nil
			}
			f, valid := validateEntry(entry, logger)
			if !valid {
				continue
			}
			logger.Debug("Discovered strip", "instance", f.Instance, "id", f.ID, "addr", f.Addr, "port", f.Port)
			seen[f.Instance] = f
		}
	}
}

func validateEntry(entry *zeroconf.ServiceEntry, logger *slog.Logger) (Found, bool) {
	if entry == nil {
		return Found{}, false
	}
	if len(entry.AddrIPv4) == 0 || entry.Port == 0 {
		logger.Debug("Skipping invalid service entry", "instance", entry.Instance, "port", entry.Port)
		return Found{}, false
	}
	f := Found{
		Instance: UnescapeLabel(entry.Instance),
		Host:     entry.HostName,
		Addr:     entry.AddrIPv4[0],
		Port:     entry.Port,
	}
	for _, txt := range entry.Text {
		key, value, ok := strings.Cut(txt, "=")
		if !ok {
			continue
		}
		switch key {
		case "id":
			f.ID = value
		case "name":
			f.Name = value
		case "version":
			f.Version = value
		}
	}
	if f.ID == "" {
		logger.Debug("Skipping service entry without id", "instance", f.Instance)
		return Found{}, false
	}
	return f, true
}

func sortFound(seen map[string]Found) []Found {
	out := make([]Found, 0, len(seen))
	for _, f := range seen {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Instance < out[j].Instance })
	return out
}

// UnescapeLabel unescapes a DNS-SD instance label (RFC 6763 section 4.3).
func UnescapeLabel(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		// \DDD decimal escape
		if i+3 < len(s) && isDigit(s[i+1]) && isDigit(s[i+2]) && isDigit(s[i+3]) {
			if val, err := strconv.Atoi(s[i+1 : i+4]); err == nil && val < 256 {
				b.WriteByte(byte(val))
				i += 3
				continue
			}
		}
		i++
		b.WriteByte(s[i])
	}
	return b.String()
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
