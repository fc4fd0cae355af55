package advertise

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(instance string, port int, addr string, text ...string) *zeroconf.ServiceEntry {
	e := zeroconf.NewServiceEntry(instance, ServiceType, domain)
	e.Port = port
	e.Text = text
	if addr != "" {
		e.AddrIPv4 = []net.IP{net.ParseIP(addr)}
	}
	return e
}

func TestDiscover(t *testing.T) {
	browse := func(ctx context.Context, service, dom string, entries chan *zeroconf.ServiceEntry) error {
		assert.Equal(t, ServiceType, service)
		assert.Equal(t, domain, dom)
		go func() {
			entries <- entry(`Shelf\ Strip`, 9124, "192.168.1.20", "id=b", "name=Shelf Strip", "version=1.0.0")
			entries <- entry("Desk", 9124, "192.168.1.10", "id=a", "name=Desk")
			entries <- entry("NoAddr", 9124, "", "id=c")
			entries <- entry("NoID", 9124, "192.168.1.30", "name=x")
			entries <- entry("Desk", 9124, "192.168.1.11", "id=a", "name=Desk")
			close(entries)
		}()
		return nil
	}

	found, err := discover(context.Background(), testLogger(), time.Second, browse)
	require.NoError(t, err)
	require.Len(t, found, 2)

	assert.Equal(t, "Desk", found[0].Instance)
	assert.Equal(t, "a", found[0].ID)
	assert.Equal(t, "http://192.168.1.11:9124", found[0].URL())

	assert.Equal(t, "Shelf Strip", found[1].Instance)
	assert.Equal(t, "1.0.0", found[1].Version)
}

func TestDiscover_StopsOnTimeout(t *testing.T) {
	browse := func(ctx context.Context, _, _ string, _ chan *zeroconf.ServiceEntry) error {
		return nil
	}
	start := time.Now()
	found, err := discover(context.Background(), testLogger(), 0, browse)
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.GreaterOrEqual(t, time.Since(start), time.Second)
}

func TestDiscover_BrowseError(t *testing.T) {
	browse := func(ctx context.Context, _, _ string, _ chan *zeroconf.ServiceEntry) error {
		return errors.New("no multicast")
	}
	_, err := discover(context.Background(), testLogger(), time.Second, browse)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no multicast")
}

func TestUnescapeLabel(t *testing.T) {
	tests := map[string]string{
		`Desk`:           "Desk",
		`Shelf\ Strip`:   "Shelf Strip",
		`Living\032Room`: "Living Room",
		`a\.b`:           "a.b",
		`trailing\`:      `trailing\`,
	}
	for in, want := range tests {
		assert.Equal(t, want, UnescapeLabel(in), in)
	}
}
