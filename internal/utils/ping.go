package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"
)

// DefaultPingTimeout bounds a single reachability check
const DefaultPingTimeout = 1500 * time.Millisecond

var schemePorts = map[string]string{
	"http":     "80",
	"https":    "443",
	"redis":    "6379",
	"postgres": "5432",
	"mysql":    "3306",
}

// ServiceAddress turns a service url into a host:port dial address, filling
// in the default port for the scheme.
func ServiceAddress(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid service url: %w", err)
	}
	if u.Hostname() == "" {
		return "", errors.New("invalid service url: missing host")
	}

	port := u.Port()
	if port == "" {
		var ok bool
		if port, ok = schemePorts[u.Scheme]; !ok {
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}

// Dial opens and closes a tcp connection to address
func Dial(ctx context.Context, address string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("%s unreachable: %w", address, err)
	}
	return conn.Close()
}

// PingURL checks that the service behind rawURL accepts tcp connections
func PingURL(ctx context.Context, rawURL string, timeout time.Duration) error {
	address, err := ServiceAddress(rawURL)
	if err != nil {
		return err
	}
	return Dial(ctx, address, timeout)
}
