package utils

import (
	"net"
	"net/http"
	"syscall"
	"time"
)

// NewHTTPClient builds a client tuned for many parallel ranged requests to one host.
func NewHTTPClient(cfg HTTPClientConfig) *http.Client {
	if cfg.KATimeout == 0 {
		cfg.KATimeout = 90 * time.Second
	}
	if cfg.MaxConns == 0 {
		cfg.MaxConns = 100
	}
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	if cfg.HighThreadMode {
		dialer.Control = func(network, address string, c syscall.RawConn) error {
			return c.Control(func(fd uintptr) {
				setSocketOptions(fd)
			})
		}
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		IdleConnTimeout:     cfg.KATimeout,
		MaxIdleConns:        cfg.MaxConns,
		MaxIdleConnsPerHost: cfg.MaxConns,
		DisableCompression:  true,
		ForceAttemptHTTP2:   true,
	}
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}
}
