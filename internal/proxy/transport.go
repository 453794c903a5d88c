package proxy

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	xproxy "golang.org/x/net/proxy"
)

// NewTransport builds a dedicated transport that sends all traffic through ep.
func NewTransport(ep Endpoint, timeout time.Duration) (*http.Transport, error) {
	if ep.url == nil {
		return nil, fmt.Errorf("proxy endpoint is not set")
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	dialer := &net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		ForceAttemptHTTP2:     true,
	}

	switch ep.Scheme() {
	case "http", "https":
		transport.Proxy = http.ProxyURL(ep.URL())
	case "socks5", "socks5h":
		socks, err := xproxy.FromURL(ep.URL(), dialer)
		if err != nil {
			return nil, fmt.Errorf("failed to build socks dialer for %s: %w", ep, err)
		}
		if cd, ok := socks.(xproxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return socks.Dial(network, addr)
			}
		}
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", ep.Scheme())
	}
	return transport, nil
}
