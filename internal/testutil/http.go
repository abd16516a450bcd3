// Package testutil provides helpers shared by tests that talk to a real
// gateway listener.
package testutil

import (
	"net"
	"net/http"
	"time"
)

// NoProxyClient returns an HTTP client that ignores HTTP_PROXY and friends,
// so tests reach a loopback gateway directly even on proxied machines.
func NoProxyClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			Proxy: nil,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
	}
}
