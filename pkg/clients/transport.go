package clients

import (
	"net"
	"net/http"
	"time"
)

// DefaultTransport returns an HTTP transport with connection limits, so a
// slow or dead upstream (a feed host, an LLM proxy) cannot pile up
// connections across a pipeline run.
func DefaultTransport() *http.Transport {
	return &http.Transport{
		MaxConnsPerHost: 20,

		MaxIdleConnsPerHost: 5,
		MaxIdleConns:        50,
		IdleConnTimeout:     90 * time.Second,

		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,

		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
