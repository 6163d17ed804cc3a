package proxy

import (
	"fmt"
	"net/url"
)

// routedURI joins elems onto instance and, when a queue override is
// configured, points the result at the proxy's host and port.
func (c *Client) routedURI(instance *url.URL, elems ...string) *url.URL {
	target := instance.JoinPath(elems...)
	if c.queueOverride() {
		target.Host = c.proxyHost.Host
	}
	return target
}

func (c *Client) routingHeaders(headers map[string]string) map[string]string {
	if headers == nil {
		headers = make(map[string]string)
	}
	if c.queueOverride() {
		headers[headerHost] = c.cfg.QueueName
	}
	return headers
}

func (c *Client) queueOverride() bool {
	return c.cfg.QueueName != ""
}

func parseProxyHost(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid queue proxy host %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid queue proxy host %q: scheme and host are required", raw)
	}
	return u, nil
}
