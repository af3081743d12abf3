// Package network builds the outbound HTTP client used for provider calls.
package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

var ErrUnsupportedProxy = errors.New("unsupported proxy scheme")

// NewHTTPClient returns a client for provider SDKs. An empty proxyURL uses
// the environment's proxy settings; socks5:// and http(s):// URLs are
// supported explicitly. timeout bounds a whole request; zero disables it.
func NewHTTPClient(proxyURL string, timeout time.Duration) (*http.Client, error) {
	transport, err := NewTransport(proxyURL)
	if err != nil {
		return nil, err
	}
	return &http.Client{Transport: transport, Timeout: timeout}, nil
}

// NewTransport creates an http.Transport with proper proxy support.
// For SOCKS5 proxies, it uses golang.org/x/net/proxy for correct handling.
// For HTTP/HTTPS proxies, it uses the standard http.ProxyURL.
func NewTransport(proxyURL string) (*http.Transport, error) {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if strings.TrimSpace(proxyURL) == "" {
		return base, nil
	}

	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("parse proxy url: missing host in %q", proxyURL)
	}

	switch parsed.Scheme {
	case "socks5", "socks5h":
		var auth *proxy.Auth
		if parsed.User != nil {
			auth = &proxy.Auth{User: parsed.User.Username()}
			if password, ok := parsed.User.Password(); ok {
				auth.Password = password
			}
		}

		dialer, err := proxy.SOCKS5("tcp", parsed.Host, auth, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("socks5 dialer: %w", err)
		}

		base.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			base.DialContext = cd.DialContext
		} else {
			base.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
		return base, nil
	case "http", "https":
		base.Proxy = http.ProxyURL(parsed)
		return base, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProxy, parsed.Scheme)
	}
}
