package channel

import (
	"fmt"
	"net/url"
	"strings"
)

// SocketPath is the well-known websocket mount point on the subscriber
// service.
const SocketPath = "/socket/websocket"

// SocketURL derives the websocket URL from a base HTTP(S) endpoint:
// https becomes wss and http becomes ws, default ports are dropped, the
// path is replaced with SocketPath, and the auth token rides along as a
// query parameter (omitted when empty).
func SocketURL(base, token string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("invalid endpoint URL %q: %w", base, err)
	}

	var scheme, defaultPort string
	switch u.Scheme {
	case "https", "wss":
		scheme, defaultPort = "wss", "443"
	case "http", "ws":
		scheme, defaultPort = "ws", "80"
	default:
		return "", fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}

	host := u.Host
	if u.Port() == defaultPort {
		host = u.Hostname()
	}
	if host == "" {
		return "", fmt.Errorf("endpoint URL %q has no host", base)
	}

	derived := url.URL{
		Scheme: scheme,
		Host:   host,
		Path:   SocketPath,
	}
	if token != "" {
		q := url.Values{}
		q.Set("token", token)
		derived.RawQuery = q.Encode()
	}

	return derived.String(), nil
}
