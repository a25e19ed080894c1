package channel

import "testing"

func TestSocketURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		token    string
		expected string
	}{
		{"https default port dropped", "https://blog.example.com:443", "t0k", "wss://blog.example.com/socket/websocket?token=t0k"},
		{"https no port", "https://blog.example.com", "t0k", "wss://blog.example.com/socket/websocket?token=t0k"},
		{"http default port dropped", "http://blog.example.com:80", "", "ws://blog.example.com/socket/websocket"},
		{"non-default port kept", "http://localhost:4000", "abc", "ws://localhost:4000/socket/websocket?token=abc"},
		{"path replaced", "https://blog.example.com/api/v2", "", "wss://blog.example.com/socket/websocket"},
		{"empty token omits query", "https://blog.example.com", "", "wss://blog.example.com/socket/websocket"},
		{"ws scheme passthrough", "ws://localhost:4000", "", "ws://localhost:4000/socket/websocket"},
		{"token escaped", "http://localhost:4000", "a b&c", "ws://localhost:4000/socket/websocket?token=a+b%26c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SocketURL(tt.base, tt.token)
			if err != nil {
				t.Fatalf("SocketURL(%q) returned error: %v", tt.base, err)
			}
			if got != tt.expected {
				t.Errorf("SocketURL(%q, %q) = %q, want %q", tt.base, tt.token, got, tt.expected)
			}
		})
	}
}

func TestSocketURLErrors(t *testing.T) {
	tests := []struct {
		name string
		base string
	}{
		{"unsupported scheme", "ftp://blog.example.com"},
		{"no host", "https://"},
		{"garbage", "://nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SocketURL(tt.base, ""); err == nil {
				t.Errorf("SocketURL(%q) expected error, got none", tt.base)
			}
		})
	}
}
