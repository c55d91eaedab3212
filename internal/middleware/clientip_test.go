package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	t.Parallel()

	behindProxy := NewClientIPResolver([]string{"10.0.0.0/8", "192.168.1.4"})

	cases := []struct {
		name     string
		resolver *ClientIPResolver
		remote   string
		xff      string
		realIP   string
		want     string
	}{
		{"untrusted peer ignores forwarded for", behindProxy, "203.0.113.9:5000", "1.1.1.1", "", "203.0.113.9"},
		{"untrusted peer ignores real ip", behindProxy, "203.0.113.9:5000", "", "1.1.1.1", "203.0.113.9"},
		{"nil resolver trusts nobody", nil, "203.0.113.9:5000", "1.1.1.1", "1.1.1.1", "203.0.113.9"},
		{"trusted peer uses forwarded client", behindProxy, "10.1.2.3:443", "198.51.100.7", "", "198.51.100.7"},
		{"spoofed leftmost hop is skipped", behindProxy, "10.1.2.3:443", "1.1.1.1, 198.51.100.7, 192.168.1.4", "", "198.51.100.7"},
		{"all hops trusted returns the leftmost", behindProxy, "10.1.2.3:443", "10.9.9.9, 192.168.1.4", "", "10.9.9.9"},
		{"trusted peer falls back to real ip", behindProxy, "10.1.2.3:443", "", "198.51.100.8", "198.51.100.8"},
		{"garbage header falls back to peer", behindProxy, "10.1.2.3:443", "not-an-ip", "", "10.1.2.3"},
		{"bare remote address", nil, "203.0.113.9", "", "", "203.0.113.9"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/login", nil)
			req.RemoteAddr = tc.remote
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}

			require.Equal(t, tc.want, tc.resolver.ClientIP(req))
		})
	}
}

func TestParseProxy(t *testing.T) {
	t.Parallel()

	prefix, err := ParseProxy(" 10.1.2.3/8 ")
	require.NoError(t, err)
	require.Equal(t, "10.0.0.0/8", prefix.String())

	prefix, err = ParseProxy("192.168.1.4")
	require.NoError(t, err)
	require.Equal(t, "192.168.1.4/32", prefix.String())

	_, err = ParseProxy("proxy.internal")
	require.Error(t, err)
}
