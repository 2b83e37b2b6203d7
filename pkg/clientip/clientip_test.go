package clientip_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/onedesigner/onedesigner/pkg/clientip"
)

func TestGetIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"remote addr", nil, "203.0.113.7:5123", "203.0.113.7"},
		{"cloudflare wins", map[string]string{"CF-Connecting-IP": "198.51.100.1", "X-Forwarded-For": "10.0.0.1"}, "10.0.0.2:1", "198.51.100.1"},
		{"leftmost forwarded", map[string]string{"X-Forwarded-For": "198.51.100.9, 10.0.0.1"}, "10.0.0.2:1", "198.51.100.9"},
		{"invalid header skipped", map[string]string{"X-Forwarded-For": "garbage", "X-Real-IP": "198.51.100.3"}, "10.0.0.2:1", "198.51.100.3"},
		{"unspecified rejected", map[string]string{"X-Real-IP": "0.0.0.0"}, "203.0.113.8:80", "203.0.113.8"},
		{"ipv4 mapped", nil, "[::ffff:192.0.2.1]:80", "192.0.2.1"},
		{"ipv6", map[string]string{"X-Real-IP": "2001:db8::1"}, "", "2001:db8::1"},
		{"raw fallback", nil, "pipe", "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientip.GetIP(r))
		})
	}
}
