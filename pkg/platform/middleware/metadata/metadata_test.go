package metadata

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vcc/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	proxies := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		trusted []netip.Prefix
		want    string
	}{
		{"forwarded header ignored without trusted proxies", map[string]string{"X-Forwarded-For": "10.0.0.7"}, "203.0.113.9:4000", nil, "203.0.113.9"},
		{"forwarded header ignored from untrusted peer", map[string]string{"X-Forwarded-For": "198.51.100.1"}, "203.0.113.9:4000", proxies, "203.0.113.9"},
		{"real ip ignored from untrusted peer", map[string]string{"X-Real-IP": "198.51.100.1"}, "203.0.113.9:4000", proxies, "203.0.113.9"},
		{"nearest untrusted hop wins", map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.7, 10.0.0.1"}, "10.0.0.2:1234", proxies, "203.0.113.7"},
		{"single forwarded address", map[string]string{"X-Forwarded-For": " 198.51.100.4 "}, "10.0.0.2:1234", proxies, "198.51.100.4"},
		{"all hops trusted falls back to first", map[string]string{"X-Forwarded-For": "10.0.0.5, 10.0.0.1"}, "10.0.0.2:1234", proxies, "10.0.0.5"},
		{"real ip header from trusted peer", map[string]string{"X-Real-IP": "198.51.100.9"}, "10.0.0.2:1234", proxies, "198.51.100.9"},
		{"remote addr ipv4", nil, "192.0.2.1:5555", nil, "192.0.2.1"},
		{"remote addr ipv6", nil, "[::1]:5555", nil, "::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(r, tt.trusted))
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	got, err := ParseTrustedProxies([]string{"10.1.2.3/8", "192.0.2.10", "::1"})
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.0.2.10/32"),
		netip.MustParsePrefix("::1/128"),
	}, got)

	_, err = ParseTrustedProxies([]string{"10.0.0.0/33"})
	assert.Error(t, err)
	_, err = ParseTrustedProxies([]string{"proxy.internal"})
	assert.Error(t, err)
}

func TestClientMetadataMiddleware(t *testing.T) {
	var gotIP, gotUA string
	h := ClientMetadata()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIP = requestcontext.ClientIP(r.Context())
		gotUA = requestcontext.UserAgent(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:5555"
	r.Header.Set("User-Agent", "test-agent")
	r.Header.Set("X-Forwarded-For", "198.51.100.1")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "192.0.2.1", gotIP)
	assert.Equal(t, "test-agent", gotUA)
}
