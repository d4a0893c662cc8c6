package redfish

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Ensure context override proxy is used for BMC requests.
func Test_NewHTTPClient_UsesOverrideProxy(t *testing.T) {
	var proxyHits int32

	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&proxyHits, 1)
		assert.Equal(t, "unreachable.example", r.URL.Hostname())
		w.Header().Set(TokenHeader, "abc123")
		w.WriteHeader(http.StatusCreated)
	}))
	defer proxy.Close()

	ctx := WithProxyURL(context.Background(), proxy.URL)
	sess, err := CreateSession(ctx, NewHTTPClient(ctx), "http://unreachable.example", "Administrator", "password")

	assert.NoError(t, err)
	assert.Equal(t, "abc123", sess.Token())
	assert.Equal(t, int32(1), atomic.LoadInt32(&proxyHits))
}

// Ensure override proxy is used even if NO_PROXY would otherwise bypass.
func Test_NewHTTPClient_OverrideBeatsNoProxy(t *testing.T) {
	var proxyHits int32

	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&proxyHits, 1)
		w.Header().Set(TokenHeader, "abc123")
		w.WriteHeader(http.StatusCreated)
	}))
	defer proxy.Close()

	t.Setenv("NO_PROXY", "unreachable.example")

	ctx := WithProxyURL(context.Background(), proxy.URL)
	_, err := CreateSession(ctx, NewHTTPClient(ctx), "http://unreachable.example", "Administrator", "password")

	assert.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&proxyHits))
}

func Test_proxyURLFromContext(t *testing.T) {
	assert.Nil(t, proxyURLFromContext(context.Background()))
	assert.Nil(t, proxyURLFromContext(WithProxyURL(context.Background(), "")))

	u := proxyURLFromContext(WithProxyURL(context.Background(), "http://proxy.example:3128"))
	assert.Equal(t, &url.URL{Scheme: "http", Host: "proxy.example:3128"}, u)
}
