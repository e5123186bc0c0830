package elasticsearch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewHTTPClientTimeout(t *testing.T) {
	client, err := newHTTPClient(TLSConfig{}, nil, RequestConfig{Timeout: 5})
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, client.Timeout)
}

func TestNewHTTPClientDefaultTimeout(t *testing.T) {
	client, err := newHTTPClient(TLSConfig{}, nil, RequestConfig{})
	require.NoError(t, err)
	require.Equal(t, defaultRequestTimeout*time.Second, client.Timeout)
}

func TestProxyFuncDisabled(t *testing.T) {
	require.Nil(t, proxyFunc(nil))
	require.Nil(t, proxyFunc(&ProxyConfig{Enabled: false}))
}
