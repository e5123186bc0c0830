package elasticsearch

import (
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http/httpproxy"
)

// newHTTPClient builds the HTTP client shared by the version probe, the
// health check and bulk delivery of one endpoint. TLS settings and the proxy
// configuration are baked into the transport; the request timeout comes from
// the request settings.
func newHTTPClient(tlsCfg TLSConfig, proxy *ProxyConfig, request RequestConfig) (*http.Client, error) {
	transport := &http.Transport{
		Proxy: proxyFunc(proxy),
	}

	if err := tlsCfg.configureTransport(transport); err != nil {
		return nil, err
	}

	// The same fallback feeds the timeout query parameter of the bulk URL,
	// so the advertised and the enforced timeout always agree.
	timeout := request.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &http.Client{
		Transport: transport,
		Timeout:   time.Duration(timeout) * time.Second,
	}, nil
}

// proxyFunc builds the transport proxy function from the environment proxy
// settings overridden by the explicit proxy options.
func proxyFunc(proxy *ProxyConfig) func(*http.Request) (*url.URL, error) {
	if proxy == nil || !proxy.Enabled {
		return nil
	}

	proxyConfig := httpproxy.FromEnvironment()
	if proxy.HTTP != "" {
		proxyConfig.HTTPProxy = proxy.HTTP
	}
	if proxy.HTTPS != "" {
		proxyConfig.HTTPSProxy = proxy.HTTPS
	}
	if proxy.NoProxy != "" {
		proxyConfig.NoProxy = proxy.NoProxy
	}

	return func(r *http.Request) (*url.URL, error) {
		return proxyConfig.ProxyFunc()(r.URL)
	}
}
