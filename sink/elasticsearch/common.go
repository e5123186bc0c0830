// Package elasticsearch resolves the sink configuration into immutable
// per-endpoint client descriptors and delivers bulk requests through them.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/snapp-incubator/logship/internal/logging"
)

// Administrative paths used during resolution.
const (
	versionPath = "/_cluster/state/version"
	healthPath  = "/_cluster/health"
)

// defaultRequestTimeout is used when the request timeout option is unset.
const defaultRequestTimeout = 30

// Common is the fully resolved, immutable client descriptor of one endpoint.
// It is constructed once at sink start-up and held for the sink's lifetime.
type Common struct {
	// BaseURL is the normalized endpoint URL, trailing slashes stripped.
	BaseURL string
	// BulkURL is BaseURL + the bulk path + the merged query string.
	BulkURL string

	Auth    Auth
	Mode    Mode
	Encoder Encoder
	TLS     TLSConfig
	Request RequestConfig

	// QueryParams is the merged query parameter mapping of BulkURL.
	QueryParams map[string]string

	MetricToLog *MetricToLog

	// Version is the resolved major API version.
	Version int

	client *http.Client
}

// Session carries the API version shared across the endpoint resolutions of
// one ParseMany pass: the probe runs at most once per pass and every
// descriptor of the pass observes the same version.
type Session struct {
	version *int
}

func NewSession() *Session { return &Session{} }

// ParseConfig resolves a single endpoint of the sink configuration into a
// descriptor. Repeated calls with the same session reuse the first probed
// version.
func ParseConfig(ctx context.Context, cfg *Config, endpoint string, proxy *ProxyConfig, sess *Session) (*Common, error) {
	// Check the endpoint before any network activity, to fail fast with a
	// precise diagnostic.
	if err := validateEndpoint(endpoint); err != nil {
		return nil, err
	}

	endpointURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, &InvalidHostError{Host: endpoint, Err: err}
	}

	auth, err := resolveAuth(ctx, cfg, endpointURL)
	if err != nil {
		return nil, fmt.Errorf("endpoint %q: %w", endpoint, err)
	}

	endpointURL.User = nil
	baseURL := strings.TrimRight(endpointURL.String(), "/")

	client, err := newHTTPClient(cfg.TLS, proxy, cfg.Request)
	if err != nil {
		return nil, fmt.Errorf("endpoint %q: %w", endpoint, err)
	}

	timeout := cfg.Request.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	queryParams := make(map[string]string, len(cfg.Query)+2)
	for param, value := range cfg.Query {
		queryParams[param] = value
	}
	queryParams["timeout"] = fmt.Sprintf("%ds", timeout)
	if cfg.Pipeline != "" {
		queryParams["pipeline"] = cfg.Pipeline
	}

	query := url.Values{}
	for param, value := range queryParams {
		query.Set(param, value)
	}
	bulkURL := fmt.Sprintf("%s/_bulk?%s", baseURL, query.Encode())

	version, err := sess.resolveVersion(ctx, cfg, baseURL, auth, client)
	if err != nil {
		return nil, err
	}

	mode, err := resolveMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	metricToLog, err := newMetricToLog(cfg.Metrics)
	if err != nil {
		return nil, err
	}

	suppressTypeName := version >= 7
	if cfg.SuppressTypeName {
		logging.L.Warn(`deprecation: option "suppress_type_name" is set, use the "api_version" option instead`)
		suppressTypeName = true
	}

	return &Common{
		BaseURL:     baseURL,
		BulkURL:     bulkURL,
		Auth:        auth,
		Mode:        mode,
		Encoder:     newEncoder(cfg, mode, suppressTypeName),
		TLS:         cfg.TLS,
		Request:     cfg.Request,
		QueryParams: queryParams,
		MetricToLog: metricToLog,
		Version:     version,
		client:      client,
	}, nil
}

// ParseMany resolves every configured endpoint sequentially, sharing one
// session so all descriptors agree on the API version. The returned slice is
// never empty on success.
func ParseMany(ctx context.Context, cfg *Config, proxy *ProxyConfig) ([]*Common, error) {
	sess := NewSession()

	if cfg.Endpoint != "" {
		logging.L.Warn(`deprecation: option "endpoint" is set, use the "endpoints" option instead`)
		if len(cfg.Endpoints) != 0 {
			return nil, ErrEndpointsExclusive
		}
		common, err := ParseConfig(ctx, cfg, cfg.Endpoint, proxy, sess)
		if err != nil {
			return nil, err
		}
		return []*Common{common}, nil
	}

	if len(cfg.Endpoints) == 0 {
		return nil, ErrEndpointRequired
	}

	commons := make([]*Common, 0, len(cfg.Endpoints))
	for _, endpoint := range cfg.Endpoints {
		common, err := ParseConfig(ctx, cfg, endpoint, proxy, sess)
		if err != nil {
			return nil, err
		}
		commons = append(commons, common)
	}
	return commons, nil
}

// Healthcheck issues a GET against the cluster health path with the
// descriptor's auth and reports success only for 200 OK. It never retries;
// retry policy belongs to the caller.
func (c *Common) Healthcheck(ctx context.Context) error {
	res, err := get(ctx, c.client, c.BaseURL, healthPath, c.Auth, c.Request)
	if err != nil {
		return fmt.Errorf("health check of %s: %w", c.BaseURL, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return &UnexpectedStatusError{Status: res.StatusCode}
	}
	return nil
}

// SendBulk delivers one encoded bulk body to the endpoint. The body must be
// the output of the descriptor's Encoder.
func (c *Common) SendBulk(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BulkURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/x-ndjson")
	if encoding := c.Encoder.ContentEncoding(); encoding != "" {
		req.Header.Set("Content-Encoding", encoding)
	}
	for header, value := range c.Request.Headers {
		req.Header.Set(header, value)
	}

	c.Auth.applyTo(req)
	if a, ok := c.Auth.(AuthAWS); ok {
		if err := signRequest(ctx, req, body, a); err != nil {
			return nil, err
		}
	}

	return c.client.Do(req)
}

// validateEndpoint appends a harmless test path and parses the candidate as
// a URL, so a malformed endpoint is reported before any request is made.
func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint + "/_test")
	if err != nil {
		return &InvalidHostError{Host: endpoint, Err: err}
	}
	if u.Hostname() == "" {
		return &MissingHostnameError{Host: endpoint}
	}
	return nil
}

// resolveVersion returns the API version of the pass, probing the cluster
// only when the configuration asks for auto detection and no earlier
// endpoint of the pass probed already.
func (s *Session) resolveVersion(ctx context.Context, cfg *Config, baseURL string, auth Auth, client *http.Client) (int, error) {
	if s.version != nil {
		return *s.version, nil
	}

	var version int
	switch cfg.APIVersion {
	case APIVersionV6:
		version = 6
	case APIVersionV7:
		version = 7
	case APIVersionV8:
		version = 8
	case "", APIVersionAuto:
		probed, err := getVersion(ctx, baseURL, auth, cfg.Request, client)
		if err != nil {
			// The probe is diagnostic only: the version merely shapes bulk
			// actions, so an unreachable admin endpoint must not take the
			// whole sink down. The suppress_type_name option is only valid
			// up to version 6; otherwise assume the latest known version.
			version = 8
			if cfg.SuppressTypeName {
				version = 6
			}
			logging.L.Warn("failed to determine the Elasticsearch API version; fix the reported error or set the api_version option explicitly",
				zap.String("endpoint", baseURL),
				zap.Int("assumed_version", version),
				zap.Error(err),
			)
		} else {
			version = probed
		}
	default:
		return 0, &InvalidAPIVersionError{Value: cfg.APIVersion}
	}

	s.version = &version
	return version, nil
}

// getVersion probes the cluster state for the major API version.
func getVersion(ctx context.Context, baseURL string, auth Auth, request RequestConfig, client *http.Client) (int, error) {
	res, err := get(ctx, client, baseURL, versionPath, auth, request)
	if err != nil {
		return 0, fmt.Errorf("failed to get Elasticsearch API version: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return 0, err
	}

	if res.StatusCode > 299 {
		return 0, fmt.Errorf("server error: %s: %s", res.Status, body)
	}

	var state struct {
		Version *int `json:"version"`
	}
	if err := json.Unmarshal(body, &state); err != nil {
		return 0, fmt.Errorf("decoding the %s response: %w", versionPath, err)
	}
	if state.Version == nil {
		return 0, fmt.Errorf("unexpected response from %s, missing version; consider setting the api_version option", versionPath)
	}
	return *state.Version, nil
}

// get issues a single authenticated GET against the endpoint base URL plus
// path. Both the version probe and the health check go through here.
func get(ctx context.Context, client *http.Client, baseURL, path string, auth Auth, request RequestConfig) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	for header, value := range request.Headers {
		req.Header.Set(header, value)
	}

	auth.applyTo(req)
	if a, ok := auth.(AuthAWS); ok {
		if err := signRequest(ctx, req, nil, a); err != nil {
			return nil, err
		}
	}

	return client.Do(req)
}
