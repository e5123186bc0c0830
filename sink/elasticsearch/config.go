package elasticsearch

// API version values accepted in Config.APIVersion.
const (
	APIVersionAuto = "auto"
	APIVersionV6   = "v6"
	APIVersionV7   = "v7"
	APIVersionV8   = "v8"
)

// Config is the configuration of the Elasticsearch sink. It is parsed by the
// config layer and never mutated by the sink.
type Config struct {
	// Endpoint is the deprecated single endpoint option. Use Endpoints instead.
	Endpoint string `koanf:"endpoint"`
	// Endpoints is the list of Elasticsearch base URLs to write to.
	Endpoints []string `koanf:"endpoints"`

	Auth *AuthConfig `koanf:"auth"`
	AWS  *AWSConfig  `koanf:"aws"`

	TLS TLSConfig `koanf:"tls"`

	// Pipeline is the name of the ingest pipeline documents should go through.
	Pipeline string `koanf:"pipeline"`
	// Query holds static query parameters appended to the bulk URL.
	Query map[string]string `koanf:"query"`

	Request RequestConfig `koanf:"request"`

	// APIVersion is one of "auto", "v6", "v7" or "v8". With "auto" the version
	// is probed from the cluster once per resolution pass.
	APIVersion string `koanf:"api_version"`

	// SuppressTypeName drops the legacy _type field from bulk actions.
	//
	// Deprecated: set APIVersion instead; _type is suppressed automatically
	// from version 7 on.
	SuppressTypeName bool `koanf:"suppress_type_name"`

	// DocType is the document type used for API versions below 7.
	DocType string `koanf:"doc_type"`

	// Compression enables gzip compression of bulk request bodies.
	Compression bool `koanf:"compression"`

	Mode    ModeConfig        `koanf:"mode"`
	Metrics MetricToLogConfig `koanf:"metrics"`
}

// AuthConfig selects the authentication strategy of the sink.
type AuthConfig struct {
	// Strategy is either "basic" or "aws".
	Strategy string `koanf:"strategy"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
}

// AWSConfig holds the settings used to resolve AWS credentials when the
// "aws" auth strategy is selected.
type AWSConfig struct {
	Region          string `koanf:"region"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
	SessionToken    string `koanf:"session_token"`
}

// RequestConfig holds the HTTP request settings of the sink.
type RequestConfig struct {
	// Timeout of a single request, in seconds.
	Timeout int `koanf:"timeout"`
	// Headers are added to every outgoing request.
	Headers map[string]string `koanf:"headers"`
	// RetryAttempts is the number of delivery attempts per bulk request.
	RetryAttempts int `koanf:"retry_attempts"`
	// RetryBackoffMS is the wait between delivery attempts, in milliseconds.
	RetryBackoffMS int `koanf:"retry_backoff_ms"`
}

// ProxyConfig is the outbound proxy configuration shared by all sinks.
type ProxyConfig struct {
	// Enabled turns proxying on. The environment proxy settings are used as
	// the base and the explicit fields below override them.
	Enabled bool   `koanf:"enabled"`
	HTTP    string `koanf:"http"`
	HTTPS   string `koanf:"https"`
	NoProxy string `koanf:"no_proxy"`
}
