package elasticsearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Auth is the resolved authentication strategy of an endpoint. Exactly one of
// AuthNone, AuthBasic or AuthAWS is produced per endpoint; consumers switch
// over the concrete type, so a request can never carry two strategies.
type Auth interface {
	applyTo(req *http.Request)
}

// AuthNone is the strategy used when no authentication is configured.
type AuthNone struct{}

func (AuthNone) applyTo(*http.Request) {}

// AuthBasic authenticates requests with HTTP Basic credentials.
type AuthBasic struct {
	User     string
	Password string
}

func (a AuthBasic) applyTo(req *http.Request) {
	req.SetBasicAuth(a.User, a.Password)
}

// AuthAWS signs every request with SigV4 using the resolved credentials.
// Header application is deferred to the signing step, which needs the final
// request body.
type AuthAWS struct {
	Credentials aws.CredentialsProvider
	Region      string
}

func (AuthAWS) applyTo(*http.Request) {}

// resolveAuth picks the single authentication strategy for one endpoint,
// merging the configured credentials with any credentials embedded in the
// endpoint URL.
func resolveAuth(ctx context.Context, cfg *Config, endpoint *url.URL) (Auth, error) {
	var urlAuth *AuthBasic
	if ui := endpoint.User; ui != nil {
		password, _ := ui.Password()
		urlAuth = &AuthBasic{User: ui.Username(), Password: password}
	}

	auth := cfg.Auth
	switch {
	case auth == nil || auth.Strategy == "":
		if urlAuth != nil {
			return *urlAuth, nil
		}
		return AuthNone{}, nil

	case auth.Strategy == "basic":
		return chooseOne(AuthBasic{User: auth.User, Password: auth.Password}, urlAuth)

	case auth.Strategy == "aws":
		if auth.User != "" || auth.Password != "" {
			return nil, &AuthConflictError{Reason: `basic credentials are set while "auth.strategy" is "aws"`}
		}
		if urlAuth != nil {
			return nil, &AuthConflictError{Reason: "credentials embedded in the endpoint URL cannot be combined with aws auth"}
		}
		var region string
		if cfg.AWS != nil {
			region = cfg.AWS.Region
		}
		if region == "" {
			return nil, ErrRegionRequired
		}
		creds, err := awsCredentials(ctx, cfg.AWS)
		if err != nil {
			return nil, fmt.Errorf("resolving aws credentials: %w", err)
		}
		return AuthAWS{Credentials: creds, Region: region}, nil

	default:
		return nil, fmt.Errorf("unknown auth strategy %q", auth.Strategy)
	}
}

// chooseOne enforces that exactly one source of basic credentials is
// authoritative. Identical credentials from both sources are accepted;
// differing ones are a configuration error, never a silent override.
func chooseOne(configured AuthBasic, fromURL *AuthBasic) (Auth, error) {
	if fromURL == nil || *fromURL == configured {
		return configured, nil
	}
	return nil, &AuthConflictError{Reason: "both the auth option and the endpoint URL carry basic credentials"}
}

func awsCredentials(ctx context.Context, cfg *AWSConfig) (aws.CredentialsProvider, error) {
	if cfg.AccessKeyID != "" {
		return credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, err
	}
	return awsCfg.Credentials, nil
}
