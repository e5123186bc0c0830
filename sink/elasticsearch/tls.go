package elasticsearch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
)

// TLSConfig holds the declarative TLS options of the sink.
type TLSConfig struct {
	// CAFile is the path of a PEM bundle used to verify the server.
	CAFile string `koanf:"ca_file"`
	// CAPEM is an inline PEM bundle used to verify the server. It takes
	// precedence over CAFile.
	CAPEM string `koanf:"ca_pem"`
	// CertFile and KeyFile hold the client certificate pair, if any.
	CertFile string `koanf:"cert_file"`
	KeyFile  string `koanf:"key_file"`
	// InsecureSkipVerify disables server certificate verification.
	InsecureSkipVerify bool `koanf:"insecure_skip_verify"`
	// CertificateFingerprint is the hex SHA-256 digest of the server
	// certificate. When set, verification is done by digest comparison
	// instead of CA chains, and CAFile is ignored.
	CertificateFingerprint string `koanf:"certificate_fingerprint"`
}

// configureTransport applies the TLS settings to the transport in place.
//
// When CertificateFingerprint is set, a custom DialTLSContext compares the
// SHA-256 digests of the peer certificates against the fingerprint and
// bypasses standard CA verification entirely.
func (c TLSConfig) configureTransport(transport *http.Transport) error {
	if transport == nil {
		return errors.New("transport cannot be nil")
	}

	if c.CertificateFingerprint != "" {
		fingerprint, err := hex.DecodeString(c.CertificateFingerprint)
		if err != nil {
			return fmt.Errorf("invalid certificate fingerprint %q: %w", c.CertificateFingerprint, err)
		}

		transport.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			d := tls.Dialer{Config: &tls.Config{InsecureSkipVerify: true}}
			conn, err := d.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}

			tlsConn := conn.(*tls.Conn)
			for _, cert := range tlsConn.ConnectionState().PeerCertificates {
				digest := sha256.Sum256(cert.Raw)
				if bytes.Equal(digest[:], fingerprint) {
					return tlsConn, nil
				}
			}
			_ = tlsConn.Close()
			return nil, fmt.Errorf("fingerprint mismatch, provided: %s", c.CertificateFingerprint)
		}
		return nil
	}

	tlsClientConfig := &tls.Config{
		InsecureSkipVerify: c.InsecureSkipVerify, //nolint:gosec // operator opt-in
	}

	caCert := []byte(c.CAPEM)
	if len(caCert) == 0 && c.CAFile != "" {
		b, err := os.ReadFile(c.CAFile)
		if err != nil {
			return fmt.Errorf("reading CA file: %w", err)
		}
		caCert = b
	}
	if len(caCert) > 0 {
		tlsClientConfig.RootCAs = x509.NewCertPool()
		if ok := tlsClientConfig.RootCAs.AppendCertsFromPEM(caCert); !ok {
			return errors.New("unable to add CA certificate")
		}
	}

	if c.CertFile != "" || c.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return fmt.Errorf("loading client certificate pair: %w", err)
		}
		tlsClientConfig.Certificates = []tls.Certificate{cert}
	}

	transport.TLSClientConfig = tlsClientConfig
	return nil
}
