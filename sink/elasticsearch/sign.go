package elasticsearch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
)

// The service namespace Elasticsearch-compatible AWS offerings sign under.
const signingService = "es"

// emptyPayloadHash is the SHA-256 of an empty body, precomputed.
var emptyPayloadHash = func() string {
	sum := sha256.Sum256(nil)
	return hex.EncodeToString(sum[:])
}()

// signRequest attaches a SigV4 signature to req. The body bytes must match
// what will actually be sent; the request URL and body are left untouched,
// only headers are added.
func signRequest(ctx context.Context, req *http.Request, body []byte, auth AuthAWS) error {
	payloadHash := emptyPayloadHash
	if len(body) > 0 {
		sum := sha256.Sum256(body)
		payloadHash = hex.EncodeToString(sum[:])
	}

	creds, err := auth.Credentials.Retrieve(ctx)
	if err != nil {
		return err
	}

	signer := v4.NewSigner()
	return signer.SignHTTP(ctx, creds, req, payloadHash, signingService, auth.Region, time.Now().UTC())
}
