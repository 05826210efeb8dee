package adapters

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// CredentialsLoader resolves signing credentials for one invocation.
type CredentialsLoader func(ctx context.Context, region string) (aws.Credentials, error)

// LoadAmbientCredentials uses the default AWS credential chain (env, shared
// config, container or instance role).
func LoadAmbientCredentials(ctx context.Context, region string) (aws.Credentials, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return aws.Credentials{}, errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("failed to load aws configuration").
			WithCause(err)
	}
	creds, err := cfg.Credentials.Retrieve(ctx)
	if err != nil {
		return aws.Credentials{}, errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("failed to retrieve aws credentials").
			WithCause(err)
	}
	return creds, nil
}

// StaticCredentials returns a loader that always yields creds.
func StaticCredentials(creds aws.Credentials) CredentialsLoader {
	return func(context.Context, string) (aws.Credentials, error) {
		return creds, nil
	}
}

type signingTransport struct {
	base        http.RoundTripper
	signer      *v4.Signer
	credentials aws.Credentials
	region      string
	service     string
	clock       func() time.Time
}

func newSigningTransport(base http.RoundTripper, creds aws.Credentials, region string, service string) *signingTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &signingTransport{
		base:        base,
		signer:      v4.NewSigner(),
		credentials: creds,
		region:      region,
		service:     service,
		clock:       time.Now,
	}
}

func (t *signingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	signed := req.Clone(req.Context())
	body, err := readRequestBody(req)
	if err != nil {
		return nil, err
	}
	if body != nil {
		signed.Body = io.NopCloser(bytes.NewReader(body))
		signed.ContentLength = int64(len(body))
	}
	sum := sha256.Sum256(body)
	payloadHash := hex.EncodeToString(sum[:])
	signed.Header.Set("X-Amz-Content-Sha256", payloadHash)
	if err := t.signer.SignHTTP(signed.Context(), t.credentials, signed, payloadHash, t.service, t.region, t.clock().UTC()); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to sign cluster request").
			WithCause(err)
	}
	return t.base.RoundTrip(signed)
}

func readRequestBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read cluster request body").
			WithCause(err)
	}
	return body, nil
}
