package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	elasticsearch "github.com/elastic/go-elasticsearch/v7"
	"github.com/rs/zerolog/log"

	"index-cleaner/internal/ports"
	"index-cleaner/internal/shared"
	"index-cleaner/internal/types"
)

type ClusterElasticsearchAdapter struct {
	Client   *elasticsearch.Client
	Endpoint string
	Timeout  time.Duration
}

type catIndexEntry struct {
	Index        string `json:"index"`
	CreationDate string `json:"creation.date"`
}

func NewClusterElasticsearchAdapter(settings types.ClusterSettings, transport http.RoundTripper) (ClusterElasticsearchAdapter, error) {
	if strings.TrimSpace(settings.Host) == "" {
		return ClusterElasticsearchAdapter{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("cluster host is empty")
	}
	endpoint := settings.Endpoint()
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{endpoint},
		Transport:    transport,
		DisableRetry: true,
	})
	if err != nil {
		return ClusterElasticsearchAdapter{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create cluster client").
			WithCause(err)
	}
	return ClusterElasticsearchAdapter{
		Client:   client,
		Endpoint: endpoint,
		Timeout:  normalizeClusterTimeout(settings.TimeoutSec),
	}, nil
}

// NewClusterFactory returns a factory that resolves credentials once per call
// and builds a client bound to them. Signing is skipped when disabled in the
// settings.
func NewClusterFactory(loader CredentialsLoader, base http.RoundTripper) ports.ClusterFactory {
	if loader == nil {
		loader = LoadAmbientCredentials
	}
	return func(ctx context.Context, settings types.ClusterSettings) (ports.IndexClusterPort, error) {
		transport := base
		if transport == nil {
			transport = http.DefaultTransport
		}
		if settings.Signing {
			creds, err := loader(ctx, settings.Region)
			if err != nil {
				return nil, err
			}
			transport = newSigningTransport(transport, creds, settings.Region, types.DefaultSigningName)
		}
		adapter, err := NewClusterElasticsearchAdapter(settings, transport)
		if err != nil {
			return nil, err
		}
		return adapter, nil
	}
}

func (a ClusterElasticsearchAdapter) ListIndices(ctx context.Context) ([]types.IndexDescriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()
	res, err := a.Client.Cat.Indices(
		a.Client.Cat.Indices.WithContext(ctx),
		a.Client.Cat.Indices.WithFormat("json"),
		a.Client.Cat.Indices.WithH("index", "creation.date"),
	)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("list indices failed").
			WithCause(err)
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	if res.IsError() {
		return nil, errbuilder.New().
			WithCode(codeForStatus(res.StatusCode)).
			WithMsg("list indices failed").
			WithCause(shared.HTTPStatusErrorWithBody(res.StatusCode, a.Endpoint+"/_cat/indices", strings.TrimSpace(string(body))))
	}
	return decodeCatIndices(body)
}

func (a ClusterElasticsearchAdapter) DeleteIndices(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()
	res, err := a.Client.Indices.Delete(names, a.Client.Indices.Delete.WithContext(ctx))
	if err != nil {
		return deletionFailed(errbuilder.CodeInternal, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return deletionFailed(codeForStatus(res.StatusCode),
			shared.HTTPStatusErrorWithBody(res.StatusCode, a.Endpoint+"/"+strings.Join(names, ","), strings.TrimSpace(string(body))))
	}
	log.Debug().Int("status", res.StatusCode).Strs("indices", names).Msg("delete request acknowledged")
	return nil
}

func deletionFailed(code errbuilder.ErrCode, cause error) error {
	return errbuilder.New().
		WithCode(code).
		WithMsg(types.DeletionFailedMsg).
		WithCause(cause)
}

func codeForStatus(status int) errbuilder.ErrCode {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errbuilder.CodePermissionDenied
	case http.StatusNotFound:
		return errbuilder.CodeNotFound
	default:
		return errbuilder.CodeInternal
	}
}

func decodeCatIndices(body []byte) ([]types.IndexDescriptor, error) {
	var entries []catIndexEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to parse index listing").
			WithCause(err)
	}
	indices := make([]types.IndexDescriptor, 0, len(entries))
	for _, entry := range entries {
		name := strings.TrimSpace(entry.Index)
		if name == "" {
			continue
		}
		indices = append(indices, types.IndexDescriptor{
			Name:      name,
			CreatedAt: parseCreationTime(entry.CreationDate),
		})
	}
	return indices, nil
}

func normalizeClusterTimeout(value int) time.Duration {
	timeout := time.Duration(value) * time.Second
	if timeout <= 0 {
		return time.Duration(types.DefaultTimeoutSec) * time.Second
	}
	return timeout
}

func (a ClusterElasticsearchAdapter) String() string {
	return fmt.Sprintf("elasticsearch(%s)", a.Endpoint)
}

var _ ports.IndexClusterPort = ClusterElasticsearchAdapter{}
