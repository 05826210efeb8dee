// Package testutil provides shared test helpers used by the integration
// tests.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"index-cleaner/internal/types"
)

const searchImage = "docker.elastic.co/elasticsearch/elasticsearch-oss:7.10.2"

// StartSearchCluster runs a single-node, unauthenticated search cluster and
// returns settings pointing at it. Signing is disabled.
func StartSearchCluster(ctx context.Context, t *testing.T) types.ClusterSettings {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        searchImage,
		ExposedPorts: []string{"9200/tcp"},
		Env: map[string]string{
			"discovery.type": "single-node",
			"ES_JAVA_OPTS":   "-Xms512m -Xmx512m",
		},
		WaitingFor: wait.ForHTTP("/_cluster/health").
			WithPort("9200/tcp").
			WithStartupTimeout(120 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "9200/tcp")
	require.NoError(t, err)
	portNumber, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	return types.ClusterSettings{
		Host:       host,
		Port:       portNumber,
		Scheme:     "http",
		Region:     types.DefaultRegion,
		Signing:    false,
		TimeoutSec: 30,
	}
}

// CreateIndices creates empty indices with a single shard and no replicas.
func CreateIndices(ctx context.Context, t *testing.T, settings types.ClusterSettings, names ...string) {
	t.Helper()
	body := `{"settings":{"number_of_shards":1,"number_of_replicas":0}}`
	for _, name := range names {
		url := fmt.Sprintf("%s/%s", settings.Endpoint(), name)
		req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, "create index %s", name)
	}
}
