package ports

import (
	"context"

	"index-cleaner/internal/types"
)

type IndexClusterPort interface {
	ListIndices(ctx context.Context) ([]types.IndexDescriptor, error)
	DeleteIndices(ctx context.Context, names []string) error
}

// ClusterFactory builds a cluster client for a single invocation.
type ClusterFactory func(ctx context.Context, settings types.ClusterSettings) (IndexClusterPort, error)
