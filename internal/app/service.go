package app

import (
	"time"

	"index-cleaner/internal/adapters"
	"index-cleaner/internal/metrics"
	"index-cleaner/internal/ports"
)

type Service struct {
	ClusterFactory ports.ClusterFactory
	ReportWriter   ports.ReportWriterPort
	Metrics        *metrics.Metrics
	Clock          func() time.Time
}

func NewService() Service {
	return Service{
		ClusterFactory: adapters.NewClusterFactory(adapters.LoadAmbientCredentials, nil),
		ReportWriter:   adapters.NewReportFileAdapter(),
		Clock:          time.Now,
	}
}

func timeNow(clock func() time.Time) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock().UTC()
}
