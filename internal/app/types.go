package app

import "index-cleaner/internal/types"

type CleanRequest struct {
	Trigger    types.Trigger
	Settings   types.ClusterSettings
	DryRun     bool
	ReportPath string
}

type CleanResult struct {
	Report types.CleanReport
}
