package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"index-cleaner/internal/core"
	"index-cleaner/internal/ports"
	"index-cleaner/internal/types"
)

// Clean runs one retention invocation: list, select, log, delete or
// simulate. Invalid trigger values fail before the cluster is contacted.
func (s Service) Clean(ctx context.Context, req CleanRequest) (result CleanResult, err error) {
	started := timeNow(s.Clock)
	report := types.CleanReport{
		StartedAt: started,
		Endpoint:  req.Settings.Endpoint(),
	}
	defer func() {
		s.Metrics.ObserveRun(report.Deletion, started, timeNow(s.Clock), err)
	}()

	policy, err := req.Trigger.Policy()
	if err != nil {
		return CleanResult{}, err
	}
	dryRun := req.Trigger.DryRunOr(req.DryRun)
	report.Policy = policy

	cluster, err := s.ClusterFactory(ctx, req.Settings)
	if err != nil {
		return CleanResult{}, err
	}
	indices, err := cluster.ListIndices(ctx)
	if err != nil {
		return CleanResult{}, err
	}
	candidates := core.SelectIndicesForDeletion(indices, policy, started)
	report.Listed = len(indices)
	report.Candidates = candidates
	s.Metrics.ObserveSelection(len(indices), len(candidates))

	log.Info().
		Strs("indices", candidates).
		Int("max_age_days", policy.MaxAgeDays).
		Str("prefix", policy.NamePrefix).
		Bool("dry_run", dryRun).
		Msg("indices selected for deletion")

	deletion, err := s.DeleteIndices(ctx, cluster, candidates, dryRun)
	if err != nil {
		return CleanResult{}, err
	}
	report.Deletion = deletion

	if req.ReportPath != "" && s.ReportWriter != nil {
		if err := s.ReportWriter.WriteReport(req.ReportPath, report); err != nil {
			return CleanResult{}, err
		}
	}
	return CleanResult{Report: report}, nil
}

// DeleteIndices deletes the candidate set as one batch. Dry runs and empty
// sets never reach the cluster.
func (s Service) DeleteIndices(ctx context.Context, cluster ports.IndexClusterPort, candidates []string, dryRun bool) (types.DeletionReport, error) {
	if len(candidates) == 0 {
		log.Info().Msg("no indices eligible for deletion")
		return types.DeletionReport{Targeted: []string{}, Simulated: dryRun, Mode: types.DeletionModeNone}, nil
	}
	targeted := append([]string(nil), candidates...)
	if dryRun {
		log.Info().Strs("indices", targeted).Msg("dry run: indices not deleted")
		return types.DeletionReport{Targeted: targeted, Simulated: true, Mode: types.DeletionModeDryRun}, nil
	}
	if err := cluster.DeleteIndices(ctx, targeted); err != nil {
		log.Error().Err(err).Strs("indices", targeted).Msg(types.DeletionFailedMsg)
		return types.DeletionReport{}, err
	}
	log.Info().Strs("indices", targeted).Msg("indices deleted")
	return types.DeletionReport{Targeted: targeted, Simulated: false, Mode: types.DeletionModeDelete}, nil
}
