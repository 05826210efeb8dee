// Package handler adapts the retention service to a Lambda-style trigger:
// a raw JSON payload with optional AGE_KEY, PREFIX_KEY and DRY_RUN fields.
package handler

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"index-cleaner/internal/app"
	"index-cleaner/internal/types"
)

type Handler struct {
	Service  app.Service
	Settings types.ClusterSettings
	DryRun   bool
}

func New(service app.Service, settings types.ClusterSettings, dryRun bool) Handler {
	return Handler{Service: service, Settings: settings, DryRun: dryRun}
}

// Handle validates the payload before any cluster call and returns the
// deletion report of the run.
func (h Handler) Handle(ctx context.Context, payload json.RawMessage) (types.DeletionReport, error) {
	trigger, err := types.ParseTrigger(payload)
	if err != nil {
		log.Error().Err(err).Msg("rejected trigger payload")
		return types.DeletionReport{}, err
	}
	result, err := h.Service.Clean(ctx, app.CleanRequest{
		Trigger:  trigger,
		Settings: h.Settings,
		DryRun:   h.DryRun,
	})
	if err != nil {
		return types.DeletionReport{}, err
	}
	return result.Report.Deletion, nil
}
