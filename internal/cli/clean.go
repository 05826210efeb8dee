package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"index-cleaner/internal/app"
	"index-cleaner/internal/settings"
	"index-cleaner/internal/types"
)

type cleanOptions struct {
	MaxAgeDays int
	Prefix     string
	Payload    string
	DryRun     bool
	ReportFile string
}

func newCleanCommand() *cobra.Command {
	opts := cleanOptions{}
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete indices older than the retention age that match the prefix",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClean(cmd.Context(), cmd, opts)
		},
	}
	bindPolicyFlags(cmd, &opts)
	return cmd
}

func bindPolicyFlags(cmd *cobra.Command, opts *cleanOptions) {
	cmd.Flags().IntVar(&opts.MaxAgeDays, "max-age", types.DefaultMaxAgeDays, "Delete indices strictly older than N days")
	cmd.Flags().StringVar(&opts.Prefix, "prefix", types.DefaultNamePrefix, "Only delete indices whose name starts with this prefix")
	cmd.Flags().StringVar(&opts.Payload, "payload", "", `Trigger payload JSON, e.g. {"AGE_KEY": 30, "PREFIX_KEY": "cwl-"}`)
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", true, "Only report deletions without deleting")
	cmd.Flags().StringVar(&opts.ReportFile, "report-file", "", "Write a YAML report of the run to this path")

	_ = viper.BindPFlag("max_age_days", cmd.Flags().Lookup("max-age"))
	_ = viper.BindPFlag("prefix", cmd.Flags().Lookup("prefix"))
	_ = viper.BindPFlag("payload", cmd.Flags().Lookup("payload"))
	_ = viper.BindPFlag("dry_run", cmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("report_file", cmd.Flags().Lookup("report-file"))
}

func runClean(ctx context.Context, cmd *cobra.Command, opts cleanOptions) error {
	request, err := buildCleanRequest(ctx, cmd, opts)
	if err != nil {
		return err
	}
	service := newAppService()
	result, err := service.Clean(ctx, request)
	if err != nil {
		return err
	}
	deletion := result.Report.Deletion
	switch deletion.Mode {
	case types.DeletionModeDryRun:
		fmt.Printf("dry-run: would delete %d indices: %s\n", len(deletion.Targeted), strings.Join(deletion.Targeted, ", "))
	case types.DeletionModeDelete:
		fmt.Printf("deleted indices: %d\n", len(deletion.Targeted))
	default:
		fmt.Println("no indices eligible for deletion")
	}
	return nil
}

func buildCleanRequest(ctx context.Context, cmd *cobra.Command, opts cleanOptions) (app.CleanRequest, error) {
	trigger, err := types.ParseTrigger([]byte(resolveString(cmd, opts.Payload, "payload", "payload")))
	if err != nil {
		return app.CleanRequest{}, err
	}
	if keySet(cmd, "max_age_days", "max-age") {
		age, err := resolveAge(cmd, opts.MaxAgeDays)
		if err != nil {
			return app.CleanRequest{}, err
		}
		trigger.AgeDays = &age
	}
	if keySet(cmd, "prefix", "prefix") {
		prefix := resolveString(cmd, opts.Prefix, "prefix", "prefix")
		trigger.Prefix = &prefix
	}
	if _, err := trigger.Policy(); err != nil {
		return app.CleanRequest{}, err
	}
	clusterSettings, err := settings.Load(ctx, viper.GetViper())
	if err != nil {
		return app.CleanRequest{}, err
	}
	return app.CleanRequest{
		Trigger:    trigger,
		Settings:   clusterSettings,
		DryRun:     resolveBool(cmd, opts.DryRun, "dry_run", "dry-run"),
		ReportPath: resolveString(cmd, opts.ReportFile, "report_file", "report-file"),
	}, nil
}

func resolveAge(cmd *cobra.Command, value int) (types.AgeDays, error) {
	if flagChanged(cmd, "max-age") {
		return types.AgeDays(value), nil
	}
	raw := strings.TrimSpace(viper.GetString("max_age_days"))
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("max_age_days must be a whole number of days").
			WithCause(err)
	}
	return types.AgeDays(parsed), nil
}
