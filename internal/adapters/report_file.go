package adapters

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"index-cleaner/internal/ports"
	"index-cleaner/internal/types"
)

type ReportFileAdapter struct{}

func NewReportFileAdapter() ReportFileAdapter {
	return ReportFileAdapter{}
}

func (a ReportFileAdapter) WriteReport(path string, report types.CleanReport) error {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("report path is empty")
	}
	if report.Candidates == nil {
		report.Candidates = []string{}
	}
	if report.Deletion.Targeted == nil {
		report.Deletion.Targeted = []string{}
	}
	data, err := yaml.Marshal(report)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode clean report").
			WithCause(err)
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create report directory").
			WithCause(err)
	}
	if err := os.WriteFile(trimmed, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write clean report").
			WithCause(err)
	}
	return nil
}

func ReadReport(path string) (types.CleanReport, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return types.CleanReport{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read clean report").
			WithCause(err)
	}
	var report types.CleanReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return types.CleanReport{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse clean report").
			WithCause(err)
	}
	return report, nil
}

var _ ports.ReportWriterPort = ReportFileAdapter{}
