package ports

import "index-cleaner/internal/types"

type ReportWriterPort interface {
	WriteReport(path string, report types.CleanReport) error
}
