package types

type DeletionMode string

const (
	DeletionModeNone   DeletionMode = "none"
	DeletionModeDryRun DeletionMode = "dry-run"
	DeletionModeDelete DeletionMode = "delete"
)

func ModeFor(dryRun bool) DeletionMode {
	if dryRun {
		return DeletionModeDryRun
	}
	return DeletionModeDelete
}
