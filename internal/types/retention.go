package types

import "time"

const (
	DefaultMaxAgeDays = 18
	DefaultNamePrefix = "cwl-"
)

type IndexDescriptor struct {
	Name      string
	CreatedAt time.Time
}

type RetentionPolicy struct {
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days"`
	NamePrefix string `json:"name_prefix" yaml:"name_prefix"`
}

func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{
		MaxAgeDays: DefaultMaxAgeDays,
		NamePrefix: DefaultNamePrefix,
	}
}

type DeletionReport struct {
	Targeted  []string     `json:"targeted" yaml:"targeted"`
	Simulated bool         `json:"simulated" yaml:"simulated"`
	Mode      DeletionMode `json:"mode" yaml:"mode"`
}

func (r DeletionReport) Empty() bool {
	return len(r.Targeted) == 0
}

// CleanReport is the audit record of one invocation.
type CleanReport struct {
	StartedAt  time.Time       `json:"started_at" yaml:"started_at"`
	Endpoint   string          `json:"endpoint" yaml:"endpoint"`
	Policy     RetentionPolicy `json:"policy" yaml:"policy"`
	Listed     int             `json:"listed" yaml:"listed"`
	Candidates []string        `json:"candidates" yaml:"candidates"`
	Deletion   DeletionReport  `json:"deletion" yaml:"deletion"`
}

// DeletionFailedMsg marks errors raised when the cluster rejects a delete.
const DeletionFailedMsg = "index deletion failed"
