package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

const (
	TriggerAgeKey    = "AGE_KEY"
	TriggerPrefixKey = "PREFIX_KEY"
	TriggerDryRunKey = "DRY_RUN"
)

// AgeDays accepts either a JSON number or a numeric JSON string.
type AgeDays int

func (a *AgeDays) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if strings.HasPrefix(raw, `"`) {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return invalidAge(err)
		}
		raw = strings.TrimSpace(text)
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return invalidAge(err)
	}
	*a = AgeDays(value)
	return nil
}

func invalidAge(cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(TriggerAgeKey + " must be a whole number of days").
		WithCause(cause)
}

// Trigger is the optional invocation payload. Nil fields fall back to the
// documented defaults.
type Trigger struct {
	AgeDays *AgeDays `json:"AGE_KEY,omitempty"`
	Prefix  *string  `json:"PREFIX_KEY,omitempty"`
	DryRun  *bool    `json:"DRY_RUN,omitempty"`
}

func ParseTrigger(payload []byte) (Trigger, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Trigger{}, nil
	}
	var trigger Trigger
	if err := json.Unmarshal(trimmed, &trigger); err != nil {
		return Trigger{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid trigger payload").
			WithCause(err)
	}
	return trigger, nil
}

func (t Trigger) Policy() (RetentionPolicy, error) {
	policy := DefaultRetentionPolicy()
	if t.AgeDays != nil {
		if *t.AgeDays < 0 {
			return RetentionPolicy{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(TriggerAgeKey + " must not be negative")
		}
		policy.MaxAgeDays = int(*t.AgeDays)
	}
	if t.Prefix != nil {
		policy.NamePrefix = *t.Prefix
	}
	return policy, nil
}

func (t Trigger) DryRunOr(fallback bool) bool {
	if t.DryRun == nil {
		return fallback
	}
	return *t.DryRun
}
