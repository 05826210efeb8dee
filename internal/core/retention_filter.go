package core

import (
	"regexp"
	"strings"
	"time"

	"index-cleaner/internal/types"
)

const indexDateLayout = "2006.01.02"

var indexDatePattern = regexp.MustCompile(`\d{4}\.\d{2}\.\d{2}`)

// ParseIndexDate extracts the YYYY.MM.DD date embedded in an index name.
// Affixes around the date are allowed; the first match must be a real
// calendar date.
func ParseIndexDate(name string) (time.Time, bool) {
	match := indexDatePattern.FindString(name)
	if match == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(indexDateLayout, match)
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// IndexAgeDays returns the number of whole calendar days between the index
// date and the UTC day of now.
func IndexAgeDays(indexDate time.Time, now time.Time) int {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(today.Sub(indexDate).Hours() / 24)
}

// SelectIndicesForDeletion applies the age filter and then, only when it
// produced something, the prefix filter. Input order is preserved.
func SelectIndicesForDeletion(indices []types.IndexDescriptor, policy types.RetentionPolicy, now time.Time) []string {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	maxAge := policy.MaxAgeDays
	if maxAge < 0 {
		maxAge = 0
	}

	aged := filterByAge(indices, maxAge, now)
	if len(aged) == 0 {
		return []string{}
	}
	return filterByPrefix(aged, policy.NamePrefix)
}

func filterByAge(indices []types.IndexDescriptor, maxAge int, now time.Time) []string {
	seen := map[string]struct{}{}
	var aged []string
	for _, index := range indices {
		if _, ok := seen[index.Name]; ok {
			continue
		}
		indexDate, ok := ParseIndexDate(index.Name)
		if !ok {
			continue
		}
		if IndexAgeDays(indexDate, now) <= maxAge {
			continue
		}
		seen[index.Name] = struct{}{}
		aged = append(aged, index.Name)
	}
	return aged
}

func filterByPrefix(names []string, prefix string) []string {
	selected := make([]string, 0, len(names))
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			selected = append(selected, name)
		}
	}
	return selected
}
