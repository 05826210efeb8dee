package core

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"index-cleaner/internal/types"
)

func descriptors(names ...string) []types.IndexDescriptor {
	items := make([]types.IndexDescriptor, 0, len(names))
	for _, name := range names {
		items = append(items, types.IndexDescriptor{Name: name})
	}
	return items
}

func TestSelectIndicesForDeletionMixedIndices(t *testing.T) {
	indices := descriptors("cwl-2020.01.01", "cwl-2020.06.01", "app-2020.01.01", "cwl-bad-name")
	policy := types.RetentionPolicy{MaxAgeDays: 18, NamePrefix: "cwl-"}
	now := time.Date(2020, 6, 15, 12, 0, 0, 0, time.UTC)

	got := SelectIndicesForDeletion(indices, policy, now)
	if diff := cmp.Diff([]string{"cwl-2020.01.01"}, got); diff != "" {
		t.Fatalf("unexpected candidates (-want +got):\n%s", diff)
	}
}

func TestSelectIndicesForDeletionMonthOld(t *testing.T) {
	indices := descriptors("cwl-2020.01.01", "cwl-2020.06.01", "app-2020.01.01", "cwl-bad-name")
	policy := types.RetentionPolicy{MaxAgeDays: 18, NamePrefix: "cwl-"}
	now := time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC)

	got := SelectIndicesForDeletion(indices, policy, now)
	if diff := cmp.Diff([]string{"cwl-2020.01.01", "cwl-2020.06.01"}, got); diff != "" {
		t.Fatalf("unexpected candidates (-want +got):\n%s", diff)
	}
}

func TestSelectIndicesForDeletionThresholdIsStrict(t *testing.T) {
	indices := descriptors("cwl-2020.01.01")
	policy := types.RetentionPolicy{MaxAgeDays: 18, NamePrefix: "cwl-"}

	atThreshold := []time.Time{
		time.Date(2020, 1, 19, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 19, 23, 59, 59, 0, time.UTC),
	}
	for _, now := range atThreshold {
		assert.Empty(t, SelectIndicesForDeletion(indices, policy, now), "now=%s", now)
	}

	pastThreshold := time.Date(2020, 1, 20, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"cwl-2020.01.01"}, SelectIndicesForDeletion(indices, policy, pastThreshold))
}

func TestSelectIndicesForDeletionZeroAge(t *testing.T) {
	indices := descriptors("cwl-2020.03.09", "cwl-2020.03.10")
	policy := types.RetentionPolicy{MaxAgeDays: 0, NamePrefix: "cwl-"}
	now := time.Date(2020, 3, 10, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, []string{"cwl-2020.03.09"}, SelectIndicesForDeletion(indices, policy, now))
}

func TestSelectIndicesForDeletionExcludesMalformedNames(t *testing.T) {
	indices := descriptors(
		"cwl-bad-name",
		"cwl-2020-01-01",
		"cwl-20.01.01",
		"cwl-2020.13.01",
		"cwl-2020.02.30",
		"cwl-2020.1.1",
		"",
	)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, prefix := range []string{"", "cwl-", "cwl-2020"} {
		policy := types.RetentionPolicy{MaxAgeDays: 1, NamePrefix: prefix}
		assert.Empty(t, SelectIndicesForDeletion(indices, policy, now), "prefix=%q", prefix)
	}
}

func TestSelectIndicesForDeletionAllowsAffixes(t *testing.T) {
	indices := descriptors("cwl-2020.01.01-000001", "logs-cwl-2020.01.01", "2020.01.01")
	now := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)

	got := SelectIndicesForDeletion(indices, types.RetentionPolicy{MaxAgeDays: 18, NamePrefix: "cwl-"}, now)
	assert.Equal(t, []string{"cwl-2020.01.01-000001"}, got)

	got = SelectIndicesForDeletion(indices, types.RetentionPolicy{MaxAgeDays: 18}, now)
	assert.Equal(t, []string{"cwl-2020.01.01-000001", "logs-cwl-2020.01.01", "2020.01.01"}, got)
}

func TestSelectIndicesForDeletionPrefixIsCaseSensitive(t *testing.T) {
	indices := descriptors("CWL-2020.01.01", "cwl-2020.01.01", "Cwl-2020.01.01")
	now := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)

	got := SelectIndicesForDeletion(indices, types.RetentionPolicy{MaxAgeDays: 18, NamePrefix: "cwl-"}, now)
	assert.Equal(t, []string{"cwl-2020.01.01"}, got)
}

func TestSelectIndicesForDeletionEmptyAgeSetSkipsPrefix(t *testing.T) {
	indices := descriptors("cwl-2020.05.30", "app-2020.05.31", "unrelated")
	now := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)

	for _, prefix := range []string{"", "cwl-", "app-", "zzz"} {
		got := SelectIndicesForDeletion(indices, types.RetentionPolicy{MaxAgeDays: 18, NamePrefix: prefix}, now)
		require.NotNil(t, got)
		assert.Empty(t, got, "prefix=%q", prefix)
	}
}

func TestSelectIndicesForDeletionEmptyInput(t *testing.T) {
	got := SelectIndicesForDeletion(nil, types.DefaultRetentionPolicy(), time.Now())
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSelectIndicesForDeletionDeduplicates(t *testing.T) {
	indices := descriptors("cwl-2020.01.02", "cwl-2020.01.01", "cwl-2020.01.02")
	now := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)

	got := SelectIndicesForDeletion(indices, types.DefaultRetentionPolicy(), now)
	assert.Equal(t, []string{"cwl-2020.01.02", "cwl-2020.01.01"}, got)
}

func TestSelectIndicesForDeletionOrderedSubsetAndIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	prefixes := []string{"cwl-", "app-", "", "CWL-"}
	now := time.Date(2021, 3, 15, 6, 0, 0, 0, time.UTC)

	for round := 0; round < 50; round++ {
		var names []string
		for i := 0; i < 30; i++ {
			prefix := prefixes[rng.Intn(len(prefixes))]
			day := now.AddDate(0, 0, -rng.Intn(60))
			if rng.Intn(10) == 0 {
				names = append(names, fmt.Sprintf("%sbroken-%d", prefix, i))
				continue
			}
			names = append(names, fmt.Sprintf("%s%s", prefix, day.Format("2006.01.02")))
		}
		policy := types.RetentionPolicy{MaxAgeDays: rng.Intn(40), NamePrefix: prefixes[rng.Intn(len(prefixes))]}
		indices := descriptors(names...)

		first := SelectIndicesForDeletion(indices, policy, now)
		second := SelectIndicesForDeletion(indices, policy, now)
		require.Equal(t, first, second)
		requireOrderedSubset(t, names, first)
	}
}

func requireOrderedSubset(t *testing.T, input []string, subset []string) {
	t.Helper()
	seen := map[string]struct{}{}
	pos := 0
	for _, name := range subset {
		_, dup := seen[name]
		require.False(t, dup, "duplicate candidate %s", name)
		seen[name] = struct{}{}
		for pos < len(input) && input[pos] != name {
			pos++
		}
		require.Less(t, pos, len(input), "candidate %s out of order or not in input", name)
		pos++
	}
}

func TestParseIndexDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		ok       bool
	}{
		{name: "prefixed", input: "cwl-2020.06.01", expected: time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "suffixed", input: "2019.12.31-rollover", expected: time.Date(2019, 12, 31, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "leap day", input: "cwl-2020.02.29", expected: time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC), ok: true},
		{name: "not a leap year", input: "cwl-2021.02.29"},
		{name: "dashes", input: "cwl-2020-06-01"},
		{name: "unpadded", input: "cwl-2020.6.1"},
		{name: "no date", input: "cwl-bad-name"},
		{name: "empty", input: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseIndexDate(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestIndexAgeDays(t *testing.T) {
	date := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, IndexAgeDays(date, time.Date(2020, 1, 1, 23, 0, 0, 0, time.UTC)))
	assert.Equal(t, 31, IndexAgeDays(date, time.Date(2020, 2, 1, 1, 0, 0, 0, time.UTC)))
	assert.Equal(t, -1, IndexAgeDays(date, time.Date(2019, 12, 31, 0, 0, 0, 0, time.UTC)))

	local := time.FixedZone("UTC+10", 10*60*60)
	assert.Equal(t, 1, IndexAgeDays(date, time.Date(2020, 1, 3, 5, 0, 0, 0, local)))
}
