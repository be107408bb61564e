package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, raw string) map[string]any {
	t.Helper()
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	return rec
}

func TestParseFilters(t *testing.T) {
	filters, err := ParseFilters("status:on,location:eu-1")
	require.NoError(t, err)
	assert.Equal(t, []Filter{{"status", "on"}, {"location", "eu-1"}}, filters)
}

func TestParseFilters_Empty(t *testing.T) {
	filters, err := ParseFilters("")
	require.NoError(t, err)
	assert.Nil(t, filters)
}

func TestParseFilters_Invalid(t *testing.T) {
	for _, bad := range []string{"status", "status:", ":on", "a:b;c:d", "a b:c", "status:on,", ",status:on", "a:b,,c:d"} {
		_, err := ParseFilters(bad)
		assert.Error(t, err, "filter %q should be rejected", bad)
	}
}

func TestParseFilters_RegionAlias(t *testing.T) {
	filters, err := ParseFilters("region:eu-1")
	require.NoError(t, err)
	assert.Equal(t, "location", filters[0].Key)
}

func TestApply_ConjunctiveAndOrderPreserving(t *testing.T) {
	records := []map[string]any{
		record(t, `{"id": 1, "status": "on", "location": "eu-1"}`),
		record(t, `{"id": 2, "status": "off", "location": "eu-1"}`),
		record(t, `{"id": 3, "status": "on", "location": "us-1"}`),
		record(t, `{"id": 4, "status": "on", "location": "eu-1"}`),
	}

	filters, err := ParseFilters("status:on,location:eu-1")
	require.NoError(t, err)

	kept := Apply(records, filters)
	require.Len(t, kept, 2)
	assert.Equal(t, records[0], kept[0])
	assert.Equal(t, records[3], kept[1])
}

func TestApply_MissingKeyDropsRecord(t *testing.T) {
	records := []map[string]any{
		record(t, `{"id": 1, "status": "on"}`),
		record(t, `{"id": 2}`),
	}
	kept := Apply(records, []Filter{{"status", "on"}})
	require.Len(t, kept, 1)
}

func TestApply_EmptyResultIsValid(t *testing.T) {
	records := []map[string]any{record(t, `{"status": "off"}`)}
	kept := Apply(records, []Filter{{"status", "on"}})
	assert.Empty(t, kept)
}

func TestMatches_DottedPath(t *testing.T) {
	rec := record(t, `{"server": {"os": {"name": "ubuntu", "version": "22.04"}}}`)
	assert.True(t, Matches(rec, []Filter{{"server.os.name", "ubuntu"}}))
	assert.False(t, Matches(rec, []Filter{{"server.os.name", "debian"}}))
	assert.False(t, Matches(rec, []Filter{{"server.kernel", "linux"}}))
}

func TestRecords_FiltersAndNumbers(t *testing.T) {
	body := []byte(`{"servers": [
		{"id": 105, "status": "on"},
		{"id": 106, "status": "off"}
	]}`)

	recs, err := Records(body, "servers", []Filter{{"id", "105"}})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "on", Str(recs[0], "status"))
}

func TestRecords_WrongKey(t *testing.T) {
	_, err := Records([]byte(`{"servers": []}`), "vpcs", nil)
	assert.Error(t, err)
}
